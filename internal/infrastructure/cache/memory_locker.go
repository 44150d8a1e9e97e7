package cache

import (
	"context"
	"sync"

	"github.com/dms/backend/internal/domain/shared"
)

// MemoryLocker implements shared.Locker inside one process. It is used
// when Redis is not configured and in tests.
type MemoryLocker struct {
	mu    sync.Mutex
	slots map[string]*slot
}

type slot struct {
	ch      chan struct{}
	waiters int
}

// NewMemoryLocker creates an empty in-process locker
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{slots: make(map[string]*slot)}
}

// Acquire blocks until key is free or ctx is done
func (l *MemoryLocker) Acquire(ctx context.Context, key string) (shared.Unlock, error) {
	l.mu.Lock()
	s, ok := l.slots[key]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		l.slots[key] = s
	}
	s.waiters++
	l.mu.Unlock()

	select {
	case s.ch <- struct{}{}:
	case <-ctx.Done():
		l.done(key, s)
		return nil, shared.NewTransientError("timed out waiting for lock "+key, ctx.Err())
	}

	var once sync.Once
	return func(context.Context) error {
		once.Do(func() {
			<-s.ch
			l.done(key, s)
		})
		return nil
	}, nil
}

// done drops the slot once nobody holds or waits for it
func (l *MemoryLocker) done(key string, s *slot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s.waiters--
	if s.waiters == 0 {
		delete(l.slots, key)
	}
}

// Len returns the number of keys currently held or awaited
func (l *MemoryLocker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.slots)
}

var _ shared.Locker = (*MemoryLocker)(nil)
