package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLocker_SerializesSameKey(t *testing.T) {
	locker := NewMemoryLocker()
	ctx := context.Background()

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := locker.Acquire(ctx, "customer:1")
			if !assert.NoError(t, err) {
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
			assert.NoError(t, unlock(ctx))
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside)
	assert.Equal(t, 0, locker.Len())
}

func TestMemoryLocker_DifferentKeysDoNotBlock(t *testing.T) {
	locker := NewMemoryLocker()
	ctx := context.Background()

	unlockA, err := locker.Acquire(ctx, "customer:a")
	require.NoError(t, err)
	defer func() { _ = unlockA(ctx) }()

	ctxB, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	unlockB, err := locker.Acquire(ctxB, "customer:b")
	require.NoError(t, err)
	require.NoError(t, unlockB(ctx))
}

func TestMemoryLocker_AcquireHonoursContext(t *testing.T) {
	locker := NewMemoryLocker()
	ctx := context.Background()

	unlock, err := locker.Acquire(ctx, "bill-number:2026")
	require.NoError(t, err)

	waitCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err = locker.Acquire(waitCtx, "bill-number:2026")
	assert.ErrorIs(t, err, shared.ErrTransient)

	require.NoError(t, unlock(ctx))
	// Releasing twice is harmless.
	require.NoError(t, unlock(ctx))
	assert.Equal(t, 0, locker.Len())
}

func TestLockerFactory_WithoutRedisHost(t *testing.T) {
	f := NewLockerFactory(config.RedisConfig{}, config.LedgerConfig{})
	locker, closeFn, err := f.CreateLocker()
	require.NoError(t, err)
	assert.IsType(t, &MemoryLocker{}, locker)
	assert.NoError(t, closeFn())
}
