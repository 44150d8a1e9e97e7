// Package event dispatches domain events to in-process handlers.
package event

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dms/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// SyncEventBus delivers events to handlers on the caller's goroutine,
// after the caller's transaction has committed. Every handler runs even if
// an earlier one fails; the failures are joined into the returned error.
type SyncEventBus struct {
	mu       sync.RWMutex
	handlers map[string][]shared.EventHandler
	wildcard []shared.EventHandler
	logger   *zap.Logger
}

// NewSyncEventBus creates an empty bus
func NewSyncEventBus(logger *zap.Logger) *SyncEventBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncEventBus{
		handlers: make(map[string][]shared.EventHandler),
		logger:   logger,
	}
}

// Subscribe registers handler for its EventTypes, or for every event when
// it names none
func (b *SyncEventBus) Subscribe(handler shared.EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	types := handler.EventTypes()
	if len(types) == 0 {
		b.wildcard = append(b.wildcard, handler)
		return
	}
	for _, t := range types {
		b.handlers[t] = append(b.handlers[t], handler)
	}
	b.logger.Debug("handler subscribed", zap.Strings("event_types", types))
}

// Publish dispatches events in order
func (b *SyncEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	var errs []error
	for _, ev := range events {
		for _, h := range b.handlersFor(ev.EventType()) {
			if err := b.dispatch(ctx, h, ev); err != nil {
				b.logger.Debug("handler failed to process event",
					zap.String("event_type", ev.EventType()),
					zap.String("event_id", ev.EventID().String()),
					zap.Error(err),
				)
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func (b *SyncEventBus) handlersFor(eventType string) []shared.EventHandler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	typed := b.handlers[eventType]
	out := make([]shared.EventHandler, 0, len(typed)+len(b.wildcard))
	out = append(out, typed...)
	return append(out, b.wildcard...)
}

func (b *SyncEventBus) dispatch(ctx context.Context, h shared.EventHandler, ev shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("handler panicked",
				zap.String("event_type", ev.EventType()),
				zap.Any("panic", r),
				zap.Stack("stacktrace"),
			)
			err = fmt.Errorf("handler panicked on %s: %v", ev.EventType(), r)
		}
	}()
	return h.Handle(ctx, ev)
}

var _ shared.EventPublisher = (*SyncEventBus)(nil)
