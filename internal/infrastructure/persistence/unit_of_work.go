package persistence

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/domain/uow"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UnitOfWorkConfig bounds each attempt and the retry loop around it.
type UnitOfWorkConfig struct {
	// Timeout bounds lock acquisition plus the transaction of one attempt.
	Timeout time.Duration
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries uint
	// InitialInterval is the first backoff delay; it grows by 2x.
	InitialInterval time.Duration
	// MaxInterval caps a single backoff delay.
	MaxInterval time.Duration
}

// DefaultUnitOfWorkConfig returns the settings used when none are configured.
func DefaultUnitOfWorkConfig() UnitOfWorkConfig {
	return UnitOfWorkConfig{
		Timeout:         5 * time.Second,
		MaxRetries:      3,
		InitialInterval: 50 * time.Millisecond,
		MaxInterval:     time.Second,
	}
}

// GormUnitOfWork implements uow.UnitOfWork on a GORM transaction guarded by
// advisory locks.
type GormUnitOfWork struct {
	db     *gorm.DB
	locker shared.Locker
	cfg    UnitOfWorkConfig
	logger *zap.Logger
}

// NewGormUnitOfWork creates a unit of work. A nil logger is replaced by a no-op one.
func NewGormUnitOfWork(db *gorm.DB, locker shared.Locker, cfg UnitOfWorkConfig, logger *zap.Logger) *GormUnitOfWork {
	if logger == nil {
		logger = zap.NewNop()
	}
	def := DefaultUnitOfWorkConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = def.InitialInterval
	}
	if cfg.MaxInterval <= 0 {
		cfg.MaxInterval = def.MaxInterval
	}
	return &GormUnitOfWork{db: db, locker: locker, cfg: cfg, logger: logger}
}

// Do runs fn inside a transaction while holding locks. Transient failures are
// retried with exponential backoff; fn must not keep state between calls.
func (u *GormUnitOfWork) Do(ctx context.Context, locks []string, fn func(ctx context.Context, repos uow.Repositories) error) error {
	keys := normalizeLockKeys(locks)

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = u.cfg.InitialInterval
	b.MaxInterval = u.cfg.MaxInterval
	b.Multiplier = 2

	attempt := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempt++
		err := u.attempt(ctx, keys, fn)
		if err == nil {
			return struct{}{}, nil
		}
		if shared.IsRetryable(err) {
			return struct{}{}, err
		}
		return struct{}{}, backoff.Permanent(err)
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(u.cfg.MaxRetries+1),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, next time.Duration) {
			u.logger.Warn("retrying unit of work after transient failure",
				zap.Int("attempt", attempt),
				zap.Duration("backoff", next),
				zap.Strings("locks", keys),
				zap.Error(err),
			)
		}),
	)
	if err == nil {
		return nil
	}
	var de *shared.DomainError
	if errors.As(err, &de) {
		return err
	}
	// Context cancellation between attempts surfaces here unwrapped.
	return shared.NewTransientError("operation did not complete", err)
}

func (u *GormUnitOfWork) attempt(ctx context.Context, keys []string, fn func(ctx context.Context, repos uow.Repositories) error) error {
	ctx, cancel := context.WithTimeout(ctx, u.cfg.Timeout)
	defer cancel()

	release, err := u.acquire(ctx, keys)
	if err != nil {
		return err
	}
	defer release()

	err = u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, repositoriesFor(tx))
	})
	if err != nil {
		if ctx.Err() != nil && shared.CodeOf(err) == "" {
			return shared.NewTransientError("store call timed out", err)
		}
		return translateError(err)
	}
	return nil
}

// acquire takes keys in order and returns a function releasing all of them.
func (u *GormUnitOfWork) acquire(ctx context.Context, keys []string) (func(), error) {
	held := make([]shared.Unlock, 0, len(keys))
	release := func() {
		// Release with a fresh context so an expired attempt still unlocks.
		rctx, cancel := context.WithTimeout(context.Background(), u.cfg.Timeout)
		defer cancel()
		for i := len(held) - 1; i >= 0; i-- {
			if err := held[i](rctx); err != nil {
				u.logger.Warn("failed to release lock", zap.Error(err))
			}
		}
	}
	if u.locker == nil {
		return release, nil
	}
	for _, key := range keys {
		unlock, err := u.locker.Acquire(ctx, key)
		if err != nil {
			release()
			if shared.CodeOf(err) != "" {
				return nil, err
			}
			return nil, shared.NewTransientError("could not acquire lock "+key, err)
		}
		held = append(held, unlock)
	}
	return release, nil
}

// normalizeLockKeys sorts and de-duplicates keys so concurrent callers
// always acquire them in the same order.
func normalizeLockKeys(locks []string) []string {
	keys := make([]string, 0, len(locks))
	for _, k := range locks {
		if k != "" {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return slices.Compact(keys)
}

func repositoriesFor(tx *gorm.DB) uow.Repositories {
	return uow.Repositories{
		Customers:   NewGormCustomerRepository(tx),
		Entries:     NewGormLedgerEntryRepository(tx),
		Collections: NewGormCollectionRepository(tx),
		Orders:      NewGormOrderRepository(tx),
	}
}

var _ uow.UnitOfWork = (*GormUnitOfWork)(nil)
