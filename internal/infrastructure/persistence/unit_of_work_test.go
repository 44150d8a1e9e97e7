package persistence

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dms/backend/internal/domain/ledger"
	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/domain/uow"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type recordingLocker struct {
	mu       sync.Mutex
	acquired []string
	released []string
	fail     error
}

func (l *recordingLocker) Acquire(_ context.Context, key string) (shared.Unlock, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fail != nil {
		return nil, l.fail
	}
	l.acquired = append(l.acquired, key)
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.released = append(l.released, key)
		return nil
	}, nil
}

func fastConfig() UnitOfWorkConfig {
	return UnitOfWorkConfig{
		Timeout:         time.Second,
		MaxRetries:      2,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
	}
}

func TestGormUnitOfWork_CommitsAndReleasesLocksInOrder(t *testing.T) {
	db := newTestDB(t)
	customer := seedCustomer(t, db, "9300000001", 0)
	locker := &recordingLocker{}
	u := NewGormUnitOfWork(db, locker, fastConfig(), zaptest.NewLogger(t))

	err := u.Do(context.Background(), []string{"z", uow.CustomerLock(customer.ID), "z", ""},
		func(ctx context.Context, repos uow.Repositories) error {
			entry := newManualEntry(t, customer.ID, 1, ledger.EntryTypeDebit, 400)
			if err := repos.Entries.Create(ctx, entry); err != nil {
				return err
			}
			return repos.Customers.UpdateOutstanding(ctx, customer.ID, decimal.NewFromInt(400))
		})
	require.NoError(t, err)

	assert.Equal(t, []string{uow.CustomerLock(customer.ID), "z"}, locker.acquired)
	assert.Equal(t, []string{"z", uow.CustomerLock(customer.ID)}, locker.released)

	found, err := NewGormCustomerRepository(db).FindByID(context.Background(), customer.ID)
	require.NoError(t, err)
	assert.True(t, found.OutstandingAmount.Equal(decimal.NewFromInt(400)))
}

func TestGormUnitOfWork_RollsBackOnError(t *testing.T) {
	db := newTestDB(t)
	customer := seedCustomer(t, db, "9300000002", 100)
	u := NewGormUnitOfWork(db, &recordingLocker{}, fastConfig(), zaptest.NewLogger(t))

	calls := 0
	err := u.Do(context.Background(), nil, func(ctx context.Context, repos uow.Repositories) error {
		calls++
		if err := repos.Entries.Create(ctx, newManualEntry(t, customer.ID, 1, ledger.EntryTypeCredit, 50)); err != nil {
			return err
		}
		if err := repos.Customers.UpdateOutstanding(ctx, customer.ID, decimal.NewFromInt(50)); err != nil {
			return err
		}
		return shared.NewInvalidStateError("stop")
	})
	assert.ErrorIs(t, err, shared.ErrInvalidState)
	assert.Equal(t, 1, calls, "non-transient errors are not retried")

	entries, err := NewGormLedgerEntryRepository(db).FindByCustomer(context.Background(), customer.ID, shared.DateRange{})
	require.NoError(t, err)
	assert.Empty(t, entries)

	found, err := NewGormCustomerRepository(db).FindByID(context.Background(), customer.ID)
	require.NoError(t, err)
	assert.True(t, found.OutstandingAmount.Equal(decimal.NewFromInt(100)))
}

func TestGormUnitOfWork_RetriesTransientFailures(t *testing.T) {
	db := newTestDB(t)
	u := NewGormUnitOfWork(db, &recordingLocker{}, fastConfig(), zaptest.NewLogger(t))

	calls := 0
	err := u.Do(context.Background(), nil, func(context.Context, uow.Repositories) error {
		calls++
		if calls < 3 {
			return shared.NewTransientError("connection reset", errors.New("boom"))
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestGormUnitOfWork_GivesUpAfterMaxRetries(t *testing.T) {
	db := newTestDB(t)
	u := NewGormUnitOfWork(db, &recordingLocker{}, fastConfig(), zaptest.NewLogger(t))

	calls := 0
	err := u.Do(context.Background(), nil, func(context.Context, uow.Repositories) error {
		calls++
		return shared.NewTransientError("connection reset", errors.New("boom"))
	})
	assert.ErrorIs(t, err, shared.ErrTransient)
	assert.Equal(t, 3, calls)
}

func TestGormUnitOfWork_LockFailureIsTransient(t *testing.T) {
	db := newTestDB(t)
	cfg := fastConfig()
	cfg.MaxRetries = 0
	u := NewGormUnitOfWork(db, &recordingLocker{fail: context.DeadlineExceeded}, cfg, zaptest.NewLogger(t))

	called := false
	err := u.Do(context.Background(), []string{"customer:x"}, func(context.Context, uow.Repositories) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, shared.ErrTransient)
	assert.False(t, called)
}

func TestGormUnitOfWork_AttemptTimeout(t *testing.T) {
	db := newTestDB(t)
	cfg := fastConfig()
	cfg.Timeout = 20 * time.Millisecond
	cfg.MaxRetries = 0
	u := NewGormUnitOfWork(db, nil, cfg, zaptest.NewLogger(t))

	err := u.Do(context.Background(), nil, func(ctx context.Context, _ uow.Repositories) error {
		<-ctx.Done()
		return ctx.Err()
	})
	assert.ErrorIs(t, err, shared.ErrTransient)
}

func TestNormalizeLockKeys(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, normalizeLockKeys([]string{"b", "", "a", "b"}))
	assert.Empty(t, normalizeLockKeys(nil))
}
