//go:build integration

package integration

import (
	"context"
	"testing"
	"time"

	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/infrastructure/cache"
	"github.com/dms/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newRedisLocker(t *testing.T) shared.Locker {
	t.Helper()
	addr := StartRedis(t)
	host, port := splitHostPort(t, addr)

	factory := cache.NewLockerFactory(
		config.RedisConfig{Host: host, Port: port},
		config.LedgerConfig{LockTTL: 5 * time.Second, LockRetryInterval: 10 * time.Millisecond},
		cache.WithLogger(zaptest.NewLogger(t)),
		cache.WithInMemoryFallback(false),
	)
	locker, closeFn, err := factory.CreateLocker()
	require.NoError(t, err)
	t.Cleanup(func() { _ = closeFn() })
	_, isRedis := locker.(*cache.RedisLocker)
	require.True(t, isRedis)
	return locker
}

func TestRedisLocker_ExcludesSecondHolder(t *testing.T) {
	locker := newRedisLocker(t)
	ctx := context.Background()

	unlock, err := locker.Acquire(ctx, "customer:1")
	require.NoError(t, err)

	waitCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	_, err = locker.Acquire(waitCtx, "customer:1")
	assert.ErrorIs(t, err, shared.ErrTransient)

	other, err := locker.Acquire(ctx, "customer:2")
	require.NoError(t, err)
	require.NoError(t, other(ctx))

	require.NoError(t, unlock(ctx))
	assert.ErrorIs(t, unlock(ctx), cache.ErrLockNotHeld)

	again, err := locker.Acquire(ctx, "customer:1")
	require.NoError(t, err)
	require.NoError(t, again(ctx))
}

func TestRedisLocker_WaiterProceedsAfterRelease(t *testing.T) {
	locker := newRedisLocker(t)
	ctx := context.Background()

	unlock, err := locker.Acquire(ctx, "customer:9")
	require.NoError(t, err)

	acquired := make(chan error, 1)
	go func() {
		u, err := locker.Acquire(ctx, "customer:9")
		if err == nil {
			err = u(ctx)
		}
		acquired <- err
	}()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, unlock(ctx))

	select {
	case err := <-acquired:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("waiter never acquired the lock")
	}
}
