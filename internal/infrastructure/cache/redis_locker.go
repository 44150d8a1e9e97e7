package cache

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/dms/backend/internal/domain/shared"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only if it still holds our token, so an
// expired holder never frees a lock someone else has since taken.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// ErrLockNotHeld is returned when releasing a lock that already expired
var ErrLockNotHeld = errors.New("lock not held")

// RedisLocker implements shared.Locker with SET NX PX, so locks are shared
// by every instance pointed at the same Redis.
type RedisLocker struct {
	client        *redis.Client
	keyPrefix     string
	ttl           time.Duration
	retryInterval time.Duration
}

// NewRedisLocker creates a locker on an existing client
func NewRedisLocker(client *redis.Client, ttl, retryInterval time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if retryInterval <= 0 {
		retryInterval = 25 * time.Millisecond
	}
	return &RedisLocker{
		client:        client,
		keyPrefix:     "dms:lock:",
		ttl:           ttl,
		retryInterval: retryInterval,
	}
}

// Acquire polls until the key is free or ctx is done
func (l *RedisLocker) Acquire(ctx context.Context, key string) (shared.Unlock, error) {
	token, err := newToken()
	if err != nil {
		return nil, err
	}
	redisKey := l.keyPrefix + key

	ticker := time.NewTicker(l.retryInterval)
	defer ticker.Stop()
	for {
		ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			return nil, shared.NewTransientError("failed to acquire lock "+key, err)
		}
		if ok {
			return l.unlocker(redisKey, token), nil
		}
		select {
		case <-ctx.Done():
			return nil, shared.NewTransientError("timed out waiting for lock "+key, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (l *RedisLocker) unlocker(redisKey, token string) shared.Unlock {
	return func(ctx context.Context) error {
		n, err := releaseScript.Run(ctx, l.client, []string{redisKey}, token).Int()
		if err != nil {
			return fmt.Errorf("failed to release lock %s: %w", redisKey, err)
		}
		if n == 0 {
			return fmt.Errorf("%w: %s", ErrLockNotHeld, redisKey)
		}
		return nil
	}
}

func newToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate lock token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

var _ shared.Locker = (*RedisLocker)(nil)
