package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// LockerFactory creates advisory lockers based on configuration
type LockerFactory struct {
	redisConfig           config.RedisConfig
	ledgerConfig          config.LedgerConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// LockerFactoryOption is a functional option for configuring the factory
type LockerFactoryOption func(*LockerFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) LockerFactoryOption {
	return func(f *LockerFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to an in-process
// locker when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) LockerFactoryOption {
	return func(f *LockerFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewLockerFactory creates a new factory
func NewLockerFactory(redisCfg config.RedisConfig, ledgerCfg config.LedgerConfig, opts ...LockerFactoryOption) *LockerFactory {
	f := &LockerFactory{
		redisConfig:           redisCfg,
		ledgerConfig:          ledgerCfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateRedisLocker connects to Redis and returns a locker plus a close func
func (f *LockerFactory) CreateRedisLocker() (*RedisLocker, func() error, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     f.redisConfig.Addr(),
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return NewRedisLocker(client, f.ledgerConfig.LockTTL, f.ledgerConfig.LockRetryInterval), client.Close, nil
}

// CreateLocker returns a Redis locker when Redis is configured and reachable,
// otherwise an in-process one if fallback is allowed.
func (f *LockerFactory) CreateLocker() (shared.Locker, func() error, error) {
	noop := func() error { return nil }
	if f.redisConfig.Host == "" {
		f.logger.Info("redis not configured, using in-process advisory locks")
		return NewMemoryLocker(), noop, nil
	}

	locker, closeFn, err := f.CreateRedisLocker()
	if err == nil {
		f.logger.Info("using Redis advisory locks", zap.String("addr", f.redisConfig.Addr()))
		return locker, closeFn, nil
	}
	if !f.allowInMemoryFallback {
		return nil, nil, fmt.Errorf("redis required for advisory locks but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-process advisory locks. "+
		"Balance updates are only serialized within this instance.",
		zap.Error(err),
	)
	return NewMemoryLocker(), noop, nil
}
