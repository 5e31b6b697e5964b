package cache

import (
	"fmt"

	"go.uber.org/zap"

	syncdomain "github.com/erplink/bridge/internal/domain/sync"
	"github.com/erplink/bridge/internal/infrastructure/config"
)

// IdempotencyStoreFactory selects the idempotency store backend from the
// Redis configuration.
type IdempotencyStoreFactory struct {
	redisConfig    config.RedisConfig
	logger         *zap.Logger
	memoryFallback bool
}

// IdempotencyStoreFactoryOption configures the factory.
type IdempotencyStoreFactoryOption func(*IdempotencyStoreFactory)

// WithLogger sets the logger for the factory.
func WithLogger(logger *zap.Logger) IdempotencyStoreFactoryOption {
	return func(f *IdempotencyStoreFactory) {
		f.logger = logger
	}
}

// WithMemoryFallback controls whether an unreachable Redis degrades to the
// in-memory store instead of failing startup. Defaults to true.
func WithMemoryFallback(allow bool) IdempotencyStoreFactoryOption {
	return func(f *IdempotencyStoreFactory) {
		f.memoryFallback = allow
	}
}

// NewIdempotencyStoreFactory creates a new factory.
func NewIdempotencyStoreFactory(cfg config.RedisConfig, opts ...IdempotencyStoreFactoryOption) *IdempotencyStoreFactory {
	f := &IdempotencyStoreFactory{
		redisConfig:    cfg,
		logger:         zap.NewNop(),
		memoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateStore picks the backend. Redis is preferred whenever it is enabled in
// the configuration; an unreachable Redis falls back to the in-memory store
// unless fallback was disabled, in which case startup fails. With Redis
// disabled the in-memory store is used directly.
func (f *IdempotencyStoreFactory) CreateStore() (syncdomain.IdempotencyStore, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("using in-memory idempotency store, redis disabled")
		return NewMemoryIdempotencyStore(), nil
	}

	store, err := NewRedisIdempotencyStore(f.redisConfig.Addr(), f.redisConfig.Password, f.redisConfig.DB)
	if err == nil {
		f.logger.Info("using redis idempotency store", zap.String("addr", f.redisConfig.Addr()))
		return store, nil
	}

	if !f.memoryFallback {
		return nil, fmt.Errorf("cache: redis required for idempotency but unavailable: %w", err)
	}

	f.logger.Warn("redis unavailable, falling back to in-memory idempotency store; "+
		"duplicate webhook deliveries may reprocess across replicas",
		zap.Error(err))
	return NewMemoryIdempotencyStore(), nil
}
