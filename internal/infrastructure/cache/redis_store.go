package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	syncdomain "github.com/erplink/bridge/internal/domain/sync"
)

// defaultKeyPrefix namespaces the bridge's markers inside a shared Redis.
const defaultKeyPrefix = "bridge:idempotency:"

// connectTimeout bounds the startup connectivity probe.
const connectTimeout = 5 * time.Second

// RedisIdempotencyStore tracks processed event IDs in Redis so that every
// bridge replica sees the same dedupe state.
type RedisIdempotencyStore struct {
	client    *redis.Client
	keyPrefix string
}

var _ syncdomain.IdempotencyStore = (*RedisIdempotencyStore)(nil)

// NewRedisIdempotencyStore dials Redis at addr and verifies connectivity
// before returning the store.
func NewRedisIdempotencyStore(addr, password string, db int) (*RedisIdempotencyStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("cache: redis unreachable: %w", err)
	}

	return &RedisIdempotencyStore{client: client, keyPrefix: defaultKeyPrefix}, nil
}

// NewRedisIdempotencyStoreWithClient wraps an existing client. Used by tests
// and by deployments that share one client across components.
func NewRedisIdempotencyStoreWithClient(client *redis.Client, keyPrefix string) *RedisIdempotencyStore {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &RedisIdempotencyStore{client: client, keyPrefix: keyPrefix}
}

// MarkProcessed records the event ID with the given TTL using SETNX, so the
// mark-and-check is a single atomic operation across replicas.
func (s *RedisIdempotencyStore) MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	fresh, err := s.client.SetNX(ctx, s.keyPrefix+eventID, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("cache: mark processed: %w", err)
	}
	return fresh, nil
}

// IsProcessed reports whether a live marker exists for the event ID.
func (s *RedisIdempotencyStore) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	n, err := s.client.Exists(ctx, s.keyPrefix+eventID).Result()
	if err != nil {
		return false, fmt.Errorf("cache: check processed: %w", err)
	}
	return n > 0, nil
}

// Close closes the underlying Redis client.
func (s *RedisIdempotencyStore) Close() error {
	return s.client.Close()
}
