package sync

import (
	"context"
	"time"
)

// IdempotencyStore tracks processed webhook deliveries so a re-delivered
// event does not produce a duplicate ERP order or return.
type IdempotencyStore interface {
	// MarkProcessed atomically marks an event as processed. It returns true
	// if this call was the first to mark it (the event should be processed),
	// false if the event was already marked (a duplicate delivery).
	MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error)

	// IsProcessed checks whether an event has already been processed
	// without marking it.
	IsProcessed(ctx context.Context, eventID string) (bool, error)

	// Close releases any resources held by the store.
	Close() error
}

// IdempotencyConfig configures webhook deduplication.
type IdempotencyConfig struct {
	// TTL bounds how long processed event markers are retained. Deliveries
	// repeated after the TTL are treated as new events.
	TTL time.Duration

	// Enabled turns deduplication off entirely when false.
	Enabled bool
}

// DefaultIdempotencyConfig returns the default deduplication settings.
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
