// Package cache provides the idempotency stores that keep webhook redeliveries
// from producing duplicate ERP records. The Redis store shares state across
// bridge instances; the in-memory store covers single-instance deployments
// and tests.
package cache

import (
	"context"
	"sync"
	"time"

	syncdomain "github.com/erplink/bridge/internal/domain/sync"
)

// sweepInterval is how often expired event markers are purged.
const sweepInterval = 5 * time.Minute

type marker struct {
	expiresAt time.Time
}

// MemoryIdempotencyStore tracks processed event IDs in a process-local map.
// State is not shared across instances, so a multi-replica deployment behind
// a load balancer must use the Redis store instead.
type MemoryIdempotencyStore struct {
	mu        sync.RWMutex
	markers   map[string]marker
	stop      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

var _ syncdomain.IdempotencyStore = (*MemoryIdempotencyStore)(nil)

// NewMemoryIdempotencyStore creates the store and starts its sweep goroutine.
func NewMemoryIdempotencyStore() *MemoryIdempotencyStore {
	s := &MemoryIdempotencyStore{
		markers: make(map[string]marker),
		stop:    make(chan struct{}),
	}
	s.wg.Add(1)
	go s.sweepLoop()
	return s
}

// MarkProcessed records the event ID with the given TTL. It returns true when
// the event was newly marked and false when a live marker already existed.
func (s *MemoryIdempotencyStore) MarkProcessed(_ context.Context, eventID string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m, ok := s.markers[eventID]; ok && time.Now().Before(m.expiresAt) {
		return false, nil
	}
	s.markers[eventID] = marker{expiresAt: time.Now().Add(ttl)}
	return true, nil
}

// IsProcessed reports whether a live marker exists for the event ID.
func (s *MemoryIdempotencyStore) IsProcessed(_ context.Context, eventID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.markers[eventID]
	return ok && time.Now().Before(m.expiresAt), nil
}

// Close stops the sweep goroutine. Safe to call more than once.
func (s *MemoryIdempotencyStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stop)
		s.wg.Wait()
	})
	return nil
}

// Size returns the number of markers, live or expired. Used by tests.
func (s *MemoryIdempotencyStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.markers)
}

func (s *MemoryIdempotencyStore) sweepLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *MemoryIdempotencyStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for eventID, m := range s.markers {
		if now.After(m.expiresAt) {
			delete(s.markers, eventID)
		}
	}
}
