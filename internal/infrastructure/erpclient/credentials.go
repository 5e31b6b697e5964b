package erpclient

import (
	"context"
	"sync"
	"time"
)

// Credential is the short-lived bearer token authorizing ERP calls. Exactly
// one live credential exists per client at a time; it is replaced, never
// merged, and never persisted across process restarts.
type Credential struct {
	Token    string
	IssuedAt time.Time
	Lifetime time.Duration
}

// ValidAt reports whether the credential is still usable at the given
// instant. The refresh buffer is subtracted from the lifetime, so a
// credential stops being valid buffer-early; at exactly lifetime−buffer it
// is already invalid.
func (c *Credential) ValidAt(now time.Time, buffer time.Duration) bool {
	return now.Before(c.IssuedAt.Add(c.Lifetime - buffer))
}

// acquireFunc fetches a fresh credential from the ERP.
type acquireFunc func(ctx context.Context) (*Credential, error)

// CredentialCache owns the client's single live credential and decides when
// a refresh is needed. Refresh is lazy: it happens on the first call that
// finds no valid credential, never on a timer.
//
// The mutex guards only the stored pointer and is not held across
// acquisition, so two goroutines observing an expired credential may both
// fetch a fresh one; either result is valid and the last write wins.
type CredentialCache struct {
	acquire acquireFunc
	buffer  time.Duration
	now     func() time.Time

	mu      sync.Mutex
	current *Credential
}

// NewCredentialCache creates an empty cache that refreshes through acquire.
func NewCredentialCache(buffer time.Duration, acquire acquireFunc) *CredentialCache {
	return &CredentialCache{
		acquire: acquire,
		buffer:  buffer,
		now:     time.Now,
	}
}

// Get returns the cached credential when still valid, otherwise acquires a
// fresh one, replaces the cache, and returns it. On acquisition failure the
// cache is left empty so the next call retries from scratch instead of
// reusing a poisoned state.
func (c *CredentialCache) Get(ctx context.Context) (*Credential, error) {
	c.mu.Lock()
	current := c.current
	c.mu.Unlock()

	if current != nil && current.ValidAt(c.now(), c.buffer) {
		return current, nil
	}

	fresh, err := c.acquire(ctx)
	if err != nil {
		c.Invalidate()
		return nil, err
	}

	c.mu.Lock()
	c.current = fresh
	c.mu.Unlock()
	return fresh, nil
}

// IsValid reports whether a valid credential is currently cached. It never
// triggers acquisition.
func (c *CredentialCache) IsValid() bool {
	c.mu.Lock()
	current := c.current
	c.mu.Unlock()
	return current != nil && current.ValidAt(c.now(), c.buffer)
}

// Invalidate clears the cache unconditionally. Idempotent; safe to call
// when the cache is already empty.
func (c *CredentialCache) Invalidate() {
	c.mu.Lock()
	c.current = nil
	c.mu.Unlock()
}
