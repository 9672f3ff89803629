// Package cache implements a scope-keyed cache with a fixed time-to-live.
//
// Entries expire lazily: expiry is checked when an entry is read and nothing
// sweeps the map in the background. The number of scopes is expected to be
// small (one per listing kind), so expired entries are simply left in place
// until overwritten.
package cache

import (
	"fmt"
	"sync"
	"time"

	"github.com/k1nky/pachca-client/internal/apierr"
)

// DefaultTTL is the time-to-live used by the CLI when none is configured.
const DefaultTTL = 60 * time.Second

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Cache stores one value per scope for ttl after the last write.
type Cache[V any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]entry[V]

	// now is the clock; replaced in tests.
	now func() time.Time
}

// New creates a cache whose entries live for ttl after each Update.
func New[V any](ttl time.Duration) (*Cache[V], error) {
	if ttl <= 0 {
		return nil, fmt.Errorf("ttl should be greater than 0, got %s: %w", ttl, apierr.ErrInvalidConfiguration)
	}
	return &Cache[V]{
		ttl:     ttl,
		entries: make(map[string]entry[V]),
		now:     time.Now,
	}, nil
}

// TTL returns the configured time-to-live.
func (c *Cache[V]) TTL() time.Duration {
	return c.ttl
}

// Update overwrites the value stored for scope and resets its expiry.
func (c *Cache[V]) Update(scope string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[scope] = entry[V]{
		value:     value,
		expiresAt: c.now().Add(c.ttl),
	}
}

// Get returns the value stored for scope. The second result is false when the
// scope was never written or its entry has expired.
func (c *Cache[V]) Get(scope string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero V
	e, ok := c.entries[scope]
	if !ok {
		return zero, false
	}
	if !c.now().Before(e.expiresAt) {
		return zero, false
	}
	return e.value, true
}
