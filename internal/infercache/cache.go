// Package infercache memoizes header-detection results by document
// fingerprint so near-identical sheets never pay for a second inference call.
// It is a single-process, best-effort accelerator, not a source of truth.
package infercache

import (
	"sync"
	"time"
)

// DefaultTTL is how long a detection stays valid after it is stored.
const DefaultTTL = 24 * time.Hour

type entry[V any] struct {
	value     V
	createdAt time.Time
	expiresAt time.Time
}

// Cache maps fingerprints to previously computed detections. Entries carry a
// fixed expiry from creation; a hit never extends it.
type Cache[V any] struct {
	mu      sync.Mutex
	entries map[string]entry[V]
	ttl     time.Duration
	now     func() time.Time
}

// Stats is a read-only snapshot of the cache contents.
type Stats struct {
	Size int      `json:"size"`
	Keys []string `json:"keys"`
}

// New builds a cache with the given TTL. A non-positive ttl falls back to
// DefaultTTL. The clock is injectable for tests; pass nil for time.Now.
func New[V any](ttl time.Duration, clock func() time.Time) *Cache[V] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if clock == nil {
		clock = time.Now
	}
	return &Cache[V]{
		entries: make(map[string]entry[V]),
		ttl:     ttl,
		now:     clock,
	}
}

// Get returns the cached value for key if it has not expired. An expired
// entry is evicted during the lookup and reported absent, so no background
// sweep is needed for correctness.
func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V
	if c == nil {
		return zero, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	if c.now().After(e.expiresAt) {
		delete(c.entries, key)
		return zero, false
	}
	return e.value, true
}

// Set inserts or replaces the entry for key, last writer wins. Each Set also
// sweeps expired entries so long-dead keys do not pin memory.
func (c *Cache[V]) Set(key string, value V) {
	if c == nil {
		return
	}

	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, k)
		}
	}

	c.entries[key] = entry[V]{
		value:     value,
		createdAt: now,
		expiresAt: now.Add(c.ttl),
	}
}

// Stats reports the current size and keys without side effects.
func (c *Cache[V]) Stats() Stats {
	if c == nil {
		return Stats{Keys: []string{}}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	return Stats{Size: len(c.entries), Keys: keys}
}

// Clear removes all entries. Used for manual invalidation and test isolation.
func (c *Cache[V]) Clear() {
	if c == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry[V])
}

// Close releases the cache's contents. Present so callers can treat the cache
// as a component with a lifecycle; there is no background goroutine to stop.
func (c *Cache[V]) Close() {
	c.Clear()
}
