// Package freshcache provides an in-memory key/value cache with a fixed
// time-to-live. Entries keep their value after expiry so callers can fall
// back to the last good result; freshness and presence are separate
// questions.
package freshcache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value     V
	fetchedAt time.Time
}

// Cache maps string keys to values of type V. Each entry records when it was
// stored; IsFresh compares that against the cache's TTL. Safe for concurrent
// use.
type Cache[V any] struct {
	mu      sync.RWMutex
	entries map[string]entry[V]
	ttl     time.Duration
	now     func() time.Time
}

// New returns a cache whose entries stay fresh for ttl after each Put.
func New[V any](ttl time.Duration) *Cache[V] {
	return NewWithClock[V](ttl, time.Now)
}

// NewWithClock is New with an injected clock, for tests.
func NewWithClock[V any](ttl time.Duration, now func() time.Time) *Cache[V] {
	return &Cache[V]{
		entries: make(map[string]entry[V]),
		ttl:     ttl,
		now:     now,
	}
}

// IsFresh reports whether key holds an entry stored no longer than the TTL
// ago. A key never written, or one invalidated since, is never fresh.
func (c *Cache[V]) IsFresh(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok || e.fetchedAt.IsZero() {
		return false
	}
	return c.now().Sub(e.fetchedAt) <= c.ttl
}

// Get returns the stored value for key regardless of freshness.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	return e.value, ok
}

// FetchedAt returns when the entry for key was last stored fresh.
func (c *Cache[V]) FetchedAt(key string) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	return e.fetchedAt, ok
}

// Put stores value under key, replacing any prior entry wholesale, and
// stamps it with the current time.
func (c *Cache[V]) Put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry[V]{value: value, fetchedAt: c.now()}
}

// Invalidate forces the next IsFresh for key to report false while keeping
// the value available through Get, so a forced refresh can still fall back
// to it if the new fetch fails.
func (c *Cache[V]) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		e.fetchedAt = time.Time{}
		c.entries[key] = e
	}
}

// Len returns the number of stored entries, fresh or not.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
