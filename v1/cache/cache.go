package cache

import "time"

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Cache maps string keys to values with per-entry absolute expiration.
//
// V represents the type of values stored in the cache. Values are copied in
// and out by assignment; the cache never inspects or mutates them.
//
// A Cache is owned by a single goroutine at a time. Concurrent access must be
// layered on top, see SyncCache and ShardedCache.
type Cache[V any] struct {
	entries map[string]entry[V]
}

// New returns an empty Cache.
func New[V any]() *Cache[V] {
	return &Cache[V]{entries: make(map[string]entry[V])}
}

// Set stores value under key, expiring at now + ttl. Any previous entry for
// the key is discarded. A zero or negative ttl produces an entry that is
// already stale.
func (c *Cache[V]) Set(key string, value V, ttl time.Duration) {
	c.entries[key] = entry[V]{value: value, expiresAt: time.Now().Add(ttl)}
}

// Get returns the value for key if the entry exists and has not expired.
// A stale entry is reported as absent but stays in storage; Get never
// mutates the cache.
func (c *Cache[V]) Get(key string) (V, bool) {
	e, ok := c.entries[key]
	if !ok || !time.Now().Before(e.expiresAt) {
		var zero V
		return zero, false
	}
	return e.value, true
}

// GetOrSet returns the existing value for key if it is live, leaving the
// entry untouched. Otherwise it stores value with the given ttl and returns
// it. Exactly one of the two happens.
func (c *Cache[V]) GetOrSet(key string, value V, ttl time.Duration) V {
	if existing, ok := c.Get(key); ok {
		return existing
	}
	c.Set(key, value, ttl)
	return value
}

// Expire removes the entry for key regardless of staleness. The removed
// value is returned only when the entry was still live; an already stale
// entry is reclaimed silently. A missing key is a no-op.
func (c *Cache[V]) Expire(key string) (V, bool) {
	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	delete(c.entries, key)
	if !time.Now().Before(e.expiresAt) {
		var zero V
		return zero, false
	}
	return e.value, true
}

// ExpireAll removes every stale entry and retains the live ones. This is the
// only operation whose cost grows with the number of entries.
func (c *Cache[V]) ExpireAll() {
	now := time.Now()
	for k, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, k)
		}
	}
}

// Refresh resets the expiration of the entry for key to now + ttl, keeping
// its value, and reports whether the entry existed. Existence, not liveness,
// is the condition: refreshing a stale entry resurrects it.
func (c *Cache[V]) Refresh(key string, ttl time.Duration) bool {
	e, ok := c.entries[key]
	if !ok {
		return false
	}
	e.expiresAt = time.Now().Add(ttl)
	c.entries[key] = e
	return true
}

// Clear removes all entries, live or stale.
func (c *Cache[V]) Clear() {
	c.entries = make(map[string]entry[V])
}

// Len returns the number of entries physically in storage, including stale
// ones not yet reclaimed.
func (c *Cache[V]) Len() int {
	return len(c.entries)
}
