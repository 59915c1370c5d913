package cache

import (
	"hash/fnv"
	"sync"
	"time"
)

// defaultShardCount balances lock contention against per-shard overhead for
// typical key volumes.
const defaultShardCount = 16

// ShardedCache spreads keys over independently locked core caches so that
// writes to different keys rarely contend. Shard selection hashes the key
// with FNV-1a.
type ShardedCache[V any] struct {
	shards []*shard[V]
}

type shard[V any] struct {
	mu    sync.RWMutex
	store *Cache[V]
}

// ShardedOption configures a ShardedCache.
type ShardedOption func(*shardedConfig)

type shardedConfig struct {
	shardCount int
}

// WithShardCount sets the number of shards. Non-positive values fall back to
// the default.
func WithShardCount(n int) ShardedOption {
	return func(cfg *shardedConfig) {
		cfg.shardCount = n
	}
}

// NewSharded returns a new ShardedCache instance.
func NewSharded[V any](opts ...ShardedOption) *ShardedCache[V] {
	cfg := shardedConfig{shardCount: defaultShardCount}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.shardCount <= 0 {
		cfg.shardCount = defaultShardCount
	}
	shards := make([]*shard[V], cfg.shardCount)
	for i := range shards {
		shards[i] = &shard[V]{store: New[V]()}
	}
	return &ShardedCache[V]{shards: shards}
}

func (c *ShardedCache[V]) shardFor(key string) *shard[V] {
	h := fnv.New32a()
	h.Write([]byte(key))
	return c.shards[int(h.Sum32())%len(c.shards)]
}

// Set stores value under key for the given ttl.
func (c *ShardedCache[V]) Set(key string, value V, ttl time.Duration) {
	s := c.shardFor(key)
	s.mu.Lock()
	s.store.Set(key, value, ttl)
	s.mu.Unlock()
}

// Get returns the live value for key, if any.
func (c *ShardedCache[V]) Get(key string) (V, bool) {
	s := c.shardFor(key)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.Get(key)
}

// GetOrSet returns the existing live value for key or stores value and
// returns it, atomically within the key's shard.
func (c *ShardedCache[V]) GetOrSet(key string, value V, ttl time.Duration) V {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.GetOrSet(key, value, ttl)
}

// Expire removes the entry for key, returning its value only if it was live.
func (c *ShardedCache[V]) Expire(key string) (V, bool) {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Expire(key)
}

// ExpireAll removes every stale entry across all shards. Shards are swept one
// at a time; the cache is never globally locked.
func (c *ShardedCache[V]) ExpireAll() {
	for _, s := range c.shards {
		s.mu.Lock()
		s.store.ExpireAll()
		s.mu.Unlock()
	}
}

// Refresh resets the ttl of the entry for key, reporting whether it existed.
func (c *ShardedCache[V]) Refresh(key string, ttl time.Duration) bool {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Refresh(key, ttl)
}

// Clear removes all entries from all shards.
func (c *ShardedCache[V]) Clear() {
	for _, s := range c.shards {
		s.mu.Lock()
		s.store.Clear()
		s.mu.Unlock()
	}
}

// Len returns the total number of entries across shards, stale included.
func (c *ShardedCache[V]) Len() int {
	total := 0
	for _, s := range c.shards {
		s.mu.RLock()
		total += s.store.Len()
		s.mu.RUnlock()
	}
	return total
}
