package memo

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/lanedale/go-memo/v1/cache"
	"github.com/lanedale/go-memo/v1/metrics"
)

// Memoizer answers lookups from a TTL cache and computes missing values on
// demand. A miss runs the supplied compute function through singleflight, so
// concurrent callers of the same key share one execution and its result.
type Memoizer[V any] struct {
	cache *cache.SyncCache[V]
	group singleflight.Group
}

// New returns a Memoizer backed by c. A nil c gets a fresh SyncCache.
func New[V any](c *cache.SyncCache[V]) *Memoizer[V] {
	if c == nil {
		c = cache.NewSync[V]()
	}
	return &Memoizer[V]{cache: c}
}

// Do returns the cached value for key if it is live. Otherwise it runs fn,
// stores the result with the given ttl and returns it. Errors from fn
// propagate to every waiting caller and nothing is cached.
func (m *Memoizer[V]) Do(ctx context.Context, key string, ttl time.Duration, fn func(ctx context.Context) (V, error)) (V, error) {
	if v, ok, err := m.cache.Get(ctx, key); err != nil {
		var zero V
		return zero, err
	} else if ok {
		metrics.HitCounter.Inc()
		return v, nil
	}
	metrics.MissCounter.Inc()

	res, err, _ := m.group.Do(key, func() (any, error) {
		// Another caller may have stored the value while we queued.
		if v, ok, err := m.cache.Get(ctx, key); err != nil {
			return nil, err
		} else if ok {
			return v, nil
		}
		metrics.ComputeCounter.Inc()
		metrics.InflightGauge.Inc()
		defer metrics.InflightGauge.Dec()
		fresh, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		if err := m.cache.Set(ctx, key, fresh, ttl); err != nil {
			return nil, err
		}
		return fresh, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return res.(V), nil
}

// Forget drops the cached entry for key and detaches any in-flight
// computation so the next Do starts fresh.
func (m *Memoizer[V]) Forget(ctx context.Context, key string) error {
	m.group.Forget(key)
	_, _, err := m.cache.Expire(ctx, key)
	return err
}

// Cache exposes the underlying SyncCache for direct operations such as
// Refresh or ExpireAll.
func (m *Memoizer[V]) Cache() *cache.SyncCache[V] {
	return m.cache
}
