package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/lanedale/go-memo/v1/cache")

// SyncCache guards a Cache with a read-write mutex for access from multiple
// goroutines. Operations mirror the core Cache one to one; the context is
// only consulted for cancellation before touching storage, since no
// operation blocks.
type SyncCache[V any] struct {
	mu    sync.RWMutex
	store *Cache[V]

	hits   atomic.Uint64
	misses atomic.Uint64

	hitCounter      prometheus.Counter
	missCounter     prometheus.Counter
	evictionCounter prometheus.Counter
	latencyHist     prometheus.Histogram
	traceEnabled    bool
}

// SyncOption configures a SyncCache.
type SyncOption[V any] func(*SyncCache[V])

// WithMetrics enables Prometheus metrics collection using the provided registerer.
func WithMetrics[V any](reg prometheus.Registerer) SyncOption[V] {
	return func(c *SyncCache[V]) {
		c.hitCounter = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "memo_cache_hits_total",
			Help: "Total number of cache hits",
		})
		c.missCounter = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "memo_cache_misses_total",
			Help: "Total number of cache misses",
		})
		c.evictionCounter = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "memo_cache_evictions_total",
			Help: "Total number of entries removed from the cache",
		})
		c.latencyHist = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "memo_cache_latency_seconds",
			Help:    "Latency of cache operations",
			Buckets: prometheus.DefBuckets,
		})
		reg.MustRegister(c.hitCounter, c.missCounter, c.evictionCounter, c.latencyHist)
	}
}

// WithTracing enables OpenTelemetry tracing for cache operations.
func WithTracing[V any]() SyncOption[V] {
	return func(c *SyncCache[V]) {
		c.traceEnabled = true
	}
}

// NewSync returns a new SyncCache instance.
func NewSync[V any](opts ...SyncOption[V]) *SyncCache[V] {
	c := &SyncCache[V]{store: New[V]()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// startOp begins instrumentation for a single operation. The returned
// function must be deferred; it records latency and closes the span.
func (c *SyncCache[V]) startOp(ctx context.Context, name string) (context.Context, trace.Span, func()) {
	if !c.traceEnabled && c.latencyHist == nil {
		return ctx, nil, func() {}
	}
	var span trace.Span
	if c.traceEnabled {
		ctx, span = tracer.Start(ctx, name)
	}
	start := time.Now()
	return ctx, span, func() {
		latency := time.Since(start)
		if span != nil {
			span.SetAttributes(attribute.Int64("memo.cache.latency_ms", latency.Milliseconds()))
			span.End()
		}
		if c.latencyHist != nil {
			c.latencyHist.Observe(latency.Seconds())
		}
	}
}

func (c *SyncCache[V]) recordHit(span trace.Span) {
	c.hits.Add(1)
	if c.hitCounter != nil {
		c.hitCounter.Inc()
	}
	if span != nil {
		span.SetAttributes(attribute.String("memo.cache.result", "hit"))
	}
}

func (c *SyncCache[V]) recordMiss(span trace.Span) {
	c.misses.Add(1)
	if c.missCounter != nil {
		c.missCounter.Inc()
	}
	if span != nil {
		span.SetAttributes(attribute.String("memo.cache.result", "miss"))
	}
}

func (c *SyncCache[V]) recordEvictions(n int) {
	if c.evictionCounter != nil && n > 0 {
		c.evictionCounter.Add(float64(n))
	}
}

// Set stores value under key for the given ttl.
func (c *SyncCache[V]) Set(ctx context.Context, key string, value V, ttl time.Duration) error {
	ctx, _, done := c.startOp(ctx, "Cache.Set")
	defer done()
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	c.mu.Lock()
	c.store.Set(key, value, ttl)
	c.mu.Unlock()
	return nil
}

// Get returns the live value for key, if any. Reads take the read lock only;
// the core never mutates storage on Get.
func (c *SyncCache[V]) Get(ctx context.Context, key string) (V, bool, error) {
	ctx, span, done := c.startOp(ctx, "Cache.Get")
	defer done()
	select {
	case <-ctx.Done():
		var zero V
		return zero, false, ctx.Err()
	default:
	}
	c.mu.RLock()
	v, ok := c.store.Get(key)
	c.mu.RUnlock()
	if ok {
		c.recordHit(span)
	} else {
		c.recordMiss(span)
	}
	return v, ok, nil
}

// GetOrSet returns the existing live value for key or stores value and
// returns it. The check and the insert happen under one critical section.
func (c *SyncCache[V]) GetOrSet(ctx context.Context, key string, value V, ttl time.Duration) (V, error) {
	ctx, span, done := c.startOp(ctx, "Cache.GetOrSet")
	defer done()
	select {
	case <-ctx.Done():
		var zero V
		return zero, ctx.Err()
	default:
	}
	c.mu.Lock()
	existing, ok := c.store.Get(key)
	if !ok {
		c.store.Set(key, value, ttl)
	}
	c.mu.Unlock()
	if ok {
		c.recordHit(span)
		return existing, nil
	}
	c.recordMiss(span)
	return value, nil
}

// Expire removes the entry for key, returning its value only if it was live.
func (c *SyncCache[V]) Expire(ctx context.Context, key string) (V, bool, error) {
	ctx, _, done := c.startOp(ctx, "Cache.Expire")
	defer done()
	select {
	case <-ctx.Done():
		var zero V
		return zero, false, ctx.Err()
	default:
	}
	c.mu.Lock()
	before := c.store.Len()
	v, ok := c.store.Expire(key)
	removed := before - c.store.Len()
	c.mu.Unlock()
	c.recordEvictions(removed)
	return v, ok, nil
}

// ExpireAll removes every stale entry.
func (c *SyncCache[V]) ExpireAll(ctx context.Context) error {
	ctx, _, done := c.startOp(ctx, "Cache.ExpireAll")
	defer done()
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	c.mu.Lock()
	before := c.store.Len()
	c.store.ExpireAll()
	removed := before - c.store.Len()
	c.mu.Unlock()
	c.recordEvictions(removed)
	return nil
}

// Refresh resets the ttl of the entry for key, reporting whether it existed.
func (c *SyncCache[V]) Refresh(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ctx, _, done := c.startOp(ctx, "Cache.Refresh")
	defer done()
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	default:
	}
	c.mu.Lock()
	ok := c.store.Refresh(key, ttl)
	c.mu.Unlock()
	return ok, nil
}

// Clear removes all entries unconditionally.
func (c *SyncCache[V]) Clear(ctx context.Context) error {
	ctx, _, done := c.startOp(ctx, "Cache.Clear")
	defer done()
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	c.mu.Lock()
	removed := c.store.Len()
	c.store.Clear()
	c.mu.Unlock()
	c.recordEvictions(removed)
	return nil
}

// Len returns the number of entries currently in storage, stale included.
func (c *SyncCache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.store.Len()
}

// Stats reports basic metrics about cache usage.
type Stats struct {
	Hits   uint64
	Misses uint64
	Size   int
}

// Metrics returns current metrics for the cache.
func (c *SyncCache[V]) Metrics() Stats {
	c.mu.RLock()
	size := c.store.Len()
	c.mu.RUnlock()
	return Stats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Size:   size,
	}
}
