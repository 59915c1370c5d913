package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// HitCounter tracks memoizer lookups answered from cache.
	HitCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "memo_hits_total",
		Help: "Total number of memoizer cache hits",
	})
	// MissCounter tracks memoizer lookups that missed the cache.
	MissCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "memo_misses_total",
		Help: "Total number of memoizer cache misses",
	})
	// ComputeCounter tracks how many times a compute function actually ran.
	ComputeCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "memo_computes_total",
		Help: "Total number of compute function executions",
	})
	// InflightGauge reports the number of compute functions currently running.
	InflightGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "memo_inflight",
		Help: "Current number of in-flight compute functions",
	})
)

// NewRegistry creates a new Prometheus registry.
func NewRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

// RegisterCoreMetrics registers memo core metrics on the provided registry.
func RegisterCoreMetrics(reg prometheus.Registerer) {
	reg.MustRegister(HitCounter, MissCounter, ComputeCounter, InflightGauge)
}
