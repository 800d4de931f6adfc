package metrics

import "github.com/prometheus/client_golang/prometheus"

// CacheMetrics holds Prometheus metrics for the lookup list cache.
type CacheMetrics struct {
	Hits          *prometheus.CounterVec
	Misses        *prometheus.CounterVec
	Invalidations *prometheus.CounterVec
	Coalesced     prometheus.Counter
}

// NewCacheMetrics creates and registers cache metrics on the given registry.
func NewCacheMetrics(reg prometheus.Registerer) *CacheMetrics {
	m := &CacheMetrics{
		Hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "lookup_cache",
			Name:      "hits_total",
			Help:      "Total number of lookup cache hits, by layer.",
		}, []string{"layer"}),
		Misses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "lookup_cache",
			Name:      "misses_total",
			Help:      "Total number of lookup cache misses, by layer.",
		}, []string{"layer"}),
		Invalidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "lookup_cache",
			Name:      "invalidations_total",
			Help:      "Total number of lookup cache invalidations, by list.",
		}, []string{"kind"}),
		Coalesced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "lookup_cache",
			Name:      "coalesced_loads_total",
			Help:      "Total number of upstream loads shared with a concurrent caller.",
		}),
	}

	reg.MustRegister(m.Hits, m.Misses, m.Invalidations, m.Coalesced)
	return m
}
