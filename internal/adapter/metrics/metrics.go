// Package metrics registers the Prometheus collectors of the admin
// front-end on an explicit registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "barcode_admin"

// Metrics bundles every collector group so wiring code passes one value.
type Metrics struct {
	Registry *prometheus.Registry

	HTTP     *HTTPMetrics
	Errors   *prometheus.CounterVec
	Upstream *UpstreamMetrics
	Cache    *CacheMetrics
	UI       *UIMetrics
	Redis    *RedisMetrics
}

// New creates a registry and registers all collector groups on it.
func New() *Metrics {
	reg := NewRegistry()
	errs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "errors_total",
		Help:      "Total number of error responses, by error type.",
	}, []string{"type"})
	reg.MustRegister(errs)

	return &Metrics{
		Registry: reg,
		HTTP:     NewHTTPMetrics(reg),
		Errors:   errs,
		Upstream: NewUpstreamMetrics(reg),
		Cache:    NewCacheMetrics(reg),
		UI:       NewUIMetrics(reg),
		Redis:    NewRedisMetrics(reg),
	}
}

// NewRegistry creates a Prometheus registry with Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

// Handler serves the collectors of reg in the Prometheus text format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}
