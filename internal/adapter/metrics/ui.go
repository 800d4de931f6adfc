package metrics

import "github.com/prometheus/client_golang/prometheus"

// UIMetrics holds Prometheus metrics for page sessions and their dropdowns.
type UIMetrics struct {
	PageSessions      prometheus.Gauge
	PageSessionsEnded *prometheus.CounterVec
	DropdownChanges   *prometheus.CounterVec
	EventStreams      prometheus.Gauge
	EventsPublished   prometheus.Counter
}

// NewUIMetrics creates and registers UI metrics on the given registry.
func NewUIMetrics(reg prometheus.Registerer) *UIMetrics {
	m := &UIMetrics{
		PageSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ui",
			Name:      "page_sessions",
			Help:      "Number of open page sessions.",
		}),
		PageSessionsEnded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ui",
			Name:      "page_sessions_ended_total",
			Help:      "Total number of ended page sessions, by reason.",
		}, []string{"reason"}),
		DropdownChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ui",
			Name:      "dropdown_changes_total",
			Help:      "Total number of active dropdown changes, by kind (opened, superseded, closed).",
		}, []string{"kind"}),
		EventStreams: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ui",
			Name:      "event_streams",
			Help:      "Number of connected dropdown event WebSockets.",
		}),
		EventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ui",
			Name:      "events_published_total",
			Help:      "Total number of dropdown events written to WebSockets.",
		}),
	}

	reg.MustRegister(m.PageSessions, m.PageSessionsEnded, m.DropdownChanges, m.EventStreams, m.EventsPublished)
	return m
}
