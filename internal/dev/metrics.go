package dev

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records dev loop build passes.
type Metrics struct {
	passesTotal   *prometheus.CounterVec
	passDuration  prometheus.Histogram
	lastSuccess   prometheus.Gauge
	changesTotal  prometheus.Counter
	backendStarts prometheus.Counter
}

// NewMetrics registers the dev loop metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		passesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "routekit",
			Subsystem: "dev",
			Name:      "passes_total",
			Help:      "Total number of build passes by result",
		}, []string{"result"}),

		passDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "routekit",
			Subsystem: "dev",
			Name:      "pass_duration_seconds",
			Help:      "Build pass duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),

		lastSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "routekit",
			Subsystem: "dev",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful pass",
		}),

		changesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "routekit",
			Subsystem: "dev",
			Name:      "file_changes_total",
			Help:      "Total number of file changes detected by the watcher",
		}),

		backendStarts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "routekit",
			Subsystem: "dev",
			Name:      "backend_starts_total",
			Help:      "Total number of backend process starts",
		}),
	}
}

// ObservePass records a finished pass.
func (m *Metrics) ObservePass(d time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	} else {
		m.lastSuccess.SetToCurrentTime()
	}
	m.passesTotal.WithLabelValues(result).Inc()
	m.passDuration.Observe(d.Seconds())
}

// ObserveChanges records detected file changes.
func (m *Metrics) ObserveChanges(n int) {
	m.changesTotal.Add(float64(n))
}

// ObserveBackendStart records a backend start.
func (m *Metrics) ObserveBackendStart() {
	m.backendStarts.Inc()
}
