// Package observability provides the Prometheus instrumentation and the
// structured logger shared by the processing pipeline and the command
// line tools.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and histograms for the
// strong-motion processing pipeline.
type Metrics struct {
	StationsLoaded prometheus.Counter
	ComputeErrors  prometheus.Counter
	ComputeSeconds prometheus.Histogram

	// Cache lookups by result: labels result={hit,miss}.
	CacheLookups *prometheus.CounterVec
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		StationsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "strongmotion",
			Name:      "stations_loaded_total",
			Help:      "Total station records loaded from disk.",
		}),
		ComputeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "strongmotion",
			Name:      "compute_errors_total",
			Help:      "Total station processing failures.",
		}),
		ComputeSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "strongmotion",
			Name:      "compute_duration_seconds",
			Help:      "Duration of one full station computation.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "strongmotion",
			Name:      "cache_lookups_total",
			Help:      "Bundle cache lookups by result.",
		}, []string{"result"}),
	}

	prometheus.MustRegister(
		m.StationsLoaded,
		m.ComputeErrors,
		m.ComputeSeconds,
		m.CacheLookups,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		StationsLoaded: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "strongmotion", Name: "stations_loaded_total"}),
		ComputeErrors:  prometheus.NewCounter(prometheus.CounterOpts{Namespace: "strongmotion", Name: "compute_errors_total"}),
		ComputeSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "strongmotion", Name: "compute_duration_seconds"}),
		CacheLookups:   prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "strongmotion", Name: "cache_lookups_total"}, []string{"result"}),
	}
}
