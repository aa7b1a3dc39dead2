package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the risk engine.
type Metrics struct {
	EvaluationsTotal  *prometheus.CounterVec // labels: risk_level={low,medium,high}
	EvaluationErrors  *prometheus.CounterVec // labels: reason={validation,insufficient_data,internal}
	EvaluationLatency prometheus.Histogram

	// Source fetch metrics.
	SourceFetchDuration *prometheus.HistogramVec // labels: source
	SourceFetchFailures *prometheus.CounterVec   // labels: source
	SourceCache         *prometheus.CounterVec   // labels: source, result={hit,miss}

	// Verdict cache and alert publishing.
	VerdictCache    *prometheus.CounterVec // labels: result={hit,miss}
	AlertsPublished prometheus.Counter
	AlertErrors     prometheus.Counter
}

// NewMetrics creates and registers all engine metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		EvaluationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "terrapulse",
			Name:      "evaluations_total",
			Help:      "Completed risk evaluations by verdict level.",
		}, []string{"risk_level"}),
		EvaluationErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "terrapulse",
			Name:      "evaluation_errors_total",
			Help:      "Failed risk evaluations by reason.",
		}, []string{"reason"}),
		EvaluationLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "terrapulse",
			Name:      "evaluation_duration_seconds",
			Help:      "End-to-end duration of a risk evaluation.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		}),
		SourceFetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "terrapulse",
			Name:      "source_fetch_duration_seconds",
			Help:      "Upstream data source request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"source"}),
		SourceFetchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "terrapulse",
			Name:      "source_fetch_failures_total",
			Help:      "Upstream fetches that returned no usable data.",
		}, []string{"source"}),
		SourceCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "terrapulse",
			Name:      "source_cache_total",
			Help:      "In-process source cache lookups by source and result.",
		}, []string{"source", "result"}),
		VerdictCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "terrapulse",
			Name:      "verdict_cache_total",
			Help:      "Redis verdict cache lookups by result.",
		}, []string{"result"}),
		AlertsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "terrapulse",
			Name:      "alerts_published_total",
			Help:      "High-risk verdicts published to the alerts topic.",
		}),
		AlertErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "terrapulse",
			Name:      "alert_errors_total",
			Help:      "Failures publishing high-risk verdicts.",
		}),
	}

	prometheus.MustRegister(
		m.EvaluationsTotal,
		m.EvaluationErrors,
		m.EvaluationLatency,
		m.SourceFetchDuration,
		m.SourceFetchFailures,
		m.SourceCache,
		m.VerdictCache,
		m.AlertsPublished,
		m.AlertErrors,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		EvaluationsTotal:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "terrapulse", Name: "evaluations_total"}, []string{"risk_level"}),
		EvaluationErrors:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "terrapulse", Name: "evaluation_errors_total"}, []string{"reason"}),
		EvaluationLatency:   prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "terrapulse", Name: "evaluation_duration_seconds"}),
		SourceFetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "terrapulse", Name: "source_fetch_duration_seconds"}, []string{"source"}),
		SourceFetchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "terrapulse", Name: "source_fetch_failures_total"}, []string{"source"}),
		SourceCache:         prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "terrapulse", Name: "source_cache_total"}, []string{"source", "result"}),
		VerdictCache:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "terrapulse", Name: "verdict_cache_total"}, []string{"result"}),
		AlertsPublished:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "terrapulse", Name: "alerts_published_total"}),
		AlertErrors:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "terrapulse", Name: "alert_errors_total"}),
	}
}
