// Package observability provides Prometheus metrics for batch runs.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors updated by the batch runner.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	SymbolsProcessed  *prometheus.CounterVec
	ResultsWritten    *prometheus.CounterVec
	BatchRuns         *prometheus.CounterVec
	BatchDuration     prometheus.Histogram
	LastSuccessfulRun prometheus.Gauge

	gatherer prometheus.Gatherer
}

// NewMetrics registers the collectors on reg. A nil reg uses a fresh registry.
func NewMetrics(namespace string, reg *prometheus.Registry) *Metrics {
	if namespace == "" {
		namespace = "stock_metrics"
	}
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)

	return &Metrics{
		SymbolsProcessed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "symbols_processed_total",
			Help:      "Symbols processed by batch runs, by outcome.",
		}, []string{"status"}),
		ResultsWritten: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "results_written_total",
			Help:      "Metric rows upserted, by metric kind.",
		}, []string{"kind"}),
		BatchRuns: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_runs_total",
			Help:      "Batch runs, by outcome.",
		}, []string{"status"}),
		BatchDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_duration_seconds",
			Help:      "Wall time of batch runs.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
		LastSuccessfulRun: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_successful_run_timestamp_seconds",
			Help:      "Unix time of the last batch that completed.",
		}),
		gatherer: reg,
	}
}

// ObserveSymbol counts a processed symbol ("ok" or "failed").
func (m *Metrics) ObserveSymbol(status string) {
	if m == nil {
		return
	}
	m.SymbolsProcessed.WithLabelValues(status).Inc()
}

// ObserveWrite counts an upserted result.
func (m *Metrics) ObserveWrite(kind string) {
	if m == nil {
		return
	}
	m.ResultsWritten.WithLabelValues(kind).Inc()
}

// ObserveBatch records the outcome and duration of a batch.
func (m *Metrics) ObserveBatch(err error, started, finished time.Time) {
	if m == nil {
		return
	}
	m.BatchDuration.Observe(finished.Sub(started).Seconds())
	if err != nil {
		m.BatchRuns.WithLabelValues("failed").Inc()
		return
	}
	m.BatchRuns.WithLabelValues("completed").Inc()
	m.LastSuccessfulRun.Set(float64(finished.Unix()))
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
