package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and histograms for the submission
// pipeline and the export endpoint.
type Metrics struct {
	Submissions      *prometheus.CounterVec // labels: outcome={accepted,no_change,rejected,past_date,error}
	ValidationErrors prometheus.Counter
	RowsUpserted     prometheus.Counter
	BatchSize        prometheus.Histogram
	UpsertDuration   prometheus.Histogram
	Exports          prometheus.Counter
}

// NewMetrics creates and registers all API metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.Submissions,
		m.ValidationErrors,
		m.RowsUpserted,
		m.BatchSize,
		m.UpsertDuration,
		m.Exports,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics across tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		Submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "insumo_api",
			Name:      "submissions_total",
			Help:      "Submission attempts by outcome.",
		}, []string{"outcome"}),
		ValidationErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "insumo_api",
			Name:      "validation_errors_total",
			Help:      "Total per-row validation failures across submissions.",
		}),
		RowsUpserted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "insumo_api",
			Name:      "rows_upserted_total",
			Help:      "Hourly offers written by successful batches.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "insumo_api",
			Name:      "batch_size",
			Help:      "Non-empty rows per submitted batch.",
			Buckets:   []float64{1, 2, 4, 8, 12, 16, 20, 24, 25},
		}),
		UpsertDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "insumo_api",
			Name:      "upsert_duration_seconds",
			Help:      "Duration of the batch upsert transaction.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		Exports: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "insumo_api",
			Name:      "exports_total",
			Help:      "Spreadsheet exports served.",
		}),
	}
}
