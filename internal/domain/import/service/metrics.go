package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for spreadsheet imports.
type Metrics struct {
	// Rows processed by outcome: inserted, updated, unchanged, ignored
	Rows *prometheus.CounterVec

	// Runs by final status: succeeded, failed, dry_run
	Runs *prometheus.CounterVec

	Duration prometheus.Histogram
}

// NewMetrics registers the import metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Rows: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cadastro_import_rows_total",
			Help: "Spreadsheet rows processed by outcome",
		}, []string{"outcome"}),

		Runs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cadastro_import_runs_total",
			Help: "Import runs by final status",
		}, []string{"status"}),

		Duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "cadastro_import_duration_seconds",
			Help:    "Duration of a full import run",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
	}
}

// ObserveRun records the outcome of one run.
func (m *Metrics) ObserveRun(status string, d time.Duration, s *Summary) {
	if m == nil {
		return
	}
	m.Runs.WithLabelValues(status).Inc()
	m.Duration.Observe(d.Seconds())
	if s == nil {
		return
	}
	m.Rows.WithLabelValues("inserted").Add(float64(s.Inserted))
	m.Rows.WithLabelValues("updated").Add(float64(s.Updated))
	m.Rows.WithLabelValues("unchanged").Add(float64(s.Unchanged))
	m.Rows.WithLabelValues("ignored").Add(float64(s.Ignored))
}
