package warehouse

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts what runs did. It lives on its own registry so several
// runners (and tests) never collide.
type Metrics struct {
	Registry *prometheus.Registry

	Files    *prometheus.CounterVec
	Inserted *prometheus.CounterVec
	Rejected *prometheus.CounterVec
	Quality  *prometheus.CounterVec
	LastRun  prometheus.Gauge
}

// File outcomes as labelled in roadwh_files_total.
const (
	OutcomeNormalized  = "normalized"
	OutcomeSkipped     = "skipped"
	OutcomeSchemaError = "schema_error"
	OutcomeCommitted   = "committed"
	OutcomeRolledBack  = "rolled_back"
	OutcomeUnreadable  = "unreadable"
)

func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Files: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roadwh_files_total",
			Help: "Files handled, by category and outcome.",
		}, []string{"category", "outcome"}),
		Inserted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roadwh_rows_inserted_total",
			Help: "Fact rows committed, by category.",
		}, []string{"category"}),
		Rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roadwh_rows_rejected_total",
			Help: "Rows left out by validation, by category.",
		}, []string{"category"}),
		Quality: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roadwh_quality_observations_total",
			Help: "Data quality observations, by kind.",
		}, []string{"kind"}),
		LastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "roadwh_last_run_timestamp_seconds",
			Help: "Unix time the last run finished.",
		}),
	}
	m.Registry.MustRegister(m.Files, m.Inserted, m.Rejected, m.Quality, m.LastRun)
	return m
}

func (m *Metrics) file(category, outcome string) {
	m.Files.WithLabelValues(category, outcome).Inc()
}

func (m *Metrics) loaded(o FileOutcome) {
	switch o.State {
	case StateCommitted:
		m.file(o.Category, OutcomeCommitted)
	case StateRolledBack:
		m.file(o.Category, OutcomeRolledBack)
	default:
		m.file(o.Category, OutcomeUnreadable)
	}
	m.Inserted.WithLabelValues(o.Category).Add(float64(o.Inserted))
	m.Rejected.WithLabelValues(o.Category).Add(float64(len(o.Rejected)))
}

// WriteTextfile writes every metric in node exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}
