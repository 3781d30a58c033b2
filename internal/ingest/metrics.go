package ingest

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/rotisserie/eris"
)

// Metrics holds the Prometheus collectors for ingestion runs. Each process
// owns its registry; a batch job pushes it to a pushgateway at exit.
type Metrics struct {
	RowsTotal      *prometheus.CounterVec
	RecordsWritten *prometheus.CounterVec
	BatchesTotal   *prometheus.CounterVec
	RunDuration    *prometheus.HistogramVec
	RunsTotal      *prometheus.CounterVec
	LastSuccess    *prometheus.GaugeVec

	registry *prometheus.Registry
}

// NewMetrics creates and registers the ingestion collectors on a fresh
// registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RowsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dnc_ingest_rows_total",
				Help: "Raw source rows by kind and outcome (accepted or a skip reason).",
			},
			[]string{"kind", "outcome"},
		),
		RecordsWritten: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dnc_ingest_records_written_total",
				Help: "Rows inserted or updated in the store by kind.",
			},
			[]string{"kind"},
		),
		BatchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dnc_ingest_batches_total",
				Help: "Write batches by kind and result (committed, failed).",
			},
			[]string{"kind", "result"},
		),
		RunDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dnc_ingest_run_duration_seconds",
				Help:    "Wall time of an ingestion run.",
				Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
			},
			[]string{"kind"},
		),
		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dnc_ingest_runs_total",
				Help: "Ingestion runs by kind and terminal status.",
			},
			[]string{"kind", "status"},
		),
		LastSuccess: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "dnc_ingest_last_success_timestamp_seconds",
				Help: "Unix time of the last completed run by kind.",
			},
			[]string{"kind"},
		),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.RowsTotal,
		m.RecordsWritten,
		m.BatchesTotal,
		m.RunDuration,
		m.RunsTotal,
		m.LastSuccess,
	)

	return m
}

// Registry returns the registry holding every collector.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) observeTally(kind string, t *Tally) {
	if m == nil {
		return
	}
	m.RowsTotal.WithLabelValues(kind, "accepted").Add(float64(t.Accepted))
	for reason, n := range t.Skipped {
		m.RowsTotal.WithLabelValues(kind, string(reason)).Add(float64(n))
	}
}

func (m *Metrics) observeBatch(kind string, ok bool) {
	if m == nil {
		return
	}
	result := "committed"
	if !ok {
		result = "failed"
	}
	m.BatchesTotal.WithLabelValues(kind, result).Inc()
}

func (m *Metrics) observeWritten(kind string, n int64) {
	if m == nil {
		return
	}
	m.RecordsWritten.WithLabelValues(kind).Add(float64(n))
}

func (m *Metrics) observeRun(kind, status string, seconds float64, finished float64) {
	if m == nil {
		return
	}
	m.RunDuration.WithLabelValues(kind).Observe(seconds)
	m.RunsTotal.WithLabelValues(kind, status).Inc()
	if status == "completed" {
		m.LastSuccess.WithLabelValues(kind).Set(finished)
	}
}

// Push sends every collector to the pushgateway at url under job.
func (m *Metrics) Push(ctx context.Context, url, job string) error {
	if err := push.New(url, job).Gatherer(m.registry).PushContext(ctx); err != nil {
		return eris.Wrapf(err, "ingest: push metrics to %s", url)
	}
	return nil
}
