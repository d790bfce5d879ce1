// Package metrics holds the Prometheus instruments of an import run.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "spine_import"

// Table outcome labels.
const (
	StatusOK      = "ok"
	StatusSkipped = "skipped"
	StatusFailed  = "failed"
)

// Metrics are the instruments of one registry.
type Metrics struct {
	registry *prometheus.Registry

	TablesTotal     *prometheus.CounterVec
	RowsTotal       *prometheus.CounterVec
	RecordsTotal    *prometheus.CounterVec
	RowErrorsTotal  *prometheus.CounterVec
	TableDuration   *prometheus.HistogramVec
	RunsTotal       *prometheus.CounterVec
	SinkImported    prometheus.Counter
	SinkErrorsTotal prometheus.Counter
}

// New registers the instruments on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		TablesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tables_total",
				Help:      "Total number of tables processed",
			},
			[]string{"source", "status"},
		),
		RowsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rows_total",
				Help:      "Total number of data rows read",
			},
			[]string{"source"},
		),
		RecordsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "records_total",
				Help:      "Total number of records produced, by bucket",
			},
			[]string{"bucket"},
		),
		RowErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "row_errors_total",
				Help:      "Total number of row errors",
			},
			[]string{"source"},
		),
		TableDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "table_duration_seconds",
				Help:      "Duration of table executions",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
			},
			[]string{"source"},
		),
		RunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Total number of import runs, by result",
			},
			[]string{"result"},
		),
		SinkImported: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sink_imported_total",
				Help:      "Total number of items accepted by sinks",
			},
		),
		SinkErrorsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sink_errors_total",
				Help:      "Total number of integrity errors reported by sinks",
			},
		),
	}
}

// Registry returns the registry holding the instruments.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveTable records one finished table.
func (m *Metrics) ObserveTable(source, status string, rows, rowErrors int, elapsed time.Duration) {
	if m == nil {
		return
	}

	m.TablesTotal.WithLabelValues(source, status).Inc()

	if status == StatusSkipped {
		return
	}

	m.RowsTotal.WithLabelValues(source).Add(float64(rows))
	m.RowErrorsTotal.WithLabelValues(source).Add(float64(rowErrors))
	m.TableDuration.WithLabelValues(source).Observe(elapsed.Seconds())
}

// ObserveRecords adds per-bucket record counts.
func (m *Metrics) ObserveRecords(counts map[string]int) {
	if m == nil {
		return
	}

	for bucket, n := range counts {
		m.RecordsTotal.WithLabelValues(bucket).Add(float64(n))
	}
}

// ObserveRun records the result of a run.
func (m *Metrics) ObserveRun(result string) {
	if m == nil {
		return
	}

	m.RunsTotal.WithLabelValues(result).Inc()
}

// ObserveSink records a sink hand-off.
func (m *Metrics) ObserveSink(imported, integrityErrors int) {
	if m == nil {
		return
	}

	m.SinkImported.Add(float64(imported))
	m.SinkErrorsTotal.Add(float64(integrityErrors))
}

// WriteTextfile writes the instruments in the Prometheus text format, for the
// node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}

	return nil
}
