// Package metrics counts transcoded records and files for one run and
// writes them in Prometheus text format for the node_exporter textfile
// collector.
//
// All methods are safe on a nil *Metrics, which records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	ResultConverted = "converted"
	ResultFailed    = "failed"

	OutcomeInfo    = "info"
	OutcomeError   = "error"
	OutcomeSkipped = "skipped"
	OutcomeIOError = "io_error"
)

type Metrics struct {
	reg *prometheus.Registry

	recordsTotal       *prometheus.CounterVec
	trailingBytesTotal prometheus.Counter
	filesTotal         *prometheus.CounterVec
	fileDuration       prometheus.Histogram
	lastRun            prometheus.Gauge
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		reg: reg,
		recordsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ncom_records_total",
				Help: "NCOM records read, by checksum result",
			},
			[]string{"result"},
		),
		trailingBytesTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "ncom_trailing_bytes_total",
			Help: "Bytes of short final chunks copied through without conversion",
		}),
		filesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ncom_files_total",
				Help: "NCOM files handled, by outcome",
			},
			[]string{"outcome"},
		),
		fileDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "ncom_file_duration_seconds",
			Help:    "Time spent transcoding one file",
			Buckets: prometheus.DefBuckets,
		}),
		lastRun: f.NewGauge(prometheus.GaugeOpts{
			Name: "ncom_last_run_timestamp_seconds",
			Help: "Unix time the last run finished",
		}),
	}
}

// ObserveFile records a completed transcode. outcome is OutcomeInfo or
// OutcomeError.
func (m *Metrics) ObserveFile(outcome string, converted, failed, trailingBytes int, took time.Duration) {
	if m == nil {
		return
	}
	m.recordsTotal.WithLabelValues(ResultConverted).Add(float64(converted))
	m.recordsTotal.WithLabelValues(ResultFailed).Add(float64(failed))
	m.trailingBytesTotal.Add(float64(trailingBytes))
	m.filesTotal.WithLabelValues(outcome).Inc()
	m.fileDuration.Observe(took.Seconds())
}

func (m *Metrics) FileSkipped() {
	if m == nil {
		return
	}
	m.filesTotal.WithLabelValues(OutcomeSkipped).Inc()
}

func (m *Metrics) FileIOError() {
	if m == nil {
		return
	}
	m.filesTotal.WithLabelValues(OutcomeIOError).Inc()
}

// Finish stamps the run completion time.
func (m *Metrics) Finish(at time.Time) {
	if m == nil {
		return
	}
	m.lastRun.Set(float64(at.Unix()))
}

// WriteTextfile atomically writes all metrics to path.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.reg)
}
