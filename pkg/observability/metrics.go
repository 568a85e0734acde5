package observability

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricFilesTotal    = "requalify_files_total"
	metricEditsTotal    = "requalify_edits_total"
	metricBytesWritten  = "requalify_bytes_written_total"
	metricFileDuration  = "requalify_file_duration_seconds"
	labelGroup          = "group"
	labelOutcome        = "outcome"
	labelKind           = "kind"
	defaultBucketsStart = 0.0005
	defaultBucketsCount = 12
)

// Metrics holds the run counters on a private prometheus registry.
type Metrics struct {
	registry     *prometheus.Registry
	files        *prometheus.CounterVec
	edits        *prometheus.CounterVec
	bytesWritten prometheus.Counter
	duration     prometheus.Histogram
}

// NewMetrics registers the run instruments on a fresh registry. Each call is
// independent so tests and embedders never collide on collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		files: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metricFilesTotal,
			Help: "Files processed, by group and outcome.",
		}, []string{labelGroup, labelOutcome}),
		edits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metricEditsTotal,
			Help: "Textual edits applied, by kind.",
		}, []string{labelKind}),
		bytesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricBytesWritten,
			Help: "Bytes written back to rewritten files.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    metricFileDuration,
			Help:    "Time spent on one file.",
			Buckets: prometheus.ExponentialBuckets(defaultBucketsStart, 2, defaultBucketsCount),
		}),
	}

	m.registry.MustRegister(m.files, m.edits, m.bytesWritten, m.duration)

	return m
}

// Registry exposes the registry for scraping or gathering.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordFile counts one processed file.
func (m *Metrics) RecordFile(group, outcome string, elapsed time.Duration) {
	m.files.WithLabelValues(group, outcome).Inc()
	m.duration.Observe(elapsed.Seconds())
}

// RecordEdits adds n edits of kind. Non-positive counts are ignored.
func (m *Metrics) RecordEdits(kind string, n int) {
	if n <= 0 {
		return
	}

	m.edits.WithLabelValues(kind).Add(float64(n))
}

// RecordWritten adds n written bytes.
func (m *Metrics) RecordWritten(n int) {
	if n <= 0 {
		return
	}

	m.bytesWritten.Add(float64(n))
}

// WriteTextfile writes the current values in the text exposition format,
// suitable for the node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	err := prometheus.WriteToTextfile(path, m.registry)
	if err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}

	return nil
}
