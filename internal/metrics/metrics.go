// Package metrics exposes Prometheus counters for report generation.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "zipreport"

// Outcome labels for the reports counter.
const (
	OutcomeOK           = "ok"
	OutcomeInvalidInput = "invalid_input"
	OutcomeError        = "error"
)

// Metrics holds the collectors used by the upload server.
type Metrics struct {
	registry *prometheus.Registry

	Reports     *prometheus.CounterVec
	Duration    *prometheus.HistogramVec
	Scoresheets prometheus.Histogram
	UploadBytes prometheus.Histogram
}

// New registers all collectors on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Reports: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_total",
			Help:      "Report requests by output format and outcome.",
		}, []string{"format", "outcome"}),
		Duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "report_duration_seconds",
			Help:      "Time spent parsing, analyzing and rendering one export.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"format"}),
		Scoresheets: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scoresheets_per_report",
			Help:      "Number of scoresheets in each successfully parsed export.",
			Buckets:   prometheus.ExponentialBuckets(8, 2, 8),
		}),
		UploadBytes: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upload_size_bytes",
			Help:      "Size of uploaded export files.",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 8),
		}),
	}
}

// Observe records one finished report request.
func (m *Metrics) Observe(format, outcome string, elapsed time.Duration) {
	m.Reports.WithLabelValues(format, outcome).Inc()
	m.Duration.WithLabelValues(format).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
