package scraper

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the scraper.
type Metrics struct {
	Registry              *prometheus.Registry
	RequestsTotal         *prometheus.CounterVec
	RequestDuration       *prometheus.HistogramVec
	RecordsExtractedTotal prometheus.Counter
	EntriesSkippedTotal   prometheus.Counter
	ErrorsTotal           *prometheus.CounterVec
	RunsTotal             *prometheus.CounterVec
	BrowserSessions       prometheus.Gauge
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_requests_total",
			Help: "Total page fetches by strategy and outcome.",
		},
		[]string{"strategy", "outcome"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scraper_request_duration_seconds",
			Help:    "Page fetch latency by strategy.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"strategy"},
	)
	records := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scraper_records_extracted_total",
			Help: "Total number of product records extracted.",
		},
	)
	skipped := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scraper_entries_skipped_total",
			Help: "Total number of product entries skipped after an extraction failure.",
		},
	)
	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_errors_total",
			Help: "Total number of scraper errors by type.",
		},
		[]string{"error_type"},
	)
	runs := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_runs_total",
			Help: "Total pipeline runs by outcome.",
		},
		[]string{"outcome"},
	)
	sessions := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "scraper_browser_sessions",
			Help: "Browser sessions currently held by the rendered strategy.",
		},
	)

	registry.MustRegister(requests, requestDuration, records, skipped, errorsTotal, runs, sessions)

	return &Metrics{
		Registry:              registry,
		RequestsTotal:         requests,
		RequestDuration:       requestDuration,
		RecordsExtractedTotal: records,
		EntriesSkippedTotal:   skipped,
		ErrorsTotal:           errorsTotal,
		RunsTotal:             runs,
		BrowserSessions:       sessions,
	}
}

// IncRequest increments the requests counter for a strategy and outcome.
func (m *Metrics) IncRequest(strategy, outcome string) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(strategy, outcome).Inc()
}

// ObserveDuration records a fetch duration.
func (m *Metrics) ObserveDuration(strategy string, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(strategy).Observe(d.Seconds())
}

// AddRecords increments the extracted records counter.
func (m *Metrics) AddRecords(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.RecordsExtractedTotal.Add(float64(n))
}

// AddSkipped increments the skipped entries counter.
func (m *Metrics) AddSkipped(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.EntriesSkippedTotal.Add(float64(n))
}

// IncError increments the errors counter for a type label.
func (m *Metrics) IncError(errorType string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}

// IncRun increments the runs counter for an outcome.
func (m *Metrics) IncRun(outcome string) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(outcome).Inc()
}

// SessionOpened records a browser session acquisition.
func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.BrowserSessions.Inc()
}

// SessionClosed records a browser session release.
func (m *Metrics) SessionClosed() {
	if m == nil {
		return
	}
	m.BrowserSessions.Dec()
}
