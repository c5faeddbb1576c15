// Package metrics provides Prometheus metrics for the import pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/JonMunkholm/catalog/internal/core"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics records pipeline measurements on its own registry.
type Metrics struct {
	registry *prometheus.Registry

	importsTotal   *prometheus.CounterVec
	rowsTotal      *prometheus.CounterVec
	issuesTotal    *prometheus.CounterVec
	importDuration prometheus.Histogram
	stageDuration  *prometheus.HistogramVec
	auditDegraded  prometheus.Counter
	rateLimitHits  *prometheus.CounterVec
}

var _ core.Recorder = (*Metrics)(nil)

// New registers the pipeline metrics under namespace, plus the Go runtime
// and process collectors.
func New(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,

		importsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "imports_total",
				Help:      "Total number of completed imports by final status",
			},
			[]string{"status"},
		),
		rowsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "import_rows_total",
				Help:      "Total number of imported rows by outcome",
			},
			[]string{"outcome"},
		),
		issuesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "import_issues_total",
				Help:      "Total number of row issues by code",
			},
			[]string{"code"},
		),
		importDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "import_duration_seconds",
				Help:      "Wall time of a full import",
				Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300, 600},
			},
		),
		stageDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "import_stage_duration_seconds",
				Help:      "Time spent in each pipeline stage",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
		auditDegraded: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "import_audit_degraded_total",
				Help:      "Imports whose staging record could not be fully written",
			},
		),
		rateLimitHits: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limit_hits_total",
				Help:      "Requests rejected by the per-IP rate limiter",
			},
			[]string{"route"},
		),
	}
}

// ObserveImport records the outcome of one import run.
func (m *Metrics) ObserveImport(s *core.ImportSummary) {
	if s == nil {
		return
	}
	m.importsTotal.WithLabelValues(string(s.Status)).Inc()
	m.rowsTotal.WithLabelValues("created").Add(float64(s.Created))
	m.rowsTotal.WithLabelValues("updated").Add(float64(s.Updated))
	m.rowsTotal.WithLabelValues("skipped").Add(float64(s.Skipped))
	m.rowsTotal.WithLabelValues("errored").Add(float64(s.Errored))
	m.importDuration.Observe(s.Duration.Seconds())
	if s.AuditDegraded {
		m.auditDegraded.Inc()
	}
}

// ObserveIssue counts one row issue.
func (m *Metrics) ObserveIssue(code core.IssueCode) {
	m.issuesTotal.WithLabelValues(string(code)).Inc()
}

// ObserveStageDuration records how long a pipeline stage took.
func (m *Metrics) ObserveStageDuration(stage string, d time.Duration) {
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// RateLimited counts a request rejected by the rate limiter.
func (m *Metrics) RateLimited(route string) {
	m.rateLimitHits.WithLabelValues(route).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
