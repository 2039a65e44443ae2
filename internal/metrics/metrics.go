// Package metrics holds the prometheus collectors of the medal board API.
// Every method is safe on a nil *Metrics, which records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const defaultNamespace = "medalboard"

type Option func(*Metrics)

func WithNamespace(namespace string) Option {
	return func(m *Metrics) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithRegistry replaces the private registry, mostly for tests.
func WithRegistry(registry *prometheus.Registry) Option {
	return func(m *Metrics) {
		if registry != nil {
			m.registry = registry
		}
	}
}

func WithHistogramBuckets(buckets []float64) Option {
	return func(m *Metrics) {
		if len(buckets) > 0 {
			m.buckets = buckets
		}
	}
}

type Metrics struct {
	namespace string
	buckets   []float64
	registry  *prometheus.Registry

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	medalsRecorded      *prometheus.CounterVec
	medalsDeleted       prometheus.Counter
	submissions         *prometheus.CounterVec
	cacheLookups        *prometheus.CounterVec
	ledgerViolations    prometheus.Gauge
	rosterSize          *prometheus.GaugeVec
	jobRuns             *prometheus.CounterVec
}

func New(opts ...Option) *Metrics {
	m := &Metrics{
		namespace: defaultNamespace,
		buckets:   prometheus.DefBuckets,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	m.httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})
	m.httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and route.",
		Buckets:   m.buckets,
	}, []string{"method", "route"})
	m.medalsRecorded = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "medals_recorded_total",
		Help:      "Medal rows written to the ledger.",
	}, []string{"medal_type"})
	m.medalsDeleted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "medals_deleted_total",
		Help:      "Medal rows removed from the ledger.",
	})
	m.submissions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "submissions_total",
		Help:      "Result submissions by outcome.",
	}, []string{"outcome"})
	m.cacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "scoreboard_cache_total",
		Help:      "Scoreboard cache lookups by result.",
	}, []string{"result"})
	m.ledgerViolations = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "ledger_violations",
		Help:      "Ledger rows breaking a per-event rule at the last audit.",
	})
	m.rosterSize = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "roster_size",
		Help:      "Number of teams, events and categories.",
	}, []string{"kind"})
	m.jobRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "job_runs_total",
		Help:      "Maintenance job runs by kind and outcome.",
	}, []string{"kind", "outcome"})

	m.registry.MustRegister(
		m.httpRequests,
		m.httpRequestDuration,
		m.medalsRecorded,
		m.medalsDeleted,
		m.submissions,
		m.cacheLookups,
		m.ledgerViolations,
		m.rosterSize,
		m.jobRuns,
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, statusText(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) MedalRecorded(medalType string) {
	if m == nil {
		return
	}
	m.medalsRecorded.WithLabelValues(medalType).Inc()
}

func (m *Metrics) MedalDeleted() {
	if m == nil {
		return
	}
	m.medalsDeleted.Inc()
}

// Submission counts a submission outcome: accepted, rejected or failed.
func (m *Metrics) Submission(outcome string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) CacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) SetLedgerViolations(n int) {
	if m == nil {
		return
	}
	m.ledgerViolations.Set(float64(n))
}

func (m *Metrics) SetRosterSize(kind string, n int) {
	if m == nil {
		return
	}
	m.rosterSize.WithLabelValues(kind).Set(float64(n))
}

func (m *Metrics) JobRun(kind string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.jobRuns.WithLabelValues(kind, outcome).Inc()
}

func statusText(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	}
	return "2xx"
}
