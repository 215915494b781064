// Package metrics exposes the service's Prometheus collectors on a private
// registry so tests and multiple servers never collide on registration.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "bilancio"

// Status and result label values.
const (
	StatusOK        = "ok"
	StatusInvalid   = "invalid"
	StatusNotFound  = "not_found"
	StatusError     = "error"
	StatusPublished = "published"
	StatusMirrored  = "mirrored"
	StatusSkipped   = "skipped"
	StatusFailed    = "failed"

	ResultHit  = "hit"
	ResultMiss = "miss"
)

type Metrics struct {
	registry *prometheus.Registry

	transactions *prometheus.CounterVec
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	reportCache  *prometheus.CounterVec
	events       *prometheus.CounterVec
	rateLimited  prometheus.Counter
}

// New registers every collector, plus the Go and process collectors, on a
// fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		transactions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transactions_total",
				Help:      "Ledger writes by operation, transaction type and status",
			},
			[]string{"operation", "type", "status"},
		),
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by method, route and status code",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		reportCache: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "report_cache_total",
				Help:      "Dashboard cache lookups by result",
			},
			[]string{"result"},
		),
		events: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_total",
				Help:      "Transaction events by action and status",
			},
			[]string{"action", "status"},
		),
		rateLimited: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limited_total",
				Help:      "Requests rejected by the rate limiter",
			},
		),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry is exposed for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// RecordTransaction counts a ledger write. txType is empty for deletes.
func (m *Metrics) RecordTransaction(operation, txType, status string) {
	m.transactions.WithLabelValues(operation, txType, status).Inc()
}

// ObserveHTTP satisfies the trace middleware's observer.
func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) RecordCache(hit bool) {
	if hit {
		m.reportCache.WithLabelValues(ResultHit).Inc()
		return
	}
	m.reportCache.WithLabelValues(ResultMiss).Inc()
}

// RecordEvent counts a publish attempt or a mirror outcome.
func (m *Metrics) RecordEvent(action, status string) {
	m.events.WithLabelValues(action, status).Inc()
}

func (m *Metrics) RecordRateLimited() { m.rateLimited.Inc() }
