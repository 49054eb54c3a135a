// Package metrics exposes Prometheus instrumentation for the summary cache,
// the aggregation engine and the HTTP layer. A nil *Manager is valid and
// records nothing.
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

const (
	defaultNamespace = "deskmetrics"
	defaultSubsystem = "attendance"
)

// Option configures a Manager
type Option func(*Manager)

// WithNamespace sets the metric namespace
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		m.namespace = namespace
	}
}

// WithSubsystem sets the metric subsystem
func WithSubsystem(subsystem string) Option {
	return func(m *Manager) {
		m.subsystem = subsystem
	}
}

// WithHistogramBuckets sets the buckets of every duration histogram, in seconds
func WithHistogramBuckets(buckets []float64) Option {
	return func(m *Manager) {
		m.histogramBuckets = buckets
	}
}

// WithRegistry registers collectors on registry instead of a fresh one
func WithRegistry(registry *prometheus.Registry) Option {
	return func(m *Manager) {
		m.registry = registry
	}
}

// WithRuntimeCollectors adds the Go runtime and process collectors
func WithRuntimeCollectors() Option {
	return func(m *Manager) {
		m.runtimeCollectors = true
	}
}

// Manager owns the registry and every collector of the service
type Manager struct {
	namespace         string
	subsystem         string
	histogramBuckets  []float64
	registry          *prometheus.Registry
	runtimeCollectors bool

	refreshTotal        *prometheus.CounterVec
	refreshDuration     *prometheus.HistogramVec
	summaryRows         *prometheus.GaugeVec
	recordsDeduplicated prometheus.Counter
	recordsMalformed    prometheus.Counter
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// NewManager creates a Manager with its own registry unless WithRegistry is given
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        defaultNamespace,
		subsystem:        defaultSubsystem,
		histogramBuckets: prometheus.DefBuckets,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}
	if m.runtimeCollectors {
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.refreshTotal = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "summary_refresh_total",
		Help:      "Summary cache window refreshes by period type and result",
	}, []string{"period_type", "result"})

	m.refreshDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "summary_refresh_duration_seconds",
		Help:      "Duration of a summary cache window refresh",
		Buckets:   m.histogramBuckets,
	}, []string{"period_type"})

	m.summaryRows = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "summary_rows",
		Help:      "Rows written by the last committed refresh per period type",
	}, []string{"period_type"})

	m.recordsDeduplicated = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "records_deduplicated_total",
		Help:      "Raw rows discarded as duplicates of an earlier attendance",
	})

	m.recordsMalformed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "records_malformed_total",
		Help:      "Rows counted but excluded from numeric aggregates",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route, method and status code",
	}, []string{"route", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request duration by route and method",
		Buckets:   m.histogramBuckets,
	}, []string{"route", "method"})
}

// RecordRefresh counts one window refresh and observes its duration
func (m *Manager) RecordRefresh(periodType string, success bool, duration time.Duration) {
	if m == nil {
		return
	}
	result := "success"
	if !success {
		result = "failure"
	}
	m.refreshTotal.WithLabelValues(periodType, result).Inc()
	m.refreshDuration.WithLabelValues(periodType).Observe(duration.Seconds())
}

// SetSummaryRows records the row count of the last committed refresh
func (m *Manager) SetSummaryRows(periodType string, rows int) {
	if m == nil {
		return
	}
	m.summaryRows.WithLabelValues(periodType).Set(float64(rows))
}

// RecordDeduplicated adds n discarded duplicate rows
func (m *Manager) RecordDeduplicated(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.recordsDeduplicated.Add(float64(n))
}

// RecordMalformed adds n malformed rows
func (m *Manager) RecordMalformed(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.recordsMalformed.Add(float64(n))
}

// RecordHTTPRequest counts one request and observes its duration
func (m *Manager) RecordHTTPRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}

// Registry returns the registry collectors are registered on
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
