package observability

import (
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "mimichub"

// Metrics is the process-wide Prometheus registry plus in-memory query timings
// used by the health and performance endpoints.
type Metrics struct {
	registry *prometheus.Registry

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	apiInflight prometheus.Gauge

	writeOps       *prometheus.CounterVec
	writeLatency   *prometheus.HistogramVec
	writeConflicts *prometheus.CounterVec
	writeRetries   *prometheus.CounterVec

	dbQueries *prometheus.CounterVec
	dbLatency *prometheus.HistogramVec

	timings *QueryTimings
}

// NewMetrics registers every collector on registry. A nil registry gets a fresh one.
func NewMetrics(registry *prometheus.Registry) (*Metrics, error) {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	m := &Metrics{registry: registry, timings: NewQueryTimings()}

	m.apiRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		},
		[]string{"method", "route", "status"},
	)
	m.apiLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	m.apiInflight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "http_requests_in_flight",
		Help:      "HTTP requests currently being served.",
	})

	m.writeOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "write_operations_total",
			Help:      "Transactional write operations by name and outcome.",
		},
		[]string{"operation", "status"},
	)
	m.writeLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "write_operation_duration_seconds",
			Help:      "Transactional write latency.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"operation"},
	)
	m.writeConflicts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "write_conflicts_total",
			Help:      "Writes rejected with a conflict.",
		},
		[]string{"operation"},
	)
	m.writeRetries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "write_retryable_errors_total",
			Help:      "Writes that failed with a retryable error.",
		},
		[]string{"operation"},
	)

	m.dbQueries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "db_queries_total",
			Help:      "Database statements by kind, table and outcome.",
		},
		[]string{"operation", "table", "status"},
	)
	m.dbLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "db_query_duration_seconds",
			Help:      "Database statement latency.",
			// 0.5ms .. ~1s
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		},
		[]string{"operation"},
	)

	for _, c := range []prometheus.Collector{
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.writeOps, m.writeLatency, m.writeConflicts, m.writeRetries,
		m.dbQueries, m.dbLatency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) Timings() *QueryTimings { return m.timings }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RegisterDBStats exports connection pool gauges for sqlDB.
func (m *Metrics) RegisterDBStats(sqlDB *sql.DB, dbName string) error {
	if m == nil || sqlDB == nil {
		return nil
	}
	return m.registry.Register(collectors.NewDBStatsCollector(sqlDB, dbName))
}

func (m *Metrics) ApiInflightInc() {
	if m != nil {
		m.apiInflight.Inc()
	}
}

func (m *Metrics) ApiInflightDec() {
	if m != nil {
		m.apiInflight.Dec()
	}
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.apiRequests.WithLabelValues(method, route, status).Inc()
	m.apiLatency.WithLabelValues(method, route).Observe(dur.Seconds())
}

func (m *Metrics) ObserveWriteOperation(name, status string, dur time.Duration) {
	if m == nil {
		return
	}
	name = labelOr(name, "unknown")
	m.writeOps.WithLabelValues(name, labelOr(status, "unknown")).Inc()
	m.writeLatency.WithLabelValues(name).Observe(dur.Seconds())
}

func (m *Metrics) IncWriteConflict(name string) {
	if m == nil {
		return
	}
	m.writeConflicts.WithLabelValues(labelOr(name, "unknown")).Inc()
}

func (m *Metrics) IncWriteRetry(name string) {
	if m == nil {
		return
	}
	m.writeRetries.WithLabelValues(labelOr(name, "unknown")).Inc()
}

// ObserveDBQuery satisfies db.QueryObserver.
func (m *Metrics) ObserveDBQuery(operation, table string, dur time.Duration, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	operation = labelOr(operation, "unknown")
	m.dbQueries.WithLabelValues(operation, labelOr(table, "none"), status).Inc()
	m.dbLatency.WithLabelValues(operation).Observe(dur.Seconds())
	m.timings.Observe(operation, dur, err)
}

func labelOr(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}
