// Package telemetry provides Prometheus metrics for the portal.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// Sheet metrics
	SheetFetches       *prometheus.CounterVec
	SheetFetchDuration prometheus.Histogram
	SheetRows          prometheus.Gauge
	SheetCacheHits     prometheus.Counter

	// Benchmark metrics
	BenchmarkFetches       *prometheus.CounterVec
	BenchmarkFetchDuration prometheus.Histogram

	// HTTP metrics
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Pipeline metrics
	DashboardBuilds     *prometheus.CounterVec
	LastSuccessfulBuild prometheus.Gauge
	LoginAttempts       *prometheus.CounterVec
}

// NewMetrics creates a Metrics instance registered on its own registry.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "nav_portal"
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		SheetFetches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sheet",
			Name:      "fetches_total",
			Help:      "Total number of sheet fetches by source kind and status",
		}, []string{"source", "status"}),
		SheetFetchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sheet",
			Name:      "fetch_duration_seconds",
			Help:      "Sheet fetch duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		SheetRows: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "sheet",
			Name:      "rows",
			Help:      "Number of rows in the last loaded sheet",
		}),
		SheetCacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sheet",
			Name:      "cache_hits_total",
			Help:      "Total number of sheet loads served from the fetch cache",
		}),

		BenchmarkFetches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "benchmark",
			Name:      "fetches_total",
			Help:      "Total number of benchmark fetches by status",
		}, []string{"status"}),
		BenchmarkFetchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "benchmark",
			Name:      "fetch_duration_seconds",
			Help:      "Benchmark fetch duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by route, method and status code",
		}, []string{"route", "method", "code"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),

		DashboardBuilds: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dashboard",
			Name:      "builds_total",
			Help:      "Total number of dashboard builds by status",
		}, []string{"status"}),
		LastSuccessfulBuild: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "dashboard",
			Name:      "last_successful_build_timestamp",
			Help:      "Unix timestamp of the last successful dashboard build",
		}),
		LoginAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "login_attempts_total",
			Help:      "Total number of login attempts by outcome",
		}, []string{"outcome"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// RecordSheetFetch records a sheet fetch from source ("http" or "file").
func (m *Metrics) RecordSheetFetch(source string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.SheetFetches.WithLabelValues(source, status(err)).Inc()
	m.SheetFetchDuration.Observe(elapsed.Seconds())
}

// RecordSheetCacheHit counts a load served from the fetch cache.
func (m *Metrics) RecordSheetCacheHit() {
	if m == nil {
		return
	}
	m.SheetCacheHits.Inc()
}

// SetSheetRows records the row count of the last load.
func (m *Metrics) SetSheetRows(n int) {
	if m == nil {
		return
	}
	m.SheetRows.Set(float64(n))
}

// RecordBenchmarkFetch records a benchmark fetch.
func (m *Metrics) RecordBenchmarkFetch(elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.BenchmarkFetches.WithLabelValues(status(err)).Inc()
	m.BenchmarkFetchDuration.Observe(elapsed.Seconds())
}

// RecordHTTPRequest records one served request.
func (m *Metrics) RecordHTTPRequest(route, method string, code int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	m.HTTPRequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// RecordDashboardBuild records a dashboard build outcome.
func (m *Metrics) RecordDashboardBuild(err error) {
	if m == nil {
		return
	}
	m.DashboardBuilds.WithLabelValues(status(err)).Inc()
	if err == nil {
		m.LastSuccessfulBuild.SetToCurrentTime()
	}
}

// RecordLogin records a login attempt outcome ("success", "invalid", "error").
func (m *Metrics) RecordLogin(outcome string) {
	if m == nil {
		return
	}
	m.LoginAttempts.WithLabelValues(outcome).Inc()
}
