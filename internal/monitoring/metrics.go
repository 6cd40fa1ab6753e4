// Package monitoring times backend calls, records them to the API log sink and
// exposes Prometheus metrics for the service.
package monitoring

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus collectors. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	backendRequestsTotal   *prometheus.CounterVec
	backendRequestDuration *prometheus.HistogramVec
	apiLogsDroppedTotal    prometheus.Counter
	apiLogWriteErrorsTotal prometheus.Counter
	httpRequestsTotal      *prometheus.CounterVec
	httpRequestDuration    *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them on registry
func NewMetrics(registry *prometheus.Registry) (*Metrics, error) {
	m := &Metrics{
		registry: registry,
		backendRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backend_requests_total",
				Help: "Total number of requests sent to the fleet backend",
			},
			[]string{"method", "status_code"},
		),
		backendRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "backend_request_duration_seconds",
				Help:    "Duration of requests sent to the fleet backend",
				Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
			},
			[]string{"method", "endpoint"},
		),
		apiLogsDroppedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "api_logs_dropped_total",
			Help: "API call logs dropped from the pre-authentication queue",
		}),
		apiLogWriteErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "api_log_write_errors_total",
			Help: "Failed writes of API call logs to the sink",
		}),
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests served",
			},
			[]string{"method", "route", "status_code"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests served",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}

	for _, c := range []prometheus.Collector{
		m.backendRequestsTotal,
		m.backendRequestDuration,
		m.apiLogsDroppedTotal,
		m.apiLogWriteErrorsTotal,
		m.httpRequestsTotal,
		m.httpRequestDuration,
	} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// NewDefaultMetrics creates metrics on a fresh registry that also carries Go runtime
// and process collectors
func NewDefaultMetrics() (*Metrics, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewMetrics(registry)
}

// Registry returns the registry the metrics are registered on
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the Prometheus exposition format
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

// Middleware observes the duration and status of every served request
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				status = e.Code
			}
		}
		m.observeHTTP(c.Method(), c.Route().Path, status, time.Since(start))
		return err
	}
}

func (m *Metrics) observeBackend(method, endpoint string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.backendRequestsTotal.WithLabelValues(method, statusLabel(status)).Inc()
	m.backendRequestDuration.WithLabelValues(method, endpoint).Observe(d.Seconds())
}

func (m *Metrics) observeHTTP(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) logDropped() {
	if m == nil {
		return
	}
	m.apiLogsDroppedTotal.Inc()
}

func (m *Metrics) logWriteFailed() {
	if m == nil {
		return
	}
	m.apiLogWriteErrorsTotal.Inc()
}

// statusLabel maps transport failures (status 0) to "error"
func statusLabel(status int) string {
	if status == 0 {
		return "error"
	}
	return strconv.Itoa(status)
}
