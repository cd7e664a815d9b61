package metrics

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "health_mcp"

// Config holds configuration for metrics collection
type Config struct {
	Enabled bool // Whether metrics are collected and exposed
}

// Manager owns the Prometheus registry and the server's collectors.
// All methods are safe on a nil *Manager and on a disabled manager.
type Manager struct {
	registry  *prometheus.Registry
	isEnabled bool
	logger    *slog.Logger

	toolCalls        *prometheus.CounterVec
	toolDuration     *prometheus.HistogramVec
	upstreamRequests *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	httpRequests     *prometheus.CounterVec
}

// NewManager creates a metrics manager with its own registry.
// If metrics are disabled, returns a no-op manager.
func NewManager(config Config, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		registry: prometheus.NewRegistry(),
		logger:   logger,
	}

	if !config.Enabled {
		logger.Info("Metrics collection disabled")
		return m
	}

	m.toolCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "tools",
		Name:      "calls_total",
		Help:      "Number of tool invocations grouped by tool and outcome.",
	}, []string{"tool", "outcome"})

	m.toolDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "tools",
		Name:      "call_duration_seconds",
		Help:      "Tool invocation latency in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"tool"})

	m.upstreamRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "upstream",
		Name:      "requests_total",
		Help:      "Number of requests sent to the health data API grouped by resource and outcome.",
	}, []string{"resource", "outcome"})

	m.upstreamDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "upstream",
		Name:      "request_duration_seconds",
		Help:      "Health data API request latency in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"resource"})

	m.httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Number of HTTP requests served grouped by status code.",
	}, []string{"code"})

	m.registry.MustRegister(
		m.toolCalls,
		m.toolDuration,
		m.upstreamRequests,
		m.upstreamDuration,
		m.httpRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m.isEnabled = true

	logger.Info("Metrics collection enabled")
	return m
}

// Enabled reports whether the manager records anything
func (m *Manager) Enabled() bool {
	return m != nil && m.isEnabled
}

// RecordToolCall records one tool invocation
func (m *Manager) RecordToolCall(tool, outcome string, duration time.Duration) {
	if !m.Enabled() {
		return
	}
	m.toolCalls.WithLabelValues(tool, outcome).Inc()
	m.toolDuration.WithLabelValues(tool).Observe(duration.Seconds())
}

// RecordUpstreamRequest records one request to the health data API
func (m *Manager) RecordUpstreamRequest(resource, outcome string, duration time.Duration) {
	if !m.Enabled() {
		return
	}
	m.upstreamRequests.WithLabelValues(resource, outcome).Inc()
	m.upstreamDuration.WithLabelValues(resource).Observe(duration.Seconds())
}

// RecordHTTPRequest records one served HTTP request
func (m *Manager) RecordHTTPRequest(statusCode int) {
	if !m.Enabled() {
		return
	}
	m.httpRequests.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Registry exposes the underlying registry (used by tests and custom exporters)
func (m *Manager) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler returns the /metrics HTTP handler
func (m *Manager) Handler() http.Handler {
	if !m.Enabled() {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
