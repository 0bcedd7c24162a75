// Package metrics provides Prometheus metrics for the stats card service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus collectors for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	// GitHub API traffic
	githubRequests        *prometheus.CounterVec
	githubRequestDuration *prometheus.HistogramVec
	githubErrors          *prometheus.CounterVec
	rateLimitHits         prometheus.Counter

	// Token pool
	tokenPoolSize     prometheus.Gauge
	tokensQuarantined prometheus.Gauge

	// Contribution batches
	batchFetches  prometheus.Counter
	batchFailures prometheus.Counter

	// Streak computation
	streakComputeDuration prometheus.Histogram

	// Result cache
	cacheHits    *prometheus.CounterVec
	cacheMisses  *prometheus.CounterVec
	cacheEntries prometheus.Gauge

	// HTTP surface
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	cardsRendered       *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "grs",
		subsystem:        "cards",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	factory := promauto.With(m.registry)

	m.githubRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "github_requests_total",
		Help:      "Outgoing GitHub API requests by endpoint kind.",
	}, []string{"endpoint"})

	m.githubRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "github_request_duration_ms",
		Help:      "GitHub API request latency in milliseconds.",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint"})

	m.githubErrors = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "github_errors_total",
		Help:      "GitHub API failures by kind.",
	}, []string{"kind"})

	m.rateLimitHits = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rate_limit_hits_total",
		Help:      "Times the GitHub API reported rate limiting.",
	})

	m.tokenPoolSize = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "token_pool_size",
		Help:      "Configured personal access tokens.",
	})

	m.tokensQuarantined = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "tokens_quarantined",
		Help:      "Tokens currently excluded after rate-limit signals.",
	})

	m.batchFetches = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "contribution_batches_total",
		Help:      "Batched contribution calendar fetches dispatched.",
	})

	m.batchFailures = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "contribution_batch_failures_total",
		Help:      "Contribution batches that degraded to empty years.",
	})

	m.streakComputeDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "streak_compute_duration_ms",
		Help:      "Streak computation latency in milliseconds.",
		Buckets:   m.histogramBuckets,
	})

	m.cacheHits = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_hits_total",
		Help:      "Result cache hits by card kind.",
	}, []string{"card"})

	m.cacheMisses = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_misses_total",
		Help:      "Result cache misses by card kind.",
	}, []string{"card"})

	m.cacheEntries = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_entries",
		Help:      "Live entries in the result cache.",
	})

	m.httpRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Inbound HTTP requests.",
	}, []string{"endpoint", "method", "status"})

	m.httpRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_ms",
		Help:      "Inbound HTTP request latency in milliseconds.",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status"})

	m.cardsRendered = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cards_rendered_total",
		Help:      "SVG cards rendered by kind.",
	}, []string{"card"})
}

// Package-level helpers delegating to the global manager.

func RecordGitHubRequest(endpoint string) {
	globalManager.githubRequests.WithLabelValues(endpoint).Inc()
}

func RecordGitHubRequestDuration(endpoint string, latencyMs float64) {
	globalManager.githubRequestDuration.WithLabelValues(endpoint).Observe(latencyMs)
}

func RecordGitHubError(kind string) {
	globalManager.githubErrors.WithLabelValues(kind).Inc()
}

func RecordRateLimitHit() {
	globalManager.rateLimitHits.Inc()
}

func UpdateTokenPoolSize(count int) {
	globalManager.tokenPoolSize.Set(float64(count))
}

func UpdateTokensQuarantined(count int) {
	globalManager.tokensQuarantined.Set(float64(count))
}

func RecordBatchFetch() {
	globalManager.batchFetches.Inc()
}

func RecordBatchFailure() {
	globalManager.batchFailures.Inc()
}

func RecordStreakComputeDuration(latencyMs float64) {
	globalManager.streakComputeDuration.Observe(latencyMs)
}

func RecordCacheHit(card string) {
	globalManager.cacheHits.WithLabelValues(card).Inc()
}

func RecordCacheMiss(card string) {
	globalManager.cacheMisses.WithLabelValues(card).Inc()
}

func UpdateCacheEntries(count int) {
	globalManager.cacheEntries.Set(float64(count))
}

func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

func RecordHTTPRequestDuration(endpoint, method, statusCode string, latencyMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(latencyMs)
}

func RecordCardRendered(card string) {
	globalManager.cardsRendered.WithLabelValues(card).Inc()
}

// GetRegistry exposes the custom registry for the /healthz handler.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
