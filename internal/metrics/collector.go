// Package metrics provides internal Prometheus metrics collection for the
// gateway. This package is internal and should not be imported by external
// projects.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Collector owns every Prometheus metric the gateway exposes: HTTP ingress,
// router/provider outcomes, budget headroom rejections, and the model-list
// cache.
type Collector struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpRequestSize     *prometheus.HistogramVec
	httpResponseSize    *prometheus.HistogramVec

	llmRequestsTotal   *prometheus.CounterVec
	llmRequestDuration *prometheus.HistogramVec
	llmTokensUsed      *prometheus.CounterVec

	routerCandidatesTotal   prometheus.Histogram
	routerFailoversTotal    *prometheus.CounterVec
	routerHeadroomRejected  *prometheus.CounterVec
	routerNoCapableProvider prometheus.Counter

	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec

	storeQueryDuration *prometheus.HistogramVec

	logger *zap.Logger
}

// NewCollector builds and registers every metric under namespace.
func NewCollector(namespace string, logger *zap.Logger) *Collector {
	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	c.httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "Total number of HTTP requests"},
		[]string{"method", "path", "status"},
	)
	c.httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{Namespace: namespace, Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds", Buckets: prometheus.DefBuckets},
		[]string{"method", "path"},
	)
	c.httpRequestSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{Namespace: namespace, Name: "http_request_size_bytes", Help: "HTTP request size in bytes", Buckets: prometheus.ExponentialBuckets(100, 10, 8)},
		[]string{"method", "path"},
	)
	c.httpResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{Namespace: namespace, Name: "http_response_size_bytes", Help: "HTTP response size in bytes", Buckets: prometheus.ExponentialBuckets(100, 10, 8)},
		[]string{"method", "path"},
	)

	c.llmRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "llm_requests_total", Help: "Total number of upstream LLM call attempts"},
		[]string{"provider", "model", "status"},
	)
	c.llmRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{Namespace: namespace, Name: "llm_request_duration_seconds", Help: "Upstream LLM call duration in seconds", Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60}},
		[]string{"provider", "model"},
	)
	c.llmTokensUsed = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "llm_tokens_used_total", Help: "Total number of tokens used"},
		[]string{"provider", "model", "type"}, // type: prompt, completion
	)

	c.routerCandidatesTotal = promauto.NewHistogram(
		prometheus.HistogramOpts{Namespace: namespace, Name: "router_candidates_per_request", Help: "Number of (provider, model) candidates enumerated per request", Buckets: []float64{0, 1, 2, 3}},
	)
	c.routerFailoversTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "router_failovers_total", Help: "Total number of cross-provider failovers"},
		[]string{"from_provider", "reason"},
	)
	c.routerHeadroomRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "router_headroom_rejected_total", Help: "Total number of candidates skipped for lack of budget headroom"},
		[]string{"provider", "model"},
	)
	c.routerNoCapableProvider = promauto.NewCounter(
		prometheus.CounterOpts{Namespace: namespace, Name: "router_no_capable_provider_total", Help: "Total number of requests that exhausted every candidate"},
	)

	c.cacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "cache_hits_total", Help: "Total number of cache hits"},
		[]string{"cache_type"},
	)
	c.cacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "cache_misses_total", Help: "Total number of cache misses"},
		[]string{"cache_type"},
	)

	c.storeQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{Namespace: namespace, Name: "store_query_duration_seconds", Help: "Usage store query duration in seconds", Buckets: prometheus.DefBuckets},
		[]string{"operation"},
	)

	logger.Info("metrics collector initialized", zap.String("namespace", namespace))

	return c
}

// RecordHTTPRequest records one ingress HTTP request.
func (c *Collector) RecordHTTPRequest(method, path string, status int, duration time.Duration, requestSize, responseSize int64) {
	c.httpRequestsTotal.WithLabelValues(method, path, statusCode(status)).Inc()
	c.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	c.httpRequestSize.WithLabelValues(method, path).Observe(float64(requestSize))
	c.httpResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
}

// RecordLLMRequest records one upstream call attempt.
func (c *Collector) RecordLLMRequest(provider, model, status string, duration time.Duration, promptTokens, completionTokens int) {
	c.llmRequestsTotal.WithLabelValues(provider, model, status).Inc()
	c.llmRequestDuration.WithLabelValues(provider, model).Observe(duration.Seconds())
	c.llmTokensUsed.WithLabelValues(provider, model, "prompt").Add(float64(promptTokens))
	c.llmTokensUsed.WithLabelValues(provider, model, "completion").Add(float64(completionTokens))
}

// RecordCandidateCount records how many (provider, model) candidates a
// single request kept after deduplication and the provider bound.
func (c *Collector) RecordCandidateCount(n int) {
	c.routerCandidatesTotal.Observe(float64(n))
}

// RecordFailover records an abandoned candidate, tagged with the error code
// of the failure that ended it.
func (c *Collector) RecordFailover(fromProvider, reason string) {
	c.routerFailoversTotal.WithLabelValues(fromProvider, reason).Inc()
}

// RecordHeadroomRejected records a candidate skipped during enumeration
// because CheckHeadroom reported no room.
func (c *Collector) RecordHeadroomRejected(provider, model string) {
	c.routerHeadroomRejected.WithLabelValues(provider, model).Inc()
}

// RecordNoCapableProvider records a request that exhausted every candidate.
func (c *Collector) RecordNoCapableProvider() {
	c.routerNoCapableProvider.Inc()
}

// RecordCacheHit records a model-list cache hit.
func (c *Collector) RecordCacheHit(cacheType string) {
	c.cacheHits.WithLabelValues(cacheType).Inc()
}

// RecordCacheMiss records a model-list cache miss.
func (c *Collector) RecordCacheMiss(cacheType string) {
	c.cacheMisses.WithLabelValues(cacheType).Inc()
}

// RecordStoreQuery records one usage-store Insert or Aggregate call.
func (c *Collector) RecordStoreQuery(operation string, duration time.Duration) {
	c.storeQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// statusCode buckets an HTTP status into its class, to keep label
// cardinality bounded.
func statusCode(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}
