// Package metrics defines the Prometheus metric collectors used by the
// word-cloud service and the analyzer, and exposes an HTTP handler for
// scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors.
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
	WordCloudRequests    *prometheus.CounterVec
	ParagraphTokens      prometheus.Histogram
	UniqueTokens         prometheus.Histogram
	CacheHitsTotal       prometheus.Counter
	CacheMissesTotal     prometheus.Counter
	RateLimitedTotal     prometheus.Counter
	FrequencyFetches     *prometheus.CounterVec
	CircuitBreakerState  *prometheus.GaugeVec
}

// New creates metrics registered on the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates metrics registered on reg. Tests pass a fresh
// prometheus.NewRegistry() to avoid duplicate registration.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed.",
			},
		),
		WordCloudRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wordcloud_requests_total",
				Help: "Word-cloud computations by outcome (ok, empty, invalid, error).",
			},
			[]string{"outcome"},
		),
		ParagraphTokens: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "wordcloud_paragraph_tokens",
				Help:    "Number of tokens per submitted paragraph.",
				Buckets: prometheus.ExponentialBuckets(1, 4, 8),
			},
		),
		UniqueTokens: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "wordcloud_unique_tokens",
				Help:    "Number of distinct tokens per submitted paragraph.",
				Buckets: prometheus.ExponentialBuckets(1, 4, 8),
			},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "wordcloud_cache_hits_total",
				Help: "Total number of word-cloud cache hits.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "wordcloud_cache_misses_total",
				Help: "Total number of word-cloud cache misses.",
			},
		),
		RateLimitedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "http_rate_limited_total",
				Help: "Requests rejected by the per-client rate limiter.",
			},
		),
		FrequencyFetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "analyzer_frequency_fetches_total",
				Help: "Frequency requests issued by the analyzer by result (applied, stale, failed).",
			},
			[]string{"result"},
		),
		CircuitBreakerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "circuit_breaker_state",
				Help: "Circuit breaker state (0=closed, 1=open, 2=half-open).",
			},
			[]string{"name"},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.WordCloudRequests,
		m.ParagraphTokens,
		m.UniqueTokens,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.RateLimitedTotal,
		m.FrequencyFetches,
		m.CircuitBreakerState,
	)

	return m
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
