package tracker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Tracker tracks usage statistics per provider and exposes them as
// Prometheus metrics.
type Tracker struct {
	registry *prometheus.Registry

	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec
	apiSuccess  *prometheus.CounterVec
	apiFailures *prometheus.CounterVec
	requests    *prometheus.CounterVec
}

// New creates a new Tracker with its own registry.
func New() *Tracker {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	t := &Tracker{
		registry: registry,
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "textifier_cache_hits_total",
			Help: "Label cache hits per provider.",
		}, []string{"provider"}),
		cacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "textifier_cache_misses_total",
			Help: "Label cache misses per provider.",
		}, []string{"provider"}),
		apiSuccess: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "textifier_api_success_total",
			Help: "Successful remote API calls per provider.",
		}, []string{"provider"}),
		apiFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "textifier_api_failures_total",
			Help: "Failed remote API calls per provider (after retries).",
		}, []string{"provider"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "textifier_requests_total",
			Help: "Textification requests per output format.",
		}, []string{"format"}),
	}

	registry.MustRegister(t.cacheHits, t.cacheMisses, t.apiSuccess, t.apiFailures, t.requests)
	return t
}

// Registry returns the underlying Prometheus registry for the /metrics
// endpoint.
func (t *Tracker) Registry() *prometheus.Registry {
	return t.registry
}

// TrackCacheHit increments the cache hit counter.
func (t *Tracker) TrackCacheHit(provider string) {
	t.cacheHits.WithLabelValues(provider).Inc()
}

// TrackCacheMiss increments the cache miss counter.
func (t *Tracker) TrackCacheMiss(provider string) {
	t.cacheMisses.WithLabelValues(provider).Inc()
}

// TrackAPISuccess increments the API success counter.
func (t *Tracker) TrackAPISuccess(provider string) {
	t.apiSuccess.WithLabelValues(provider).Inc()
}

// TrackAPIFailure increments the API failure counter.
func (t *Tracker) TrackAPIFailure(provider string) {
	t.apiFailures.WithLabelValues(provider).Inc()
}

// TrackRequest increments the request counter for an output format.
func (t *Tracker) TrackRequest(format string) {
	t.requests.WithLabelValues(format).Inc()
}
