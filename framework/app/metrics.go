package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Dispatch outcomes used as the "outcome" label.
const (
	outcomeOK        = "ok"
	outcomeCacheHit  = "cache_hit"
	outcomeEarly     = "early_response"
	outcomeRecovered = "recovered"
	outcomeError     = "error"
)

// MetricsConfig configures the dispatch metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "neatbox").
	Namespace string

	// Buckets are the histogram buckets for dispatch duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry receives the collectors. Default: a fresh registry per
	// application, so several applications can live in one process.
	Registry *prometheus.Registry
}

// MetricsOption configures the dispatch metrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) { c.Namespace = namespace }
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) { c.Buckets = buckets }
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry *prometheus.Registry) MetricsOption {
	return func(c *MetricsConfig) { c.Registry = registry }
}

// Metrics holds the dispatch collectors.
type Metrics struct {
	registry         *prometheus.Registry
	requestsTotal    *prometheus.CounterVec
	dispatchDuration *prometheus.HistogramVec
	outputCache      *prometheus.CounterVec
}

// NewMetrics registers the dispatch collectors.
//
// Metrics collected:
//   - neatbox_requests_total: requests by route and outcome
//   - neatbox_dispatch_duration_seconds: dispatch time by route
//   - neatbox_output_cache_total: output cache lookups by result (hit, miss, error)
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := MetricsConfig{
		Namespace: "neatbox",
		Buckets:   prometheus.DefBuckets,
	}
	for _, opt := range opts {
		opt(&config)
	}
	if config.Registry == nil {
		config.Registry = prometheus.NewRegistry()
	}

	factory := promauto.With(config.Registry)
	return &Metrics{
		registry: config.Registry,
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "requests_total",
			Help:      "Total number of dispatched requests",
		}, []string{"route", "outcome"}),

		dispatchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Name:      "dispatch_duration_seconds",
			Help:      "Request dispatch duration in seconds",
			Buckets:   config.Buckets,
		}, []string{"route"}),

		outputCache: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "output_cache_total",
			Help:      "Output cache lookups by result",
		}, []string{"result"}),
	}
}

// Registry returns the registry the collectors live in, for /metrics.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) observe(route, outcome string, seconds float64) {
	if route == "" {
		route = "none"
	}
	m.requestsTotal.WithLabelValues(route, outcome).Inc()
	m.dispatchDuration.WithLabelValues(route).Observe(seconds)
}

func (m *Metrics) cacheLookup(result string) {
	m.outputCache.WithLabelValues(result).Inc()
}
