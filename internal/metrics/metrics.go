package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Resolution outcome labels.
const (
	OutcomeSingle      = "single"
	OutcomeCollection  = "collection"
	OutcomeInvalidID   = "invalid_identifier"
	OutcomeConflicting = "conflicting_filters"
	OutcomeNoFilter    = "no_filter"
	OutcomeNotFound    = "not_found"
	OutcomeError       = "error"
)

// Metrics holds the Prometheus collectors of the admin API.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
	Resolutions      *prometheus.CounterVec
	WordRequests     *prometheus.CounterVec
	StatsCacheHits   prometheus.Counter
	StatsCacheMisses prometheus.Counter
}

// New creates the collectors and registers them on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "asltutor_http_requests_total",
				Help: "Total number of HTTP requests by route and status",
			},
			[]string{"method", "route", "status"},
		),

		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "asltutor_http_request_duration_seconds",
				Help:    "HTTP request latency by route",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),

		Resolutions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "asltutor_submission_resolutions_total",
				Help: "Submission query resolutions by outcome",
			},
			[]string{"outcome"},
		),

		WordRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "asltutor_word_request_messages_total",
				Help: "Word request messages consumed by the worker by result",
			},
			[]string{"result"}, // result: recorded, dropped, failed
		),

		StatsCacheHits: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "asltutor_stats_cache_hits_total",
				Help: "Top requested words served from cache",
			},
		),

		StatsCacheMisses: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "asltutor_stats_cache_misses_total",
				Help: "Top requested words loaded from the store",
			},
		),
	}
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveResolution counts one resolver outcome. Safe on a nil receiver.
func (m *Metrics) ObserveResolution(outcome string) {
	if m == nil {
		return
	}
	m.Resolutions.WithLabelValues(outcome).Inc()
}

// ObserveWordRequest counts one consumed word request message. Safe on a nil receiver.
func (m *Metrics) ObserveWordRequest(result string) {
	if m == nil {
		return
	}
	m.WordRequests.WithLabelValues(result).Inc()
}

// ObserveStatsCache counts a cache hit or miss. Safe on a nil receiver.
func (m *Metrics) ObserveStatsCache(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.StatsCacheHits.Inc()
		return
	}
	m.StatsCacheMisses.Inc()
}

// Middleware records request counts and latency labelled by chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
