package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aristath/fintrack/internal/clientdata"
)

// Metrics holds the Prometheus collectors exported on /metrics
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	CacheHits       *prometheus.CounterVec
	CacheMisses     *prometheus.CounterVec
	CacheErrors     *prometheus.CounterVec
}

// NewMetrics creates the collectors on a private registry so independent
// servers (and tests) never collide on registration
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fintrack_http_requests_total",
				Help: "Total number of HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),

		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fintrack_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
			},
			[]string{"method", "route"},
		),

		CacheHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fintrack_cache_hits_total",
				Help: "Total number of report cache hits by cache",
			},
			[]string{"cache"},
		),

		CacheMisses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fintrack_cache_misses_total",
				Help: "Total number of report cache misses by cache",
			},
			[]string{"cache"},
		),

		CacheErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fintrack_cache_errors_total",
				Help: "Total number of report cache errors by cache and operation",
			},
			[]string{"cache", "op"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.RequestsTotal,
		m.RequestDuration,
		m.CacheHits,
		m.CacheMisses,
		m.CacheErrors,
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and durations. Routes are labelled by
// their chi pattern to keep label cardinality bounded.
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

		m.RequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.RequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// InstrumentCache wraps cache so lookups are counted under name
func (m *Metrics) InstrumentCache(name string, cache clientdata.Cache) clientdata.Cache {
	if cache == nil {
		return nil
	}
	return &instrumentedCache{name: name, inner: cache, metrics: m}
}

type instrumentedCache struct {
	name    string
	inner   clientdata.Cache
	metrics *Metrics
}

func (c *instrumentedCache) Get(key string, dst interface{}) (bool, error) {
	found, err := c.inner.Get(key, dst)
	switch {
	case err != nil:
		c.metrics.CacheErrors.WithLabelValues(c.name, "get").Inc()
	case found:
		c.metrics.CacheHits.WithLabelValues(c.name).Inc()
	default:
		c.metrics.CacheMisses.WithLabelValues(c.name).Inc()
	}
	return found, err
}

func (c *instrumentedCache) Set(key string, value interface{}, ttl time.Duration) error {
	err := c.inner.Set(key, value, ttl)
	if err != nil {
		c.metrics.CacheErrors.WithLabelValues(c.name, "set").Inc()
	}
	return err
}
