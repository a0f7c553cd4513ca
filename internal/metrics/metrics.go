// Package metrics exposes Prometheus instruments for analytics builds, the
// result cache, ledger imports and the HTTP API.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry owns a private Prometheus registry and the instruments on it.
type Registry struct {
	reg *prometheus.Registry

	Builds        *prometheus.CounterVec
	BuildDuration *prometheus.HistogramVec
	CacheHits     prometheus.Counter
	CacheMisses   prometheus.Counter
	OrdersLoaded  prometheus.Gauge
	Imported      prometheus.Counter
	Requests      *prometheus.CounterVec
}

// NewRegistry creates a registry with every instrument registered.
func NewRegistry() *Registry {
	r := prometheus.NewRegistry()

	builds := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "restock_builds_total",
		Help: "Analytics results computed, by view.",
	}, []string{"view"})
	buildDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "restock_build_duration_seconds",
		Help:    "Time spent computing an analytics result, by view.",
		Buckets: prometheus.DefBuckets,
	}, []string{"view"})
	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{Name: "restock_cache_hits_total"})
	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{Name: "restock_cache_misses_total"})
	ordersLoaded := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "restock_orders_loaded",
		Help: "Orders in the most recently loaded order set.",
	})
	imported := prometheus.NewCounter(prometheus.CounterOpts{Name: "restock_orders_imported_total"})
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "restock_http_requests_total",
		Help: "HTTP requests served, by route pattern and status code.",
	}, []string{"route", "code"})

	r.MustRegister(builds, buildDuration, cacheHits, cacheMisses, ordersLoaded, imported, requests)
	return &Registry{
		reg:           r,
		Builds:        builds,
		BuildDuration: buildDuration,
		CacheHits:     cacheHits,
		CacheMisses:   cacheMisses,
		OrdersLoaded:  ordersLoaded,
		Imported:      imported,
		Requests:      requests,
	}
}

// Gatherer exposes the underlying registry for tests and custom exporters.
func (r *Registry) Gatherer() prometheus.Gatherer { return r.reg }

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
