package metrics

import (
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector bundles the Prometheus instruments for search diagnostics on
// a private registry.
type Collector struct {
	reg *prometheus.Registry

	SearchesStarted  prometheus.Counter
	SearchesFinished *prometheus.CounterVec // status label
	NodesExpanded    prometheus.Counter
	Backtracks       prometheus.Counter
	BestDistanceKm   prometheus.Gauge
	SearchDuration   prometheus.Histogram

	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter

	RoutesPublished prometheus.Counter
	PublishErrs     prometheus.Counter
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		SearchesStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "railroute_searches_started_total",
			Help: "Total search runs started.",
		}),
		SearchesFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "railroute_searches_finished_total",
			Help: "Total search runs finished, by terminal status.",
		}, []string{"status"}),
		NodesExpanded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "railroute_nodes_expanded_total",
			Help: "Total search tree nodes expanded.",
		}),
		Backtracks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "railroute_backtracks_total",
			Help: "Total search backtracks.",
		}),
		BestDistanceKm: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "railroute_best_distance_km",
			Help: "Counted distance of the best route from the most recent run.",
		}),
		SearchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "railroute_search_duration_seconds",
			Help:    "Wall-clock duration of search runs.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
		}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "railroute_result_cache_hits_total",
			Help: "Search results served from the result cache.",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "railroute_result_cache_misses_total",
			Help: "Search requests that missed the result cache.",
		}),
		RoutesPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "railroute_routes_published_total",
			Help: "Winning routes published to downstream consumers.",
		}),
		PublishErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "railroute_route_publish_errors_total",
			Help: "Failed route publish attempts.",
		}),
	}

	reg.MustRegister(
		c.SearchesStarted, c.SearchesFinished,
		c.NodesExpanded, c.Backtracks,
		c.BestDistanceKm, c.SearchDuration,
		c.CacheHits, c.CacheMisses,
		c.RoutesPublished, c.PublishErrs,
	)

	return c
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{})
}

// Serve starts an HTTP server exposing /metrics on the given address.
func (c *Collector) Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("metrics server error: %v", err)
		}
	}()
	log.Printf("metrics listening on %s", addr)
	return srv
}
