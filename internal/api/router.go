package api

import (
	"net/http"

	"rail-route-service/internal/api/handlers"
	"rail-route-service/internal/config"
	"rail-route-service/internal/metrics"
	"rail-route-service/internal/ports"
	"rail-route-service/internal/search"
)

// Dependencies for the HTTP surface. Cache, Publisher and Metrics are
// optional integrations and may be nil.
type RouterDeps struct {
	Repo      ports.TimetableRepository
	Catalog   *search.Catalog
	Defaults  config.SearchConfig
	Version   string
	Cache     ports.ResultCache
	Publisher ports.RoutePublisher
	Metrics   *metrics.Collector
}

// NewRouter wires HTTP handlers with their dependencies and returns an
// http.Handler. This is the API composition root; handlers stay unaware
// of concrete adapters.
func NewRouter(deps RouterDeps) http.Handler {
	mux := http.NewServeMux()

	stationHandler := &handlers.StationHandler{Repo: deps.Repo}
	searchHandler := &handlers.SearchHandler{
		Catalog:   deps.Catalog,
		Defaults:  deps.Defaults,
		Version:   deps.Version,
		Cache:     deps.Cache,
		Publisher: deps.Publisher,
		Metrics:   deps.Metrics,
	}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/stations", stationHandler.List)
	mux.HandleFunc("/searches", searchHandler.Run)

	return loggingMiddleware(mux)
}
