package main

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"rail-route-service/internal/adapters/cache"
	"rail-route-service/internal/adapters/publisher"
	"rail-route-service/internal/adapters/repositories"
	"rail-route-service/internal/api"
	"rail-route-service/internal/config"
	"rail-route-service/internal/metrics"
	"rail-route-service/internal/platform/db"
	"rail-route-service/internal/ports"
	"rail-route-service/internal/search"
)

// main is the application composition root.
// It wires concrete adapters (SQLite or Postgres, Redis, NATS) behind
// ports and starts the HTTP server.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	sqlDB, err := openStore(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer sqlDB.Close()

	repo := repositories.NewSQLTimetableRepository(sqlDB)
	catalog := search.NewCatalog(repo)

	var resultCache ports.ResultCache
	if cfg.RedisAddr != "" {
		rc := cache.NewRedisResultCache(cfg.RedisAddr, cfg.ResultTTL)
		defer rc.Close()
		resultCache = rc
		log.Printf("result cache enabled addr=%s ttl=%s", cfg.RedisAddr, cfg.ResultTTL)
	}

	var routePublisher ports.RoutePublisher
	if cfg.NATSURL != "" {
		pub, err := publisher.NewNATSRoutePublisher(cfg.NATSURL)
		if err != nil {
			log.Fatal(err)
		}
		defer pub.Close()
		routePublisher = pub
		log.Printf("route publisher enabled url=%s", cfg.NATSURL)
	}

	var collector *metrics.Collector
	if cfg.MetricsAddr != "" {
		collector = metrics.NewCollector()
		collector.Serve(cfg.MetricsAddr)
	}

	router := api.NewRouter(api.RouterDeps{
		Repo:      repo,
		Catalog:   catalog,
		Defaults:  cfg.Search,
		Version:   cfg.Version,
		Cache:     resultCache,
		Publisher: routePublisher,
		Metrics:   collector,
	})

	// Write timeout covers a full search run on a cold cache.
	log.Printf("Server listening addr=:%s version=%s", cfg.Port, cfg.Version)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

// openStore connects to Postgres when DATABASE_URL is set; otherwise it
// opens the embedded SQLite store and initializes/seeds it for local runs.
func openStore(cfg *config.Config) (*sql.DB, error) {
	if cfg.DatabaseURL != "" {
		return db.Open(cfg.DatabaseURL)
	}

	sqlDB, err := sql.Open("sqlite", cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open store: open sqlite database %q: %w", cfg.DBPath, err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("open store: verify sqlite connection to %q: %w", cfg.DBPath, err)
	}

	if err := repositories.InitSchema(sqlDB); err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if err := repositories.SeedFromJSON(sqlDB, cfg.SeedPath); err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	return sqlDB, nil
}
