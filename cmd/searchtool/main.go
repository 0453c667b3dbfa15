package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"rail-route-service/internal/adapters/repositories"
	"rail-route-service/internal/config"
	"rail-route-service/internal/platform/db"
	"rail-route-service/internal/search"
)

// searchtool runs one itinerary search from the configured parameters
// and saves the winning route as a CSV artifact.
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

	ctx := context.Background()
	searcher, err := catalog.Searcher(ctx, cfg.Version)
	if err != nil {
		log.Fatal(err)
	}

	params := search.Params{
		StartStation: cfg.Search.StartStation,
		StartTime:    cfg.Search.StartTime,
		EndTime:      cfg.Search.EndTime,
		MinTransfer:  cfg.Search.MinTransfer,
		MaxTransfer:  cfg.Search.MaxTransfer,
		BranchFactor: cfg.Search.BranchFactor,
		MaxNodes:     cfg.Search.MaxNodes,
		Timeout:      cfg.Search.Timeout,
		Trace:        cfg.Search.Trace,
	}

	log.Printf("search start station=%s window=%s..%s transfer=%s-%s k=%d version=%s",
		params.StartStation,
		params.StartTime.Format("15:04"), params.EndTime.Format("15:04"),
		params.MinTransfer, params.MaxTransfer, params.BranchFactor, cfg.Version)

	result, err := searcher.Run(ctx, params)
	if err != nil {
		log.Fatal(err)
	}

	printRoute(result)

	path, err := saveRoute(cfg.RoutesDir, result)
	if err != nil {
		log.Fatal(err)
	}

	end := params.StartTime
	if n := len(result.Legs); n > 0 {
		end = result.Legs[n-1].Arrival
	}
	log.Printf("saved route path=%s legs=%d total_km=%.1f hm=%d nodes=%d backtracks=%d max_depth=%d elapsed=%s end=%s status=%s",
		path, len(result.Legs), result.TotalKm, result.Hectometers,
		result.Stats.NodesExpanded, result.Stats.Backtracks, result.Stats.MaxDepth,
		result.Stats.Elapsed.Round(time.Millisecond), end.Format("15:04"), result.Status)
}

func printRoute(result *search.Result) {
	fmt.Printf("%-12s %-6s %-6s %-5s %-7s %-7s %9s %9s\n",
		"service", "from", "to", "type", "dep", "arr", "counted", "running")
	for _, leg := range result.Legs {
		fmt.Printf("%-12s %-6s %-6s %-5s %-7s %-7s %8.1fk %8.1fk\n",
			leg.ServiceID, leg.Origin, leg.Destination, leg.Type,
			leg.Departure.Format("15:04"), leg.Arrival.Format("15:04"),
			leg.CountedKm, leg.RunningKm)
	}
	fmt.Printf("total: %.1f km (%d hm)\n", result.TotalKm, result.Hectometers)
}

// saveRoute writes the legs as CSV, named by run timestamp and the total
// in hectometers.
func saveRoute(dir string, result *search.Result) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("save route: create %q: %w", dir, err)
	}

	name := fmt.Sprintf("%s_%d.csv", time.Now().Format("20060102_150405"), result.Hectometers)
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("save route: create %q: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"service_id", "origin", "destination", "type", "departure", "arrival", "counted_km", "running_km"}); err != nil {
		return "", fmt.Errorf("save route: write header: %w", err)
	}
	for _, leg := range result.Legs {
		record := []string{
			leg.ServiceID, leg.Origin, leg.Destination, string(leg.Type),
			leg.Departure.Format(time.RFC3339), leg.Arrival.Format(time.RFC3339),
			fmt.Sprintf("%.1f", leg.CountedKm), fmt.Sprintf("%.1f", leg.RunningKm),
		}
		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("save route: write leg %s: %w", leg.ServiceID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("save route: flush: %w", err)
	}

	return path, nil
}

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
