package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// SearchConfig holds the default run parameters applied when an API
// request or the CLI leaves a field unset.
type SearchConfig struct {
	StartStation string
	StartTime    time.Time
	EndTime      time.Time
	MinTransfer  time.Duration
	MaxTransfer  time.Duration
	BranchFactor int
	MaxNodes     int
	Timeout      time.Duration
	Trace        bool
}

type Config struct {
	Port        string
	DBPath      string
	SeedPath    string
	DatabaseURL string
	RedisAddr   string
	ResultTTL   time.Duration
	NATSURL     string
	MetricsAddr string
	RoutesDir   string
	Version     string
	Search      SearchConfig
}

// Load reads configuration from .env and the environment. Every field is
// parsed and validated individually; missing optional integrations
// (Redis, NATS, metrics, Postgres) stay empty and are skipped at wiring.
func Load() (*Config, error) {
	// Ignore a missing .env file; plain env vars are fine.
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getenvDefault("PORT", "8080"),
		DBPath:      getenvDefault("DB_PATH", "data/app.db"),
		SeedPath:    getenvDefault("SEED_PATH", "data/seeds/timetable.json"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisAddr:   os.Getenv("REDIS_ADDR"),
		NATSURL:     os.Getenv("NATS_URL"),
		MetricsAddr: os.Getenv("METRICS_ADDR"),
		RoutesDir:   getenvDefault("ROUTES_DIR", "runs/routes"),
		Version:     getenvDefault("TIMETABLE_VERSION", "v1"),
	}

	var err error
	if cfg.ResultTTL, err = durationEnv("RESULT_CACHE_TTL", time.Hour); err != nil {
		return nil, err
	}

	day := getenvDefault("RUN_DATE", time.Now().Format("2006-01-02"))
	start, err := clockEnv("START_TIME", "12:00", day)
	if err != nil {
		return nil, err
	}
	end, err := clockEnv("END_TIME", "15:00", day)
	if err != nil {
		return nil, err
	}
	// An end clock at or before the start clock rolls over to the next
	// day (multi-day windows).
	if !end.After(start) {
		end = end.Add(24 * time.Hour)
	}

	minTransfer, err := minutesEnv("MIN_TRANSFER_MIN", 3)
	if err != nil {
		return nil, err
	}
	maxTransfer, err := minutesEnv("MAX_TRANSFER_MIN", 15)
	if err != nil {
		return nil, err
	}
	if maxTransfer < minTransfer {
		return nil, fmt.Errorf("config: MAX_TRANSFER_MIN %s below MIN_TRANSFER_MIN %s", maxTransfer, minTransfer)
	}

	branch, err := intEnv("BRANCH_FACTOR", 2)
	if err != nil {
		return nil, err
	}
	if branch < 1 {
		return nil, fmt.Errorf("config: BRANCH_FACTOR must be at least 1, got %d", branch)
	}

	maxNodes, err := intEnv("SEARCH_MAX_NODES", 200_000)
	if err != nil {
		return nil, err
	}
	timeout, err := durationEnv("SEARCH_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}

	cfg.Search = SearchConfig{
		StartStation: getenvDefault("START_STATION", "Ht"),
		StartTime:    start,
		EndTime:      end,
		MinTransfer:  minTransfer,
		MaxTransfer:  maxTransfer,
		BranchFactor: branch,
		MaxNodes:     maxNodes,
		Timeout:      timeout,
		Trace:        boolEnv("SEARCH_TRACE"),
	}

	return cfg, nil
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func intEnv(k string, def int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("config: invalid %s: %q", k, v)
	}
	return n, nil
}

func minutesEnv(k string, defMinutes int) (time.Duration, error) {
	n, err := intEnv(k, defMinutes)
	if err != nil {
		return 0, err
	}
	return time.Duration(n) * time.Minute, nil
}

func durationEnv(k string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("config: invalid %s: %q", k, v)
	}
	return d, nil
}

// clockEnv parses an HH:MM clock on the given day, local time.
func clockEnv(k, def, day string) (time.Time, error) {
	v := getenvDefault(k, def)
	t, err := time.ParseInLocation("2006-01-02 15:04", day+" "+v, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("config: invalid %s (want HH:MM on %s): %q", k, day, v)
	}
	return t, nil
}

func boolEnv(k string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(k))) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	}
	return false
}
