package config

import (
	"testing"
	"time"
)

// clearSearchEnv pins every variable Load reads so ambient environment
// (or a stray .env) cannot leak into the test.
func clearSearchEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "DB_PATH", "SEED_PATH", "DATABASE_URL", "REDIS_ADDR",
		"RESULT_CACHE_TTL", "NATS_URL", "METRICS_ADDR", "ROUTES_DIR",
		"TIMETABLE_VERSION", "RUN_DATE", "START_TIME", "END_TIME",
		"START_STATION", "MIN_TRANSFER_MIN", "MAX_TRANSFER_MIN",
		"BRANCH_FACTOR", "SEARCH_MAX_NODES", "SEARCH_TIMEOUT", "SEARCH_TRACE",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearSearchEnv(t)
	t.Setenv("RUN_DATE", "2026-08-26")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Port != "8080" {
		t.Fatalf("Port = %q", cfg.Port)
	}
	if cfg.Version != "v1" {
		t.Fatalf("Version = %q", cfg.Version)
	}
	if cfg.ResultTTL != time.Hour {
		t.Fatalf("ResultTTL = %s", cfg.ResultTTL)
	}

	s := cfg.Search
	if s.StartStation != "Ht" {
		t.Fatalf("StartStation = %q", s.StartStation)
	}
	if s.MinTransfer != 3*time.Minute || s.MaxTransfer != 15*time.Minute {
		t.Fatalf("transfer window = [%s, %s]", s.MinTransfer, s.MaxTransfer)
	}
	if s.BranchFactor != 2 {
		t.Fatalf("BranchFactor = %d", s.BranchFactor)
	}
	if s.MaxNodes != 200_000 {
		t.Fatalf("MaxNodes = %d", s.MaxNodes)
	}
	if s.Timeout != 30*time.Second {
		t.Fatalf("Timeout = %s", s.Timeout)
	}
	if s.Trace {
		t.Fatal("Trace defaulted on")
	}

	want := time.Date(2026, 8, 26, 12, 0, 0, 0, time.Local)
	if !s.StartTime.Equal(want) {
		t.Fatalf("StartTime = %s, want %s", s.StartTime, want)
	}
	if got := s.EndTime.Sub(s.StartTime); got != 3*time.Hour {
		t.Fatalf("window = %s, want 3h", got)
	}
}

func TestLoadOverrides(t *testing.T) {
	clearSearchEnv(t)
	t.Setenv("RUN_DATE", "2026-08-26")
	t.Setenv("START_STATION", "Asd")
	t.Setenv("START_TIME", "06:30")
	t.Setenv("END_TIME", "23:45")
	t.Setenv("MIN_TRANSFER_MIN", "5")
	t.Setenv("MAX_TRANSFER_MIN", "20")
	t.Setenv("BRANCH_FACTOR", "3")
	t.Setenv("SEARCH_TRACE", "yes")
	t.Setenv("RESULT_CACHE_TTL", "15m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	s := cfg.Search
	if s.StartStation != "Asd" || s.BranchFactor != 3 || !s.Trace {
		t.Fatalf("overrides not applied: %+v", s)
	}
	if s.MinTransfer != 5*time.Minute || s.MaxTransfer != 20*time.Minute {
		t.Fatalf("transfer window = [%s, %s]", s.MinTransfer, s.MaxTransfer)
	}
	if cfg.ResultTTL != 15*time.Minute {
		t.Fatalf("ResultTTL = %s", cfg.ResultTTL)
	}
	if got := s.EndTime.Sub(s.StartTime); got != 17*time.Hour+15*time.Minute {
		t.Fatalf("window = %s", got)
	}
}

func TestLoadEndClockRollsOver(t *testing.T) {
	clearSearchEnv(t)
	t.Setenv("RUN_DATE", "2026-08-26")
	t.Setenv("START_TIME", "22:00")
	t.Setenv("END_TIME", "02:00")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := cfg.Search.EndTime.Sub(cfg.Search.StartTime); got != 4*time.Hour {
		t.Fatalf("overnight window = %s, want 4h", got)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := []struct{ key, value string }{
		{"START_TIME", "noon"},
		{"MIN_TRANSFER_MIN", "-1"},
		{"BRANCH_FACTOR", "0"},
		{"SEARCH_TIMEOUT", "soon"},
	}
	for _, tc := range cases {
		t.Run(tc.key, func(t *testing.T) {
			clearSearchEnv(t)
			t.Setenv("RUN_DATE", "2026-08-26")
			t.Setenv(tc.key, tc.value)
			if _, err := Load(); err == nil {
				t.Fatalf("%s=%q accepted", tc.key, tc.value)
			}
		})
	}
}

func TestLoadRejectsInvertedTransferWindow(t *testing.T) {
	clearSearchEnv(t)
	t.Setenv("RUN_DATE", "2026-08-26")
	t.Setenv("MIN_TRANSFER_MIN", "10")
	t.Setenv("MAX_TRANSFER_MIN", "5")

	if _, err := Load(); err == nil {
		t.Fatal("max below min accepted")
	}
}
