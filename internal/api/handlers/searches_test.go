package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"rail-route-service/internal/api/dto"
	"rail-route-service/internal/config"
	"rail-route-service/internal/domain"
	"rail-route-service/internal/search"
)

var handlerBase = time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)

type fixedTimetableRepo struct{}

func (fixedTimetableRepo) ListStations(ctx context.Context) ([]domain.Station, error) {
	return []domain.Station{{Code: "A", Name: "Alpha"}, {Code: "B", Name: "Bravo"}}, nil
}

func (fixedTimetableRepo) ListSections(ctx context.Context) ([]domain.Section, error) {
	return []domain.Section{{
		ID:       "AB",
		Stations: []string{"A", "B"},
		LengthKm: map[domain.ServiceType]float64{domain.Intercity: 10},
	}}, nil
}

func (fixedTimetableRepo) ListServices(ctx context.Context, version string) ([]domain.Service, error) {
	return []domain.Service{{
		ID: "ic1", Origin: "A", Destination: "B", Type: domain.Intercity,
		Departure:  handlerBase.Add(5 * time.Minute),
		Arrival:    handlerBase.Add(25 * time.Minute),
		DistanceKm: 10,
	}}, nil
}

type mapResultCache struct {
	entries map[string][]byte
	puts    int
}

func (c *mapResultCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	p, ok := c.entries[key]
	return p, ok, nil
}

func (c *mapResultCache) Put(ctx context.Context, key string, payload []byte) error {
	c.entries[key] = payload
	c.puts++
	return nil
}

func newSearchHandler(cache *mapResultCache) *SearchHandler {
	h := &SearchHandler{
		Catalog: search.NewCatalog(fixedTimetableRepo{}),
		Defaults: config.SearchConfig{
			StartStation: "A",
			StartTime:    handlerBase,
			EndTime:      handlerBase.Add(2 * time.Hour),
			MinTransfer:  3 * time.Minute,
			MaxTransfer:  15 * time.Minute,
			BranchFactor: 2,
		},
		Version: "v1",
	}
	// Assign only a live cache: a typed-nil pointer in the interface
	// field would slip past the handler's nil check.
	if cache != nil {
		h.Cache = cache
	}
	return h
}

func doSearch(t *testing.T, h *SearchHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/searches", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Run(rec, req)
	return rec
}

func TestSearchHandlerRunsDefaults(t *testing.T) {
	rec := doSearch(t, newSearchHandler(nil), `{}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	var res dto.SearchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if res.Status != "complete" {
		t.Fatalf("Status = %q", res.Status)
	}
	if res.TotalKm != 10 || res.TotalHectometers != 100 {
		t.Fatalf("TotalKm = %v, Hectometers = %d", res.TotalKm, res.TotalHectometers)
	}
	if len(res.Legs) != 1 || res.Legs[0].ServiceID != "ic1" {
		t.Fatalf("Legs = %+v", res.Legs)
	}
}

func TestSearchHandlerCachesByParams(t *testing.T) {
	cache := &mapResultCache{entries: map[string][]byte{}}
	h := newSearchHandler(cache)

	first := doSearch(t, h, `{}`)
	if first.Code != http.StatusOK {
		t.Fatalf("first run: %d", first.Code)
	}
	if cache.puts != 1 {
		t.Fatalf("puts = %d after first run", cache.puts)
	}

	second := doSearch(t, h, `{}`)
	if second.Code != http.StatusOK {
		t.Fatalf("second run: %d", second.Code)
	}
	if cache.puts != 1 {
		t.Fatalf("cache hit still wrote, puts = %d", cache.puts)
	}
	if first.Body.String() != second.Body.String() {
		t.Fatal("cached response differs from computed one")
	}

	// Changing a run parameter must miss.
	doSearch(t, h, `{"branch_factor": 1}`)
	if cache.puts != 2 {
		t.Fatalf("different params reused cache entry, puts = %d", cache.puts)
	}
}

func TestSearchHandlerRejectsBadRequests(t *testing.T) {
	h := newSearchHandler(nil)

	cases := []struct {
		name string
		body string
	}{
		{"invalid json", `{`},
		{"unknown field", `{"stat_station": "A"}`},
		{"two documents", `{}{}`},
		{"inverted transfer window", `{"min_transfer_min": 20}`},
		{"zero branch factor", `{"branch_factor": 0}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doSearch(t, h, tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
			}
		})
	}
}

func TestSearchHandlerMethodNotAllowed(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/searches", nil)
	rec := httptest.NewRecorder()
	newSearchHandler(nil).Run(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Header().Get("Allow") != http.MethodPost {
		t.Fatalf("Allow = %q", rec.Header().Get("Allow"))
	}
}
