package search

import (
	"context"
	"testing"
	"time"

	"rail-route-service/internal/domain"
)

var searchBase = time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)

func train(id, origin, dest string, st domain.ServiceType, depMin, arrMin int, km float64) domain.Service {
	return domain.Service{
		ID:          id,
		Origin:      origin,
		Destination: dest,
		Type:        st,
		Departure:   searchBase.Add(time.Duration(depMin) * time.Minute),
		Arrival:     searchBase.Add(time.Duration(arrMin) * time.Minute),
		DistanceKm:  km,
	}
}

func hubSection(id string, km float64, stations ...string) domain.Section {
	return domain.Section{
		ID:       id,
		Stations: stations,
		LengthKm: map[domain.ServiceType]float64{domain.Intercity: km, domain.Sprinter: km},
	}
}

func defaultParams(start string) Params {
	return Params{
		StartStation: start,
		StartTime:    searchBase,
		EndTime:      searchBase.Add(2 * time.Hour),
		MinTransfer:  3 * time.Minute,
		MaxTransfer:  15 * time.Minute,
		BranchFactor: 2,
	}
}

func runSearch(t *testing.T, sections []domain.Section, services []domain.Service, p Params) *Result {
	t.Helper()
	s := NewSearcher(NewTimetableIndex(services), NewSectionRuleEngine(sections))
	res, err := s.Run(context.Background(), p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return res
}

// Scenario: a start station with no outgoing services is a reported
// result, not a fault.
func TestSearchNoDeparturesIsNoRoute(t *testing.T) {
	sections := []domain.Section{hubSection("AB", 10, "A", "B")}
	services := []domain.Service{train("t1", "A", "B", domain.Intercity, 5, 25, 10)}

	res := runSearch(t, sections, services, defaultParams("B"))

	if res.Status != StatusNoRoute {
		t.Fatalf("status = %s, want %s", res.Status, StatusNoRoute)
	}
	if len(res.Legs) != 0 || res.TotalKm != 0 {
		t.Fatalf("expected empty route, got %d legs, %v km", len(res.Legs), res.TotalKm)
	}
}

// Scenario: there and back on one section counts the distance once.
func TestSearchOutAndBackCountsOnce(t *testing.T) {
	sections := []domain.Section{hubSection("AB", 10, "A", "B")}
	services := []domain.Service{
		train("fwd", "A", "B", domain.Intercity, 5, 25, 10),
		train("back", "B", "A", domain.Intercity, 30, 50, 10),
	}

	res := runSearch(t, sections, services, defaultParams("A"))

	if res.Status != StatusComplete {
		t.Fatalf("status = %s, want %s", res.Status, StatusComplete)
	}
	if res.TotalKm != 10 {
		t.Fatalf("total = %v, want 10 (second traversal contributes 0)", res.TotalKm)
	}
}

// Scenario: a line of two sections traversed once each counts both.
func TestSearchLineCountsEachSectionOnce(t *testing.T) {
	sections := []domain.Section{
		hubSection("AB", 5, "A", "B"),
		hubSection("BC", 5, "B", "C"),
	}
	services := []domain.Service{
		train("t1", "A", "B", domain.Intercity, 5, 15, 5),
		train("t2", "B", "C", domain.Intercity, 20, 30, 5),
	}

	res := runSearch(t, sections, services, defaultParams("A"))

	if res.TotalKm != 10 {
		t.Fatalf("total = %v, want 10", res.TotalKm)
	}
	if len(res.Legs) != 2 {
		t.Fatalf("got %d legs, want 2", len(res.Legs))
	}

	claimed := res.Route.ClaimedKeys()
	if len(claimed) != 2 {
		t.Fatalf("claimed %d keys, want both sections exactly once", len(claimed))
	}
	// Ledger consistency: per-leg counted distances sum to the total.
	if res.Route.TotalCountedKm() != res.TotalKm {
		t.Fatalf("leg sum %v != total %v", res.Route.TotalCountedKm(), res.TotalKm)
	}
}

// branchFixture builds a network where the locally best first move is a
// dead end and only the second-ranked move reaches the long tail.
func branchFixture() ([]domain.Section, []domain.Service) {
	sections := []domain.Section{
		hubSection("SA", 8, "S", "A"),
		hubSection("SB", 5, "S", "B"),
		hubSection("BC", 20, "B", "C"),
	}
	services := []domain.Service{
		train("lure", "S", "A", domain.Intercity, 5, 15, 8), // score 8/15
		train("slow", "S", "B", domain.Intercity, 5, 15, 5), // score 5/15
		train("tail", "B", "C", domain.Intercity, 20, 40, 20),
	}
	return sections, services
}

// Scenario: the branch factor trade-off is real and observable. K=1
// follows the lure and stops at 8 km; K=2 also explores the second move
// and finds 25 km.
func TestSearchBranchFactorTradeOff(t *testing.T) {
	sections, services := branchFixture()

	p1 := defaultParams("S")
	p1.BranchFactor = 1
	res1 := runSearch(t, sections, services, p1)
	if res1.TotalKm != 8 {
		t.Fatalf("K=1 total = %v, want 8", res1.TotalKm)
	}

	p2 := defaultParams("S")
	res2 := runSearch(t, sections, services, p2)
	if res2.TotalKm != 25 {
		t.Fatalf("K=2 total = %v, want 25", res2.TotalKm)
	}
	if res2.Legs[0].ServiceID != "slow" || res2.Legs[1].ServiceID != "tail" {
		t.Fatalf("unexpected winning legs: %+v", res2.Legs)
	}
}

func TestSearchRouteSatisfiesTransferWindow(t *testing.T) {
	sections, services := branchFixture()
	p := defaultParams("S")

	res := runSearch(t, sections, services, p)

	if err := res.Route.Validate(p.MinTransfer, p.MaxTransfer, p.EndTime); err != nil {
		t.Fatalf("winning route violates invariants: %v", err)
	}
}

func TestSearchTransferWindowIsHard(t *testing.T) {
	sections := []domain.Section{hubSection("AB", 10, "A", "B")}

	// Departs 2 minutes after start: under the 3 minute minimum.
	early := []domain.Service{train("early", "A", "B", domain.Intercity, 2, 22, 10)}
	res := runSearch(t, sections, early, defaultParams("A"))
	if res.Status != StatusNoRoute {
		t.Fatalf("sub-minimum transfer was boarded, status = %s", res.Status)
	}

	// Departs 20 minutes after start: over the 15 minute maximum.
	late := []domain.Service{train("late", "A", "B", domain.Intercity, 20, 40, 10)}
	res = runSearch(t, sections, late, defaultParams("A"))
	if res.Status != StatusNoRoute {
		t.Fatalf("over-maximum transfer was boarded, status = %s", res.Status)
	}
}

func TestSearchArrivalAfterEndTimeExcluded(t *testing.T) {
	sections := []domain.Section{hubSection("AB", 10, "A", "B")}
	services := []domain.Service{train("t1", "A", "B", domain.Intercity, 5, 135, 10)}

	res := runSearch(t, sections, services, defaultParams("A"))
	if res.Status != StatusNoRoute {
		t.Fatalf("leg arriving past end time was boarded, status = %s", res.Status)
	}
}

func TestSearchDoesNotReboardSameService(t *testing.T) {
	// Same service id appearing downstream must be skipped: riding on is
	// not a transfer.
	sections := []domain.Section{
		hubSection("AB", 5, "A", "B"),
		hubSection("BC", 5, "B", "C"),
	}
	services := []domain.Service{
		train("ic1", "A", "B", domain.Intercity, 5, 15, 5),
		{
			ID: "ic1", Origin: "B", Destination: "C", Type: domain.Intercity,
			Departure:  searchBase.Add(18 * time.Minute),
			Arrival:    searchBase.Add(28 * time.Minute),
			DistanceKm: 5,
		},
	}

	res := runSearch(t, sections, services, defaultParams("A"))
	if len(res.Route.Legs) != 1 {
		t.Fatalf("got %d legs, want 1 (no re-boarding of ic1)", len(res.Route.Legs))
	}
}

func TestSearchNodeBudgetReturnsPartialBest(t *testing.T) {
	sections := []domain.Section{
		hubSection("AB", 5, "A", "B"),
		hubSection("BC", 5, "B", "C"),
	}
	services := []domain.Service{
		train("t1", "A", "B", domain.Intercity, 5, 15, 5),
		train("t2", "B", "C", domain.Intercity, 20, 30, 5),
	}

	p := defaultParams("A")
	p.MaxNodes = 1
	res := runSearch(t, sections, services, p)

	if res.Status != StatusBudgetExceeded {
		t.Fatalf("status = %s, want %s", res.Status, StatusBudgetExceeded)
	}
	// The best accumulated before the budget hit is still returned.
	if res.TotalKm != 5 {
		t.Fatalf("total = %v, want 5", res.TotalKm)
	}
}

func TestSearchCancelledContextFinalizes(t *testing.T) {
	sections := []domain.Section{hubSection("AB", 10, "A", "B")}
	services := []domain.Service{train("t1", "A", "B", domain.Intercity, 5, 25, 10)}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewSearcher(NewTimetableIndex(services), NewSectionRuleEngine(sections))
	res, err := s.Run(ctx, defaultParams("A"))
	if err != nil {
		t.Fatalf("cancellation must finalize, not fail: %v", err)
	}
	if res.Status != StatusBudgetExceeded {
		t.Fatalf("status = %s, want %s", res.Status, StatusBudgetExceeded)
	}
}

func TestSearchInvalidParams(t *testing.T) {
	s := NewSearcher(NewTimetableIndex(nil), NewSectionRuleEngine(nil))

	p := defaultParams("A")
	p.BranchFactor = 0
	if _, err := s.Run(context.Background(), p); err == nil {
		t.Fatal("expected error for zero branch factor")
	}

	p = defaultParams("A")
	p.EndTime = p.StartTime
	if _, err := s.Run(context.Background(), p); err == nil {
		t.Fatal("expected error for empty time window")
	}
}
