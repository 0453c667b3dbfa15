package search

import (
	"math"
	"time"

	"rail-route-service/internal/domain"
)

// Status classifies how a search run ended.
type Status string

const (
	// StatusComplete: the bounded tree was explored in full.
	StatusComplete Status = "complete"
	// StatusNoRoute: no route with at least one leg was found.
	StatusNoRoute Status = "no_route"
	// StatusBudgetExceeded: the node or wall-clock budget was hit; the
	// best route accumulated so far is still returned.
	StatusBudgetExceeded Status = "budget_exceeded"
)

// Stats carries the diagnostics of one search run.
type Stats struct {
	NodesExpanded int
	Backtracks    int
	MaxDepth      int
	Elapsed       time.Duration
}

// LegSummary is one serialized route step with its running total.
type LegSummary struct {
	ServiceID   string
	Origin      string
	Destination string
	Type        domain.ServiceType
	Departure   time.Time
	Arrival     time.Time
	CountedKm   float64
	RunningKm   float64
}

// Result is the outcome of one search run: the winning route, its
// serialized legs with running totals, and run diagnostics.
type Result struct {
	Status      Status
	Route       domain.Route
	Legs        []LegSummary
	TotalKm     float64
	Hectometers int
	Stats       Stats
}

// RouteRecorder observes the search's outcomes: it keeps the best
// complete route seen so far and accumulates run diagnostics. It holds
// the only state that survives backtracking.
type RouteRecorder struct {
	best    domain.Route
	bestKm  float64
	nodes   int
	backs   int
	deepest int
	started time.Time
}

func NewRouteRecorder(startStation string, startTime time.Time) *RouteRecorder {
	return &RouteRecorder{
		best:    domain.Route{StartStation: startStation, StartTime: startTime},
		started: time.Now(),
	}
}

// Record replaces the stored best route when the candidate's total
// counted distance is strictly greater. Ties keep the first route found.
// The route is cloned so later backtracking cannot disturb it.
func (r *RouteRecorder) Record(route domain.Route, totalKm float64) bool {
	if totalKm <= r.bestKm {
		return false
	}
	r.best = route.Clone()
	r.bestKm = totalKm
	return true
}

// BestKm returns the total counted distance of the best route so far.
func (r *RouteRecorder) BestKm() float64 { return r.bestKm }

func (r *RouteRecorder) ObserveNode(depth int) {
	r.nodes++
	if depth > r.deepest {
		r.deepest = depth
	}
}

func (r *RouteRecorder) ObserveBacktrack() { r.backs++ }

// Finalize serializes the winning route: legs in order with per-leg
// counted distance and running total, the total in kilometers and in
// hectometers, plus the run diagnostics.
func (r *RouteRecorder) Finalize(status Status) *Result {
	legs := make([]LegSummary, 0, len(r.best.Legs))
	var running float64
	for _, leg := range r.best.Legs {
		running += leg.CountedKm
		legs = append(legs, LegSummary{
			ServiceID:   leg.Service.ID,
			Origin:      leg.Service.Origin,
			Destination: leg.Service.Destination,
			Type:        leg.Service.Type,
			Departure:   leg.Departure,
			Arrival:     leg.Arrival,
			CountedKm:   leg.CountedKm,
			RunningKm:   running,
		})
	}

	return &Result{
		Status:      status,
		Route:       r.best,
		Legs:        legs,
		TotalKm:     r.bestKm,
		Hectometers: int(math.Round(r.bestKm * 10)),
		Stats: Stats{
			NodesExpanded: r.nodes,
			Backtracks:    r.backs,
			MaxDepth:      r.deepest,
			Elapsed:       time.Since(r.started),
		},
	}
}
