package search

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"rail-route-service/internal/domain"
)

// Params bound one search run. Zero budget fields mean "no limit".
type Params struct {
	StartStation string
	StartTime    time.Time
	EndTime      time.Time
	MinTransfer  time.Duration
	MaxTransfer  time.Duration
	// BranchFactor is the top-K candidate bound explored per node. It is
	// the deliberate trade-off that keeps the tree tractable and is a
	// parameter precisely so its effect on solution quality is testable.
	BranchFactor int
	MaxNodes     int
	Timeout      time.Duration
	// Trace logs the scored candidate list at every decision point.
	Trace bool
}

func (p Params) Validate() error {
	if p.StartStation == "" {
		return errors.New("params: start station must be non-empty")
	}
	if !p.EndTime.After(p.StartTime) {
		return errors.New("params: end time must be after start time")
	}
	if p.MinTransfer < 0 || p.MaxTransfer < p.MinTransfer {
		return errors.New("params: transfer window must satisfy 0 <= min <= max")
	}
	if p.BranchFactor < 1 {
		return errors.New("params: branch factor must be at least 1")
	}
	return nil
}

// Searcher runs greedy depth-first itinerary searches over an immutable
// timetable index and section rule set. "Greedy" refers to the per-node
// top-K candidate pruning; the bounded tree is still explored in full,
// depth first, with backtracking.
type Searcher struct {
	index *TimetableIndex
	rules *SectionRuleEngine
}

func NewSearcher(index *TimetableIndex, rules *SectionRuleEngine) *Searcher {
	return &Searcher{index: index, rules: rules}
}

// run holds the mutable state of one search: the route under
// construction, its ledger, and the budgets. Owned by a single goroutine.
type run struct {
	params    Params
	ledger    *SectionLedger
	route     domain.Route
	totalKm   float64
	recorder  *RouteRecorder
	maxDepth  int
	deadline  time.Time
	budgetHit bool
}

type candidate struct {
	leg     domain.Leg
	keys    []domain.SectionKey
	deltaKm float64
	score   float64
	waiting time.Duration
}

// Run executes one search and always returns a finalized result, unless
// the reference data itself is inconsistent.
func (s *Searcher) Run(ctx context.Context, p Params) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	r := &run{
		params:   p,
		ledger:   NewSectionLedger(),
		route:    domain.Route{StartStation: p.StartStation, StartTime: p.StartTime},
		recorder: NewRouteRecorder(p.StartStation, p.StartTime),
		maxDepth: maxDepth(p, s.index.MinLegDuration()),
	}
	if p.Timeout > 0 {
		r.deadline = time.Now().Add(p.Timeout)
	}

	if err := s.explore(ctx, r, p.StartStation, p.StartTime, "", 0); err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	status := StatusComplete
	switch {
	case r.budgetHit:
		status = StatusBudgetExceeded
	case len(r.recorder.best.Legs) == 0:
		status = StatusNoRoute
	}

	// The ledger must be empty again once every branch has unwound.
	if r.ledger.Len() != 0 {
		return nil, fmt.Errorf("search: %d ledger keys left after unwind", r.ledger.Len())
	}

	return r.recorder.Finalize(status), nil
}

// explore is one node of the depth-first search: rank the departures from
// the current station, then for each retained candidate commit its
// section keys, append the leg, recurse, and undo both on the way back.
func (s *Searcher) explore(ctx context.Context, r *run, station string, now time.Time, lastServiceID string, depth int) error {
	r.recorder.ObserveNode(depth)

	if r.overBudget(ctx) {
		r.budgetHit = true
		return nil
	}
	if depth >= r.maxDepth {
		return nil
	}

	cands, err := s.rankCandidates(r, station, now, lastServiceID)
	if err != nil {
		return err
	}

	for _, c := range cands {
		if err := r.ledger.Commit(c.keys); err != nil {
			return err
		}
		r.route.Legs = append(r.route.Legs, c.leg)
		r.totalKm += c.deltaKm

		if r.recorder.Record(r.route, r.totalKm) && r.params.Trace {
			log.Printf("search: new best km=%.1f legs=%d station=%s",
				r.totalKm, len(r.route.Legs), c.leg.Service.Destination)
		}

		err := s.explore(ctx, r, c.leg.Service.Destination, c.leg.Arrival, c.leg.Service.ID, depth+1)

		r.route.Legs = r.route.Legs[:len(r.route.Legs)-1]
		r.totalKm -= c.deltaKm
		if rbErr := r.ledger.Rollback(c.keys); rbErr != nil && err == nil {
			err = rbErr
		}
		r.recorder.ObserveBacktrack()

		if err != nil {
			return err
		}
		if r.budgetHit {
			return nil
		}
	}

	return nil
}

// rankCandidates gathers the viable departures from a station, scores
// them against the current ledger without committing anything, and keeps
// the top-K by score. The transfer window is a hard bound on both sides:
// a departure earlier than now+min or later than now+max is discarded.
func (s *Searcher) rankCandidates(r *run, station string, now time.Time, lastServiceID string) ([]candidate, error) {
	earliest := now.Add(r.params.MinTransfer)
	latest := now.Add(r.params.MaxTransfer)

	var cands []candidate
	for _, svc := range s.index.DeparturesFrom(station, earliest) {
		if svc.Departure.After(latest) {
			break // departures are ordered
		}
		if svc.ID == lastServiceID {
			// Staying on the train just ridden is not a transfer.
			continue
		}
		if svc.Arrival.After(r.params.EndTime) {
			continue
		}

		deltaKm, keys, err := s.rules.CountableDistance(svc, r.ledger)
		if err != nil {
			return nil, err
		}

		waiting := svc.Departure.Sub(now)
		score, ok := scoreCandidate(deltaKm, waiting, svc.Duration())
		if !ok {
			continue
		}

		cands = append(cands, candidate{
			leg: domain.Leg{
				Service:     svc,
				Departure:   svc.Departure,
				Arrival:     svc.Arrival,
				CountedKm:   deltaKm,
				ClaimedKeys: keys,
			},
			keys:    keys,
			deltaKm: deltaKm,
			score:   score,
			waiting: waiting,
		})
	}

	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].score != cands[j].score {
			return cands[i].score > cands[j].score
		}
		if !cands[i].leg.Departure.Equal(cands[j].leg.Departure) {
			return cands[i].leg.Departure.Before(cands[j].leg.Departure)
		}
		return cands[i].leg.Service.ID < cands[j].leg.Service.ID
	})

	if r.params.Trace && len(cands) > 0 {
		var b strings.Builder
		for i, c := range cands {
			if i > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "%s(km=%.1f wait=%s score=%.3f)",
				c.leg.Service.ID, c.deltaKm, c.waiting, c.score)
		}
		log.Printf("search: station=%s t=%s candidates=%s",
			station, now.Format("15:04"), b.String())
	}

	if len(cands) > r.params.BranchFactor {
		cands = cands[:r.params.BranchFactor]
	}
	return cands, nil
}

func (r *run) overBudget(ctx context.Context) bool {
	if ctx.Err() != nil {
		return true
	}
	if r.params.MaxNodes > 0 && r.recorder.nodes > r.params.MaxNodes {
		return true
	}
	if !r.deadline.IsZero() && time.Now().After(r.deadline) {
		return true
	}
	return false
}

// maxDepth bounds recursion so route length can never outgrow the time
// window: each leg costs at least the minimum transfer plus the shortest
// scheduled leg in the timetable.
func maxDepth(p Params, minLeg time.Duration) int {
	perLeg := minLeg + p.MinTransfer
	if perLeg <= 0 {
		perLeg = time.Minute
	}
	d := int(p.EndTime.Sub(p.StartTime)/perLeg) + 1
	if d < 1 {
		d = 1
	}
	return d
}
