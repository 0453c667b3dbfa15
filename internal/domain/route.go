package domain

import (
	"fmt"
	"time"
)

// Leg is one step taken during route search: a chosen Service plus the
// counted distance and section keys it claimed at the moment it was
// appended to the route.
type Leg struct {
	Service     Service
	Departure   time.Time
	Arrival     time.Time
	CountedKm   float64
	ClaimedKeys []SectionKey
}

// Route is an ordered sequence of legs starting at a fixed station and time.
type Route struct {
	StartStation string
	StartTime    time.Time
	Legs         []Leg
}

// TotalCountedKm sums the counted distance over all legs.
func (r Route) TotalCountedKm() float64 {
	var total float64
	for _, leg := range r.Legs {
		total += leg.CountedKm
	}
	return total
}

// ClaimedKeys returns the union of section keys claimed by all legs.
func (r Route) ClaimedKeys() map[SectionKey]struct{} {
	keys := make(map[SectionKey]struct{})
	for _, leg := range r.Legs {
		for _, k := range leg.ClaimedKeys {
			keys[k] = struct{}{}
		}
	}
	return keys
}

// Clone returns a route whose leg slice is independent of the receiver.
// Leg values are copied; the key slices they carry are never mutated
// after creation, so they may be shared.
func (r Route) Clone() Route {
	legs := make([]Leg, len(r.Legs))
	copy(legs, r.Legs)
	return Route{StartStation: r.StartStation, StartTime: r.StartTime, Legs: legs}
}

// Validate checks the route invariants: legs connect end to end, every
// transfer falls within [minTransfer, maxTransfer], and the final arrival
// does not exceed endTime.
func (r Route) Validate(minTransfer, maxTransfer time.Duration, endTime time.Time) error {
	at := r.StartStation
	now := r.StartTime

	for i, leg := range r.Legs {
		if leg.Service.Origin != at {
			return fmt.Errorf("route: leg %d departs from %q, expected %q", i, leg.Service.Origin, at)
		}

		wait := leg.Departure.Sub(now)
		if wait < minTransfer {
			return fmt.Errorf("route: leg %d transfer %s below minimum %s", i, wait, minTransfer)
		}
		if wait > maxTransfer {
			return fmt.Errorf("route: leg %d transfer %s above maximum %s", i, wait, maxTransfer)
		}

		at = leg.Service.Destination
		now = leg.Arrival
	}

	if len(r.Legs) > 0 && now.After(endTime) {
		return fmt.Errorf("route: final arrival %s exceeds end time %s", now, endTime)
	}

	return nil
}
