package search

import (
	"sort"
	"time"

	"rail-route-service/internal/domain"
)

// TimetableIndex answers "which services depart station X at or after t".
// Services are grouped by origin once at construction and each group is
// kept sorted by departure, so a query is a map lookup plus a binary
// search instead of a scan over the full table. Read-only after
// construction.
type TimetableIndex struct {
	byOrigin    map[string][]domain.Service
	minDuration time.Duration
}

// NewTimetableIndex builds the index from the full service table.
func NewTimetableIndex(services []domain.Service) *TimetableIndex {
	idx := &TimetableIndex{
		byOrigin: make(map[string][]domain.Service),
	}

	for _, svc := range services {
		idx.byOrigin[svc.Origin] = append(idx.byOrigin[svc.Origin], svc)
		if d := svc.Duration(); d > 0 && (idx.minDuration == 0 || d < idx.minDuration) {
			idx.minDuration = d
		}
	}

	for origin := range idx.byOrigin {
		group := idx.byOrigin[origin]
		sort.Slice(group, func(i, j int) bool {
			if !group[i].Departure.Equal(group[j].Departure) {
				return group[i].Departure.Before(group[j].Departure)
			}
			return group[i].ID < group[j].ID
		})
	}

	return idx
}

// DeparturesFrom returns the services departing station at or after
// notBefore, ascending by departure time. An empty result is a dead end
// for the caller, not a fault. The returned slice shares the index's
// backing array and must not be modified.
func (idx *TimetableIndex) DeparturesFrom(station string, notBefore time.Time) []domain.Service {
	group := idx.byOrigin[station]
	i := sort.Search(len(group), func(k int) bool {
		return !group[k].Departure.Before(notBefore)
	})
	return group[i:]
}

// MinLegDuration returns the shortest positive scheduled leg duration in
// the timetable, used to bound search recursion depth. Falls back to one
// minute when the timetable is empty or degenerate.
func (idx *TimetableIndex) MinLegDuration() time.Duration {
	if idx.minDuration <= 0 {
		return time.Minute
	}
	return idx.minDuration
}
