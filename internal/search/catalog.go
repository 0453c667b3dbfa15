package search

import (
	"context"
	"fmt"
	"sync"

	"rail-route-service/internal/ports"
)

// Catalog builds and memoizes one Searcher per timetable snapshot
// version. Reference data is loaded once per version, cross-checked, and
// frozen; searches then run against purely in-memory structures.
type Catalog struct {
	repo ports.TimetableRepository

	mu        sync.Mutex
	byVersion map[string]*Searcher
}

func NewCatalog(repo ports.TimetableRepository) *Catalog {
	return &Catalog{repo: repo, byVersion: make(map[string]*Searcher)}
}

// Searcher returns the searcher for a snapshot version, building it on
// first use. A service referencing a station unknown to the station table
// or to every section is a data inconsistency and fails the build.
func (c *Catalog) Searcher(ctx context.Context, version string) (*Searcher, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if s, ok := c.byVersion[version]; ok {
		return s, nil
	}

	stations, err := c.repo.ListStations(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog: list stations: %w", err)
	}
	sections, err := c.repo.ListSections(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog: list sections: %w", err)
	}
	services, err := c.repo.ListServices(ctx, version)
	if err != nil {
		return nil, fmt.Errorf("catalog: list services version %q: %w", version, err)
	}

	known := make(map[string]struct{}, len(stations))
	for _, st := range stations {
		known[st.Code] = struct{}{}
	}

	rules := NewSectionRuleEngine(sections)
	for _, svc := range services {
		for _, code := range []string{svc.Origin, svc.Destination} {
			if _, ok := known[code]; !ok {
				return nil, fmt.Errorf("catalog: service %s references unknown station %q: %w",
					svc.ID, code, ErrDataInconsistency)
			}
			if !rules.KnowsStation(code) {
				return nil, fmt.Errorf("catalog: service %s station %q lies on no section: %w",
					svc.ID, code, ErrDataInconsistency)
			}
		}
	}

	s := NewSearcher(NewTimetableIndex(services), rules)
	c.byVersion[version] = s
	return s, nil
}
