package search

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"rail-route-service/internal/domain"
)

// ErrDataInconsistency marks reference data that contradicts itself: a
// service touching a station no section knows, a section without a
// published length for a traversing type. It is the only error class
// that aborts a search.
var ErrDataInconsistency = errors.New("data inconsistency")

type hubEdge struct {
	sectionID string
	to        string
}

// SectionRuleEngine resolves which physical sections a service traversal
// spans and how many of its kilometers may still be counted against a
// ledger. It is a pure query service: it never mutates the ledger, the
// caller commits or discards the keys it proposes.
type SectionRuleEngine struct {
	sections  map[string]domain.Section
	onSection map[string][]string // station code -> IDs of sections it lies on
	hubAdj    map[string][]hubEdge
}

// NewSectionRuleEngine indexes the section table for span resolution.
func NewSectionRuleEngine(sections []domain.Section) *SectionRuleEngine {
	e := &SectionRuleEngine{
		sections:  make(map[string]domain.Section, len(sections)),
		onSection: make(map[string][]string),
		hubAdj:    make(map[string][]hubEdge),
	}

	for _, sec := range sections {
		e.sections[sec.ID] = sec
		for _, st := range sec.Stations {
			e.onSection[st] = append(e.onSection[st], sec.ID)
		}
		a, b := sec.HubA(), sec.HubB()
		if a != "" && b != "" {
			e.hubAdj[a] = append(e.hubAdj[a], hubEdge{sectionID: sec.ID, to: b})
			e.hubAdj[b] = append(e.hubAdj[b], hubEdge{sectionID: sec.ID, to: a})
		}
	}

	for st := range e.onSection {
		sort.Strings(e.onSection[st])
	}

	return e
}

// CountableDistance reports how many kilometers of the traversal may
// still be counted against the given ledger, plus the section keys a
// commit would claim. Keys already present in the ledger contribute
// nothing; each unclaimed spanned section contributes its full published
// length for the service type, regardless of how much of the section the
// leg physically covers.
func (e *SectionRuleEngine) CountableDistance(svc domain.Service, ledger *SectionLedger) (float64, []domain.SectionKey, error) {
	sectionIDs, err := e.span(svc.Origin, svc.Destination)
	if err != nil {
		return 0, nil, fmt.Errorf("countable distance: service %s: %w", svc.ID, err)
	}

	var deltaKm float64
	var keys []domain.SectionKey

	for _, id := range sectionIDs {
		key := domain.SectionKey{SectionID: id, Type: svc.Type}
		if ledger.Contains(key) {
			continue
		}

		length, ok := e.sections[id].LengthKm[svc.Type]
		if !ok {
			return 0, nil, fmt.Errorf(
				"countable distance: service %s: section %s has no published length for type %s: %w",
				svc.ID, id, svc.Type, ErrDataInconsistency,
			)
		}

		deltaKm += length
		keys = append(keys, key)
	}

	return deltaKm, keys, nil
}

// KnowsStation reports whether any section includes the station.
func (e *SectionRuleEngine) KnowsStation(code string) bool {
	_, ok := e.onSection[code]
	return ok
}

// span resolves the ordered set of sections a traversal from origin to
// destination covers: a single section when both stations lie on one
// (full hub-to-hub or a partial ride via intermediates), otherwise the
// shortest chain of sections through the hub graph.
func (e *SectionRuleEngine) span(origin, destination string) ([]string, error) {
	if origin == destination {
		return nil, fmt.Errorf("origin and destination are both %q: %w", origin, ErrDataInconsistency)
	}

	fromSections, ok := e.onSection[origin]
	if !ok {
		return nil, fmt.Errorf("station %q lies on no section: %w", origin, ErrDataInconsistency)
	}
	toSections, ok := e.onSection[destination]
	if !ok {
		return nil, fmt.Errorf("station %q lies on no section: %w", destination, ErrDataInconsistency)
	}

	// Shared section: the traversal stays within one segment.
	if id, ok := firstCommon(fromSections, toSections); ok {
		return []string{id}, nil
	}

	var best []string
	for _, oa := range e.anchors(origin) {
		for _, da := range e.anchors(destination) {
			path, ok := e.shortestHubPath(oa.hub, da.hub)
			if !ok {
				continue
			}

			chain := dedupe(append(append(append([]string{}, oa.base...), path...), da.base...))
			if best == nil || len(chain) < len(best) ||
				(len(chain) == len(best) && strings.Join(chain, "\x00") < strings.Join(best, "\x00")) {
				best = chain
			}
		}
	}

	if best == nil {
		return nil, fmt.Errorf("no section chain connects %q to %q: %w", origin, destination, ErrDataInconsistency)
	}
	return best, nil
}

type anchor struct {
	hub  string
	base []string // sections already spanned to reach the hub
}

// anchors maps a station to the hub(s) a multi-section traversal can be
// routed through. A hub anchors itself; an intermediate station anchors
// both bounding hubs of its section, with that section pre-spanned.
func (e *SectionRuleEngine) anchors(station string) []anchor {
	if _, isHub := e.hubAdj[station]; isHub {
		return []anchor{{hub: station}}
	}

	var out []anchor
	for _, id := range e.onSection[station] {
		sec := e.sections[id]
		out = append(out,
			anchor{hub: sec.HubA(), base: []string{id}},
			anchor{hub: sec.HubB(), base: []string{id}},
		)
	}
	return out
}

// shortestHubPath runs a breadth-first search over the hub graph and
// returns the section IDs along the shortest path, in traversal order.
// Neighbor expansion is deterministic for a fixed section table.
func (e *SectionRuleEngine) shortestHubPath(from, to string) ([]string, bool) {
	if from == to {
		return nil, true
	}

	type step struct {
		prev      string
		sectionID string
	}
	visited := map[string]step{from: {}}
	queue := []string{from}

	for len(queue) > 0 {
		hub := queue[0]
		queue = queue[1:]

		for _, edge := range e.hubAdj[hub] {
			if _, seen := visited[edge.to]; seen {
				continue
			}
			visited[edge.to] = step{prev: hub, sectionID: edge.sectionID}
			if edge.to == to {
				var path []string
				for at := to; at != from; at = visited[at].prev {
					path = append([]string{visited[at].sectionID}, path...)
				}
				return path, true
			}
			queue = append(queue, edge.to)
		}
	}

	return nil, false
}

func firstCommon(a, b []string) (string, bool) {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return x, true
			}
		}
	}
	return "", false
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
