package search

import (
	"fmt"
	"sort"

	"rail-route-service/internal/domain"
)

// SectionLedger tracks which (section, service type) claims the route
// under construction has already counted. One ledger is owned by a single
// active search path; correctness relies on strict Commit/Rollback
// pairing rather than copying the ledger per branch.
type SectionLedger struct {
	claimed map[domain.SectionKey]struct{}
}

func NewSectionLedger() *SectionLedger {
	return &SectionLedger{claimed: make(map[domain.SectionKey]struct{})}
}

// Contains reports whether the key has already been claimed.
func (l *SectionLedger) Contains(key domain.SectionKey) bool {
	_, ok := l.claimed[key]
	return ok
}

// Commit marks the keys as claimed. Committing a key twice means the
// caller scored a candidate against a stale ledger, so it is rejected.
func (l *SectionLedger) Commit(keys []domain.SectionKey) error {
	for i, key := range keys {
		if _, ok := l.claimed[key]; ok {
			// Undo the keys committed so far to leave the ledger untouched.
			for _, k := range keys[:i] {
				delete(l.claimed, k)
			}
			return fmt.Errorf("ledger: commit of already claimed key %+v", key)
		}
		l.claimed[key] = struct{}{}
	}
	return nil
}

// Rollback unmarks the keys, exactly once per matching Commit. Rolling
// back a key that was never claimed is a pairing bug and is rejected.
func (l *SectionLedger) Rollback(keys []domain.SectionKey) error {
	for _, key := range keys {
		if _, ok := l.claimed[key]; !ok {
			return fmt.Errorf("ledger: rollback of unclaimed key %+v", key)
		}
	}
	for _, key := range keys {
		delete(l.claimed, key)
	}
	return nil
}

// Len returns the number of claimed keys.
func (l *SectionLedger) Len() int {
	return len(l.claimed)
}

// Keys returns a sorted snapshot of the claimed keys.
func (l *SectionLedger) Keys() []domain.SectionKey {
	out := make([]domain.SectionKey, 0, len(l.claimed))
	for k := range l.claimed {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SectionID != out[j].SectionID {
			return out[i].SectionID < out[j].SectionID
		}
		return out[i].Type < out[j].Type
	})
	return out
}
