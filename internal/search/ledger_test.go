package search

import (
	"reflect"
	"testing"

	"rail-route-service/internal/domain"
)

func TestLedgerCommitRollbackSymmetry(t *testing.T) {
	ledger := NewSectionLedger()

	base := []domain.SectionKey{
		{SectionID: "AB", Type: domain.Intercity},
		{SectionID: "BC", Type: domain.Sprinter},
	}
	if err := ledger.Commit(base); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	before := ledger.Keys()

	candidate := []domain.SectionKey{
		{SectionID: "CD", Type: domain.Intercity},
		{SectionID: "AB", Type: domain.Sprinter},
	}
	if err := ledger.Commit(candidate); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ledger.Len() != 4 {
		t.Fatalf("len = %d, want 4", ledger.Len())
	}
	if err := ledger.Rollback(candidate); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	after := ledger.Keys()
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("ledger changed across commit/rollback: before %v, after %v", before, after)
	}
}

func TestLedgerDoubleCommitRejected(t *testing.T) {
	ledger := NewSectionLedger()

	keyAB := domain.SectionKey{SectionID: "AB", Type: domain.Intercity}
	if err := ledger.Commit([]domain.SectionKey{keyAB}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A batch containing an already claimed key must fail and leave the
	// ledger untouched, including the fresh keys earlier in the batch.
	batch := []domain.SectionKey{
		{SectionID: "CD", Type: domain.Intercity},
		keyAB,
	}
	if err := ledger.Commit(batch); err == nil {
		t.Fatal("expected error for double commit")
	}
	if ledger.Len() != 1 {
		t.Fatalf("len = %d, want 1", ledger.Len())
	}
	if ledger.Contains(domain.SectionKey{SectionID: "CD", Type: domain.Intercity}) {
		t.Fatal("partial commit left CD claimed")
	}
}

func TestLedgerRollbackUnclaimedRejected(t *testing.T) {
	ledger := NewSectionLedger()

	if err := ledger.Rollback([]domain.SectionKey{{SectionID: "AB", Type: domain.Intercity}}); err == nil {
		t.Fatal("expected error for rollback of unclaimed key")
	}
}

func TestLedgerContains(t *testing.T) {
	ledger := NewSectionLedger()
	keyIC := domain.SectionKey{SectionID: "AB", Type: domain.Intercity}
	keySPR := domain.SectionKey{SectionID: "AB", Type: domain.Sprinter}

	if err := ledger.Commit([]domain.SectionKey{keyIC}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !ledger.Contains(keyIC) {
		t.Fatal("committed key not contained")
	}
	// Same section, different service type is a different key.
	if ledger.Contains(keySPR) {
		t.Fatal("uncommitted key reported as contained")
	}
}
