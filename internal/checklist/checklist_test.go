package checklist

import (
	"testing"

	"github.com/google/uuid"

	"github.com/AliAliAhmad/inspection-system-sub008/internal/domain"
)

func question(order int, assembly, part string) domain.ChecklistQuestion {
	return domain.ChecklistQuestion{
		ID:         uuid.New(),
		TextEn:     part,
		AnswerType: domain.AnswerYesNo,
		Assembly:   assembly,
		Part:       part,
		OrderIndex: order,
	}
}

func TestNewSortsByOrderIndex(t *testing.T) {
	q3 := question(3, "engine", "cooling")
	q1 := question(1, "engine", "hour meter")
	q2 := question(2, "hydraulics", "pump")

	m := New([]domain.ChecklistQuestion{q3, q1, q2})

	if m.Len() != 3 {
		t.Fatalf("Len = %d, want 3", m.Len())
	}
	for i, want := range []uuid.UUID{q1.ID, q2.ID, q3.ID} {
		if m.At(i).ID != want {
			t.Errorf("At(%d).ID = %s, want %s", i, m.At(i).ID, want)
		}
	}
}

func TestLookup(t *testing.T) {
	q1 := question(1, "engine", "hour meter")
	q2 := question(2, "engine", "cooling")
	m := New([]domain.ChecklistQuestion{q1, q2})

	if got, ok := m.ByID(q2.ID); !ok || got.Part != "cooling" {
		t.Errorf("ByID(q2) = (%v, %v)", got.Part, ok)
	}
	if _, ok := m.ByID(uuid.New()); ok {
		t.Error("ByID(unknown) should report false")
	}
	if idx := m.IndexOf(q2.ID); idx != 1 {
		t.Errorf("IndexOf(q2) = %d, want 1", idx)
	}
	if idx := m.IndexOf(uuid.New()); idx != -1 {
		t.Errorf("IndexOf(unknown) = %d, want -1", idx)
	}
	if m.Valid(-1) || m.Valid(2) {
		t.Error("Valid should reject out-of-range indexes")
	}
}

func TestGroupsPreserveFirstSeenOrder(t *testing.T) {
	m := New([]domain.ChecklistQuestion{
		question(1, "engine", "hour meter"),
		question(2, "hydraulics", "pump"),
		question(3, "engine", "hour meter"),
		question(4, "engine", "cooling"),
	})

	groups := m.Groups()
	if len(groups) != 3 {
		t.Fatalf("got %d groups, want 3", len(groups))
	}
	if groups[0].Assembly != "engine" || groups[0].Part != "hour meter" || len(groups[0].Questions) != 2 {
		t.Errorf("group[0] = %s/%s with %d questions", groups[0].Assembly, groups[0].Part, len(groups[0].Questions))
	}
	if groups[1].Assembly != "hydraulics" {
		t.Errorf("group[1].Assembly = %s, want hydraulics", groups[1].Assembly)
	}
	if groups[2].Part != "cooling" {
		t.Errorf("group[2].Part = %s, want cooling", groups[2].Part)
	}
}
