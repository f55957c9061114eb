// Package checklist holds the immutable in-memory checklist loaded at the
// start of an inspection session.
package checklist

import (
	"sort"

	"github.com/google/uuid"

	"github.com/AliAliAhmad/inspection-system-sub008/internal/domain"
)

// Model is the ordered question list plus lookup indexes. It is built once
// from the server fetch and never mutated afterwards.
type Model struct {
	questions []domain.ChecklistQuestion
	index     map[uuid.UUID]int
}

func New(questions []domain.ChecklistQuestion) *Model {
	qs := make([]domain.ChecklistQuestion, len(questions))
	copy(qs, questions)
	sort.SliceStable(qs, func(i, j int) bool {
		return qs[i].OrderIndex < qs[j].OrderIndex
	})

	idx := make(map[uuid.UUID]int, len(qs))
	for i, q := range qs {
		idx[q.ID] = i
	}
	return &Model{questions: qs, index: idx}
}

func (m *Model) Len() int { return len(m.questions) }

// At returns the question at position i. Panics on an out-of-range index, the
// same way a slice would; callers validate navigation targets first.
func (m *Model) At(i int) domain.ChecklistQuestion { return m.questions[i] }

func (m *Model) ByID(id uuid.UUID) (domain.ChecklistQuestion, bool) {
	i, ok := m.index[id]
	if !ok {
		return domain.ChecklistQuestion{}, false
	}
	return m.questions[i], true
}

// IndexOf returns the checklist position of a question id, or -1.
func (m *Model) IndexOf(id uuid.UUID) int {
	i, ok := m.index[id]
	if !ok {
		return -1
	}
	return i
}

func (m *Model) Valid(i int) bool { return i >= 0 && i < len(m.questions) }

// Group is one assembly/part bucket in checklist order.
type Group struct {
	Assembly  string
	Part      string
	Questions []domain.ChecklistQuestion
}

// Groups buckets questions by (assembly, part), preserving first-seen order.
func (m *Model) Groups() []Group {
	var groups []Group
	pos := make(map[[2]string]int)
	for _, q := range m.questions {
		key := [2]string{q.Assembly, q.Part}
		i, ok := pos[key]
		if !ok {
			i = len(groups)
			pos[key] = i
			groups = append(groups, Group{Assembly: q.Assembly, Part: q.Part})
		}
		groups[i].Questions = append(groups[i].Questions, q)
	}
	return groups
}
