package session

import (
	"github.com/AliAliAhmad/inspection-system-sub008/internal/validation"
)

type NotReadyReason string

const (
	ReasonMissingAnswers  NotReadyReason = "missing_answers"
	ReasonMissingEvidence NotReadyReason = "missing_evidence"
)

// Readiness is the submission gate verdict. FirstOffendingIndex points the UI
// at the first question to fix; -1 when ready.
type Readiness struct {
	Ready               bool
	Reason              NotReadyReason
	FirstOffendingIndex int
}

// IsReady scans in two ordered passes: unanswered/skipped questions first,
// then unsatisfied evidence (an in-flight upload counts as unsatisfied). It
// is recomputed on demand, never cached.
func (s *Session) IsReady() Readiness {
	if idx := s.scanMissingAnswers(0, s.Checklist.Len()); idx >= 0 {
		return Readiness{Reason: ReasonMissingAnswers, FirstOffendingIndex: idx}
	}
	if idx := s.scanMissingEvidence(0, s.Checklist.Len()); idx >= 0 {
		return Readiness{Reason: ReasonMissingEvidence, FirstOffendingIndex: idx}
	}
	return Readiness{Ready: true, FirstOffendingIndex: -1}
}

// FindNextIncomplete runs the same two scans starting at fromIndex, wrapping
// to 0. Returns -1 only when the inspection is fully ready. Drives the
// "jump to next problem" fix-up pass.
func (s *Session) FindNextIncomplete(fromIndex int) int {
	n := s.Checklist.Len()
	if fromIndex < 0 || fromIndex >= n {
		fromIndex = 0
	}
	if idx := s.scanMissingAnswers(fromIndex, n); idx >= 0 {
		return idx
	}
	if idx := s.scanMissingAnswers(0, fromIndex); idx >= 0 {
		return idx
	}
	if idx := s.scanMissingEvidence(fromIndex, n); idx >= 0 {
		return idx
	}
	return s.scanMissingEvidence(0, fromIndex)
}

func (s *Session) scanMissingAnswers(from, to int) int {
	for i := from; i < to; i++ {
		a := s.Store.Get(s.Checklist.At(i).ID)
		if !a.HasValue() || isSkipped(a) {
			return i
		}
	}
	return -1
}

func (s *Session) scanMissingEvidence(from, to int) int {
	for i := from; i < to; i++ {
		q := s.Checklist.At(i)
		a := s.Store.Get(q.ID)
		if !validation.UploadsSettled(a) {
			return i
		}
		if !validation.EvidenceSatisfied(q, a) {
			return i
		}
	}
	return -1
}

// Progress returns the answered count over total, for the UI header. Skipped
// questions do not count as progress; the gate still blocks on them.
func (s *Session) Progress() (answered, total int) {
	total = s.Checklist.Len()
	for i := 0; i < total; i++ {
		a := s.Store.Get(s.Checklist.At(i).ID)
		if a.HasValue() {
			answered++
		}
	}
	return answered, total
}
