// Package session owns the aggregate inspection state: the immutable
// checklist, the answer store, the current position (persisted for resume)
// and the submission gate.
package session

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"github.com/google/uuid"

	"github.com/AliAliAhmad/inspection-system-sub008/internal/answers"
	"github.com/AliAliAhmad/inspection-system-sub008/internal/checklist"
	"github.com/AliAliAhmad/inspection-system-sub008/internal/domain"
	"github.com/AliAliAhmad/inspection-system-sub008/internal/validation"
)

type Session struct {
	AssignmentID uuid.UUID
	Checklist    *checklist.Model
	Store        *answers.Store

	api    domain.InspectionAPI
	kv     domain.PersistentKV
	logger *log.Logger

	currentIndex int
}

// positionKey is the durable-store key for the resume position.
func positionKey(assignmentID uuid.UUID) string {
	return fmt.Sprintf("session:%s:position", assignmentID)
}

// Load constructs the session from the server fetch and restores the last
// persisted position, if any.
func Load(ctx context.Context, api domain.InspectionAPI, kv domain.PersistentKV, assignmentID uuid.UUID, logger *log.Logger, storeOpts ...answers.Option) (*Session, error) {
	questions, existing, err := api.FetchChecklist(ctx, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("fetch checklist: %w", err)
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("assignment %s has no checklist questions", assignmentID)
	}

	save := func(ctx context.Context, up domain.AnswerUpsert) error {
		return api.SaveAnswer(ctx, assignmentID, up)
	}
	store := answers.NewStore(save, logger, storeOpts...)
	store.Hydrate(existing)

	s := &Session{
		AssignmentID: assignmentID,
		Checklist:    checklist.New(questions),
		Store:        store,
		api:          api,
		kv:           kv,
		logger:       logger,
	}

	if raw, ok, err := kv.Get(positionKey(assignmentID)); err != nil {
		logger.Printf("resume position read failed: %v", err)
	} else if ok {
		if idx, err := strconv.Atoi(raw); err == nil && s.Checklist.Valid(idx) {
			s.currentIndex = idx
		}
	}
	return s, nil
}

func (s *Session) CurrentIndex() int { return s.currentIndex }

func (s *Session) CurrentQuestion() domain.ChecklistQuestion {
	return s.Checklist.At(s.currentIndex)
}

// GoToIndex moves the cursor and persists the position. It never waits on
// in-flight uploads; navigation is non-blocking by contract.
func (s *Session) GoToIndex(i int) error {
	if !s.Checklist.Valid(i) {
		return fmt.Errorf("index %d out of range [0,%d)", i, s.Checklist.Len())
	}
	s.currentIndex = i
	if err := s.kv.Set(positionKey(s.AssignmentID), strconv.Itoa(i)); err != nil {
		// Resume is best-effort; losing it costs the inspector a scroll.
		s.logger.Printf("persist position failed: %v", err)
	}
	return nil
}

// CanProceedToNext is advisory only: the current question has a value or is
// skipped, no slot is mid-flight, and required evidence is attached. The
// caller may still navigate freely.
func (s *Session) CanProceedToNext() bool {
	q := s.CurrentQuestion()
	a := s.Store.Get(q.ID)
	if !a.HasValue() && !isSkipped(a) {
		return false
	}
	if !validation.UploadsSettled(a) {
		return false
	}
	return validation.EvidenceSatisfied(q, a)
}

func isSkipped(a *domain.Answer) bool { return a != nil && a.Skipped }

// Submit runs the gate and, when ready, performs the single remote submission
// call. On success the persisted resume position is cleared; on backend
// rejection all local state is left untouched for retry.
func (s *Session) Submit(ctx context.Context) error {
	r := s.IsReady()
	if !r.Ready {
		return &NotReadyError{Readiness: r}
	}
	if err := s.api.SubmitInspection(ctx, s.AssignmentID); err != nil {
		return fmt.Errorf("submit inspection: %w", err)
	}
	if err := s.kv.Delete(positionKey(s.AssignmentID)); err != nil {
		s.logger.Printf("clear resume position failed: %v", err)
	}
	s.Store.Close()
	return nil
}

// NotReadyError carries the gate verdict when Submit is called early.
type NotReadyError struct {
	Readiness Readiness
}

func (e *NotReadyError) Error() string {
	return fmt.Sprintf("inspection not ready: %s at index %d", e.Readiness.Reason, e.Readiness.FirstOffendingIndex)
}
