// Package prefill merges a peer inspector's in-flight answers into the local
// store. The merge never overwrites a local edit: only questions with no
// local value receive the peer's answer, tagged with provenance until the
// local inspector touches them.
package prefill

import (
	"context"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/AliAliAhmad/inspection-system-sub008/internal/answers"
	"github.com/AliAliAhmad/inspection-system-sub008/internal/domain"
)

type Service struct {
	api    domain.InspectionAPI
	store  *answers.Store
	logger *log.Logger

	// known reports whether a question id belongs to the local checklist.
	// Peer answers for anything else are dropped, never stored.
	known func(uuid.UUID) bool

	mu      sync.Mutex
	applied map[string]bool
}

func NewService(api domain.InspectionAPI, store *answers.Store, known func(uuid.UUID) bool, logger *log.Logger) *Service {
	return &Service{
		api:     api,
		store:   store,
		known:   known,
		logger:  logger,
		applied: make(map[string]bool),
	}
}

// Result reports what one merge pass did.
type Result struct {
	PeerName string
	PeerRole string
	Merged   int
}

// Merge fetches the peer snapshot and applies it. A snapshot is applied at
// most once per session; re-running with the same snapshot is a no-op, and
// even a fresh snapshot never touches a question the user has started
// answering. Returns nil when no peer has begun the inspection.
func (s *Service) Merge(ctx context.Context, assignmentID uuid.UUID) (*Result, error) {
	snap, err := s.api.FetchPeerAnswers(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if snap == nil || len(snap.Answers) == 0 {
		return nil, nil
	}
	return s.Apply(ctx, assignmentID, snap), nil
}

// Apply merges an already-fetched snapshot. Split out of Merge so tests can
// drive exact snapshots.
func (s *Service) Apply(ctx context.Context, assignmentID uuid.UUID, snap *domain.PeerSnapshot) *Result {
	res := &Result{PeerName: snap.PeerName, PeerRole: snap.PeerRole}

	s.mu.Lock()
	key := snap.SnapshotKey()
	if s.applied[key] {
		s.mu.Unlock()
		return res
	}
	s.applied[key] = true
	s.mu.Unlock()

	prov := domain.Provenance{PeerName: snap.PeerName, PeerRole: snap.PeerRole}
	var merged []uuid.UUID
	for _, pa := range snap.Answers {
		if pa.Value == "" {
			continue
		}
		if !s.known(pa.QuestionID) {
			s.logger.Printf("prefill skipped unknown question=%s from peer %s", pa.QuestionID, snap.PeerName)
			continue
		}
		if s.store.ApplyPrefill(pa, prov) {
			merged = append(merged, pa.QuestionID)
		}
	}
	res.Merged = len(merged)

	// Best-effort persistence so completeness checks count merged answers as
	// answered. Sequential on purpose to avoid hammering the backend;
	// failures are logged and never block the inspector.
	for _, qid := range merged {
		up := s.store.Upsert(qid)
		if err := s.api.SaveAnswer(ctx, assignmentID, up); err != nil {
			s.logger.Printf("prefill persist failed question=%s: %v", qid, err)
		}
	}
	return res
}
