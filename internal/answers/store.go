// Package answers owns the mutable per-question answer state. The Store is
// the single mutation point for the whole engine: user input, upload
// completions and peer prefill all land here, and the validation and
// submission layers only read from it.
package answers

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AliAliAhmad/inspection-system-sub008/internal/domain"
)

// SaveFunc persists one answer upsert to the backend. The store calls it from
// debounce timers and expects it to honor the context deadline.
type SaveFunc func(ctx context.Context, up domain.AnswerUpsert) error

const (
	// DefaultDebounceWindow is the trailing-edge window for remote saves.
	DefaultDebounceWindow = 500 * time.Millisecond
	// defaultSaveTimeout suits small JSON payloads.
	defaultSaveTimeout = 10 * time.Second
)

type Store struct {
	mu       sync.Mutex
	answers  map[uuid.UUID]*domain.Answer
	debounce *Debouncer
	clock    domain.Clock
	save     SaveFunc
	timeout  time.Duration
	logger   *log.Logger
}

type Option func(*Store)

func WithClock(c domain.Clock) Option { return func(s *Store) { s.clock = c } }

func WithDebouncer(d *Debouncer) Option { return func(s *Store) { s.debounce = d } }

func WithSaveTimeout(d time.Duration) Option { return func(s *Store) { s.timeout = d } }

func NewStore(save SaveFunc, logger *log.Logger, opts ...Option) *Store {
	s := &Store{
		answers:  make(map[uuid.UUID]*domain.Answer),
		debounce: NewDebouncer(DefaultDebounceWindow),
		clock:    domain.SystemClock(),
		save:     save,
		timeout:  defaultSaveTimeout,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Hydrate seeds answers fetched from the backend without scheduling saves.
func (s *Store) Hydrate(existing []domain.Answer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range existing {
		a := existing[i].Clone()
		if a.Media == nil {
			a.Media = make(map[domain.MediaKind]*domain.MediaSlot)
		}
		if a.SyncState == "" {
			a.SyncState = domain.SyncClean
		}
		s.answers[a.QuestionID] = a
	}
}

// get returns the answer record for questionID, creating it lazily. Caller
// holds s.mu.
func (s *Store) get(questionID uuid.UUID) *domain.Answer {
	a, ok := s.answers[questionID]
	if !ok {
		a = &domain.Answer{
			QuestionID: questionID,
			Media:      make(map[domain.MediaKind]*domain.MediaSlot),
			SyncState:  domain.SyncClean,
		}
		s.answers[questionID] = a
	}
	return a
}

// SetValue records a user-entered answer value. It clears the question's skip
// flag and any prefill provenance, then schedules the debounced remote save.
func (s *Store) SetValue(questionID uuid.UUID, value string) {
	s.userEdit(questionID, func(a *domain.Answer) {
		a.Value = value
		a.Skipped = false
	})
}

func (s *Store) SetComment(questionID uuid.UUID, comment string) {
	s.userEdit(questionID, func(a *domain.Answer) { a.Comment = comment })
}

func (s *Store) SetUrgency(questionID uuid.UUID, level int) {
	if level < 0 {
		level = 0
	}
	if level > 3 {
		level = 3
	}
	s.userEdit(questionID, func(a *domain.Answer) { a.UrgencyLevel = level })
}

// MediaPatch carries the user-settable slot fields; nil fields are left
// untouched.
type MediaPatch struct {
	LocalURI    *string
	UploadState *domain.UploadState
}

// SetMedia applies a user-initiated slot change (e.g. attaching a gallery
// asset). Pipeline-driven transitions go through UpdateSlot instead so they
// do not count as user edits.
func (s *Store) SetMedia(questionID uuid.UUID, kind domain.MediaKind, patch MediaPatch) {
	s.userEdit(questionID, func(a *domain.Answer) {
		slot := a.Slot(kind)
		if slot == nil {
			slot = &domain.MediaSlot{Kind: kind, UploadState: domain.UploadIdle}
			a.Media[kind] = slot
		}
		if patch.LocalURI != nil {
			slot.LocalURI = *patch.LocalURI
		}
		if patch.UploadState != nil {
			slot.UploadState = *patch.UploadState
		}
	})
}

// MarkSkipped flags the question as skipped. The flag only marks; it does not
// clear the value. Answering later clears the flag.
func (s *Store) MarkSkipped(questionID uuid.UUID) {
	s.userEdit(questionID, func(a *domain.Answer) { a.Skipped = true })
}

func (s *Store) ClearSkip(questionID uuid.UUID) {
	s.userEdit(questionID, func(a *domain.Answer) { a.Skipped = false })
}

// userEdit is the shared body of every user-facing mutator: mutate the record,
// drop prefill provenance (the edit is now authoritative) and re-arm that
// question's debounce timer.
func (s *Store) userEdit(questionID uuid.UUID, mutate func(*domain.Answer)) {
	s.mu.Lock()
	a := s.get(questionID)
	mutate(a)
	a.PrefilledFrom = nil
	a.UpdatedAt = s.clock.Now()
	a.SyncState = domain.SyncPendingSave
	s.mu.Unlock()

	s.scheduleSave(questionID)
}

// UpdateSlot applies a pipeline-driven slot transition. It does not clear
// provenance and does not schedule a save; persistence of slot outcomes is
// the pipeline's call.
func (s *Store) UpdateSlot(questionID uuid.UUID, kind domain.MediaKind, mutate func(*domain.MediaSlot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.get(questionID)
	slot := a.Slot(kind)
	if slot == nil {
		slot = &domain.MediaSlot{Kind: kind, UploadState: domain.UploadIdle}
		a.Media[kind] = slot
	}
	mutate(slot)
	a.UpdatedAt = s.clock.Now()
}

// ApplyValue overwrites the answer value on behalf of the upload pipeline
// (extracted reading or faulty sentinel) and schedules persistence. The
// capture that led here was a user action, so provenance is dropped too.
func (s *Store) ApplyValue(questionID uuid.UUID, value string) {
	s.userEdit(questionID, func(a *domain.Answer) {
		a.Value = value
		a.Skipped = false
	})
}

// ClearValue empties the answer value after a rejected reading so the
// question counts as unanswered again. The cleared state is persisted.
func (s *Store) ClearValue(questionID uuid.UUID) {
	s.userEdit(questionID, func(a *domain.Answer) { a.Value = "" })
}

// ApplyPrefill copies a peer answer into a question that has no local value
// yet. Returns false (and changes nothing) when the question already has a
// value — a local edit is never overwritten. No save is scheduled; the merge
// service runs its own one-shot persistence sweep.
func (s *Store) ApplyPrefill(peer domain.PeerAnswer, prov domain.Provenance) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.get(peer.QuestionID)
	if a.HasValue() {
		return false
	}
	a.Value = peer.Value
	a.Comment = peer.Comment
	a.UrgencyLevel = peer.UrgencyLevel
	for kind, url := range peer.MediaURLs {
		a.Media[kind] = &domain.MediaSlot{
			Kind:        kind,
			RemoteURL:   url,
			UploadState: domain.UploadUploaded,
		}
	}
	p := prov
	a.PrefilledFrom = &p
	a.UpdatedAt = s.clock.Now()
	return true
}

// Get returns a deep copy of the answer, or nil if the question was never
// touched.
func (s *Store) Get(questionID uuid.UUID) *domain.Answer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.answers[questionID].Clone()
}

// Upsert builds the persist payload for a question from its current state.
func (s *Store) Upsert(questionID uuid.UUID) domain.AnswerUpsert {
	s.mu.Lock()
	defer s.mu.Unlock()
	return buildUpsert(s.get(questionID))
}

func buildUpsert(a *domain.Answer) domain.AnswerUpsert {
	up := domain.AnswerUpsert{
		QuestionID:   a.QuestionID,
		Value:        a.Value,
		Comment:      a.Comment,
		UrgencyLevel: a.UrgencyLevel,
	}
	if voice := a.Slot(domain.MediaVoice); voice != nil {
		up.VoiceNoteURL = voice.RemoteURL
	}
	return up
}

// SchedulePersist re-arms the debounced save without counting as a user edit
// (provenance survives). Used when a slot outcome changes the upsert payload,
// e.g. a voice note finishing its upload.
func (s *Store) SchedulePersist(questionID uuid.UUID) {
	s.mu.Lock()
	if a, ok := s.answers[questionID]; ok {
		a.SyncState = domain.SyncPendingSave
	}
	s.mu.Unlock()
	s.scheduleSave(questionID)
}

// Close cancels all pending debounce timers.
func (s *Store) Close() {
	s.debounce.CancelAll()
}

func (s *Store) scheduleSave(questionID uuid.UUID) {
	s.debounce.Schedule(questionID, func() { s.runSave(questionID) })
}

// runSave executes one debounced save. A failure leaves the local value
// intact and marks the record save_failed; the next edit re-arms the debounce
// and retries naturally.
func (s *Store) runSave(questionID uuid.UUID) {
	s.mu.Lock()
	a, ok := s.answers[questionID]
	if !ok {
		s.mu.Unlock()
		return
	}
	up := buildUpsert(a)
	a.SyncState = domain.SyncSaving
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	err := s.save(ctx, up)
	cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok = s.answers[questionID]
	if !ok {
		return
	}
	if a.SyncState != domain.SyncSaving {
		// A newer edit re-armed the debounce while we were on the wire; its
		// save will carry the fresher state.
		return
	}
	if err != nil {
		a.SyncState = domain.SyncSaveFailed
		s.logger.Printf("answer save failed question=%s: %v", questionID, err)
		return
	}
	a.SyncState = domain.SyncClean
}
