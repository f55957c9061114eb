package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type AnswerType string

const (
	AnswerYesNo    AnswerType = "yes_no"
	AnswerPassFail AnswerType = "pass_fail"
	AnswerNumeric  AnswerType = "numeric"
	AnswerText     AnswerType = "text"
)

type NumericRuleKind string

const (
	RuleLessThan    NumericRuleKind = "less_than"
	RuleGreaterThan NumericRuleKind = "greater_than"
	RuleBetween     NumericRuleKind = "between"
)

// NumericRule bounds a numeric answer against engineering tolerances.
// less_than uses MaxValue, greater_than uses MinValue, between uses both
// (inclusive).
type NumericRule struct {
	Kind     NumericRuleKind
	MinValue float64
	MaxValue float64
}

// ChecklistQuestion is immutable after the inspection loads. All mutable state
// lives on the Answer keyed by QuestionID.
type ChecklistQuestion struct {
	ID              uuid.UUID
	TextEn          string
	TextAr          string
	AnswerType      AnswerType
	NumericRule     *NumericRule
	CriticalFailure bool
	Assembly        string
	Part            string
	OrderIndex      int
}

type ValidationResult string

const (
	ValidationPass    ValidationResult = "pass"
	ValidationFail    ValidationResult = "fail"
	ValidationUnknown ValidationResult = "unknown"
)

type MediaKind string

const (
	MediaPhoto MediaKind = "photo"
	MediaVideo MediaKind = "video"
	MediaVoice MediaKind = "voice"
)

type UploadState string

const (
	UploadIdle      UploadState = "idle"
	UploadCapturing UploadState = "capturing"
	UploadUploading UploadState = "uploading"
	UploadUploaded  UploadState = "uploaded"
	UploadFailed    UploadState = "failed"
)

type SyncState string

const (
	SyncClean       SyncState = "clean"
	SyncPendingSave SyncState = "pending_save"
	SyncSaving      SyncState = "saving"
	SyncSaveFailed  SyncState = "save_failed"
)

// MediaSlot holds one captured asset per media kind. LocalURI stays populated
// after a successful upload so the asset renders without a network round trip.
type MediaSlot struct {
	Kind           MediaKind
	LocalURI       string
	RemoteURL      string
	UploadState    UploadState
	RetryCount     int
	ExtractedValue string
	AIAnalysis     string
}

// Provenance marks an answer value copied from a peer inspector's prefill.
// It is cleared the moment the local inspector edits the question.
type Provenance struct {
	PeerName string
	PeerRole string
}

// Answer is the mutable per-question record. Created lazily on first touch and
// never deleted; a cleared answer keeps its record for audit.
type Answer struct {
	QuestionID    uuid.UUID
	Value         string
	Comment       string
	UrgencyLevel  int
	Skipped       bool
	Media         map[MediaKind]*MediaSlot
	SyncState     SyncState
	PrefilledFrom *Provenance
	UpdatedAt     time.Time
}

// Slot returns the media slot for kind, or nil when none has been captured.
func (a *Answer) Slot(kind MediaKind) *MediaSlot {
	if a == nil || a.Media == nil {
		return nil
	}
	return a.Media[kind]
}

func (a *Answer) HasValue() bool {
	return a != nil && a.Value != ""
}

// Clone deep-copies the answer so callers outside the store cannot alias its
// media slots.
func (a *Answer) Clone() *Answer {
	if a == nil {
		return nil
	}
	cp := *a
	if a.Media != nil {
		cp.Media = make(map[MediaKind]*MediaSlot, len(a.Media))
		for k, s := range a.Media {
			sc := *s
			cp.Media[k] = &sc
		}
	}
	if a.PrefilledFrom != nil {
		p := *a.PrefilledFrom
		cp.PrefilledFrom = &p
	}
	return &cp
}

// PeerAnswer is a read-only snapshot of another inspector's answer on the same
// equipment. Consumed once by the prefill merge and then discarded.
type PeerAnswer struct {
	QuestionID   uuid.UUID
	Value        string
	Comment      string
	UrgencyLevel int
	MediaURLs    map[MediaKind]string
}

type PeerSnapshot struct {
	PeerName  string
	PeerRole  string
	FetchedAt time.Time
	Answers   []PeerAnswer
}

// SnapshotKey identifies one fetched snapshot so a merge applies at most once
// per snapshot per session.
func (s *PeerSnapshot) SnapshotKey() string {
	return s.PeerName + "@" + s.FetchedAt.UTC().Format(time.RFC3339Nano)
}

// ReadingValidation is the backend's verdict on an extracted meter reading.
type ReadingValidation struct {
	IsValid         bool
	ParsedValue     *float64
	IsFaulty        bool
	LastReading     *float64
	RejectionReason string
}

type CapturedAsset struct {
	LocalURI string
	FileName string
	MimeType string
	Data     []byte
}

// MediaUploadResult is what the backend returns for one uploaded asset.
type MediaUploadResult struct {
	RemoteURL         string
	AIAnalysis        string
	ExtractedReading  string
	ReadingValidation *ReadingValidation
}

// AnswerUpsert is the idempotent persist payload keyed server-side by
// (assignmentID, questionID).
type AnswerUpsert struct {
	QuestionID   uuid.UUID
	Value        string
	Comment      string
	UrgencyLevel int
	VoiceNoteURL string
}

// InspectionAPI is the REST backend the engine talks to.
type InspectionAPI interface {
	FetchChecklist(ctx context.Context, assignmentID uuid.UUID) ([]ChecklistQuestion, []Answer, error)
	FetchPeerAnswers(ctx context.Context, assignmentID uuid.UUID) (*PeerSnapshot, error)
	SaveAnswer(ctx context.Context, assignmentID uuid.UUID, up AnswerUpsert) error
	UploadMedia(ctx context.Context, assignmentID, questionID uuid.UUID, kind MediaKind, asset *CapturedAsset) (*MediaUploadResult, error)
	SubmitInspection(ctx context.Context, assignmentID uuid.UUID) error
}

// PersistentKV is the device-local durable store used for the resume position.
type PersistentKV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
	Close() error
}

// MediaCapture abstracts the camera / recorder so the engine runs without a
// real device.
type MediaCapture interface {
	Capture(ctx context.Context, kind MediaKind) (*CapturedAsset, error)
}

type Clock interface {
	Now() time.Time
}

type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

func SystemClock() Clock { return ClockFunc(time.Now) }
