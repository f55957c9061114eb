// Package media drives the capture → encode → upload → confirm workflow for
// one media slot at a time. Each slot walks an explicit state machine
// (idle → capturing → uploading → uploaded|failed) with a bounded automatic
// retry on transient network failures; terminal failures keep the local asset
// so the inspector never loses captured evidence.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/AliAliAhmad/inspection-system-sub008/internal/answers"
	"github.com/AliAliAhmad/inspection-system-sub008/internal/domain"
	"github.com/AliAliAhmad/inspection-system-sub008/internal/validation"
)

// UploadFunc sends one encoded asset to the backend.
type UploadFunc func(ctx context.Context, questionID uuid.UUID, kind domain.MediaKind, asset *domain.CapturedAsset) (*domain.MediaUploadResult, error)

const (
	// DefaultMaxRetries bounds automatic retries on transient failures before
	// the slot parks in failed and waits for the user.
	DefaultMaxRetries = 2
	// DefaultRetryDelay is the fixed pause between automatic retries.
	DefaultRetryDelay = 3 * time.Second

	// maxPhotoWidth caps uploaded photo size; anything wider is downscaled
	// before the base64 round trip.
	maxPhotoWidth = 1600
	jpegQuality   = 85
)

type slotKey struct {
	question uuid.UUID
	kind     domain.MediaKind
}

type Pipeline struct {
	store   *answers.Store
	capture domain.MediaCapture
	upload  UploadFunc
	logger  *log.Logger

	// isReading classifies a question as a meter reading so the extracted
	// value policy only applies where it should.
	isReading func(uuid.UUID) bool

	maxRetries int
	retryDelay time.Duration
	sleep      func(time.Duration)

	mu     sync.Mutex
	assets map[slotKey]*domain.CapturedAsset
}

type Option func(*Pipeline)

func WithRetryPolicy(maxRetries int, delay time.Duration) Option {
	return func(p *Pipeline) {
		p.maxRetries = maxRetries
		p.retryDelay = delay
	}
}

func WithSleep(fn func(time.Duration)) Option {
	return func(p *Pipeline) { p.sleep = fn }
}

func NewPipeline(store *answers.Store, capture domain.MediaCapture, upload UploadFunc, isReading func(uuid.UUID) bool, logger *log.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		store:      store,
		capture:    capture,
		upload:     upload,
		logger:     logger,
		isReading:  isReading,
		maxRetries: DefaultMaxRetries,
		retryDelay: DefaultRetryDelay,
		sleep:      time.Sleep,
		assets:     make(map[slotKey]*domain.CapturedAsset),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CaptureAndUpload runs the full slot workflow for one question and media
// kind. It blocks until the slot reaches a terminal state; callers that must
// not block (navigation) run it on a goroutine — the slot state in the store
// is the source of truth either way.
func (p *Pipeline) CaptureAndUpload(ctx context.Context, questionID uuid.UUID, kind domain.MediaKind) error {
	p.setState(questionID, kind, domain.UploadCapturing)

	asset, err := p.capture.Capture(ctx, kind)
	if err != nil {
		p.setState(questionID, kind, domain.UploadIdle)
		return fmt.Errorf("capture %s: %w", kind, err)
	}

	// Registering the captured asset is a user edit: it clears prefill
	// provenance and keeps the local URI for offline rendering.
	p.store.SetMedia(questionID, kind, answers.MediaPatch{LocalURI: &asset.LocalURI})

	encoded, err := p.encode(kind, asset)
	if err != nil {
		p.setState(questionID, kind, domain.UploadFailed)
		return fmt.Errorf("encode %s: %w", kind, err)
	}

	p.mu.Lock()
	p.assets[slotKey{questionID, kind}] = encoded
	p.mu.Unlock()

	return p.run(ctx, questionID, kind, encoded)
}

// Retry re-runs the upload for a failed slot with a fresh retry budget. The
// asset captured earlier in this session is reused; if none is held (the app
// restarted), the caller must re-capture.
func (p *Pipeline) Retry(ctx context.Context, questionID uuid.UUID, kind domain.MediaKind) error {
	p.mu.Lock()
	asset, ok := p.assets[slotKey{questionID, kind}]
	p.mu.Unlock()
	if !ok {
		return fmt.Errorf("no captured asset held for question %s %s; capture again", questionID, kind)
	}
	return p.run(ctx, questionID, kind, asset)
}

// run is the upload attempt loop. Transient failures retry automatically up
// to the bound with a fixed delay; anything else surfaces immediately without
// consuming the budget.
func (p *Pipeline) run(ctx context.Context, questionID uuid.UUID, kind domain.MediaKind, asset *domain.CapturedAsset) error {
	attempt := 0
	for {
		p.setState(questionID, kind, domain.UploadUploading)

		res, err := p.upload(ctx, questionID, kind, asset)
		if err == nil {
			return p.confirm(questionID, kind, res)
		}

		var transient *domain.TransientNetworkError
		if errors.As(err, &transient) && attempt < p.maxRetries {
			attempt++
			p.bumpRetry(questionID, kind)
			p.logger.Printf("upload retry %d/%d question=%s kind=%s: %v", attempt, p.maxRetries, questionID, kind, err)
			p.sleep(p.retryDelay)
			continue
		}

		p.setState(questionID, kind, domain.UploadFailed)
		return err
	}
}

// confirm applies the backend's response to the answer record per the reading
// policy:
//
//  1. an invalid reading rejects the capture and clears the stale value;
//  2. a parsed value overwrites whatever the inspector typed;
//  3. a faulty verdict writes the faulty sentinel;
//  4. otherwise an extracted value only fills an empty answer.
func (p *Pipeline) confirm(questionID uuid.UUID, kind domain.MediaKind, res *domain.MediaUploadResult) error {
	rv := res.ReadingValidation

	if rv != nil && !rv.IsValid {
		p.store.UpdateSlot(questionID, kind, func(s *domain.MediaSlot) {
			s.UploadState = domain.UploadFailed
		})
		p.store.ClearValue(questionID)
		return &domain.ReadingRejectedError{Reason: rv.RejectionReason}
	}

	p.store.UpdateSlot(questionID, kind, func(s *domain.MediaSlot) {
		s.RemoteURL = res.RemoteURL
		s.UploadState = domain.UploadUploaded
		s.ExtractedValue = res.ExtractedReading
		s.AIAnalysis = res.AIAnalysis
	})

	switch {
	case rv != nil && rv.IsFaulty:
		p.store.ApplyValue(questionID, validation.FaultySentinel)
	case rv != nil && rv.ParsedValue != nil && kind == domain.MediaPhoto && p.isReading(questionID):
		// The extracted reading is authoritative over a hand-typed value.
		p.store.ApplyValue(questionID, strconv.FormatFloat(*rv.ParsedValue, 'f', -1, 64))
	case res.ExtractedReading != "":
		if cur := p.store.Get(questionID); !cur.HasValue() {
			p.store.ApplyValue(questionID, res.ExtractedReading)
		}
	}

	if kind == domain.MediaVoice {
		// The voice note URL rides on the answer upsert; push it out.
		p.store.SchedulePersist(questionID)
	}
	return nil
}

func (p *Pipeline) setState(questionID uuid.UUID, kind domain.MediaKind, state domain.UploadState) {
	p.store.UpdateSlot(questionID, kind, func(s *domain.MediaSlot) {
		s.UploadState = state
	})
}

func (p *Pipeline) bumpRetry(questionID uuid.UUID, kind domain.MediaKind) {
	p.store.UpdateSlot(questionID, kind, func(s *domain.MediaSlot) {
		s.RetryCount++
	})
}

// encode normalizes the asset before the base64 round trip. Photos wider than
// maxPhotoWidth are downscaled and re-encoded as JPEG; video and voice pass
// through untouched.
func (p *Pipeline) encode(kind domain.MediaKind, asset *domain.CapturedAsset) (*domain.CapturedAsset, error) {
	if kind != domain.MediaPhoto {
		return asset, nil
	}
	img, _, err := image.Decode(bytes.NewReader(asset.Data))
	if err != nil {
		return nil, fmt.Errorf("decode photo: %w", err)
	}
	if img.Bounds().Dx() > maxPhotoWidth {
		img = imaging.Resize(img, maxPhotoWidth, 0, imaging.Lanczos)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("encode photo: %w", err)
	}
	out := *asset
	out.Data = buf.Bytes()
	out.MimeType = "image/jpeg"
	return &out, nil
}
