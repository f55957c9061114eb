// Command inspector wires the answer engine against a running backend:
// load the checklist, merge peer answers, optionally upload a media file for
// one question, then report readiness. It is the reference wiring for the
// engine; a mobile shell replaces the printing.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"mime"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/AliAliAhmad/inspection-system-sub008/internal/answers"
	"github.com/AliAliAhmad/inspection-system-sub008/internal/api"
	"github.com/AliAliAhmad/inspection-system-sub008/internal/config"
	"github.com/AliAliAhmad/inspection-system-sub008/internal/domain"
	"github.com/AliAliAhmad/inspection-system-sub008/internal/media"
	"github.com/AliAliAhmad/inspection-system-sub008/internal/prefill"
	"github.com/AliAliAhmad/inspection-system-sub008/internal/session"
	"github.com/AliAliAhmad/inspection-system-sub008/internal/storage"
	"github.com/AliAliAhmad/inspection-system-sub008/internal/validation"
)

func main() {
	cfgPath := flag.String("config", "", "path to inspector.yaml (optional)")
	assignment := flag.String("assignment", "", "assignment id")
	attach := flag.String("attach", "", "path to a media file to upload for -question")
	questionNum := flag.Int("question", 0, "1-based checklist position for -attach")
	kindFlag := flag.String("kind", "photo", "media kind for -attach: photo, video or voice")
	flag.Parse()

	if *assignment == "" {
		log.Fatal("-assignment is required")
	}
	assignmentID, err := uuid.Parse(*assignment)
	if err != nil {
		log.Fatalf("invalid assignment id: %v", err)
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	kv, err := storage.NewSQLiteKV(filepath.Join(cfg.DataDir, "inspector.db"))
	if err != nil {
		log.Fatalf("open local store: %v", err)
	}
	defer kv.Close()

	client := api.NewClient(cfg.Backend.BaseURL, cfg.Backend.Token,
		api.WithTimeouts(cfg.SaveTimeout(), cfg.UploadTimeout()))

	ctx := context.Background()
	sess, err := session.Load(ctx, client, kv, assignmentID, log.Default(),
		answers.WithDebouncer(answers.NewDebouncer(cfg.DebounceWindow())))
	if err != nil {
		log.Fatalf("load session: %v", err)
	}
	defer sess.Store.Close()

	inChecklist := func(id uuid.UUID) bool { return sess.Checklist.IndexOf(id) >= 0 }
	merger := prefill.NewService(client, sess.Store, inChecklist, log.Default())
	if res, err := merger.Merge(ctx, assignmentID); err != nil {
		log.Printf("peer merge skipped: %v", err)
	} else if res != nil && res.Merged > 0 {
		log.Printf("merged %d answers from %s (%s)", res.Merged, res.PeerName, res.PeerRole)
	}

	if *attach != "" {
		if err := runAttach(ctx, cfg, client, sess, *attach, *questionNum, *kindFlag); err != nil {
			log.Fatalf("attach failed: %v", err)
		}
	}

	answered, total := sess.Progress()
	fmt.Printf("Assignment %s — %d/%d answered, resuming at question %d\n",
		assignmentID, answered, total, sess.CurrentIndex()+1)

	for _, g := range sess.Checklist.Groups() {
		fmt.Printf("\n%s / %s\n", g.Assembly, g.Part)
		for _, q := range g.Questions {
			a := sess.Store.Get(q.ID)
			value := "-"
			if a.HasValue() {
				value = a.Value
			}
			marker := " "
			if validation.IsReadingQuestion(q) {
				marker = "R"
			}
			fmt.Printf("  [%s] %2d. %-45s %s (%s)\n",
				marker, q.OrderIndex, q.TextEn, value, validation.Evaluate(q, value))
		}
	}

	r := sess.IsReady()
	if r.Ready {
		fmt.Println("\nReady to submit.")
		return
	}
	fmt.Printf("\nNot ready: %s, first at question %d\n", r.Reason, r.FirstOffendingIndex+1)
}

// runAttach pushes one on-disk asset through the upload pipeline, with the
// retry policy taken from the config.
func runAttach(ctx context.Context, cfg config.Config, client *api.Client, sess *session.Session, path string, questionNum int, kindFlag string) error {
	idx := questionNum - 1
	if !sess.Checklist.Valid(idx) {
		return fmt.Errorf("-question %d out of range [1,%d]", questionNum, sess.Checklist.Len())
	}
	kind := domain.MediaKind(kindFlag)
	switch kind {
	case domain.MediaPhoto, domain.MediaVideo, domain.MediaVoice:
	default:
		return fmt.Errorf("unknown media kind %q", kindFlag)
	}
	q := sess.Checklist.At(idx)

	upload := func(ctx context.Context, questionID uuid.UUID, kind domain.MediaKind, asset *domain.CapturedAsset) (*domain.MediaUploadResult, error) {
		return client.UploadMedia(ctx, sess.AssignmentID, questionID, kind, asset)
	}
	isReading := func(id uuid.UUID) bool {
		qq, ok := sess.Checklist.ByID(id)
		return ok && validation.IsReadingQuestion(qq)
	}
	pipe := media.NewPipeline(sess.Store, fileCapture{path: path}, upload, isReading, log.Default(),
		media.WithRetryPolicy(cfg.Engine.MaxUploadRetries, cfg.RetryDelay()))

	if err := pipe.CaptureAndUpload(ctx, q.ID, kind); err != nil {
		var rejected *domain.ReadingRejectedError
		if errors.As(err, &rejected) {
			return fmt.Errorf("backend rejected the reading: %s", rejected.Reason)
		}
		return err
	}

	slot := sess.Store.Get(q.ID).Slot(kind)
	fmt.Printf("Uploaded %s for question %d: %s\n", kind, questionNum, slot.RemoteURL)
	if slot.ExtractedValue != "" {
		fmt.Printf("Extracted reading: %s\n", slot.ExtractedValue)
	}
	return nil
}

// fileCapture satisfies domain.MediaCapture with a file already on disk.
type fileCapture struct {
	path string
}

func (f fileCapture) Capture(_ context.Context, _ domain.MediaKind) (*domain.CapturedAsset, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, err
	}
	mimeType := mime.TypeByExtension(filepath.Ext(f.path))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return &domain.CapturedAsset{
		LocalURI: "file://" + f.path,
		FileName: filepath.Base(f.path),
		MimeType: mimeType,
		Data:     data,
	}, nil
}
