// Package httpd exposes the reference backend's REST surface consumed by the
// inspection engine.
package httpd

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/AliAliAhmad/inspection-system-sub008/internal/api"
	"github.com/AliAliAhmad/inspection-system-sub008/internal/domain"
	"github.com/AliAliAhmad/inspection-system-sub008/internal/server/reading"
	"github.com/AliAliAhmad/inspection-system-sub008/internal/server/report"
	"github.com/AliAliAhmad/inspection-system-sub008/internal/server/repository"
	"github.com/AliAliAhmad/inspection-system-sub008/internal/server/store"
	"github.com/AliAliAhmad/inspection-system-sub008/internal/validation"
)

// ReadingExtractor lets tests stub the OCR step.
type ReadingExtractor interface {
	Extract(imageBytes []byte) (*reading.Extraction, error)
}

type Handler struct {
	repo      *repository.PostgresRepository
	files     store.FileStorage
	extractor ReadingExtractor
	logger    *log.Logger
}

func NewHandler(repo *repository.PostgresRepository, files store.FileStorage, extractor ReadingExtractor, logger *log.Logger) *Handler {
	return &Handler{repo: repo, files: files, extractor: extractor, logger: logger}
}

// Register attaches all API endpoints to the app.
func Register(app *fiber.App, h *Handler) {
	grp := app.Group("/api")

	grp.Get("/assignments/:id/checklist", h.handleGetChecklist)
	grp.Get("/assignments/:id/peer-answers", h.handleGetPeerAnswers)
	grp.Post("/assignments/:id/answers", h.handleSaveAnswer)
	grp.Post("/assignments/:id/media", h.handleUploadMedia)
	grp.Post("/assignments/:id/submit", h.handleSubmit)
	grp.Get("/assignments/:id/report.pdf", h.handleReportPDF)
}

func badReq(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(api.ErrorResponse{OK: false, Error: msg})
}

func notFound(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusNotFound).JSON(api.ErrorResponse{OK: false, Error: msg})
}

func serverErr(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusInternalServerError).JSON(api.ErrorResponse{OK: false, Error: err.Error()})
}

func (h *Handler) assignment(c *fiber.Ctx) (*repository.Assignment, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, fmt.Errorf("invalid assignment id")
	}
	return h.repo.GetAssignment(c.Context(), id)
}

func (h *Handler) handleGetChecklist(c *fiber.Ctx) error {
	a, err := h.assignment(c)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, err.Error())
		}
		return badReq(c, err.Error())
	}

	questions, err := h.repo.GetQuestions(c.Context(), a.ID)
	if err != nil {
		return serverErr(c, err)
	}
	answers, err := h.repo.GetAnswers(c.Context(), a.ID)
	if err != nil {
		return serverErr(c, err)
	}

	resp := api.ChecklistResponse{AssignmentID: a.ID}
	for _, q := range questions {
		resp.Questions = append(resp.Questions, questionDTO(q))
	}
	for _, ans := range answers {
		resp.Answers = append(resp.Answers, answerDTO(ans))
	}
	return c.JSON(resp)
}

func (h *Handler) handleGetPeerAnswers(c *fiber.Ctx) error {
	a, err := h.assignment(c)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, err.Error())
		}
		return badReq(c, err.Error())
	}

	peer, err := h.repo.GetPeerAssignment(c.Context(), a)
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(api.PeerAnswersResponse{Found: false})
	}
	if err != nil {
		return serverErr(c, err)
	}

	localQuestions, err := h.repo.GetQuestions(c.Context(), a.ID)
	if err != nil {
		return serverErr(c, err)
	}
	peerQuestions, err := h.repo.GetQuestions(c.Context(), peer.ID)
	if err != nil {
		return serverErr(c, err)
	}
	answers, err := h.repo.GetAnswers(c.Context(), peer.ID)
	if err != nil {
		return serverErr(c, err)
	}

	resp := api.PeerAnswersResponse{
		Found:     true,
		PeerName:  peer.InspectorName,
		PeerRole:  peer.InspectorRole,
		FetchedAt: time.Now().UTC(),
	}
	for _, ans := range alignPeerAnswers(localQuestions, peerQuestions, answers) {
		resp.Answers = append(resp.Answers, answerDTO(ans))
	}
	return c.JSON(resp)
}

// alignPeerAnswers rewrites the peer's answers onto the caller's question ids.
// Each assignment carries its own question rows, so the identity of a question
// across a counterpart pair is its checklist position. Answers whose position
// has no local counterpart are dropped rather than leaked under a foreign id.
func alignPeerAnswers(local, peer []domain.ChecklistQuestion, answers []repository.StoredAnswer) []repository.StoredAnswer {
	localByOrder := make(map[int]uuid.UUID, len(local))
	for _, q := range local {
		localByOrder[q.OrderIndex] = q.ID
	}
	orderByPeerID := make(map[uuid.UUID]int, len(peer))
	for _, q := range peer {
		orderByPeerID[q.ID] = q.OrderIndex
	}

	var out []repository.StoredAnswer
	for _, ans := range answers {
		order, ok := orderByPeerID[ans.QuestionID]
		if !ok {
			continue
		}
		localID, ok := localByOrder[order]
		if !ok {
			continue
		}
		ans.QuestionID = localID
		out = append(out, ans)
	}
	return out
}

func (h *Handler) handleSaveAnswer(c *fiber.Ctx) error {
	a, err := h.assignment(c)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, err.Error())
		}
		return badReq(c, err.Error())
	}
	if a.Status == repository.StatusSubmitted {
		return badReq(c, "inspection already submitted")
	}

	var req api.SaveAnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return badReq(c, "malformed answer payload")
	}
	if req.QuestionID == uuid.Nil {
		return badReq(c, "questionId is required")
	}

	stored := repository.StoredAnswer{
		QuestionID:   req.QuestionID,
		Value:        req.Value,
		Comment:      req.Comment,
		UrgencyLevel: req.UrgencyLevel,
		VoiceNoteURL: req.VoiceNoteURL,
	}
	if err := h.repo.UpsertAnswer(c.Context(), a.ID, stored); err != nil {
		return serverErr(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

func (h *Handler) handleUploadMedia(c *fiber.Ctx) error {
	a, err := h.assignment(c)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, err.Error())
		}
		return badReq(c, err.Error())
	}

	var req api.MediaUploadRequest
	if err := c.BodyParser(&req); err != nil {
		return badReq(c, "malformed media payload")
	}
	kind := domain.MediaKind(req.Kind)
	switch kind {
	case domain.MediaPhoto, domain.MediaVideo, domain.MediaVoice:
	default:
		return badReq(c, fmt.Sprintf("unknown media kind %q", req.Kind))
	}
	data, err := base64.StdEncoding.DecodeString(req.Base64Payload)
	if err != nil {
		return badReq(c, "payload is not valid base64")
	}
	if len(data) == 0 {
		return badReq(c, "payload is empty")
	}

	key := fmt.Sprintf("assignments/%s/%s/%s_%d_%s", a.ID, req.QuestionID, kind, time.Now().UnixMilli(), safeName(req.FileName))
	storedKey, err := h.files.Upload(c.Context(), key, data)
	if err != nil {
		return serverErr(c, err)
	}
	remoteURL, err := h.files.GetURL(c.Context(), storedKey)
	if err != nil {
		return serverErr(c, err)
	}

	resp := api.MediaUploadResponse{RemoteURL: remoteURL}

	if kind == domain.MediaPhoto {
		if q, ok := h.findQuestion(c.Context(), a.ID, req.QuestionID); ok && validation.IsReadingQuestion(q) {
			verdict, err := h.validateReading(c.Context(), a, req.QuestionID, data)
			if err != nil {
				h.logger.Printf("reading extraction failed assignment=%s question=%s: %v", a.ID, req.QuestionID, err)
			} else {
				resp.ReadingValidation = verdict
				if verdict.ParsedValue != nil {
					resp.ExtractedReading = strconv.FormatFloat(*verdict.ParsedValue, 'f', -1, 64)
				}
				if !verdict.IsValid {
					// Rejected reading: the asset is not recorded as evidence.
					return c.JSON(resp)
				}
			}
		}
	}

	if err := h.repo.AddAnswerMedia(c.Context(), a.ID, req.QuestionID, kind, remoteURL); err != nil {
		return serverErr(c, err)
	}
	return c.JSON(resp)
}

func (h *Handler) validateReading(ctx context.Context, a *repository.Assignment, questionID uuid.UUID, data []byte) (*api.ReadingValidationDTO, error) {
	ex, err := h.extractor.Extract(data)
	if err != nil {
		return nil, err
	}
	last, err := h.repo.GetLastReading(ctx, a.EquipmentID, questionID)
	if err != nil {
		return nil, err
	}
	verdict := reading.Validate(ex, last)
	if verdict.IsValid && verdict.ParsedValue != nil {
		if err := h.repo.SetLastReading(ctx, a.EquipmentID, questionID, *verdict.ParsedValue); err != nil {
			return nil, err
		}
	}
	return &verdict, nil
}

func (h *Handler) findQuestion(ctx context.Context, assignmentID, questionID uuid.UUID) (domain.ChecklistQuestion, bool) {
	questions, err := h.repo.GetQuestions(ctx, assignmentID)
	if err != nil {
		h.logger.Printf("load questions failed assignment=%s: %v", assignmentID, err)
		return domain.ChecklistQuestion{}, false
	}
	for _, q := range questions {
		if q.ID == questionID {
			return q, true
		}
	}
	return domain.ChecklistQuestion{}, false
}

func (h *Handler) handleSubmit(c *fiber.Ctx) error {
	a, err := h.assignment(c)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, err.Error())
		}
		return badReq(c, err.Error())
	}
	if a.Status == repository.StatusSubmitted {
		return badReq(c, "inspection already submitted")
	}

	// The server is the final authority: re-check completeness regardless of
	// what the client's gate decided.
	unanswered, err := h.repo.CountUnanswered(c.Context(), a.ID)
	if err != nil {
		return serverErr(c, err)
	}
	if unanswered > 0 {
		return badReq(c, fmt.Sprintf("%d question(s) still unanswered", unanswered))
	}

	if err := h.repo.MarkSubmitted(c.Context(), a.ID); err != nil {
		return serverErr(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

func (h *Handler) handleReportPDF(c *fiber.Ctx) error {
	a, err := h.assignment(c)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, err.Error())
		}
		return badReq(c, err.Error())
	}

	questions, err := h.repo.GetQuestions(c.Context(), a.ID)
	if err != nil {
		return serverErr(c, err)
	}
	answers, err := h.repo.GetAnswers(c.Context(), a.ID)
	if err != nil {
		return serverErr(c, err)
	}

	pdf, err := report.BuildPDF(a, questions, answers)
	if err != nil {
		return serverErr(c, err)
	}
	c.Set("Content-Type", "application/pdf")
	c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=inspection_%s.pdf", a.ID))
	return c.Send(pdf)
}

func questionDTO(q domain.ChecklistQuestion) api.QuestionDTO {
	dto := api.QuestionDTO{
		ID:              q.ID,
		TextEn:          q.TextEn,
		TextAr:          q.TextAr,
		AnswerType:      string(q.AnswerType),
		CriticalFailure: q.CriticalFailure,
		Assembly:        q.Assembly,
		Part:            q.Part,
		OrderIndex:      q.OrderIndex,
	}
	if q.NumericRule != nil {
		dto.NumericRule = &api.NumericRuleDTO{
			Kind:     string(q.NumericRule.Kind),
			MinValue: q.NumericRule.MinValue,
			MaxValue: q.NumericRule.MaxValue,
		}
	}
	return dto
}

func answerDTO(a repository.StoredAnswer) api.AnswerDTO {
	dto := api.AnswerDTO{
		QuestionID:   a.QuestionID,
		Value:        a.Value,
		Comment:      a.Comment,
		UrgencyLevel: a.UrgencyLevel,
	}
	for kind, url := range a.Media {
		dto.Media = append(dto.Media, api.MediaRefDTO{Kind: string(kind), RemoteURL: url})
	}
	if a.VoiceNoteURL != "" && a.Media[domain.MediaVoice] == "" {
		dto.Media = append(dto.Media, api.MediaRefDTO{Kind: string(domain.MediaVoice), RemoteURL: a.VoiceNoteURL})
	}
	return dto
}

func safeName(name string) string {
	if name == "" {
		return "asset"
	}
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
