// Package api holds the REST client and the wire types shared between the
// engine and the reference backend.
package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/AliAliAhmad/inspection-system-sub008/internal/domain"
)

type NumericRuleDTO struct {
	Kind     string  `json:"kind"`
	MinValue float64 `json:"minValue"`
	MaxValue float64 `json:"maxValue"`
}

type QuestionDTO struct {
	ID              uuid.UUID       `json:"id"`
	TextEn          string          `json:"textEn"`
	TextAr          string          `json:"textAr"`
	AnswerType      string          `json:"answerType"`
	NumericRule     *NumericRuleDTO `json:"numericRule,omitempty"`
	CriticalFailure bool            `json:"criticalFailure"`
	Assembly        string          `json:"assembly"`
	Part            string          `json:"part"`
	OrderIndex      int             `json:"orderIndex"`
}

type MediaRefDTO struct {
	Kind      string `json:"kind"`
	RemoteURL string `json:"remoteUrl"`
}

type AnswerDTO struct {
	QuestionID   uuid.UUID     `json:"questionId"`
	Value        string        `json:"value"`
	Comment      string        `json:"comment,omitempty"`
	UrgencyLevel int           `json:"urgencyLevel"`
	Media        []MediaRefDTO `json:"media,omitempty"`
}

type ChecklistResponse struct {
	AssignmentID uuid.UUID     `json:"assignmentId"`
	Questions    []QuestionDTO `json:"questions"`
	Answers      []AnswerDTO   `json:"answers"`
}

type PeerAnswersResponse struct {
	Found     bool        `json:"found"`
	PeerName  string      `json:"peerName,omitempty"`
	PeerRole  string      `json:"peerRole,omitempty"`
	FetchedAt time.Time   `json:"fetchedAt,omitempty"`
	Answers   []AnswerDTO `json:"answers,omitempty"`
}

type SaveAnswerRequest struct {
	QuestionID   uuid.UUID `json:"questionId"`
	Value        string    `json:"value"`
	Comment      string    `json:"comment,omitempty"`
	UrgencyLevel int       `json:"urgencyLevel"`
	VoiceNoteURL string    `json:"voiceNoteId,omitempty"`
}

type MediaUploadRequest struct {
	QuestionID    uuid.UUID `json:"questionId"`
	Kind          string    `json:"kind"`
	Base64Payload string    `json:"base64Payload"`
	FileName      string    `json:"fileName"`
	MimeType      string    `json:"mimeType"`
}

type ReadingValidationDTO struct {
	IsValid         bool     `json:"isValid"`
	ParsedValue     *float64 `json:"parsedValue,omitempty"`
	IsFaulty        bool     `json:"isFaulty,omitempty"`
	LastReading     *float64 `json:"lastReading,omitempty"`
	RejectionReason string   `json:"rejectionReason,omitempty"`
}

type MediaUploadResponse struct {
	RemoteURL         string                `json:"remoteUrl"`
	AIAnalysis        string                `json:"aiAnalysis,omitempty"`
	ExtractedReading  string                `json:"extractedReading,omitempty"`
	ReadingValidation *ReadingValidationDTO `json:"readingValidation,omitempty"`
}

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

func (q QuestionDTO) ToDomain() domain.ChecklistQuestion {
	out := domain.ChecklistQuestion{
		ID:              q.ID,
		TextEn:          q.TextEn,
		TextAr:          q.TextAr,
		AnswerType:      domain.AnswerType(q.AnswerType),
		CriticalFailure: q.CriticalFailure,
		Assembly:        q.Assembly,
		Part:            q.Part,
		OrderIndex:      q.OrderIndex,
	}
	if q.NumericRule != nil {
		out.NumericRule = &domain.NumericRule{
			Kind:     domain.NumericRuleKind(q.NumericRule.Kind),
			MinValue: q.NumericRule.MinValue,
			MaxValue: q.NumericRule.MaxValue,
		}
	}
	return out
}

func (a AnswerDTO) ToDomain() domain.Answer {
	out := domain.Answer{
		QuestionID:   a.QuestionID,
		Value:        a.Value,
		Comment:      a.Comment,
		UrgencyLevel: a.UrgencyLevel,
		Media:        make(map[domain.MediaKind]*domain.MediaSlot),
		SyncState:    domain.SyncClean,
	}
	for _, m := range a.Media {
		kind := domain.MediaKind(m.Kind)
		out.Media[kind] = &domain.MediaSlot{
			Kind:        kind,
			RemoteURL:   m.RemoteURL,
			UploadState: domain.UploadUploaded,
		}
	}
	return out
}

func (a AnswerDTO) ToPeer() domain.PeerAnswer {
	out := domain.PeerAnswer{
		QuestionID:   a.QuestionID,
		Value:        a.Value,
		Comment:      a.Comment,
		UrgencyLevel: a.UrgencyLevel,
		MediaURLs:    make(map[domain.MediaKind]string),
	}
	for _, m := range a.Media {
		out.MediaURLs[domain.MediaKind(m.Kind)] = m.RemoteURL
	}
	return out
}

func (r *ReadingValidationDTO) ToDomain() *domain.ReadingValidation {
	if r == nil {
		return nil
	}
	return &domain.ReadingValidation{
		IsValid:         r.IsValid,
		ParsedValue:     r.ParsedValue,
		IsFaulty:        r.IsFaulty,
		LastReading:     r.LastReading,
		RejectionReason: r.RejectionReason,
	}
}
