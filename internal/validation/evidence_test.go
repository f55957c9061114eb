package validation

import (
	"testing"

	"github.com/AliAliAhmad/inspection-system-sub008/internal/domain"
)

func answerWith(value string, uploaded ...domain.MediaKind) *domain.Answer {
	a := &domain.Answer{
		Value: value,
		Media: make(map[domain.MediaKind]*domain.MediaSlot),
	}
	for _, k := range uploaded {
		a.Media[k] = &domain.MediaSlot{Kind: k, RemoteURL: "https://cdn/x", UploadState: domain.UploadUploaded}
	}
	return a
}

func TestIsReadingQuestion(t *testing.T) {
	tests := []struct {
		name     string
		q        domain.ChecklistQuestion
		expected bool
	}{
		{"english phrase", domain.ChecklistQuestion{TextEn: "Record the hour meter reading"}, true},
		{"english embedded", domain.ChecklistQuestion{TextEn: "Check gauge reading on panel"}, true},
		{"arabic phrase", domain.ChecklistQuestion{TextAr: "سجل قراءة العداد الرئيسي"}, true},
		{"plain question", domain.ChecklistQuestion{TextEn: "Guards fitted and secure"}, false},
		{"keyword only is not enough", domain.ChecklistQuestion{TextEn: "Clean the meter housing"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsReadingQuestion(tt.q); got != tt.expected {
				t.Errorf("IsReadingQuestion = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestEvidenceReadingQuestionNeedsPhoto(t *testing.T) {
	q := domain.ChecklistQuestion{TextEn: "Hour meter reading", AnswerType: domain.AnswerNumeric}

	if EvidenceSatisfied(q, answerWith("1200")) {
		t.Error("reading question without photo should not be satisfied")
	}
	if !EvidenceSatisfied(q, answerWith("1200", domain.MediaPhoto)) {
		t.Error("reading question with uploaded photo should be satisfied")
	}

	// Photo captured but still uploading does not count.
	a := answerWith("1200")
	a.Media[domain.MediaPhoto] = &domain.MediaSlot{Kind: domain.MediaPhoto, UploadState: domain.UploadUploading}
	if EvidenceSatisfied(q, a) {
		t.Error("in-flight photo upload should not satisfy evidence")
	}
}

func TestEvidenceFailingAnswerCombos(t *testing.T) {
	q := domain.ChecklistQuestion{
		AnswerType:  domain.AnswerNumeric,
		NumericRule: &domain.NumericRule{Kind: domain.RuleLessThan, MaxValue: 50},
	}

	tests := []struct {
		name     string
		media    []domain.MediaKind
		expected bool
	}{
		{"nothing", nil, false},
		{"photo alone", []domain.MediaKind{domain.MediaPhoto}, false},
		{"voice alone", []domain.MediaKind{domain.MediaVoice}, false},
		{"video alone", []domain.MediaKind{domain.MediaVideo}, false},
		{"photo and voice", []domain.MediaKind{domain.MediaPhoto, domain.MediaVoice}, true},
		{"video and voice", []domain.MediaKind{domain.MediaVideo, domain.MediaVoice}, true},
		{"photo and video without voice", []domain.MediaKind{domain.MediaPhoto, domain.MediaVideo}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := answerWith("60", tt.media...)
			if got := EvidenceSatisfied(q, a); got != tt.expected {
				t.Errorf("EvidenceSatisfied(fail, %v) = %v, want %v", tt.media, got, tt.expected)
			}
		})
	}

	// A passing value on the same question needs nothing.
	if !EvidenceSatisfied(q, answerWith("42")) {
		t.Error("passing answer should not require media")
	}
}

func TestUploadsSettled(t *testing.T) {
	a := answerWith("x", domain.MediaPhoto)
	if !UploadsSettled(a) {
		t.Error("uploaded slot should count as settled")
	}
	a.Media[domain.MediaVoice] = &domain.MediaSlot{Kind: domain.MediaVoice, UploadState: domain.UploadUploading}
	if UploadsSettled(a) {
		t.Error("uploading slot should not be settled")
	}
	if !UploadsSettled(nil) {
		t.Error("nil answer has nothing in flight")
	}
}
