package validation

import (
	"strings"

	"github.com/AliAliAhmad/inspection-system-sub008/internal/domain"
)

// readingPhrases classify a question as a meter/counter reading. Matching is
// a substring check against the question text in the matching language, not a
// keyword guess.
var readingPhrasesEn = []string{
	"meter reading",
	"counter reading",
	"gauge reading",
	"hour meter",
}

var readingPhrasesAr = []string{
	"قراءة العداد",
	"قراءة عداد",
	"عداد الساعات",
}

// IsReadingQuestion reports whether the question asks for a meter/counter
// reading. Reading questions require photographic proof and their values are
// checked for monotonicity server-side.
func IsReadingQuestion(q domain.ChecklistQuestion) bool {
	en := strings.ToLower(q.TextEn)
	for _, p := range readingPhrasesEn {
		if strings.Contains(en, p) {
			return true
		}
	}
	for _, p := range readingPhrasesAr {
		if strings.Contains(q.TextAr, p) {
			return true
		}
	}
	return false
}

func uploaded(a *domain.Answer, kind domain.MediaKind) bool {
	s := a.Slot(kind)
	return s != nil && s.UploadState == domain.UploadUploaded
}

// EvidenceSatisfied reports whether the answer carries all media the policy
// requires:
//
//   - a reading question always needs an uploaded photo, whatever the
//     validation outcome;
//   - a failing answer needs (photo AND voice) OR (video AND voice).
//
// Questions outside both cases need nothing.
func EvidenceSatisfied(q domain.ChecklistQuestion, a *domain.Answer) bool {
	if IsReadingQuestion(q) && !uploaded(a, domain.MediaPhoto) {
		return false
	}
	if Evaluate(q, answerValue(a)) == domain.ValidationFail {
		voice := uploaded(a, domain.MediaVoice)
		visual := uploaded(a, domain.MediaPhoto) || uploaded(a, domain.MediaVideo)
		if !voice || !visual {
			return false
		}
	}
	return true
}

func answerValue(a *domain.Answer) string {
	if a == nil {
		return ""
	}
	return a.Value
}

// UploadsSettled reports whether no media slot on the answer is mid-capture or
// mid-upload. Submission waits for open uploads to settle.
func UploadsSettled(a *domain.Answer) bool {
	if a == nil {
		return true
	}
	for _, s := range a.Media {
		if s.UploadState == domain.UploadCapturing || s.UploadState == domain.UploadUploading {
			return false
		}
	}
	return true
}
