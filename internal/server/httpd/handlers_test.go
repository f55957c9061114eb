package httpd

import (
	"testing"

	"github.com/google/uuid"

	"github.com/AliAliAhmad/inspection-system-sub008/internal/domain"
	"github.com/AliAliAhmad/inspection-system-sub008/internal/server/repository"
)

func TestAlignPeerAnswersMapsByChecklistPosition(t *testing.T) {
	localQ1, localQ2 := uuid.New(), uuid.New()
	peerQ1, peerQ2, peerOnly := uuid.New(), uuid.New(), uuid.New()

	local := []domain.ChecklistQuestion{
		{ID: localQ1, TextEn: "Hour meter reading", OrderIndex: 1},
		{ID: localQ2, TextEn: "Guards fitted and secure", OrderIndex: 2},
	}
	peer := []domain.ChecklistQuestion{
		{ID: peerQ1, TextEn: "Hour meter reading", OrderIndex: 1},
		{ID: peerQ2, TextEn: "Guards fitted and secure", OrderIndex: 2},
		{ID: peerOnly, TextEn: "Insulation resistance", OrderIndex: 3},
	}
	answers := []repository.StoredAnswer{
		{QuestionID: peerQ1, Value: "1250", Media: map[domain.MediaKind]string{domain.MediaPhoto: "https://cdn/p.jpg"}},
		{QuestionID: peerQ2, Value: "yes"},
		{QuestionID: peerOnly, Value: "ok"},
	}

	out := alignPeerAnswers(local, peer, answers)

	if len(out) != 2 {
		t.Fatalf("aligned %d answers, want 2 (peer-only question dropped)", len(out))
	}
	if out[0].QuestionID != localQ1 || out[0].Value != "1250" {
		t.Errorf("answer[0] = %+v, want local id %s", out[0], localQ1)
	}
	if out[0].Media[domain.MediaPhoto] != "https://cdn/p.jpg" {
		t.Error("media refs must survive the remap")
	}
	if out[1].QuestionID != localQ2 || out[1].Value != "yes" {
		t.Errorf("answer[1] = %+v, want local id %s", out[1], localQ2)
	}
}

func TestAlignPeerAnswersDropsUnknownQuestionIDs(t *testing.T) {
	local := []domain.ChecklistQuestion{{ID: uuid.New(), OrderIndex: 1}}
	peer := []domain.ChecklistQuestion{{ID: uuid.New(), OrderIndex: 1}}

	// An answer row whose question id is not in the peer's checklist at all.
	out := alignPeerAnswers(local, peer, []repository.StoredAnswer{{QuestionID: uuid.New(), Value: "stray"}})
	if len(out) != 0 {
		t.Errorf("aligned %d answers, stray rows must be dropped", len(out))
	}
}
