// Package report renders the post-submission inspection summary.
package report

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/AliAliAhmad/inspection-system-sub008/internal/domain"
	"github.com/AliAliAhmad/inspection-system-sub008/internal/server/repository"
	"github.com/AliAliAhmad/inspection-system-sub008/internal/validation"
)

// BuildPDF renders one assignment's answers, question by question, with the
// validation outcome and evidence count per answer.
//
// Standard fonts cover Latin only, so the English question text is used.
func BuildPDF(a *repository.Assignment, questions []domain.ChecklistQuestion, answers []repository.StoredAnswer) ([]byte, error) {
	byQuestion := make(map[string]repository.StoredAnswer, len(answers))
	for _, ans := range answers {
		byQuestion[ans.QuestionID.String()] = ans
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, fmt.Sprintf("Inspection %s", a.ID))
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 12)
	pdf.Cell(40, 10, fmt.Sprintf("Inspector: %s (%s)", a.InspectorName, a.InspectorRole))
	pdf.Ln(8)
	pdf.Cell(40, 10, fmt.Sprintf("Equipment: %s", a.EquipmentID))
	pdf.Ln(8)
	pdf.Cell(40, 10, fmt.Sprintf("Status: %s", a.Status))
	pdf.Ln(8)
	if a.SubmittedAt != nil {
		pdf.Cell(40, 10, fmt.Sprintf("Submitted: %s", a.SubmittedAt.Format("02.01.2006 15:04")))
		pdf.Ln(8)
	}
	pdf.Ln(7)

	for _, q := range questions {
		ans := byQuestion[q.ID.String()]

		pdf.SetFont("Arial", "B", 12)
		pdf.MultiCell(0, 8, fmt.Sprintf("[%s / %s] %s", q.Assembly, q.Part, q.TextEn), "", "", false)

		pdf.SetFont("Arial", "", 10)
		result := validation.Evaluate(q, ans.Value)
		pdf.Cell(0, 6, fmt.Sprintf("Answer: %s   Result: %s   Urgency: %d", orDash(ans.Value), result, ans.UrgencyLevel))
		pdf.Ln(6)

		if ans.Comment != "" {
			pdf.SetFont("Arial", "I", 10)
			pdf.MultiCell(0, 6, fmt.Sprintf("Comment: %s", ans.Comment), "", "", false)
		}

		pdf.SetFont("Arial", "", 10)
		if len(ans.Media) > 0 {
			pdf.Cell(0, 6, fmt.Sprintf("Evidence: %d attachment(s)", len(ans.Media)))
		} else {
			pdf.Cell(0, 6, "No evidence attached")
		}
		pdf.Ln(10)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func orDash(v string) string {
	if v == "" {
		return "-"
	}
	return v
}
