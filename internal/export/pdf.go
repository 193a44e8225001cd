// Package export renders a folder's questions as a paginated PDF document.
// It is stateless: the only contract is a faithful transcription of each
// question's prompt, choices with the correct one marked, and explanation.
package export

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"

	"studybank/internal/domain"
)

const (
	pageBreakAt = 260.0 // mm from the top of an A4 page
	lineHeight  = 6.0
)

// ToPDF writes the folder and its questions to w as a PDF.
func ToPDF(w io.Writer, folder domain.Folder, questions []domain.Question) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(folder.Name, true)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.MultiCell(0, 8, folder.Name, "", "L", false)
	if folder.Description != "" {
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, lineHeight, folder.Description, "", "L", false)
	}
	pdf.Ln(4)

	for i, q := range questions {
		if pdf.GetY() > pageBreakAt {
			pdf.AddPage()
		}
		writeQuestion(pdf, i+1, q)
	}

	return pdf.Output(w)
}

func writeQuestion(pdf *fpdf.Fpdf, number int, q domain.Question) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.MultiCell(0, lineHeight, fmt.Sprintf("%d. %s", number, q.Title), "", "L", false)

	pdf.SetFont("Helvetica", "", 11)
	switch q.Type {
	case domain.MultipleChoice:
		correct := q.CorrectIndex()
		for idx, option := range q.Options {
			line := fmt.Sprintf("%c) %s", 'A'+idx, option)
			if idx == correct {
				line += "  [correct]"
			}
			pdf.MultiCell(0, lineHeight, line, "", "L", false)
		}
	case domain.BooleanJudgment:
		answer := "False"
		if q.CorrectBoolean != nil && *q.CorrectBoolean {
			answer = "True"
		}
		pdf.MultiCell(0, lineHeight, "Answer: "+answer, "", "L", false)
	}

	if q.Explanation != "" {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.MultiCell(0, lineHeight, "Explanation: "+q.Explanation, "", "L", false)
	}
	pdf.Ln(3)
}
