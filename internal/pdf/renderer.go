// Package pdf renders a quiz bank into a downloadable PDF document.
package pdf

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"senseibot/internal/models"
)

// Renderer produces quiz documents. Stateless; safe for concurrent use.
type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render lays out the title and the full question bank in its original
// order, options lettered A-D. Page breaks are handled by the document;
// callers never see pagination.
func (r *Renderer) Render(title string, questions []models.QuizQuestion) ([]byte, error) {
	doc := fpdf.New("P", "mm", "Letter", "")
	doc.SetTitle(title, true)
	doc.SetAutoPageBreak(true, 20)
	doc.AddPage()

	// Core fonts are cp1252; translate so model output with typographic
	// quotes or accents does not corrupt the document.
	tr := doc.UnicodeTranslatorFromDescriptor("")

	doc.SetFont("Helvetica", "B", 18)
	doc.MultiCell(0, 9, tr(fmt.Sprintf("SenSei AI Quiz: %s", title)), "", "L", false)
	doc.Ln(4)

	for i, q := range questions {
		doc.SetFont("Helvetica", "B", 10)
		doc.MultiCell(0, 6, tr(fmt.Sprintf("%d. %s", i+1, q.Prompt)), "", "L", false)

		doc.SetFont("Helvetica", "", 9)
		for j, option := range q.Options {
			label := rune('A' + j)
			doc.MultiCell(0, 5, tr(fmt.Sprintf("    %c. %s", label, option)), "", "L", false)
		}
		doc.Ln(3)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return buf.Bytes(), nil
}
