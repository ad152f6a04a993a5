package quiz

import "senseibot/internal/models"

// Session is the per-chat state created by a successful submission.
//
// The quiz lifecycle and the study material are deliberately independent:
// finishing or stopping the interactive quiz clears only the progress, so
// the PDF stays downloadable until the next submission replaces the whole
// session. Cursor only moves forward and never exceeds len(Audit.QuizBank).
type Session struct {
	Audit      *models.Audit
	Cursor     int
	QuizActive bool

	// PDF caches the rendered document for repeat downloads.
	PDF []byte
}
