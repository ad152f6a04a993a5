package models

import (
	"time"

	"github.com/google/uuid"
)

// QuizQuestion is a single multiple-choice question. Immutable once built;
// CorrectAnswer always equals exactly one element of Options.
type QuizQuestion struct {
	Prompt        string   `json:"question_text"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
}

// Audit is the structured study artifact produced from one user submission.
type Audit struct {
	ID          uuid.UUID      `json:"id"`
	Title       string         `json:"title"`
	PrimaryText string         `json:"primary_text"`
	Concepts    []string       `json:"core_concepts"`
	Critique    string         `json:"critique,omitempty"`
	QuizBank    []QuizQuestion `json:"quiz_bank"`
	CreatedAt   time.Time      `json:"created_at"`
}

// BuilderAudit mirrors the raw JSON shape returned by the generative
// backends before validation. Either EducationalAnswer or Summary is set
// depending on whether the input looked like a direct question or notes.
type BuilderAudit struct {
	Title             string            `json:"title"`
	EducationalAnswer string            `json:"educational_answer"`
	Summary           string            `json:"summary"`
	CoreConcepts      []string          `json:"core_concepts"`
	Critique          string            `json:"critique"`
	QuizBank          []BuilderQuestion `json:"quiz_bank"`
}

// BuilderQuestion is a raw question as returned by a backend.
type BuilderQuestion struct {
	QuestionText  string   `json:"question_text"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
}
