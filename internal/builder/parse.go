package builder

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"senseibot/internal/models"
)

const defaultTitle = "Academic Topic"

// decodeAudit parses raw backend JSON into an Audit, keeping only
// well-formed questions. An unparseable body is an error; a bank that ends
// up empty is not, the quiz layer treats it as immediately completed.
func decodeAudit(jsonText string) (*models.Audit, error) {
	var raw models.BuilderAudit
	decoder := json.NewDecoder(strings.NewReader(jsonText))
	decoder.UseNumber()
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse audit JSON: %w", err)
	}
	return auditFromRaw(raw), nil
}

// auditFromRaw normalizes a raw backend response: picks the primary text,
// defaults the title, and filters the quiz bank.
func auditFromRaw(raw models.BuilderAudit) *models.Audit {
	title := strings.TrimSpace(raw.Title)
	if title == "" {
		title = defaultTitle
	}

	// A direct question gets the focused answer; notes get the summary.
	primary := strings.TrimSpace(raw.EducationalAnswer)
	if primary == "" {
		primary = strings.TrimSpace(raw.Summary)
	}

	return &models.Audit{
		ID:          uuid.New(),
		Title:       title,
		PrimaryText: primary,
		Concepts:    raw.CoreConcepts,
		Critique:    strings.TrimSpace(raw.Critique),
		QuizBank:    sanitizeQuestions(raw.QuizBank),
		CreatedAt:   time.Now(),
	}
}

// sanitizeQuestions drops questions that violate the MCQ shape: missing
// prompt, not exactly four distinct options, or a correct answer that does
// not match any option verbatim.
func sanitizeQuestions(raw []models.BuilderQuestion) []models.QuizQuestion {
	questions := make([]models.QuizQuestion, 0, len(raw))
	for _, q := range raw {
		if strings.TrimSpace(q.QuestionText) == "" || len(q.Options) != 4 {
			continue
		}
		seen := make(map[string]bool, 4)
		correctMatches := 0
		valid := true
		for _, opt := range q.Options {
			if strings.TrimSpace(opt) == "" || seen[opt] {
				valid = false
				break
			}
			seen[opt] = true
			if opt == q.CorrectAnswer {
				correctMatches++
			}
		}
		if !valid || correctMatches != 1 {
			continue
		}
		questions = append(questions, models.QuizQuestion{
			Prompt:        q.QuestionText,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
		})
	}
	return questions
}

var (
	auditJSONPattern = regexp.MustCompile(`(?s)\{.*"quiz_bank".*\}`)
	codeBlockPattern = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")
	bareObjectStart  = regexp.MustCompile(`(?s)\{.*\}`)
)

// extractJSONFromText pulls a JSON object out of a response that may wrap it
// in markdown fences or prose.
func extractJSONFromText(text string) string {
	if m := auditJSONPattern.FindString(text); m != "" {
		return m
	}
	if m := codeBlockPattern.FindStringSubmatch(text); len(m) > 1 {
		return m[1]
	}
	return bareObjectStart.FindString(text)
}
