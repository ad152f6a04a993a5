package builder

import (
	"strings"
	"testing"

	"senseibot/internal/models"
)

const wellFormedJSON = `{
  "title": "Cell Energy",
  "educational_answer": "ATP is the energy currency of the cell.",
  "summary": "",
  "core_concepts": ["ATP", "mitochondria", "glycolysis", "Krebs cycle", "oxidative phosphorylation"],
  "critique": "Dense but serviceable.",
  "quiz_bank": [
    {
      "question_text": "Where is ATP produced?",
      "options": ["Nucleus", "Mitochondria", "Ribosome", "Lysosome"],
      "correct_answer": "Mitochondria"
    }
  ]
}`

func TestDecodeAuditWellFormed(t *testing.T) {
	audit, err := decodeAudit(wellFormedJSON)
	if err != nil {
		t.Fatalf("decodeAudit: %v", err)
	}
	if audit.Title != "Cell Energy" {
		t.Errorf("Title = %q", audit.Title)
	}
	if audit.PrimaryText != "ATP is the energy currency of the cell." {
		t.Errorf("PrimaryText = %q, want the educational answer", audit.PrimaryText)
	}
	if len(audit.Concepts) != 5 {
		t.Errorf("got %d concepts", len(audit.Concepts))
	}
	if audit.Critique == "" {
		t.Error("critique dropped")
	}
	if len(audit.QuizBank) != 1 {
		t.Fatalf("got %d questions", len(audit.QuizBank))
	}
	if audit.QuizBank[0].CorrectAnswer != "Mitochondria" {
		t.Errorf("CorrectAnswer = %q", audit.QuizBank[0].CorrectAnswer)
	}
	if audit.ID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Error("audit ID not assigned")
	}
}

func TestDecodeAuditSummaryFallback(t *testing.T) {
	audit, err := decodeAudit(`{"title": "Notes", "summary": "A summary.", "quiz_bank": []}`)
	if err != nil {
		t.Fatalf("decodeAudit: %v", err)
	}
	if audit.PrimaryText != "A summary." {
		t.Errorf("PrimaryText = %q, want the summary", audit.PrimaryText)
	}
}

func TestDecodeAuditDefaultsTitle(t *testing.T) {
	audit, err := decodeAudit(`{"title": "  ", "quiz_bank": []}`)
	if err != nil {
		t.Fatalf("decodeAudit: %v", err)
	}
	if audit.Title != defaultTitle {
		t.Errorf("Title = %q, want %q", audit.Title, defaultTitle)
	}
}

func TestDecodeAuditRejectsGarbage(t *testing.T) {
	if _, err := decodeAudit("not json at all"); err == nil {
		t.Fatal("garbage input decoded without error")
	}
}

func TestSanitizeQuestions(t *testing.T) {
	good := models.BuilderQuestion{
		QuestionText:  "ok?",
		Options:       []string{"a", "b", "c", "d"},
		CorrectAnswer: "b",
	}
	tests := []struct {
		name string
		in   models.BuilderQuestion
		kept bool
	}{
		{"valid", good, true},
		{"empty prompt", models.BuilderQuestion{
			QuestionText: "  ", Options: good.Options, CorrectAnswer: "b"}, false},
		{"three options", models.BuilderQuestion{
			QuestionText: "ok?", Options: []string{"a", "b", "c"}, CorrectAnswer: "b"}, false},
		{"five options", models.BuilderQuestion{
			QuestionText: "ok?", Options: []string{"a", "b", "c", "d", "e"}, CorrectAnswer: "b"}, false},
		{"duplicate options", models.BuilderQuestion{
			QuestionText: "ok?", Options: []string{"a", "a", "c", "d"}, CorrectAnswer: "c"}, false},
		{"correct answer not an option", models.BuilderQuestion{
			QuestionText: "ok?", Options: good.Options, CorrectAnswer: "z"}, false},
		{"blank option", models.BuilderQuestion{
			QuestionText: "ok?", Options: []string{"a", "", "c", "d"}, CorrectAnswer: "a"}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := sanitizeQuestions([]models.BuilderQuestion{tc.in})
			if kept := len(got) == 1; kept != tc.kept {
				t.Errorf("kept = %v, want %v", kept, tc.kept)
			}
		})
	}
}

func TestSanitizeQuestionsFiltersWithinBatch(t *testing.T) {
	raw := []models.BuilderQuestion{
		{QuestionText: "q1", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: "a"},
		{QuestionText: "broken", Options: []string{"a"}, CorrectAnswer: "a"},
		{QuestionText: "q2", Options: []string{"w", "x", "y", "z"}, CorrectAnswer: "x"},
	}
	got := sanitizeQuestions(raw)
	if len(got) != 2 {
		t.Fatalf("kept %d questions, want 2", len(got))
	}
	if got[0].Prompt != "q1" || got[1].Prompt != "q2" {
		t.Errorf("order not preserved: %+v", got)
	}
}

func TestExtractJSONFromText(t *testing.T) {
	plain := `{"title": "t", "quiz_bank": []}`
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare object", plain, plain},
		{"fenced", "Here you go:\n```json\n" + plain + "\n```\nDone.", plain},
		{"fenced no language", "```\n" + plain + "\n```", plain},
		{"prose only", "I could not generate a quiz.", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := strings.TrimSpace(extractJSONFromText(tc.in))
			if got != tc.want {
				t.Errorf("extractJSONFromText(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
