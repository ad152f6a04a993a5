package builder

import (
	"context"
	"fmt"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"senseibot/internal/models"
)

// GeminiModelName is the Gemini model used for audits.
const GeminiModelName = "gemini-2.0-flash"

const geminiAuditPrompt = `You are an expert educational agent. Perform an immediate, thorough academic audit on the text provided below.

INSTRUCTIONS:
1. Analyze the input. If it is a direct question (e.g., "What is ATP?"), fill the "educational_answer" field with a concise, factual answer (max 5 sentences) and leave "summary" empty. If the input is a document or notes, fill the "summary" field instead.
2. Identify exactly 5 core concepts.
3. Generate a bank of exactly 20 diverse multiple-choice questions covering the entire input material. Each question must have exactly 4 plausible options and a single correct answer whose text matches one option verbatim.
4. Fill the "critique" field with a short (3-4 sentence) constructive critique of the original text, written in the voice of an experienced but fair university professor, assessing its clarity, jargon, and difficulty for a new student.

Format your response as a JSON object with this structure:
{
  "title": "Concise title of the material",
  "educational_answer": "Answer if the input was a question, otherwise empty",
  "summary": "Summary if the input was notes, otherwise empty",
  "core_concepts": ["term 1", "term 2", "term 3", "term 4", "term 5"],
  "critique": "Professor's critique of the source text",
  "quiz_bank": [
    {
      "question_text": "Question text here?",
      "options": ["Option A", "Option B", "Option C", "Option D"],
      "correct_answer": "Option B"
    }
  ]
}

TEXT TO ANALYZE:
---
%s
---
`

// GeminiBuilder generates audits with the Gemini API.
type GeminiBuilder struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiBuilder creates a Gemini-backed Builder.
func NewGeminiBuilder(ctx context.Context, apiKey string) (*GeminiBuilder, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(GeminiModelName)
	model.ResponseMIMEType = "application/json"
	model.SetTemperature(0.2)
	model.SetTopK(40)
	model.SetTopP(0.95)
	model.SetMaxOutputTokens(8192)

	return &GeminiBuilder{client: client, model: model}, nil
}

// Close releases the underlying client.
func (b *GeminiBuilder) Close() {
	b.client.Close()
}

// Build runs the audit prompt against Gemini, retrying transient failures.
func (b *GeminiBuilder) Build(ctx context.Context, rawText string) (*models.Audit, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Minute)
	defer cancel()

	prompt := genai.Text(fmt.Sprintf(geminiAuditPrompt, rawText))

	var lastErr error
	for attempts := 0; attempts < 3; attempts++ {
		if attempts > 0 {
			time.Sleep(2 * time.Second)
		}

		resp, err := b.model.GenerateContent(ctx, prompt)
		if err != nil {
			lastErr = fmt.Errorf("failed to generate content (attempt %d): %w", attempts+1, err)
			continue
		}

		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil ||
			len(resp.Candidates[0].Content.Parts) == 0 {
			lastErr = fmt.Errorf("no content generated (attempt %d)", attempts+1)
			continue
		}

		var jsonText string
		for _, part := range resp.Candidates[0].Content.Parts {
			if text, ok := part.(genai.Text); ok {
				jsonText += string(text)
			}
		}
		jsonText = extractJSONFromText(jsonText)
		if jsonText == "" {
			lastErr = fmt.Errorf("no JSON content found in response (attempt %d)", attempts+1)
			continue
		}

		audit, err := decodeAudit(jsonText)
		if err != nil {
			lastErr = fmt.Errorf("attempt %d: %w", attempts+1, err)
			continue
		}
		return audit, nil
	}

	return nil, &Error{Provider: "gemini", Err: lastErr}
}
