package builder

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"senseibot/internal/models"
)

const openaiSystemPrompt = "You are an expert educational agent. Given raw study text or a direct question, " +
	"produce a complete academic audit: a title, either a concise educational answer (for questions, max 5 sentences) " +
	"or a summary (for notes), exactly 5 core concepts, a short professor-style critique of the source text, " +
	"and a bank of exactly 20 multiple-choice questions with exactly 4 options each where the correct answer " +
	"matches one option verbatim."

// OpenAIBuilder generates audits with the OpenAI chat-completions API using
// a forced function call so the response is always structured.
type OpenAIBuilder struct {
	client *openai.Client
}

// NewOpenAIBuilder creates an OpenAI-backed Builder.
func NewOpenAIBuilder(apiKey string) *OpenAIBuilder {
	return &OpenAIBuilder{client: openai.NewClient(apiKey)}
}

// Build submits the audit request and parses the tool-call arguments.
func (b *OpenAIBuilder) Build(ctx context.Context, rawText string) (*models.Audit, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Minute)
	defer cancel()

	resp, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: openai.GPT4o,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: openaiSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: rawText},
		},
		Tools: []openai.Tool{
			{
				Type: openai.ToolTypeFunction,
				Function: &openai.FunctionDefinition{
					Name:        "submit_audit",
					Description: "Submit the completed academic audit",
					Parameters:  auditToolSchema(),
				},
			},
		},
		ToolChoice: openai.ToolChoice{
			Type:     openai.ToolTypeFunction,
			Function: openai.ToolFunction{Name: "submit_audit"},
		},
	})
	if err != nil {
		return nil, &Error{Provider: "openai", Err: fmt.Errorf("chat completion failed: %w", err)}
	}

	if len(resp.Choices) == 0 {
		return nil, &Error{Provider: "openai", Err: fmt.Errorf("no choices in response")}
	}
	choice := resp.Choices[0]
	if len(choice.Message.ToolCalls) == 0 {
		return nil, &Error{Provider: "openai", Err: fmt.Errorf("no tool calls in response")}
	}
	toolCall := choice.Message.ToolCalls[0]
	if toolCall.Function.Name != "submit_audit" {
		return nil, &Error{Provider: "openai", Err: fmt.Errorf("unexpected tool call %q", toolCall.Function.Name)}
	}

	var raw models.BuilderAudit
	if err := json.Unmarshal([]byte(toolCall.Function.Arguments), &raw); err != nil {
		return nil, &Error{Provider: "openai", Err: fmt.Errorf("failed to parse tool arguments: %w", err)}
	}

	return auditFromRaw(raw), nil
}

func auditToolSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"title": map[string]interface{}{
				"type":        "string",
				"description": "Concise title of the material",
			},
			"educational_answer": map[string]interface{}{
				"type":        "string",
				"description": "Concise answer when the input is a direct question, otherwise empty",
			},
			"summary": map[string]interface{}{
				"type":        "string",
				"description": "Summary when the input is notes or a document, otherwise empty",
			},
			"core_concepts": map[string]interface{}{
				"type":        "array",
				"items":       map[string]interface{}{"type": "string"},
				"description": "Exactly 5 critical technical or academic terms",
			},
			"critique": map[string]interface{}{
				"type":        "string",
				"description": "Short professor-style critique of the source text",
			},
			"quiz_bank": map[string]interface{}{
				"type": "array",
				"items": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"question_text": map[string]interface{}{
							"type":        "string",
							"description": "The full question text",
						},
						"options": map[string]interface{}{
							"type":        "array",
							"items":       map[string]interface{}{"type": "string"},
							"description": "Exactly 4 plausible answer options",
						},
						"correct_answer": map[string]interface{}{
							"type":        "string",
							"description": "The correct answer text, matching one option verbatim",
						},
					},
					"required": []string{"question_text", "options", "correct_answer"},
				},
				"description": "Exactly 20 multiple-choice questions",
			},
		},
		"required": []string{"title", "core_concepts", "quiz_bank"},
	}
}
