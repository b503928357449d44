package providers

import (
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"github.com/devbv/not-agent/pkg/models"
)

func TestConvertOpenAIMessages(t *testing.T) {
	messages := []*models.Message{
		models.NewTextMessage(models.RoleUser, "hello"),
		{
			Role: models.RoleAssistant,
			Parts: []models.Part{
				models.TextPart{Text: "checking"},
				models.ToolUsePart{ID: "tu_1", Name: "read", Input: map[string]any{"file_path": "/tmp/a"}},
			},
		},
		{
			Role: models.RoleUser,
			Parts: []models.Part{
				models.ToolResultPart{ToolUseID: "tu_1", Content: "data"},
			},
		},
	}

	converted := convertOpenAIMessages(messages, "be helpful")
	if len(converted) != 4 {
		t.Fatalf("len = %d, want 4", len(converted))
	}

	if converted[0].Role != openai.ChatMessageRoleSystem || converted[0].Content != "be helpful" {
		t.Errorf("messages[0] = %+v", converted[0])
	}
	if converted[1].Role != openai.ChatMessageRoleUser || converted[1].Content != "hello" {
		t.Errorf("messages[1] = %+v", converted[1])
	}

	assistant := converted[2]
	if assistant.Role != openai.ChatMessageRoleAssistant || assistant.Content != "checking" {
		t.Errorf("messages[2] = %+v", assistant)
	}
	if len(assistant.ToolCalls) != 1 {
		t.Fatalf("tool calls = %d, want 1", len(assistant.ToolCalls))
	}
	call := assistant.ToolCalls[0]
	if call.ID != "tu_1" || call.Function.Name != "read" {
		t.Errorf("tool call = %+v", call)
	}
	if call.Function.Arguments != `{"file_path":"/tmp/a"}` {
		t.Errorf("arguments = %s", call.Function.Arguments)
	}

	result := converted[3]
	if result.Role != openai.ChatMessageRoleTool || result.ToolCallID != "tu_1" || result.Content != "data" {
		t.Errorf("messages[3] = %+v", result)
	}
}

func TestParseOpenAIResponseText(t *testing.T) {
	resp := &openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{
				Message:      openai.ChatCompletionMessage{Content: "done"},
				FinishReason: openai.FinishReasonStop,
			},
		},
		Usage: openai.Usage{PromptTokens: 10, CompletionTokens: 5},
	}

	parsed := parseOpenAIResponse(resp)
	if parsed.StopReason != StopEndTurn {
		t.Errorf("StopReason = %s, want %s", parsed.StopReason, StopEndTurn)
	}
	if parsed.Text() != "done" {
		t.Errorf("Text = %q", parsed.Text())
	}
	if parsed.Usage.InputTokens != 10 || parsed.Usage.OutputTokens != 5 {
		t.Errorf("Usage = %+v", parsed.Usage)
	}
}

func TestParseOpenAIResponseToolCalls(t *testing.T) {
	resp := &openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{
				Message: openai.ChatCompletionMessage{
					ToolCalls: []openai.ToolCall{
						{
							ID:   "call_1",
							Type: openai.ToolTypeFunction,
							Function: openai.FunctionCall{
								Name:      "bash",
								Arguments: `{"command":"ls"}`,
							},
						},
					},
				},
				FinishReason: openai.FinishReasonToolCalls,
			},
		},
	}

	parsed := parseOpenAIResponse(resp)
	if parsed.StopReason != StopToolUse {
		t.Errorf("StopReason = %s, want %s", parsed.StopReason, StopToolUse)
	}

	uses := parsed.ToolUses()
	if len(uses) != 1 {
		t.Fatalf("tool uses = %d, want 1", len(uses))
	}
	if uses[0].ID != "call_1" || uses[0].Name != "bash" {
		t.Errorf("tool use = %+v", uses[0])
	}
	if uses[0].Input["command"] != "ls" {
		t.Errorf("input = %v", uses[0].Input)
	}
}

func TestParseOpenAIResponseBadArguments(t *testing.T) {
	resp := &openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{
				Message: openai.ChatCompletionMessage{
					ToolCalls: []openai.ToolCall{
						{
							ID:       "call_1",
							Function: openai.FunctionCall{Name: "bash", Arguments: "not json"},
						},
					},
				},
				FinishReason: openai.FinishReasonToolCalls,
			},
		},
	}

	parsed := parseOpenAIResponse(resp)
	uses := parsed.ToolUses()
	if len(uses) != 1 {
		t.Fatalf("tool uses = %d, want 1", len(uses))
	}
	if uses[0].Input["raw"] != "not json" {
		t.Errorf("expected raw fallback, got %v", uses[0].Input)
	}
}

func TestParseOpenAIResponseLength(t *testing.T) {
	resp := &openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{
				Message:      openai.ChatCompletionMessage{Content: "partial"},
				FinishReason: openai.FinishReasonLength,
			},
		},
	}

	if got := parseOpenAIResponse(resp).StopReason; got != StopMaxTokens {
		t.Errorf("StopReason = %s, want %s", got, StopMaxTokens)
	}
}
