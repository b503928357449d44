// Package providers contains the LLM backends the turn loop talks to.
// Each backend converts session messages to its wire format, issues a
// single non-streaming chat request, and converts the response back
// into message parts. Failures are wrapped as ProviderError so callers
// can distinguish rate limiting from other API failures.
package providers

import (
	"context"
	"fmt"

	"github.com/devbv/not-agent/internal/tools"
	"github.com/devbv/not-agent/pkg/models"
)

// Stop reasons reported by Chat, normalized across backends.
const (
	StopEndTurn   = "end_turn"
	StopToolUse   = "tool_use"
	StopMaxTokens = "max_tokens"
)

// ForceAnyTool is the Request.ForceTool value that forces the model to
// call some tool without naming which one.
const ForceAnyTool = "any"

// Request is a single chat completion request.
type Request struct {
	// System is the system prompt. Sent out of band where the API
	// supports it, injected as the first message otherwise.
	System string

	// Messages is the full conversation history in order.
	Messages []*models.Message

	// Tools are the tool definitions exposed to the model.
	Tools []tools.Definition

	// MaxTokens caps the completion length.
	MaxTokens int

	// ForceTool, when non-empty, forces tool use in this response:
	// ForceAnyTool for any tool, or a specific tool name.
	ForceTool string
}

// Usage reports token consumption for one request.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Response is the parsed result of one chat completion.
type Response struct {
	// Parts are the assistant content blocks in response order.
	Parts []models.Part

	// StopReason is why the model stopped, normalized to the Stop*
	// constants where possible and passed through raw otherwise.
	StopReason string

	Usage Usage
}

// Text concatenates the text parts of the response.
func (r *Response) Text() string {
	var out string
	for _, part := range r.Parts {
		if text, ok := part.(models.TextPart); ok {
			out += text.Text
		}
	}
	return out
}

// ToolUses returns the tool-use parts of the response in order.
func (r *Response) ToolUses() []models.ToolUsePart {
	var uses []models.ToolUsePart
	for _, part := range r.Parts {
		if use, ok := part.(models.ToolUsePart); ok {
			uses = append(uses, use)
		}
	}
	return uses
}

// Provider is a chat completion backend.
type Provider interface {
	// Name returns the provider identifier used in config and logs.
	Name() string

	// Model returns the model this provider instance targets.
	Model() string

	// Chat issues a single non-streaming completion request.
	Chat(ctx context.Context, req *Request) (*Response, error)
}

// Options configures provider construction.
type Options struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
}

// New builds a provider from configuration. The provider name selects
// the backend; "claude" and "anthropic" are synonyms.
func New(opts Options) (Provider, error) {
	switch opts.Provider {
	case "claude", "anthropic", "":
		return NewAnthropicProvider(opts.APIKey, opts.BaseURL, opts.Model), nil
	case "openai":
		return NewOpenAIProvider(opts.APIKey, opts.BaseURL, opts.Model), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", opts.Provider)
	}
}
