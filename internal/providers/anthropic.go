package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/devbv/not-agent/internal/tools"
	"github.com/devbv/not-agent/pkg/models"
)

// DefaultAnthropicModel is used when no model is configured.
const DefaultAnthropicModel = "claude-sonnet-4-20250514"

// AnthropicProvider implements Provider on the Anthropic Messages API.
// Requests are non-streaming: one call, one complete response.
type AnthropicProvider struct {
	client anthropic.Client
	model  string
}

// NewAnthropicProvider creates a provider for the given key and model.
// An empty baseURL uses the SDK default endpoint.
func NewAnthropicProvider(apiKey, baseURL, model string) *AnthropicProvider {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if model == "" {
		model = DefaultAnthropicModel
	}
	return &AnthropicProvider{
		client: anthropic.NewClient(opts...),
		model:  model,
	}
}

func (p *AnthropicProvider) Name() string { return "claude" }

func (p *AnthropicProvider) Model() string { return p.model }

// Chat sends the conversation and returns the parsed assistant turn.
func (p *AnthropicProvider) Chat(ctx context.Context, req *Request) (*Response, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		Messages:  convertMessages(req.Messages),
		MaxTokens: int64(req.MaxTokens),
	}

	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	if len(req.Tools) > 0 {
		converted, err := convertTools(req.Tools)
		if err != nil {
			return nil, NewProviderError(p.Name(), p.model, err)
		}
		params.Tools = converted
	}

	switch req.ForceTool {
	case "":
	case ForceAnyTool:
		params.ToolChoice = anthropic.ToolChoiceUnionParam{
			OfAny: &anthropic.ToolChoiceAnyParam{},
		}
	default:
		params.ToolChoice = anthropic.ToolChoiceUnionParam{
			OfTool: &anthropic.ToolChoiceToolParam{Name: req.ForceTool},
		}
	}

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, p.wrapError(err)
	}

	return parseAnthropicResponse(resp), nil
}

// convertMessages translates session messages into Anthropic content
// blocks. Messages that end up with no blocks are dropped.
func convertMessages(messages []*models.Message) []anthropic.MessageParam {
	var result []anthropic.MessageParam

	for _, msg := range messages {
		var blocks []anthropic.ContentBlockParamUnion

		for _, part := range msg.Parts {
			switch part := part.(type) {
			case models.TextPart:
				if part.Text != "" {
					blocks = append(blocks, anthropic.NewTextBlock(part.Text))
				}
			case models.ToolUsePart:
				input := part.Input
				if input == nil {
					input = map[string]any{}
				}
				blocks = append(blocks, anthropic.NewToolUseBlock(part.ID, input, part.Name))
			case models.ToolResultPart:
				blocks = append(blocks, anthropic.NewToolResultBlock(part.ToolUseID, part.Content, part.IsError))
			}
		}

		if len(blocks) == 0 {
			continue
		}

		switch msg.Role {
		case models.RoleAssistant:
			result = append(result, anthropic.NewAssistantMessage(blocks...))
		default:
			result = append(result, anthropic.NewUserMessage(blocks...))
		}
	}

	return result
}

func convertTools(defs []tools.Definition) ([]anthropic.ToolUnionParam, error) {
	var result []anthropic.ToolUnionParam

	for _, def := range defs {
		raw, err := json.Marshal(def.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("invalid tool schema for %s: %w", def.Name, err)
		}

		var schema anthropic.ToolInputSchemaParam
		if err := json.Unmarshal(raw, &schema); err != nil {
			return nil, fmt.Errorf("invalid tool schema for %s: %w", def.Name, err)
		}

		toolParam := anthropic.ToolUnionParamOfTool(schema, def.Name)
		if toolParam.OfTool != nil && def.Description != "" {
			toolParam.OfTool.Description = anthropic.String(def.Description)
		}
		result = append(result, toolParam)
	}

	return result, nil
}

func parseAnthropicResponse(resp *anthropic.Message) *Response {
	var parts []models.Part

	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			parts = append(parts, models.TextPart{Text: block.AsText().Text})
		case "tool_use":
			toolUse := block.AsToolUse()
			var input map[string]any
			if err := json.Unmarshal(toolUse.Input, &input); err != nil {
				input = map[string]any{"raw": string(toolUse.Input)}
			}
			parts = append(parts, models.ToolUsePart{
				ID:    toolUse.ID,
				Name:  toolUse.Name,
				Input: input,
			})
		default:
			// Unrecognized block kinds degrade to text instead of
			// failing the turn.
			var wire map[string]any
			if err := json.Unmarshal([]byte(block.RawJSON()), &wire); err != nil {
				parts = append(parts, models.TextPart{Text: block.RawJSON()})
				continue
			}
			parts = append(parts, models.PartFromWire(wire))
		}
	}

	return &Response{
		Parts:      parts,
		StopReason: string(resp.StopReason),
		Usage: Usage{
			InputTokens:  int(resp.Usage.InputTokens),
			OutputTokens: int(resp.Usage.OutputTokens),
		},
	}
}

type anthropicErrorPayload struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
	RequestID string `json:"request_id"`
}

func (p *AnthropicProvider) wrapError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		providerErr := &ProviderError{
			Provider: p.Name(),
			Model:    p.model,
			Cause:    err,
			Kind:     KindUnknown,
		}
		providerErr = providerErr.WithStatus(apiErr.StatusCode)

		message := ""
		code := ""
		requestID := apiErr.RequestID

		if raw := apiErr.RawJSON(); raw != "" {
			var payload anthropicErrorPayload
			if json.Unmarshal([]byte(raw), &payload) == nil {
				message = payload.Error.Message
				code = payload.Error.Type
				if payload.RequestID != "" {
					requestID = payload.RequestID
				}
			}
		}

		if message != "" {
			providerErr = providerErr.WithMessage(message)
		} else {
			providerErr.Message = "anthropic request failed"
		}
		if code != "" {
			providerErr = providerErr.WithCode(code)
		}
		if requestID != "" {
			providerErr = providerErr.WithRequestID(requestID)
		}
		return providerErr
	}

	return NewProviderError(p.Name(), p.model, err)
}
