package providers

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/devbv/not-agent/internal/tools"
	"github.com/devbv/not-agent/pkg/models"
)

// DefaultOpenAIModel is used when no model is configured.
const DefaultOpenAIModel = "gpt-4o"

// OpenAIProvider implements Provider on the OpenAI chat completions
// API. Tool calls map to function calling; tool results become
// separate "tool" role messages as the API requires.
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

// NewOpenAIProvider creates a provider for the given key and model.
// An empty baseURL uses the SDK default endpoint.
func NewOpenAIProvider(apiKey, baseURL, model string) *OpenAIProvider {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAIProvider{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (p *OpenAIProvider) Name() string { return "openai" }

func (p *OpenAIProvider) Model() string { return p.model }

// Chat sends the conversation and returns the parsed assistant turn.
func (p *OpenAIProvider) Chat(ctx context.Context, req *Request) (*Response, error) {
	chatReq := openai.ChatCompletionRequest{
		Model:    p.model,
		Messages: convertOpenAIMessages(req.Messages, req.System),
	}

	if req.MaxTokens > 0 {
		chatReq.MaxTokens = req.MaxTokens
	}
	if len(req.Tools) > 0 {
		chatReq.Tools = convertOpenAITools(req.Tools)
	}
	switch req.ForceTool {
	case "":
	case ForceAnyTool:
		chatReq.ToolChoice = "required"
	default:
		chatReq.ToolChoice = openai.ToolChoice{
			Type:     openai.ToolTypeFunction,
			Function: openai.ToolFunction{Name: req.ForceTool},
		}
	}

	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, p.wrapError(err)
	}

	return parseOpenAIResponse(&resp), nil
}

// convertOpenAIMessages flattens session messages into the OpenAI
// format. The system prompt becomes the first message. Tool results
// each become their own "tool" role message, in part order, so they
// directly follow the assistant message that requested them.
func convertOpenAIMessages(messages []*models.Message, system string) []openai.ChatCompletionMessage {
	result := make([]openai.ChatCompletionMessage, 0, len(messages)+1)

	if system != "" {
		result = append(result, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}

	for _, msg := range messages {
		switch msg.Role {
		case models.RoleAssistant:
			oaiMsg := openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleAssistant,
				Content: msg.Text(),
			}
			for _, use := range msg.ToolUses() {
				args, err := json.Marshal(use.Input)
				if err != nil {
					args = []byte("{}")
				}
				oaiMsg.ToolCalls = append(oaiMsg.ToolCalls, openai.ToolCall{
					ID:   use.ID,
					Type: openai.ToolTypeFunction,
					Function: openai.FunctionCall{
						Name:      use.Name,
						Arguments: string(args),
					},
				})
			}
			result = append(result, oaiMsg)

		default:
			var texts []string
			for _, part := range msg.Parts {
				switch part := part.(type) {
				case models.TextPart:
					texts = append(texts, part.Text)
				case models.ToolResultPart:
					result = append(result, openai.ChatCompletionMessage{
						Role:       openai.ChatMessageRoleTool,
						Content:    part.Content,
						ToolCallID: part.ToolUseID,
					})
				}
			}
			if len(texts) > 0 {
				result = append(result, openai.ChatCompletionMessage{
					Role:    openai.ChatMessageRoleUser,
					Content: strings.Join(texts, "\n"),
				})
			}
		}
	}

	return result
}

func convertOpenAITools(defs []tools.Definition) []openai.Tool {
	result := make([]openai.Tool, len(defs))
	for i, def := range defs {
		result[i] = openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        def.Name,
				Description: def.Description,
				Parameters:  def.InputSchema,
			},
		}
	}
	return result
}

func parseOpenAIResponse(resp *openai.ChatCompletionResponse) *Response {
	out := &Response{
		StopReason: StopEndTurn,
		Usage: Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		},
	}

	if len(resp.Choices) == 0 {
		return out
	}
	choice := resp.Choices[0]

	if choice.Message.Content != "" {
		out.Parts = append(out.Parts, models.TextPart{Text: choice.Message.Content})
	}
	for _, call := range choice.Message.ToolCalls {
		var input map[string]any
		if err := json.Unmarshal([]byte(call.Function.Arguments), &input); err != nil {
			input = map[string]any{"raw": call.Function.Arguments}
		}
		out.Parts = append(out.Parts, models.ToolUsePart{
			ID:    call.ID,
			Name:  call.Function.Name,
			Input: input,
		})
	}

	switch choice.FinishReason {
	case openai.FinishReasonStop:
		out.StopReason = StopEndTurn
	case openai.FinishReasonToolCalls:
		out.StopReason = StopToolUse
	case openai.FinishReasonLength:
		out.StopReason = StopMaxTokens
	default:
		out.StopReason = string(choice.FinishReason)
	}

	return out
}

func (p *OpenAIProvider) wrapError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		providerErr := &ProviderError{
			Provider: p.Name(),
			Model:    p.model,
			Cause:    err,
			Kind:     KindUnknown,
		}
		providerErr = providerErr.WithStatus(apiErr.HTTPStatusCode)
		if apiErr.Message != "" {
			providerErr = providerErr.WithMessage(apiErr.Message)
		} else {
			providerErr.Message = "openai request failed"
		}
		if apiErr.Type != "" {
			providerErr = providerErr.WithCode(apiErr.Type)
		}
		return providerErr
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return NewProviderError(p.Name(), p.model, err).WithStatus(reqErr.HTTPStatusCode)
	}

	return NewProviderError(p.Name(), p.model, err)
}
