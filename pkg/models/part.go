package models

import (
	"encoding/json"
	"fmt"
)

// PartType identifies the variant of a message part.
type PartType string

const (
	PartTypeText       PartType = "text"
	PartTypeToolUse    PartType = "tool_use"
	PartTypeToolResult PartType = "tool_result"
)

// Part is one content block of a message: plain text, a tool invocation,
// or a tool result. Parts are immutable values once constructed.
type Part interface {
	// Type returns the discriminator used in the persistence format.
	Type() PartType
	// Wire returns the provider block form (role-less content block).
	Wire() map[string]any
	// Dict returns the persistence form, including the part_type discriminator.
	Dict() map[string]any
}

// TextPart is a plain text block.
type TextPart struct {
	Text string `json:"text"`
}

func (p TextPart) Type() PartType { return PartTypeText }

func (p TextPart) Wire() map[string]any {
	return map[string]any{"type": "text", "text": p.Text}
}

func (p TextPart) Dict() map[string]any {
	return map[string]any{"part_type": string(PartTypeText), "text": p.Text}
}

// ToolUsePart is a tool invocation requested by the assistant.
type ToolUsePart struct {
	ID    string         `json:"tool_id"`
	Name  string         `json:"tool_name"`
	Input map[string]any `json:"tool_input"`
}

func (p ToolUsePart) Type() PartType { return PartTypeToolUse }

func (p ToolUsePart) Wire() map[string]any {
	input := p.Input
	if input == nil {
		input = map[string]any{}
	}
	return map[string]any{"type": "tool_use", "id": p.ID, "name": p.Name, "input": input}
}

func (p ToolUsePart) Dict() map[string]any {
	input := p.Input
	if input == nil {
		input = map[string]any{}
	}
	return map[string]any{
		"part_type":  string(PartTypeToolUse),
		"tool_id":    p.ID,
		"tool_name":  p.Name,
		"tool_input": input,
	}
}

// ToolResultPart carries the outcome of a tool invocation back to the model.
// ToolUseID must reference the ToolUsePart.ID of the immediately preceding
// assistant message. This is never validated eagerly; compaction relies on it
// when choosing a split point.
type ToolResultPart struct {
	ToolUseID string `json:"tool_use_id"`
	Content   string `json:"content"`
	IsError   bool   `json:"is_error"`
}

func (p ToolResultPart) Type() PartType { return PartTypeToolResult }

func (p ToolResultPart) Wire() map[string]any {
	block := map[string]any{
		"type":        "tool_result",
		"tool_use_id": p.ToolUseID,
		"content":     p.Content,
	}
	if p.IsError {
		block["is_error"] = true
	}
	return block
}

func (p ToolResultPart) Dict() map[string]any {
	return map[string]any{
		"part_type":   string(PartTypeToolResult),
		"tool_use_id": p.ToolUseID,
		"content":     p.Content,
		"is_error":    p.IsError,
	}
}

// PartDecoder reconstructs a Part from its persistence dict.
type PartDecoder func(dict map[string]any) (Part, error)

var partDecoders = map[PartType]PartDecoder{
	PartTypeText:       decodeTextPart,
	PartTypeToolUse:    decodeToolUsePart,
	PartTypeToolResult: decodeToolResultPart,
}

// RegisterPartType installs a decoder for a new part variant. Existing
// variants cannot be replaced.
func RegisterPartType(t PartType, decode PartDecoder) error {
	if _, exists := partDecoders[t]; exists {
		return fmt.Errorf("part type %q already registered", t)
	}
	partDecoders[t] = decode
	return nil
}

// PartFromDict reconstructs a Part from the persistence format using the
// part_type discriminator.
func PartFromDict(dict map[string]any) (Part, error) {
	t, _ := dict["part_type"].(string)
	decode, ok := partDecoders[PartType(t)]
	if !ok {
		return nil, fmt.Errorf("unknown part type %q", t)
	}
	return decode(dict)
}

func decodeTextPart(dict map[string]any) (Part, error) {
	text, _ := dict["text"].(string)
	return TextPart{Text: text}, nil
}

func decodeToolUsePart(dict map[string]any) (Part, error) {
	id, _ := dict["tool_id"].(string)
	name, _ := dict["tool_name"].(string)
	input, _ := dict["tool_input"].(map[string]any)
	if input == nil {
		input = map[string]any{}
	}
	return ToolUsePart{ID: id, Name: name, Input: input}, nil
}

func decodeToolResultPart(dict map[string]any) (Part, error) {
	id, _ := dict["tool_use_id"].(string)
	content := stringifyContent(dict["content"])
	isError, _ := dict["is_error"].(bool)
	return ToolResultPart{ToolUseID: id, Content: content, IsError: isError}, nil
}

// PartFromWire converts a single provider content block into a Part. Blocks
// that do not match a known shape degrade to a TextPart wrapping their string
// representation; a malformed block must never abort a turn.
func PartFromWire(block any) Part {
	dict, ok := block.(map[string]any)
	if !ok {
		return TextPart{Text: fmt.Sprintf("%v", block)}
	}
	switch dict["type"] {
	case "text":
		if text, ok := dict["text"].(string); ok {
			return TextPart{Text: text}
		}
	case "tool_use":
		id, idOK := dict["id"].(string)
		name, nameOK := dict["name"].(string)
		if idOK && nameOK {
			input, _ := dict["input"].(map[string]any)
			if input == nil {
				input = map[string]any{}
			}
			return ToolUsePart{ID: id, Name: name, Input: input}
		}
	case "tool_result":
		if id, ok := dict["tool_use_id"].(string); ok {
			isError, _ := dict["is_error"].(bool)
			return ToolResultPart{
				ToolUseID: id,
				Content:   stringifyContent(dict["content"]),
				IsError:   isError,
			}
		}
	}
	return TextPart{Text: fmt.Sprintf("%v", block)}
}

// PartsFromWire converts a provider content list, degrading unknown blocks
// to text.
func PartsFromWire(content any) []Part {
	switch blocks := content.(type) {
	case string:
		return []Part{TextPart{Text: blocks}}
	case []any:
		parts := make([]Part, 0, len(blocks))
		for _, block := range blocks {
			parts = append(parts, PartFromWire(block))
		}
		return parts
	case []map[string]any:
		parts := make([]Part, 0, len(blocks))
		for _, block := range blocks {
			parts = append(parts, PartFromWire(block))
		}
		return parts
	case nil:
		return nil
	default:
		return []Part{TextPart{Text: fmt.Sprintf("%v", content)}}
	}
}

// stringifyContent flattens provider tool-result content, which may arrive as
// a plain string or as a nested block list.
func stringifyContent(content any) string {
	switch v := content.(type) {
	case string:
		return v
	case nil:
		return ""
	case []any:
		out := ""
		for _, block := range v {
			if dict, ok := block.(map[string]any); ok {
				if text, ok := dict["text"].(string); ok {
					out += text
					continue
				}
			}
			out += fmt.Sprintf("%v", block)
		}
		return out
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(data)
	}
}
