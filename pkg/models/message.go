package models

import "strings"

// Role indicates the message author.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one conversation entry: a role plus an ordered sequence of
// parts. A message is owned by the Session that contains it and is not
// mutated after construction except by Append during incremental build-up.
type Message struct {
	Role  Role
	Parts []Part
}

// NewTextMessage builds a single-text-part message.
func NewTextMessage(role Role, text string) *Message {
	return &Message{Role: role, Parts: []Part{TextPart{Text: text}}}
}

// Append adds a part to the message.
func (m *Message) Append(p Part) {
	m.Parts = append(m.Parts, p)
}

// Text concatenates all text parts with newlines.
func (m *Message) Text() string {
	var texts []string
	for _, p := range m.Parts {
		if t, ok := p.(TextPart); ok {
			texts = append(texts, t.Text)
		}
	}
	return strings.Join(texts, "\n")
}

// ToolUses returns the tool invocation parts in order.
func (m *Message) ToolUses() []ToolUsePart {
	var uses []ToolUsePart
	for _, p := range m.Parts {
		if u, ok := p.(ToolUsePart); ok {
			uses = append(uses, u)
		}
	}
	return uses
}

// HasToolResult reports whether any part is a tool result. Compaction uses
// this to keep tool invocation and result messages on the same side of a
// split point.
func (m *Message) HasToolResult() bool {
	for _, p := range m.Parts {
		if _, ok := p.(ToolResultPart); ok {
			return true
		}
	}
	return false
}

// WireMessage is the provider request form of a message: a role and an
// ordered list of content blocks.
type WireMessage struct {
	Role    string           `json:"role"`
	Content []map[string]any `json:"content"`
}

// Wire converts the message to provider form.
func (m *Message) Wire() WireMessage {
	content := make([]map[string]any, 0, len(m.Parts))
	for _, p := range m.Parts {
		content = append(content, p.Wire())
	}
	return WireMessage{Role: string(m.Role), Content: content}
}

// Dict converts the message to the persistence format.
func (m *Message) Dict() map[string]any {
	parts := make([]any, 0, len(m.Parts))
	for _, p := range m.Parts {
		parts = append(parts, p.Dict())
	}
	return map[string]any{"role": string(m.Role), "parts": parts}
}

// MessageFromDict reconstructs a message from the persistence format. Parts
// with an unknown discriminator are dropped rather than failing the whole
// message.
func MessageFromDict(dict map[string]any) *Message {
	role, _ := dict["role"].(string)
	msg := &Message{Role: Role(role)}
	rawParts, _ := dict["parts"].([]any)
	for _, raw := range rawParts {
		partDict, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		part, err := PartFromDict(partDict)
		if err != nil {
			continue
		}
		msg.Append(part)
	}
	return msg
}

// MessageFromWire reconstructs a message from provider form, degrading
// unknown blocks to text.
func MessageFromWire(wire WireMessage) *Message {
	msg := &Message{Role: Role(wire.Role)}
	for _, block := range wire.Content {
		msg.Append(PartFromWire(block))
	}
	return msg
}
