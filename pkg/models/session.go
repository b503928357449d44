package models

import "github.com/google/uuid"

// Session is the ordered message history for one conversation. It owns its
// messages: history grows by append through the turn loop and is only ever
// shrunk by whole-list replacement during compaction or by Clear. A session
// is confined to one logical conversation and has a single writer.
type Session struct {
	ID       string
	Messages []*Message
}

// NewSession creates an empty session with a fresh id.
func NewSession() *Session {
	return &Session{ID: uuid.NewString()}
}

// Len returns the number of messages.
func (s *Session) Len() int { return len(s.Messages) }

// AddUserMessage appends a plain-text user message.
func (s *Session) AddUserMessage(text string) *Message {
	msg := NewTextMessage(RoleUser, text)
	s.Messages = append(s.Messages, msg)
	return msg
}

// AddAssistantMessage appends an assistant message built from the given
// parts.
func (s *Session) AddAssistantMessage(parts []Part) *Message {
	msg := &Message{Role: RoleAssistant, Parts: parts}
	s.Messages = append(s.Messages, msg)
	return msg
}

// AddToolResults appends all tool results for one turn as a single user
// message. The provider pairs one assistant message's invocations with one
// following user message's results, so results are never split across
// messages.
func (s *Session) AddToolResults(results []ToolResultPart) *Message {
	msg := &Message{Role: RoleUser}
	for _, r := range results {
		msg.Append(r)
	}
	s.Messages = append(s.Messages, msg)
	return msg
}

// Wire serializes the whole session to provider form.
func (s *Session) Wire() []WireMessage {
	wire := make([]WireMessage, 0, len(s.Messages))
	for _, m := range s.Messages {
		wire = append(wire, m.Wire())
	}
	return wire
}

// SetMessages replaces the message list in place, keeping the session id.
// Compaction is the only caller.
func (s *Session) SetMessages(messages []*Message) {
	s.Messages = messages
}

// ReplaceFromWire parses a full provider-form message list back into typed
// messages and replaces the history with it.
func (s *Session) ReplaceFromWire(wire []WireMessage) {
	messages := make([]*Message, 0, len(wire))
	for _, w := range wire {
		messages = append(messages, MessageFromWire(w))
	}
	s.Messages = messages
}

// Clear resets the session: new id, empty history.
func (s *Session) Clear() {
	s.ID = uuid.NewString()
	s.Messages = nil
}

// Dict converts the session to the persistence format.
func (s *Session) Dict() map[string]any {
	messages := make([]any, 0, len(s.Messages))
	for _, m := range s.Messages {
		messages = append(messages, m.Dict())
	}
	return map[string]any{"id": s.ID, "messages": messages}
}

// SessionFromDict reconstructs a session from the persistence format.
func SessionFromDict(dict map[string]any) *Session {
	s := &Session{}
	s.ID, _ = dict["id"].(string)
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	rawMessages, _ := dict["messages"].([]any)
	for _, raw := range rawMessages {
		msgDict, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		s.Messages = append(s.Messages, MessageFromDict(msgDict))
	}
	return s
}
