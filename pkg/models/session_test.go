package models

import (
	"reflect"
	"testing"
)

func TestSessionAppendOrder(t *testing.T) {
	s := NewSession()
	if s.ID == "" {
		t.Fatal("new session must have an id")
	}
	s.AddUserMessage("hello")
	s.AddAssistantMessage([]Part{TextPart{Text: "hi"}})
	if s.Len() != 2 {
		t.Fatalf("Len() = %d", s.Len())
	}
	if s.Messages[0].Role != RoleUser || s.Messages[1].Role != RoleAssistant {
		t.Errorf("roles = %v, %v", s.Messages[0].Role, s.Messages[1].Role)
	}
}

func TestAddToolResultsSingleMessage(t *testing.T) {
	s := NewSession()
	msg := s.AddToolResults([]ToolResultPart{
		{ToolUseID: "a", Content: "one"},
		{ToolUseID: "b", Content: "two", IsError: true},
	})
	if s.Len() != 1 {
		t.Fatalf("tool results must land in one message, got %d", s.Len())
	}
	if msg.Role != RoleUser {
		t.Errorf("role = %v, want user", msg.Role)
	}
	if len(msg.Parts) != 2 {
		t.Errorf("parts = %d, want 2", len(msg.Parts))
	}
}

func TestSessionClear(t *testing.T) {
	s := NewSession()
	s.AddUserMessage("hello")
	oldID := s.ID
	s.Clear()
	if s.Len() != 0 {
		t.Errorf("Len() after Clear = %d", s.Len())
	}
	if s.ID == oldID {
		t.Error("Clear must assign a new id")
	}
}

func TestSessionDictRoundTrip(t *testing.T) {
	s := NewSession()
	s.AddUserMessage("do the thing")
	s.AddAssistantMessage([]Part{
		ToolUsePart{ID: "tu_1", Name: "bash", Input: map[string]any{"command": "ls"}},
	})
	s.AddToolResults([]ToolResultPart{{ToolUseID: "tu_1", Content: "a.txt"}})

	got := SessionFromDict(s.Dict())
	if got.ID != s.ID {
		t.Errorf("id = %q, want %q", got.ID, s.ID)
	}
	if !reflect.DeepEqual(got.Messages, s.Messages) {
		t.Errorf("messages differ:\ngot  %#v\nwant %#v", got.Messages, s.Messages)
	}
}

func TestReplaceFromWire(t *testing.T) {
	s := NewSession()
	s.AddUserMessage("old history")
	oldID := s.ID

	s.ReplaceFromWire([]WireMessage{
		{Role: "user", Content: []map[string]any{{"type": "text", "text": "summary"}}},
		{Role: "assistant", Content: []map[string]any{{"type": "text", "text": "recent"}}},
	})

	if s.ID != oldID {
		t.Error("replacement must keep the session id")
	}
	if s.Len() != 2 {
		t.Fatalf("Len() = %d", s.Len())
	}
	if s.Messages[0].Text() != "summary" {
		t.Errorf("first message = %q", s.Messages[0].Text())
	}
}
