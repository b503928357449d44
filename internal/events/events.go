// Package events provides a synchronous in-process event bus used to observe
// the agent loop without the loop depending on its observers.
package events

import "time"

// Event is implemented by every event published on the Bus.
type Event interface {
	EventType() string
	Timestamp() time.Time
}

// Base carries the fields shared by all events. Embed it and set Type at
// construction via the New* helpers.
type Base struct {
	At time.Time
}

func (b Base) Timestamp() time.Time { return b.At }

// Now stamps a Base for event construction.
func Now() Base { return Base{At: time.Now()} }

// LoopStarted is published when a run begins.
type LoopStarted struct {
	Base
	SessionID   string
	UserMessage string
}

func (LoopStarted) EventType() string { return "loop_started" }

// LoopCompleted is published when a run finishes, whatever the outcome.
type LoopCompleted struct {
	Base
	SessionID         string
	TerminationReason string
	TotalTurns        int
	Duration          time.Duration
}

func (LoopCompleted) EventType() string { return "loop_completed" }

// TurnStarted is published at the top of each turn.
type TurnStarted struct {
	Base
	Turn     int
	MaxTurns int
}

func (TurnStarted) EventType() string { return "turn_started" }

// TurnCompleted is published after a turn's tool executions finish.
type TurnCompleted struct {
	Base
	Turn      int
	ToolCalls int
}

func (TurnCompleted) EventType() string { return "turn_completed" }

// StateChanged is published on every loop state transition.
type StateChanged struct {
	Base
	OldState string
	NewState string
}

func (StateChanged) EventType() string { return "state_changed" }

// LLMRequest is published just before a provider call.
type LLMRequest struct {
	Base
	MessageCount int
	HasTools     bool
}

func (LLMRequest) EventType() string { return "llm_request" }

// LLMResponse is published after a provider call returns.
type LLMResponse struct {
	Base
	StopReason   string
	HasToolUse   bool
	InputTokens  int
	OutputTokens int
	Duration     time.Duration
}

func (LLMResponse) EventType() string { return "llm_response" }

// ToolExecutionStarted is published before a tool runs.
type ToolExecutionStarted struct {
	Base
	ToolName string
	Input    map[string]any
}

func (ToolExecutionStarted) EventType() string { return "tool_execution_started" }

// ToolExecutionCompleted is published after a tool finishes.
type ToolExecutionCompleted struct {
	Base
	ToolName      string
	Success       bool
	Duration      time.Duration
	OutputPreview string
}

func (ToolExecutionCompleted) EventType() string { return "tool_execution_completed" }

// ToolApprovalRequested is published when a tool call needs user approval.
type ToolApprovalRequested struct {
	Base
	ToolName    string
	Description string
}

func (ToolApprovalRequested) EventType() string { return "tool_approval_requested" }

// ToolApprovalResult is published with the outcome of an approval request.
type ToolApprovalResult struct {
	Base
	ToolName string
	Approved bool
}

func (ToolApprovalResult) EventType() string { return "tool_approval_result" }

// MessageAdded is published when the loop appends a message to the session.
type MessageAdded struct {
	Base
	Role      string
	PartCount int
}

func (MessageAdded) EventType() string { return "message_added" }

// ContextCompaction is published after a compaction cycle completes.
type ContextCompaction struct {
	Base
	TokensBefore    int
	TokensAfter     int
	MessagesRemoved int
}

func (ContextCompaction) EventType() string { return "context_compaction" }
