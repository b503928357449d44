package agent

import (
	"sync"
	"time"
)

// State is the current phase of the turn loop.
type State string

const (
	StateIdle               State = "idle"
	StateReceivingInput     State = "receiving_input"
	StateCallingLLM         State = "calling_llm"
	StateProcessingResponse State = "processing_response"
	StateExecutingTools     State = "executing_tools"
	StateCheckingContext    State = "checking_context"
	StateCompleted          State = "completed"
	StateError              State = "error"
)

// TerminationReason records why a run ended.
type TerminationReason string

const (
	TerminationEndTurn       TerminationReason = "end_turn"
	TerminationMaxTurns      TerminationReason = "max_turns"
	TerminationStopReason    TerminationReason = "stop_reason"
	TerminationUserInterrupt TerminationReason = "user_interrupt"
	TerminationError         TerminationReason = "error"
	TerminationToolStop      TerminationReason = "tool_stop"
)

// stateChange is one entry in the loop's state history.
type stateChange struct {
	At    time.Time
	State State
}

// LoopContext tracks the execution state and statistics of one run.
// It is reset at the start of every Run call and read by callers only
// after Run returns.
type LoopContext struct {
	mu sync.Mutex

	State             State
	TerminationReason TerminationReason

	CurrentTurn int
	MaxTurns    int

	LastError error

	TotalToolCalls int
	TotalLLMCalls  int
	StartTime      time.Time
	EndTime        time.Time

	history []stateChange
}

// NewLoopContext creates an idle context with the given turn budget.
func NewLoopContext(maxTurns int) *LoopContext {
	return &LoopContext{State: StateIdle, MaxTurns: maxTurns}
}

// Reset returns the context to its initial idle state, keeping MaxTurns.
func (c *LoopContext) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.State = StateIdle
	c.TerminationReason = ""
	c.CurrentTurn = 0
	c.LastError = nil
	c.TotalToolCalls = 0
	c.TotalLLMCalls = 0
	c.StartTime = time.Time{}
	c.EndTime = time.Time{}
	c.history = nil
}

// RecordState transitions to a new state, keeping a timestamped history
// for debugging.
func (c *LoopContext) RecordState(state State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history = append(c.history, stateChange{At: time.Now(), State: state})
	c.State = state
}

// IsRunning reports whether the loop is mid-run.
func (c *LoopContext) IsRunning() bool {
	switch c.State {
	case StateIdle, StateCompleted, StateError:
		return false
	default:
		return true
	}
}

// IsFinished reports whether the loop has reached a terminal state.
func (c *LoopContext) IsFinished() bool {
	return c.State == StateCompleted || c.State == StateError
}

// Duration returns the elapsed run time, using now if the run has not
// finished. Zero if the run never started.
func (c *LoopContext) Duration() time.Duration {
	if c.StartTime.IsZero() {
		return 0
	}
	end := c.EndTime
	if end.IsZero() {
		end = time.Now()
	}
	return end.Sub(c.StartTime)
}

// Snapshot returns a loggable view of the context.
func (c *LoopContext) Snapshot() map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return map[string]any{
		"state":              string(c.State),
		"termination_reason": string(c.TerminationReason),
		"current_turn":       c.CurrentTurn,
		"max_turns":          c.MaxTurns,
		"total_tool_calls":   c.TotalToolCalls,
		"total_llm_calls":    c.TotalLLMCalls,
		"duration_ms":        c.Duration().Milliseconds(),
		"has_error":          c.LastError != nil,
	}
}
