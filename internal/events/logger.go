package events

import "log/slog"

// Logger subscribes to a Bus and renders events through slog. In verbose
// mode every event is logged; otherwise only the key lifecycle events.
type Logger struct {
	logger  *slog.Logger
	verbose bool
	unsubs  []func()
}

// NewLogger creates an event logger. A nil slog.Logger means slog.Default().
func NewLogger(logger *slog.Logger, verbose bool) *Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Logger{logger: logger, verbose: verbose}
}

// Attach subscribes the logger to the bus.
func (l *Logger) Attach(bus *Bus) {
	if l.verbose {
		l.unsubs = append(l.unsubs, bus.SubscribeAll(l.handle))
		return
	}
	for _, eventType := range []string{
		"loop_started", "loop_completed",
		"turn_started", "turn_completed",
		"llm_response",
		"tool_execution_started", "tool_execution_completed",
		"context_compaction",
	} {
		l.unsubs = append(l.unsubs, bus.Subscribe(eventType, l.handle))
	}
}

// Detach removes all of the logger's subscriptions.
func (l *Logger) Detach() {
	for _, unsub := range l.unsubs {
		unsub()
	}
	l.unsubs = nil
}

func (l *Logger) handle(event Event) {
	switch e := event.(type) {
	case LoopStarted:
		l.logger.Info("loop started", "session_id", e.SessionID, "message", preview(e.UserMessage, 80))
	case LoopCompleted:
		l.logger.Info("loop completed",
			"session_id", e.SessionID,
			"reason", e.TerminationReason,
			"turns", e.TotalTurns,
			"duration", e.Duration)
	case TurnStarted:
		l.logger.Info("turn started", "turn", e.Turn, "max_turns", e.MaxTurns)
	case TurnCompleted:
		if e.ToolCalls > 0 {
			l.logger.Info("turn completed", "turn", e.Turn, "tool_calls", e.ToolCalls)
		}
	case StateChanged:
		l.logger.Debug("state changed", "from", e.OldState, "to", e.NewState)
	case LLMResponse:
		l.logger.Info("llm response",
			"stop_reason", e.StopReason,
			"input_tokens", e.InputTokens,
			"output_tokens", e.OutputTokens,
			"duration", e.Duration)
	case ToolExecutionStarted:
		l.logger.Info("tool started", "tool", e.ToolName)
	case ToolExecutionCompleted:
		l.logger.Info("tool completed", "tool", e.ToolName, "success", e.Success, "duration", e.Duration)
	case ContextCompaction:
		l.logger.Info("context compacted",
			"tokens_before", e.TokensBefore,
			"tokens_after", e.TokensAfter,
			"messages_removed", e.MessagesRemoved)
	default:
		l.logger.Debug("event", "event_type", event.EventType())
	}
}

func preview(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
