// Package agent implements the turn loop: the state machine that drives
// one conversation with the model, executes requested tools through the
// permission gate, and keeps the session inside its context budget.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/devbv/not-agent/internal/events"
	"github.com/devbv/not-agent/internal/providers"
	"github.com/devbv/not-agent/internal/tools"
	"github.com/devbv/not-agent/pkg/models"
)

// Fixed result messages for non-error terminations.
const (
	MaxTurnsMessage  = "Max turns reached. Please continue with a new message."
	InterruptMessage = "Interrupted by user."
)

// DefaultMaxTurns bounds a single run.
const DefaultMaxTurns = 20

// DefaultMaxTokens caps each completion.
const DefaultMaxTokens = 16384

// Loop drives the conversation: receive input, call the model, execute
// any requested tools in order, compact the session when due, and repeat
// until the model answers without tools or the turn budget runs out.
// One Loop owns one Session; a run blocks the caller end to end.
type Loop struct {
	session    *models.Session
	provider   providers.Provider
	executor   *Executor
	contextMgr *ContextManager
	bus        *events.Bus
	logger     *slog.Logger

	loopCtx *LoopContext

	systemPrompt   string
	maxTokens      int
	forceFirstTool bool
	autoCompact    bool
}

// LoopOptions configures a Loop. Provider and Executor are required;
// everything else has a default. A nil Bus disables event publication.
type LoopOptions struct {
	Provider       providers.Provider
	Executor       *Executor
	ContextManager *ContextManager
	Bus            *events.Bus
	Logger         *slog.Logger

	SystemPrompt   string
	MaxTurns       int
	MaxTokens      int
	ForceFirstTool bool
	AutoCompact    bool
}

// NewLoop creates a loop with a fresh empty session.
func NewLoop(opts LoopOptions) *Loop {
	maxTurns := opts.MaxTurns
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	systemPrompt := opts.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Loop{
		session:        models.NewSession(),
		provider:       opts.Provider,
		executor:       opts.Executor,
		contextMgr:     opts.ContextManager,
		bus:            opts.Bus,
		logger:         logger,
		loopCtx:        NewLoopContext(maxTurns),
		systemPrompt:   systemPrompt,
		maxTokens:      maxTokens,
		forceFirstTool: opts.ForceFirstTool,
		autoCompact:    opts.AutoCompact,
	}
}

// Session returns the loop's conversation history.
func (l *Loop) Session() *models.Session { return l.session }

// Context returns the loop's execution context. Callers read it only
// after Run returns.
func (l *Loop) Context() *LoopContext { return l.loopCtx }

// ContextManager returns the loop's compaction manager, if any.
func (l *Loop) ContextManager() *ContextManager { return l.contextMgr }

// Reset clears the conversation: new session id, empty history.
func (l *Loop) Reset() {
	l.session.Clear()
	l.loopCtx.Reset()
}

// Run executes the loop for one user message and returns the model's
// final text. Provider failures propagate to the caller unretried; a
// cancelled context terminates the run with a fixed message instead of
// an error.
func (l *Loop) Run(ctx context.Context, userMessage string) (string, error) {
	l.loopCtx.Reset()
	l.loopCtx.StartTime = time.Now()
	defer func() {
		l.loopCtx.EndTime = time.Now()
		l.publish(events.LoopCompleted{
			Base:              events.Now(),
			SessionID:         l.session.ID,
			TerminationReason: string(l.loopCtx.TerminationReason),
			TotalTurns:        l.loopCtx.CurrentTurn,
			Duration:          l.loopCtx.Duration(),
		})
	}()

	l.publish(events.LoopStarted{Base: events.Now(), SessionID: l.session.ID, UserMessage: userMessage})

	l.setState(StateReceivingInput)
	l.session.AddUserMessage(userMessage)
	l.publish(events.MessageAdded{Base: events.Now(), Role: string(models.RoleUser), PartCount: 1})

	for turn := 0; turn < l.loopCtx.MaxTurns; turn++ {
		l.loopCtx.CurrentTurn = turn + 1
		l.publish(events.TurnStarted{Base: events.Now(), Turn: l.loopCtx.CurrentTurn, MaxTurns: l.loopCtx.MaxTurns})

		if err := ctx.Err(); err != nil {
			return l.interrupt(), nil
		}

		resp, err := l.callLLM(ctx, turn == 0)
		if err != nil {
			if ctx.Err() != nil {
				return l.interrupt(), nil
			}
			return "", l.fail(StateCallingLLM, err)
		}

		l.setState(StateProcessingResponse)
		toolUses := resp.ToolUses()

		if len(toolUses) == 0 {
			return l.finishTextTurn(resp), nil
		}

		l.setState(StateExecutingTools)
		l.session.AddAssistantMessage(resp.Parts)
		l.publish(events.MessageAdded{Base: events.Now(), Role: string(models.RoleAssistant), PartCount: len(resp.Parts)})

		results := l.executeTools(ctx, toolUses)
		l.session.AddToolResults(results)
		l.publish(events.MessageAdded{Base: events.Now(), Role: string(models.RoleUser), PartCount: len(results)})
		l.publish(events.TurnCompleted{Base: events.Now(), Turn: l.loopCtx.CurrentTurn, ToolCalls: len(toolUses)})

		l.setState(StateCheckingContext)
		l.maybeCompact(ctx)
	}

	l.loopCtx.TerminationReason = TerminationMaxTurns
	l.setState(StateCompleted)
	l.logger.Info("max turns reached", "max_turns", l.loopCtx.MaxTurns)
	return MaxTurnsMessage, nil
}

// callLLM serializes the session and issues one provider call. On the
// first turn of a run, tool use may be forced to push the model toward
// action instead of narration.
func (l *Loop) callLLM(ctx context.Context, firstTurn bool) (*providers.Response, error) {
	l.setState(StateCallingLLM)

	req := &providers.Request{
		System:    l.systemPrompt,
		Messages:  l.session.Messages,
		Tools:     l.executor.Definitions(),
		MaxTokens: l.maxTokens,
	}
	if l.forceFirstTool && firstTurn {
		req.ForceTool = providers.ForceAnyTool
	}

	l.publish(events.LLMRequest{Base: events.Now(), MessageCount: l.session.Len(), HasTools: len(req.Tools) > 0})

	start := time.Now()
	resp, err := l.provider.Chat(ctx, req)
	l.loopCtx.TotalLLMCalls++
	if err != nil {
		return nil, err
	}

	l.publish(events.LLMResponse{
		Base:         events.Now(),
		StopReason:   resp.StopReason,
		HasToolUse:   len(resp.ToolUses()) > 0,
		InputTokens:  resp.Usage.InputTokens,
		OutputTokens: resp.Usage.OutputTokens,
		Duration:     time.Since(start),
	})
	return resp, nil
}

// finishTextTurn handles the normal exit: a response with no tool
// invocations. The assistant text is appended so the session stays
// well formed for a follow-up run.
func (l *Loop) finishTextTurn(resp *providers.Response) string {
	if len(resp.Parts) > 0 {
		l.session.AddAssistantMessage(resp.Parts)
		l.publish(events.MessageAdded{Base: events.Now(), Role: string(models.RoleAssistant), PartCount: len(resp.Parts)})
	}

	switch resp.StopReason {
	case providers.StopEndTurn, "stop_sequence", "":
		l.loopCtx.TerminationReason = TerminationEndTurn
	default:
		l.loopCtx.TerminationReason = TerminationStopReason
	}
	l.setState(StateCompleted)

	var texts []string
	for _, part := range resp.Parts {
		if text, ok := part.(models.TextPart); ok {
			texts = append(texts, text.Text)
		}
	}
	return strings.Join(texts, "\n")
}

// executeTools runs each requested tool sequentially in request order.
// Later tools in the batch may depend on earlier side effects, and the
// provider expects result order to match invocation order.
func (l *Loop) executeTools(ctx context.Context, uses []models.ToolUsePart) []models.ToolResultPart {
	results := make([]models.ToolResultPart, 0, len(uses))

	for _, use := range uses {
		l.publish(events.ToolExecutionStarted{Base: events.Now(), ToolName: use.Name, Input: use.Input})

		start := time.Now()
		result := l.executor.Execute(ctx, use.Name, use.Input)
		l.loopCtx.TotalToolCalls++

		l.publish(events.ToolExecutionCompleted{
			Base:          events.Now(),
			ToolName:      use.Name,
			Success:       result.Success,
			Duration:      time.Since(start),
			OutputPreview: truncate(result.Output, 200),
		})

		results = append(results, models.ToolResultPart{
			ToolUseID: use.ID,
			Content:   formatToolResult(result),
			IsError:   !result.Success,
		})
	}

	return results
}

// maybeCompact triggers compaction when the context manager says the
// session is due. Compaction failures degrade inside the manager and
// never abort the run.
func (l *Loop) maybeCompact(ctx context.Context) {
	if !l.autoCompact || l.contextMgr == nil {
		return
	}
	if !l.contextMgr.ShouldCompact(l.session) {
		return
	}

	before := l.contextMgr.EstimateTokens(l.session)
	messagesBefore := l.session.Len()
	l.contextMgr.Compact(ctx, l.session)
	l.publish(events.ContextCompaction{
		Base:            events.Now(),
		TokensBefore:    before,
		TokensAfter:     l.contextMgr.EstimateTokens(l.session),
		MessagesRemoved: messagesBefore - l.session.Len(),
	})
}

func (l *Loop) interrupt() string {
	l.loopCtx.TerminationReason = TerminationUserInterrupt
	l.loopCtx.LastError = ErrInterrupted
	l.setState(StateCompleted)
	l.logger.Info("run interrupted")
	return InterruptMessage
}

func (l *Loop) fail(state State, err error) error {
	l.loopCtx.TerminationReason = TerminationError
	l.loopCtx.LastError = err
	l.setState(StateError)
	l.logger.Error("agent loop failed", "state", string(state), "turn", l.loopCtx.CurrentTurn, "error", err)
	return &LoopError{State: state, Turn: l.loopCtx.CurrentTurn, Cause: err}
}

func (l *Loop) setState(state State) {
	old := l.loopCtx.State
	l.loopCtx.RecordState(state)
	l.publish(events.StateChanged{Base: events.Now(), OldState: string(old), NewState: string(state)})
}

func (l *Loop) publish(e events.Event) {
	if l.bus != nil {
		l.bus.Publish(e)
	}
}

// formatToolResult renders a tool outcome for the model.
func formatToolResult(result tools.Result) string {
	if result.Success {
		return result.Output
	}
	return strings.TrimSpace(fmt.Sprintf("Error: %s\n%s", result.Error, result.Output))
}
