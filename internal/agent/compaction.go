package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/devbv/not-agent/internal/providers"
	"github.com/devbv/not-agent/pkg/models"
)

// Compaction defaults.
const (
	DefaultContextLimit     = 100_000
	DefaultCompactThreshold = 0.75
	DefaultPreserveRecent   = 3

	// DefaultTokenDivisor is the characters-per-token heuristic used by
	// the estimator. A rough average for English prose and code, kept
	// configurable since it is not calibrated to any tokenizer.
	DefaultTokenDivisor = 4

	summaryMaxTokens = 8 * 1024
)

var summaryTagRe = regexp.MustCompile(`(?s)<summary>(.*?)</summary>`)

const summarySystemPrompt = "You are a helpful assistant that creates concise summaries."

const summaryPrompt = `You have been assisting the user but the conversation is getting long.
Create a concise summary that preserves essential information for continuing the work.

Include in your summary:

1. **Task Overview**
   - User's main request and goals
   - Any constraints or requirements

2. **Work Completed**
   - Files read, created, or modified (with exact paths)
   - Commands executed successfully
   - Key findings or outputs

3. **Important Context**
   - Variable names, function names, class names mentioned
   - Technical decisions made and reasons
   - Errors encountered and how they were resolved
   - User preferences or style requirements

4. **Current State**
   - What needs to be done next
   - Any blockers or open questions

Keep the summary concise (under 1000 words) but preserve ALL critical details.
Focus on facts, not process. Include specific names (files, variables, etc.).
Wrap your entire summary in <summary></summary> tags.`

// ContextManager watches a session's estimated token usage and compacts
// the history when it crosses the threshold: older messages are
// summarized through one LLM call and replaced by a single summary
// message, keeping the most recent messages intact.
type ContextManager struct {
	provider  providers.Provider
	limit     int
	threshold float64
	preserve  int
	divisor   int
	logger    *slog.Logger
}

// ContextManagerOptions configures a ContextManager. Zero values fall
// back to the defaults above.
type ContextManagerOptions struct {
	Limit          int
	Threshold      float64
	PreserveRecent int
	TokenDivisor   int
	Logger         *slog.Logger
}

// NewContextManager creates a manager that summarizes through the given
// provider.
func NewContextManager(provider providers.Provider, opts ContextManagerOptions) *ContextManager {
	m := &ContextManager{
		provider:  provider,
		limit:     opts.Limit,
		threshold: opts.Threshold,
		preserve:  opts.PreserveRecent,
		divisor:   opts.TokenDivisor,
		logger:    opts.Logger,
	}
	if m.limit <= 0 {
		m.limit = DefaultContextLimit
	}
	if m.threshold <= 0 {
		m.threshold = DefaultCompactThreshold
	}
	if m.preserve <= 0 {
		m.preserve = DefaultPreserveRecent
	}
	if m.divisor <= 0 {
		m.divisor = DefaultTokenDivisor
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	return m
}

// EstimateTokens returns a cheap token estimate for the session: the
// length of its wire serialization divided by the configured divisor.
// Deliberately an approximation; no tokenizer dependency.
func (m *ContextManager) EstimateTokens(session *models.Session) int {
	wire, err := json.Marshal(session.Wire())
	if err != nil {
		return 0
	}
	return len(wire) / m.divisor
}

// ShouldCompact reports whether the session is due for compaction.
// Sessions with too few messages to be worth summarizing never compact.
func (m *ContextManager) ShouldCompact(session *models.Session) bool {
	if session.Len() <= m.preserve+2 {
		return false
	}
	return float64(m.EstimateTokens(session)) >= float64(m.limit)*m.threshold
}

// UsageRatio returns the estimated fraction of the context limit in use.
func (m *ContextManager) UsageRatio(session *models.Session) float64 {
	return float64(m.EstimateTokens(session)) / float64(m.limit)
}

// UsageInfo returns a loggable view of context usage.
func (m *ContextManager) UsageInfo(session *models.Session) map[string]any {
	tokens := m.EstimateTokens(session)
	return map[string]any{
		"current":    tokens,
		"max":        m.limit,
		"percentage": float64(tokens) / float64(m.limit) * 100,
		"messages":   session.Len(),
	}
}

// Compact summarizes the older part of the session and replaces it with
// a single summary message followed by the preserved recent messages.
// Compaction always succeeds structurally; if summarization fails, the
// summary content degrades to a placeholder.
func (m *ContextManager) Compact(ctx context.Context, session *models.Session) {
	originalCount := session.Len()
	originalTokens := m.EstimateTokens(session)

	preserveCount := m.findSafeSplitPoint(session.Messages)
	if preserveCount >= len(session.Messages) {
		return
	}

	older := session.Messages[:len(session.Messages)-preserveCount]
	recent := session.Messages[len(session.Messages)-preserveCount:]

	summary := m.generateSummary(ctx, older)

	summaryMessage := models.NewTextMessage(models.RoleUser,
		"[Previous conversation summary]\n\n"+summary)
	session.SetMessages(append([]*models.Message{summaryMessage}, recent...))

	m.logger.Info("context compacted",
		"messages_before", originalCount,
		"messages_after", session.Len(),
		"tokens_before", originalTokens,
		"tokens_after", m.EstimateTokens(session),
	)
}

// findSafeSplitPoint returns how many trailing messages to preserve
// without separating a tool invocation from its results. If the first
// preserved message carries tool results, the assistant message that
// requested them is pulled into the preserved tail too. One step of
// look-back is enough: results always immediately follow exactly one
// tool-use-bearing assistant message.
func (m *ContextManager) findSafeSplitPoint(messages []*models.Message) int {
	preserveCount := m.preserve

	if len(messages) <= preserveCount {
		return len(messages)
	}

	firstRecent := messages[len(messages)-preserveCount]
	if firstRecent.Role == models.RoleUser && firstRecent.HasToolResult() {
		preserveCount++
	}

	if preserveCount > len(messages) {
		return len(messages)
	}
	return preserveCount
}

// generateSummary issues one LLM call over a cleaned rendition of the
// older messages. Any failure degrades to a placeholder summary.
func (m *ContextManager) generateSummary(ctx context.Context, older []*models.Message) string {
	cleaned := m.cleanMessages(older)
	cleaned = append(cleaned, models.NewTextMessage(models.RoleUser, summaryPrompt))

	resp, err := m.provider.Chat(ctx, &providers.Request{
		System:    summarySystemPrompt,
		Messages:  cleaned,
		MaxTokens: summaryMaxTokens,
	})
	if err != nil {
		m.logger.Warn("summary generation failed", "error", err)
		return fmt.Sprintf("Previous conversation covered multiple topics. (Error: %v)", err)
	}

	text := resp.Text()
	if match := summaryTagRe.FindStringSubmatch(text); match != nil {
		return strings.TrimSpace(match[1])
	}
	return strings.TrimSpace(text)
}

// cleanMessages strips structural tool metadata for summarization: text
// parts stay verbatim, tool invocations and results collapse to short
// human-readable markers.
func (m *ContextManager) cleanMessages(messages []*models.Message) []*models.Message {
	var cleaned []*models.Message

	for _, msg := range messages {
		var texts []string
		for _, part := range msg.Parts {
			switch part := part.(type) {
			case models.TextPart:
				texts = append(texts, part.Text)
			case models.ToolUsePart:
				input := truncate(fmt.Sprintf("%v", part.Input), 100)
				texts = append(texts, fmt.Sprintf("[Used tool: %s with %s...]", part.Name, input))
			case models.ToolResultPart:
				texts = append(texts, fmt.Sprintf("[Tool result: %s...]", truncate(part.Content, 200)))
			}
		}
		if len(texts) > 0 {
			cleaned = append(cleaned, models.NewTextMessage(msg.Role, strings.Join(texts, "\n")))
		}
	}

	return cleaned
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
