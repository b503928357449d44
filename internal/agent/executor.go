package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/devbv/not-agent/internal/events"
	"github.com/devbv/not-agent/internal/permissions"
	"github.com/devbv/not-agent/internal/tools"
)

// deniedMessage is returned to the model when the user refuses a tool
// call, as output rather than an error so the model can react
// conversationally.
const deniedMessage = "User denied permission for this action. " +
	"Please ask what they would like to do instead."

// Executor resolves tool calls from the model: it looks up the tool,
// routes it through the permission engine when approval is needed, and
// normalizes every outcome into a tools.Result. It never returns an
// error; failures the model can recover from become failed results.
type Executor struct {
	registry *tools.Registry
	perms    *permissions.Engine
	bus      *events.Bus
	logger   *slog.Logger
}

// NewExecutor creates an executor. perms may be nil to run unguarded and
// bus may be nil to run unobserved.
func NewExecutor(registry *tools.Registry, perms *permissions.Engine, bus *events.Bus, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{registry: registry, perms: perms, bus: bus, logger: logger}
}

// Definitions returns the tool schemas to advertise to the provider.
func (e *Executor) Definitions() []tools.Definition {
	return e.registry.Definitions()
}

// Execute runs one tool call synchronously.
func (e *Executor) Execute(ctx context.Context, toolName string, input map[string]any) tools.Result {
	tool, ok := e.registry.Get(toolName)
	if !ok {
		return tools.Fail(fmt.Sprintf("Unknown tool: %s", toolName))
	}

	if e.perms != nil && e.perms.Enabled {
		if desc := e.approvalDescription(tool, input); desc != "" {
			diff := ""
			if differ, ok := tool.(tools.Differ); ok {
				diff = differ.GenerateDiff(input)
			}
			e.publish(events.ToolApprovalRequested{Base: events.Now(), ToolName: toolName, Description: desc})
			approved := e.perms.Check(toolName, desc, input, diff)
			e.publish(events.ToolApprovalResult{Base: events.Now(), ToolName: toolName, Approved: approved})
			if !approved {
				return tools.Result{Success: false, Output: deniedMessage}
			}
		}
	}

	if err := e.registry.ValidateInput(toolName, input); err != nil {
		var missing *tools.MissingParamsError
		if errors.As(err, &missing) {
			return tools.Fail(missingParamsMessage(toolName, missing))
		}
	}

	return e.run(ctx, tool, input)
}

// Go runs the tool on a fresh goroutine for callers that are already
// inside a select loop. The channel receives exactly one result.
func (e *Executor) Go(ctx context.Context, toolName string, input map[string]any) <-chan tools.Result {
	out := make(chan tools.Result, 1)
	go func() {
		out <- e.Execute(ctx, toolName, input)
	}()
	return out
}

func (e *Executor) publish(event events.Event) {
	if e.bus != nil {
		e.bus.Publish(event)
	}
}

// approvalDescription asks the tool whether this call needs approval.
// A panic while computing the description is logged and treated as "no
// approval needed"; the permission hook must never block execution.
func (e *Executor) approvalDescription(tool tools.Tool, input map[string]any) (desc string) {
	approver, ok := tool.(tools.Approver)
	if !ok {
		return ""
	}
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("failed to check permission", "tool", tool.Name(), "panic", r)
			desc = ""
		}
	}()
	return approver.ApprovalDescription(input)
}

// run executes the tool body, converting panics into failed results.
func (e *Executor) run(ctx context.Context, tool tools.Tool, input map[string]any) (result tools.Result) {
	defer func() {
		if r := recover(); r != nil {
			result = tools.Fail(fmt.Sprintf("Error executing %s: %v", tool.Name(), r))
		}
	}()
	return tool.Execute(ctx, input)
}

// missingParamsMessage builds the error text for a call with missing
// required arguments, including per-tool guidance so the model can
// correct its next call.
func missingParamsMessage(toolName string, missing *tools.MissingParamsError) string {
	guidance := ""
	switch toolName {
	case "write":
		guidance = "\n\nFor 'write' tool, you MUST provide:\n" +
			"- file_path: The path to the file\n" +
			"- content: The FULL content to write to the file\n\n" +
			"Example:\n" +
			"write(file_path='/path/to/file.md', content='Full content here...')\n\n" +
			"CRITICAL ERROR: You called write without the 'content' parameter.\n" +
			"This suggests you're trying to stream content, but that doesn't work with tools.\n\n" +
			"What you MUST do instead:\n" +
			"1. Compose the ENTIRE file content first (in your response text if needed)\n" +
			"2. Then make ONE write tool call with BOTH file_path AND complete content\n" +
			"3. The content parameter must contain the full text, not be empty or missing\n\n" +
			"Try again with the complete content included in the tool call."
	case "edit":
		guidance = "\n\nFor 'edit' tool, you MUST provide:\n" +
			"- file_path: The path to the file\n" +
			"- old_string: The exact text to replace\n" +
			"- new_string: The replacement text"
	}

	return fmt.Sprintf(
		"Tool '%s' called with missing parameters: %s\n"+
			"Provided parameters: %v\n"+
			"Please make sure to provide all required parameters.%s",
		toolName, strings.Join(missing.Missing, ", "), missing.Provided, guidance,
	)
}
