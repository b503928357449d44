package tools

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const (
	defaultBashTimeout = 120 * time.Second
	maxBashOutput      = 30000
)

// dangerousCommandPatterns lists substrings whose presence in a command
// requires user approval before execution.
var dangerousCommandPatterns = []string{
	"rm ",
	"mv ",
	"dd ",
	"format",
	">",
	">>",
	"|",
}

// BashTool runs shell commands with a timeout. OutputLimit caps the
// combined stdout/stderr returned to the model; zero means the default.
type BashTool struct {
	OutputLimit int
}

func (BashTool) Name() string { return "bash" }

func (BashTool) Description() string {
	return "Execute a bash command. Use for running scripts, git commands, package managers, etc."
}

func (BashTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"command": map[string]any{
				"type":        "string",
				"description": "The bash command to execute",
			},
			"timeout": map[string]any{
				"type":        "integer",
				"description": "Timeout in seconds (default: 120)",
			},
			"cwd": map[string]any{
				"type":        "string",
				"description": "Working directory for the command",
			},
		},
		"required": []any{"command"},
	}
}

// ApprovalDescription flags only commands containing a dangerous pattern;
// everything else runs without approval.
func (BashTool) ApprovalDescription(input map[string]any) string {
	command := stringArg(input, "command")
	for _, pattern := range dangerousCommandPatterns {
		if strings.Contains(command, pattern) {
			return fmt.Sprintf("Run command: %s", command)
		}
	}
	return ""
}

func (b BashTool) Execute(ctx context.Context, input map[string]any) Result {
	command := stringArg(input, "command")
	limit := b.OutputLimit
	if limit <= 0 {
		limit = maxBashOutput
	}
	timeout := defaultBashTimeout
	if secs := intArg(input, "timeout", 0); secs > 0 {
		timeout = time.Duration(secs) * time.Second
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "bash", "-c", command)
	if cwd := stringArg(input, "cwd"); cwd != "" {
		cmd.Dir = cwd
	}

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()

	if ctx.Err() == context.DeadlineExceeded {
		return Fail(fmt.Sprintf("Command timed out after %d seconds", int(timeout.Seconds())))
	}

	var outputParts []string
	if stdout.Len() > 0 {
		outputParts = append(outputParts, stdout.String())
	}
	if stderr.Len() > 0 {
		outputParts = append(outputParts, "[stderr]\n"+stderr.String())
	}
	output := "(no output)"
	if len(outputParts) > 0 {
		output = strings.Join(outputParts, "\n")
	}
	if len(output) > limit {
		output = output[:limit] + "\n... (output truncated)"
	}

	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return Result{
				Success: false,
				Output:  output,
				Error:   fmt.Sprintf("Command exited with code %d", exitErr.ExitCode()),
			}
		}
		return Fail(fmt.Sprintf("Error executing command: %v", err))
	}

	return Ok(output)
}
