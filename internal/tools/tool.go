// Package tools defines the tool interface the agent loop executes against
// and provides the builtin suite: file access, search, shell, and todo
// tracking.
package tools

import "context"

// Result is the uniform outcome of every tool invocation, whether the
// failure came from the tool body, a permission denial, or malformed
// arguments.
type Result struct {
	Success bool   `json:"success"`
	Output  string `json:"output"`
	Error   string `json:"error,omitempty"`
}

// Ok builds a successful result.
func Ok(output string) Result {
	return Result{Success: true, Output: output}
}

// Fail builds a failed result with an error message.
func Fail(err string) Result {
	return Result{Success: false, Error: err}
}

// Tool is one capability exposed to the model.
type Tool interface {
	Name() string
	Description() string
	// InputSchema returns the JSON Schema for the tool's input object, in
	// the provider's input_schema shape (type, properties, required).
	InputSchema() map[string]any
	Execute(ctx context.Context, input map[string]any) Result
}

// Approver is implemented by tools whose calls may need user approval.
// ApprovalDescription returns "" when no approval is needed for the given
// input, or a human-readable description to show the user.
type Approver interface {
	ApprovalDescription(input map[string]any) string
}

// Differ is implemented by tools that can render a preview diff of the
// change they are about to make, shown in the approval prompt.
type Differ interface {
	GenerateDiff(input map[string]any) string
}

func stringArg(input map[string]any, key string) string {
	s, _ := input[key].(string)
	return s
}

func intArg(input map[string]any, key string, fallback int) int {
	switch v := input[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return fallback
	}
}

func boolArg(input map[string]any, key string) bool {
	b, _ := input[key].(bool)
	return b
}
