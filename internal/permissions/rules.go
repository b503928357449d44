// Package permissions implements the rule-based gate between the model's
// tool requests and their execution. A prioritized rule list decides
// ALLOW, DENY, or ASK per call; ASK defers to an interactive prompt.
package permissions

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Verdict is the outcome of evaluating a tool call against the rules.
type Verdict string

const (
	VerdictAllow Verdict = "allow"
	VerdictDeny  Verdict = "deny"
	VerdictAsk   Verdict = "ask"
)

// Rule matches a pending tool call and assigns a verdict. Higher priority
// wins; ties keep insertion order. A rule matches when the tool glob
// matches and, where present, the path glob matches the call's
// file_path/path (or its basename) and the command glob matches the call's
// command.
type Rule struct {
	ToolPattern    string  `json:"tool_pattern" yaml:"tool_pattern"`
	PathPattern    string  `json:"path_pattern,omitempty" yaml:"path_pattern,omitempty"`
	CommandPattern string  `json:"command_pattern,omitempty" yaml:"command_pattern,omitempty"`
	Verdict        Verdict `json:"verdict" yaml:"verdict"`
	Priority       int     `json:"priority" yaml:"priority"`
	Description    string  `json:"description,omitempty" yaml:"description,omitempty"`
}

// Matches reports whether the rule applies to the given tool call context.
func (r Rule) Matches(toolName string, context map[string]any) bool {
	if !globMatch(r.ToolPattern, toolName) {
		return false
	}

	if r.PathPattern != "" {
		path := stringField(context, "file_path")
		if path == "" {
			path = stringField(context, "path")
		}
		if path == "" {
			return false
		}
		if !globMatch(r.PathPattern, path) && !globMatch(r.PathPattern, filepath.Base(path)) {
			return false
		}
	}

	if r.CommandPattern != "" {
		command := stringField(context, "command")
		if command == "" {
			return false
		}
		if !globMatch(r.CommandPattern, command) {
			return false
		}
	}

	return true
}

func stringField(context map[string]any, key string) string {
	s, _ := context[key].(string)
	return s
}

// globMatch does fnmatch-style matching: * spans any characters including
// path separators, ? matches one character. filepath.Match is not used
// because command patterns like "rm -rf *" must match across slashes.
func globMatch(pattern, s string) bool {
	var b strings.Builder
	b.WriteString("(?s)^")
	for _, r := range pattern {
		switch r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	re, err := regexp.Compile(b.String())
	if err != nil {
		return false
	}
	return re.MatchString(s)
}

// DefaultRules returns the built-in policy: read-only tools always allowed,
// test writes and test/lint/format commands allowed, scratch-directory
// writes allowed, recursive deletes denied, everything else asks.
func DefaultRules() []Rule {
	return []Rule{
		// Read-only tools.
		{ToolPattern: "read", Verdict: VerdictAllow, Priority: -100, Description: "Reading files is always safe"},
		{ToolPattern: "glob", Verdict: VerdictAllow, Priority: -100, Description: "Finding files is always safe"},
		{ToolPattern: "grep", Verdict: VerdictAllow, Priority: -100, Description: "Searching files is always safe"},

		// Test file writes.
		{ToolPattern: "write", PathPattern: "*_test.go", Verdict: VerdictAllow, Priority: 10, Description: "Writing test files is allowed"},
		{ToolPattern: "write", PathPattern: "*test*.py", Verdict: VerdictAllow, Priority: 10, Description: "Writing test files is allowed"},
		{ToolPattern: "write", PathPattern: "tests/*", Verdict: VerdictAllow, Priority: 10, Description: "Writing under tests/ is allowed"},

		// Test, lint and format commands.
		{ToolPattern: "bash", CommandPattern: "go test*", Verdict: VerdictAllow, Priority: 10, Description: "Running tests is allowed"},
		{ToolPattern: "bash", CommandPattern: "go vet*", Verdict: VerdictAllow, Priority: 10, Description: "Running go vet is allowed"},
		{ToolPattern: "bash", CommandPattern: "gofmt*", Verdict: VerdictAllow, Priority: 10, Description: "Running gofmt is allowed"},
		{ToolPattern: "bash", CommandPattern: "pytest*", Verdict: VerdictAllow, Priority: 10, Description: "Running tests is allowed"},
		{ToolPattern: "bash", CommandPattern: "python -m pytest*", Verdict: VerdictAllow, Priority: 10, Description: "Running tests is allowed"},
		{ToolPattern: "bash", CommandPattern: "ruff *", Verdict: VerdictAllow, Priority: 10, Description: "Running ruff is allowed"},
		{ToolPattern: "bash", CommandPattern: "mypy *", Verdict: VerdictAllow, Priority: 10, Description: "Running mypy is allowed"},
		{ToolPattern: "bash", CommandPattern: "black *", Verdict: VerdictAllow, Priority: 10, Description: "Running black is allowed"},

		// Scratch directory.
		{ToolPattern: "write", PathPattern: "/tmp/*", Verdict: VerdictAllow, Priority: -50, Description: "Writing to /tmp is allowed"},

		// Destructive commands.
		{ToolPattern: "bash", CommandPattern: "rm -rf *", Verdict: VerdictDeny, Priority: 100, Description: "Recursive force delete is blocked"},
		{ToolPattern: "bash", CommandPattern: "rm -r *", Verdict: VerdictDeny, Priority: 100, Description: "Recursive delete is blocked"},

		// Catch-all.
		{ToolPattern: "*", Verdict: VerdictAsk, Priority: -1000, Description: "Unmatched actions require confirmation"},
	}
}
