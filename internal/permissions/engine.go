package permissions

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
)

// Spinner lets the engine suspend interactive terminal output while it
// prompts the user. Injected by the UI layer; a nil spinner is a no-op.
type Spinner interface {
	Pause()
	Resume()
}

// Decision is one recorded permission outcome.
type Decision struct {
	Description string
	Verdict     Verdict
}

// Engine evaluates tool calls against the rule list and, for ASK verdicts,
// runs an interactive y/n confirmation. The decision history is append-only
// and single-writer, in line with the loop's synchronous execution model.
type Engine struct {
	Enabled  bool
	ShowDiff bool

	rules   []Rule
	history []Decision
	input   io.Reader
	output  io.Writer
	spinner Spinner
	logger  *slog.Logger
}

// Options configures a new Engine. Zero-value Input/Output default to
// stdin/stdout; a nil Logger means slog.Default().
type Options struct {
	Enabled  bool
	ShowDiff bool
	Rules    []Rule // user rules, appended after the defaults
	Input    io.Reader
	Output   io.Writer
	Spinner  Spinner
	Logger   *slog.Logger
}

// NewEngine builds an engine with the default policy plus any user rules,
// sorted by descending priority.
func NewEngine(opts Options) *Engine {
	e := &Engine{
		Enabled:  opts.Enabled,
		ShowDiff: opts.ShowDiff,
		input:    opts.Input,
		output:   opts.Output,
		spinner:  opts.Spinner,
		logger:   opts.Logger,
	}
	if e.input == nil {
		e.input = os.Stdin
	}
	if e.output == nil {
		e.output = os.Stdout
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	e.rules = append(e.rules, DefaultRules()...)
	e.rules = append(e.rules, opts.Rules...)
	e.sortRules()
	return e
}

// AddRule registers an extra rule and re-sorts the list.
func (e *Engine) AddRule(rule Rule) {
	e.rules = append(e.rules, rule)
	e.sortRules()
}

// Rules returns the current rule list in evaluation order.
func (e *Engine) Rules() []Rule {
	return append([]Rule(nil), e.rules...)
}

func (e *Engine) sortRules() {
	sort.SliceStable(e.rules, func(i, j int) bool {
		return e.rules[i].Priority > e.rules[j].Priority
	})
}

// Evaluate returns the verdict of the first matching rule, or ASK when no
// rule matches.
func (e *Engine) Evaluate(toolName string, context map[string]any) Verdict {
	for _, rule := range e.rules {
		if rule.Matches(toolName, context) {
			return rule.Verdict
		}
	}
	return VerdictAsk
}

// Check resolves a pending tool call to approved or denied. A disabled
// engine always approves. ALLOW and DENY resolve immediately; ASK prompts
// the user. Every decision is recorded to the history.
func (e *Engine) Check(toolName, description string, context map[string]any, diff string) bool {
	if !e.Enabled {
		return true
	}

	switch verdict := e.Evaluate(toolName, context); verdict {
	case VerdictAllow:
		e.record(description, VerdictAllow)
		return true
	case VerdictDeny:
		e.record(description, VerdictDeny)
		e.logger.Info("permission denied by rule", "tool", toolName, "description", description)
		return false
	default:
		approved := e.askUser(toolName, description, diff)
		if approved {
			e.record(description, VerdictAllow)
		} else {
			e.record(description, VerdictDeny)
		}
		return approved
	}
}

// askUser runs the interactive confirmation. Invalid input loops; end of
// input or a read error counts as denial, never as an error escaping to the
// caller.
func (e *Engine) askUser(toolName, description, diff string) bool {
	if e.spinner != nil {
		e.spinner.Pause()
		defer e.spinner.Resume()
	}

	fmt.Fprintf(e.output, "\n[approval] %s: %s\n", toolName, description)
	if e.ShowDiff && diff != "" {
		fmt.Fprintln(e.output, FormatDiff(diff))
	}

	reader := bufio.NewReader(e.input)
	for {
		fmt.Fprint(e.output, "Approve? [y/n]: ")
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintln(e.output, "(no input, denying)")
			return false
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		case "n", "no":
			return false
		}
		if err != nil {
			fmt.Fprintln(e.output, "(no input, denying)")
			return false
		}
		fmt.Fprintln(e.output, "Please answer y or n.")
	}
}

func (e *Engine) record(description string, verdict Verdict) {
	e.history = append(e.history, Decision{Description: description, Verdict: verdict})
}

// History returns the ordered decision log.
func (e *Engine) History() []Decision {
	return append([]Decision(nil), e.history...)
}

// ClearHistory drops the decision log.
func (e *Engine) ClearHistory() {
	e.history = nil
}

// FormatDiff renders a unified diff with gutter markers for terminal
// display.
func FormatDiff(diff string) string {
	var b strings.Builder
	for _, line := range strings.Split(strings.TrimRight(diff, "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "+"):
			b.WriteString("  + " + strings.TrimPrefix(line, "+"))
		case strings.HasPrefix(line, "-"):
			b.WriteString("  - " + strings.TrimPrefix(line, "-"))
		default:
			b.WriteString("    " + line)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
