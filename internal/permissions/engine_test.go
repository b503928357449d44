package permissions

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"
)

func testEngine(opts Options) *Engine {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Input == nil {
		opts.Input = strings.NewReader("")
	}
	if opts.Output == nil {
		opts.Output = io.Discard
	}
	return NewEngine(opts)
}

func TestReadOnlyToolsAllowed(t *testing.T) {
	e := testEngine(Options{Enabled: true})
	for _, tool := range []string{"read", "glob", "grep"} {
		if v := e.Evaluate(tool, map[string]any{"file_path": "/etc/passwd"}); v != VerdictAllow {
			t.Errorf("Evaluate(%q) = %v, want allow", tool, v)
		}
	}
}

func TestRecursiveDeleteDeniedDespiteCatchAll(t *testing.T) {
	e := testEngine(Options{Enabled: true})
	v := e.Evaluate("bash", map[string]any{"command": "rm -rf /tmp/x"})
	if v != VerdictDeny {
		t.Errorf("Evaluate(rm -rf) = %v, want deny", v)
	}
}

func TestUnmatchedFallsThroughToAsk(t *testing.T) {
	e := testEngine(Options{Enabled: true})
	v := e.Evaluate("bash", map[string]any{"command": "git push origin main"})
	if v != VerdictAsk {
		t.Errorf("Evaluate(git push) = %v, want ask", v)
	}
}

func TestTestFileWritesAllowed(t *testing.T) {
	e := testEngine(Options{Enabled: true})
	cases := map[string]Verdict{
		"/repo/internal/agent/loop_test.go": VerdictAllow,
		"/repo/tests/fixture.json":          VerdictAllow,
		"/tmp/scratch.txt":                  VerdictAllow,
		"/repo/main.go":                     VerdictAsk,
	}
	for path, want := range cases {
		if v := e.Evaluate("write", map[string]any{"file_path": path}); v != want {
			t.Errorf("Evaluate(write %s) = %v, want %v", path, v, want)
		}
	}
}

func TestPathBasenameFallback(t *testing.T) {
	rule := Rule{ToolPattern: "write", PathPattern: "*.md", Verdict: VerdictAllow, Priority: 50}
	if !rule.Matches("write", map[string]any{"file_path": "/deep/nested/README.md"}) {
		t.Error("basename should satisfy the path pattern")
	}
}

func TestPriorityWinsRegardlessOfRegistrationOrder(t *testing.T) {
	low := Rule{ToolPattern: "deploy", Verdict: VerdictDeny, Priority: 0}
	high := Rule{ToolPattern: "deploy", Verdict: VerdictAllow, Priority: 10}

	forward := testEngine(Options{Enabled: true, Rules: []Rule{low, high}})
	backward := testEngine(Options{Enabled: true, Rules: []Rule{high, low}})

	for _, e := range []*Engine{forward, backward} {
		if v := e.Evaluate("deploy", nil); v != VerdictAllow {
			t.Errorf("Evaluate(deploy) = %v, want allow (priority 10)", v)
		}
	}
}

func TestDisabledEngineAlwaysApproves(t *testing.T) {
	e := testEngine(Options{Enabled: false})
	if !e.Check("bash", "run rm", map[string]any{"command": "rm -rf /"}, "") {
		t.Error("disabled engine must approve")
	}
	if len(e.History()) != 0 {
		t.Error("disabled engine must not record history")
	}
}

func TestCheckRecordsHistory(t *testing.T) {
	e := testEngine(Options{Enabled: true})
	e.Check("read", "read a file", map[string]any{"file_path": "/a"}, "")
	e.Check("bash", "delete tree", map[string]any{"command": "rm -rf /x"}, "")

	history := e.History()
	if len(history) != 2 {
		t.Fatalf("history length = %d, want 2", len(history))
	}
	if history[0].Verdict != VerdictAllow || history[1].Verdict != VerdictDeny {
		t.Errorf("history = %v", history)
	}

	e.ClearHistory()
	if len(e.History()) != 0 {
		t.Error("ClearHistory did not clear")
	}
}

func TestAskUserApproveAfterInvalidInput(t *testing.T) {
	var out bytes.Buffer
	e := testEngine(Options{
		Enabled: true,
		Input:   strings.NewReader("maybe\ny\n"),
		Output:  &out,
	})
	if !e.Check("bash", "run a command", map[string]any{"command": "make build"}, "") {
		t.Error("expected approval after y")
	}
	if !strings.Contains(out.String(), "Please answer y or n.") {
		t.Error("invalid input should reprompt")
	}
}

func TestAskUserDeny(t *testing.T) {
	e := testEngine(Options{Enabled: true, Input: strings.NewReader("n\n")})
	if e.Check("bash", "run a command", map[string]any{"command": "make deploy"}, "") {
		t.Error("expected denial")
	}
}

func TestAskUserEOFDenies(t *testing.T) {
	e := testEngine(Options{Enabled: true, Input: strings.NewReader("")})
	if e.Check("bash", "run a command", map[string]any{"command": "make deploy"}, "") {
		t.Error("EOF during prompt must deny")
	}
}

type recordingSpinner struct {
	paused, resumed int
}

func (s *recordingSpinner) Pause()  { s.paused++ }
func (s *recordingSpinner) Resume() { s.resumed++ }

func TestAskPausesAndResumesSpinner(t *testing.T) {
	spinner := &recordingSpinner{}
	e := testEngine(Options{Enabled: true, Input: strings.NewReader("y\n"), Spinner: spinner})
	e.Check("bash", "run a command", map[string]any{"command": "make"}, "")
	if spinner.paused != 1 || spinner.resumed != 1 {
		t.Errorf("spinner pause/resume = %d/%d, want 1/1", spinner.paused, spinner.resumed)
	}
}

func TestShowDiffInPrompt(t *testing.T) {
	var out bytes.Buffer
	e := testEngine(Options{
		Enabled:  true,
		ShowDiff: true,
		Input:    strings.NewReader("y\n"),
		Output:   &out,
	})
	e.Check("write", "write main.go", map[string]any{"file_path": "/repo/main.go"}, "-old line\n+new line")
	if !strings.Contains(out.String(), "+ new line") {
		t.Errorf("diff not rendered; output = %q", out.String())
	}
}

func TestGlobMatchSpansSlashes(t *testing.T) {
	if !globMatch("rm -rf *", "rm -rf /tmp/deep/dir") {
		t.Error("* must match across path separators")
	}
	if globMatch("rm -rf *", "echo rm -rf x") {
		t.Error("pattern is anchored at the start")
	}
	if !globMatch("?ash", "bash") {
		t.Error("? must match one character")
	}
}
