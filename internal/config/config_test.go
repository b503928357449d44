package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/devbv/not-agent/internal/permissions"
)

func TestDefaults(t *testing.T) {
	c := NewFromMap(nil)

	if c.GetString("provider", "") != "claude" {
		t.Errorf("provider = %q", c.GetString("provider", ""))
	}
	if c.GetInt("max_turns", 0) != 20 {
		t.Errorf("max_turns = %d", c.GetInt("max_turns", 0))
	}
	if c.GetFloat("compact_threshold", 0) != 0.75 {
		t.Errorf("compact_threshold = %v", c.GetFloat("compact_threshold", 0))
	}
	if !c.GetBool("approval_enabled", false) {
		t.Error("approval_enabled should default to true")
	}
	if c.GetInt("token_estimate_divisor", 0) != 4 {
		t.Errorf("token_estimate_divisor = %d", c.GetInt("token_estimate_divisor", 0))
	}
}

func TestSetOverridesEverything(t *testing.T) {
	c := NewFromMap(map[string]any{"max_turns": 5})
	if c.GetInt("max_turns", 0) != 5 {
		t.Errorf("max_turns = %d, want 5", c.GetInt("max_turns", 0))
	}

	c.Set("max_turns", 7)
	if c.GetInt("max_turns", 0) != 7 {
		t.Errorf("max_turns = %d, want 7", c.GetInt("max_turns", 0))
	}
}

func TestLoadEnv(t *testing.T) {
	c := NewFromMap(nil)
	c.loadEnv([]string{
		"NOT_AGENT_MAX_TURNS=9",
		"NOT_AGENT_DEBUG=true",
		"NOT_AGENT_COMPACT_THRESHOLD=0.5",
		"NOT_AGENT_MODEL=claude-haiku-4-5-20251001",
		"UNRELATED=ignored",
	})

	if c.GetInt("max_turns", 0) != 9 {
		t.Errorf("max_turns = %d", c.GetInt("max_turns", 0))
	}
	if !c.GetBool("debug", false) {
		t.Error("debug should parse as bool")
	}
	if c.GetFloat("compact_threshold", 0) != 0.5 {
		t.Errorf("compact_threshold = %v", c.GetFloat("compact_threshold", 0))
	}
	if c.GetString("model", "") != "claude-haiku-4-5-20251001" {
		t.Errorf("model = %q", c.GetString("model", ""))
	}
	if c.Has("unrelated") {
		t.Error("unprefixed variables must be ignored")
	}
}

func TestParseValue(t *testing.T) {
	cases := []struct {
		in   string
		want any
	}{
		{"true", true},
		{"YES", true},
		{"false", false},
		{"no", false},
		{"42", 42},
		{"2.5", 2.5},
		{"plain", "plain"},
	}
	for _, tc := range cases {
		if got := parseValue(tc.in); got != tc.want {
			t.Errorf("parseValue(%q) = %v (%T), want %v", tc.in, got, got, tc.want)
		}
	}
}

func TestLoadRawYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "model: test-model\nmax_turns: 3\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	raw, err := LoadRaw(path)
	if err != nil {
		t.Fatalf("LoadRaw: %v", err)
	}
	if raw["model"] != "test-model" {
		t.Errorf("model = %v", raw["model"])
	}
	if raw["max_turns"] != 3 {
		t.Errorf("max_turns = %v", raw["max_turns"])
	}
}

func TestLoadRawJSON5Comments(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json5")
	content := "{\n  // model override\n  model: \"j5-model\",\n}\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	raw, err := LoadRaw(path)
	if err != nil {
		t.Fatalf("LoadRaw: %v", err)
	}
	if raw["model"] != "j5-model" {
		t.Errorf("model = %v", raw["model"])
	}
}

func TestLoadRawInclude(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "base.yaml")
	if err := os.WriteFile(base, []byte("model: base-model\nmax_turns: 4\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	main := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(main, []byte("$include: base.yaml\nmodel: main-model\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	raw, err := LoadRaw(main)
	if err != nil {
		t.Fatalf("LoadRaw: %v", err)
	}
	// The including file wins on conflicts; other keys merge through.
	if raw["model"] != "main-model" {
		t.Errorf("model = %v", raw["model"])
	}
	if raw["max_turns"] != 4 {
		t.Errorf("max_turns = %v", raw["max_turns"])
	}
}

func TestLoadRawIncludeCycle(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.yaml")
	b := filepath.Join(dir, "b.yaml")
	if err := os.WriteFile(a, []byte("$include: b.yaml\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(b, []byte("$include: a.yaml\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadRaw(a); err == nil {
		t.Error("expected cycle error")
	}
}

func TestLoadRawEnvExpansion(t *testing.T) {
	t.Setenv("NOT_AGENT_TEST_VALUE", "expanded")
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("model: $NOT_AGENT_TEST_VALUE\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	raw, err := LoadRaw(path)
	if err != nil {
		t.Fatalf("LoadRaw: %v", err)
	}
	if raw["model"] != "expanded" {
		t.Errorf("model = %v", raw["model"])
	}
}

func TestPermissionRules(t *testing.T) {
	c := NewFromMap(map[string]any{
		"permission_rules": []any{
			map[string]any{
				"tool_pattern":    "bash",
				"command_pattern": "git status*",
				"verdict":         "allow",
				"priority":        50,
				"description":     "git status is safe",
			},
		},
	})

	rules := c.PermissionRules()
	if len(rules) != 1 {
		t.Fatalf("rules = %d, want 1", len(rules))
	}
	rule := rules[0]
	if rule.ToolPattern != "bash" || rule.Verdict != permissions.VerdictAllow || rule.Priority != 50 {
		t.Errorf("rule = %+v", rule)
	}
}

func TestPermissionRulesEmpty(t *testing.T) {
	c := NewFromMap(nil)
	if rules := c.PermissionRules(); len(rules) != 0 {
		t.Errorf("rules = %v, want none", rules)
	}
}
