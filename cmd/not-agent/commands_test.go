package main

import "testing"

func TestAgentFlagOverrides(t *testing.T) {
	flags := &agentFlags{provider: "openai", maxTurns: 5, noApproval: true}
	out := flags.overrides()

	if out["provider"] != "openai" {
		t.Errorf("provider = %v", out["provider"])
	}
	if out["max_turns"] != 5 {
		t.Errorf("max_turns = %v", out["max_turns"])
	}
	if out["approval_enabled"] != false {
		t.Errorf("approval_enabled = %v", out["approval_enabled"])
	}
	if _, ok := out["model"]; ok {
		t.Error("unset flags must not produce overrides")
	}
}

func TestBuildRootCmd(t *testing.T) {
	root := buildRootCmd()
	for _, name := range []string{"chat", "run", "config", "sessions"} {
		found := false
		for _, sub := range root.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("missing subcommand %q", name)
		}
	}
}
