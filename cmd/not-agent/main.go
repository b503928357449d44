// Package main provides the CLI entry point for the not-agent coding assistant.
//
// not-agent runs an LLM-driven tool loop against the local workspace: the
// model reads, writes, and edits files, runs shell commands behind a
// rule-based approval gate, and keeps long conversations within the context
// window through automatic compaction.
//
// # Basic Usage
//
// Start an interactive session:
//
//	not-agent chat
//
// Run a single task and exit:
//
//	not-agent run "add error handling to main.go"
//
// # Environment Variables
//
//   - ANTHROPIC_API_KEY: Anthropic API key for Claude models
//   - OPENAI_API_KEY: OpenAI API key for GPT models
//   - NOT_AGENT_*: any configuration key, e.g. NOT_AGENT_MAX_TURNS=30
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/devbv/not-agent/internal/config"
)

// Build information, populated by ldflags during build.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := buildRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// buildRootCmd creates the root command with all subcommands attached.
func buildRootCmd() *cobra.Command {
	var debug bool

	rootCmd := &cobra.Command{
		Use:   "not-agent",
		Short: "not-agent - a coding agent for your terminal",
		Long: `not-agent is an LLM-driven coding assistant that works in your terminal.

It reads and edits files, searches the workspace, and runs shell commands,
asking for approval before anything destructive.

Supported providers: Anthropic (Claude), OpenAI (GPT)`,
		Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if debug {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: level,
			}))
			slog.SetDefault(logger)
		},
	}
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(
		buildChatCmd(),
		buildRunCmd(),
		buildConfigCmd(),
		buildSessionsCmd(),
	)
	return rootCmd
}

// loadConfig reads the layered configuration and applies flag overrides.
func loadConfig(overrides map[string]any) *config.Config {
	cfg := config.Load()
	for key, value := range overrides {
		cfg.Set(key, value)
	}
	return cfg
}
