// commands.go contains the cobra command definitions and their flag
// configurations. Each builder creates a command and wires it to a handler.
package main

import (
	"github.com/spf13/cobra"
)

// agentFlags are the flags shared by the chat and run commands.
type agentFlags struct {
	provider   string
	model      string
	maxTurns   int
	noApproval bool
	verbose    bool
	sessionID  string
}

func (f *agentFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.provider, "provider", "p", "", "LLM provider (claude, openai)")
	cmd.Flags().StringVarP(&f.model, "model", "m", "", "Model name override")
	cmd.Flags().IntVar(&f.maxTurns, "max-turns", 0, "Maximum tool-use turns per message")
	cmd.Flags().BoolVar(&f.noApproval, "no-approval", false, "Skip tool approval prompts")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "Log every loop event")
	cmd.Flags().StringVar(&f.sessionID, "session", "", "Resume a stored session by id")
}

// overrides converts set flags into configuration overrides.
func (f *agentFlags) overrides() map[string]any {
	out := map[string]any{}
	if f.provider != "" {
		out["provider"] = f.provider
	}
	if f.model != "" {
		out["model"] = f.model
	}
	if f.maxTurns > 0 {
		out["max_turns"] = f.maxTurns
	}
	if f.noApproval {
		out["approval_enabled"] = false
	}
	return out
}

func buildChatCmd() *cobra.Command {
	flags := &agentFlags{}
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long: `Start an interactive session with the agent.

Slash commands inside the session:
  /clear    start a fresh conversation
  /compact  summarize older messages to free context
  /todos    show the agent's current task list
  /quit     exit (also: exit, quit, Ctrl-D)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd.Context(), flags)
		},
	}
	flags.register(cmd)
	return cmd
}

func buildRunCmd() *cobra.Command {
	flags := &agentFlags{}
	cmd := &cobra.Command{
		Use:   "run <task>",
		Short: "Run a single task and exit",
		Example: `  # One-shot task
  not-agent run "rename the User struct to Account"

  # Without approval prompts
  not-agent run --no-approval "gofmt every file under ./cmd"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTask(cmd.Context(), flags, args)
		},
	}
	flags.register(cmd)
	return cmd
}

func buildConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the resolved configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd)
		},
	}
	return cmd
}

func buildSessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Manage stored sessions",
	}

	var limit int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List stored sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSessionsList(cmd, limit)
		},
	}
	listCmd.Flags().IntVar(&limit, "limit", 20, "Maximum sessions to show")

	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a stored session transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSessionsShow(cmd, args[0])
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a stored session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSessionsDelete(cmd, args[0])
		},
	}

	cmd.AddCommand(listCmd, showCmd, deleteCmd)
	return cmd
}
