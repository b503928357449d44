// handlers.go contains the command implementations.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/devbv/not-agent/internal/sessions"
	"github.com/devbv/not-agent/internal/tools"
	"github.com/devbv/not-agent/pkg/models"
)

func runChat(ctx context.Context, flags *agentFlags) error {
	cfg := loadConfig(flags.overrides())
	a, err := newApp(cfg, flags.verbose)
	if err != nil {
		return err
	}
	defer a.Close()

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if flags.sessionID != "" {
		loaded, err := store.Load(ctx, flags.sessionID)
		if err != nil {
			return fmt.Errorf("failed to resume session %s: %w", flags.sessionID, err)
		}
		session := a.loop.Session()
		session.ID = loaded.ID
		session.SetMessages(loaded.Messages)
		fmt.Printf("Resumed session %s (%d messages)\n", loaded.ID, loaded.Len())
	}

	fmt.Printf("not-agent %s | provider: %s | model: %s\n", version, a.provider.Name(), a.provider.Model())
	fmt.Println("Type a message, or /quit to exit.")

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		fmt.Print("\n> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch line {
		case "exit", "quit", "/quit":
			return nil
		case "/clear":
			a.loop.Reset()
			a.todos.Clear()
			fmt.Println("Conversation cleared.")
			continue
		case "/compact":
			session := a.loop.Session()
			a.loop.ContextManager().Compact(ctx, session)
			info := a.loop.ContextManager().UsageInfo(session)
			fmt.Printf("Compacted. Context usage: %v/%v tokens.\n", info["current"], info["max"])
			continue
		case "/todos":
			printTodos(a.todos)
			continue
		}

		reply, err := runMessage(ctx, a, line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		} else if reply != "" {
			fmt.Println(reply)
		}

		if err := store.Save(ctx, a.loop.Session()); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to save session: %v\n", err)
		}
	}
}

func runTask(ctx context.Context, flags *agentFlags, args []string) error {
	task := strings.Join(args, " ")

	cfg := loadConfig(flags.overrides())
	a, err := newApp(cfg, flags.verbose)
	if err != nil {
		return err
	}
	defer a.Close()

	reply, err := runMessage(ctx, a, task)
	if err != nil {
		return err
	}
	fmt.Println(reply)

	store, err := openStore(cfg)
	if err == nil {
		defer store.Close()
		if err := store.Save(ctx, a.loop.Session()); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to save session: %v\n", err)
		}
	}
	return nil
}

// runMessage runs one loop iteration with Ctrl-C mapped to a graceful
// interrupt of that message only.
func runMessage(ctx context.Context, a *app, message string) (string, error) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	a.spinner.Start()
	defer a.spinner.Stop()
	return a.loop.Run(ctx, message)
}

func runConfigShow(cmd *cobra.Command) error {
	cfg := loadConfig(nil)
	out, err := yaml.Marshal(cfg.Dict())
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), string(out))
	return nil
}

func runSessionsList(cmd *cobra.Command, limit int) error {
	store, err := openStore(loadConfig(nil))
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.List(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No stored sessions.")
		return nil
	}
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%-38s %8s  %s\n", "ID", "MESSAGES", "UPDATED")
	for _, e := range entries {
		fmt.Fprintf(w, "%-38s %8d  %s\n", e.ID, e.MessageCount, e.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

func runSessionsShow(cmd *cobra.Command, id string) error {
	store, err := openStore(loadConfig(nil))
	if err != nil {
		return err
	}
	defer store.Close()

	session, err := store.Load(cmd.Context(), id)
	if errors.Is(err, sessions.ErrNotFound) {
		return fmt.Errorf("session %s not found", id)
	}
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Session %s (%d messages)\n\n", session.ID, session.Len())
	for _, msg := range session.Messages {
		fmt.Fprintf(w, "[%s]\n", msg.Role)
		for _, part := range msg.Parts {
			switch p := part.(type) {
			case models.TextPart:
				fmt.Fprintln(w, p.Text)
			case models.ToolUsePart:
				fmt.Fprintf(w, "  -> %s(%v)\n", p.Name, p.Input)
			case models.ToolResultPart:
				status := "ok"
				if p.IsError {
					status = "error"
				}
				fmt.Fprintf(w, "  <- [%s] %s\n", status, firstLine(p.Content))
			}
		}
		fmt.Fprintln(w)
	}
	return nil
}

func runSessionsDelete(cmd *cobra.Command, id string) error {
	store, err := openStore(loadConfig(nil))
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Delete(cmd.Context(), id); err != nil {
		if errors.Is(err, sessions.ErrNotFound) {
			return fmt.Errorf("session %s not found", id)
		}
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted session %s\n", id)
	return nil
}

func printTodos(manager *tools.TodoManager) {
	todos := manager.Todos()
	if len(todos) == 0 {
		fmt.Println("No todos.")
		return
	}
	marks := map[string]string{
		tools.TodoPending:    "[ ]",
		tools.TodoInProgress: "[~]",
		tools.TodoCompleted:  "[x]",
	}
	for _, item := range todos {
		mark, ok := marks[item.Status]
		if !ok {
			mark = "[?]"
		}
		fmt.Printf("%s %s\n", mark, item.Content)
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " ..."
	}
	return s
}
