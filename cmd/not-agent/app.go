// app.go wires configuration into the agent: provider, tools, permission
// engine, context manager, and the turn loop.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/devbv/not-agent/internal/agent"
	"github.com/devbv/not-agent/internal/config"
	"github.com/devbv/not-agent/internal/events"
	"github.com/devbv/not-agent/internal/permissions"
	"github.com/devbv/not-agent/internal/providers"
	"github.com/devbv/not-agent/internal/sessions"
	"github.com/devbv/not-agent/internal/tools"
)

// app bundles everything one agent process needs.
type app struct {
	cfg      *config.Config
	provider providers.Provider
	loop     *agent.Loop
	todos    *tools.TodoManager
	perms    *permissions.Engine
	bus      *events.Bus
	spinner  *spinner
	eventLog *events.Logger
}

// newApp builds the full agent stack from configuration.
func newApp(cfg *config.Config, verbose bool) (*app, error) {
	logger := slog.Default()

	providerName := cfg.GetString("provider", "claude")
	provider, err := providers.New(providers.Options{
		Provider: providerName,
		Model:    cfg.GetString("model", ""),
		APIKey:   resolveAPIKey(cfg, providerName),
		BaseURL:  cfg.GetString("base_url", ""),
	})
	if err != nil {
		return nil, err
	}

	spin := newSpinner("thinking...")
	todos := tools.NewTodoManager()
	registry := tools.DefaultRegistry(todos, tools.BashTool{
		OutputLimit: cfg.GetInt("max_output_length", 0),
	})

	perms := permissions.NewEngine(permissions.Options{
		Enabled:  cfg.GetBool("approval_enabled", true),
		ShowDiff: cfg.GetBool("show_diff", true),
		Rules:    cfg.PermissionRules(),
		Spinner:  spin,
		Logger:   logger,
	})

	bus := events.NewBus(logger)
	eventLog := events.NewLogger(logger, verbose)
	eventLog.Attach(bus)

	executor := agent.NewExecutor(registry, perms, bus, logger)

	contextMgr := agent.NewContextManager(provider, agent.ContextManagerOptions{
		Limit:          cfg.GetInt("context_limit", 0),
		Threshold:      cfg.GetFloat("compact_threshold", 0),
		PreserveRecent: cfg.GetInt("preserve_recent_messages", 0),
		TokenDivisor:   cfg.GetInt("token_estimate_divisor", 0),
		Logger:         logger,
	})

	loop := agent.NewLoop(agent.LoopOptions{
		Provider:       provider,
		Executor:       executor,
		ContextManager: contextMgr,
		Bus:            bus,
		Logger:         logger,
		MaxTurns:       cfg.GetInt("max_turns", 0),
		MaxTokens:      cfg.GetInt("max_tokens", 0),
		ForceFirstTool: cfg.GetBool("force_first_tool", true),
		AutoCompact:    cfg.GetBool("enable_auto_compaction", true),
	})

	return &app{
		cfg:      cfg,
		provider: provider,
		loop:     loop,
		todos:    todos,
		perms:    perms,
		bus:      bus,
		spinner:  spin,
		eventLog: eventLog,
	}, nil
}

func (a *app) Close() {
	a.spinner.Stop()
	a.eventLog.Detach()
}

// resolveAPIKey prefers an explicit config value over the provider's
// conventional environment variable.
func resolveAPIKey(cfg *config.Config, providerName string) string {
	if key := cfg.GetString("api_key", ""); key != "" {
		return key
	}
	switch providerName {
	case "openai":
		return os.Getenv("OPENAI_API_KEY")
	default:
		return os.Getenv("ANTHROPIC_API_KEY")
	}
}

// openStore opens the session database at the configured path.
func openStore(cfg *config.Config) (*sessions.SQLiteStore, error) {
	path := cfg.GetString("session_db_path", "")
	store, err := sessions.NewSQLiteStore(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}
	return store, nil
}
