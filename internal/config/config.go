// Package config is the flat key/value configuration store for the
// agent. Values resolve with defined precedence: explicit Set beats
// NOT_AGENT_* environment variables, which beat the project file, which
// beats the global file, which beats the built-in defaults.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/devbv/not-agent/internal/permissions"
)

// EnvPrefix marks environment variables that override config keys.
const EnvPrefix = "NOT_AGENT_"

// Defaults returns the built-in configuration.
func Defaults() map[string]any {
	return map[string]any{
		// LLM settings
		"provider":   "claude",
		"model":      "claude-sonnet-4-20250514",
		"max_tokens": 16384,
		"base_url":   "",

		// Agent settings
		"max_turns":                20,
		"max_output_length":        10_000,
		"context_limit":            100_000,
		"compact_threshold":        0.75,
		"preserve_recent_messages": 3,
		"enable_auto_compaction":   true,
		"token_estimate_divisor":   4,
		"force_first_tool":         true,

		// Storage settings
		"session_db_path": "",

		// Permission settings
		"approval_enabled": true,
		"show_diff":        true,
		"permission_rules": []any{},

		// Feature settings
		"debug": false,
	}
}

// Config is a resolved configuration. Not safe for concurrent mutation;
// it is built once at startup and read afterwards.
type Config struct {
	values map[string]any
}

// Load resolves the full configuration from defaults, the global file
// under the user's home directory, the project file in the working
// directory, and the environment. Unreadable or malformed files are
// skipped, never fatal.
func Load() *Config {
	c := &Config{values: Defaults()}

	if home, err := os.UserHomeDir(); err == nil {
		c.mergeFirstExisting(
			filepath.Join(home, ".not-agent", "config.yaml"),
			filepath.Join(home, ".not-agent", "config.json"),
		)
	}
	c.mergeFirstExisting(".not-agent.yaml", ".not-agent.yml", ".not-agent.json")
	c.loadEnv(os.Environ())

	return c
}

// NewFromMap builds a config from defaults plus explicit overrides.
// Used by tests and by callers that resolve files themselves.
func NewFromMap(overrides map[string]any) *Config {
	c := &Config{values: Defaults()}
	for key, value := range overrides {
		c.values[key] = value
	}
	return c
}

func (c *Config) mergeFirstExisting(paths ...string) {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		raw, err := LoadRaw(path)
		if err != nil {
			continue
		}
		for key, value := range raw {
			c.values[key] = value
		}
		return
	}
}

// loadEnv applies NOT_AGENT_* variables. The key is the lowercased
// remainder; the value is parsed as bool, int, or float when it reads
// as one, and kept as a string otherwise.
func (c *Config) loadEnv(environ []string) {
	for _, entry := range environ {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || !strings.HasPrefix(key, EnvPrefix) {
			continue
		}
		configKey := strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
		if configKey == "" {
			continue
		}
		c.values[configKey] = parseValue(value)
	}
}

func parseValue(value string) any {
	switch strings.ToLower(value) {
	case "true", "yes":
		return true
	case "false", "no":
		return false
	}
	if i, err := strconv.Atoi(value); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f
	}
	return value
}

// Get returns a raw value, nil if absent.
func (c *Config) Get(key string) any {
	return c.values[key]
}

// Has reports whether the key is present.
func (c *Config) Has(key string) bool {
	_, ok := c.values[key]
	return ok
}

// Set applies an explicit override, the highest-precedence layer.
func (c *Config) Set(key string, value any) {
	c.values[key] = value
}

// GetString returns the value as a string, or fallback.
func (c *Config) GetString(key, fallback string) string {
	if s, ok := c.values[key].(string); ok {
		return s
	}
	return fallback
}

// GetInt returns the value as an int, accepting the numeric types the
// file parsers produce, or fallback.
func (c *Config) GetInt(key string, fallback int) int {
	switch v := c.values[key].(type) {
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

// GetFloat returns the value as a float64, or fallback.
func (c *Config) GetFloat(key string, fallback float64) float64 {
	switch v := c.values[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return fallback
	}
}

// GetBool returns the value as a bool, or fallback.
func (c *Config) GetBool(key string, fallback bool) bool {
	if b, ok := c.values[key].(bool); ok {
		return b
	}
	return fallback
}

// Dict returns a copy of the resolved values.
func (c *Config) Dict() map[string]any {
	out := make(map[string]any, len(c.values))
	for key, value := range c.values {
		out[key] = value
	}
	return out
}

// PermissionRules decodes the user rule list from permission_rules.
// Malformed entries are dropped rather than failing startup.
func (c *Config) PermissionRules() []permissions.Rule {
	raw, ok := c.values["permission_rules"]
	if !ok || raw == nil {
		return nil
	}

	payload, err := yaml.Marshal(raw)
	if err != nil {
		return nil
	}
	var rules []permissions.Rule
	if err := yaml.Unmarshal(payload, &rules); err != nil {
		return nil
	}
	return rules
}
