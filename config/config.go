// Package config defines the pmdash application configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level pmdash configuration.
type Config struct {
	Server   ServerConfig   `json:"server" yaml:"server"`
	Provider ProviderConfig `json:"provider" yaml:"provider"`
	Stages   StagesConfig   `json:"stages" yaml:"stages"`
	Prompt   PromptConfig   `json:"prompt" yaml:"prompt"`
	LogLevel string         `json:"log_level" yaml:"log_level"`
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Addr string `json:"addr" yaml:"addr"` // listen address, e.g., ":8080"
}

// ProviderConfig selects the completion backend. Credentials are read from
// the environment only, never from the config file.
type ProviderConfig struct {
	Name    string `json:"name" yaml:"name"` // "openai", "anthropic", "mock"
	BaseURL string `json:"base_url,omitempty" yaml:"base_url"`
	APIKey  string `json:"-" yaml:"-"`
}

// StageConfig holds per-stage model settings.
type StageConfig struct {
	Model       string  `json:"model" yaml:"model"`
	Temperature float64 `json:"temperature" yaml:"temperature"`
	MaxTokens   int     `json:"max_tokens" yaml:"max_tokens"`
}

// StagesConfig configures the three analysis stages.
type StagesConfig struct {
	Research StageConfig `json:"research" yaml:"research"`
	Blockers StageConfig `json:"blockers" yaml:"blockers"`
	Actions  StageConfig `json:"actions" yaml:"actions"`
}

// PromptConfig bounds generated prompt text.
type PromptConfig struct {
	MaxChars int `json:"max_chars" yaml:"max_chars"`
}

// Default returns a config with sensible defaults.
func Default() *Config {
	return &Config{
		Server:   ServerConfig{Addr: ":8080"},
		Provider: ProviderConfig{Name: "openai"},
		Stages: StagesConfig{
			Research: StageConfig{Model: "gpt-3.5-turbo", Temperature: 0.3, MaxTokens: 2000},
			Blockers: StageConfig{Model: "gpt-4", Temperature: 0.2, MaxTokens: 1500},
			Actions:  StageConfig{Model: "gpt-4", Temperature: 0.2, MaxTokens: 2000},
		},
		Prompt:   PromptConfig{MaxChars: 6000},
		LogLevel: "info",
	}
}

// Load reads a YAML config file over the defaults and applies the
// environment overlay.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.applyEnv()
	return cfg, nil
}

// FromEnv returns the default config with the environment overlay applied.
// Used when no config file is given.
func FromEnv() *Config {
	cfg := Default()
	cfg.applyEnv()
	return cfg
}

func (c *Config) applyEnv() {
	switch c.Provider.Name {
	case "anthropic":
		c.Provider.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	default:
		c.Provider.APIKey = os.Getenv("OPENAI_API_KEY")
	}
}

// Validate checks the configuration at startup. A missing credential for
// the selected provider is a boot error, not a per-request error.
func (c *Config) Validate() error {
	switch c.Provider.Name {
	case "openai":
		if c.Provider.APIKey == "" {
			return fmt.Errorf("provider %q selected but OPENAI_API_KEY is not set", c.Provider.Name)
		}
	case "anthropic":
		if c.Provider.APIKey == "" {
			return fmt.Errorf("provider %q selected but ANTHROPIC_API_KEY is not set", c.Provider.Name)
		}
	case "mock":
		// no credential needed
	default:
		return fmt.Errorf("unknown provider %q", c.Provider.Name)
	}
	if c.Prompt.MaxChars <= 0 {
		return fmt.Errorf("prompt.max_chars must be positive, got %d", c.Prompt.MaxChars)
	}
	return nil
}

// SlogLevel maps the configured log level to a slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
