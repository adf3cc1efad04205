package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// HomeEnv overrides the clancy home directory.
const HomeEnv = "CLANCY_HOME"

// Load loads and merges configuration from global and project sources.
// Unreadable files are logged and skipped.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	// Global config first, then the working directory overrides it
	for _, path := range []string{GlobalConfigPath(), ProjectConfigPath()} {
		if err := loadFile(path, cfg); err != nil && !os.IsNotExist(err) {
			slog.Warn("config: ignoring unreadable config file", "path", path, "error", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return err
	}

	return v.Unmarshal(cfg)
}

// Validate checks enumerated and numeric settings.
func (c *Config) Validate() error {
	switch c.Context.ConversationMode {
	case "fresh", "summary", "full":
	default:
		return fmt.Errorf("invalid context.conversation_mode '%s' (expected fresh, summary or full)", c.Context.ConversationMode)
	}
	switch c.Repl.PromptStyle {
	case "project", "minimal":
	default:
		return fmt.Errorf("invalid repl.prompt_style '%s' (expected project or minimal)", c.Repl.PromptStyle)
	}
	if c.Context.MaxContextTokens < 0 {
		return fmt.Errorf("context.max_context_tokens must not be negative")
	}
	if c.Claude.MaxTokens <= 0 {
		return fmt.Errorf("claude.max_tokens must be positive")
	}
	return nil
}

// Home returns the clancy home directory holding the global config, the
// projects and the task index.
func Home() string {
	if h := os.Getenv(HomeEnv); h != "" {
		return h
	}
	xdg.Reload()
	return filepath.Join(xdg.ConfigHome, "clancy")
}

// ProjectsPath returns the directory holding one subdirectory per project.
func ProjectsPath() string {
	return filepath.Join(Home(), "projects")
}

// IndexPath returns the SQLite task index.
func IndexPath() string {
	return filepath.Join(Home(), "index.db")
}

// GlobalConfigPath returns the path to the global config file
func GlobalConfigPath() string {
	return filepath.Join(Home(), "config.yaml")
}

// ProjectConfigPath returns the path to the config file in the working directory
func ProjectConfigPath() string {
	cwd, _ := os.Getwd()
	return filepath.Join(cwd, ".clancy", "config.yaml")
}

// LogPath returns the rotating log file.
func LogPath() string {
	xdg.Reload()
	return filepath.Join(xdg.StateHome, "clancy", "clancy.log")
}
