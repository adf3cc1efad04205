package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Claude: ClaudeConfig{
			APIKeyEnv:  "ANTHROPIC_API_KEY",
			Model:      "claude-sonnet-4-20250514",
			MaxTokens:  2048,
			Timeout:    60 * time.Second,
			MaxRetries: 2,
		},
		Extraction: ExtractionConfig{
			Enabled:             true,
			MaxTranscriptTokens: 100000,
			IncludeToolOutputs:  true,
		},
		Context: ContextConfig{
			MaxContextTokens:   12000,
			IncludeParentNotes: true,
			ConversationMode:   "summary",
		},
		Repl: ReplConfig{
			Editor:      defaultEditor(),
			PromptStyle: "project",
		},
		Runner: RunnerConfig{
			Command: "claude",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

func defaultEditor() string {
	if e := os.Getenv("EDITOR"); e != "" {
		return e
	}
	return "vim"
}

const defaultContent = `# clancy configuration

# Analysis service used to extract notes after each task
claude:
  api_key_env: ANTHROPIC_API_KEY   # environment variable holding the key
  model: claude-sonnet-4-20250514
  max_tokens: 2048
  timeout: 60s
  max_retries: 2
  # base_url: https://api.anthropic.com

extraction:
  enabled: true
  max_transcript_tokens: 100000
  include_tool_outputs: true

# Context injected before every task
context:
  max_context_tokens: 12000
  include_parent_notes: true
  conversation_mode: summary   # fresh | summary | full

repl:
  # editor: vim                # defaults to $EDITOR
  prompt_style: project        # project | minimal

runner:
  command: claude

logging:
  level: info                  # debug | info | warn | error
`

// WriteDefault writes the commented default configuration to path. An
// existing file is left alone unless force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultContent), 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
