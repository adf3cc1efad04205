package config

import "time"

// Config represents the full clancy configuration
type Config struct {
	// Analysis service used for note extraction
	Claude ClaudeConfig `yaml:"claude" mapstructure:"claude"`

	Extraction ExtractionConfig `yaml:"extraction" mapstructure:"extraction"`

	// Context document compilation
	Context ContextConfig `yaml:"context" mapstructure:"context"`

	Repl ReplConfig `yaml:"repl" mapstructure:"repl"`

	// The assistant that executes tasks
	Runner RunnerConfig `yaml:"runner" mapstructure:"runner"`

	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
}

// ClaudeConfig configures the Anthropic client
type ClaudeConfig struct {
	APIKeyEnv  string        `yaml:"api_key_env" mapstructure:"api_key_env"`
	Model      string        `yaml:"model" mapstructure:"model"`
	MaxTokens  int           `yaml:"max_tokens" mapstructure:"max_tokens"`
	Timeout    time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxRetries int           `yaml:"max_retries" mapstructure:"max_retries"`
	BaseURL    string        `yaml:"base_url" mapstructure:"base_url"`
}

// ExtractionConfig configures post-task note extraction
type ExtractionConfig struct {
	Enabled             bool `yaml:"enabled" mapstructure:"enabled"`
	MaxTranscriptTokens int  `yaml:"max_transcript_tokens" mapstructure:"max_transcript_tokens"`
	IncludeToolOutputs  bool `yaml:"include_tool_outputs" mapstructure:"include_tool_outputs"`
}

// ContextConfig configures the compiled context document
type ContextConfig struct {
	MaxContextTokens   int    `yaml:"max_context_tokens" mapstructure:"max_context_tokens"`
	IncludeParentNotes bool   `yaml:"include_parent_notes" mapstructure:"include_parent_notes"`
	ConversationMode   string `yaml:"conversation_mode" mapstructure:"conversation_mode"`
}

// ReplConfig configures the interactive session
type ReplConfig struct {
	Editor      string `yaml:"editor" mapstructure:"editor"`
	PromptStyle string `yaml:"prompt_style" mapstructure:"prompt_style"`
}

// RunnerConfig names the assistant binary
type RunnerConfig struct {
	Command string `yaml:"command" mapstructure:"command"`
}

// LoggingConfig configures the log file
type LoggingConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
}
