package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/andrewimm/clancy/internal/config"
	"github.com/andrewimm/clancy/internal/extraction"
	"github.com/andrewimm/clancy/internal/project"
	"github.com/andrewimm/clancy/internal/tasklog"
	"github.com/spf13/afero"
)

// app bundles the loaded configuration and the project manager shared by
// every command.
type app struct {
	cfg     *config.Config
	manager *project.Manager
}

func loadApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &app{
		cfg:     cfg,
		manager: project.NewManager(afero.NewOsFs(), config.ProjectsPath()),
	}, nil
}

// parentFor returns the parent whose notes are inherited, or nil.
func (a *app) parentFor(p *project.Project) *project.Project {
	if !a.cfg.Context.IncludeParentNotes {
		return nil
	}
	parent, err := a.manager.Parent(p)
	if err != nil {
		slog.Warn("parent project unavailable", "project", p.Metadata.Name, "parent", p.Metadata.Parent, "error", err)
		return nil
	}
	return parent
}

// engine builds the extraction engine, or nil when extraction is disabled.
func (a *app) engine() *extraction.Engine {
	if !a.cfg.Extraction.Enabled {
		return nil
	}
	c := a.cfg.Claude
	analyzer := extraction.NewAnthropicAnalyzer(extraction.AnthropicConfig{
		APIKey:     os.Getenv(c.APIKeyEnv),
		APIKeyEnv:  c.APIKeyEnv,
		Model:      c.Model,
		MaxTokens:  int64(c.MaxTokens),
		BaseURL:    c.BaseURL,
		Timeout:    c.Timeout,
		MaxRetries: uint(max(c.MaxRetries, 0)),
	})
	return extraction.NewEngine(analyzer, extraction.FormatOptions{
		IncludeToolOutputs: a.cfg.Extraction.IncludeToolOutputs,
		MaxChars:           a.cfg.Extraction.MaxTranscriptTokens * 4,
	})
}

// openIndex opens the task index. Sessions run without it when it cannot be
// opened.
func (a *app) openIndex() *tasklog.Index {
	x, err := tasklog.OpenIndex(config.IndexPath())
	if err != nil {
		slog.Warn("task index unavailable", "path", config.IndexPath(), "error", err)
		return nil
	}
	return x
}
