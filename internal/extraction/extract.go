package extraction

import (
	"context"

	"github.com/andrewimm/clancy/internal/notes"
	"github.com/andrewimm/clancy/internal/transcript"
)

// Engine turns a finished task into note updates.
type Engine struct {
	analyzer Analyzer
	opts     FormatOptions
}

// NewEngine creates an engine backed by an analyzer.
func NewEngine(analyzer Analyzer, opts FormatOptions) *Engine {
	return &Engine{analyzer: analyzer, opts: opts}
}

// Extract builds the prompt, calls the analyzer and parses its reply. On error
// no update is returned and nothing should be merged.
func (e *Engine) Extract(ctx context.Context, existing notes.Notes, t *transcript.Transcript, taskPrompt string) (notes.Update, error) {
	prompt := BuildPrompt(existing, t, taskPrompt, e.opts)

	reply, err := e.analyzer.Analyze(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return ParseResponse(reply), nil
}
