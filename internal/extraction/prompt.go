package extraction

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
	"unicode/utf8"

	"github.com/andrewimm/clancy/internal/notes"
	"github.com/andrewimm/clancy/internal/transcript"
)

// EmptyPlaceholder stands in for a category with no stored notes.
const EmptyPlaceholder = "(empty)"

const (
	inputLimit       = 500
	errorOutputLimit = 500
	resultLimit      = 200
)

//go:embed prompt.tmpl
var promptTemplate string

var promptTmpl = template.Must(template.New("prompt").Parse(promptTemplate))

// FormatOptions controls how a transcript is rendered into the prompt.
type FormatOptions struct {
	// IncludeToolOutputs keeps short tool results and error blocks.
	IncludeToolOutputs bool
	// MaxChars caps the rendered transcript. Zero means no cap.
	MaxChars int
}

// DefaultFormatOptions keeps tool outputs and sets no cap.
func DefaultFormatOptions() FormatOptions {
	return FormatOptions{IncludeToolOutputs: true}
}

// BuildPrompt renders the analysis prompt from the existing notes and a
// transcript. The output depends only on its inputs.
func BuildPrompt(existing notes.Notes, t *transcript.Transcript, taskPrompt string, opts FormatOptions) string {
	data := struct {
		Architecture string
		Decisions    string
		Failures     string
		Plan         string
		Transcript   string
	}{
		Architecture: placeholder(existing[notes.Architecture]),
		Decisions:    placeholder(existing[notes.Decisions]),
		Failures:     placeholder(existing[notes.Failures]),
		Plan:         placeholder(existing[notes.Plan]),
		Transcript:   FormatTranscript(t, taskPrompt, opts),
	}

	var buf bytes.Buffer
	if err := promptTmpl.Execute(&buf, data); err != nil {
		// The template is fixed and only receives strings.
		panic(fmt.Sprintf("extraction: prompt template: %v", err))
	}
	return buf.String()
}

func placeholder(content string) string {
	if content == "" {
		return EmptyPlaceholder
	}
	return content
}

// FormatTranscript renders a transcript as plain text for the analysis prompt.
// Large tool inputs and long successful tool outputs are left out.
func FormatTranscript(t *transcript.Transcript, taskPrompt string, opts FormatOptions) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Task: %s\n\n", taskPrompt))
	if model := t.ModelName(); model != "" {
		sb.WriteString(fmt.Sprintf("Model: %s\n", model))
	}
	sb.WriteString("---\n\n")

	for _, msg := range t.Messages {
		switch m := msg.(type) {
		case transcript.Text:
			sb.WriteString("Assistant:\n")
			sb.WriteString(m.Text)
			sb.WriteString("\n\n")
		case transcript.ToolUse:
			sb.WriteString(fmt.Sprintf("Tool: %s\n", m.ToolName))
			if input := prettyInput(m.Input); len(input) < inputLimit {
				sb.WriteString(fmt.Sprintf("Input: %s\n", input))
			}
			sb.WriteString("\n")
		case transcript.ToolResult:
			if !opts.IncludeToolOutputs {
				continue
			}
			if m.IsError {
				sb.WriteString(fmt.Sprintf("Error: %s\n\n", prefix(m.Output, errorOutputLimit)))
			} else if len(m.Output) < resultLimit {
				sb.WriteString(fmt.Sprintf("Result: %s\n\n", m.Output))
			}
		}
	}

	if r := t.Result; r != nil {
		if r.ResultText != nil {
			sb.WriteString("---\n\n")
			sb.WriteString(fmt.Sprintf("Final result: %s\n", *r.ResultText))
		}
		if !r.Success {
			sb.WriteString("(Task failed)\n")
		}
	}

	out := sb.String()
	if opts.MaxChars > 0 && len(out) > opts.MaxChars {
		out = prefix(out, opts.MaxChars) + "\n[transcript truncated]\n"
	}
	return out
}

func prettyInput(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "null"
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}

// prefix returns at most n bytes of s without splitting a rune.
func prefix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
