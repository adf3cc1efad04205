package briefing

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/andrewimm/clancy/internal/notes"
	"github.com/andrewimm/clancy/internal/transcript"
	"github.com/spf13/afero"
)

// Parent identifies the project whose architecture notes are inherited.
type Parent struct {
	Name  string
	Store *notes.Store
}

// Compiler renders and writes the context document for one project.
type Compiler struct {
	ProjectName string
	Store       *notes.Store
	Parent      *Parent // nil when the project has no parent link
	MaxTokens   int     // zero disables the budget
	OutputPath  string  // empty skips writing
	Fs          afero.Fs
}

// Document is a compiled context document.
type Document struct {
	Content   string
	Tokens    int
	Truncated bool
}

// Briefing holds everything rendered into a document.
type Briefing struct {
	ProjectName        string
	History            []TaskRecord
	Mode               Mode
	ParentName         string
	ParentArchitecture string
	Notes              notes.Notes
}

var sectionHeadings = []struct {
	category notes.Category
	heading  string
}{
	{notes.Architecture, "Architectural Context"},
	{notes.Decisions, "Key Decisions"},
	{notes.Failures, "Known Pitfalls"},
	{notes.Plan, "Current Plan"},
}

// Compile reads the notes, renders the document for the given history and
// mode, applies the token budget and writes the result to OutputPath.
// Store read and file write failures are returned.
func (c *Compiler) Compile(history []TaskRecord, mode Mode) (*Document, error) {
	all, err := c.Store.ReadAll()
	if err != nil {
		return nil, err
	}

	b := &Briefing{
		ProjectName: c.ProjectName,
		History:     history,
		Mode:        mode,
		Notes:       all,
	}
	if c.Parent != nil {
		arch, err := c.Parent.Store.Read(notes.Architecture)
		if err != nil {
			slog.Warn("briefing: parent notes unreadable", "parent", c.Parent.Name, "error", err)
		} else {
			b.ParentName = c.Parent.Name
			b.ParentArchitecture = arch
		}
	}

	content, truncated := EnforceBudget(b.Render(), c.MaxTokens)
	doc := &Document{
		Content:   content,
		Tokens:    EstimateTokens(content),
		Truncated: truncated,
	}

	if c.OutputPath != "" {
		if err := writeDocument(c.fs(), c.OutputPath, content); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

func (c *Compiler) fs() afero.Fs {
	if c.Fs == nil {
		return afero.NewOsFs()
	}
	return c.Fs
}

// Render converts the briefing to markdown.
func (b *Briefing) Render() string {
	var sb strings.Builder

	sb.WriteString("<!-- CLANCY CONTEXT — AUTO-GENERATED -->\n")
	sb.WriteString(fmt.Sprintf("<!-- Project: %s | Task: %d -->\n\n", b.ProjectName, len(b.History)+1))

	if len(b.History) > 0 {
		switch b.Mode {
		case ModeSummary:
			b.renderSummary(&sb)
		case ModeFull:
			b.renderFull(&sb)
		}
	}

	if b.ParentName != "" && strings.TrimSpace(b.ParentArchitecture) != "" {
		sb.WriteString(fmt.Sprintf("## Inherited Context (from %s)\n\n", b.ParentName))
		sb.WriteString(b.ParentArchitecture)
		sb.WriteString("\n\n")
	}

	for _, s := range sectionHeadings {
		content := b.Notes[s.category]
		if strings.TrimSpace(content) == "" {
			continue
		}
		sb.WriteString("## " + s.heading + "\n\n")
		sb.WriteString(content)
		sb.WriteString("\n\n")
	}

	sb.WriteString("---\n")
	sb.WriteString("When you complete work or encounter a problem, state it clearly for continuity.\n")

	return sb.String()
}

func (b *Briefing) renderSummary(sb *strings.Builder) {
	sb.WriteString("## Session Context\n\n")
	sb.WriteString(fmt.Sprintf("This is task %d of an ongoing session. Prior tasks:\n", len(b.History)+1))
	for _, task := range b.History {
		sb.WriteString(fmt.Sprintf("%d. %s — %s\n", task.Number, task.Prompt, task.Summary))
	}
	sb.WriteString("\n")
}

func (b *Briefing) renderFull(sb *strings.Builder) {
	sb.WriteString("## Full Conversation History\n\n")
	sb.WriteString(fmt.Sprintf("This is task %d of an ongoing session. Full prior conversation:\n\n", len(b.History)+1))
	for _, task := range b.History {
		sb.WriteString(fmt.Sprintf("### Task %d: %s\n\n", task.Number, task.Prompt))

		// Compacted records carry no output, only their summary.
		if task.RawOutput == "" {
			if task.Summary != "" {
				sb.WriteString(task.Summary)
				sb.WriteString("\n\n")
			}
			continue
		}

		for _, msg := range transcript.Parse(task.RawOutput).Messages {
			switch m := msg.(type) {
			case transcript.Text:
				sb.WriteString(m.Text)
				sb.WriteString("\n\n")
			case transcript.ToolUse:
				sb.WriteString(fmt.Sprintf("[Used tool: %s]\n\n", m.ToolName))
			}
		}
	}
}
