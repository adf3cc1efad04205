package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/andrewimm/clancy/internal/briefing"
	"github.com/andrewimm/clancy/internal/extraction"
	"github.com/andrewimm/clancy/internal/launch"
	"github.com/andrewimm/clancy/internal/notes"
	"github.com/andrewimm/clancy/internal/project"
	"github.com/andrewimm/clancy/internal/tasklog"
	"github.com/andrewimm/clancy/internal/transcript"
	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// ErrNothingToCompact is returned by Compact on an empty history.
var ErrNothingToCompact = errors.New("No tasks to compact.")

// Config wires a session to its project and collaborators.
type Config struct {
	Project *project.Project
	Parent  *project.Project // nil when there is no parent or it is excluded

	Runner launch.Runner
	Engine *extraction.Engine // nil disables extraction
	Index  *tasklog.Index     // nil skips indexing

	WorkDir          string
	MaxContextTokens int
	Mode             briefing.Mode

	Fs  afero.Fs  // defaults to the OS filesystem
	Out io.Writer // defaults to os.Stdout
}

// Session is the state of one interactive run against a project.
type Session struct {
	ID      string
	Project *project.Project
	Parent  *project.Project
	Mode    briefing.Mode
	History []briefing.TaskRecord

	workDir   string
	maxTokens int
	runner    launch.Runner
	engine    *extraction.Engine
	index     *tasklog.Index
	fs        afero.Fs
	out       io.Writer
	now       func() time.Time
}

// Outcome describes a finished task.
type Outcome struct {
	Number     int
	Transcript *transcript.Transcript
	ExitCode   int
	LogPath    string
	Update     notes.Update
}

// New creates a session with an empty history.
func New(cfg Config) *Session {
	s := &Session{
		ID:        uuid.New().String(),
		Project:   cfg.Project,
		Parent:    cfg.Parent,
		Mode:      cfg.Mode,
		workDir:   cfg.WorkDir,
		maxTokens: cfg.MaxContextTokens,
		runner:    cfg.Runner,
		engine:    cfg.Engine,
		index:     cfg.Index,
		fs:        cfg.Fs,
		out:       cfg.Out,
		now:       time.Now,
	}
	if s.fs == nil {
		s.fs = afero.NewOsFs()
	}
	if s.out == nil {
		s.out = os.Stdout
	}
	return s
}

// Store returns the project's notes.
func (s *Session) Store() *notes.Store {
	return s.Project.Notes()
}

// WorkDir returns the directory tasks run in.
func (s *Session) WorkDir() string {
	return s.workDir
}

// CompileContext writes the context document for the next task.
func (s *Session) CompileContext() (*briefing.Document, error) {
	c := &briefing.Compiler{
		ProjectName: s.Project.Metadata.Name,
		Store:       s.Store(),
		MaxTokens:   s.maxTokens,
		OutputPath:  launch.ContextPath(s.workDir),
		Fs:          s.fs,
	}
	if s.Parent != nil {
		c.Parent = &briefing.Parent{Name: s.Parent.Metadata.Name, Store: s.Parent.Notes()}
	}
	return c.Compile(s.History, s.Mode)
}

// RunTask executes one task end to end. Failures to compile context, run the
// assistant or persist results are returned; extraction problems are only
// reported.
func (s *Session) RunTask(ctx context.Context, prompt string) (*Outcome, error) {
	doc, err := s.CompileContext()
	if err != nil {
		return nil, err
	}

	number, err := s.Project.NextTaskNumber()
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(s.out, "\n[Task %d] Injecting context (~%d tokens)...\n\n", number, doc.Tokens)
	slog.Info("task started", "project", s.Project.Metadata.Name, "task", number, "session", s.ID, "context_tokens", doc.Tokens)

	printer := launch.NewLivePrinter(s.out)
	raw, exitCode, err := s.runner.Run(ctx, s.workDir, prompt, printer.Line)
	if err != nil {
		return nil, err
	}
	fmt.Fprintln(s.out)
	if exitCode != 0 {
		fmt.Fprintf(s.out, "[Task failed with exit code: %d]\n", exitCode)
	}

	t := transcript.Parse(raw)
	s.History = append(s.History, briefing.TaskRecord{
		Number:    number,
		Prompt:    truncate(prompt, 60),
		Summary:   historySummary(t, prompt),
		RawOutput: raw,
	})

	if err := s.Project.RecordTask(); err != nil {
		return nil, err
	}

	entry := tasklog.NewEntry(number, s.ID, prompt, raw, t, s.now())
	logPath, err := tasklog.Write(s.fs, s.Project.TasksDir(), entry)
	if err != nil {
		return nil, err
	}
	if s.index != nil {
		if err := s.index.Insert(s.Project.Metadata.Name, entry, logPath); err != nil {
			slog.Warn("task index update failed", "task", number, "error", err)
		}
	}

	fmt.Fprintf(s.out, "[Task %d complete%s]\n", number, completionDetail(t))
	slog.Info("task finished", "task", number, "success", t.Succeeded(), "exit_code", exitCode)

	outcome := &Outcome{
		Number:     number,
		Transcript: t,
		ExitCode:   exitCode,
		LogPath:    logPath,
		Update:     s.extract(ctx, t, prompt),
	}
	fmt.Fprintln(s.out)
	return outcome, nil
}

// extract runs note extraction and merges the result. Errors are printed
// inline and logged.
func (s *Session) extract(ctx context.Context, t *transcript.Transcript, prompt string) notes.Update {
	if s.engine == nil {
		return nil
	}
	fmt.Fprint(s.out, "Extracting notes...")

	store := s.Store()
	existing, err := store.ReadAll()
	if err != nil {
		slog.Warn("extraction skipped: notes unreadable", "error", err)
		fmt.Fprintf(s.out, " error: %v\n", err)
		return nil
	}

	update, err := s.engine.Extract(ctx, existing, t, prompt)
	if err != nil {
		slog.Warn("extraction failed", "project", s.Project.Metadata.Name, "error", err)
		fmt.Fprintf(s.out, " error: %v\n", err)
		return nil
	}
	if !update.HasUpdates() {
		fmt.Fprintln(s.out, " no updates")
		return update
	}

	if err := notes.Apply(store, update); err != nil {
		slog.Warn("applying extracted notes failed", "error", err)
		fmt.Fprintf(s.out, " error applying notes: %v\n", err)
		return nil
	}
	fmt.Fprintf(s.out, " updated: %s\n", update.Summary())
	return update
}

// Compact folds the whole history into a single record and switches to
// summary mode. It returns the number of tasks folded.
func (s *Session) Compact() (int, error) {
	n := len(s.History)
	if n == 0 {
		return 0, ErrNothingToCompact
	}

	lines := make([]string, n)
	for i, task := range s.History {
		lines[i] = fmt.Sprintf("- Task %d: %s → %s", task.Number, task.Prompt, task.Summary)
	}

	s.History = []briefing.TaskRecord{{
		Number:  0,
		Prompt:  fmt.Sprintf("(compacted %d tasks)", n),
		Summary: strings.Join(lines, "\n"),
	}}
	s.Mode = briefing.ModeSummary
	return n, nil
}

// SetMode changes how history is rendered for the next task.
func (s *Session) SetMode(m briefing.Mode) {
	s.Mode = m
}

func historySummary(t *transcript.Transcript, prompt string) string {
	if !t.Succeeded() {
		return "(failed) " + truncate(prompt, 70)
	}
	auto := t.GenerateSummary()
	if len(auto) > 20 && auto != transcript.NoSummary {
		return truncate(auto, 80)
	}
	return truncate(prompt, 80)
}

func completionDetail(t *transcript.Transcript) string {
	var detail string
	if d, ok := t.DurationMs(); ok {
		detail += fmt.Sprintf(" in %.1fs", float64(d)/1000)
	}
	if c, ok := t.TotalCost(); ok {
		detail += fmt.Sprintf(" ($%.4f)", c)
	}
	return detail
}

// truncate keeps s within n bytes, replacing the tail with "..." when it is
// cut. The cut backs off to a rune boundary.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	end := n - 3
	if end < 0 {
		end = 0
	}
	for end > 0 && !utf8.RuneStart(s[end]) {
		end--
	}
	return s[:end] + "..."
}
