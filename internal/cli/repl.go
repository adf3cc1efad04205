package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"

	"github.com/andrewimm/clancy/internal/briefing"
	"github.com/andrewimm/clancy/internal/launch"
	"github.com/andrewimm/clancy/internal/notes"
	"github.com/andrewimm/clancy/internal/session"
)

// syncWriter serializes writes from the interrupt handler with the session's
// own output.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func newSyncWriter(w io.Writer) *syncWriter {
	return &syncWriter{w: w}
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// repl reads commands and tasks for one session. out must be shared with the
// session and safe for concurrent use, since interrupts print from the
// signal goroutine.
type repl struct {
	session     *session.Session
	in          *bufio.Reader
	out         *syncWriter
	editor      string
	promptStyle string

	mu     sync.Mutex
	cancel context.CancelFunc // set while a task runs
}

func (r *repl) prompt() string {
	if r.promptStyle == "minimal" {
		return promptStyle.Render(">") + " "
	}
	return promptStyle.Render(r.session.Project.Metadata.Name+">") + " "
}

func (r *repl) run(ctx context.Context) error {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	defer signal.Stop(sigs)

	ctx, stop := context.WithCancel(ctx)
	defer stop()
	go func() {
		for {
			select {
			case <-sigs:
				r.interrupt()
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		fmt.Fprint(r.out, r.prompt())
		line, err := r.in.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		eof := err != nil

		line = strings.TrimSpace(line)
		if line != "" {
			if strings.HasPrefix(line, "/") {
				done, cmdErr := r.handleCommand(ctx, line)
				if cmdErr != nil {
					fmt.Fprintln(r.out, errorStyle.Render("Error: "+cmdErr.Error()))
				}
				if done {
					return nil
				}
			} else {
				r.runTask(ctx, line)
			}
		}

		if eof {
			fmt.Fprintf(r.out, "\nSession complete. %d tasks.\n", len(r.session.History))
			return nil
		}
	}
}

// interrupt cancels the running task, if any. At the prompt it only
// reminds the user how to leave.
func (r *repl) interrupt() {
	r.mu.Lock()
	cancel := r.cancel
	r.mu.Unlock()

	if cancel != nil {
		fmt.Fprintln(r.out, noticeStyle.Render("\nCancelling task..."))
		cancel()
		return
	}
	fmt.Fprintln(r.out, "\nUse /done or /quit to exit")
	fmt.Fprint(r.out, r.prompt())
}

// cancellable returns a context the interrupt handler can cancel.
func (r *repl) cancellable(ctx context.Context) (context.Context, func()) {
	taskCtx, cancel := context.WithCancel(ctx)
	r.mu.Lock()
	r.cancel = cancel
	r.mu.Unlock()
	return taskCtx, func() {
		r.mu.Lock()
		r.cancel = nil
		r.mu.Unlock()
		cancel()
	}
}

func (r *repl) runTask(ctx context.Context, prompt string) {
	taskCtx, done := r.cancellable(ctx)
	defer done()

	if _, err := r.session.RunTask(taskCtx, prompt); err != nil {
		fmt.Fprintln(r.out, errorStyle.Render("Task error: "+err.Error()))
	}
}

// handleCommand runs a slash command and reports whether the session ends.
func (r *repl) handleCommand(ctx context.Context, line string) (bool, error) {
	parts := strings.Fields(line)
	command := parts[0]
	arg := ""
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch command {
	case "/done", "/quit", "/q":
		fmt.Fprintf(r.out, "Session complete. %d tasks, notes updated.\n", len(r.session.History))
		return true, nil
	case "/status":
		return false, r.showStatus()
	case "/notes":
		return false, r.editNotes(ctx, arg)
	case "/history":
		r.showHistory()
	case "/continue":
		r.setMode(briefing.ModeFull)
	case "/fresh":
		r.setMode(briefing.ModeFresh)
	case "/summary":
		r.setMode(briefing.ModeSummary)
	case "/mode":
		if arg == "" {
			fmt.Fprintf(r.out, "Conversation mode: %s\n", r.session.Mode)
			return false, nil
		}
		mode, err := briefing.ParseMode(arg)
		if err != nil {
			return false, err
		}
		r.setMode(mode)
	case "/compact":
		r.compact()
	case "/auto":
		r.auto(ctx, arg)
	case "/help":
		r.showHelp()
	default:
		fmt.Fprintf(r.out, "Unknown command: %s. Type /help for available commands.\n", command)
	}
	return false, nil
}

func (r *repl) setMode(mode briefing.Mode) {
	r.session.SetMode(mode)
	switch mode {
	case briefing.ModeFull:
		fmt.Fprintln(r.out, "Switched to full conversation mode. Next task will include complete prior context.")
	case briefing.ModeFresh:
		fmt.Fprintln(r.out, "Switched to fresh mode. Next task will only include notes, no session history.")
	default:
		fmt.Fprintln(r.out, "Switched to summary mode (default). Next task will include task summaries.")
	}
}

func (r *repl) compact() {
	n := len(r.session.History)
	if n == 0 {
		fmt.Fprintln(r.out, session.ErrNothingToCompact)
		return
	}
	fmt.Fprintf(r.out, "Compacting %d tasks...", n)
	if _, err := r.session.Compact(); err != nil {
		fmt.Fprintf(r.out, " %v\n", err)
		return
	}
	fmt.Fprintln(r.out, " done. Session history compacted.")
}

func (r *repl) auto(ctx context.Context, file string) {
	taskCtx, done := r.cancellable(ctx)
	defer done()

	if _, err := r.session.Auto(taskCtx, file, r.confirm); err != nil {
		fmt.Fprintln(r.out, errorStyle.Render("Auto error: "+err.Error()))
	}
}

// confirm prints message and waits for a line; "q" declines.
func (r *repl) confirm(message string) bool {
	fmt.Fprintln(r.out, message)
	line, err := r.in.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	return !strings.EqualFold(strings.TrimSpace(line), "q")
}

func (r *repl) showStatus() error {
	p := r.session.Project
	fmt.Fprintf(r.out, "\n%s\n", headingStyle.Render("## Project: "+p.Metadata.Name))
	fmt.Fprintf(r.out, "Session tasks: %d | Total tasks: %d | Mode: %s\n",
		len(r.session.History), p.Metadata.Stats.TotalTasks, r.session.Mode)

	store := r.session.Store()
	plan, err := store.Read(notes.Plan)
	if err != nil {
		return err
	}
	if strings.TrimSpace(plan) != "" {
		fmt.Fprintf(r.out, "\n%s\n%s\n", headingStyle.Render("## Current Plan"), plan)
	}

	decisions, err := store.Read(notes.Decisions)
	if err != nil {
		return err
	}
	if strings.TrimSpace(decisions) != "" {
		lines := strings.Split(decisions, "\n")
		if len(lines) > 5 {
			lines = lines[:5]
		}
		fmt.Fprintf(r.out, "\n%s\n", headingStyle.Render("## Recent Decisions"))
		for _, line := range lines {
			fmt.Fprintln(r.out, line)
		}
	}

	fmt.Fprintln(r.out)
	return nil
}

func (r *repl) editNotes(ctx context.Context, category string) error {
	path, err := notesPath(r.session.Store(), category)
	if err != nil {
		return err
	}
	if err := launch.OpenEditor(ctx, r.editor, path); err != nil {
		if errors.Is(err, launch.ErrEditorFailed) {
			fmt.Fprintln(r.out, err)
			return nil
		}
		return err
	}
	return nil
}

func (r *repl) showHistory() {
	if len(r.session.History) == 0 {
		fmt.Fprintln(r.out, "No tasks this session.")
		return
	}

	fmt.Fprintf(r.out, "\n%s\n\n", headingStyle.Render("## Task History"))
	for _, task := range r.session.History {
		fmt.Fprintf(r.out, "%d. %s — %s\n", task.Number, task.Prompt, task.Summary)
	}
	fmt.Fprintln(r.out)
}

func (r *repl) showHelp() {
	fmt.Fprintf(r.out, `
## Clancy REPL Commands

  <task description>   Run a task via Claude
  /status              Show current notes summary
  /notes [category]    Edit notes (%s)
  /history             Show task history this session
  /auto [file]         Run phases from %s (or specified file)

## Conversation Modes (current: %s)

  /continue            Switch to full mode (include complete prior context)
  /compact             Summarize history and start fresh
  /fresh               Switch to fresh mode (only notes, no history)
  /summary             Switch to summary mode (default)
  /mode [name]         Show or set the mode (fresh, summary, full)

## Session

  /done or /quit       Exit the session
  /help                Show this help

`, strings.ReplaceAll(notes.CategoryNames(), ", ", "|"), session.DefaultPlanFile, r.session.Mode)
}

// notesPath returns the file for category, or the notes directory when
// category is empty.
func notesPath(store *notes.Store, category string) (string, error) {
	if category == "" {
		return store.Dir(), nil
	}
	c, err := notes.ParseCategory(category)
	if err != nil {
		return "", err
	}
	return store.Path(c), nil
}
