package cli

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/andrewimm/clancy/internal/briefing"
	"github.com/andrewimm/clancy/internal/notes"
	"github.com/andrewimm/clancy/internal/project"
	"github.com/andrewimm/clancy/internal/session"
	"github.com/andrewimm/clancy/internal/testutil"
	"github.com/spf13/afero"
)

type sampleRunner struct {
	prompts []string
}

func (r *sampleRunner) Run(ctx context.Context, workDir, prompt string, onLine func(string)) (string, int, error) {
	r.prompts = append(r.prompts, prompt)
	return testutil.SampleStream(), 0, nil
}

func newTestREPL(t *testing.T, input string) (*repl, *bytes.Buffer, afero.Fs, *sampleRunner) {
	t.Helper()

	fs := afero.NewMemMapFs()
	p, err := project.NewManager(fs, "/clancy/projects").Create("api")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	buf := &bytes.Buffer{}
	out := newSyncWriter(buf)
	runner := &sampleRunner{}
	s := session.New(session.Config{
		Project:          p,
		Runner:           runner,
		WorkDir:          "/work",
		MaxContextTokens: 12000,
		Mode:             briefing.ModeSummary,
		Fs:               fs,
		Out:              out,
	})

	return &repl{
		session:     s,
		in:          bufio.NewReader(strings.NewReader(input)),
		out:         out,
		promptStyle: "project",
	}, buf, fs, runner
}

func TestREPLCommands(t *testing.T) {
	input := strings.Join([]string{
		"/help",
		"/mode",
		"/fresh",
		"/bogus",
		"/history",
		"",
		"Fix the auth bug",
		"/history",
		"/compact",
		"/mode full",
		"/status",
		"/done",
		"never reached",
	}, "\n") + "\n"

	r, out, _, runner := newTestREPL(t, input)
	if err := r.run(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	got := out.String()
	for _, want := range []string{
		"## Clancy REPL Commands",
		"/notes [category]    Edit notes (architecture|decisions|failures|plan)",
		"Conversation mode: summary",
		"Switched to fresh mode. Next task will only include notes, no session history.",
		"Unknown command: /bogus. Type /help for available commands.",
		"No tasks this session.",
		"[Task 1 complete in 1.5s ($0.0123)]",
		"1. Fix the auth bug — Fixed the authentication bug",
		"Compacting 1 tasks... done. Session history compacted.",
		"Switched to full conversation mode. Next task will include complete prior context.",
		"Session tasks: 1 | Total tasks: 1 | Mode: full",
		"Session complete. 1 tasks, notes updated.",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, got)
		}
	}
	if len(runner.prompts) != 1 {
		t.Errorf("Expected exactly one task to run, got %d", len(runner.prompts))
	}
}

func TestREPLEndOfInput(t *testing.T) {
	r, out, _, _ := newTestREPL(t, "/fresh")
	if err := r.run(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if r.session.Mode != briefing.ModeFresh {
		t.Errorf("Expected final partial line to be handled")
	}
	if !strings.Contains(out.String(), "Session complete. 0 tasks.") {
		t.Errorf("Expected EOF to end the session, got:\n%s", out.String())
	}
}

func TestREPLCompactEmpty(t *testing.T) {
	r, out, _, _ := newTestREPL(t, "/compact\n/q\n")
	if err := r.run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "No tasks to compact.") {
		t.Errorf("Expected empty compact notice, got:\n%s", out.String())
	}
}

func TestREPLBadModeAndCategory(t *testing.T) {
	r, out, _, _ := newTestREPL(t, "/mode loud\n/notes recipes\n/quit\n")
	if err := r.run(context.Background()); err != nil {
		t.Fatal(err)
	}
	got := out.String()
	if !strings.Contains(got, "unknown conversation mode 'loud'") {
		t.Errorf("Expected mode error, got:\n%s", got)
	}
	if !strings.Contains(got, "invalid note category 'recipes'") {
		t.Errorf("Expected category error, got:\n%s", got)
	}
}

func TestREPLAuto(t *testing.T) {
	// Three phases: one start confirmation and two between phases.
	r, out, fs, runner := newTestREPL(t, "/auto\n\n\n\n/done\n")
	if err := afero.WriteFile(fs, "/work/PLAN.md", []byte(testutil.SamplePlan()), 0644); err != nil {
		t.Fatal(err)
	}

	if err := r.run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(runner.prompts) != 3 {
		t.Errorf("Expected 3 phase tasks, got %d", len(runner.prompts))
	}
	if !strings.Contains(out.String(), "All 3 phases complete!") {
		t.Errorf("Expected completion banner, got:\n%s", out.String())
	}
}

func TestREPLAutoStopWithQ(t *testing.T) {
	r, out, fs, runner := newTestREPL(t, "/auto\n\nq\n/done\n")
	afero.WriteFile(fs, "/work/PLAN.md", []byte(testutil.SamplePlan()), 0644)

	if err := r.run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(runner.prompts) != 1 {
		t.Errorf("Expected 1 phase task, got %d", len(runner.prompts))
	}
	if !strings.Contains(out.String(), "Stopped. 1 of 3 phases complete.") {
		t.Errorf("Expected stop notice, got:\n%s", out.String())
	}
}

func TestREPLStatusShowsFirstDecisions(t *testing.T) {
	r, out, _, _ := newTestREPL(t, "/status\n/done\n")
	store := r.session.Store()
	store.Write(notes.Decisions, "d1\nd2\nd3\nd4\nd5\nd6\nd7")
	store.Write(notes.Plan, "ship it")

	if err := r.run(context.Background()); err != nil {
		t.Fatal(err)
	}
	got := out.String()
	if !strings.Contains(got, "d5") || strings.Contains(got, "d6") {
		t.Errorf("Expected the first five decisions, got:\n%s", got)
	}
	if !strings.Contains(got, "ship it") {
		t.Errorf("Expected plan in status, got:\n%s", got)
	}
}

func TestPrompt(t *testing.T) {
	r, _, _, _ := newTestREPL(t, "")
	if !strings.Contains(r.prompt(), "api>") {
		t.Errorf("Expected project prompt, got %q", r.prompt())
	}
	r.promptStyle = "minimal"
	if strings.Contains(r.prompt(), "api") {
		t.Errorf("Expected minimal prompt, got %q", r.prompt())
	}
}

func TestInterruptCancelsRunningTask(t *testing.T) {
	r, buf, _, _ := newTestREPL(t, "")

	ctx, done := r.cancellable(context.Background())
	r.interrupt()
	if ctx.Err() == nil {
		t.Errorf("Expected interrupt to cancel the running task")
	}
	done()

	r.interrupt()
	got := buf.String()
	if !strings.Contains(got, "Cancelling task...") {
		t.Errorf("Expected cancel notice, got:\n%s", got)
	}
	if !strings.Contains(got, "Use /done or /quit to exit") {
		t.Errorf("Expected exit hint at the prompt, got:\n%s", got)
	}
}

func TestInterruptWritesAreSerialized(t *testing.T) {
	r, buf, _, _ := newTestREPL(t, "")

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			r.interrupt()
		}
	}()
	for i := 0; i < 50; i++ {
		fmt.Fprintln(r.out, "task output")
	}
	wg.Wait()

	got := buf.String()
	if n := strings.Count(got, "task output\n"); n != 50 {
		t.Errorf("Expected 50 intact output lines, got %d", n)
	}
	if n := strings.Count(got, "Use /done or /quit to exit"); n != 50 {
		t.Errorf("Expected 50 exit hints, got %d", n)
	}
}
