package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/andrewimm/clancy/internal/config"
	"github.com/andrewimm/clancy/internal/notes"
	"github.com/andrewimm/clancy/internal/project"
	"github.com/andrewimm/clancy/internal/tasklog"
	"github.com/andrewimm/clancy/internal/testutil"
	"github.com/andrewimm/clancy/internal/transcript"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func newTestCmd() (*cobra.Command, *bytes.Buffer) {
	cmd := &cobra.Command{}
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	return cmd, buf
}

func testManager() *project.Manager {
	return project.NewManager(afero.NewOsFs(), config.ProjectsPath())
}

func TestListProjects(t *testing.T) {
	testutil.SetupTestEnv(t)

	cmd, buf := newTestCmd()
	if err := runList(cmd, nil); err != nil {
		t.Fatalf("runList failed: %v", err)
	}
	if !strings.Contains(buf.String(), "No projects found.") {
		t.Errorf("Expected empty listing, got %q", buf.String())
	}

	m := testManager()
	for _, name := range []string{"beta", "alpha"} {
		if _, err := m.Create(name); err != nil {
			t.Fatal(err)
		}
	}
	if err := m.Archive("beta"); err != nil {
		t.Fatal(err)
	}

	cmd, buf = newTestCmd()
	if err := runList(cmd, nil); err != nil {
		t.Fatalf("runList failed: %v", err)
	}
	got := buf.String()
	alpha := strings.Index(got, "  alpha - 0 sessions, 0 tasks")
	beta := strings.Index(got, "  beta (archived) - 0 sessions, 0 tasks")
	if alpha < 0 || beta < 0 {
		t.Fatalf("Expected both projects listed, got:\n%s", got)
	}
	if alpha > beta {
		t.Errorf("Expected projects sorted by name, got:\n%s", got)
	}
}

func TestStatus(t *testing.T) {
	testutil.SetupTestEnv(t)

	m := testManager()
	if _, err := m.Create("core"); err != nil {
		t.Fatal(err)
	}
	p, err := m.Create("api")
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Link("api", "core"); err != nil {
		t.Fatal(err)
	}
	store := p.Notes()
	store.Write(notes.Plan, "Finish the auth rewrite")
	store.Write(notes.Decisions, "d1\nd2\nd3\nd4\nd5\nd6\nd7\n")

	cmd, buf := newTestCmd()
	if err := runStatus(cmd, []string{"api"}); err != nil {
		t.Fatalf("runStatus failed: %v", err)
	}

	got := buf.String()
	for _, want := range []string{
		"Project: api",
		"Status: active",
		"Parent: core",
		"Stats: 0 sessions, 0 tasks",
		"## Current Plan\n\nFinish the auth rewrite",
		"## Recent Decisions\n\nd3\nd4\nd5\nd6\nd7\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Expected status to contain %q, got:\n%s", want, got)
		}
	}
	if strings.Contains(got, "Last task:") {
		t.Errorf("Expected no last task for a new project")
	}
}

func TestStatusErrors(t *testing.T) {
	testutil.SetupTestEnv(t)

	cmd, _ := newTestCmd()
	if err := runStatus(cmd, nil); err == nil || err.Error() != "Project name required" {
		t.Errorf("Expected name required error, got %v", err)
	}
	if err := runStatus(cmd, []string{"ghost"}); !errors.Is(err, project.ErrProjectNotFound) {
		t.Errorf("Expected ErrProjectNotFound, got %v", err)
	}
}

func TestLinkAndUnlink(t *testing.T) {
	testutil.SetupTestEnv(t)

	m := testManager()
	m.Create("core")
	m.Create("api")

	cmd, buf := newTestCmd()
	if err := runLink(cmd, []string{"api", "core"}); err != nil {
		t.Fatalf("runLink failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Linked 'api' -> 'core'.") {
		t.Errorf("Expected link message, got %q", buf.String())
	}

	if err := runLink(cmd, []string{"core", "api"}); !errors.Is(err, project.ErrLinkCycle) {
		t.Errorf("Expected ErrLinkCycle, got %v", err)
	}

	cmd, buf = newTestCmd()
	if err := runUnlink(cmd, []string{"api"}); err != nil {
		t.Fatalf("runUnlink failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Unlinked 'api' from 'core'.") {
		t.Errorf("Expected unlink message, got %q", buf.String())
	}

	cmd, buf = newTestCmd()
	if err := runUnlink(cmd, []string{"api"}); err != nil {
		t.Fatalf("runUnlink failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Project 'api' has no parent link.") {
		t.Errorf("Expected no-parent message, got %q", buf.String())
	}
}

func TestArchive(t *testing.T) {
	testutil.SetupTestEnv(t)

	m := testManager()
	m.Create("old")

	cmd, buf := newTestCmd()
	if err := runArchive(cmd, []string{"old"}); err != nil {
		t.Fatalf("runArchive failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Project 'old' archived.") {
		t.Errorf("Expected archive message, got %q", buf.String())
	}

	p, err := m.Open("old")
	if err != nil {
		t.Fatal(err)
	}
	if !p.Metadata.Archived() {
		t.Errorf("Expected project to be archived")
	}
}

func TestPrintNotes(t *testing.T) {
	t.Parallel()

	store := notes.NewStore(afero.NewMemMapFs(), "/notes")
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}
	store.Write(notes.Architecture, "Handlers live in internal/api")

	var buf bytes.Buffer
	if err := printNotes(&buf, store, ""); err != nil {
		t.Fatalf("printNotes failed: %v", err)
	}
	got := buf.String()
	if !strings.Contains(got, "## architecture\n\nHandlers live in internal/api\n") {
		t.Errorf("Expected architecture section, got:\n%s", got)
	}
	if !strings.Contains(got, "## failures\n\n(empty)\n") {
		t.Errorf("Expected empty failures section, got:\n%s", got)
	}

	buf.Reset()
	if err := printNotes(&buf, store, "architecture"); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "Handlers live in internal/api\n" {
		t.Errorf("Expected single category content, got %q", buf.String())
	}

	if err := printNotes(&buf, store, "recipes"); !errors.Is(err, notes.ErrInvalidCategory) {
		t.Errorf("Expected ErrInvalidCategory, got %v", err)
	}
}

func TestHistory(t *testing.T) {
	testutil.SetupTestEnv(t)

	if _, err := testManager().Create("api"); err != nil {
		t.Fatal(err)
	}

	newHistoryCmd := func(args ...string) (*cobra.Command, *bytes.Buffer) {
		cmd, buf := newTestCmd()
		cmd.Flags().Int("limit", 10, "")
		cmd.Flags().String("grep", "", "")
		if err := cmd.Flags().Parse(args); err != nil {
			t.Fatal(err)
		}
		return cmd, buf
	}

	cmd, buf := newHistoryCmd()
	if err := runHistory(cmd, []string{"api"}); err != nil {
		t.Fatalf("runHistory failed: %v", err)
	}
	if !strings.Contains(buf.String(), "No task history found.") {
		t.Errorf("Expected empty history, got %q", buf.String())
	}

	x, err := tasklog.OpenIndex(config.IndexPath())
	if err != nil {
		t.Fatal(err)
	}
	raw := testutil.SampleStream()
	at := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	for i, prompt := range []string{"Fix the auth bug", "Add rate limiting"} {
		e := tasklog.NewEntry(i+1, "s1", prompt, raw, transcript.Parse(raw), at.Add(time.Duration(i)*time.Minute))
		if err := x.Insert("api", e, "/tasks/"+e.FileName()); err != nil {
			t.Fatal(err)
		}
	}
	x.Close()

	cmd, buf = newHistoryCmd()
	if err := runHistory(cmd, []string{"api"}); err != nil {
		t.Fatalf("runHistory failed: %v", err)
	}
	got := buf.String()
	if !strings.Contains(got, "Recent Tasks (2):") {
		t.Errorf("Expected two tasks, got:\n%s", got)
	}
	if strings.Index(got, "Add rate limiting") > strings.Index(got, "Fix the auth bug") {
		t.Errorf("Expected newest task first, got:\n%s", got)
	}
	if !strings.Contains(got, "Fixed the authentication bug") {
		t.Errorf("Expected summary line, got:\n%s", got)
	}

	cmd, buf = newHistoryCmd("--grep", "rate")
	if err := runHistory(cmd, []string{"api"}); err != nil {
		t.Fatal(err)
	}
	got = buf.String()
	if !strings.Contains(got, "Recent Tasks (1):") || strings.Contains(got, "auth bug") {
		t.Errorf("Expected only the matching task, got:\n%s", got)
	}
}

func TestConfigInit(t *testing.T) {
	testutil.SetupTestEnv(t)

	newInitCmd := func(args ...string) (*cobra.Command, *bytes.Buffer) {
		cmd, buf := newTestCmd()
		cmd.Flags().Bool("project", false, "")
		cmd.Flags().Bool("force", false, "")
		if err := cmd.Flags().Parse(args); err != nil {
			t.Fatal(err)
		}
		return cmd, buf
	}

	cmd, buf := newInitCmd()
	if err := runConfigInit(cmd, nil); err != nil {
		t.Fatalf("runConfigInit failed: %v", err)
	}
	if !strings.Contains(buf.String(), config.GlobalConfigPath()) {
		t.Errorf("Expected written path, got %q", buf.String())
	}

	cmd, _ = newInitCmd()
	if err := runConfigInit(cmd, nil); err == nil {
		t.Errorf("Expected error when config exists")
	}

	cmd, _ = newInitCmd("--force")
	if err := runConfigInit(cmd, nil); err != nil {
		t.Errorf("Expected --force to overwrite, got %v", err)
	}

	cmd, buf = newTestCmd()
	if err := runConfigShow(cmd, nil); err != nil {
		t.Fatalf("runConfigShow failed: %v", err)
	}
	if !strings.Contains(buf.String(), "conversation_mode: summary") {
		t.Errorf("Expected merged config, got:\n%s", buf.String())
	}
}

func TestLastLines(t *testing.T) {
	t.Parallel()

	got := lastLines("a\nb\nc\n", 2)
	if strings.Join(got, ",") != "b,c" {
		t.Errorf("Expected [b c], got %v", got)
	}
	if got := lastLines("only", 5); len(got) != 1 || got[0] != "only" {
		t.Errorf("Expected [only], got %v", got)
	}
}

func TestFirstLine(t *testing.T) {
	t.Parallel()

	if got := firstLine("  first\nsecond", 60); got != "first" {
		t.Errorf("Expected 'first', got %q", got)
	}
	if got := firstLine("abcdefghij", 8); got != "abcde..." {
		t.Errorf("Expected 'abcde...', got %q", got)
	}
}
