package project

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m := NewManager(afero.NewMemMapFs(), "/clancy/projects")
	m.now = func() time.Time { return time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC) }
	return m
}

func mustCreate(t *testing.T, m *Manager, name string) *Project {
	t.Helper()
	p, err := m.Create(name)
	if err != nil {
		t.Fatalf("Create(%s) failed: %v", name, err)
	}
	return p
}

func TestCreateLaysOutProject(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)
	p := mustCreate(t, m, "api")

	for _, path := range []string{
		filepath.Join(p.Path, "project.yaml"),
		filepath.Join(p.Path, "notes", "plan.md"),
		filepath.Join(p.Path, "notes", "architecture.md"),
	} {
		if ok, _ := afero.Exists(m.fs, path); !ok {
			t.Errorf("Expected %s to exist", path)
		}
	}
	if ok, _ := afero.DirExists(m.fs, p.TasksDir()); !ok {
		t.Errorf("Expected tasks directory to exist")
	}
	if p.Metadata.Status != StatusActive {
		t.Errorf("Expected status active, got %s", p.Metadata.Status)
	}
}

func TestCreateRejectsExisting(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)
	mustCreate(t, m, "api")

	_, err := m.Create("api")
	if !errors.Is(err, ErrProjectExists) {
		t.Errorf("Expected ErrProjectExists, got %v", err)
	}
}

func TestOpenMissing(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)
	_, err := m.Open("ghost")
	if !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("Expected ErrProjectNotFound, got %v", err)
	}
}

func TestValidateName(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"", "  ", "a/b", `a\b`, ".hidden"} {
		if err := ValidateName(name); !errors.Is(err, ErrInvalidName) {
			t.Errorf("Expected ErrInvalidName for %q, got %v", name, err)
		}
	}
	if err := ValidateName("my-project_2"); err != nil {
		t.Errorf("Expected valid name, got %v", err)
	}
}

func TestOpenOrCreateRoundTrip(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)
	p, err := m.OpenOrCreate("api")
	if err != nil {
		t.Fatalf("OpenOrCreate failed: %v", err)
	}
	if err := p.RecordSessionStart(); err != nil {
		t.Fatalf("RecordSessionStart failed: %v", err)
	}
	if err := p.RecordTask(); err != nil {
		t.Fatalf("RecordTask failed: %v", err)
	}

	again, err := m.OpenOrCreate("api")
	if err != nil {
		t.Fatalf("OpenOrCreate failed: %v", err)
	}
	if again.Metadata.Stats.TotalSessions != 1 {
		t.Errorf("Expected 1 session, got %d", again.Metadata.Stats.TotalSessions)
	}
	if again.Metadata.Stats.TotalTasks != 1 {
		t.Errorf("Expected 1 task, got %d", again.Metadata.Stats.TotalTasks)
	}
	if again.Metadata.LastTask == nil || !again.Metadata.LastTask.Equal(m.now()) {
		t.Errorf("Expected last task %v, got %v", m.now(), again.Metadata.LastTask)
	}
	if !again.Metadata.Created.Equal(m.now()) {
		t.Errorf("Expected created %v, got %v", m.now(), again.Metadata.Created)
	}
}

func TestListSortedAndSkipsBroken(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)
	mustCreate(t, m, "zeta")
	mustCreate(t, m, "alpha")
	if err := m.fs.MkdirAll("/clancy/projects/broken", 0755); err != nil {
		t.Fatal(err)
	}
	afero.WriteFile(m.fs, "/clancy/projects/stray.txt", []byte("x"), 0644)

	projects, err := m.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(projects) != 2 {
		t.Fatalf("Expected 2 projects, got %d", len(projects))
	}
	if projects[0].Metadata.Name != "alpha" || projects[1].Metadata.Name != "zeta" {
		t.Errorf("Expected [alpha zeta], got [%s %s]", projects[0].Metadata.Name, projects[1].Metadata.Name)
	}
}

func TestListEmptyRoot(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)
	projects, err := m.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(projects) != 0 {
		t.Errorf("Expected no projects, got %d", len(projects))
	}
}

func TestArchive(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)
	mustCreate(t, m, "old")
	if err := m.Archive("old"); err != nil {
		t.Fatalf("Archive failed: %v", err)
	}

	p, _ := m.Open("old")
	if !p.Metadata.Archived() {
		t.Errorf("Expected project to be archived")
	}
}

func TestLinkAndParent(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)
	mustCreate(t, m, "platform")
	mustCreate(t, m, "api")

	if err := m.Link("api", "platform"); err != nil {
		t.Fatalf("Link failed: %v", err)
	}

	p, _ := m.Open("api")
	parent, err := m.Parent(p)
	if err != nil {
		t.Fatalf("Parent failed: %v", err)
	}
	if parent == nil || parent.Metadata.Name != "platform" {
		t.Errorf("Expected parent platform, got %v", parent)
	}
}

func TestLinkRejectsSelfAndCycles(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)
	mustCreate(t, m, "a")
	mustCreate(t, m, "b")
	mustCreate(t, m, "c")

	if err := m.Link("a", "a"); !errors.Is(err, ErrSelfLink) {
		t.Errorf("Expected ErrSelfLink, got %v", err)
	}
	if err := m.Link("b", "a"); err != nil {
		t.Fatalf("Link b->a failed: %v", err)
	}
	if err := m.Link("c", "b"); err != nil {
		t.Fatalf("Link c->b failed: %v", err)
	}
	if err := m.Link("a", "c"); !errors.Is(err, ErrLinkCycle) {
		t.Errorf("Expected ErrLinkCycle, got %v", err)
	}

	a, _ := m.Open("a")
	if a.Metadata.Parent != "" {
		t.Errorf("Expected rejected link to leave parent empty, got '%s'", a.Metadata.Parent)
	}
}

func TestLinkMissingParent(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)
	mustCreate(t, m, "api")
	if err := m.Link("api", "ghost"); !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("Expected ErrProjectNotFound, got %v", err)
	}
}

func TestUnlink(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)
	mustCreate(t, m, "platform")
	mustCreate(t, m, "api")
	m.Link("api", "platform")

	previous, err := m.Unlink("api")
	if err != nil {
		t.Fatalf("Unlink failed: %v", err)
	}
	if previous != "platform" {
		t.Errorf("Expected previous parent 'platform', got '%s'", previous)
	}

	previous, err = m.Unlink("api")
	if err != nil {
		t.Fatalf("Unlink failed: %v", err)
	}
	if previous != "" {
		t.Errorf("Expected no previous parent, got '%s'", previous)
	}
}

func TestNextTaskNumber(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)
	p := mustCreate(t, m, "api")

	n, err := p.NextTaskNumber()
	if err != nil {
		t.Fatalf("NextTaskNumber failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1, got %d", n)
	}

	for _, name := range []string{"001-first.json", "007-later.json", "notes.txt", "abc-x.json"} {
		afero.WriteFile(m.fs, filepath.Join(p.TasksDir(), name), []byte("{}"), 0644)
	}
	n, _ = p.NextTaskNumber()
	if n != 8 {
		t.Errorf("Expected 8, got %d", n)
	}
}
