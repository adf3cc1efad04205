package project

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/andrewimm/clancy/internal/notes"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

var (
	ErrProjectNotFound = errors.New("project not found")
	ErrProjectExists   = errors.New("project already exists")
	ErrInvalidName     = errors.New("invalid project name")
	ErrSelfLink        = errors.New("cannot link a project to itself")
	ErrLinkCycle       = errors.New("link would create a circular reference")
)

const metadataFile = "project.yaml"

var metadataLock sync.Mutex

// Manager opens and creates projects under a root directory.
type Manager struct {
	fs   afero.Fs
	root string
	now  func() time.Time
}

// NewManager returns a manager for the projects directory root.
func NewManager(fs afero.Fs, root string) *Manager {
	return &Manager{fs: fs, root: root, now: time.Now}
}

// Root returns the projects directory.
func (m *Manager) Root() string {
	return m.root
}

// Project is an opened project.
type Project struct {
	Metadata Metadata
	Path     string
	fs       afero.Fs
	now      func() time.Time
}

// ValidateName rejects names that cannot be used as a directory name.
func ValidateName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("%w: name is empty", ErrInvalidName)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("%w '%s': contains a path separator", ErrInvalidName, name)
	case strings.HasPrefix(name, "."):
		return fmt.Errorf("%w '%s': starts with '.'", ErrInvalidName, name)
	}
	return nil
}

func (m *Manager) path(name string) string {
	return filepath.Join(m.root, name)
}

// Open loads an existing project.
func (m *Manager) Open(name string) (*Project, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	dir := m.path(name)
	data, err := afero.ReadFile(m.fs, filepath.Join(dir, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: '%s'", ErrProjectNotFound, name)
		}
		return nil, fmt.Errorf("failed to read project metadata: %w", err)
	}

	var meta Metadata
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse project metadata for '%s': %w", name, err)
	}
	if meta.Status == "" {
		meta.Status = StatusActive
	}
	if meta.Name == "" {
		meta.Name = name
	}

	return &Project{Metadata: meta, Path: dir, fs: m.fs, now: m.now}, nil
}

// Create makes a new project with empty notes.
func (m *Manager) Create(name string) (*Project, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	dir := m.path(name)
	exists, err := afero.DirExists(m.fs, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to check project directory: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: '%s'", ErrProjectExists, name)
	}

	if err := m.fs.MkdirAll(filepath.Join(dir, "tasks"), 0755); err != nil {
		return nil, fmt.Errorf("failed to create project directory: %w", err)
	}

	p := &Project{Metadata: NewMetadata(name, m.now()), Path: dir, fs: m.fs, now: m.now}
	if err := p.Notes().Init(); err != nil {
		return nil, err
	}
	if err := p.Save(); err != nil {
		return nil, err
	}
	return p, nil
}

// OpenOrCreate opens a project, creating it if its directory does not exist.
func (m *Manager) OpenOrCreate(name string) (*Project, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	exists, err := afero.DirExists(m.fs, m.path(name))
	if err != nil {
		return nil, fmt.Errorf("failed to check project directory: %w", err)
	}
	if exists {
		return m.Open(name)
	}
	return m.Create(name)
}

// List returns every readable project sorted by name. Directories without
// valid metadata are skipped.
func (m *Manager) List() ([]*Project, error) {
	entries, err := afero.ReadDir(m.fs, m.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read projects directory: %w", err)
	}

	var projects []*Project
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		p, err := m.Open(e.Name())
		if err != nil {
			slog.Warn("project: skipping unreadable project", "name", e.Name(), "error", err)
			continue
		}
		projects = append(projects, p)
	}

	sort.Slice(projects, func(i, j int) bool {
		return projects[i].Metadata.Name < projects[j].Metadata.Name
	})
	return projects, nil
}

// Archive marks a project archived.
func (m *Manager) Archive(name string) error {
	p, err := m.Open(name)
	if err != nil {
		return err
	}
	p.Metadata.Status = StatusArchived
	return p.Save()
}

// Link makes parent the parent of child. Self links, links to missing
// projects and links that would close a cycle are rejected.
func (m *Manager) Link(child, parent string) error {
	if child == parent {
		return ErrSelfLink
	}
	if _, err := m.Open(parent); err != nil {
		return fmt.Errorf("parent: %w", err)
	}
	c, err := m.Open(child)
	if err != nil {
		return fmt.Errorf("child: %w", err)
	}

	seen := map[string]bool{}
	for name := parent; name != "" && !seen[name]; {
		if name == child {
			return fmt.Errorf("%w (%s -> ... -> %s)", ErrLinkCycle, child, parent)
		}
		seen[name] = true
		p, err := m.Open(name)
		if err != nil {
			break
		}
		name = p.Metadata.Parent
	}

	c.Metadata.Parent = parent
	return c.Save()
}

// Unlink removes a project's parent link and returns the former parent, or
// "" if it had none.
func (m *Manager) Unlink(name string) (string, error) {
	p, err := m.Open(name)
	if err != nil {
		return "", err
	}
	previous := p.Metadata.Parent
	if previous == "" {
		return "", nil
	}
	p.Metadata.Parent = ""
	return previous, p.Save()
}

// Parent opens the parent of p. It returns nil without error when p has no
// parent link.
func (m *Manager) Parent(p *Project) (*Project, error) {
	if p.Metadata.Parent == "" {
		return nil, nil
	}
	return m.Open(p.Metadata.Parent)
}

// Notes returns the project's knowledge store.
func (p *Project) Notes() *notes.Store {
	return notes.NewStore(p.fs, filepath.Join(p.Path, "notes"))
}

// TasksDir returns the directory holding task logs.
func (p *Project) TasksDir() string {
	return filepath.Join(p.Path, "tasks")
}

// Save writes project.yaml atomically.
func (p *Project) Save() error {
	metadataLock.Lock()
	defer metadataLock.Unlock()

	if err := p.fs.MkdirAll(p.Path, 0755); err != nil {
		return fmt.Errorf("failed to create project directory: %w", err)
	}

	data, err := yaml.Marshal(&p.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal project metadata: %w", err)
	}

	path := filepath.Join(p.Path, metadataFile)
	tmpPath := path + ".tmp"
	if err := afero.WriteFile(p.fs, tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write project metadata: %w", err)
	}
	if err := p.fs.Rename(tmpPath, path); err != nil {
		p.fs.Remove(tmpPath)
		return fmt.Errorf("failed to rename project metadata: %w", err)
	}
	return nil
}

// RecordSessionStart increments the session count.
func (p *Project) RecordSessionStart() error {
	p.Metadata.Stats.TotalSessions++
	return p.Save()
}

// RecordTask stamps the last task time and increments the task count.
func (p *Project) RecordTask() error {
	now := p.now().UTC()
	p.Metadata.LastTask = &now
	p.Metadata.Stats.TotalTasks++
	return p.Save()
}

// NextTaskNumber returns one more than the highest number prefix among the
// task log file names, or 1 when there are none.
func (p *Project) NextTaskNumber() (int, error) {
	entries, err := afero.ReadDir(p.fs, p.TasksDir())
	if err != nil {
		if os.IsNotExist(err) {
			return 1, nil
		}
		return 0, fmt.Errorf("failed to read tasks directory: %w", err)
	}

	highest := 0
	for _, e := range entries {
		prefix, _, _ := strings.Cut(e.Name(), "-")
		n, err := strconv.Atoi(prefix)
		if err != nil || n < 0 {
			continue
		}
		if n > highest {
			highest = n
		}
	}
	return highest + 1, nil
}
