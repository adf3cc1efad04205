// Package testutil provides reusable test utilities for clancy tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// TestEnv provides access to isolated test directories
type TestEnv struct {
	Home       string // Mocked HOME directory
	ClancyHome string // Data root (CLANCY_HOME)
	WorkDir    string // Directory tasks run in
	t          *testing.T
}

// SetupTestEnv creates an isolated test environment with mocked HOME and
// CLANCY_HOME. Uses t.TempDir() for cleanup and t.Setenv() for env restoration,
// so callers must not use t.Parallel().
func SetupTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	tmpHome := t.TempDir()
	workDir := t.TempDir()
	clancyHome := filepath.Join(tmpHome, ".config", "clancy")

	if err := os.MkdirAll(clancyHome, 0755); err != nil {
		t.Fatalf("Failed to create clancy home: %v", err)
	}

	t.Setenv("HOME", tmpHome)
	t.Setenv("CLANCY_HOME", clancyHome)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpHome, ".config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(tmpHome, ".local", "state"))

	return &TestEnv{
		Home:       tmpHome,
		ClancyHome: clancyHome,
		WorkDir:    workDir,
		t:          t,
	}
}

// CreateFile creates a file with the given content. Relative paths resolve
// against the work directory.
func (e *TestEnv) CreateFile(path, content string) {
	e.t.Helper()

	fullPath := e.resolve(path)
	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		e.t.Fatalf("Failed to create directory %s: %v", dir, err)
	}

	if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
		e.t.Fatalf("Failed to write file %s: %v", fullPath, err)
	}
}

// ReadFile reads a file from the test environment.
func (e *TestEnv) ReadFile(path string) string {
	e.t.Helper()

	fullPath := e.resolve(path)
	data, err := os.ReadFile(fullPath)
	if err != nil {
		e.t.Fatalf("Failed to read file %s: %v", fullPath, err)
	}
	return string(data)
}

// FileExists checks if a file exists in the test environment.
func (e *TestEnv) FileExists(path string) bool {
	e.t.Helper()

	_, err := os.Stat(e.resolve(path))
	return err == nil
}

// ProjectDir returns the on-disk directory of a project under CLANCY_HOME.
func (e *TestEnv) ProjectDir(name string) string {
	return filepath.Join(e.ClancyHome, "projects", name)
}

func (e *TestEnv) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(e.WorkDir, path)
}
