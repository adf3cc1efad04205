package briefing

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

// writeDocument replaces the file at path with content.
func writeDocument(fs afero.Fs, path, content string) error {
	dir := filepath.Dir(path)
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create context directory: %w", err)
	}

	tmp, err := afero.TempFile(fs, dir, ".context-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create context file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		fs.Remove(tmpPath)
		return fmt.Errorf("failed to write context file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		fs.Remove(tmpPath)
		return fmt.Errorf("failed to write context file: %w", err)
	}
	if err := fs.Rename(tmpPath, path); err != nil {
		fs.Remove(tmpPath)
		return fmt.Errorf("failed to write context file %s: %w", path, err)
	}
	return nil
}
