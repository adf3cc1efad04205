package launch

import "path/filepath"

// ContextPath is where the compiled context document is written for the
// assistant to pick up.
func ContextPath(workDir string) string {
	return filepath.Join(workDir, ".claude", "context.md")
}
