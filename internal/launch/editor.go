package launch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// ErrEditorFailed is returned when the editor exits non-zero.
var ErrEditorFailed = errors.New("Editor exited with error")

// OpenEditor opens path in editor with the terminal attached and waits for
// it to exit. editor may carry arguments, e.g. "code -w".
func OpenEditor(ctx context.Context, editor, path string) error {
	fields := strings.Fields(editor)
	if len(fields) == 0 {
		return fmt.Errorf("no editor configured; set repl.editor or $EDITOR")
	}

	args := append(fields[1:], path)
	cmd := exec.CommandContext(ctx, fields[0], args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return ErrEditorFailed
		}
		return fmt.Errorf("Failed to open editor: %s: %w", fields[0], err)
	}
	return nil
}
