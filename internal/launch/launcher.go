// Package launch runs the coding assistant and the user's editor as child
// processes.
package launch

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// DefaultCommand is the assistant binary looked up on PATH.
const DefaultCommand = "claude"

// ErrNotInstalled is returned when the assistant binary cannot be found.
var ErrNotInstalled = errors.New("Claude Code not found in PATH. Install from: https://claude.ai/code")

// Runner executes one task and returns its raw stream output.
type Runner interface {
	// Run executes prompt in workDir. Every output line is passed to onLine
	// as it arrives. A non-zero exit is reported through exitCode, not err.
	Run(ctx context.Context, workDir, prompt string, onLine func(string)) (raw string, exitCode int, err error)
}

// ClaudeRunner runs `<command> -p <prompt> --output-format stream-json --verbose`.
type ClaudeRunner struct {
	Command string    // defaults to DefaultCommand
	Stderr  io.Writer // defaults to os.Stderr
}

// CheckInstalled verifies the assistant binary is on PATH.
func CheckInstalled(command string) error {
	if command == "" {
		command = DefaultCommand
	}
	if _, err := exec.LookPath(command); err != nil {
		return ErrNotInstalled
	}
	return nil
}

func (r *ClaudeRunner) Run(ctx context.Context, workDir, prompt string, onLine func(string)) (string, int, error) {
	command := r.Command
	if command == "" {
		command = DefaultCommand
	}
	path, err := exec.LookPath(command)
	if err != nil {
		return "", -1, ErrNotInstalled
	}

	cmd := exec.CommandContext(ctx, path, "-p", prompt, "--output-format", "stream-json", "--verbose")
	cmd.Dir = workDir
	cmd.Stderr = r.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", -1, fmt.Errorf("failed to capture output: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return "", -1, fmt.Errorf("failed to start %s: %w", command, err)
	}

	// Lines can carry whole file contents, so they are read without a cap.
	var raw strings.Builder
	var readErr error
	reader := bufio.NewReaderSize(stdout, 64*1024)
	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			line = strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")
			raw.WriteString(line)
			raw.WriteByte('\n')
			if onLine != nil {
				onLine(line)
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				readErr = err
				// Keep the child from blocking on a full pipe.
				io.Copy(io.Discard, stdout)
			}
			break
		}
	}

	waitErr := cmd.Wait()
	exitCode := -1
	if cmd.ProcessState != nil {
		exitCode = cmd.ProcessState.ExitCode()
	}

	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return raw.String(), exitCode, fmt.Errorf("%s failed: %w", command, waitErr)
		}
	}
	if ctx.Err() != nil {
		return raw.String(), exitCode, ctx.Err()
	}
	if readErr != nil {
		return raw.String(), exitCode, fmt.Errorf("failed to read %s output: %w", command, readErr)
	}
	return raw.String(), exitCode, nil
}
