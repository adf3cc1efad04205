package session

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/andrewimm/clancy/internal/plan"
	"github.com/spf13/afero"
)

// DefaultPlanFile is read by Auto when no file is given.
const DefaultPlanFile = "PLAN.md"

// Confirm shows message and reports whether to carry on.
type Confirm func(message string) bool

// AutoResult reports how far an automatic run got.
type AutoResult struct {
	Total     int
	Completed int
	Err       error // the task error that stopped the run, if any
}

// Auto runs every phase of a plan file as a task. file is resolved against
// the work directory. The run stops at the first failing task or when
// confirm declines. A missing or phase-less plan is returned as an error.
func (s *Session) Auto(ctx context.Context, file string, confirm Confirm) (*AutoResult, error) {
	if file == "" {
		file = DefaultPlanFile
	}
	path := file
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.workDir, file)
	}

	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("Plan file not found: %s\nUsage: /auto [file.md]  (defaults to %s)", path, DefaultPlanFile)
		}
		return nil, fmt.Errorf("failed to read plan file %s: %w", path, err)
	}

	phases := plan.ParsePhases(string(data))
	if len(phases) == 0 {
		return nil, fmt.Errorf("No phases found in %s.\nExpected format:\n\n## Phase 1: Title\nDescription of what to do.\n\n## Phase 2: Title\n...", file)
	}

	fmt.Fprintf(s.out, "\nFound %d phases in %s:\n\n", len(phases), file)
	for i, phase := range phases {
		fmt.Fprintf(s.out, "  %d. %s\n", i+1, phase.Title)
	}

	result := &AutoResult{Total: len(phases)}
	if !confirm("\nPress Enter to start, or 'q' to cancel...") {
		fmt.Fprintln(s.out, "Cancelled.")
		return result, nil
	}

	rule := strings.Repeat("=", 60)
	for i, phase := range phases {
		fmt.Fprintf(s.out, "\n%s\nPhase %d/%d: %s\n%s\n\n", rule, i+1, len(phases), phase.Title, rule)

		if _, err := s.RunTask(ctx, phase.Prompt()); err != nil {
			fmt.Fprintf(s.out, "\nPhase %d failed: %v\n", i+1, err)
			fmt.Fprintln(s.out, "Stopping auto mode. Use /history to see completed phases.")
			result.Err = err
			return result, nil
		}
		result.Completed++

		if i < len(phases)-1 {
			msg := fmt.Sprintf("\nPhase %d complete. Press Enter for next phase, or 'q' to stop...", i+1)
			if !confirm(msg) {
				fmt.Fprintf(s.out, "Stopped. %d of %d phases complete.\n", i+1, len(phases))
				return result, nil
			}
		}
	}

	fmt.Fprintf(s.out, "\n%s\nAll %d phases complete!\n%s\n\n", rule, len(phases), rule)
	return result, nil
}
