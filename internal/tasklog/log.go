package tasklog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/andrewimm/clancy/internal/transcript"
	"github.com/spf13/afero"
)

// ErrExists is returned when a task log with the same file name is present.
var ErrExists = errors.New("task log already exists")

const slugLength = 30

// Entry is the JSON document written for one task.
type Entry struct {
	TaskNumber int                    `json:"task_number"`
	SessionID  string                 `json:"session_id"`
	Prompt     string                 `json:"prompt"`
	Timestamp  time.Time              `json:"timestamp"`
	Success    bool                   `json:"success"`
	DurationMs *uint64                `json:"duration_ms"`
	CostUSD    *float64               `json:"cost_usd"`
	ToolsUsed  []string               `json:"tools_used"`
	Summary    string                 `json:"summary"`
	Transcript *transcript.Transcript `json:"transcript"`
	RawOutput  string                 `json:"raw_output"`
}

// NewEntry builds the log entry for a finished task.
func NewEntry(number int, sessionID, prompt, raw string, t *transcript.Transcript, at time.Time) *Entry {
	e := &Entry{
		TaskNumber: number,
		SessionID:  sessionID,
		Prompt:     prompt,
		Timestamp:  at.UTC(),
		Success:    t.Succeeded(),
		ToolsUsed:  t.ToolsUsed(),
		Summary:    t.GenerateSummary(),
		Transcript: t,
		RawOutput:  raw,
	}
	if d, ok := t.DurationMs(); ok {
		e.DurationMs = &d
	}
	if c, ok := t.TotalCost(); ok {
		e.CostUSD = &c
	}
	return e
}

// FileName returns NNN-slug.json for the entry.
func (e *Entry) FileName() string {
	return fmt.Sprintf("%03d-%s.json", e.TaskNumber, CreateSlug(e.Prompt))
}

// CreateSlug turns the first 30 characters of text into a file-name-safe
// slug. Letters and digits are kept (ASCII lowercased), everything else
// becomes '-', and leading or trailing dashes are trimmed. Text with no
// usable characters yields "task".
func CreateSlug(text string) string {
	var sb strings.Builder
	n := 0
	for _, r := range text {
		if n == slugLength {
			break
		}
		n++
		switch {
		case r >= 'A' && r <= 'Z':
			sb.WriteRune(r + ('a' - 'A'))
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			sb.WriteRune(r)
		default:
			sb.WriteByte('-')
		}
	}
	slug := strings.Trim(sb.String(), "-")
	if slug == "" {
		return "task"
	}
	return slug
}

// Write stores the entry in dir and returns the file path. An existing log
// is never overwritten.
func Write(fs afero.Fs, dir string, e *Entry) (string, error) {
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create tasks directory: %w", err)
	}

	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal task log: %w", err)
	}

	path := filepath.Join(dir, e.FileName())
	if exists, _ := afero.Exists(fs, path); exists {
		return "", fmt.Errorf("%w: %s", ErrExists, path)
	}

	f, err := fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("%w: %s", ErrExists, path)
		}
		return "", fmt.Errorf("failed to create task log: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to write task log: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close task log: %w", err)
	}
	return path, nil
}

// Read loads a task log document.
func Read(fs afero.Fs, path string) (*Entry, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read task log: %w", err)
	}

	var raw struct {
		Entry
		Transcript json.RawMessage `json:"transcript"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse task log %s: %w", filepath.Base(path), err)
	}
	e := raw.Entry
	e.Transcript = transcript.Parse(e.RawOutput)
	return &e, nil
}
