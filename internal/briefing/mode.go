package briefing

import (
	"fmt"
	"strings"
)

// Mode selects how much session history goes into the document.
type Mode int

const (
	ModeSummary Mode = iota
	ModeFresh
	ModeFull
)

func (m Mode) String() string {
	switch m {
	case ModeFresh:
		return "fresh"
	case ModeFull:
		return "full"
	default:
		return "summary"
	}
}

// ParseMode parses "fresh", "summary" or "full".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fresh":
		return ModeFresh, nil
	case "summary", "":
		return ModeSummary, nil
	case "full":
		return ModeFull, nil
	}
	return ModeSummary, fmt.Errorf("unknown conversation mode '%s' (fresh, summary, full)", s)
}

// TaskRecord is one completed task in the current session.
type TaskRecord struct {
	Number    int
	Prompt    string
	Summary   string
	RawOutput string
}
