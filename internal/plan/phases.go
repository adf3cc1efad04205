// Package plan reads phased work plans from markdown.
//
// A phase starts at a second-level heading that mentions "phase" or starts
// with a digit:
//
//	## Phase 1: Schema
//	## 2. Readers
//
// Other second-level headings such as "## Notes" end the current phase and
// their content is ignored.
package plan

import (
	"regexp"
	"strings"
)

// Phase is one unit of work from a plan document.
type Phase struct {
	Title       string
	Description string
}

// Prompt returns the task prompt used to run the phase.
func (p Phase) Prompt() string {
	return p.Title + "\n\n" + p.Description
}

var headingPattern = regexp.MustCompile(`^#{1,2}(\s|$)`)

// ParsePhases returns the phases of a plan document in order.
func ParsePhases(document string) []Phase {
	var (
		phases  []Phase
		current *Phase
		desc    strings.Builder
	)

	finish := func() {
		if current == nil {
			return
		}
		current.Description = strings.TrimSpace(desc.String())
		phases = append(phases, *current)
		current = nil
		desc.Reset()
	}

	for _, line := range strings.Split(document, "\n") {
		line = strings.TrimSuffix(line, "\r")

		if strings.HasPrefix(line, "## ") {
			finish()
			header := strings.TrimSpace(strings.TrimPrefix(line, "## "))
			if isPhaseHeader(header) {
				current = &Phase{Title: cleanTitle(header)}
			}
			continue
		}

		if current == nil || headingPattern.MatchString(line) {
			continue
		}
		if strings.TrimSpace(line) == "" && desc.Len() == 0 {
			continue
		}
		desc.WriteString(line)
		desc.WriteString("\n")
	}
	finish()

	return phases
}

func isPhaseHeader(header string) bool {
	if strings.Contains(strings.ToLower(header), "phase") {
		return true
	}
	return header != "" && header[0] >= '0' && header[0] <= '9'
}

// cleanTitle strips "1.", "Phase 2:" and similar numbering from a header. A
// header that is nothing but numbering is kept as is.
func cleanTitle(header string) string {
	title := strings.TrimLeft(header, "0123456789.: ")
	for strings.HasPrefix(title, "Phase") {
		title = strings.TrimPrefix(title, "Phase")
	}
	title = strings.TrimLeft(title, "0123456789.: ")
	if title == "" {
		return header
	}
	return title
}
