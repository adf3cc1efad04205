package extraction

import (
	"strings"

	"github.com/andrewimm/clancy/internal/notes"
)

// NoUpdates is the reply a section carries when nothing new was learned.
const NoUpdates = "NO_UPDATES"

var sections = []struct {
	header   string
	category notes.Category
}{
	{"### ARCHITECTURE", notes.Architecture},
	{"### DECISIONS", notes.Decisions},
	{"### FAILURES", notes.Failures},
	{"### PLAN", notes.Plan},
}

// ParseResponse splits an analysis reply into per-category updates. A section
// runs from its header to the first later header present after it. Missing,
// blank and NO_UPDATES sections produce no update.
func ParseResponse(reply string) notes.Update {
	update := notes.Update{}

	for i, sec := range sections {
		start := strings.Index(reply, sec.header)
		if start < 0 {
			continue
		}
		contentStart := start + len(sec.header)
		rest := reply[contentStart:]

		end := len(rest)
		for _, next := range sections[i+1:] {
			if pos := strings.Index(rest, next.header); pos >= 0 {
				end = pos
				break
			}
		}

		content := strings.TrimSpace(rest[:end])
		if isNoUpdate(content) {
			continue
		}
		update[sec.category] = content
	}

	return update
}

func isNoUpdate(content string) bool {
	return content == "" ||
		strings.EqualFold(content, NoUpdates) ||
		strings.HasPrefix(content, NoUpdates)
}
