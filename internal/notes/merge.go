package notes

import (
	"strings"
)

// Rule is how an update to a category combines with what is stored.
type Rule int

const (
	// RuleAppend adds new content after the existing content.
	RuleAppend Rule = iota
	// RuleReplace overwrites the stored content.
	RuleReplace
)

// RuleFor returns the merge rule of a category. The plan is a snapshot of the
// current state; every other category is a log.
func RuleFor(c Category) Rule {
	if c == Plan {
		return RuleReplace
	}
	return RuleAppend
}

// Update carries new content per category. A category without a key has no
// update and is left untouched.
type Update map[Category]string

// HasUpdates reports whether any category carries new content.
func (u Update) HasUpdates() bool {
	return len(u) > 0
}

// Summary names the updated categories, or "no updates".
func (u Update) Summary() string {
	var parts []string
	for _, c := range Categories {
		if _, ok := u[c]; ok {
			parts = append(parts, string(c))
		}
	}
	if len(parts) == 0 {
		return "no updates"
	}
	return strings.Join(parts, ", ")
}

// Apply merges an update into the store, one category at a time in the fixed
// category order. Calls on stores sharing a directory are serialized.
func Apply(s *Store, u Update) error {
	mu := s.lock()
	mu.Lock()
	defer mu.Unlock()

	for _, c := range Categories {
		content, ok := u[c]
		if !ok {
			continue
		}

		var err error
		switch RuleFor(c) {
		case RuleReplace:
			err = s.Write(c, content)
		case RuleAppend:
			err = s.Append(c, content)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
