package notes

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidCategory is returned for a name outside the fixed category set.
var ErrInvalidCategory = errors.New("invalid note category")

// Category names one of the four knowledge files kept per project.
type Category string

const (
	Architecture Category = "architecture"
	Decisions    Category = "decisions"
	Failures     Category = "failures"
	Plan         Category = "plan"
)

// Categories lists every category in the order they are rendered and merged.
var Categories = []Category{Architecture, Decisions, Failures, Plan}

// ParseCategory validates a category name.
func ParseCategory(name string) (Category, error) {
	for _, c := range Categories {
		if string(c) == name {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w '%s'. Valid: %s", ErrInvalidCategory, name, CategoryNames())
}

// CategoryNames returns the valid names joined for help and error text.
func CategoryNames() string {
	names := make([]string, len(Categories))
	for i, c := range Categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

// Notes holds the content of every category. Missing keys read as empty.
type Notes map[Category]string
