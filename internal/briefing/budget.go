package briefing

import "strings"

// charsPerToken approximates tokenization for budgeting.
const charsPerToken = 4

// TruncationMarker ends a document that was cut to fit the budget.
const TruncationMarker = "\n\n[Context truncated due to token limit]\n"

// EstimateTokens approximates the token count of s.
func EstimateTokens(s string) int {
	return len(s) / charsPerToken
}

// EnforceBudget cuts doc to maxTokens, rewinding to the last section heading
// before the cut. It reports whether the document was cut. With no heading
// before the cut, or maxTokens <= 0, doc is returned unchanged.
func EnforceBudget(doc string, maxTokens int) (string, bool) {
	if maxTokens <= 0 || EstimateTokens(doc) <= maxTokens {
		return doc, false
	}

	maxChars := maxTokens * charsPerToken
	if len(doc) <= maxChars {
		return doc, false
	}

	pos := strings.LastIndex(doc[:maxChars], "\n## ")
	if pos < 0 {
		return doc, false
	}
	return doc[:pos] + TruncationMarker, true
}
