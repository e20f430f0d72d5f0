// Package tokenizer splits documents into tokens. Two splitting rules
// coexist: a literal single-space split used for exclusion filtering and
// statistics, and a whitespace-run split used for counting. They disagree on
// irregular spacing and callers rely on that difference.
package tokenizer

import (
	"strings"
)

// Separator is the literal token separator used by FilterExcluded and
// SplitLiteral.
const Separator = " "

// Excluder reports whether a lowercase token must be dropped.
type Excluder interface {
	Contains(token string) bool
}

// FilterExcluded splits text on single spaces, drops every token whose
// lowercase form is excluded and rejoins the rest with single spaces.
// Consecutive separators are not collapsed: "a  b" yields an empty token that
// survives unless the empty string itself is excluded.
func FilterExcluded(text string, exclusions Excluder) string {
	parts := strings.Split(text, Separator)
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		if exclusions != nil && exclusions.Contains(strings.ToLower(part)) {
			continue
		}
		kept = append(kept, part)
	}
	return strings.Join(kept, Separator)
}

// CountWords returns the number of non-empty tokens separated by runs of
// whitespace.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// SplitLiteral splits on a single literal space. The empty string yields one
// empty token.
func SplitLiteral(text string) []string {
	return strings.Split(text, Separator)
}

// Fields lowercases text and splits it on whitespace runs. This is the
// tokenisation the word-cloud service counts with.
func Fields(text string) []string {
	return strings.Fields(strings.ToLower(text))
}
