// Package exclusion holds the user-maintained list of lowercase terms that
// are removed from every derived view.
package exclusion

import "strings"

// Set is an ordered, append-only list of lowercase terms. Duplicates and
// the empty string are accepted as-is.
type Set []string

// Add lowercases term and returns a new Set with it appended. The receiver is
// never modified, so older snapshots stay valid.
func (s Set) Add(term string) Set {
	next := make(Set, len(s), len(s)+1)
	copy(next, s)
	return append(next, strings.ToLower(term))
}

// Contains reports whether token is present. token is compared as given;
// callers lowercase it first.
func (s Set) Contains(token string) bool {
	for _, t := range s {
		if t == token {
			return true
		}
	}
	return false
}
