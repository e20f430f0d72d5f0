// Package search counts case-insensitive whole-word occurrences of a term and
// renders a copy of the document with each occurrence wrapped in a marker.
package search

import (
	"regexp"
	"strings"
)

// Marker wraps a highlighted occurrence.
type Marker struct {
	Open  string
	Close string
}

// DefaultMarker is the HTML annotation the web front end styles.
var DefaultMarker = Marker{
	Open:  `<span class="bg-yellow-200 text-red-600">`,
	Close: `</span>`,
}

// Result is the outcome of a search over one document.
type Result struct {
	Term        string `json:"term"`
	MatchCount  int    `json:"match_count"`
	Highlighted string `json:"highlighted"`
}

// Highlighter applies a Marker to matches.
type Highlighter struct {
	Marker Marker
	// Wrap, when set, replaces Marker and styles each match itself.
	Wrap func(match string) string
}

// Search runs with DefaultMarker.
func Search(document, term string) Result {
	return Highlighter{Marker: DefaultMarker}.Search(document, term)
}

// Search counts case-insensitive whole-word matches of term and highlights
// those same occurrences in the document. An empty term matches nothing.
func (h Highlighter) Search(document, term string) Result {
	res := Result{Term: term, Highlighted: document}
	if term == "" {
		return res
	}
	pattern := wordPattern(term)
	matches := pattern.FindAllStringIndex(document, -1)
	res.MatchCount = len(matches)
	if res.MatchCount == 0 {
		return res
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		b.WriteString(document[last:m[0]])
		b.WriteString(h.wrap(document[m[0]:m[1]]))
		last = m[1]
	}
	b.WriteString(document[last:])
	res.Highlighted = b.String()
	return res
}

func (h Highlighter) wrap(match string) string {
	if h.Wrap != nil {
		return h.Wrap(match)
	}
	return h.Marker.Open + match + h.Marker.Close
}

// wordPattern matches term case-insensitively and only on word boundaries;
// regex metacharacters in term are matched literally.
func wordPattern(term string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(term) + `\b`)
}
