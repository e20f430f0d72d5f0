// Package frequency defines the per-word counts the word-cloud service
// computes and the boundary the analysis core fetches them through.
package frequency

import (
	"context"
	"strings"
)

// Entry is one token and its occurrence count in the unfiltered document.
type Entry struct {
	Text  string `json:"text"`
	Value int    `json:"value"`
}

// Provider computes frequencies for a paragraph, usually remotely.
type Provider interface {
	Frequencies(ctx context.Context, paragraph string) ([]Entry, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, paragraph string) ([]Entry, error)

func (f ProviderFunc) Frequencies(ctx context.Context, paragraph string) ([]Entry, error) {
	return f(ctx, paragraph)
}

// Excluder reports whether a lowercase token is excluded.
type Excluder interface {
	Contains(token string) bool
}

// Filter drops entries whose lowercase text is excluded and keeps the
// relative order of the rest. The input slice is not modified.
func Filter(entries []Entry, exclusions Excluder) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if exclusions != nil && exclusions.Contains(strings.ToLower(e.Text)) {
			continue
		}
		out = append(out, e)
	}
	return out
}
