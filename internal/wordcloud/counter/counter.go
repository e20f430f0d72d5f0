// Package counter computes word frequencies the way the word-cloud service
// reports them: lowercase, whitespace-separated tokens, counted in order of
// first appearance.
package counter

import (
	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/internal/analysis/frequency"
	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/internal/analysis/tokenizer"
)

// Result carries the frequencies plus the totals metrics and analytics need.
type Result struct {
	Entries     []frequency.Entry
	TotalTokens int
}

// Count returns one entry per distinct token, ordered by first occurrence.
func Count(paragraph string) Result {
	words := tokenizer.Fields(paragraph)
	index := make(map[string]int, len(words))
	entries := make([]frequency.Entry, 0, len(words)/2+1)
	for _, w := range words {
		if i, ok := index[w]; ok {
			entries[i].Value++
			continue
		}
		index[w] = len(entries)
		entries = append(entries, frequency.Entry{Text: w, Value: 1})
	}
	return Result{Entries: entries, TotalTokens: len(words)}
}

// CountWord returns how many whitespace-separated tokens of paragraph equal
// word, ignoring case. Punctuation is part of a token, so "cat." is not "cat".
func CountWord(paragraph, word string) int {
	target := tokenizer.Fields(word)
	if len(target) != 1 {
		return 0
	}
	n := 0
	for _, w := range tokenizer.Fields(paragraph) {
		if w == target[0] {
			n++
		}
	}
	return n
}
