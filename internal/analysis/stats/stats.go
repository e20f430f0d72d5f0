// Package stats computes longest, shortest and mean token length over an
// exclusion-filtered document.
package stats

import (
	"unicode/utf8"

	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/internal/analysis/tokenizer"
)

// Statistics summarises token lengths. Lengths are counted in code points.
type Statistics struct {
	Longest       string  `json:"longest_word"`
	Shortest      string  `json:"shortest_word"`
	AverageLength float64 `json:"average_word_length"`
}

// Compute splits filteredText on a literal space and scans the tokens.
// Ties keep the first occurrence. An empty input is one empty token, which
// yields empty longest/shortest and an average of 0.
func Compute(filteredText string) Statistics {
	words := tokenizer.SplitLiteral(filteredText)

	longest := ""
	longestLen := 0
	shortest := words[0]
	shortestLen := utf8.RuneCountInString(shortest)
	total := 0

	for _, w := range words {
		n := utf8.RuneCountInString(w)
		total += n
		if n > longestLen {
			longest, longestLen = w, n
		}
		if n < shortestLen {
			shortest, shortestLen = w, n
		}
	}

	return Statistics{
		Longest:       longest,
		Shortest:      shortest,
		AverageLength: float64(total) / float64(len(words)),
	}
}
