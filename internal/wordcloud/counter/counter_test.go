package counter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/internal/analysis/frequency"
)

func TestCountFirstOccurrenceOrder(t *testing.T) {
	res := Count("The cat saw the  Dog\nand THE cat")
	assert.Equal(t, []frequency.Entry{
		{"the", 3}, {"cat", 2}, {"saw", 1}, {"dog", 1}, {"and", 1},
	}, res.Entries)
	assert.Equal(t, 8, res.TotalTokens)
}

func TestCountEmpty(t *testing.T) {
	res := Count("   ")
	assert.Empty(t, res.Entries)
	assert.NotNil(t, res.Entries)
	assert.Zero(t, res.TotalTokens)
}

func TestCountWord(t *testing.T) {
	assert.Equal(t, 2, CountWord("The Cat sat on the cat mat", "CAT"))
	assert.Equal(t, 0, CountWord("cat. catalog", "cat"))
	assert.Equal(t, 0, CountWord("anything", ""))
	assert.Equal(t, 0, CountWord("two words", "two words"))
}
