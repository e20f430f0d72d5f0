package exclusion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddLowercasesAndAppends(t *testing.T) {
	var s Set
	s = s.Add("The").Add("FOX")
	assert.Equal(t, Set{"the", "fox"}, s)
	assert.True(t, s.Contains("the"))
	assert.False(t, s.Contains("The"))
}

func TestAddToleratesDuplicatesAndEmpty(t *testing.T) {
	s := Set{}.Add("a").Add("A").Add("")
	assert.Equal(t, Set{"a", "a", ""}, s)
	assert.True(t, s.Contains(""))
}

func TestAddDoesNotMutateReceiver(t *testing.T) {
	base := Set{"x"}.Add("y")
	first := base.Add("one")
	second := base.Add("two")
	assert.Equal(t, Set{"x", "y"}, base)
	assert.Equal(t, Set{"x", "y", "one"}, first)
	assert.Equal(t, Set{"x", "y", "two"}, second)
}
