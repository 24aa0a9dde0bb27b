package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderLookups(t *testing.T) {
	h := NewHeaders("Alpha", "a Space Col", " padded ")

	i, ok := h.Find("Alpha")
	require.True(t, ok)
	assert.Equal(t, 0, i)

	_, ok = h.Find("alpha")
	assert.False(t, ok)

	i, ok = h.FindIgnoreCase("ALPHA")
	require.True(t, ok)
	assert.Equal(t, 0, i)

	// Identifiers cannot contain spaces, so a spaced header must still be
	// reachable from a squashed query.
	i, ok = h.FindIgnoreCaseAndWS("aSpaceCol")
	require.True(t, ok)
	assert.Equal(t, 1, i)

	// Construction trims the names themselves.
	i, ok = h.Find("padded")
	require.True(t, ok)
	assert.Equal(t, 2, i)
}

func TestEqIgnoreCaseAndWS(t *testing.T) {
	assert.True(t, eqIgnoreCaseAndWS("", ""))
	assert.True(t, eqIgnoreCaseAndWS("  ", " "))
	assert.True(t, eqIgnoreCaseAndWS("  a  ", " A"))
	assert.False(t, eqIgnoreCaseAndWS("ab", "a"))
}

func TestFuzzyMatch(t *testing.T) {
	h := NewHeaders("Voltage", "Current", "Resistance")

	matches := h.FuzzyMatch("voltge")
	require.NotEmpty(t, matches)
	assert.Equal(t, "Voltage", matches[0])

	assert.Empty(t, h.FuzzyMatch("zzzzzzzz"))
}

func TestSuggestHelp(t *testing.T) {
	h := NewHeaders("a Space Col", "other")

	help := h.SuggestHelp("aSpceCol")
	assert.Contains(t, help, "these headers are similar:")
	assert.Contains(t, help, "aSpaceCol") // whitespace stripped for paste-back

	help = h.SuggestHelp("qqqqqqqq")
	assert.Contains(t, help, "no columns match")
}
