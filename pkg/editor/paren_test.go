package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchParenForward(t *testing.T) {
	hl, ok := MatchParen(nil, "(a + b)", 1)
	require.True(t, ok)
	assert.Equal(t, -1, hl.LineIndex)
	assert.Equal(t, 6, hl.Col)
}

func TestMatchParenBackward(t *testing.T) {
	hl, ok := MatchParen(nil, "f(x[0])", 7)
	require.True(t, ok)
	assert.Equal(t, 1, hl.Col)
}

func TestMatchParenAcrossTurnLines(t *testing.T) {
	prev := []string{"items = [", "    1, 2,"}
	hl, ok := MatchParen(prev, "]", 1)
	require.True(t, ok)
	assert.Equal(t, 0, hl.LineIndex)
	assert.Equal(t, 8, hl.Col)
}

func TestMatchParenNone(t *testing.T) {
	_, ok := MatchParen(nil, "abc", 3)
	assert.False(t, ok)

	_, ok = MatchParen(nil, "(unclosed", 1)
	assert.False(t, ok)
}

func TestMatchParenSkipsStringsForward(t *testing.T) {
	hl, ok := MatchParen(nil, `(")" + x)`, 1)
	require.True(t, ok)
	assert.Equal(t, 8, hl.Col)
}
