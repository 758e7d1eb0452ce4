package editor

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryBrowse(t *testing.T) {
	h := NewHistory(10)
	h.Append("one")
	h.Append("two")
	h.Append("three")

	h.BeginEdit("live")
	got, ok := h.Back()
	require.True(t, ok)
	assert.Equal(t, "three", got)
	got, _ = h.Back()
	assert.Equal(t, "two", got)
	got, _ = h.Back()
	assert.Equal(t, "one", got)

	// Stepping past the oldest stays at the oldest.
	got, ok = h.Back()
	require.True(t, ok)
	assert.Equal(t, "one", got)
}

func TestHistoryForwardYieldsLiveText(t *testing.T) {
	h := NewHistory(10)
	h.Append("one")
	h.Append("two")

	h.BeginEdit("in progress")
	h.Back()
	h.Back()
	got, _ := h.Forward()
	assert.Equal(t, "two", got)
	got, ok := h.Forward()
	require.True(t, ok)
	assert.Equal(t, "in progress", got)
	assert.False(t, h.Browsing())

	// Idempotent at the boundary: further forward steps keep yielding the
	// live text.
	for i := 0; i < 3; i++ {
		got, ok = h.Forward()
		require.True(t, ok)
		assert.Equal(t, "in progress", got)
	}
}

func TestHistoryFirstLast(t *testing.T) {
	h := NewHistory(10)
	_, ok := h.First()
	assert.False(t, ok)

	h.Append("a")
	h.Append("b")
	h.BeginEdit("")
	got, _ := h.First()
	assert.Equal(t, "a", got)
	got, _ = h.Last()
	assert.Equal(t, "b", got)
}

func TestHistoryAppendOnlyOrdered(t *testing.T) {
	h := NewHistory(10)
	h.Append("x")
	h.Append("x")
	h.Append("y")
	assert.Equal(t, []string{"x", "x", "y"}, h.Entries())
}

func TestHistoryBounded(t *testing.T) {
	h := NewHistory(3)
	for _, s := range []string{"1", "2", "3", "4", "5"} {
		h.Append(s)
	}
	assert.Equal(t, []string{"3", "4", "5"}, h.Entries())
}

func TestHistoryStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history")
	store := NewHistoryStore(path, 100)

	require.NoError(t, store.AppendLine("plain"))
	require.NoError(t, store.AppendLine("with\nnewline"))
	require.NoError(t, store.AppendLine(`back\slash`))

	h, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"plain", "with\nnewline", `back\slash`}, h.Entries())
}

func TestHistoryStoreMissingFile(t *testing.T) {
	store := NewHistoryStore(filepath.Join(t.TempDir(), "nope"), 10)
	h, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 0, h.Len())
}

func TestHistoryStoreTruncatesOversizedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history")
	var lines []string
	for i := 0; i < 10; i++ {
		lines = append(lines, string(rune('a'+i)))
	}
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))

	store := NewHistoryStore(path, 4)
	h, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"g", "h", "i", "j"}, h.Entries())

	// The file itself was rewritten to the bound.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "g\nh\ni\nj\n", string(data))
}
