package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myint-archive/brepl/pkg/editor"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Editor.TabWidth)
	assert.Equal(t, 20*time.Millisecond, cfg.PasteTime())
	assert.Equal(t, ">>> ", cfg.Editor.Prompt)
	assert.Equal(t, 1000, cfg.Editor.HistoryLength)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
[editor]
tab_width = 8
paste_time_ms = 50
prompt = "py> "

[colors]
prompt = "99"
keyword = "201"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Editor.TabWidth)
	assert.Equal(t, 50*time.Millisecond, cfg.PasteTime())
	assert.Equal(t, "py> ", cfg.Editor.Prompt)
	// Untouched fields keep their defaults.
	assert.Equal(t, "... ", cfg.Editor.PromptMore)
	assert.Equal(t, "python", cfg.Editor.Language)
}

func TestLoadRejectsBadTOML(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "[editor\ntab_width = 8")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestKeymapMergesOverDefaults(t *testing.T) {
	cfg := Default()
	cfg.Keys = map[string][]string{
		"complete": {"ctrl+space"},
	}
	km, err := cfg.Keymap()
	require.NoError(t, err)
	assert.Equal(t, editor.ActionComplete, km.Resolve("ctrl+space"))
	// Replaced, not appended.
	assert.Equal(t, editor.ActionNone, km.Resolve("tab"))
	// Untouched bindings survive.
	assert.Equal(t, editor.ActionSubmit, km.Resolve("enter"))
	assert.Equal(t, editor.ActionInterrupt, km.Resolve("ctrl+c"))
}

func TestKeymapRejectsUnknownAction(t *testing.T) {
	cfg := Default()
	cfg.Keys = map[string][]string{"frobnicate": {"ctrl+x"}}
	_, err := cfg.Keymap()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "frobnicate")
}

func TestFindWalksUpToConfig(t *testing.T) {
	root := t.TempDir()
	path := writeConfig(t, root, "")
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	found, ok := Find(nested)
	assert.True(t, ok)
	assert.Equal(t, path, found)
}

func TestFindStopsAtRepoBoundary(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "")
	repo := filepath.Join(root, "repo")
	require.NoError(t, os.MkdirAll(filepath.Join(repo, ".git"), 0o755))
	inner := filepath.Join(repo, "src")
	require.NoError(t, os.MkdirAll(inner, 0o755))

	// The config above the .git boundary is out of reach.
	_, ok := Find(inner)
	assert.False(t, ok)
}

func TestHistoryPathPrefersConfigured(t *testing.T) {
	cfg := Default()
	cfg.Editor.HistoryFile = "/tmp/custom-history"
	path, err := cfg.HistoryPath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom-history", path)
}
