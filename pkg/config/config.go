// Package config loads brepl.toml: editing parameters, color overrides,
// and the keymap from logical action names to key identifiers.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/BurntSushi/toml"

	"github.com/myint-archive/brepl/pkg/editor"
)

const FileName = "brepl.toml"

type Config struct {
	Editor Editor              `toml:"editor"`
	Colors map[string]string   `toml:"colors"`
	Keys   map[string][]string `toml:"keys"`
}

type Editor struct {
	TabWidth      int    `toml:"tab_width"`
	PasteTimeMS   int    `toml:"paste_time_ms"`
	HistoryFile   string `toml:"history_file"`
	HistoryLength int    `toml:"history_length"`
	Language      string `toml:"language"`
	Prompt        string `toml:"prompt"`
	PromptMore    string `toml:"prompt_more"`
}

func Default() *Config {
	return &Config{
		Editor: Editor{
			TabWidth:      4,
			PasteTimeMS:   20,
			HistoryLength: 1000,
			Language:      "python",
			Prompt:        ">>> ",
			PromptMore:    "... ",
		},
	}
}

// Load decodes path over the defaults. An empty path returns plain
// defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return cfg, nil
}

// Find walks up from dir looking for brepl.toml, stopping at the first
// directory containing .git or at the filesystem root.
func Find(dir string) (string, bool) {
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return "", false
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func (c *Config) PasteTime() time.Duration {
	return time.Duration(c.Editor.PasteTimeMS) * time.Millisecond
}

// Keymap merges the key overrides onto the defaults. Unknown action names
// are configuration errors, not silently dropped.
func (c *Config) Keymap() (editor.Keymap, error) {
	table := editor.DefaultKeymap()
	known := make(map[editor.Action]bool, len(table))
	for action := range table {
		known[action] = true
	}
	for name, keys := range c.Keys {
		action := editor.Action(name)
		if !known[action] {
			return nil, fmt.Errorf("keymap: unknown action %q", name)
		}
		table[action] = keys
	}
	return editor.NewKeymap(table), nil
}

// Styles applies color overrides onto the default style table. Token tags
// are addressed directly ("keyword", "string", ...); the remaining names
// address the chrome.
func (c *Config) Styles() editor.Styles {
	st := editor.DefaultStyles()
	for name, color := range c.Colors {
		fg := lipgloss.Color(color)
		switch name {
		case "prompt":
			st.Prompt = st.Prompt.Foreground(fg)
		case "status":
			st.Status = st.Status.Foreground(fg)
		case "error":
			st.Error = st.Error.Foreground(fg)
		case "border":
			st.Border = st.Border.Foreground(fg)
		default:
			if _, ok := st.Token[name]; ok {
				st.Token[name] = st.Token[name].Foreground(fg)
			}
		}
	}
	return st
}

// HistoryPath resolves the configured history file, defaulting to the user
// config dir.
func (c *Config) HistoryPath() (string, error) {
	if c.Editor.HistoryFile != "" {
		return c.Editor.HistoryFile, nil
	}
	return editor.DefaultHistoryPath()
}
