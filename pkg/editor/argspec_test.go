package editor

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// marker style makes the active argument findable in plain text.
var marker = lipgloss.NewStyle()

func TestArgSpecRenderBasic(t *testing.T) {
	spec := &ArgSpec{
		Name:        "connect",
		Params:      []string{"host", "port", "timeout"},
		Defaults:    []string{"30"},
		ActiveIndex: 1,
	}
	lines := spec.Render(80, marker)
	require.Len(t, lines, 1)
	assert.Equal(t, "connect: (host, port, timeout=30)", lines[0])
}

func TestArgSpecRenderVariadicsAndKwonly(t *testing.T) {
	spec := &ArgSpec{
		Name:       "run",
		Params:     []string{"cmd"},
		VarArgs:    "args",
		KwOnly:     []string{"env", "shell"},
		KwDefaults: map[string]string{"shell": "False"},
		VarKwargs:  "extra",
	}
	lines := spec.Render(120, marker)
	require.Len(t, lines, 1)
	assert.Equal(t, "run: (cmd, *args, env, shell=False, **extra)", lines[0])
}

func TestArgSpecRenderStarAloneBeforeKwonly(t *testing.T) {
	spec := &ArgSpec{
		Name:   "f",
		Params: []string{"a"},
		KwOnly: []string{"k"},
	}
	lines := spec.Render(80, marker)
	assert.Equal(t, "f: (a, *, k)", lines[0])
}

func TestArgSpecRenderWrapsLongSignatures(t *testing.T) {
	spec := &ArgSpec{
		Name:   "configure",
		Params: []string{"alpha_setting", "beta_setting", "gamma_setting", "delta_setting", "epsilon_setting"},
	}
	lines := spec.Render(40, marker)
	assert.Greater(t, len(lines), 1)
	for _, line := range lines {
		assert.LessOrEqual(t, len(line), 41)
	}
	// Nothing lost in the wrap.
	joined := strings.Join(lines, " ")
	for _, p := range spec.Params {
		assert.Contains(t, joined, p)
	}
}

func TestArgSpecBoundMethodShiftsActiveIndex(t *testing.T) {
	bold := lipgloss.NewStyle().Bold(true)
	spec := &ArgSpec{
		Name:        "method",
		Params:      []string{"self", "x", "y"},
		BoundMethod: true,
		ActiveIndex: 0,
	}
	lines := spec.Render(80, bold)
	// The receiver shifts the active slot: index 0 bolds "x", not "self".
	assert.Contains(t, lines[0], bold.Render("x"))
}
