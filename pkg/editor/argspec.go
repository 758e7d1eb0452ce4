package editor

import (
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
)

// ArgSpec describes a callable's signature for the argument-hint popup.
// Defaults aligns with the tail of Params: Params[len(Params)-len(Defaults)+i]
// takes Defaults[i].
type ArgSpec struct {
	Name        string
	Params      []string
	Defaults    []string
	VarArgs     string
	KwOnly      []string
	KwDefaults  map[string]string
	VarKwargs   string
	BoundMethod bool

	// ActiveIndex marks the positional argument under the cursor; -1 when
	// the cursor is on a keyword argument, named by ActiveName.
	ActiveIndex int
	ActiveName  string
}

// Render lays the signature out as wrapped lines no wider than maxWidth,
// with the argument under the cursor passed through active. Bound methods
// shift the active index by one for the implicit receiver.
func (a *ArgSpec) Render(maxWidth int, active lipgloss.Style) []string {
	activeIdx := a.ActiveIndex
	if a.BoundMethod && activeIdx >= 0 {
		activeIdx++
	}

	var pieces []string
	firstDefault := len(a.Params) - len(a.Defaults)
	for i, p := range a.Params {
		s := p
		if i >= firstDefault {
			s += "=" + a.Defaults[i-firstDefault]
		}
		if i == activeIdx || (a.ActiveName != "" && p == a.ActiveName) {
			s = active.Render(s)
		}
		pieces = append(pieces, s)
	}
	if a.VarArgs != "" {
		pieces = append(pieces, "*"+a.VarArgs)
	}
	if len(a.KwOnly) > 0 {
		if a.VarArgs == "" {
			pieces = append(pieces, "*")
		}
		for _, k := range a.KwOnly {
			s := k
			if d, ok := a.KwDefaults[k]; ok {
				s += "=" + d
			}
			if a.ActiveName != "" && k == a.ActiveName {
				s = active.Render(s)
			}
			pieces = append(pieces, s)
		}
	}
	if a.VarKwargs != "" {
		pieces = append(pieces, "**"+a.VarKwargs)
	}

	head := a.Name + ": ("
	var lines []string
	cur := head
	for i, p := range pieces {
		sep := ""
		if i > 0 {
			sep = ", "
		}
		if cur != head && ansi.StringWidth(cur)+ansi.StringWidth(sep+p) > maxWidth {
			lines = append(lines, cur+",")
			cur = "  " + p
			continue
		}
		cur += sep + p
	}
	if ansi.StringWidth(cur) >= maxWidth {
		lines = append(lines, cur)
		cur = ""
	}
	cur += ")"
	lines = append(lines, cur)
	return lines
}
