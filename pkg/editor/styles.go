package editor

import "github.com/charmbracelet/lipgloss/v2"

// Styles collects every lipgloss style the backends draw with, so both
// rendering paths color identically and the config can override colors in
// one place.
type Styles struct {
	Prompt    lipgloss.Style
	Status    lipgloss.Style
	Error     lipgloss.Style
	Selected  lipgloss.Style
	ActiveArg lipgloss.Style
	ParenHL   lipgloss.Style
	Border    lipgloss.Style

	// Token maps tokenizer style tags to styles; missing tags render plain.
	Token map[string]lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Prompt:    lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true),
		Status:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Selected:  lipgloss.NewStyle().Reverse(true),
		ActiveArg: lipgloss.NewStyle().Bold(true),
		ParenHL:   lipgloss.NewStyle().Reverse(true).Bold(true),
		Border:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Token: map[string]lipgloss.Style{
			"keyword":  lipgloss.NewStyle().Foreground(lipgloss.Color("204")),
			"name":     lipgloss.NewStyle(),
			"string":   lipgloss.NewStyle().Foreground(lipgloss.Color("114")),
			"number":   lipgloss.NewStyle().Foreground(lipgloss.Color("215")),
			"comment":  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
			"operator": lipgloss.NewStyle().Foreground(lipgloss.Color("75")),
			"error":    lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		},
	}
}

// RenderSegments colors tokenized text, overriding the style at hlCol (a
// rune offset, -1 for none) with the paren-highlight style.
func (st Styles) RenderSegments(segs []Segment, hlCol int) string {
	var out string
	col := 0
	for _, seg := range segs {
		style, ok := st.Token[seg.Style]
		rs := []rune(seg.Text)
		if hlCol >= col && hlCol < col+len(rs) {
			i := hlCol - col
			if ok {
				out += style.Render(string(rs[:i]))
			} else {
				out += string(rs[:i])
			}
			out += st.ParenHL.Render(string(rs[i]))
			if ok {
				out += style.Render(string(rs[i+1:]))
			} else {
				out += string(rs[i+1:])
			}
		} else if ok {
			out += style.Render(seg.Text)
		} else {
			out += seg.Text
		}
		col += len(rs)
	}
	return out
}
