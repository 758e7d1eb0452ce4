// Package teaui is the widget-toolkit backend: the same editing session
// driven through a bubbletea event loop, with the scrollback in a viewport
// and the popup composed into the view.
package teaui

import (
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/bubbles/v2/viewport"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/myint-archive/brepl/pkg/editor"
	"github.com/myint-archive/brepl/pkg/popup"
)

const (
	idleInterval = 300 * time.Millisecond
	// debounceWindow rate-limits view recomputation during input bursts.
	debounceWindow = 16 * time.Millisecond

	argspecWidthFraction = 0.6
)

type tickMsg time.Time

type renderMsg struct{}

// Model is the bubbletea adapter around a Session. All mutation happens in
// Update, on the program goroutine, so the single-writer rule holds.
type Model struct {
	session *editor.Session
	km      editor.Keymap
	styles  editor.Styles

	// output is the evaluator's sink, drained into scrollback after each
	// dispatch.
	output *bytes.Buffer

	vp         viewport.Model
	scrollback strings.Builder
	width      int
	height     int
	ready      bool

	view         string
	lastRender   time.Time
	renderQueued bool
}

func New(session *editor.Session, km editor.Keymap, styles editor.Styles, output *bytes.Buffer) *Model {
	return &Model{session: session, km: km, styles: styles, output: output}
}

// Run drives the model to completion.
func Run(m *Model) error {
	_, err := tea.NewProgram(m).Run()
	return err
}

func (m *Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(idleInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if !m.ready {
			m.vp = viewport.New(viewport.WithWidth(msg.Width), viewport.WithHeight(max(msg.Height-3, 1)))
			m.ready = true
		} else {
			m.vp.SetWidth(msg.Width)
			m.vp.SetHeight(max(msg.Height-3, 1))
		}
		if m.width > 0 && m.height > 0 {
			m.render()
		}
		return m, nil

	case tickMsg:
		if m.session.Tick(time.Time(msg)) {
			m.render()
		}
		return m, tick()

	case renderMsg:
		m.renderQueued = false
		m.render()
		return m, nil

	case tea.PasteMsg:
		m.session.NoteKey(time.Now())
		return m.dispatch(editor.ActionInsert, string(msg))

	case tea.KeyPressMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	m.session.NoteKey(time.Now())

	action := m.km.Resolve(msg.String())
	text := ""
	if action == editor.ActionNone {
		if msg.Text == "" {
			return m, nil
		}
		action = editor.ActionInsert
		text = msg.Text
	}
	return m.dispatch(action, text)
}

func (m *Model) dispatch(action editor.Action, text string) (tea.Model, tea.Cmd) {
	if action == editor.ActionInsert && strings.ContainsAny(text, "\r\n") {
		return m.insertLines(text)
	}
	if action == editor.ActionSubmit {
		m.commitTurn()
	}
	switch m.session.Apply(context.Background(), action, text) {
	case editor.EffectExit:
		return m, tea.Quit
	case editor.EffectClearScreen:
		m.scrollback.Reset()
	case editor.EffectNone:
		return m, nil
	}
	m.drainOutput()
	return m, m.scheduleRender()
}

// insertLines feeds a pasted payload through the session line by line: each
// newline submits the line assembled so far, as if enter had been pressed
// there.
func (m *Model) insertLines(text string) (tea.Model, tea.Cmd) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line != "" {
			m.session.Apply(context.Background(), editor.ActionInsert, line)
		}
		if i == len(lines)-1 {
			break
		}
		m.commitTurn()
		if m.session.Apply(context.Background(), editor.ActionSubmit, "") == editor.EffectExit {
			return m, tea.Quit
		}
		m.drainOutput()
	}
	return m, m.scheduleRender()
}

// commitTurn echoes the prompt and line into scrollback before the
// evaluator runs, so its output lands underneath.
func (m *Model) commitTurn() {
	f := m.session.Frame()
	m.scrollback.WriteString(m.styles.Prompt.Render(f.Prompt) + m.styles.RenderSegments(f.Segments, -1) + "\n")
}

func (m *Model) drainOutput() {
	if m.output.Len() == 0 {
		return
	}
	m.scrollback.WriteString(m.output.String())
	m.output.Reset()
}

// scheduleRender redraws immediately when the debounce window has passed,
// and otherwise defers to a single queued render so input bursts cost one
// recomputation.
func (m *Model) scheduleRender() tea.Cmd {
	since := time.Since(m.lastRender)
	if since >= debounceWindow {
		m.render()
		return nil
	}
	if m.renderQueued {
		return nil
	}
	m.renderQueued = true
	return tea.Tick(debounceWindow-since, func(time.Time) tea.Msg { return renderMsg{} })
}

// render recomputes the cached view: scrollback viewport, input line with a
// block cursor, popup, status bar.
func (m *Model) render() {
	m.lastRender = time.Now()
	if !m.ready || m.width <= 0 || m.height <= 0 {
		return
	}
	f := m.session.Frame()

	var b strings.Builder
	m.vp.SetContent(strings.TrimRight(m.scrollback.String(), "\n"))
	m.vp.GotoBottom()
	b.WriteString(m.vp.View())
	b.WriteString("\n")

	b.WriteString(m.styles.Prompt.Render(f.Prompt))
	b.WriteString(m.renderLineWithCursor(f))
	b.WriteString("\n")

	if box := m.renderPopup(f); box != "" {
		b.WriteString(box)
		b.WriteString("\n")
	}
	b.WriteString(m.styles.Status.Render(ansi.Truncate(f.Status, m.width-1, "…")))

	m.view = b.String()
}

func (m *Model) View() string {
	return m.view
}

// renderLineWithCursor colors the line and reverses the cell under the
// logical cursor, the common widget-toolkit stand-in for a hardware cursor.
func (m *Model) renderLineWithCursor(f editor.Frame) string {
	col := -1
	if f.Paren != nil && f.Paren.LineIndex == -1 {
		col = f.Paren.Col
	}
	styled := m.styles.RenderSegments(f.Segments, col)
	rs := []rune(f.Text)
	if f.Cursor >= len(rs) {
		return styled + m.styles.Selected.Render(" ")
	}
	// Re-render around the cursor cell; segment styling is re-applied on
	// either side.
	before := m.styles.RenderSegments(sliceSegments(f.Segments, 0, f.Cursor), col)
	under := m.styles.Selected.Render(string(rs[f.Cursor]))
	after := m.styles.RenderSegments(sliceSegments(f.Segments, f.Cursor+1, len(rs)), -1)
	return before + under + after
}

func (m *Model) renderPopup(f editor.Frame) string {
	if f.Popup == nil {
		return ""
	}
	var specLines []string
	if f.Popup.Spec != nil {
		specLines = f.Popup.Spec.Render(int(argspecWidthFraction*float64(m.width)), m.styles.ActiveArg)
	}
	cursorRow := min(m.vp.Height()+1, m.height-1)
	lay, ok := popup.Compute(popup.Geometry{Width: m.width, Height: m.height}, cursorRow, specLines, f.Popup.Items, f.Popup.Doc)
	if !ok {
		return ""
	}
	selected := func(cell string) string { return m.styles.Selected.Render(cell) }
	body := append([]string(nil), lay.SpecLines...)
	body = append(body, lay.GridLines(f.Popup.Selected, selected)...)
	body = append(body, lay.DocLines...)
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.styles.Border.GetForeground()).
		Width(lay.Width - 2)
	return box.Render(strings.Join(body, "\n"))
}

// sliceSegments cuts a styled segment list to the rune range [from, to).
func sliceSegments(segs []editor.Segment, from, to int) []editor.Segment {
	var out []editor.Segment
	col := 0
	for _, seg := range segs {
		rs := []rune(seg.Text)
		lo, hi := max(from-col, 0), min(to-col, len(rs))
		if lo < hi {
			out = append(out, editor.Segment{Style: seg.Style, Text: string(rs[lo:hi])})
		}
		col += len(rs)
	}
	return out
}
