package term

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"

	"github.com/myint-archive/brepl/pkg/editor"
	"github.com/myint-archive/brepl/pkg/popup"
)

const (
	syncBegin = "\x1b[?2026h"
	syncEnd   = "\x1b[?2026l"

	pollTimeout = 300 * time.Millisecond
)

// argspecWidthFraction bounds the argument-hint header lines.
const argspecWidthFraction = 0.6

// Screen is the direct-backend render coordinator. It draws the live region
// (input line, popup, status bar) into the normal scrollback buffer using
// absolute cursor addressing, tracking the origin row of the live region as
// output scrolls by.
type Screen struct {
	t      *Terminal
	km     editor.Keymap
	styles editor.Styles

	// row is the 0-based screen row where the live region starts.
	row int
	// cursorRel is the row within the live region the hardware cursor was
	// left on by the last draw.
	cursorRel int
}

func NewScreen(t *Terminal, km editor.Keymap, styles editor.Styles) *Screen {
	s := &Screen{t: t, km: km, styles: styles}
	if r, ok := t.QueryCursorRow(pollTimeout); ok {
		s.row = r - 1
	}
	return s
}

func (s *Screen) Geometry() popup.Geometry {
	w, h := s.t.Size()
	return popup.Geometry{Width: w, Height: h}
}

// Write is the evaluator's output sink. Output scrolls in at the live
// region's origin; the next draw repaints the live region below it.
func (s *Screen) Write(p []byte) (int, error) {
	w, h := s.t.Size()
	s.moveTo(s.row, 0)
	s.t.WriteString("\x1b[J")
	text := strings.ReplaceAll(string(p), "\n", "\r\n")
	if _, err := s.t.Write([]byte(text)); err != nil {
		return 0, err
	}
	s.advance(outputRows(string(p), w), h)
	s.cursorRel = 0
	return len(p), nil
}

// DrawLine repaints the input line and status bar and positions the cursor,
// clearing stale wrapped remnants and any popup from the previous frame.
func (s *Screen) DrawLine(f editor.Frame) error {
	g := s.Geometry()
	if g.Degenerate() {
		return nil
	}
	s.clampRow(g)
	s.t.WriteString(syncBegin)
	defer s.t.WriteString(syncEnd)

	s.repaintTurnLine(f.RestoreParen, f.RestoreSegments, f, -1)
	s.repaintTurnLine(f.Paren, f.ParenSegments, f, parenCol(f.Paren))

	s.ensureRoom(s.inputRows(f, g.Width)+1, g)
	s.paintInput(f, g, nil)
	return nil
}

// DrawPopup lays out and draws the completion popup under the input line.
// Draw failures degrade to a minimal bordered box instead of propagating.
func (s *Screen) DrawPopup(f editor.Frame) error {
	if f.Popup == nil {
		return nil
	}
	g := s.Geometry()
	if g.Degenerate() {
		return nil
	}

	var specLines []string
	if f.Popup.Spec != nil {
		specLines = f.Popup.Spec.Render(int(argspecWidthFraction*float64(g.Width)), s.styles.ActiveArg)
	}
	cursorAbs := s.row + s.cursorFor(f, g.Width)/g.Width
	lay, ok := popup.Compute(g, cursorAbs, specLines, f.Popup.Items, f.Popup.Doc)
	if !ok {
		return nil
	}
	// Scrollback above the prompt cannot be repainted once overwritten, so
	// instead of opening upward this backend scrolls to make room below.
	if lay.Above {
		s.ensureRoom(s.inputRows(f, g.Width)+lay.Height+1, g)
		cursorAbs = s.row + s.cursorFor(f, g.Width)/g.Width
		lay, ok = popup.Compute(g, cursorAbs, specLines, f.Popup.Items, f.Popup.Doc)
		if !ok || lay.Above {
			return nil
		}
	}

	s.t.WriteString(syncBegin)
	defer s.t.WriteString(syncEnd)
	if err := s.paintPopup(f, g, lay); err != nil {
		s.paintFallbackBox(f, g)
	}
	return nil
}

// FinishTurn commits the prompt and line into scrollback; evaluator output
// and the next prompt follow below it.
func (s *Screen) FinishTurn(f editor.Frame) error {
	g := s.Geometry()
	if g.Degenerate() {
		return nil
	}
	s.t.WriteString(syncBegin)
	defer s.t.WriteString(syncEnd)
	s.moveTo(s.row, 0)
	s.t.WriteString("\x1b[J")
	s.t.WriteString(s.styledInput(f))
	s.t.WriteString("\r\n")
	s.advance(s.inputRows(f, g.Width), g.Height)
	s.cursorRel = 0
	return nil
}

func (s *Screen) ClearScreen() error {
	s.t.WriteString("\x1b[2J\x1b[H")
	s.row = 0
	s.cursorRel = 0
	return nil
}

// ReadEvent polls the terminal, resolves keys through the keymap, and skips
// unbound keys. The poll timeout surfaces as the idle event.
func (s *Screen) ReadEvent() (editor.Event, error) {
	for {
		ev, err := s.t.PollEvent(pollTimeout)
		if err != nil {
			return editor.Event{}, err
		}
		switch {
		case ev.Idle:
			return editor.Event{Idle: true}, nil
		case ev.Resize:
			s.clampRow(s.Geometry())
			return editor.Event{Resize: true}, nil
		case ev.Text != "":
			return editor.Event{Action: editor.ActionInsert, Text: ev.Text}, nil
		case ev.Key != "":
			if action := s.km.Resolve(ev.Key); action != editor.ActionNone {
				return editor.Event{Action: action}, nil
			}
		}
	}
}

// paintInput draws the live region at its origin: input line, optional
// popup lines already laid out by the caller, then the status bar, leaving
// the hardware cursor at the logical input position.
func (s *Screen) paintInput(f editor.Frame, g popup.Geometry, popupLines []string) {
	s.moveTo(s.row, 0)
	s.t.WriteString("\x1b[J")
	s.t.WriteString(s.styledInput(f))

	for _, line := range popupLines {
		s.t.WriteString("\r\n" + line)
	}
	status := ansi.Truncate(f.Status, g.Width-1, "…")
	s.t.WriteString("\r\n" + s.styles.Status.Render(status))

	cur := s.cursorFor(f, g.Width)
	curRow, curCol := cur/g.Width, cur%g.Width
	s.moveTo(s.row+curRow, curCol)
	s.cursorRel = curRow
}

func (s *Screen) paintPopup(f editor.Frame, g popup.Geometry, lay popup.Layout) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("popup draw: %v", r)
		}
	}()
	lines := make([]string, 0, lay.Height)
	border := s.styles.Border
	top := border.Render("┌" + strings.Repeat("─", lay.Width-2) + "┐")
	bottom := border.Render("└" + strings.Repeat("─", lay.Width-2) + "┘")
	lines = append(lines, top)
	selected := func(cell string) string { return s.styles.Selected.Render(cell) }
	body := append([]string(nil), lay.SpecLines...)
	body = append(body, lay.GridLines(f.Popup.Selected, selected)...)
	body = append(body, lay.DocLines...)
	for _, b := range body {
		pad := lay.Width - 2 - ansi.StringWidth(b)
		if pad < 0 {
			b = ansi.Truncate(b, lay.Width-2, "")
			pad = 0
		}
		lines = append(lines, border.Render("│")+b+strings.Repeat(" ", pad)+border.Render("│"))
	}
	lines = append(lines, bottom)
	s.paintInput(f, g, lines)
	return nil
}

// paintFallbackBox is the degraded popup when layout math or drawing went
// wrong: a minimal bordered box, nothing more.
func (s *Screen) paintFallbackBox(f editor.Frame, g popup.Geometry) {
	box := []string{"┌───┐", "│ … │", "└───┘"}
	s.paintInput(f, g, box)
}

// repaintTurnLine redraws one earlier line of the current turn, with the
// bracket at hlCol highlighted (or plain, restoring a stale highlight).
func (s *Screen) repaintTurnLine(hl *editor.ParenHighlight, segs []editor.Segment, f editor.Frame, hlCol int) {
	if hl == nil || hl.LineIndex < 0 || len(segs) == 0 {
		return
	}
	rowsUp := len(f.TurnLines) - hl.LineIndex
	row := s.row - rowsUp
	if row < 0 {
		return
	}
	s.moveTo(row, 0)
	s.t.WriteString("\x1b[2K")
	s.t.WriteString(s.styles.Prompt.Render("... ") + s.styles.RenderSegments(segs, hlCol))
}

func (s *Screen) styledInput(f editor.Frame) string {
	col := -1
	if f.Paren != nil && f.Paren.LineIndex == -1 {
		col = f.Paren.Col
	}
	return s.styles.Prompt.Render(f.Prompt) + s.styles.RenderSegments(f.Segments, col)
}

// inputRows is the number of physical rows the prompt and line occupy.
func (s *Screen) inputRows(f editor.Frame, width int) int {
	total := ansi.StringWidth(f.Prompt) + ansi.StringWidth(f.Text)
	return total/width + 1
}

// cursorFor is the flat cell offset of the logical cursor.
func (s *Screen) cursorFor(f editor.Frame, width int) int {
	return ansi.StringWidth(f.Prompt) + ansi.StringWidth(string([]rune(f.Text)[:f.Cursor]))
}

// ensureRoom scrolls the screen when the live region would run past the
// bottom edge, keeping the origin on screen.
func (s *Screen) ensureRoom(needRows int, g popup.Geometry) {
	over := s.row + needRows - g.Height
	if over <= 0 {
		return
	}
	if over > s.row {
		over = s.row
	}
	if over > 0 {
		s.t.WriteString(fmt.Sprintf("\x1b[%dS", over))
		s.row -= over
	}
}

func (s *Screen) advance(rows, height int) {
	s.row += rows
	if s.row > height-1 {
		s.row = height - 1
	}
}

func (s *Screen) clampRow(g popup.Geometry) {
	if g.Height > 0 && s.row > g.Height-1 {
		s.row = g.Height - 1
	}
}

func (s *Screen) moveTo(row, col int) {
	s.t.WriteString(fmt.Sprintf("\x1b[%d;%dH", row+1, col+1))
}

func parenCol(hl *editor.ParenHighlight) int {
	if hl == nil {
		return -1
	}
	return hl.Col
}

// outputRows is how many physical rows the cursor moves down when text is
// written at column 0 with auto-wrap on. A line that fills the width
// exactly leaves the wrap pending, so its newline costs no extra row.
func outputRows(text string, width int) int {
	if width < 1 {
		width = 1
	}
	lines := strings.Split(text, "\n")
	rows := 0
	for i, line := range lines {
		w := ansi.StringWidth(line)
		if i == len(lines)-1 {
			rows += w / width
			break
		}
		if w == 0 {
			rows++
		} else {
			rows += (w-1)/width + 1
		}
	}
	return rows
}
