package editor

import (
	"strings"
	"unicode"
)

// Line is the live input buffer for one turn. The cursor is stored as an
// offset from the end of the text, so appending at the end (the common case)
// never needs a cursor update.
type Line struct {
	runes    []rune
	fromEnd  int
	cut      []rune
	tabWidth int
}

func NewLine(tabWidth int) *Line {
	if tabWidth <= 0 {
		tabWidth = 4
	}
	return &Line{tabWidth: tabWidth}
}

func (l *Line) String() string { return string(l.runes) }

func (l *Line) Len() int { return len(l.runes) }

// CursorFromEnd is the distance of the cursor from the end of the text.
// Zero means the cursor sits after the last character.
func (l *Line) CursorFromEnd() int { return l.fromEnd }

// Cursor is the rune index the cursor sits at, counted from the start.
func (l *Line) Cursor() int { return len(l.runes) - l.fromEnd }

func (l *Line) TabWidth() int { return l.tabWidth }

// Reset clears the text and cursor for a new turn. The cut buffer survives
// across turns.
func (l *Line) Reset() {
	l.runes = l.runes[:0]
	l.fromEnd = 0
}

// SetText replaces the whole line, cursor at the end. Used when recalling a
// history entry.
func (l *Line) SetText(s string) {
	l.runes = []rune(s)
	l.fromEnd = 0
}

// Insert splices s in at the cursor.
func (l *Line) Insert(s string) {
	if s == "" {
		return
	}
	at := l.Cursor()
	ins := []rune(s)
	l.runes = append(l.runes[:at], append(ins, l.runes[at:]...)...)
}

// Backspace removes one character left of the cursor and reports how many
// characters were removed (zero when the cursor is at the start of input).
// With collapseIndent set and nothing but whitespace left of the cursor, it
// removes back to the previous tab-stop boundary so a full indent level goes
// in one keystroke.
func (l *Line) Backspace(collapseIndent bool) int {
	at := l.Cursor()
	if at == 0 {
		return 0
	}
	n := 1
	if collapseIndent && isBlank(l.runes[:at]) {
		n = at % l.tabWidth
		if n == 0 {
			n = l.tabWidth
		}
	}
	l.runes = append(l.runes[:at-n], l.runes[at:]...)
	return n
}

// BackspaceWord deletes the whitespace-delimited word left of the cursor:
// first any run of spaces, then the non-space run before it.
func (l *Line) BackspaceWord() int {
	deleted := 0
	for l.Cursor() > 0 && l.runes[l.Cursor()-1] == ' ' {
		deleted += l.Backspace(false)
	}
	for l.Cursor() > 0 && l.runes[l.Cursor()-1] != ' ' {
		deleted += l.Backspace(false)
	}
	return deleted
}

// DeleteForward removes the character under the cursor. Returns false when
// there is nothing to delete.
func (l *Line) DeleteForward() bool {
	if len(l.runes) == 0 || !l.Move(-1) {
		return false
	}
	l.Backspace(false)
	return true
}

// Move shifts the cursor: positive delta moves toward the start of the line,
// negative toward the end. Returns false, with no state change, when the
// move would leave the text.
func (l *Line) Move(delta int) bool {
	next := l.fromEnd + delta
	if next < 0 || next > len(l.runes) {
		return false
	}
	l.fromEnd = next
	return true
}

// Home moves the cursor to the start of the line.
func (l *Line) Home() { l.fromEnd = len(l.runes) }

// End moves the cursor past the last character.
func (l *Line) End() { l.fromEnd = 0 }

// CutToEnd moves everything from the cursor to the end of the line into the
// cut buffer and leaves the cursor at the new end. The buffer always takes
// the suffix, so cutting at the end of the line empties it.
func (l *Line) CutToEnd() {
	at := l.Cursor()
	l.cut = append(l.cut[:0], l.runes[at:]...)
	l.runes = l.runes[:at]
	l.fromEnd = 0
}

// Yank inserts the cut buffer at the cursor.
func (l *Line) Yank() {
	l.Insert(string(l.cut))
}

// ClearToStart discards everything left of the cursor. With the cursor at
// the end this clears the whole line. Unlike CutToEnd the discarded text is
// not kept.
func (l *Line) ClearToStart() {
	if l.fromEnd == 0 {
		l.runes = l.runes[:0]
		return
	}
	l.runes = append(l.runes[:0], l.runes[l.Cursor():]...)
	l.fromEnd = len(l.runes)
}

// CurrentWord returns the identifier-ish run (letters, digits, '.', '_')
// immediately left of the cursor, used to seed completion. Empty when the
// cursor is not at the end of the line or the preceding character does not
// qualify.
func (l *Line) CurrentWord() string {
	if l.fromEnd != 0 || len(l.runes) == 0 {
		return ""
	}
	i := len(l.runes)
	for i > 0 && isWordRune(l.runes[i-1]) {
		i--
	}
	return string(l.runes[i:])
}

// CurrentString returns the body of an unterminated string literal the
// cursor sits inside, or "" if the cursor is not inside one. When present it
// takes priority over CurrentWord for completion, so path candidates can be
// offered mid-literal.
func (l *Line) CurrentString() string {
	if l.fromEnd != 0 {
		return ""
	}
	var quote rune
	start := -1
	for i, r := range l.runes {
		switch {
		case quote == 0 && (r == '\'' || r == '"'):
			quote, start = r, i+1
		case quote != 0 && r == quote && (i == 0 || l.runes[i-1] != '\\'):
			quote, start = 0, -1
		}
	}
	if quote == 0 {
		return ""
	}
	return string(l.runes[start:])
}

// Indent returns the leading whitespace of s.
func Indent(s string) string {
	return s[:len(s)-len(strings.TrimLeft(s, " \t"))]
}

func isBlank(rs []rune) bool {
	for _, r := range rs {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return r == '.' || r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
