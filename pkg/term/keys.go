package term

import (
	"strings"
	"unicode/utf8"
)

// Event is one decoded unit of terminal input.
type Event struct {
	// Key is a logical key id ("tab", "ctrl+w", "up", ...) for non-text
	// input; empty for a text event.
	Key string
	// Text is a run of printable input, possibly a whole bracketed paste.
	Text string
	// Resize reports that the size cache was refreshed from a SIGWINCH.
	Resize bool
	// Idle reports that the poll timeout elapsed with no input.
	Idle bool

	// CursorRow is set (1-based) on a cursor position report.
	CursorRow int
}

const (
	pasteStart = "\x1b[200~"
	pasteEnd   = "\x1b[201~"
)

// csiKeys maps complete escape sequences to key ids.
var csiKeys = map[string]string{
	"\x1b[A":    "up",
	"\x1b[B":    "down",
	"\x1b[C":    "right",
	"\x1b[D":    "left",
	"\x1b[H":    "home",
	"\x1b[F":    "end",
	"\x1b[1~":   "home",
	"\x1b[4~":   "end",
	"\x1b[3~":   "delete",
	"\x1b[5~":   "pgup",
	"\x1b[6~":   "pgdown",
	"\x1b[Z":    "shift+tab",
	"\x1b[1;5D": "ctrl+left",
	"\x1b[1;5C": "ctrl+right",
	"\x1b[1;3D": "alt+left",
	"\x1b[1;3C": "alt+right",
	"\x1bb":     "alt+b",
	"\x1bf":     "alt+f",
	"\x1bd":     "alt+d",
}

// decode extracts one event from the head of buf. needMore means the buffer
// holds an incomplete sequence and the caller should poll for more bytes
// before deciding; a truly ambiguous lone escape is resolved by the caller
// on timeout.
func decode(buf []byte) (ev Event, consumed int, needMore bool) {
	if len(buf) == 0 {
		return Event{}, 0, true
	}
	if buf[0] == 0x1b {
		return decodeEscape(buf)
	}
	if b := buf[0]; b < 0x20 || b == 0x7f {
		return Event{Key: controlKey(b)}, 1, false
	}
	// Maximal run of printable bytes.
	end := 0
	for end < len(buf) {
		b := buf[end]
		if b == 0x1b || b < 0x20 || b == 0x7f {
			break
		}
		end++
	}
	// Hold back a trailing partial rune for the next read.
	text := buf[:end]
	for len(text) > 0 && !utf8.Valid(text) {
		r, _ := utf8.DecodeLastRune(text)
		if r != utf8.RuneError {
			break
		}
		text = text[:len(text)-1]
	}
	if len(text) == 0 {
		return Event{}, 0, true
	}
	return Event{Text: string(text)}, len(text), false
}

func decodeEscape(buf []byte) (Event, int, bool) {
	if len(buf) == 1 {
		return Event{}, 0, true
	}
	if str := string(buf); strings.HasPrefix(str, pasteStart) {
		end := strings.Index(str, pasteEnd)
		if end < 0 {
			return Event{}, 0, true
		}
		return Event{Text: str[len(pasteStart):end]}, end + len(pasteEnd), false
	}
	if buf[1] == '[' {
		// CSI: parameters then a final byte in 0x40..0x7e.
		i := 2
		for i < len(buf) && (buf[i] < 0x40 || buf[i] > 0x7e) {
			i++
		}
		if i >= len(buf) {
			return Event{}, 0, true
		}
		seq := string(buf[:i+1])
		if buf[i] == 'R' {
			if row, ok := parseCPR(seq); ok {
				return Event{CursorRow: row}, i + 1, false
			}
		}
		if key, ok := csiKeys[seq]; ok {
			return Event{Key: key}, i + 1, false
		}
		// Unknown sequence: swallow it, no event.
		return Event{}, i + 1, false
	}
	if key, ok := csiKeys[string(buf[:2])]; ok {
		return Event{Key: key}, 2, false
	}
	// ESC followed by an unrelated byte: a bare escape press.
	return Event{Key: "esc"}, 1, false
}

// parseCPR parses a cursor position report "\x1b[{row};{col}R".
func parseCPR(seq string) (int, bool) {
	body := strings.TrimSuffix(strings.TrimPrefix(seq, "\x1b["), "R")
	parts := strings.SplitN(body, ";", 2)
	if len(parts) != 2 {
		return 0, false
	}
	row := 0
	for _, c := range parts[0] {
		if c < '0' || c > '9' {
			return 0, false
		}
		row = row*10 + int(c-'0')
	}
	return row, row > 0
}

func controlKey(b byte) string {
	switch b {
	case 0x09:
		return "tab"
	case 0x0d, 0x0a:
		return "enter"
	case 0x7f:
		return "backspace"
	case 0x1b:
		return "esc"
	}
	if b >= 0x01 && b <= 0x1a {
		return "ctrl+" + string(rune('a'+b-1))
	}
	return ""
}
