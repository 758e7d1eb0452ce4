package editor

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const defaultMaxHistoryEntries = 1000

// HistoryStore persists the ring to an append-only line-oriented file, one
// entry per line with embedded newlines escaped. Entries are appended as
// they are submitted; the file is rewritten only when it has grown well past
// the load bound, so the common path stays a single append.
type HistoryStore struct {
	path string
	max  int
}

func NewHistoryStore(path string, max int) *HistoryStore {
	if max <= 0 {
		max = defaultMaxHistoryEntries
	}
	return &HistoryStore{path: path, max: max}
}

// DefaultHistoryPath places the history file under the user config dir.
func DefaultHistoryPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving config dir: %w", err)
	}
	return filepath.Join(dir, "brepl", "history"), nil
}

// Load reads the newest max entries into a fresh History. A missing file is
// an empty history, not an error.
func (s *HistoryStore) Load() (*History, error) {
	h := NewHistory(s.max)
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return h, nil
		}
		return nil, fmt.Errorf("opening history file: %w", err)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		if line := sc.Text(); line != "" {
			lines = append(lines, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading history file: %w", err)
	}

	overflow := len(lines) > s.max
	if overflow {
		lines = lines[len(lines)-s.max:]
	}
	for _, line := range lines {
		h.Append(decodeHistoryEntry(line))
	}
	// Rewrite the trimmed file so it does not grow without bound.
	if overflow {
		if err := s.rewrite(lines); err != nil {
			return nil, err
		}
	}
	return h, nil
}

// AppendLine records one submitted entry at the end of the file.
func (s *HistoryStore) AppendLine(entry string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating history dir: %w", err)
	}
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening history file: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(encodeHistoryEntry(entry) + "\n"); err != nil {
		return fmt.Errorf("appending history entry: %w", err)
	}
	return nil
}

func (s *HistoryStore) rewrite(encoded []string) error {
	tmp := s.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("rewriting history file: %w", err)
	}
	w := bufio.NewWriter(f)
	for _, line := range encoded {
		fmt.Fprintln(w, line)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("rewriting history file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("rewriting history file: %w", err)
	}
	return os.Rename(tmp, s.path)
}

func encodeHistoryEntry(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, "\n", `\n`)
}

func decodeHistoryEntry(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case 'n':
				b.WriteByte('\n')
				i++
				continue
			case '\\':
				b.WriteByte('\\')
				i++
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
