package editor

import "time"

// Status is the one-line bar under the input area. It shows a permanent
// text (keybinding hints) that timed messages temporarily replace; the idle
// tick expires them.
type Status struct {
	permanent string
	message   string
	expiry    time.Time
}

func NewStatus(permanent string) *Status {
	return &Status{permanent: permanent}
}

// Message replaces the bar text for d. A zero duration keeps the message
// until something else replaces it.
func (s *Status) Message(text string, d time.Duration) {
	s.message = text
	if d > 0 {
		s.expiry = time.Now().Add(d)
	} else {
		s.expiry = time.Time{}
	}
}

// Tick expires a timed message. Returns true when the bar content changed
// and needs a redraw.
func (s *Status) Tick(now time.Time) bool {
	if s.message != "" && !s.expiry.IsZero() && now.After(s.expiry) {
		s.message = ""
		s.expiry = time.Time{}
		return true
	}
	return false
}

// Reset drops any message immediately.
func (s *Status) Reset() {
	s.message = ""
	s.expiry = time.Time{}
}

// Current is the text the bar should show right now.
func (s *Status) Current() string {
	if s.message != "" {
		return s.message
	}
	return s.permanent
}
