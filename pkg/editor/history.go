package editor

// History is the ring of previously submitted lines plus the browse state
// for one turn. Browsing never mutates the ring; only Append does, and only
// the submit path calls Append.
type History struct {
	entries []string
	max     int

	browsing bool
	index    int // position in entries while browsing; len(entries) is the live slot
	live     string
}

func NewHistory(max int) *History {
	if max <= 0 {
		max = defaultMaxHistoryEntries
	}
	return &History{max: max}
}

func (h *History) Len() int { return len(h.entries) }

// Entries returns the ring oldest first. The slice is shared; callers must
// not mutate it.
func (h *History) Entries() []string { return h.entries }

// Append records a submitted line. Insertion order is kept and nothing is
// deduplicated.
func (h *History) Append(line string) {
	h.entries = append(h.entries, line)
	if len(h.entries) > h.max {
		h.entries = h.entries[len(h.entries)-h.max:]
	}
}

// dropLast rolls back the most recent Append. Only the interrupted-submit
// path uses it, to leave the ring as it was before the submission.
func (h *History) dropLast() {
	if len(h.entries) > 0 {
		h.entries = h.entries[:len(h.entries)-1]
	}
}

// BeginEdit stashes the in-progress line and leaves browse mode. Called
// whenever the turn's text changes outside of history recall, so that
// stepping forward past the newest entry restores what the user was typing.
func (h *History) BeginEdit(current string) {
	h.live = current
	h.browsing = false
	h.index = len(h.entries)
}

func (h *History) Browsing() bool { return h.browsing }

// Back steps one entry toward the oldest. At the oldest entry it stays
// there. Returns false when the ring is empty.
func (h *History) Back() (string, bool) {
	if len(h.entries) == 0 {
		return "", false
	}
	if !h.browsing {
		h.browsing = true
		h.index = len(h.entries)
	}
	if h.index > 0 {
		h.index--
	}
	return h.entries[h.index], true
}

// Forward steps one entry toward the newest. Past the newest it yields the
// stashed live text, and keeps yielding it on further calls.
func (h *History) Forward() (string, bool) {
	if !h.browsing {
		return h.live, true
	}
	if h.index < len(h.entries) {
		h.index++
	}
	if h.index == len(h.entries) {
		h.browsing = false
		return h.live, true
	}
	return h.entries[h.index], true
}

// First jumps to the oldest entry.
func (h *History) First() (string, bool) {
	if len(h.entries) == 0 {
		return "", false
	}
	h.browsing = true
	h.index = 0
	return h.entries[0], true
}

// Last jumps to the newest entry.
func (h *History) Last() (string, bool) {
	if len(h.entries) == 0 {
		return "", false
	}
	h.browsing = true
	h.index = len(h.entries) - 1
	return h.entries[h.index], true
}
