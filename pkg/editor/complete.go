package editor

import (
	"sort"
	"strings"
)

// MatchSet is the result of one completion query. It is rebuilt from scratch
// on every triggering edit, never patched.
type MatchSet struct {
	// Matches are the display candidates, deduplicated and sorted. For
	// path-style candidates these are the final path segments.
	Matches []string
	// Word is the prefix the candidates were matched against, shortened the
	// same way the candidates were.
	Word string
	Spec *ArgSpec
	Doc  string
}

// MatchCursor iterates a MatchSet with wraparound in both directions. Index
// -1 means no candidate is selected yet.
type MatchCursor struct {
	matches []string
	index   int
}

func (c *MatchCursor) Reset(matches []string) {
	c.matches = matches
	c.index = -1
}

func (c *MatchCursor) Index() int { return c.index }

func (c *MatchCursor) Active() bool { return c.index >= 0 }

func (c *MatchCursor) Next() string {
	if len(c.matches) == 0 {
		return ""
	}
	c.index = (c.index + 1) % len(c.matches)
	return c.matches[c.index]
}

func (c *MatchCursor) Prev() string {
	if len(c.matches) == 0 {
		return ""
	}
	if c.index < 0 {
		c.index = 0
	}
	c.index = (c.index - 1 + len(c.matches)) % len(c.matches)
	return c.matches[c.index]
}

// TabOutcome reports what a completion trigger did to the buffer.
type TabOutcome int

const (
	// TabIndented means the line was blank left of the cursor and spaces
	// were inserted to the next tab stop instead of running the engine.
	TabIndented TabOutcome = iota
	// TabNoMatch means the engine ran and found nothing.
	TabNoMatch
	// TabExpanded means the longest common prefix of all candidates was
	// spliced in without selecting any one of them.
	TabExpanded
	// TabCycled means a specific candidate was selected and spliced in.
	TabCycled
)

// Completer owns the match set and cycling state for the current word. The
// set persists across consecutive completion triggers so repeated tabs cycle
// rather than recompute; any other edit replaces it.
type Completer struct {
	lookup Lookup

	set    MatchSet
	cursor MatchCursor

	// base is the typed prefix the candidates extend; inserted is whatever
	// the engine has spliced in after it, replaced on each cycle step.
	base     string
	inserted string
	visible  bool
}

func NewCompleter(lookup Lookup) *Completer {
	return &Completer{lookup: lookup}
}

func (c *Completer) Set() *MatchSet { return &c.set }

// SelectedIndex is the cycling position, -1 when no candidate is selected.
func (c *Completer) SelectedIndex() int { return c.cursor.Index() }

// Visible reports whether the match popup should be on screen.
func (c *Completer) Visible() bool { return c.visible }

// Clear discards the match set, e.g. after the cursor left the word.
func (c *Completer) Clear() {
	c.set = MatchSet{}
	c.cursor.Reset(nil)
	c.base = ""
	c.inserted = ""
	c.visible = false
}

// Refresh recomputes the match set for the word under the cursor after an
// ordinary edit. Returns true when there is something to show.
func (c *Completer) Refresh(l *Line) bool {
	c.Clear()
	word := l.CurrentString()
	if word == "" {
		word = l.CurrentWord()
	}
	spec, doc := c.callSpec(l)
	if word == "" {
		if spec == nil {
			return false
		}
		c.set = MatchSet{Spec: spec, Doc: doc}
		c.visible = true
		return true
	}

	res, err := c.lookup.Lookup(word)
	if err != nil {
		// Introspection failures mean "no match", never an error surfaced
		// to the user.
		if spec != nil {
			c.set = MatchSet{Spec: spec, Doc: doc}
			c.visible = true
			return true
		}
		return false
	}

	matches, shortWord := normalizeMatches(res.Candidates, word)
	if spec == nil {
		spec = res.Spec
		doc = res.Doc
	}
	if len(matches) == 0 && spec == nil {
		return false
	}
	c.set = MatchSet{Matches: matches, Word: shortWord, Spec: spec, Doc: doc}
	c.cursor.Reset(matches)
	c.base = shortWord
	c.visible = true
	return true
}

// Tab handles a completion trigger. On a blank line it indents to the next
// tab stop. Otherwise it expands the longest common prefix if that grows the
// word, and only once no further expansion is possible does it start cycling
// candidates, replacing the previously spliced suffix each step.
func (c *Completer) Tab(l *Line, reverse bool) TabOutcome {
	if !reverse && isBlank([]rune(l.String())[:l.Cursor()]) {
		n := l.Cursor() % l.TabWidth()
		l.Insert(strings.Repeat(" ", l.TabWidth()-n))
		return TabIndented
	}

	if !c.visible {
		if !c.Refresh(l) {
			return TabNoMatch
		}
	}
	if len(c.set.Matches) == 0 {
		return TabNoMatch
	}

	current := c.base + c.inserted
	if lcp := commonPrefix(c.set.Matches); len(lcp) > len(current) {
		c.splice(l, lcp[len(current):])
		c.inserted += lcp[len(current):]
		return TabExpanded
	}

	var match string
	if reverse {
		match = c.cursor.Prev()
	} else {
		match = c.cursor.Next()
	}
	c.respliceTo(l, match)
	return TabCycled
}

// respliceTo replaces whatever the engine previously inserted with the given
// candidate's suffix beyond the typed base.
func (c *Completer) respliceTo(l *Line, match string) {
	for range []rune(c.inserted) {
		l.Backspace(false)
	}
	suffix := strings.TrimPrefix(match, c.base)
	c.splice(l, suffix)
	c.inserted = suffix
}

func (c *Completer) splice(l *Line, s string) {
	l.Insert(s)
}

// callSpec finds the innermost unclosed call left of the cursor and asks the
// namespace for its signature, marking the argument the cursor occupies.
func (c *Completer) callSpec(l *Line) (*ArgSpec, string) {
	fn, argIdx, kwName, ok := callContext(l.String(), l.Cursor())
	if !ok {
		return nil, ""
	}
	res, err := c.lookup.Lookup(fn)
	if err != nil || !res.Callable || res.Spec == nil {
		return nil, ""
	}
	spec := *res.Spec
	spec.ActiveIndex = argIdx
	spec.ActiveName = kwName
	if kwName != "" {
		spec.ActiveIndex = -1
	}
	return &spec, res.Doc
}

// callContext scans left of cursor for the innermost unclosed '(' whose head
// looks like a name, and counts top-level commas to locate the active
// argument. A "name=" immediately before the cursor marks a keyword arg.
func callContext(s string, cursor int) (fn string, argIdx int, kwName string, ok bool) {
	rs := []rune(s)[:cursor]
	type bracket struct {
		pos    int // position of '(' frames, -1 for other brackets
		commas int
	}
	var stack []bracket
	var quote rune
	for i, r := range rs {
		if quote != 0 {
			if r == quote && rs[i-1] != '\\' {
				quote = 0
			}
			continue
		}
		switch r {
		case '\'', '"':
			quote = r
		case '(':
			stack = append(stack, bracket{pos: i})
		case '[', '{':
			stack = append(stack, bracket{pos: -1})
		case ')', ']', '}':
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case ',':
			if len(stack) > 0 {
				stack[len(stack)-1].commas++
			}
		}
	}
	open, commas := -1, 0
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i].pos >= 0 {
			open, commas = stack[i].pos, stack[i].commas
			break
		}
	}
	if open < 0 {
		return "", 0, "", false
	}
	// Head name directly before the paren.
	j := open
	for j > 0 && isWordRune(rs[j-1]) {
		j--
	}
	if j == open {
		return "", 0, "", false
	}
	// Keyword argument: an identifier followed by '=' in the current slot.
	seg := strings.TrimSpace(string(rs[open+1:]))
	if k := strings.LastIndex(seg, ","); k >= 0 {
		seg = strings.TrimSpace(seg[k+1:])
	}
	if eq := strings.Index(seg, "="); eq > 0 && !strings.ContainsAny(seg[:eq], "()'\" ") {
		kwName = seg[:eq]
	}
	return string(rs[j:open]), commas, kwName, true
}

// normalizeMatches deduplicates, shortens path-style candidates to their
// final segment, and sorts. The word is shortened the same way so prefix
// comparison stays aligned with what is displayed.
func normalizeMatches(candidates []string, word string) ([]string, string) {
	if len(candidates) == 0 {
		return nil, word
	}
	allPaths := true
	for _, m := range candidates {
		if !strings.Contains(m, "/") {
			allPaths = false
			break
		}
	}
	seen := make(map[string]struct{}, len(candidates))
	out := make([]string, 0, len(candidates))
	for _, m := range candidates {
		if allPaths {
			m = lastPathSegment(m)
		}
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	sort.Strings(out)
	if allPaths {
		word = lastPathSegment(word)
	}
	return out, word
}

func lastPathSegment(p string) string {
	p = strings.TrimRight(p, "/")
	if i := strings.LastIndex(p, "/"); i >= 0 {
		return p[i+1:]
	}
	return p
}

func commonPrefix(ss []string) string {
	if len(ss) == 0 {
		return ""
	}
	prefix := ss[0]
	for _, s := range ss[1:] {
		for !strings.HasPrefix(s, prefix) {
			prefix = prefix[:len(prefix)-1]
			if prefix == "" {
				return ""
			}
		}
	}
	return prefix
}
