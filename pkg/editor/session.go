package editor

import (
	"context"
	"strings"
	"time"
)

// State is the per-turn phase of the session.
type State int

const (
	// StateEmpty is a fresh prompt with nothing typed.
	StateEmpty State = iota
	// StateEditing is an in-progress line.
	StateEditing
	// StateContinuation is an in-progress line of a multi-line construct.
	StateContinuation
	// StateBrowsing is history recall without leaving the turn.
	StateBrowsing
	// StateExiting ends the whole REPL, not just the turn.
	StateExiting
)

// Effect tells the backend what a dispatched action requires of it.
type Effect int

const (
	EffectNone Effect = iota
	EffectRedraw
	// EffectSubmitted means a turn completed and its output (already
	// written by the evaluator) should scroll; a fresh prompt follows.
	EffectSubmitted
	EffectClearScreen
	EffectExit
)

// Options configures a Session.
type Options struct {
	TabWidth   int
	PasteTime  time.Duration
	Prompt     string
	PromptMore string
	StatusText string
	// HistoryStore persists submitted lines; nil disables persistence.
	HistoryStore *HistoryStore
}

func (o *Options) fill() {
	if o.TabWidth <= 0 {
		o.TabWidth = 4
	}
	if o.PasteTime <= 0 {
		o.PasteTime = 20 * time.Millisecond
	}
	if o.Prompt == "" {
		o.Prompt = ">>> "
	}
	if o.PromptMore == "" {
		o.PromptMore = "... "
	}
}

// Session owns all editing state for one REPL instance: the input line, the
// history ring, the completion engine, paste detection, and the turn state
// machine. Exactly one goroutine may call into it.
type Session struct {
	opts   Options
	line   *Line
	hist   *History
	store  *HistoryStore
	comp   *Completer
	eval   Evaluator
	tok    Tokenizer
	lookup Lookup
	status *Status

	state     State
	turnLines []string

	paste   bool
	lastKey time.Time

	paren     *ParenHighlight
	parenSegs []Segment
	prevParen *ParenHighlight
	prevSegs  []Segment
}

func NewSession(opts Options, hist *History, eval Evaluator, tok Tokenizer, lookup Lookup) *Session {
	opts.fill()
	if hist == nil {
		hist = NewHistory(0)
	}
	return &Session{
		opts:   opts,
		line:   NewLine(opts.TabWidth),
		hist:   hist,
		store:  opts.HistoryStore,
		comp:   NewCompleter(lookup),
		eval:   eval,
		tok:    tok,
		lookup: lookup,
		status: NewStatus(opts.StatusText),
	}
}

func (s *Session) State() State          { return s.state }
func (s *Session) Line() *Line           { return s.line }
func (s *Session) History() *History     { return s.hist }
func (s *Session) Status() *Status       { return s.status }
func (s *Session) Completer() *Completer { return s.comp }
func (s *Session) PasteMode() bool       { return s.paste }

// TurnLines are the earlier lines of the current multi-line turn.
func (s *Session) TurnLines() []string { return s.turnLines }

// NoteKey feeds paste detection: input arriving faster than the configured
// inter-keystroke threshold flips the session into paste mode, which
// suppresses re-highlighting and popups until the burst ends.
func (s *Session) NoteKey(now time.Time) {
	if !s.lastKey.IsZero() && now.Sub(s.lastKey) < s.opts.PasteTime {
		s.paste = true
	}
	s.lastKey = now
}

// Tick runs the idle work: paste-mode lapse, status expiry, and one bounded
// unit of background candidate prefetch. Returns true when a redraw is due.
func (s *Session) Tick(now time.Time) bool {
	redraw := s.status.Tick(now)
	if s.paste && now.Sub(s.lastKey) >= s.opts.PasteTime {
		s.paste = false
		redraw = true
	}
	if s.lookup != nil {
		s.lookup.Prefetch()
	}
	return redraw
}

// Apply dispatches one logical action. text carries the payload of
// ActionInsert and is ignored otherwise.
func (s *Session) Apply(ctx context.Context, action Action, text string) Effect {
	switch action {
	case ActionInsert:
		s.line.Insert(text)
		s.afterEdit()
	case ActionBackspace:
		if s.line.Backspace(true) == 0 {
			return EffectNone
		}
		s.afterEdit()
	case ActionDeleteWord:
		if s.line.BackspaceWord() == 0 {
			return EffectNone
		}
		s.afterEdit()
	case ActionDeleteForward:
		if s.line.Len() == 0 {
			if len(s.turnLines) == 0 {
				s.state = StateExiting
				return EffectExit
			}
			return EffectNone
		}
		s.line.DeleteForward()
		s.afterEdit()
	case ActionCutToEnd:
		s.line.CutToEnd()
		s.afterEdit()
	case ActionYank:
		s.line.Yank()
		s.afterEdit()
	case ActionClearLine:
		s.line.ClearToStart()
		s.afterEdit()
	case ActionLeft:
		if !s.line.Move(1) {
			return EffectNone
		}
		s.afterMove()
	case ActionRight:
		if !s.line.Move(-1) {
			return EffectNone
		}
		s.afterMove()
	case ActionHome:
		s.line.Home()
		s.afterMove()
	case ActionEnd:
		s.line.End()
		s.afterMove()
	case ActionComplete:
		s.completeStep(false)
	case ActionCompleteReverse:
		s.completeStep(true)
	case ActionHistoryBack:
		s.browse(func() (string, bool) { return s.hist.Back() })
	case ActionHistoryForward:
		s.browse(func() (string, bool) { return s.hist.Forward() })
	case ActionHistoryFirst:
		s.browse(func() (string, bool) { return s.hist.First() })
	case ActionHistoryLast:
		s.browse(func() (string, bool) { return s.hist.Last() })
	case ActionSubmit:
		return s.submit(ctx)
	case ActionInterrupt:
		s.cancelTurn()
	case ActionClearScreen:
		return EffectClearScreen
	case ActionExit:
		s.state = StateExiting
		return EffectExit
	default:
		return EffectNone
	}
	return EffectRedraw
}

// afterEdit follows every buffer mutation: leave history browsing, refresh
// the match set (unless pasting), and recompute the paren highlight.
func (s *Session) afterEdit() {
	if s.state == StateEmpty || s.state == StateBrowsing {
		s.state = StateEditing
	}
	if s.line.Len() == 0 && len(s.turnLines) == 0 {
		s.state = StateEmpty
	}
	if s.paste {
		s.comp.Clear()
		return
	}
	s.comp.Refresh(s.line)
	s.updateParen()
}

// afterMove follows cursor-only motion: the match set no longer applies.
func (s *Session) afterMove() {
	s.comp.Clear()
	s.updateParen()
}

func (s *Session) completeStep(reverse bool) {
	switch s.comp.Tab(s.line, reverse) {
	case TabIndented, TabExpanded, TabCycled:
		if s.state == StateEmpty {
			s.state = StateEditing
		}
		s.updateParen()
	}
}

func (s *Session) browse(step func() (string, bool)) {
	if !s.hist.Browsing() {
		s.hist.BeginEdit(s.line.String())
	}
	text, ok := step()
	if !ok {
		return
	}
	s.line.SetText(text)
	s.comp.Clear()
	if s.hist.Browsing() {
		s.state = StateBrowsing
	} else if s.line.Len() == 0 && len(s.turnLines) == 0 {
		s.state = StateEmpty
	} else {
		s.state = StateEditing
	}
	s.updateParen()
}

// submit appends the line to history, hands the accumulated source to the
// evaluator, and advances the turn. An interrupted submission rolls the
// history append back so the ring looks exactly as it did before.
func (s *Session) submit(ctx context.Context) Effect {
	line := s.line.String()
	s.comp.Clear()
	s.clearParen()

	if strings.TrimSpace(line) != "" {
		s.hist.Append(line)
	}
	source := strings.Join(append(append([]string(nil), s.turnLines...), line), "\n")

	needsMore, err := s.eval.Submit(ctx, source)
	switch {
	case err == ErrInterrupt || ctx.Err() != nil:
		if strings.TrimSpace(line) != "" {
			s.hist.dropLast()
		}
		s.cancelTurn()
		return EffectRedraw
	case err == ErrExit:
		s.persistLine(line)
		s.state = StateExiting
		return EffectExit
	case needsMore:
		s.persistLine(line)
		s.turnLines = append(s.turnLines, line)
		s.line.Reset()
		s.line.Insert(nextIndent(line, s.opts.TabWidth))
		s.state = StateContinuation
		return EffectRedraw
	default:
		s.persistLine(line)
		if err != nil {
			s.status.Message(err.Error(), 4*time.Second)
		}
		s.endTurn()
		return EffectSubmitted
	}
}

func (s *Session) persistLine(line string) {
	if s.store == nil || strings.TrimSpace(line) == "" {
		return
	}
	// The in-memory ring is authoritative; a failed write only costs the
	// entry after restart.
	_ = s.store.AppendLine(line)
}

// cancelTurn aborts the current turn entirely: cleared line, dropped
// continuation lines, fresh prompt.
func (s *Session) cancelTurn() {
	s.line.Reset()
	s.turnLines = nil
	s.comp.Clear()
	s.clearParen()
	s.hist.BeginEdit("")
	s.state = StateEmpty
}

func (s *Session) endTurn() {
	s.line.Reset()
	s.turnLines = nil
	s.hist.BeginEdit("")
	s.state = StateEmpty
}

func (s *Session) updateParen() {
	s.prevParen, s.prevSegs = s.paren, s.parenSegs
	s.paren, s.parenSegs = nil, nil
	hl, ok := MatchParen(s.turnLines, s.line.String(), s.line.Cursor())
	if !ok {
		return
	}
	s.paren = &hl
	// Highlights on an earlier turn line need that line's token sequence so
	// the renderer can repaint and later restore it with its colors intact.
	if hl.LineIndex >= 0 && s.tok != nil {
		s.parenSegs = s.tok.Tokenize(s.turnLines[hl.LineIndex], true)
	}
}

func (s *Session) clearParen() {
	s.prevParen, s.prevSegs = s.paren, s.parenSegs
	s.paren, s.parenSegs = nil, nil
}

// nextIndent picks the leading whitespace for a fresh continuation line:
// the previous line's indent, one level deeper after an unclosed bracket or
// a trailing colon.
func nextIndent(prev string, tabWidth int) string {
	indent := Indent(prev)
	trimmed := strings.TrimSpace(prev)
	if strings.HasSuffix(trimmed, ":") || hasUnclosedBracket(prev) {
		indent += strings.Repeat(" ", tabWidth)
	}
	return indent
}

func hasUnclosedBracket(s string) bool {
	depth := 0
	var quote rune
	for i, r := range s {
		if quote != 0 {
			if r == quote && s[i-1] != '\\' {
				quote = 0
			}
			continue
		}
		switch {
		case r == '\'' || r == '"':
			quote = r
		case isOpenBracket(r):
			depth++
		case isCloseBracket(r):
			depth--
		}
	}
	return depth > 0
}
