package editor

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEval scripts the evaluator verdicts the session sees.
type fakeEval struct {
	submitted []string
	needsMore func(text string) bool
	err       error
}

func (f *fakeEval) Submit(ctx context.Context, text string) (bool, error) {
	f.submitted = append(f.submitted, text)
	if f.err != nil {
		return false, f.err
	}
	if f.needsMore != nil {
		return f.needsMore(text), nil
	}
	return false, nil
}

type plainTok struct{}

func (plainTok) Tokenize(text string, isContinuation bool) []Segment {
	return []Segment{{Style: "plain", Text: text}}
}

func newTestSession(eval Evaluator, lk Lookup) *Session {
	if lk == nil {
		lk = &fakeLookup{}
	}
	return NewSession(Options{}, NewHistory(100), eval, plainTok{}, lk)
}

func typeString(s *Session, text string) {
	s.Apply(context.Background(), ActionInsert, text)
}

func TestTurnStateMachine(t *testing.T) {
	eval := &fakeEval{needsMore: func(text string) bool {
		return strings.HasSuffix(text, "(")
	}}
	s := newTestSession(eval, nil)
	assert.Equal(t, StateEmpty, s.State())

	typeString(s, "f(")
	assert.Equal(t, StateEditing, s.State())

	// Incomplete construct: the turn continues.
	eff := s.Apply(context.Background(), ActionSubmit, "")
	assert.Equal(t, EffectRedraw, eff)
	assert.Equal(t, StateContinuation, s.State())
	assert.Equal(t, []string{"f("}, s.TurnLines())

	typeString(s, ")")
	eff = s.Apply(context.Background(), ActionSubmit, "")
	assert.Equal(t, EffectSubmitted, eff)
	assert.Equal(t, StateEmpty, s.State())
	assert.Equal(t, "f(\n    )", eval.submitted[len(eval.submitted)-1])
}

func TestContinuationAutoIndents(t *testing.T) {
	eval := &fakeEval{needsMore: func(text string) bool {
		return strings.Count(text, "[") > strings.Count(text, "]")
	}}
	s := newTestSession(eval, nil)
	typeString(s, "items = [")
	s.Apply(context.Background(), ActionSubmit, "")
	require.Equal(t, StateContinuation, s.State())
	assert.Equal(t, "    ", s.Line().String())
}

func TestDeleteForwardOnEmptyLineExits(t *testing.T) {
	s := newTestSession(&fakeEval{}, nil)
	eff := s.Apply(context.Background(), ActionDeleteForward, "")
	assert.Equal(t, EffectExit, eff)
	assert.Equal(t, StateExiting, s.State())
}

func TestDeleteForwardOnEmptyContinuationLineStays(t *testing.T) {
	eval := &fakeEval{needsMore: func(text string) bool { return text == "x = (" }}
	s := newTestSession(eval, nil)
	typeString(s, "x = (")
	s.Apply(context.Background(), ActionSubmit, "")
	s.Apply(context.Background(), ActionClearLine, "")

	eff := s.Apply(context.Background(), ActionDeleteForward, "")
	assert.Equal(t, EffectNone, eff)
	assert.NotEqual(t, StateExiting, s.State())
}

func TestSubmitAppendsHistoryOnce(t *testing.T) {
	s := newTestSession(&fakeEval{}, nil)
	typeString(s, "1 + 1")
	s.Apply(context.Background(), ActionSubmit, "")
	assert.Equal(t, []string{"1 + 1"}, s.History().Entries())
}

func TestExitSignalKeepsHistoryEntry(t *testing.T) {
	eval := &fakeEval{err: ErrExit}
	s := newTestSession(eval, nil)
	typeString(s, "exit()")
	eff := s.Apply(context.Background(), ActionSubmit, "")
	assert.Equal(t, EffectExit, eff)
	assert.Equal(t, StateExiting, s.State())
	// Appended before evaluation, exactly once.
	assert.Equal(t, []string{"exit()"}, s.History().Entries())
}

func TestInterruptedSubmitRollsBackHistory(t *testing.T) {
	eval := &fakeEval{err: ErrInterrupt}
	s := newTestSession(eval, nil)
	typeString(s, "slow()")
	eff := s.Apply(context.Background(), ActionSubmit, "")
	assert.Equal(t, EffectRedraw, eff)
	assert.Empty(t, s.History().Entries())
	assert.Equal(t, "", s.Line().String())
	assert.Equal(t, StateEmpty, s.State())
}

func TestInterruptCancelsWholeTurn(t *testing.T) {
	eval := &fakeEval{needsMore: func(text string) bool { return text == "if (" }}
	s := newTestSession(eval, nil)
	typeString(s, "if (")
	s.Apply(context.Background(), ActionSubmit, "")
	typeString(s, "x")

	s.Apply(context.Background(), ActionInterrupt, "")
	assert.Equal(t, StateEmpty, s.State())
	assert.Empty(t, s.TurnLines())
	assert.Equal(t, "", s.Line().String())
}

func TestHistoryBrowsingWithinTurn(t *testing.T) {
	s := newTestSession(&fakeEval{}, nil)
	typeString(s, "first")
	s.Apply(context.Background(), ActionSubmit, "")
	typeString(s, "second")
	s.Apply(context.Background(), ActionSubmit, "")

	typeString(s, "draft")
	s.Apply(context.Background(), ActionHistoryBack, "")
	assert.Equal(t, StateBrowsing, s.State())
	assert.Equal(t, "second", s.Line().String())

	s.Apply(context.Background(), ActionHistoryBack, "")
	assert.Equal(t, "first", s.Line().String())

	// Forward past the newest restores the in-progress draft.
	s.Apply(context.Background(), ActionHistoryForward, "")
	s.Apply(context.Background(), ActionHistoryForward, "")
	assert.Equal(t, "draft", s.Line().String())
	assert.Equal(t, StateEditing, s.State())
}

func TestBrowsingNeverMutatesRing(t *testing.T) {
	s := newTestSession(&fakeEval{}, nil)
	typeString(s, "only")
	s.Apply(context.Background(), ActionSubmit, "")

	typeString(s, "edited")
	s.Apply(context.Background(), ActionHistoryBack, "")
	typeString(s, " more")
	s.Apply(context.Background(), ActionInterrupt, "")
	assert.Equal(t, []string{"only"}, s.History().Entries())
}

func TestPasteModeSuppressesPopupAndLapses(t *testing.T) {
	lk := &fakeLookup{results: map[string]LookupResult{
		"pr": {Candidates: []string{"print"}},
	}}
	s := newTestSession(&fakeEval{}, lk)

	now := time.Now()
	s.NoteKey(now)
	s.NoteKey(now.Add(time.Millisecond)) // faster than the paste threshold
	require.True(t, s.PasteMode())

	typeString(s, "pr")
	f := s.Frame()
	assert.Nil(t, f.Popup, "popup withheld during a paste burst")
	assert.Equal(t, []Segment{{Style: "plain", Text: "pr"}}, f.Segments)

	// The burst lapses once the idle tick sees a quiet interval.
	redraw := s.Tick(now.Add(time.Second))
	assert.True(t, redraw)
	assert.False(t, s.PasteMode())
}

func TestStatusMessageExpiresOnTick(t *testing.T) {
	st := NewStatus("permanent")
	st.Message("saved", 50*time.Millisecond)
	assert.Equal(t, "saved", st.Current())

	assert.False(t, st.Tick(time.Now()))
	assert.True(t, st.Tick(time.Now().Add(time.Second)))
	assert.Equal(t, "permanent", st.Current())
}

func TestBlankLineTabIndents(t *testing.T) {
	s := newTestSession(&fakeEval{}, nil)
	s.Apply(context.Background(), ActionComplete, "")
	assert.Equal(t, "    ", s.Line().String())
	assert.Equal(t, StateEditing, s.State())
}

func TestClearLineAction(t *testing.T) {
	s := newTestSession(&fakeEval{}, nil)
	typeString(s, "garbage")
	s.Apply(context.Background(), ActionClearLine, "")
	assert.Equal(t, "", s.Line().String())
	assert.Equal(t, StateEmpty, s.State())
}
