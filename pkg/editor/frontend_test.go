package editor

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myint-archive/brepl/pkg/popup"
)

// scriptedFrontend replays a fixed event list into Run and records what the
// loop asked it to commit.
type scriptedFrontend struct {
	events   []Event
	finished []string
	cleared  int
}

func (fe *scriptedFrontend) Geometry() popup.Geometry { return popup.Geometry{Width: 80, Height: 24} }

func (fe *scriptedFrontend) DrawLine(Frame) error { return nil }

func (fe *scriptedFrontend) DrawPopup(Frame) error { return nil }

func (fe *scriptedFrontend) ReadEvent() (Event, error) {
	if len(fe.events) == 0 {
		return Event{Action: ActionExit}, nil
	}
	ev := fe.events[0]
	fe.events = fe.events[1:]
	return ev, nil
}

func (fe *scriptedFrontend) FinishTurn(f Frame) error {
	fe.finished = append(fe.finished, f.Text)
	return nil
}

func (fe *scriptedFrontend) ClearScreen() error {
	fe.cleared++
	return nil
}

func TestPastedNewlinesSubmitPerLine(t *testing.T) {
	eval := &fakeEval{}
	s := newTestSession(eval, nil)
	fe := &scriptedFrontend{events: []Event{
		{Action: ActionInsert, Text: "x = 1\ny = 2"},
	}}

	require.NoError(t, Run(context.Background(), s, fe))

	// The embedded newline submits the first line; the trailing text stays
	// on the prompt.
	assert.Equal(t, []string{"x = 1"}, eval.submitted)
	assert.Equal(t, []string{"x = 1"}, fe.finished)
	assert.Equal(t, []string{"x = 1"}, s.History().Entries())
	assert.Equal(t, "y = 2", s.Line().String())
}

func TestPastedCarriageReturnsNormalize(t *testing.T) {
	eval := &fakeEval{}
	s := newTestSession(eval, nil)
	fe := &scriptedFrontend{events: []Event{
		{Action: ActionInsert, Text: "a = 1\r\nb = 2\rc = 3\n"},
	}}

	require.NoError(t, Run(context.Background(), s, fe))

	assert.Equal(t, []string{"a = 1", "b = 2", "c = 3"}, eval.submitted)
	assert.Equal(t, []string{"a = 1", "b = 2", "c = 3"}, fe.finished)
	assert.Equal(t, "", s.Line().String())
}

func TestPastedContinuationKeepsTurnOpen(t *testing.T) {
	eval := &fakeEval{needsMore: func(text string) bool {
		return strings.HasSuffix(text, "(")
	}}
	s := newTestSession(eval, nil)
	fe := &scriptedFrontend{events: []Event{
		{Action: ActionInsert, Text: "f(\n)"},
	}}

	require.NoError(t, Run(context.Background(), s, fe))

	assert.Equal(t, []string{"f("}, eval.submitted)
	assert.Equal(t, []string{"f("}, s.TurnLines())
	assert.Equal(t, "    )", s.Line().String())
}
