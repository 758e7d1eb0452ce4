package editor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/myint-archive/brepl/pkg/popup"
)

// Event is one unit of input delivered by a backend. Exactly one of the
// fields is meaningful: an action (with Text for inserts), a resize, or an
// idle tick from the poll timeout.
type Event struct {
	Action Action
	Text   string
	Resize bool
	Idle   bool
}

// Frontend is the capability surface a rendering backend provides. The run
// loop drives the session against it; backends never touch session state
// directly.
type Frontend interface {
	// Geometry returns the current drawing surface size. A degenerate size
	// suspends drawing until a real one is observed.
	Geometry() popup.Geometry
	// DrawLine renders the prompt and input line and positions the cursor.
	DrawLine(Frame) error
	// DrawPopup renders (or hides, when f.Popup is nil) the completion
	// popup. Draw failures must degrade, not propagate.
	DrawPopup(Frame) error
	// ReadEvent blocks for the next input event, returning an idle event on
	// its poll timeout so the session's tick work can run.
	ReadEvent() (Event, error)
	// FinishTurn commits the current prompt and line into scrollback. The
	// run loop calls it before dispatching a submit, so the echoed line
	// lands above whatever the evaluator writes.
	FinishTurn(Frame) error
	// ClearScreen wipes the scrollback and redraws from the top.
	ClearScreen() error
}

// Run is the REPL loop shared by all backends: block for an event, dispatch
// it into the session, redraw what changed.
func Run(ctx context.Context, s *Session, fe Frontend) error {
	redraw := func(popupToo bool) error {
		if fe.Geometry().Degenerate() {
			return nil
		}
		f := s.Frame()
		if err := fe.DrawLine(f); err != nil {
			return fmt.Errorf("drawing input line: %w", err)
		}
		if popupToo {
			if err := fe.DrawPopup(f); err != nil {
				return fmt.Errorf("drawing popup: %w", err)
			}
		}
		return nil
	}
	if err := redraw(true); err != nil {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		ev, err := fe.ReadEvent()
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}

		switch {
		case ev.Idle:
			if s.Tick(time.Now()) {
				if err := redraw(true); err != nil {
					return err
				}
			}
		case ev.Resize:
			// The backend already refreshed its cached geometry; a
			// degenerate size skips the redraw entirely.
			if err := redraw(true); err != nil {
				return err
			}
		default:
			s.NoteKey(time.Now())
			var eff Effect
			switch {
			case ev.Action == ActionInsert && strings.ContainsAny(ev.Text, "\r\n"):
				eff, err = insertLines(ctx, s, fe, ev.Text)
				if err != nil {
					return err
				}
			case ev.Action == ActionSubmit:
				if err := fe.FinishTurn(s.Frame()); err != nil {
					return err
				}
				eff = s.Apply(ctx, ev.Action, ev.Text)
			default:
				eff = s.Apply(ctx, ev.Action, ev.Text)
			}
			switch eff {
			case EffectNone:
			case EffectExit:
				return nil
			case EffectClearScreen:
				if err := fe.ClearScreen(); err != nil {
					return err
				}
				if err := redraw(true); err != nil {
					return err
				}
			default:
				if err := redraw(true); err != nil {
					return err
				}
			}
		}
	}
}

// insertLines feeds a pasted payload through the session line by line.
// Terminals deliver a multi-line bracketed paste as a single text event with
// embedded newlines; each one submits the line assembled so far, exactly as
// if enter had been pressed there, so continuation prompts and evaluation
// happen per line instead of a raw linefeed reaching the renderer.
func insertLines(ctx context.Context, s *Session, fe Frontend, text string) (Effect, error) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	lines := strings.Split(text, "\n")
	eff := EffectRedraw
	for i, line := range lines {
		if line != "" {
			eff = s.Apply(ctx, ActionInsert, line)
		}
		if i == len(lines)-1 {
			break
		}
		if err := fe.FinishTurn(s.Frame()); err != nil {
			return eff, err
		}
		eff = s.Apply(ctx, ActionSubmit, "")
		if eff == EffectExit {
			return eff, nil
		}
	}
	return eff, nil
}
