package editor

// PopupContent is everything a backend needs to lay out and draw the
// completion popup; geometry stays with the backend.
type PopupContent struct {
	Spec     *ArgSpec
	Items    []string
	Word     string
	Selected int
	Doc      string
}

// Frame is a render snapshot of the session, rebuilt on demand. Backends
// read it; nothing in it aliases mutable session state.
type Frame struct {
	Prompt   string
	Text     string
	Segments []Segment
	// Cursor is the rune offset of the cursor from the start of Text.
	Cursor int
	Status string
	Paste  bool
	Popup  *PopupContent
	// Paren is the bracket pair to draw highlighted; RestoreParen is the
	// previously highlighted one to repaint plain first. The segment slices
	// carry the token sequences of the affected earlier turn lines.
	Paren           *ParenHighlight
	ParenSegments   []Segment
	RestoreParen    *ParenHighlight
	RestoreSegments []Segment
	// TurnLines are the committed lines of the current multi-line turn.
	TurnLines []string
}

// Frame snapshots the current render state. In paste mode tokenization is
// skipped and the popup withheld; full highlighting resumes when the burst
// ends.
func (s *Session) Frame() Frame {
	prompt := s.opts.Prompt
	if len(s.turnLines) > 0 {
		prompt = s.opts.PromptMore
	}
	text := s.line.String()

	f := Frame{
		Prompt:          prompt,
		Text:            text,
		Cursor:          s.line.Cursor(),
		Status:          s.status.Current(),
		Paste:           s.paste,
		Paren:           s.paren,
		ParenSegments:   s.parenSegs,
		RestoreParen:    s.prevParen,
		RestoreSegments: s.prevSegs,
		TurnLines:       s.turnLines,
	}
	if s.paste || s.tok == nil {
		f.Segments = []Segment{{Style: "plain", Text: text}}
	} else {
		f.Segments = s.tok.Tokenize(text, len(s.turnLines) > 0)
	}
	if s.comp.Visible() && !s.paste {
		set := s.comp.Set()
		f.Popup = &PopupContent{
			Spec:     set.Spec,
			Items:    set.Matches,
			Word:     set.Word,
			Selected: s.comp.SelectedIndex(),
			Doc:      set.Doc,
		}
	}
	return f
}
