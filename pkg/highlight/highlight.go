// Package highlight adapts a chroma lexer to the editor's tokenizer
// interface, mapping chroma's token categories onto the small set of style
// tags the backends know how to color.
package highlight

import (
	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"

	"github.com/myint-archive/brepl/pkg/editor"
)

type Highlighter struct {
	lexer chroma.Lexer
}

// New builds a highlighter for the named language, falling back to a
// plain-text lexer when the name is unknown.
func New(language string) *Highlighter {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	return &Highlighter{lexer: chroma.Coalesce(lexer)}
}

// Tokenize colors one line. Each call lexes from a clean state, so
// continuation lines tokenize independently of the lines before them.
func (h *Highlighter) Tokenize(text string, isContinuation bool) []editor.Segment {
	if text == "" {
		return nil
	}
	it, err := h.lexer.Tokenise(nil, text)
	if err != nil {
		return []editor.Segment{{Style: "plain", Text: text}}
	}
	var segs []editor.Segment
	for tok := it(); tok != chroma.EOF; tok = it() {
		segs = append(segs, editor.Segment{Style: styleTag(tok.Type), Text: tok.Value})
	}
	return segs
}

func styleTag(t chroma.TokenType) string {
	switch {
	case t.InCategory(chroma.Keyword):
		return "keyword"
	case t.InSubCategory(chroma.LiteralString):
		return "string"
	case t.InSubCategory(chroma.LiteralNumber):
		return "number"
	case t.InCategory(chroma.Comment):
		return "comment"
	case t.InCategory(chroma.Operator), t.InCategory(chroma.Punctuation):
		return "operator"
	case t.InCategory(chroma.Error):
		return "error"
	case t.InCategory(chroma.Name):
		return "name"
	default:
		return "plain"
	}
}
