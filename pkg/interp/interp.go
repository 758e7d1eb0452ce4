// Package interp is the embedded evaluator the shipped CLI talks to: a
// small expression language with variables, strings, and a handful of
// builtin functions. It exists to exercise the front-end; it is not a goal
// in itself.
package interp

import (
	"context"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/myint-archive/brepl/pkg/editor"
)

// Value is a runtime value: float64 or string.
type Value any

type Interp struct {
	out  io.Writer
	vars map[string]Value
}

func New(out io.Writer) *Interp {
	return &Interp{out: out, vars: map[string]Value{}}
}

// Names lists the currently defined variables, for completion.
func (i *Interp) Names() []string {
	names := make([]string, 0, len(i.vars))
	for n := range i.vars {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Submit evaluates accumulated source. It reports needsMore while the text
// is an incomplete construct, returns editor.ErrExit when the code asked to
// leave, and editor.ErrInterrupt when the context was cancelled mid-run.
func (i *Interp) Submit(ctx context.Context, text string) (bool, error) {
	if NeedsMore(text) {
		return true, nil
	}
	for _, line := range splitStatements(text) {
		if err := ctx.Err(); err != nil {
			return false, editor.ErrInterrupt
		}
		if line == "" {
			continue
		}
		val, err := i.evalLine(line)
		if err == editor.ErrExit {
			return false, err
		}
		if err != nil {
			fmt.Fprintf(i.out, "error: %v\n", err)
			return false, nil
		}
		if val != nil {
			fmt.Fprintln(i.out, format(val))
		}
	}
	return false, nil
}

// NeedsMore reports whether the source so far is incomplete: an unclosed
// bracket, an unterminated string, or a trailing line continuation.
func NeedsMore(text string) bool {
	depth := 0
	var quote byte
	for idx := 0; idx < len(text); idx++ {
		c := text[idx]
		if quote != 0 {
			if c == '\\' {
				idx++
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"':
			quote = c
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		}
	}
	if depth > 0 || quote != 0 {
		return true
	}
	trimmed := strings.TrimRight(text, " \t")
	return strings.HasSuffix(trimmed, "\\")
}

// splitStatements groups physical lines into logical statements: a line
// left open by a bracket, a string, or a trailing backslash absorbs the
// lines after it until the construct closes.
func splitStatements(text string) []string {
	var stmts []string
	var buf []string
	flush := func() {
		if len(buf) == 0 {
			return
		}
		stmts = append(stmts, flattenStatement(strings.Join(buf, "\n")))
		buf = nil
	}
	for _, line := range strings.Split(text, "\n") {
		buf = append(buf, line)
		if !NeedsMore(strings.Join(buf, "\n")) {
			flush()
		}
	}
	flush()
	return stmts
}

func flattenStatement(stmt string) string {
	stmt = strings.ReplaceAll(stmt, "\\\n", " ")
	return strings.TrimSpace(strings.ReplaceAll(stmt, "\n", " "))
}

// evalLine runs one statement: an assignment or a bare expression. A bare
// expression's value is the line's result; assignments produce none.
func (i *Interp) evalLine(line string) (Value, error) {
	p := &parser{src: line, vars: i.vars, out: i.out}
	if name, ok := p.assignTarget(); ok {
		val, err := p.expr()
		if err != nil {
			return nil, err
		}
		if err := p.expectEnd(); err != nil {
			return nil, err
		}
		i.vars[name] = val
		return nil, nil
	}
	val, err := p.expr()
	if err != nil {
		return nil, err
	}
	if err := p.expectEnd(); err != nil {
		return nil, err
	}
	return val, nil
}

func format(v Value) string {
	switch x := v.(type) {
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1e15 {
			return fmt.Sprintf("%d", int64(x))
		}
		return fmt.Sprintf("%g", x)
	case string:
		return fmt.Sprintf("%q", x)
	default:
		return fmt.Sprint(x)
	}
}
