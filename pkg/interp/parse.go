package interp

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/myint-archive/brepl/pkg/editor"
)

// parser is a recursive-descent evaluator over one statement. It evaluates
// as it parses; there is no separate AST.
type parser struct {
	src  string
	pos  int
	vars map[string]Value
	out  io.Writer
}

// assignTarget consumes "name =" when the line is an assignment, leaving
// the parser at the right-hand side. "==" is not an assignment.
func (p *parser) assignTarget() (string, bool) {
	save := p.pos
	p.ws()
	name := p.ident()
	if name == "" {
		p.pos = save
		return "", false
	}
	p.ws()
	if p.pos < len(p.src) && p.src[p.pos] == '=' &&
		(p.pos+1 >= len(p.src) || p.src[p.pos+1] != '=') {
		p.pos++
		return name, true
	}
	p.pos = save
	return "", false
}

func (p *parser) expectEnd() error {
	p.ws()
	if p.pos < len(p.src) {
		return fmt.Errorf("unexpected %q", p.src[p.pos:])
	}
	return nil
}

func (p *parser) expr() (Value, error) {
	left, err := p.term()
	if err != nil {
		return nil, err
	}
	for {
		p.ws()
		op := p.peek()
		if op != '+' && op != '-' {
			return left, nil
		}
		p.pos++
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		left, err = arith(op, left, right)
		if err != nil {
			return nil, err
		}
	}
}

func (p *parser) term() (Value, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		p.ws()
		op := p.peek()
		if op != '*' && op != '/' && op != '%' {
			return left, nil
		}
		if op == '*' && p.peekAt(1) == '*' {
			return left, nil
		}
		p.pos++
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		left, err = arith(op, left, right)
		if err != nil {
			return nil, err
		}
	}
}

// unary binds looser than **, so -2 ** 2 is -(2 ** 2).
func (p *parser) unary() (Value, error) {
	p.ws()
	if p.peek() == '-' {
		p.pos++
		v, err := p.unary()
		if err != nil {
			return nil, err
		}
		n, ok := v.(float64)
		if !ok {
			return nil, fmt.Errorf("unary - needs a number")
		}
		return -n, nil
	}
	return p.power()
}

func (p *parser) power() (Value, error) {
	base, err := p.primary()
	if err != nil {
		return nil, err
	}
	p.ws()
	if p.peek() == '*' && p.peekAt(1) == '*' {
		p.pos += 2
		// The exponent goes through unary so 2 ** -3 parses, and through
		// the ** chain again so the operator stays right-associative.
		exp, err := p.unary()
		if err != nil {
			return nil, err
		}
		b, ok1 := base.(float64)
		e, ok2 := exp.(float64)
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("** needs numbers")
		}
		return math.Pow(b, e), nil
	}
	return base, nil
}

func (p *parser) primary() (Value, error) {
	p.ws()
	switch c := p.peek(); {
	case c == '(':
		p.pos++
		v, err := p.expr()
		if err != nil {
			return nil, err
		}
		p.ws()
		if p.peek() != ')' {
			return nil, fmt.Errorf("missing )")
		}
		p.pos++
		return v, nil
	case c == '\'' || c == '"':
		return p.stringLit()
	case unicode.IsDigit(rune(c)) || c == '.':
		return p.number()
	default:
		name := p.ident()
		if name == "" {
			return nil, fmt.Errorf("unexpected input at %q", p.src[p.pos:])
		}
		p.ws()
		if p.peek() == '(' {
			return p.call(name)
		}
		if v, ok := p.vars[name]; ok {
			return v, nil
		}
		return nil, fmt.Errorf("undefined name %q", name)
	}
}

func (p *parser) call(name string) (Value, error) {
	p.pos++ // consume '('
	var args []Value
	p.ws()
	if p.peek() != ')' {
		for {
			v, err := p.expr()
			if err != nil {
				return nil, err
			}
			args = append(args, v)
			p.ws()
			if p.peek() != ',' {
				break
			}
			p.pos++
		}
	}
	p.ws()
	if p.peek() != ')' {
		return nil, fmt.Errorf("missing ) in call to %s", name)
	}
	p.pos++
	return p.builtin(name, args)
}

func (p *parser) builtin(name string, args []Value) (Value, error) {
	switch name {
	case "print":
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = fmt.Sprint(a)
		}
		fmt.Fprintln(p.out, strings.Join(parts, " "))
		return nil, nil
	case "len":
		if len(args) != 1 {
			return nil, fmt.Errorf("len takes one argument")
		}
		s, ok := args[0].(string)
		if !ok {
			return nil, fmt.Errorf("len needs a string")
		}
		return float64(len(s)), nil
	case "abs":
		if len(args) != 1 {
			return nil, fmt.Errorf("abs takes one argument")
		}
		n, ok := args[0].(float64)
		if !ok {
			return nil, fmt.Errorf("abs needs a number")
		}
		return math.Abs(n), nil
	case "pow":
		if len(args) != 2 {
			return nil, fmt.Errorf("pow takes two arguments")
		}
		b, ok1 := args[0].(float64)
		e, ok2 := args[1].(float64)
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("pow needs numbers")
		}
		return math.Pow(b, e), nil
	case "exit", "quit":
		return nil, editor.ErrExit
	default:
		return nil, fmt.Errorf("unknown function %q", name)
	}
}

func (p *parser) stringLit() (Value, error) {
	quote := p.src[p.pos]
	p.pos++
	var b strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == '\\' && p.pos+1 < len(p.src) {
			p.pos++
			switch p.src[p.pos] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			default:
				b.WriteByte(p.src[p.pos])
			}
			p.pos++
			continue
		}
		if c == quote {
			p.pos++
			return b.String(), nil
		}
		b.WriteByte(c)
		p.pos++
	}
	return nil, fmt.Errorf("unterminated string")
}

func (p *parser) number() (Value, error) {
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if !unicode.IsDigit(rune(c)) && c != '.' && c != 'e' && c != 'E' {
			break
		}
		p.pos++
	}
	n, err := strconv.ParseFloat(p.src[start:p.pos], 64)
	if err != nil {
		return nil, fmt.Errorf("bad number %q", p.src[start:p.pos])
	}
	return n, nil
}

func (p *parser) ident() string {
	start := p.pos
	for p.pos < len(p.src) {
		c := rune(p.src[p.pos])
		if !unicode.IsLetter(c) && c != '_' && !(p.pos > start && unicode.IsDigit(c)) {
			break
		}
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *parser) ws() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *parser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) peekAt(off int) byte {
	if p.pos+off >= len(p.src) {
		return 0
	}
	return p.src[p.pos+off]
}

func arith(op byte, a, b Value) (Value, error) {
	if sa, ok := a.(string); ok {
		sb, ok2 := b.(string)
		if op == '+' && ok2 {
			return sa + sb, nil
		}
		return nil, fmt.Errorf("unsupported operand for %c on strings", op)
	}
	na, ok1 := a.(float64)
	nb, ok2 := b.(float64)
	if !ok1 || !ok2 {
		return nil, fmt.Errorf("type mismatch for %c", op)
	}
	switch op {
	case '+':
		return na + nb, nil
	case '-':
		return na - nb, nil
	case '*':
		return na * nb, nil
	case '/':
		if nb == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		return na / nb, nil
	case '%':
		if nb == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		return math.Mod(na, nb), nil
	}
	return nil, fmt.Errorf("unknown operator %c", op)
}
