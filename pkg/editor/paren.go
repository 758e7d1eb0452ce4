package editor

// ParenHighlight records a bracket drawn highlighted so the renderer can
// restore it to plain styling before the next draw. LineIndex -1 is the live
// line; other values index earlier lines of the current turn.
type ParenHighlight struct {
	LineIndex int
	Col       int
}

var bracketMates = map[rune]rune{
	')': '(', ']': '[', '}': '{',
	'(': ')', '[': ']', '{': '}',
}

func isOpenBracket(r rune) bool  { return r == '(' || r == '[' || r == '{' }
func isCloseBracket(r rune) bool { return r == ')' || r == ']' || r == '}' }

// MatchParen finds the mate of the bracket immediately left of the cursor.
// Closing brackets are matched backward through the live line and then the
// turn's earlier lines; opening brackets forward through the rest of the
// live line.
func MatchParen(prev []string, cur string, cursor int) (ParenHighlight, bool) {
	rs := []rune(cur)
	if cursor < 1 || cursor > len(rs) {
		return ParenHighlight{}, false
	}
	b := rs[cursor-1]
	switch {
	case isCloseBracket(b):
		return matchBackward(prev, rs, cursor-1, b)
	case isOpenBracket(b):
		return matchForward(rs, cursor-1, b)
	}
	return ParenHighlight{}, false
}

func matchForward(rs []rune, at int, open rune) (ParenHighlight, bool) {
	want := bracketMates[open]
	depth := 0
	var quote rune
	for i := at; i < len(rs); i++ {
		r := rs[i]
		if quote != 0 {
			if r == quote && rs[i-1] != '\\' {
				quote = 0
			}
			continue
		}
		switch {
		case r == '\'' || r == '"':
			quote = r
		case r == open:
			depth++
		case r == want:
			depth--
			if depth == 0 {
				return ParenHighlight{LineIndex: -1, Col: i}, true
			}
		}
	}
	return ParenHighlight{}, false
}

func matchBackward(prev []string, rs []rune, at int, close rune) (ParenHighlight, bool) {
	want := bracketMates[close]
	depth := 0
	scan := func(lineIdx int, rs []rune, from int) (ParenHighlight, bool) {
		for i := from; i >= 0; i-- {
			switch rs[i] {
			case close:
				depth++
			case want:
				depth--
				if depth == 0 {
					return ParenHighlight{LineIndex: lineIdx, Col: i}, true
				}
			}
		}
		return ParenHighlight{}, false
	}
	if hl, ok := scan(-1, rs, at); ok {
		return hl, true
	}
	for li := len(prev) - 1; li >= 0; li-- {
		line := []rune(prev[li])
		if hl, ok := scan(li, line, len(line)-1); ok {
			return hl, true
		}
	}
	return ParenHighlight{}, false
}
