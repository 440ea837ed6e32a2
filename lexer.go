// lexer.go — converts Gamma script text into tokens.
//
// The lexer works on newline-normalised text (see NormalizeNewlines) and
// produces a slice of tokens that always ends in exactly one EOF token. Each
// token carries its origin, 1-based line/column and byte range.
//
// Token classes:
//   - numbers: digits with at most one '.', e.g. 12, 1.5, .5, 5.
//   - strings: '...' or "..."; \n is a newline, \x is x for any other x
//   - names:   [A-Za-z_][A-Za-z0-9_]*
//   - operators: && || == != <= >= <- -> and + - * / % ^ ! < > .
//   - delimiters: ( ) [ ] { } , ; : =
//
// Comments (// to end of line, /* ... */) are skipped. A lone '&' or '|', an
// unterminated string or comment, a number with two decimal points, and any
// other character are lexical errors.
package gamma

import (
	"strconv"
	"unicode/utf8"
	"strings"
)

// Lexer scans one source text into tokens.
type Lexer struct {
	origin *Origin
	src    string
	start  int // start index of current token
	cur    int // current index
	line   int // 1-based
	col    int // 1-based column of src[cur]
	tokens []Token

	tokLine int
	tokCol  int
}

// NewLexer creates a lexer for src, which came from origin.
func NewLexer(origin *Origin, src string) *Lexer {
	return &Lexer{origin: origin, src: src, line: 1, col: 1}
}

// NormalizeNewlines converts \r\n and lone \r line endings to \n.
func NormalizeNewlines(s string) string {
	if !strings.Contains(s, "\r") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// Scan tokenizes the entire source. The result ends with an EOF token.
func (l *Lexer) Scan() ([]Token, error) {
	for {
		tok, err := l.scanToken()
		if err != nil {
			return nil, err
		}
		if tok.Type == EOF {
			return l.tokens, nil
		}
	}
}

// ----- character helpers -----

func (l *Lexer) isAtEnd() bool { return l.cur >= len(l.src) }

func (l *Lexer) peek() (byte, bool) { return l.peekN(0) }

func (l *Lexer) peekN(n int) (byte, bool) {
	idx := l.cur + n
	if idx >= len(l.src) {
		return 0, false
	}
	return l.src[idx], true
}

func (l *Lexer) advance() byte {
	ch := l.src[l.cur]
	l.cur++
	if ch == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return ch
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
func isAlpha(b byte) bool { return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '_' }
func isAlphaNum(b byte) bool {
	return isAlpha(b) || isDigit(b)
}

func (l *Lexer) addToken(tt TokenType, text string, num float64) Token {
	tok := Token{
		Type: tt,
		Text: text,
		Num:  num,
		Loc: Location{
			Origin: l.origin,
			Line:   l.tokLine,
			Col:    l.tokCol,
			Start:  l.start,
			End:    l.cur,
		},
	}
	l.tokens = append(l.tokens, tok)
	return tok
}

// err reports a lexical error at the start of the current token.
func (l *Lexer) err(format string, args ...any) *CompileError {
	t := Token{Loc: Location{Origin: l.origin, Line: l.tokLine, Col: l.tokCol, Start: l.start, End: l.cur}}
	e := errorAt(t, l.src, format, args...)
	e.Incomplete = false
	return e
}

// ----- whitespace & comments -----

// skipSpaceAndComments discards whitespace and comments before the next
// token.
func (l *Lexer) skipSpaceAndComments() error {
	for !l.isAtEnd() {
		ch, _ := l.peek()
		switch {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\f' || ch == '\v':
			l.advance()
		case ch == '/':
			next, _ := l.peekN(1)
			switch next {
			case '/':
				for !l.isAtEnd() {
					if b, _ := l.peek(); b == '\n' {
						break
					}
					l.advance()
				}
			case '*':
				l.mark()
				l.advance()
				l.advance()
				closed := false
				for !l.isAtEnd() {
					if b, _ := l.peek(); b == '*' {
						if b2, ok := l.peekN(1); ok && b2 == '/' {
							l.advance()
							l.advance()
							closed = true
							break
						}
					}
					l.advance()
				}
				if !closed {
					e := l.err("unterminated comment")
					e.Incomplete = true
					return e
				}
			default:
				return nil
			}
		default:
			return nil
		}
	}
	return nil
}

// mark records the current position as the start of a token.
func (l *Lexer) mark() {
	l.start = l.cur
	l.tokLine = l.line
	l.tokCol = l.col
}

// ----- scanners -----

// scanString reads a quoted string whose opening quote is at l.cur.
func (l *Lexer) scanString() (string, error) {
	quote := l.advance()
	var b strings.Builder
	for !l.isAtEnd() {
		ch := l.advance()
		if ch == quote {
			return b.String(), nil
		}
		if ch == '\\' {
			if l.isAtEnd() {
				break
			}
			esc := l.advance()
			if esc == 'n' {
				b.WriteByte('\n')
			} else {
				b.WriteByte(esc)
			}
			continue
		}
		b.WriteByte(ch)
	}
	e := l.err("unterminated string")
	e.Incomplete = true
	return "", e
}

// scanNumber reads digits with at most one decimal point.
func (l *Lexer) scanNumber() (float64, error) {
	dots := 0
	for !l.isAtEnd() {
		b, _ := l.peek()
		if b == '.' {
			dots++
			l.advance()
			continue
		}
		if !isDigit(b) {
			break
		}
		l.advance()
	}
	if dots > 1 {
		return 0, l.err("malformed number '%s'", l.src[l.start:l.cur])
	}
	lex := l.src[l.start:l.cur]
	if lex == "." {
		return 0, l.err("malformed number '.'")
	}
	v, err := strconv.ParseFloat(lex, 64)
	if err != nil {
		return 0, l.err("malformed number '%s'", lex)
	}
	return v, nil
}

func (l *Lexer) scanName() string {
	for !l.isAtEnd() {
		b, _ := l.peek()
		if !isAlphaNum(b) {
			break
		}
		l.advance()
	}
	return l.src[l.start:l.cur]
}

// ----- main scanner -----

var twoCharOperators = []string{"&&", "||", "==", "!=", "<=", ">=", "<-", "->"}

func (l *Lexer) scanToken() (Token, error) {
	if err := l.skipSpaceAndComments(); err != nil {
		return Token{}, err
	}
	l.mark()
	if l.isAtEnd() {
		return l.addToken(EOF, "", 0), nil
	}

	ch, _ := l.peek()

	// Two-character operators are matched greedily.
	if l.cur+2 <= len(l.src) {
		pair := l.src[l.cur : l.cur+2]
		for _, op := range twoCharOperators {
			if pair == op {
				l.advance()
				l.advance()
				return l.addToken(OPERATOR, op, 0), nil
			}
		}
	}

	switch ch {
	case '(', ')', '[', ']', '{', '}', ',', ';', ':', '=':
		l.advance()
		return l.addToken(DELIMITER, string(ch), 0), nil
	case '+', '-', '*', '/', '%', '^', '!', '<', '>':
		l.advance()
		return l.addToken(OPERATOR, string(ch), 0), nil
	case '&', '|':
		l.advance()
		return Token{}, l.err("'%c' is not an operator (did you mean '%c%c'?)", ch, ch, ch)
	case '.':
		if next, ok := l.peekN(1); ok && isDigit(next) {
			break
		}
		l.advance()
		return l.addToken(OPERATOR, ".", 0), nil
	case '"', '\'':
		text, err := l.scanString()
		if err != nil {
			return Token{}, err
		}
		return l.addToken(STRING, text, 0), nil
	}

	if isDigit(ch) || ch == '.' {
		v, err := l.scanNumber()
		if err != nil {
			return Token{}, err
		}
		return l.addToken(NUMBER, l.src[l.start:l.cur], v), nil
	}

	if isAlpha(ch) {
		return l.addToken(NAME, l.scanName(), 0), nil
	}

	r, size := utf8.DecodeRuneInString(l.src[l.cur:])
	for i := 0; i < size; i++ {
		l.advance()
	}
	return Token{}, l.err("unexpected character %q", r)
}
