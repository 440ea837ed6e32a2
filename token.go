// token.go — tokens, origins and source locations shared by the lexer and
// the parser.
package gamma

import (
	"fmt"
	"strconv"
)

// TokenType is the kind of a token.
type TokenType int

const (
	EOF TokenType = iota
	NUMBER
	STRING
	NAME
	OPERATOR
	DELIMITER
)

var tokenTypeNames = [...]string{
	EOF:       "end of input",
	NUMBER:    "number",
	STRING:    "string",
	NAME:      "name",
	OPERATOR:  "operator",
	DELIMITER: "delimiter",
}

func (t TokenType) String() string {
	if int(t) < len(tokenTypeNames) {
		return tokenTypeNames[t]
	}
	return "TokenType(" + strconv.Itoa(int(t)) + ")"
}

// Origin identifies a source text: a file path, a URL, or a name chosen by
// the caller. Parent is the origin whose include statement pulled this one
// in; it is nil for the top-level script.
type Origin struct {
	Name   string
	Parent *Origin
}

// NewOrigin returns a top-level origin.
func NewOrigin(name string) *Origin { return &Origin{Name: name} }

// child returns the origin of a file included from o.
func (o *Origin) child(name string) *Origin { return &Origin{Name: name, Parent: o} }

// Depth is the include nesting level of o (0 for the top-level script).
func (o *Origin) Depth() int {
	d := 0
	for p := o; p != nil && p.Parent != nil; p = p.Parent {
		d++
	}
	return d
}

// includes reports whether name is o or one of its ancestors.
func (o *Origin) includes(name string) bool {
	for p := o; p != nil; p = p.Parent {
		if p.Name == name {
			return true
		}
	}
	return false
}

// chain renders the include path from the top-level script down to o.
func (o *Origin) chain() []string {
	var out []string
	for p := o; p != nil; p = p.Parent {
		out = append([]string{p.Name}, out...)
	}
	return out
}

func (o *Origin) String() string {
	if o == nil {
		return ""
	}
	return o.Name
}

// Location is a token's source span. Line and Col are 1-based; [Start, End)
// is the byte range in the origin's text.
type Location struct {
	Origin *Origin
	Line   int
	Col    int
	Start  int
	End    int
}

func (l Location) String() string {
	if l.Origin == nil || l.Origin.Name == "" {
		return fmt.Sprintf("%d:%d", l.Line, l.Col)
	}
	return fmt.Sprintf("%s:%d:%d", l.Origin.Name, l.Line, l.Col)
}

// Token is one lexical token. Text is the name, operator or delimiter text,
// or the decoded value of a string; Num is the value of a number.
type Token struct {
	Type TokenType
	Text string
	Num  float64
	Loc  Location
}

func (t Token) is(tt TokenType, text string) bool { return t.Type == tt && t.Text == text }

func (t Token) isDelim(text string) bool { return t.is(DELIMITER, text) }

func (t Token) isName(text string) bool { return t.is(NAME, text) }

// describe renders the token for error messages.
func (t Token) describe() string {
	switch t.Type {
	case EOF:
		return "end of input"
	case NUMBER:
		return "'" + formatNumber(t.Num) + "'"
	case STRING:
		return strconv.Quote(t.Text)
	default:
		return "'" + t.Text + "'"
	}
}

func formatNumber(n float64) string { return strconv.FormatFloat(n, 'g', -1, 64) }
