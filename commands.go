package gamma

import "sort"

// commandNames is the closed set of diagram commands.
var commandNames = map[string]bool{
	"animation": true,
	"axes":      true,
	"display":   true,
	"event":     true,
	"frame":     true,
	"grid":      true,
	"hyperbola": true,
	"hypergrid": true,
	"label":     true,
	"light":     true,
	"line":      true,
	"path":      true,
	"worldline": true,
}

// statementKeywords returns every word that can start a statement, for
// suggestions.
func statementKeywords() []string {
	words := []string{
		"if", "else", "while", "for", "break", "continue",
		"static", "animate", "range", "toggle", "choice",
		"include", "stylesheet", "set", "print",
	}
	for name := range commandNames {
		words = append(words, name)
	}
	sort.Strings(words)
	return words
}

// command compiles
//
//	COMMAND [STRING] [NAME : E {, NAME : E}] ;
//
// into
//
//	"name", E…, property   (per property)
//	"style", count, property-list, "command", command
func (p *Parser) command(t Token) error {
	p.advance()
	style := ""
	if s := p.cur(); s.Type == STRING {
		style = s.Text
		p.advance()
	}

	n := 0
	if p.cur().Type == NAME {
		for {
			name := p.cur()
			if name.Type != NAME || !p.peek().isDelim(":") {
				return p.errorAt(name, "expected a property name followed by ':', found %s", name.describe())
			}
			p.advance()
			p.advance()
			p.emit(Str(name.Text))
			if err := p.expression(); err != nil {
				return err
			}
			p.emitOp(OpProperty)
			n++
			if !p.cur().isDelim(",") {
				break
			}
			p.advance()
		}
	}

	p.emit(Str(style), Num(float64(n)), Op{Code: OpPropertyList}, Str(t.Text), Op{Code: OpCommand})
	if t.Text == "animation" {
		p.hasAnimationStatement = true
	}
	_, err := p.expectDelim(";")
	return err
}
