package gamma

import (
	"math"
	"slices"
)

// constructorClauses lists, for each object keyword, the clause keywords
// that may follow it. A keyword followed by anything else is an ordinary
// name.
var constructorClauses = map[string][]string{
	"observer": {"origin", "tau", "d", "velocity"},
	"frame":    {"observer", "origin"},
	"line":     {"axis", "angle", "from"},
	"path":     {"from"},
	"bounds":   {"from"},
	"interval": {"from"},
}

// objectConstructor compiles an object constructor starting at t. It
// reports false, with nothing consumed, when t does not start one.
func (p *Parser) objectConstructor(t Token) (bool, error) {
	clauses, ok := constructorClauses[t.Text]
	if !ok {
		return false, nil
	}
	if next := p.peek(); next.Type != NAME || !slices.Contains(clauses, next.Text) {
		return false, nil
	}
	p.advance()

	var err error
	switch t.Text {
	case "observer":
		err = p.observerObject()
	case "frame":
		err = p.frameObject()
	case "line":
		err = p.lineObject()
	case "path":
		err = p.pathObject()
	case "bounds":
		err = p.fromTo("bounds", OpBounds)
	case "interval":
		err = p.fromTo("interval", OpInterval)
	}
	return true, err
}

// observer [origin E] [tau E] [d E] { velocity E ((t|tau|d) E | forever) }
func (p *Parser) observerObject() error {
	for _, c := range []struct {
		word string
		def  Literal
	}{
		{"origin", Num(math.NaN())},
		{"tau", Num(0)},
		{"d", Num(0)},
	} {
		if !p.acceptKeyword(c.word) {
			p.emit(c.def)
			continue
		}
		if err := p.expression(); err != nil {
			return err
		}
	}
	p.emitOp(OpWInitializer)

	n := 0
	for p.acceptKeyword("velocity") {
		if err := p.expression(); err != nil {
			return err
		}
		limit := p.cur()
		switch {
		case limit.isName("forever"):
			p.advance()
			p.emit(Str("forever"), Num(math.NaN()))
		case limit.isName("t"), limit.isName("tau"), limit.isName("d"):
			p.advance()
			p.emit(Str(limit.Text))
			if err := p.expression(); err != nil {
				return err
			}
		default:
			return p.errorAt(limit, "a velocity segment ends with t, tau, d or forever, found %s", limit.describe())
		}
		p.emitOp(OpWSegment)
		n++
	}
	p.emit(Num(float64(n)), Op{Code: OpObserver})
	return nil
}

// frame observer E [at (t|tau|d) E]
// frame origin E velocity E
func (p *Parser) frameObject() error {
	if p.acceptKeyword("observer") {
		if err := p.expression(); err != nil {
			return err
		}
		if p.acceptKeyword("at") {
			kind := p.cur()
			if !kind.isName("t") && !kind.isName("tau") && !kind.isName("d") {
				return p.errorAt(kind, "frame observer ... at requires t, tau or d, found %s", kind.describe())
			}
			p.advance()
			p.emit(Str(kind.Text))
			if err := p.expression(); err != nil {
				return err
			}
		} else {
			p.emit(Str("t"), Num(0))
		}
		p.emit(Str("observer"), Op{Code: OpFrame})
		return nil
	}

	p.advance() // origin
	if err := p.expression(); err != nil {
		return err
	}
	if err := p.expectKeyword("velocity", "frame origin"); err != nil {
		return err
	}
	if err := p.expression(); err != nil {
		return err
	}
	p.emit(Str("origin"), Op{Code: OpFrame})
	return nil
}

// line axis E (x|t)
// line angle E through E
// line from E to E
func (p *Parser) lineObject() error {
	switch {
	case p.acceptKeyword("axis"):
		if err := p.expression(); err != nil {
			return err
		}
		kind := p.cur()
		if !kind.isName("x") && !kind.isName("t") {
			return p.errorAt(kind, "line axis requires x or t, found %s", kind.describe())
		}
		p.advance()
		p.emit(Str(kind.Text), Op{Code: OpAxisLine})
		return nil
	case p.acceptKeyword("angle"):
		if err := p.expression(); err != nil {
			return err
		}
		if err := p.expectKeyword("through", "line angle"); err != nil {
			return err
		}
		if err := p.expression(); err != nil {
			return err
		}
		p.emitOp(OpAngleLine)
		return nil
	}
	return p.fromTo("line", OpEndpointLine)
}

// path from E to E { to E }
func (p *Parser) pathObject() error {
	if err := p.expectKeyword("from", "path"); err != nil {
		return err
	}
	if err := p.expression(); err != nil {
		return err
	}
	if err := p.expectKeyword("to", "path"); err != nil {
		return err
	}
	n := 1
	for {
		if err := p.expression(); err != nil {
			return err
		}
		n++
		if !p.acceptKeyword("to") {
			break
		}
	}
	p.emit(Num(float64(n)), Op{Code: OpPath})
	return nil
}

// fromTo compiles `from E to E` followed by op.
func (p *Parser) fromTo(what string, op Opcode) error {
	if err := p.expectKeyword("from", what); err != nil {
		return err
	}
	if err := p.expression(); err != nil {
		return err
	}
	if err := p.expectKeyword("to", what); err != nil {
		return err
	}
	if err := p.expression(); err != nil {
		return err
	}
	p.emitOp(op)
	return nil
}
