package gamma

import "math"

// declaration compiles the declarations that bind a variable to something
// other than a plain value:
//
//	static  v = E ;
//	animate v = E [to E] [step E] ;
//	range   v = E from E to E label E ;
//	toggle  v = E label E [restart] ;
//	choice  v = E choices E {, E} label E [restart] ;
//
// Each emits the target code, the initial value, the clause values and
// the declaration's assign opcode.
func (p *Parser) declaration(kw Token) error {
	p.advance()
	if _, err := p.leftVar(); err != nil {
		return err
	}
	if _, err := p.expectDelim("="); err != nil {
		return err
	}
	if err := p.expression(); err != nil {
		return err
	}

	var err error
	switch kw.Text {
	case "static":
		p.emitOp(OpStaticAssign)
	case "animate":
		err = p.animateClauses(kw)
	case "range":
		err = p.rangeClauses()
	case "toggle":
		err = p.toggleClauses()
	case "choice":
		err = p.choiceClauses()
	}
	if err != nil {
		return err
	}
	_, err = p.expectDelim(";")
	return err
}

func (p *Parser) animateClauses(kw Token) error {
	sawTo := p.acceptKeyword("to")
	if sawTo {
		if err := p.expression(); err != nil {
			return err
		}
	} else {
		p.emit(Num(math.NaN()))
	}
	sawStep := p.acceptKeyword("step")
	if sawStep {
		if err := p.expression(); err != nil {
			return err
		}
	} else {
		p.emit(Num(1))
	}
	if !sawTo && !sawStep {
		return p.errorAt(kw, "animate requires a 'to' or 'step' clause")
	}
	p.emitOp(OpAnimationAssign)
	p.hasAnimationVariable = true
	return nil
}

func (p *Parser) rangeClauses() error {
	for _, word := range []string{"from", "to", "label"} {
		if err := p.expectKeyword(word, "range"); err != nil {
			return err
		}
		if err := p.expression(); err != nil {
			return err
		}
	}
	p.emitOp(OpRangeAssign)
	p.hasDisplayVariable = true
	return nil
}

func (p *Parser) toggleClauses() error {
	if err := p.labelClause("toggle"); err != nil {
		return err
	}
	p.emit(p.restartFlag(), Op{Code: OpToggleAssign})
	p.hasDisplayVariable = true
	return nil
}

func (p *Parser) choiceClauses() error {
	if err := p.expectKeyword("choices", "choice"); err != nil {
		return err
	}
	n := 0
	for {
		if err := p.expression(); err != nil {
			return err
		}
		n++
		if !p.cur().isDelim(",") {
			break
		}
		p.advance()
	}
	if err := p.labelClause("choice"); err != nil {
		return err
	}
	p.emit(p.restartFlag(), Num(float64(n)), Op{Code: OpChoiceAssign})
	p.hasDisplayVariable = true
	return nil
}

func (p *Parser) labelClause(context string) error {
	if err := p.expectKeyword("label", context); err != nil {
		return err
	}
	return p.expression()
}

// restartFlag consumes an optional `restart` and returns it as 0 or 1.
func (p *Parser) restartFlag() Literal {
	if p.acceptKeyword("restart") {
		return Num(1)
	}
	return Num(0)
}
