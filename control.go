package gamma

import "strconv"

// loopLabels are the jump targets of the innermost enclosing loop.
type loopLabels struct {
	cont int
	exit int
}

func (p *Parser) pushLoop(l loopLabels) { p.loops = append(p.loops, l) }

func (p *Parser) popLoop() { p.loops = p.loops[:len(p.loops)-1] }

// if E S1 [else S2]
//
//	E…, jump-if-false Lelse, S1…, jump Lexit, Lelse:, S2…, Lexit:
//
// Without else the false jump goes straight to the exit label.
func (p *Parser) ifStatement() error {
	p.advance()
	if err := p.expression(); err != nil {
		return err
	}
	lelse := p.newLabel()
	p.emitJump(OpJumpIfFalse, lelse)
	if err := p.statement(); err != nil {
		return err
	}
	if !p.acceptKeyword("else") {
		p.emitLabel(lelse)
		return nil
	}
	lexit := p.newLabel()
	p.emitJump(OpJump, lexit)
	p.emitLabel(lelse)
	if err := p.statement(); err != nil {
		return err
	}
	p.emitLabel(lexit)
	return nil
}

// while E S
//
//	Lstart:, E…, jump-if-false Lexit, S…, jump Lstart, Lexit:
func (p *Parser) whileStatement() error {
	p.advance()
	lstart, lexit := p.newLabel(), p.newLabel()
	p.emitLabel(lstart)
	if err := p.expression(); err != nil {
		return err
	}
	p.emitJump(OpJumpIfFalse, lexit)

	p.pushLoop(loopLabels{cont: lstart, exit: lexit})
	if err := p.statement(); err != nil {
		return err
	}
	p.popLoop()

	p.emitJump(OpJump, lstart)
	p.emitLabel(lexit)
	return nil
}

// for v = INIT to FINAL [step STEP] S
//
// v = INIT is a plain assignment. FINAL and STEP are evaluated once: a
// constant is folded into the loop test, anything else is stored in a hidden
// variable before the loop. A constant step of zero never runs the body, so
// the body is compiled and dropped.
//
//	[step guard]
//	Ltest:, <test>, jump-if-false Lexit, S…,
//	Lcont:, v = v + STEP, jump Ltest, Lexit:
//
// With a constant step the test is v <= FINAL (v >= FINAL when negative). A
// step known only at run time exits at once when it is zero and otherwise
// tests (STEP > 0 && v <= FINAL) || (STEP < 0 && v >= FINAL).
func (p *Parser) forStatement() error {
	p.advance()
	v, err := p.simpleVariable("for")
	if err != nil {
		return err
	}
	if _, err := p.expectDelim("="); err != nil {
		return err
	}
	p.emit(Name(v.Text), Op{Code: OpFetchAddress})
	if err := p.expression(); err != nil {
		return err
	}
	p.emitOp(OpAssign)

	if err := p.expectKeyword("to", "for"); err != nil {
		return err
	}
	finalCode, err := p.capture(p.expression)
	if err != nil {
		return err
	}
	stepCode := []Instr{Num(1)}
	if p.acceptKeyword("step") {
		if stepCode, err = p.capture(p.expression); err != nil {
			return err
		}
	}

	id := p.nextLoop
	p.nextLoop++
	final := p.loopBound("final", id, finalCode)
	step := p.loopBound("step", id, stepCode)
	stepValue, stepConst := constNumber(step)

	if stepConst && stepValue == 0 {
		p.debugf("for %s at %s: step is 0, body dropped", v.Text, v.Loc)
		p.pushLoop(loopLabels{cont: p.newLabel(), exit: p.newLabel()})
		line, origin := p.lastLine, p.lastOrigin
		_, err := p.capture(p.statement)
		p.lastLine, p.lastOrigin = line, origin
		p.popLoop()
		return err
	}

	ltest, lcont, lexit := p.newLabel(), p.newLabel(), p.newLabel()
	fetchVar := []Instr{Name(v.Text), Op{Code: OpFetch}}

	if !stepConst {
		p.emit(step...)
		p.emit(Num(0), Op{Code: OpEq})
		p.emitJump(OpJumpIfTrue, lexit)
	}
	p.emitLabel(ltest)
	switch {
	case stepConst:
		p.emit(fetchVar...)
		p.emit(final...)
		if stepValue > 0 {
			p.emitOp(OpLe)
		} else {
			p.emitOp(OpGe)
		}
	default:
		// Same code as the expression
		// (step > 0 && v <= final) || (step < 0 && v >= final).
		land1 := p.newLabel()
		lor := p.newLabel()
		land2 := p.newLabel()
		p.emit(step...)
		p.emit(Num(0), Op{Code: OpGt})
		p.emitJump(OpJumpAnd, land1)
		p.emit(fetchVar...)
		p.emit(final...)
		p.emitOp(OpLe)
		p.emitLabel(land1)
		p.emitJump(OpJumpOr, lor)
		p.emit(step...)
		p.emit(Num(0), Op{Code: OpLt})
		p.emitJump(OpJumpAnd, land2)
		p.emit(fetchVar...)
		p.emit(final...)
		p.emitOp(OpGe)
		p.emitLabel(land2)
		p.emitLabel(lor)
	}
	p.emitJump(OpJumpIfFalse, lexit)

	p.pushLoop(loopLabels{cont: lcont, exit: lexit})
	if err := p.statement(); err != nil {
		return err
	}
	p.popLoop()

	p.emitLabel(lcont)
	p.emit(Name(v.Text), Op{Code: OpFetchAddress})
	p.emit(fetchVar...)
	p.emit(step...)
	p.emit(Op{Code: OpAdd}, Op{Code: OpAssign})
	p.emitJump(OpJump, ltest)
	p.emitLabel(lexit)
	return nil
}

// loopBound returns the code that yields a loop bound inside the loop. A
// constant becomes a single literal; anything else is assigned to a hidden
// variable, whose name cannot be written in a script, and fetched from it.
func (p *Parser) loopBound(kind string, id int, code []Instr) []Instr {
	if v, ok := constNumber(code); ok {
		p.debugf("for bound %s%d is constant %s", kind, id, formatNumber(v))
		return []Instr{Num(v)}
	}
	hidden := Name("#" + kind + strconv.Itoa(id))
	p.emit(hidden, Op{Code: OpFetchAddress})
	p.emit(code...)
	p.emitOp(OpAssign)
	return []Instr{hidden, Op{Code: OpFetch}}
}

// break ; / continue ;
func (p *Parser) loopJump(t Token) error {
	p.advance()
	if len(p.loops) == 0 {
		return p.errorAt(t, "'%s' is not inside a loop", t.Text)
	}
	l := p.loops[len(p.loops)-1]
	if t.Text == "break" {
		p.emitJump(OpJump, l.exit)
	} else {
		p.emitJump(OpJump, l.cont)
	}
	_, err := p.expectDelim(";")
	return err
}
