// expr.go — the operator-precedence expression engine.
//
// Expressions are compiled by a shunting-yard loop rather than by recursive
// descent. Operands are emitted as soon as they are read; operators wait on
// a stack until an operator of lower precedence (or a closing parenthesis,
// or the end of the expression) forces them out.
//
// State:
//
//	ops    operator stack; holds operators, '(' markers and function markers
//	depth  parenthesis depth, -1 outside any parenthesis
//	args   commas seen at each depth
//	item   the last thing read was an operand
//
// Whether '+', '-' and '!' are prefix or infix depends on item. An
// expression ends at the first token that cannot continue it: an operand
// right after an operand, a delimiter other than '(' ',' ')' at depth -1,
// an operator with no binary form after an operand, or EOF.
//
// Short circuits: pushing && allocates a label and emits `jump-and L`;
// popping it emits `L:`. || is the same with `jump-or`. The engine expects
// jump-and to jump keeping the value when it is false and to pop it
// otherwise, and jump-or to do the mirror.
//
// Sub-expressions (index expressions and the clauses of object
// constructors) are compiled by a fresh engine.
package gamma

type entryKind int

const (
	operatorEntry entryKind = iota
	parenEntry
	funcEntry
)

type stackEntry struct {
	kind  entryKind
	op    *Operator
	tok   Token
	label int // short-circuit target
}

// funcMarker is the operator stack entry of a function call.
var funcMarker = &Operator{Text: "call", Prec: funcPrec, Op: OpCall}

type exprEngine struct {
	p     *Parser
	ops   []stackEntry
	depth int
	args  []int
	item  bool
	dot   bool // the last operator was '.'
}

// expression compiles one expression at the cursor and emits its code.
func (p *Parser) expression() error {
	if p.exprStart == nil {
		t := p.cur()
		p.exprStart = &t
		defer func() { p.exprStart = nil }()
	}
	e := &exprEngine{p: p, depth: -1}
	return e.run()
}

func (e *exprEngine) run() error {
	p := e.p
	start := p.c
	for {
		done, err := e.step(p.cur())
		if err != nil {
			return err
		}
		if done {
			break
		}
	}
	return e.finish(start)
}

func (e *exprEngine) step(t Token) (done bool, err error) {
	p := e.p
	switch t.Type {
	case NUMBER, STRING:
		if e.item {
			return true, nil
		}
		if t.Type == NUMBER {
			p.emit(Num(t.Num))
		} else {
			p.emit(Str(t.Text))
		}
		p.advance()
		e.operand()
		return false, nil
	case NAME:
		if e.item {
			return true, nil
		}
		return false, e.name(t)
	case OPERATOR:
		if e.item {
			return e.binary(t)
		}
		return false, e.unary(t)
	case DELIMITER:
		switch t.Text {
		case "(":
			if e.item {
				return true, nil
			}
			e.open(t)
			return false, nil
		case ",":
			if e.depth < 0 {
				return true, nil
			}
			return false, e.comma(t)
		case ")":
			if e.depth < 0 {
				return true, nil
			}
			return false, e.close(t)
		}
	}
	return true, nil
}

func (e *exprEngine) finish(start cursor) error {
	p := e.p
	t := p.cur()
	if e.depth >= 0 || !e.item {
		switch {
		case t.Type == EOF:
			err := p.errorAt(*p.exprStart, "unterminated expression")
			err.Incomplete = true
			return err
		case p.c.pos == start.pos:
			return p.errorAt(t, "expected an expression, found %s", t.describe())
		case e.item:
			return p.errorAt(t, "expected ')', found %s", t.describe())
		}
		return p.errorAt(t, "unexpected %s in expression", t.describe())
	}
	for len(e.ops) > 0 {
		e.emitEntry(e.pop())
	}
	return nil
}

// ─────────────────────────────── stack ───────────────────────────────────

func (e *exprEngine) push(en stackEntry) { e.ops = append(e.ops, en) }

func (e *exprEngine) pop() stackEntry {
	en := e.ops[len(e.ops)-1]
	e.ops = e.ops[:len(e.ops)-1]
	return en
}

func (e *exprEngine) top() (stackEntry, bool) {
	if len(e.ops) == 0 {
		return stackEntry{}, false
	}
	return e.ops[len(e.ops)-1], true
}

func (e *exprEngine) emitEntry(en stackEntry) {
	if en.op.shortCircuit() {
		e.p.emitLabel(en.label)
		return
	}
	e.p.emitOp(en.op.Op)
}

// flushToParen emits every operator above the innermost '('.
func (e *exprEngine) flushToParen() {
	for {
		top, ok := e.top()
		if !ok || top.kind != operatorEntry {
			return
		}
		e.emitEntry(e.pop())
	}
}

func (e *exprEngine) operand() {
	e.item = true
	e.dot = false
}

// ───────────────────────────── operators ─────────────────────────────────

func (e *exprEngine) unary(t Token) error {
	op, ok := operators.lookup(t.Text, Unary)
	if !ok {
		return e.p.errorAt(t, "expected an operand, found %s", t.describe())
	}
	e.push(stackEntry{kind: operatorEntry, op: op, tok: t})
	e.p.advance()
	return nil
}

func (e *exprEngine) binary(t Token) (done bool, err error) {
	p := e.p
	op, ok := operators.lookup(t.Text, Binary)
	if !ok {
		return true, nil
	}
	for {
		top, ok := e.top()
		if !ok || top.kind != operatorEntry || !top.op.yieldsTo(op) {
			break
		}
		e.emitEntry(e.pop())
	}
	en := stackEntry{kind: operatorEntry, op: op, tok: t}
	if op.shortCircuit() {
		en.label = p.newLabel()
		p.emitJump(op.Op, en.label)
	}
	e.push(en)
	p.advance()

	e.item = false
	e.dot = op.Op == OpFetchProperty
	if e.dot && p.cur().Type != NAME {
		return false, p.errorAt(p.cur(), "expected a property name after '.', found %s", p.cur().describe())
	}
	return false, nil
}

// ──────────────────────────── parentheses ────────────────────────────────

func (e *exprEngine) open(t Token) {
	e.push(stackEntry{kind: parenEntry, tok: t})
	e.depth++
	e.args = append(e.args, 0)
	e.p.advance()
}

func (e *exprEngine) comma(t Token) error {
	if !e.item {
		return e.p.errorAt(t, "unexpected ','")
	}
	e.flushToParen()
	e.args[e.depth]++
	e.item = false
	e.p.advance()
	return nil
}

func (e *exprEngine) close(t Token) error {
	p := e.p
	if !e.item {
		if top, _ := e.top(); top.kind != parenEntry || e.args[e.depth] > 0 {
			return p.errorAt(t, "unexpected ')'")
		}
	}
	e.flushToParen()
	paren := e.pop()

	n := 0
	if e.item {
		n = e.args[e.depth] + 1
	}
	e.args = e.args[:e.depth]
	e.depth--
	p.advance()

	if top, ok := e.top(); ok && top.kind == funcEntry {
		fn := e.pop()
		p.emit(Name(fn.tok.Text), Num(float64(n)), Op{Code: fn.op.Op})
		e.operand()
		return nil
	}
	switch n {
	case 0:
		return p.errorAt(paren.tok, "empty parentheses")
	case 1:
	case 2:
		p.emitOp(OpCoordinate)
	default:
		return p.errorAt(paren.tok, "a coordinate has two values, found %d", n)
	}
	e.operand()
	return nil
}

// ─────────────────────────────── names ───────────────────────────────────

func (e *exprEngine) name(t Token) error {
	p := e.p
	next := p.peek()

	switch {
	case e.dot:
		p.emit(Name(t.Text))
		p.advance()
		e.operand()
		return nil
	case t.Text == "defined" && next.isDelim("("):
		return e.defined()
	case next.isDelim("("):
		if _, ok := constantValue(t.Text); ok {
			return p.errorAt(t, "'%s' is a constant, not a function", t.Text)
		}
		e.push(stackEntry{kind: funcEntry, op: funcMarker, tok: t})
		p.advance()
		return nil
	}

	if ok, err := p.objectConstructor(t); ok || err != nil {
		if err == nil {
			e.operand()
		}
		return err
	}

	if v, ok := constantValue(t.Text); ok {
		switch {
		case next.isDelim("["):
			return p.errorAt(next, "constant '%s' cannot be indexed", t.Text)
		case next.is(OPERATOR, "."):
			return p.errorAt(next, "constant '%s' has no properties", t.Text)
		}
		p.emit(Num(v))
		p.advance()
		e.operand()
		return nil
	}

	p.advance()
	if p.cur().isDelim("[") {
		p.advance()
		if err := p.expression(); err != nil {
			return err
		}
		if _, err := p.expectDelim("]"); err != nil {
			return err
		}
		p.emit(Name(t.Text), Op{Code: OpDynamicName})
	} else {
		p.emit(Name(t.Text))
	}
	p.emitOp(OpFetch)
	e.operand()
	return nil
}

// defined compiles `defined(name)`.
func (e *exprEngine) defined() error {
	p := e.p
	p.advance() // defined
	p.advance() // (
	t := p.cur()
	if t.Type != NAME {
		return p.errorAt(t, "defined() requires a variable name, found %s", t.describe())
	}
	if _, ok := constantValue(t.Text); ok {
		return p.errorAt(t, "'%s' is a constant, not a variable", t.Text)
	}
	p.advance()
	if _, err := p.expectDelim(")"); err != nil {
		return err
	}
	p.emit(Name(t.Text), Op{Code: OpIsDefined})
	e.operand()
	return nil
}
