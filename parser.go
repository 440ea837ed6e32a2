// parser.go — recursive-descent statement parser and h-code generator.
//
// OVERVIEW
// --------
// A Parser compiles one top-level script into a Program: a flat []Instr plus
// the side products of compilation (merged stylesheet, dependent files,
// settings and a few flags the surrounding application needs).
//
//	program   := { statement } EOF
//	block     := "{" { statement } "}"
//	statement := ";" | block | assignment | if | while | for | break | continue
//	           | static | animate | range | toggle | choice
//	           | include | stylesheet | set | print | command
//
// Expressions are compiled by the operator-precedence engine in expr.go;
// control flow lowering lives in control.go, declarations in decls.go,
// commands in commands.go and the auxiliary statements in include.go,
// stylesheet.go and settings.go.
//
// Assignment vs keyword statements
// --------------------------------
// A statement that starts with a name is first tried as an assignment target
// (tryLeftVar). The trial returns one of three results:
//
//	noMatch    the tokens are not a left variable; reparse as a keyword
//	hardError  a reserved constant was used as a target; fail
//	matched    a target was parsed; commit if '=' follows, else reparse
//
// The trial emits into a private buffer and works on a saved cursor, so a
// failed trial leaves no trace.
//
// Includes
// --------
// `include "f";` splices the tokens of f into the parser's token slice in
// place of the two tokens `include "f"`. Spliced tokens keep their own origin
// so diagnostics point into the included file. Labels, the loop stack and all
// other state are shared with the including script.
package gamma

import (
	"errors"
	"fmt"
)

////////////////////////////////////////////////////////////////////////////////
//                                  PUBLIC API
////////////////////////////////////////////////////////////////////////////////

// Program is the result of compiling one script.
type Program struct {
	Code         []Instr
	StyleSheet   StyleSheet
	Dependencies []string // included and external stylesheet files, in order
	Settings     Settings

	HasAnimationStatement bool // an `animation` command was seen
	HasAnimationVariable  bool // an `animate` declaration was seen
	HasDisplayVariable    bool // a range, toggle or choice declaration was seen
}

// Parser holds the state of one compilation. It is used exactly once.
type Parser struct {
	opts    Options
	origin  *Origin
	src     string
	sources map[*Origin]string

	toks []Token
	c    cursor
	out  *emitter

	loops     []loopLabels
	nextLabel int
	nextLoop  int

	lastLine   int
	lastOrigin *Origin

	// exprStart is the first token of the outermost expression being
	// compiled; nested index and clause expressions report it.
	exprStart *Token

	deps     []string
	sheet    StyleSheet
	settings Settings

	hasAnimationStatement bool
	hasAnimationVariable  bool
	hasDisplayVariable    bool

	used bool
}

// NewParser returns a parser for src, the newline-normalised text of origin.
func NewParser(origin *Origin, src string, opts Options) *Parser {
	return &Parser{
		opts:     opts,
		origin:   origin,
		src:      src,
		sources:  map[*Origin]string{origin: src},
		out:      &emitter{},
		settings: Settings{},
	}
}

// Compile compiles src, known to the resolver and in diagnostics as name.
func Compile(name, src string, opts Options) (*Program, error) {
	return NewParser(NewOrigin(name), NormalizeNewlines(src), opts).Parse()
}

// Parse compiles the script. A Parser cannot be reused; a second call fails.
func (p *Parser) Parse() (*Program, error) {
	if p.used {
		return nil, errors.New("gamma: parser already used")
	}
	p.used = true

	toks, err := NewLexer(p.origin, p.src).Scan()
	if err != nil {
		return nil, err
	}
	p.toks = toks
	p.c = p.cursorAt(0)

	if err := p.program(); err != nil {
		return nil, err
	}

	code := p.out.code
	if prec, ok := p.settings["precision"]; ok {
		code = append([]Instr{prec, Op{Code: OpSetPrecision}}, code...)
	}
	return &Program{
		Code:                  code,
		StyleSheet:            p.sheet,
		Dependencies:          p.deps,
		Settings:              p.settings,
		HasAnimationStatement: p.hasAnimationStatement,
		HasAnimationVariable:  p.hasAnimationVariable,
		HasDisplayVariable:    p.hasDisplayVariable,
	}, nil
}

//// END_OF_PUBLIC

////////////////////////////////////////////////////////////////////////////////
///////////////////////////// PRIVATE IMPLEMENTATION ///////////////////////////
////////////////////////////////////////////////////////////////////////////////

// ─────────────────────────────── cursor ──────────────────────────────────

// cursor is a position in the token slice with the current token and its
// one-token lookahead. Cursors are plain values; saving one and assigning
// it back is how the parser backtracks.
type cursor struct {
	pos  int
	cur  Token
	peek Token
}

func (p *Parser) cursorAt(pos int) cursor {
	last := len(p.toks) - 1
	if pos > last {
		pos = last
	}
	c := cursor{pos: pos, cur: p.toks[pos], peek: p.toks[pos]}
	if pos < last {
		c.peek = p.toks[pos+1]
	}
	return c
}

func (p *Parser) cur() Token  { return p.c.cur }
func (p *Parser) peek() Token { return p.c.peek }

// advance moves to the next token; it never moves past EOF.
func (p *Parser) advance() {
	if p.c.cur.Type != EOF {
		p.c = p.cursorAt(p.c.pos + 1)
	}
}

func (p *Parser) expectDelim(text string) (Token, error) {
	t := p.cur()
	if !t.isDelim(text) {
		return t, p.errorAt(t, "expected '%s', found %s", text, t.describe())
	}
	p.advance()
	return t, nil
}

// expectKeyword consumes a clause keyword such as `to` or `label`.
func (p *Parser) expectKeyword(word, context string) error {
	t := p.cur()
	if !t.isName(word) {
		return p.errorAt(t, "%s requires '%s', found %s", context, word, t.describe())
	}
	p.advance()
	return nil
}

// acceptKeyword consumes word if it is the current token.
func (p *Parser) acceptKeyword(word string) bool {
	if p.cur().isName(word) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) errorAt(t Token, format string, args ...any) *CompileError {
	return errorAt(t, p.sources[t.Loc.Origin], format, args...)
}

// ─────────────────────────────── emission ─────────────────────────────────

type emitter struct {
	code []Instr
}

func (p *Parser) emit(ins ...Instr) { p.out.code = append(p.out.code, ins...) }

func (p *Parser) emitOp(code Opcode) { p.emit(Op{Code: code}) }

func (p *Parser) emitJump(code Opcode, target int) { p.emit(Op{Code: code, Target: target}) }

func (p *Parser) emitLabel(id int) { p.emit(Label(id)) }

func (p *Parser) newLabel() int {
	p.nextLabel++
	return p.nextLabel
}

// capture runs f with a fresh emitter and returns what it emitted.
func (p *Parser) capture(f func() error) ([]Instr, error) {
	saved := p.out
	p.out = &emitter{}
	err := f()
	code := p.out.code
	p.out = saved
	return code, err
}

// lineInfo emits a line marker for t unless the previous marker already
// covers its line.
func (p *Parser) lineInfo(t Token) {
	if !p.opts.LineInfo {
		return
	}
	if t.Loc.Line == p.lastLine && t.Loc.Origin == p.lastOrigin {
		return
	}
	p.lastLine, p.lastOrigin = t.Loc.Line, t.Loc.Origin
	p.emit(Op{Code: OpLineInfo, Line: t.Loc.Line})
}

// ─────────────────────────── program / blocks ────────────────────────────

func (p *Parser) program() error {
	for p.cur().Type != EOF {
		if t := p.cur(); t.isDelim("}") {
			return p.errorAt(t, "unexpected '}'")
		}
		if err := p.statement(); err != nil {
			return err
		}
	}
	return nil
}

func (p *Parser) block() error {
	open, _ := p.expectDelim("{")
	for !p.cur().isDelim("}") {
		if p.cur().Type == EOF {
			e := p.errorAt(open, "'{' is never closed")
			e.Incomplete = true
			return e
		}
		if err := p.statement(); err != nil {
			return err
		}
	}
	p.advance()
	return nil
}

// ─────────────────────────────── statements ──────────────────────────────

func (p *Parser) statement() error {
	t := p.cur()
	switch {
	case t.isDelim(";"):
		p.advance()
		return nil
	case t.isDelim("{"):
		return p.block()
	case t.Type == NAME:
		p.lineInfo(t)
		tr := p.tryLeftVar()
		switch tr.kind {
		case hardError:
			return tr.err
		case matched:
			if tr.next.cur.isDelim("=") {
				p.c = tr.next
				p.advance()
				return p.assignment(tr.code)
			}
		}
		return p.keywordStatement(t)
	case t.Type == EOF:
		return p.errorAt(t, "expected a statement")
	}
	return p.errorAt(t, "unexpected %s at start of statement", t.describe())
}

// assignment compiles `target = expr ;` once the target code is known and
// '=' has been consumed.
func (p *Parser) assignment(target []Instr) error {
	p.emit(target...)
	if err := p.expression(); err != nil {
		return err
	}
	p.emitOp(OpAssign)
	_, err := p.expectDelim(";")
	return err
}

func (p *Parser) keywordStatement(t Token) error {
	switch t.Text {
	case "if":
		return p.ifStatement()
	case "while":
		return p.whileStatement()
	case "for":
		return p.forStatement()
	case "break", "continue":
		return p.loopJump(t)
	case "static", "animate", "range", "toggle", "choice":
		return p.declaration(t)
	case "include":
		return p.include(t)
	case "stylesheet":
		return p.stylesheet(t)
	case "set":
		return p.set()
	case "print":
		return p.print()
	}
	if commandNames[t.Text] {
		return p.command(t)
	}

	// Not a statement keyword. If the name looks like the start of an
	// assignment, reparse the target for real to report its error.
	if next := p.peek(); next.isDelim("[") || next.is(OPERATOR, ".") {
		if _, err := p.leftVar(); err != nil {
			return err
		}
		return p.errorAt(p.cur(), "expected '=', found %s", p.cur().describe())
	}
	if next := p.peek(); next.isDelim("=") {
		return p.errorAt(t, "cannot assign to '%s'", t.Text)
	}
	msg := fmt.Sprintf("unknown command '%s'", t.Text)
	if s := closestMatch(t.Text, statementKeywords()); s != "" {
		msg += fmt.Sprintf(" (did you mean '%s'?)", s)
	}
	return p.errorAt(t, "%s", msg)
}

func (p *Parser) print() error {
	p.advance()
	if err := p.expression(); err != nil {
		return err
	}
	p.emitOp(OpPrint)
	_, err := p.expectDelim(";")
	return err
}

// ───────────────────────────── left variables ────────────────────────────

type trialKind int

const (
	noMatch trialKind = iota
	hardError
	matched
)

// trial is the outcome of a speculative parse.
type trial struct {
	kind trialKind
	code []Instr
	next cursor
	err  error
}

// tryLeftVar speculatively parses a left variable at the current position.
// The parser's cursor and output are left untouched.
func (p *Parser) tryLeftVar() trial {
	saved := p.c
	var hard bool
	code, err := p.capture(func() error {
		var err error
		hard, err = p.leftVar()
		return err
	})
	next := p.c
	p.c = saved
	switch {
	case err == nil:
		return trial{kind: matched, code: code, next: next}
	case hard:
		return trial{kind: hardError, err: err}
	}
	return trial{kind: noMatch}
}

// leftVar parses and emits an assignment target:
//
//	x          Name x, FetchAddress
//	x[i]       i…, Name x, DynamicName, FetchAddress
//	x.a.b      Name x, Fetch, Name a, FetchProperty, Name b, FetchPropertyAddress
//
// hard is set when the failure must not be taken as "not a left variable".
func (p *Parser) leftVar() (hard bool, err error) {
	t := p.cur()
	if t.Type != NAME {
		return false, p.errorAt(t, "expected a variable name, found %s", t.describe())
	}
	if _, ok := constantValue(t.Text); ok {
		return true, p.errConstantTarget(t)
	}
	p.advance()

	if p.cur().isDelim("[") {
		p.advance()
		if err := p.expression(); err != nil {
			return false, err
		}
		if _, err := p.expectDelim("]"); err != nil {
			return false, err
		}
		p.emit(Name(t.Text), Op{Code: OpDynamicName})
	} else {
		p.emit(Name(t.Text))
	}

	var props []string
	for p.cur().is(OPERATOR, ".") {
		p.advance()
		pt := p.cur()
		if pt.Type != NAME {
			return false, p.errorAt(pt, "expected a property name after '.', found %s", pt.describe())
		}
		props = append(props, pt.Text)
		p.advance()
	}
	if len(props) == 0 {
		p.emitOp(OpFetchAddress)
		return false, nil
	}
	p.emitOp(OpFetch)
	for i, name := range props {
		p.emit(Name(name))
		if i == len(props)-1 {
			p.emitOp(OpFetchPropertyAddress)
		} else {
			p.emitOp(OpFetchProperty)
		}
	}
	return false, nil
}

// simpleVariable parses a plain variable name, as required for loop
// variables.
func (p *Parser) simpleVariable(context string) (Token, error) {
	t := p.cur()
	if t.Type != NAME {
		return t, p.errorAt(t, "%s requires a variable name, found %s", context, t.describe())
	}
	if _, ok := constantValue(t.Text); ok {
		return t, p.errConstantTarget(t)
	}
	p.advance()
	if next := p.cur(); next.isDelim("[") || next.is(OPERATOR, ".") {
		return t, p.errorAt(next, "%s variable must be a simple name", context)
	}
	return t, nil
}

// debugf writes a trace line when Options.Debug is set.
func (p *Parser) debugf(format string, args ...any) {
	if p.opts.Debug == nil {
		return
	}
	fmt.Fprintf(p.opts.Debug, "gamma: "+format+"\n", args...)
}
