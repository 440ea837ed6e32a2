package gamma

import "strings"

// DefaultMaxIncludeDepth bounds include nesting when Options leaves it zero.
const DefaultMaxIncludeDepth = 32

// include handles `include "name";`. The file's tokens, minus their EOF,
// replace the `include` and string tokens in place; the `;` stays and is
// parsed as an empty statement after the included statements. The first
// spliced statement is parsed here, so `if (c) include "f";` guards it the
// way it would guard the text of f.
func (p *Parser) include(t Token) error {
	p.advance()
	nameTok := p.cur()
	if nameTok.Type != STRING {
		return p.errorAt(nameTok, "include requires a file name string, found %s", nameTok.describe())
	}
	if semi := p.peek(); !semi.isDelim(";") {
		return p.errorAt(semi, "expected ';' after include, found %s", semi.describe())
	}

	base := t.Loc.Origin
	resolved, err := p.resolver().Resolve(base, nameTok.Text, false)
	if err != nil {
		e := p.errorAt(nameTok, "cannot include '%s': %v", nameTok.Text, err)
		e.Err = err
		return e
	}
	if base.includes(resolved) {
		chain := append(base.chain(), resolved)
		return p.errorAt(nameTok, "include cycle: %s", strings.Join(chain, " -> "))
	}
	if limit := p.maxIncludeDepth(); base.Depth()+1 > limit {
		return p.errorAt(nameTok, "includes nested deeper than %d", limit)
	}
	text, err := p.resolver().Read(resolved)
	if err != nil {
		e := p.errorAt(nameTok, "cannot include '%s': %v", nameTok.Text, err)
		e.Err = err
		return e
	}
	text = NormalizeNewlines(text)

	child := base.child(resolved)
	toks, err := NewLexer(child, text).Scan()
	if err != nil {
		return err
	}
	p.sources[child] = text
	p.deps = append(p.deps, resolved)

	// Replace toks[pos] (include) and toks[pos+1] (the name).
	pos := p.c.pos - 1
	body := toks[:len(toks)-1]
	spliced := make([]Token, 0, len(p.toks)-2+len(body))
	spliced = append(spliced, p.toks[:pos]...)
	spliced = append(spliced, body...)
	spliced = append(spliced, p.toks[pos+2:]...)
	p.toks = spliced
	p.c = p.cursorAt(pos)

	p.debugf("include %s from %s: %d tokens", resolved, base, len(body))
	return p.statement()
}

func (p *Parser) resolver() Resolver {
	if p.opts.Resolver == nil {
		p.opts.Resolver = NewFSResolver(nil)
	}
	return p.opts.Resolver
}

func (p *Parser) maxIncludeDepth() int {
	if p.opts.MaxIncludeDepth > 0 {
		return p.opts.MaxIncludeDepth
	}
	return DefaultMaxIncludeDepth
}
