package gamma

import "strings"

// StyleSheet is a parsed stylesheet. Its representation belongs to the
// StyleSheets implementation; the compiler only passes it along.
type StyleSheet any

// StyleSheets parses and merges stylesheets for the compiler.
type StyleSheets interface {
	// Parse parses the text of a stylesheet; origin names it in errors.
	Parse(origin, text string) (StyleSheet, error)
	// Merge returns base with add applied after it. base may be nil.
	Merge(base, add StyleSheet) StyleSheet
}

// StyleSource is one stylesheet text and where it came from.
type StyleSource struct {
	Origin string
	Text   string
}

// TextStyleSheet is the StyleSheet of TextStyleSheets: the sources in the
// order they were merged.
type TextStyleSheet struct {
	Sources []StyleSource
}

// String returns the merged text.
func (s *TextStyleSheet) String() string {
	var b strings.Builder
	for _, src := range s.Sources {
		b.WriteString(src.Text)
		if !strings.HasSuffix(src.Text, "\n") {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// TextStyleSheets keeps stylesheet text as is and merges by concatenation.
// It is the default when Options.StyleSheets is nil.
type TextStyleSheets struct{}

func (TextStyleSheets) Parse(origin, text string) (StyleSheet, error) {
	return &TextStyleSheet{Sources: []StyleSource{{Origin: origin, Text: text}}}, nil
}

func (TextStyleSheets) Merge(base, add StyleSheet) StyleSheet {
	b, _ := base.(*TextStyleSheet)
	a, _ := add.(*TextStyleSheet)
	switch {
	case b == nil:
		return add
	case a == nil:
		return base
	}
	out := &TextStyleSheet{Sources: append([]StyleSource(nil), b.Sources...)}
	out.Sources = append(out.Sources, a.Sources...)
	return out
}

// stylesheet handles
//
//	stylesheet "text" ;
//	stylesheet external "name" ;
//
// Nothing is emitted; the parsed sheet is merged into the program's.
func (p *Parser) stylesheet(t Token) error {
	p.advance()
	external := p.acceptKeyword("external")
	s := p.cur()
	if s.Type != STRING {
		return p.errorAt(s, "stylesheet requires a string, found %s", s.describe())
	}
	p.advance()
	if _, err := p.expectDelim(";"); err != nil {
		return err
	}

	origin, text := t.Loc.Origin.String(), s.Text
	if external {
		resolved, err := p.resolver().Resolve(t.Loc.Origin, s.Text, true)
		if err == nil {
			text, err = p.resolver().Read(resolved)
		}
		if err != nil {
			e := p.errorAt(s, "cannot read stylesheet '%s': %v", s.Text, err)
			e.Err = err
			return e
		}
		origin = resolved
		p.deps = append(p.deps, resolved)
	}

	sheets := p.styleSheets()
	sheet, err := sheets.Parse(origin, text)
	if err != nil {
		e := p.errorAt(s, "stylesheet %s: %v", origin, err)
		e.Err = err
		return e
	}
	p.sheet = sheets.Merge(p.sheet, sheet)
	p.debugf("stylesheet merged from %s", origin)
	return nil
}

func (p *Parser) styleSheets() StyleSheets {
	if p.opts.StyleSheets == nil {
		return TextStyleSheets{}
	}
	return p.opts.StyleSheets
}
