package gamma

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// Settings are the compile-time values set by `set` statements, by key.
type Settings map[string]Literal

// Number returns a numeric setting.
func (s Settings) Number(key string) (float64, bool) {
	v, ok := s[key]
	if !ok || v.IsString {
		return 0, false
	}
	return v.Num, true
}

// settingChecks validates the value of each known key.
var settingChecks = map[string]func(Literal) error{
	"precision": func(v Literal) error {
		if v.IsString || v.Num < 0 || v.Num != math.Trunc(v.Num) {
			return errors.New("must be a non-negative integer")
		}
		return nil
	},
	"displayPrecision": func(v Literal) error {
		if v.IsString || v.Num < 0 || v.Num != math.Trunc(v.Num) {
			return errors.New("must be a non-negative integer")
		}
		return nil
	},
	"fps": func(v Literal) error {
		if v.IsString || !(v.Num > 0) || math.IsInf(v.Num, 0) {
			return errors.New("must be a positive number")
		}
		return nil
	},
}

func settingKeys() []string {
	keys := make([]string, 0, len(settingChecks))
	for k := range settingChecks {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// set handles `set key: value {, key: value} ;`. Values are literals: a
// number, a string, a negated number or a reserved constant.
func (p *Parser) set() error {
	p.advance()
	for {
		k := p.cur()
		if k.Type != NAME {
			return p.errorAt(k, "expected a setting name, found %s", k.describe())
		}
		check, ok := settingChecks[k.Text]
		if !ok {
			msg := fmt.Sprintf("unknown setting '%s'", k.Text)
			if s := closestMatch(k.Text, settingKeys()); s != "" {
				msg += fmt.Sprintf(" (did you mean '%s'?)", s)
			}
			return p.errorAt(k, "%s", msg)
		}
		p.advance()
		if _, err := p.expectDelim(":"); err != nil {
			return err
		}
		vt := p.cur()
		v, err := p.settingValue()
		if err != nil {
			return err
		}
		if err := check(v); err != nil {
			return p.errorAt(vt, "setting '%s' %v", k.Text, err)
		}
		p.settings[k.Text] = v
		if !p.cur().isDelim(",") {
			break
		}
		p.advance()
	}
	_, err := p.expectDelim(";")
	return err
}

func (p *Parser) settingValue() (Literal, error) {
	t := p.cur()
	neg := false
	if t.is(OPERATOR, "-") {
		neg = true
		p.advance()
		t = p.cur()
	}
	var v Literal
	switch {
	case t.Type == NUMBER:
		v = Num(t.Num)
	case t.Type == NAME:
		c, ok := constantValue(t.Text)
		if !ok {
			return v, p.errorAt(t, "setting values must be literals, found %s", t.describe())
		}
		v = Num(c)
	case t.Type == STRING && !neg:
		v = Str(t.Text)
	default:
		return v, p.errorAt(t, "setting values must be literals, found %s", t.describe())
	}
	p.advance()
	if neg {
		v.Num = -v.Num
	}
	return v, nil
}
