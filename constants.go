package gamma

import "math"

// reservedConstants are names replaced by their value at compile time. They
// can never be assigned, indexed or dereferenced.
var reservedConstants = map[string]float64{
	"true":     1,
	"false":    0,
	"pi":       math.Pi,
	"e":        math.E,
	"infinity": math.Inf(1),
}

// constantValue returns the value of a reserved constant name.
func constantValue(name string) (float64, bool) {
	v, ok := reservedConstants[name]
	return v, ok
}

func (p *Parser) errConstantTarget(t Token) error {
	return p.errorAt(t, "'%s' is a constant and cannot be assigned", t.Text)
}

// constNumber reports whether code is a compile-time number: a single
// number literal, optionally wrapped in unary plus or minus.
func constNumber(code []Instr) (float64, bool) {
	if len(code) == 0 {
		return 0, false
	}
	lit, ok := code[0].(Literal)
	if !ok || lit.IsString {
		return 0, false
	}
	v := lit.Num
	for _, in := range code[1:] {
		op, ok := in.(Op)
		if !ok {
			return 0, false
		}
		switch op.Code {
		case OpUnaryMinus:
			v = -v
		case OpUnaryPlus:
		default:
			return 0, false
		}
	}
	return v, true
}
