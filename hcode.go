// hcode.go — the compiler's output: a flat stream of h-codes.
//
// A compiled program is a []Instr. Every element is exactly one of:
//
//	Literal  a number or string pushed on the engine's stack
//	Name     a variable, property or function name
//	Label    a jump target marker; jumps carry the label id, not a position
//	Op       an opcode
//
// The stream is flat: if/while/for/&&/|| are lowered to jumps and labels. The
// execution engine resolves label ids to positions.
package gamma

import (
	"strconv"
)

// Instr is one h-code. The set of implementations is closed.
type Instr interface {
	String() string
	instr()
}

// Literal is a number or string constant.
type Literal struct {
	Num      float64
	Str      string
	IsString bool
}

// Name is a variable, property or function name.
type Name string

// Label marks a jump target.
type Label int

// Op is an opcode. Target is the label id of a jump; Line is the source line
// of an OpLineInfo marker.
type Op struct {
	Code   Opcode
	Target int
	Line   int
}

func (Literal) instr() {}
func (Name) instr()    {}
func (Label) instr()   {}
func (Op) instr()      {}

// Num returns a number literal.
func Num(n float64) Literal { return Literal{Num: n} }

// Str returns a string literal.
func Str(s string) Literal { return Literal{Str: s, IsString: true} }

// Opcode enumerates the engine operations.
type Opcode uint8

const (
	OpNop Opcode = iota

	// variables and properties
	OpFetch                // name → value
	OpFetchAddress         // name → assignable reference
	OpFetchProperty        // object, name → value
	OpFetchPropertyAddress // object, name → assignable reference
	OpDynamicName          // index, name → name "name[index]"

	// assignment
	OpAssign
	OpStaticAssign
	OpAnimationAssign
	OpRangeAssign
	OpToggleAssign
	OpChoiceAssign

	// arithmetic
	OpAdd
	OpSub
	OpMult
	OpDiv
	OpRemainder
	OpExponent
	OpUnaryPlus
	OpUnaryMinus

	// relational
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe

	// logical; OpAnd/OpOr are the eager forms, the compiler emits the jumps
	OpAnd
	OpOr
	OpNot

	// control flow
	OpJump
	OpJumpIfTrue
	OpJumpIfFalse
	OpJumpAnd // top false: jump keeping it; else pop
	OpJumpOr  // top true: jump keeping it; else pop

	// calls and object construction
	OpCall // args…, name, argc
	OpCoordinate
	OpObserver
	OpFrame
	OpAxisLine
	OpAngleLine
	OpEndpointLine
	OpPath
	OpBounds
	OpInterval
	OpWInitializer
	OpWSegment

	// commands and statements
	OpProperty
	OpPropertyList
	OpCommand
	OpPrint
	OpIsDefined
	OpSetPrecision
	OpLineInfo

	numOpcodes
)

var opcodeNames = [numOpcodes]string{
	OpNop:                  "nop",
	OpFetch:                "fetch",
	OpFetchAddress:         "fetch-address",
	OpFetchProperty:        "fetch-property",
	OpFetchPropertyAddress: "fetch-property-address",
	OpDynamicName:          "dynamic-name",
	OpAssign:               "assign",
	OpStaticAssign:         "static-assign",
	OpAnimationAssign:      "animation-assign",
	OpRangeAssign:          "range-assign",
	OpToggleAssign:         "toggle-assign",
	OpChoiceAssign:         "choice-assign",
	OpAdd:                  "add",
	OpSub:                  "sub",
	OpMult:                 "mult",
	OpDiv:                  "div",
	OpRemainder:            "remainder",
	OpExponent:             "exponent",
	OpUnaryPlus:            "unary-plus",
	OpUnaryMinus:           "unary-minus",
	OpEq:                   "eq",
	OpNe:                   "ne",
	OpLt:                   "lt",
	OpLe:                   "le",
	OpGt:                   "gt",
	OpGe:                   "ge",
	OpAnd:                  "and",
	OpOr:                   "or",
	OpNot:                  "not",
	OpJump:                 "jump",
	OpJumpIfTrue:           "jump-if-true",
	OpJumpIfFalse:          "jump-if-false",
	OpJumpAnd:              "jump-and",
	OpJumpOr:               "jump-or",
	OpCall:                 "call",
	OpCoordinate:           "coordinate",
	OpObserver:             "observer",
	OpFrame:                "frame",
	OpAxisLine:             "axis-line",
	OpAngleLine:            "angle-line",
	OpEndpointLine:         "endpoint-line",
	OpPath:                 "path",
	OpBounds:               "bounds",
	OpInterval:             "interval",
	OpWInitializer:         "worldline-initializer",
	OpWSegment:             "worldline-segment",
	OpProperty:             "property",
	OpPropertyList:         "property-list",
	OpCommand:              "command",
	OpPrint:                "print",
	OpIsDefined:            "is-defined",
	OpSetPrecision:         "set-precision",
	OpLineInfo:             "line-info",
}

func (o Opcode) String() string {
	if o < numOpcodes {
		return opcodeNames[o]
	}
	return "opcode(" + strconv.Itoa(int(o)) + ")"
}

// IsJump reports whether o carries a label target.
func (o Opcode) IsJump() bool {
	switch o {
	case OpJump, OpJumpIfTrue, OpJumpIfFalse, OpJumpAnd, OpJumpOr:
		return true
	}
	return false
}

// ----- printing -----

func (l Literal) String() string {
	if l.IsString {
		return strconv.Quote(l.Str)
	}
	return formatNumber(l.Num)
}

func (n Name) String() string { return "$" + string(n) }

func (l Label) String() string { return "L" + strconv.Itoa(int(l)) + ":" }

func (o Op) String() string {
	switch {
	case o.Code.IsJump():
		return o.Code.String() + " L" + strconv.Itoa(o.Target)
	case o.Code == OpLineInfo:
		return o.Code.String() + " " + strconv.Itoa(o.Line)
	}
	return o.Code.String()
}
