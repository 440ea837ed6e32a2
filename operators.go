package gamma

// Assoc is an operator's associativity.
type Assoc int

const (
	LeftAssoc Assoc = iota
	RightAssoc
)

// Arity distinguishes prefix operators from infix ones.
type Arity int

const (
	Unary Arity = iota
	Binary
)

// Operator describes one expression operator. A lower Prec binds looser.
type Operator struct {
	Text  string
	Assoc Assoc
	Arity Arity
	Prec  int
	Op    Opcode
}

// Precedence of the function-call marker; nothing binds tighter.
const funcPrec = 10

// operatorTables holds the two disjoint operator maps. They are built once
// and never modified.
type operatorTables struct {
	binary map[string]*Operator
	unary  map[string]*Operator
}

var operators = newOperatorTables()

func newOperatorTables() operatorTables {
	binary := []Operator{
		{"||", LeftAssoc, Binary, 1, OpJumpOr},
		{"&&", LeftAssoc, Binary, 2, OpJumpAnd},
		{"==", LeftAssoc, Binary, 3, OpEq},
		{"!=", LeftAssoc, Binary, 3, OpNe},
		{"<", LeftAssoc, Binary, 4, OpLt},
		{"<=", LeftAssoc, Binary, 4, OpLe},
		{">", LeftAssoc, Binary, 4, OpGt},
		{">=", LeftAssoc, Binary, 4, OpGe},
		{"+", LeftAssoc, Binary, 5, OpAdd},
		{"-", LeftAssoc, Binary, 5, OpSub},
		{"*", LeftAssoc, Binary, 6, OpMult},
		{"/", LeftAssoc, Binary, 6, OpDiv},
		{"%", LeftAssoc, Binary, 6, OpRemainder},
		{"^", RightAssoc, Binary, 8, OpExponent},
		{".", LeftAssoc, Binary, 9, OpFetchProperty},
	}
	unary := []Operator{
		{"+", RightAssoc, Unary, 7, OpUnaryPlus},
		{"-", RightAssoc, Unary, 7, OpUnaryMinus},
		{"!", RightAssoc, Unary, 7, OpNot},
	}
	t := operatorTables{
		binary: make(map[string]*Operator, len(binary)),
		unary:  make(map[string]*Operator, len(unary)),
	}
	for i := range binary {
		t.binary[binary[i].Text] = &binary[i]
	}
	for i := range unary {
		t.unary[unary[i].Text] = &unary[i]
	}
	return t
}

// lookup returns the descriptor for text with the given arity.
func (t operatorTables) lookup(text string, arity Arity) (*Operator, bool) {
	if arity == Unary {
		op, ok := t.unary[text]
		return op, ok
	}
	op, ok := t.binary[text]
	return op, ok
}

func (o *Operator) shortCircuit() bool { return o.Op == OpJumpAnd || o.Op == OpJumpOr }

// yieldsTo reports whether o, already on the operator stack, must be emitted
// before next is pushed.
func (o *Operator) yieldsTo(next *Operator) bool {
	if next.Assoc == LeftAssoc {
		return next.Prec <= o.Prec
	}
	return next.Prec < o.Prec
}
