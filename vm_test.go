// vm_test.go
package gamma

import (
	"fmt"
	"math"
	"reflect"
	"testing"
)

// testVM is a small stack machine for the h-codes that carry control flow
// and arithmetic. It lets tests check what compiled code does, not only
// what it looks like.
type testVM struct {
	code   []Instr
	labels map[int]int
	stack  []any
	vars   map[string]any
	out    []string
	calls  []string
	steps  int
}

type vmName string
type vmAddr string

const vmStepLimit = 100000

func newTestVM(code []Instr) *testVM {
	m := &testVM{code: code, labels: map[int]int{}, vars: map[string]any{}}
	for i, in := range code {
		if l, ok := in.(Label); ok {
			m.labels[int(l)] = i
		}
	}
	return m
}

func (m *testVM) push(v any) { m.stack = append(m.stack, v) }

func (m *testVM) pop() any {
	if len(m.stack) == 0 {
		panic("stack underflow")
	}
	v := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	return v
}

func (m *testVM) num() float64 {
	switch v := m.pop().(type) {
	case float64:
		return v
	default:
		panic(fmt.Sprintf("not a number: %v", v))
	}
}

func truth(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func show(v any) string {
	if n, ok := v.(float64); ok {
		return formatNumber(n)
	}
	return fmt.Sprint(v)
}

func (m *testVM) run() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	for pc := 0; pc < len(m.code); pc++ {
		if m.steps++; m.steps > vmStepLimit {
			return fmt.Errorf("step limit exceeded")
		}
		switch in := m.code[pc].(type) {
		case Literal:
			if in.IsString {
				m.push(in.Str)
			} else {
				m.push(in.Num)
			}
		case Name:
			m.push(vmName(in))
		case Label:
		case Op:
			jump, target := m.exec(in)
			if jump {
				pc = m.labels[target]
			}
		}
	}
	if len(m.stack) != 0 {
		return fmt.Errorf("stack not empty at exit: %v", m.stack)
	}
	return nil
}

func (m *testVM) exec(in Op) (bool, int) {
	switch in.Code {
	case OpFetch:
		name := string(m.pop().(vmName))
		v, ok := m.vars[name]
		if !ok {
			panic("undefined variable " + name)
		}
		m.push(v)
	case OpFetchAddress:
		m.push(vmAddr(m.pop().(vmName)))
	case OpDynamicName:
		name := m.pop().(vmName)
		m.push(vmName(fmt.Sprintf("%s[%s]", name, show(m.pop()))))
	case OpIsDefined:
		_, ok := m.vars[string(m.pop().(vmName))]
		m.push(truth(ok))
	case OpAssign, OpStaticAssign:
		v := m.pop()
		m.vars[string(m.pop().(vmAddr))] = v
	case OpAdd:
		b, a := m.pop(), m.pop()
		if as, ok := a.(string); ok {
			m.push(as + show(b))
			break
		}
		m.push(a.(float64) + b.(float64))
	case OpSub, OpMult, OpDiv, OpRemainder, OpExponent,
		OpEq, OpNe, OpLt, OpLe, OpGt, OpGe:
		b, a := m.num(), m.num()
		m.push(binaryOp(in.Code, a, b))
	case OpUnaryMinus:
		m.push(-m.num())
	case OpUnaryPlus:
		m.push(m.num())
	case OpNot:
		m.push(truth(m.num() == 0))
	case OpJump:
		return true, in.Target
	case OpJumpIfTrue:
		return m.num() != 0, in.Target
	case OpJumpIfFalse:
		return m.num() == 0, in.Target
	case OpJumpAnd:
		if m.stack[len(m.stack)-1] == 0.0 {
			return true, in.Target
		}
		m.pop()
	case OpJumpOr:
		if m.stack[len(m.stack)-1] != 0.0 {
			return true, in.Target
		}
		m.pop()
	case OpCall:
		argc := int(m.num())
		name := m.pop().(vmName)
		args := make([]string, argc)
		for i := argc - 1; i >= 0; i-- {
			args[i] = show(m.pop())
		}
		m.calls = append(m.calls, fmt.Sprintf("%s%v", name, args))
		m.push(float64(argc))
	case OpPrint:
		m.out = append(m.out, show(m.pop()))
	case OpSetPrecision:
		m.pop()
	case OpLineInfo, OpNop:
	default:
		panic("unsupported opcode " + in.Code.String())
	}
	return false, 0
}

func binaryOp(op Opcode, a, b float64) float64 {
	switch op {
	case OpSub:
		return a - b
	case OpMult:
		return a * b
	case OpDiv:
		return a / b
	case OpRemainder:
		return math.Mod(a, b)
	case OpExponent:
		return math.Pow(a, b)
	case OpEq:
		return truth(a == b)
	case OpNe:
		return truth(a != b)
	case OpLt:
		return truth(a < b)
	case OpLe:
		return truth(a <= b)
	case OpGt:
		return truth(a > b)
	case OpGe:
		return truth(a >= b)
	}
	panic("not a binary opcode")
}

func execute(t *testing.T, src string) *testVM {
	t.Helper()
	m := newTestVM(mustCompile(t, src).Code)
	if err := m.run(); err != nil {
		t.Fatalf("run error: %v\ncode:\n%s", err, Disassemble(m.code))
	}
	return m
}

func wantOutput(t *testing.T, src string, want ...string) {
	t.Helper()
	m := execute(t, src)
	if len(want) == 0 {
		want = nil
	}
	if !reflect.DeepEqual(m.out, want) {
		t.Fatalf("\nsource:\n%s\nwant output %v\ngot %v\ncode:\n%s", src, want, m.out, Disassemble(m.code))
	}
}

func Test_Exec_Expression_Values(t *testing.T) {
	cases := []struct{ expr, want string }{
		{"1 + 2 * 3", "7"},
		{"(1 + 2) * 3", "9"},
		{"2 ^ 3 ^ 2", "512"},
		{"-2 ^ 2", "-4"},
		{"10 - 4 - 3", "3"},
		{"7 % 4 * 2", "6"},
		{"0 && x", "0"},
		{"1 || x", "1"},
		{"1 && 2", "2"},
		{"0 || 0 || 3", "3"},
		{"!0 && 1 < 2", "1"},
		{"2 < 1 || 3 == 3", "1"},
		{`"n = " + 4`, "n = 4"},
	}
	for _, c := range cases {
		wantOutput(t, "print "+c.expr+";", c.want)
	}
}

func Test_Exec_If_Else(t *testing.T) {
	wantOutput(t, `x = 5; if (x > 3) print "big"; else print "small";`, "big")
	wantOutput(t, `x = 1; if (x > 3) print "big"; else print "small";`, "small")
	wantOutput(t, `if (defined(y)) print 1; y = 0; if (defined(y)) print 2;`, "2")
}

func Test_Exec_For_Constant_Step(t *testing.T) {
	wantOutput(t, `for i = 0 to 3 step 1 { print i; }`, "0", "1", "2", "3")
	wantOutput(t, `for i = 0 to 4 step 2 print i;`, "0", "2", "4")
	wantOutput(t, `for i = 3 to 1 step -1 print i;`, "3", "2", "1")
	wantOutput(t, `for i = 3 to 1 print i;`)
}

func Test_Exec_For_Runtime_Step(t *testing.T) {
	wantOutput(t, `s = -1; for i = 3 to 1 step s print i;`, "3", "2", "1")
	wantOutput(t, `s = 2; for i = 0 to 5 step s print i;`, "0", "2", "4")
	wantOutput(t, `s = 0; for i = 0 to 3 step s print i; print "done";`, "done")
}

func Test_Exec_For_Zero_Step_Never_Runs(t *testing.T) {
	m := execute(t, `for i = 0 to 3 step 0 print i;`)
	if len(m.out) != 0 || m.vars["i"] != 0.0 {
		t.Fatalf("out = %v, i = %v", m.out, m.vars["i"])
	}
}

func Test_Exec_For_Final_Evaluated_Once(t *testing.T) {
	wantOutput(t, `n = 2; for i = 0 to n { n = 10; print i; }`, "0", "1", "2")
}

func Test_Exec_For_Variable_After_Loop(t *testing.T) {
	m := execute(t, `for i = 0 to 3 ;`)
	if m.vars["i"] != 4.0 {
		t.Fatalf("i = %v, want 4", m.vars["i"])
	}
}

func Test_Exec_While_Break_Continue(t *testing.T) {
	wantOutput(t, `i = 0; while (i < 4) { i = i + 1; if (i == 2) continue; print i; }`, "1", "3", "4")
	wantOutput(t, `i = 0; while (1) { i = i + 1; if (i > 3) break; print i; }`, "1", "2", "3")
}

func Test_Exec_For_Continue_Steps(t *testing.T) {
	wantOutput(t, `for i = 1 to 4 { if (i % 2 == 0) continue; print i; }`, "1", "3")
}

func Test_Exec_Nested_Break(t *testing.T) {
	wantOutput(t, `for i = 1 to 2 { for j = 1 to 3 { if (j > 1) break; print i * 10 + j; } }`, "11", "21")
}

func Test_Exec_Indexed_Variables(t *testing.T) {
	m := execute(t, `for i = 0 to 2 a[i] = i * i; print a[2] + a[1];`)
	if !reflect.DeepEqual(m.out, []string{"5"}) {
		t.Fatalf("out = %v", m.out)
	}
	if m.vars["a[0]"] != 0.0 || m.vars["a[2]"] != 4.0 {
		t.Fatalf("vars = %v", m.vars)
	}
}

func Test_Exec_ShortCircuit_Skips_Calls(t *testing.T) {
	m := execute(t, `x = 0 && f(1); y = 1 || f(2); z = 1 && f(3, 4);`)
	if !reflect.DeepEqual(m.calls, []string{"f[3 4]"}) {
		t.Fatalf("calls = %v", m.calls)
	}
	if m.vars["x"] != 0.0 || m.vars["y"] != 1.0 || m.vars["z"] != 2.0 {
		t.Fatalf("vars = %v", m.vars)
	}
}

func Test_Exec_Included_Loop_Body(t *testing.T) {
	prog := mustCompileArchive(t, `
-- main.gamma --
for i = 1 to 5 { include "body"; }
-- body.gamma --
if (i == 4) break;
print i;
`)
	m := newTestVM(prog.Code)
	if err := m.run(); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(m.out, []string{"1", "2", "3"}) {
		t.Fatalf("out = %v", m.out)
	}
}
