// printer_test.go
package gamma

import (
	"bytes"
	"math"
	"strings"
	"testing"
)

func Test_Printer_Format_Indents_All_But_Labels(t *testing.T) {
	code := []Instr{
		Label(1),
		Name("x"),
		Op{Code: OpFetch},
		Num(2.5),
		Str("a\"b"),
		Op{Code: OpJumpIfFalse, Target: 1},
		Op{Code: OpLineInfo, Line: 7},
	}
	var buf bytes.Buffer
	if err := Format(&buf, code); err != nil {
		t.Fatal(err)
	}
	want := "L1:\n" +
		"    $x\n" +
		"    fetch\n" +
		"    2.5\n" +
		"    \"a\\\"b\"\n" +
		"    jump-if-false L1\n" +
		"    line-info 7\n"
	if got := buf.String(); got != want {
		t.Fatalf("\nwant:\n%s\ngot:\n%s", want, got)
	}
	if Disassemble(code) != want {
		t.Fatal("Disassemble and Format disagree")
	}
}

func Test_Printer_Literals(t *testing.T) {
	cases := []struct {
		in   Literal
		want string
	}{
		{Num(1), "1"},
		{Num(-0.25), "-0.25"},
		{Num(1e21), "1e+21"},
		{Num(math.NaN()), "NaN"},
		{Str(""), `""`},
		{Str("line\nbreak"), `"line\nbreak"`},
	}
	for _, c := range cases {
		if got := c.in.String(); got != c.want {
			t.Errorf("%#v: got %q, want %q", c.in, got, c.want)
		}
	}
}

func Test_Printer_Opcode_Names_Complete(t *testing.T) {
	seen := map[string]Opcode{}
	for op := OpNop; op < numOpcodes; op++ {
		name := op.String()
		if name == "" {
			t.Fatalf("opcode %d has no name", op)
		}
		if prev, dup := seen[name]; dup {
			t.Fatalf("opcodes %d and %d share the name %q", prev, op, name)
		}
		seen[name] = op
	}
	if got := numOpcodes.String(); !strings.HasPrefix(got, "opcode(") {
		t.Fatalf("out of range opcode printed as %q", got)
	}
}

func Test_Printer_Jumps(t *testing.T) {
	for _, op := range []Opcode{OpJump, OpJumpIfTrue, OpJumpIfFalse, OpJumpAnd, OpJumpOr} {
		if !op.IsJump() {
			t.Errorf("%s should be a jump", op)
		}
	}
	if OpCall.IsJump() || OpLineInfo.IsJump() {
		t.Fatal("call and line-info are not jumps")
	}
}

func Test_Printer_Color(t *testing.T) {
	EnableColor = true
	defer func() { EnableColor = false }()
	got := Disassemble([]Instr{Label(2), Op{Code: OpAdd}})
	want := colorGreen + "L2:" + colorReset + "\n    " + colorBlue + "add" + colorReset + "\n"
	if got != want {
		t.Fatalf("got %q", got)
	}
}
