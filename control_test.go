// control_test.go
package gamma

import (
	"strings"
	"testing"
)

func Test_Control_If(t *testing.T) {
	wantCode(t, `if (a) x = 1;`,
		`$a fetch jump-if-false L1 $x fetch-address 1 assign L1:`)
}

func Test_Control_If_Else(t *testing.T) {
	wantCode(t, `if (a) x = 1; else x = 2;`,
		`$a fetch jump-if-false L1 $x fetch-address 1 assign jump L2 L1: $x fetch-address 2 assign L2:`)
}

func Test_Control_Else_Binds_Nearest_If(t *testing.T) {
	wantCode(t, `if (a) if (b) x = 1; else x = 2;`,
		`$a fetch jump-if-false L1 $b fetch jump-if-false L2 $x fetch-address 1 assign jump L3 L2: $x fetch-address 2 assign L3: L1:`)
}

func Test_Control_While(t *testing.T) {
	wantCode(t, `while (i < 3) { i = i + 1; }`,
		`L1: $i fetch 3 lt jump-if-false L2 $i fetch-address $i fetch 1 add assign jump L1 L2:`)
}

func Test_Control_Break_Continue_Innermost(t *testing.T) {
	wantCode(t, `while (a) { if (b) break; continue; }`,
		`L1: $a fetch jump-if-false L2 $b fetch jump-if-false L3 jump L2 L3: jump L1 jump L1 L2:`)

	// break in the inner loop leaves the inner loop only.
	wantCode(t, `while (a) { while (b) break; break; }`,
		`L1: $a fetch jump-if-false L2 L3: $b fetch jump-if-false L4 jump L4 jump L3 L4: jump L2 jump L1 L2:`)
}

func Test_Control_Break_Outside_Loop(t *testing.T) {
	ce := mustFail(t, "x = 1;\nbreak;", "'break' is not inside a loop")
	if ce.Loc.Line != 2 || ce.Loc.Col != 1 {
		t.Fatalf("error at %d:%d, want 2:1", ce.Loc.Line, ce.Loc.Col)
	}
	mustFail(t, `if (a) continue;`, "'continue' is not inside a loop")
	mustFail(t, `while (a) {} break;`, "'break' is not inside a loop")
	mustFail(t, `while (a) break`, "expected ';'")
}

func Test_Control_For_Constant_Bounds(t *testing.T) {
	wantCode(t, `for i = 0 to 3 { print i; }`,
		`$i fetch-address 0 assign `+
			`L1: $i fetch 3 le jump-if-false L3 `+
			`$i fetch print `+
			`L2: $i fetch-address $i fetch 1 add assign jump L1 L3:`)
}

func Test_Control_For_Negative_Constant_Step(t *testing.T) {
	wantCode(t, `for i = 3 to -1 step -1 print i;`,
		`$i fetch-address 3 assign `+
			`L1: $i fetch -1 ge jump-if-false L3 `+
			`$i fetch print `+
			`L2: $i fetch-address $i fetch -1 add assign jump L1 L3:`)
}

func Test_Control_For_Constant_Uses_Reserved_Names(t *testing.T) {
	wantCode(t, `for a = 0 to pi step +1 ;`,
		`$a fetch-address 0 assign `+
			`L1: $a fetch 3.141592653589793 le jump-if-false L3 `+
			`L2: $a fetch-address $a fetch 1 add assign jump L1 L3:`)
}

func Test_Control_For_Hidden_Final(t *testing.T) {
	wantCode(t, `for i = 0 to n print i;`,
		`$i fetch-address 0 assign `+
			`$#final0 fetch-address $n fetch assign `+
			`L1: $i fetch $#final0 fetch le jump-if-false L3 `+
			`$i fetch print `+
			`L2: $i fetch-address $i fetch 1 add assign jump L1 L3:`)
}

func Test_Control_For_Hidden_Step(t *testing.T) {
	wantCode(t, `for i = 0 to 3 step s print i;`,
		`$i fetch-address 0 assign `+
			`$#step0 fetch-address $s fetch assign `+
			`$#step0 fetch 0 eq jump-if-true L3 `+
			`L1: `+
			`$#step0 fetch 0 gt jump-and L4 $i fetch 3 le L4: jump-or L5 `+
			`$#step0 fetch 0 lt jump-and L6 $i fetch 3 ge L6: L5: `+
			`jump-if-false L3 `+
			`$i fetch print `+
			`L2: $i fetch-address $i fetch $#step0 fetch add assign jump L1 L3:`)
}

func Test_Control_For_Hidden_Names_Use_Loop_Ids(t *testing.T) {
	code := Compact(mustCompile(t, `for i = 0 to n { for j = 0 to m print j; }`).Code)
	for _, name := range []string{"$#final0", "$#final1"} {
		if !containsWord(code, name) {
			t.Fatalf("%s missing from %s", name, code)
		}
	}
}

func Test_Control_For_Zero_Step_Drops_Body(t *testing.T) {
	wantCode(t, `for i = 0 to 3 step 0 { print i; break; }`, `$i fetch-address 0 assign`)
	wantCode(t, `for i = 0 to 3 step -0 print i; x = 1;`, `$i fetch-address 0 assign $x fetch-address 1 assign`)
	// The dropped body is still checked.
	mustFail(t, `for i = 0 to 3 step 0 { print ; }`, "expected an expression")
}

func Test_Control_For_Errors(t *testing.T) {
	mustFail(t, `for pi = 0 to 1 print 1;`, "is a constant")
	mustFail(t, `for a[1] = 0 to 1 print 1;`, "for variable must be a simple name")
	mustFail(t, `for i = 0 until 3 print i;`, "for requires 'to'")
	mustFail(t, `for 1 = 0 to 3 print i;`, "for requires a variable name")
}

func containsWord(s, w string) bool {
	for _, f := range strings.Fields(s) {
		if f == w {
			return true
		}
	}
	return false
}
