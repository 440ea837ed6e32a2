package gamma

import (
	"fmt"
	"io"
	"strings"
)

/* ---------- globals & tiny helpers ---------- */

var EnableColor = false // REPL/CLI only; tests leave this false

const (
	colorReset = "\033[0m"
	colorGreen = "\033[32m"
	colorBlue  = "\033[34m"
)

func colorize(s, c string) string {
	if !EnableColor {
		return s
	}
	return c + s + colorReset
}

/* ---------- disassembly ---------- */

// Format writes code one h-code per line. Labels start at column 0, all
// other h-codes are indented.
func Format(w io.Writer, code []Instr) error {
	for _, in := range code {
		var line string
		switch in := in.(type) {
		case Label:
			line = colorize(in.String(), colorGreen)
		case Op:
			line = "    " + colorize(in.String(), colorBlue)
		default:
			line = "    " + in.String()
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// Disassemble returns code formatted by Format.
func Disassemble(code []Instr) string {
	var b strings.Builder
	_ = Format(&b, code)
	return b.String()
}

// Compact renders code on a single line separated by spaces; tests use it
// to compare short sequences.
func Compact(code []Instr) string {
	parts := make([]string, len(code))
	for i, in := range code {
		parts[i] = in.String()
	}
	return strings.Join(parts, " ")
}
