// errors.go — the compiler's single error type and caret-snippet rendering.
//
// Every failure the compiler can report (bad characters, malformed numbers,
// unexpected tokens, missing clauses, break/continue outside a loop,
// unterminated expressions, include and stylesheet I/O) is a *CompileError.
// There is no recovery: the first error aborts the compilation.
//
// WrapError turns a *CompileError into a plain-text snippet with a caret
// under the offending column:
//
//	error in main.gamma at 2:5: unknown command 'axs' (did you mean 'axes'?)
//
//	   1 | x = 1;
//	   2 | axs;
//	     | ^
//
// Errors of any other type are returned unchanged.
package gamma

import (
	"errors"
	"fmt"
	"strings"
)

// CompileError is a compilation failure at a source location.
type CompileError struct {
	Msg string
	Loc Location

	// Incomplete is set when the error was caused by reaching the end of the
	// input, so an interactive caller can ask for more text.
	Incomplete bool

	// Err is the underlying I/O error for include/stylesheet failures.
	Err error

	src string // text of Loc.Origin, for snippets
}

func (e *CompileError) Error() string { return e.Loc.String() + ": " + e.Msg }

func (e *CompileError) Unwrap() error { return e.Err }

// Snippet renders the error with one line of context on each side.
func (e *CompileError) Snippet() string {
	return prettyErrorString(e.src, e.Loc.Origin.String(), e.Loc.Line, e.Loc.Col, e.Msg)
}

// IsIncomplete reports whether err is a compile error caused by running out
// of input (an open block, parenthesis or expression).
func IsIncomplete(err error) bool {
	var ce *CompileError
	return errors.As(err, &ce) && ce.Incomplete
}

// WrapError returns err rendered as a caret snippet when it is a
// *CompileError, and err itself otherwise.
func WrapError(err error) error {
	var ce *CompileError
	if !errors.As(err, &ce) {
		return err
	}
	return fmt.Errorf("%s", ce.Snippet())
}

func errorAt(t Token, src string, format string, args ...any) *CompileError {
	return &CompileError{Msg: fmt.Sprintf(format, args...), Loc: t.Loc, Incomplete: t.Type == EOF, src: src}
}

// ----- rendering -----

func prettyErrorString(src, name string, line, col int, msg string) string {
	lines := strings.Split(src, "\n")
	if line < 1 {
		line = 1
	}
	if col < 1 {
		col = 1
	}
	if line > len(lines) {
		line = len(lines)
	}
	lineTxt := lines[line-1]

	var b strings.Builder
	if name != "" {
		fmt.Fprintf(&b, "error in %s at %d:%d: %s\n\n", name, line, col, msg)
	} else {
		fmt.Fprintf(&b, "error at %d:%d: %s\n\n", line, col, msg)
	}
	if line > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", line-1, lines[line-2])
	}
	fmt.Fprintf(&b, "%4d | %s\n", line, lineTxt)
	fmt.Fprintf(&b, "     | %s^\n", strings.Repeat(" ", col-1))
	if line < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", line+1, lines[line])
	}
	return b.String()
}
