// errors.go: the engine's error taxonomy and caret-snippet rendering.
//
// Every failure surfaced by the engine is a *ScriptError carrying a kind
// (syntax / runtime / resource), a 1-based source position, and a message.
// Execute() collects these into its error log as plain strings; Evaluate()
// and the parser return them as Go errors.
//
// FormatErrorWithSource renders a ScriptError as a readable multi-line
// snippet with a caret pointing at the offending column:
//
//	syntax error at 3:12: 'then' expected
//
//	   2 | if score >= 90
//	   3 |     grade = "A"
//	     |            ^
//	   4 | end
//
// The snippet shows up to one line of context before and after the error.
// Output is plain text (no ANSI escapes); the CLI adds color on top.
package luaengine

import (
	"fmt"
	"strings"
)

// ErrorKind classifies a ScriptError.
type ErrorKind int

const (
	// ErrSyntax covers lexing and parsing failures (malformed statements,
	// unterminated strings, missing 'then'/'do'/'end').
	ErrSyntax ErrorKind = iota
	// ErrRuntime covers evaluation failures (type errors, unknown
	// variables/functions, indexing a non-table, division by zero).
	ErrRuntime
	// ErrResource is raised when a loop exceeds the iteration cap. Unlike
	// the other kinds it aborts the whole Execute call.
	ErrResource
)

// ScriptError is the single error type crossing the engine boundary.
// Line and Col are 1-based; Col may be 0 when no column is known.
type ScriptError struct {
	Kind ErrorKind
	Line int
	Col  int
	Msg  string
}

func (e *ScriptError) Error() string {
	switch e.Kind {
	case ErrSyntax:
		return fmt.Sprintf("syntax error at %d:%d: %s", e.Line, e.Col, e.Msg)
	case ErrResource:
		// Resource errors are deliberately position-free: the cap is a
		// property of the whole call, not of one source location.
		return e.Msg
	default:
		return fmt.Sprintf("runtime error at %d:%d: %s", e.Line, e.Col, e.Msg)
	}
}

func syntaxErr(line, col int, format string, args ...any) *ScriptError {
	return &ScriptError{Kind: ErrSyntax, Line: line, Col: col, Msg: fmt.Sprintf(format, args...)}
}

func runtimeErr(line, col int, format string, args ...any) *ScriptError {
	return &ScriptError{Kind: ErrRuntime, Line: line, Col: col, Msg: fmt.Sprintf(format, args...)}
}

// FormatErrorWithSource renders err against its source text. ScriptErrors
// become caret snippets; any other error is returned via err.Error().
func FormatErrorWithSource(err error, src string) string {
	se, ok := err.(*ScriptError)
	if !ok {
		return err.Error()
	}
	if se.Kind == ErrResource || se.Line < 1 {
		return se.Error()
	}
	return prettySnippet(src, se.Error(), se.Line, se.Col)
}

// prettySnippet builds the caret snippet. Coordinates are clamped so a
// slightly-off position never breaks rendering.
func prettySnippet(src, header string, line, col int) string {
	lines := strings.Split(src, "\n")
	if len(lines) == 0 {
		lines = []string{""}
	}
	if line < 1 {
		line = 1
	}
	if line > len(lines) {
		line = len(lines)
	}
	if col < 1 {
		col = 1
	}
	lineTxt := lines[line-1]
	if col > len(lineTxt)+1 {
		col = len(lineTxt) + 1
	}

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n\n")

	num := func(n int) string { return fmt.Sprintf("%4d | ", n) }
	if line > 1 {
		b.WriteString(num(line-1) + lines[line-2] + "\n")
	}
	b.WriteString(num(line) + lineTxt + "\n")
	b.WriteString("     | " + strings.Repeat(" ", col-1) + "^\n")
	if line < len(lines) {
		b.WriteString(num(line+1) + lines[line] + "\n")
	}
	return b.String()
}
