package luaengine

import (
	"strings"
	"testing"
)

func Test_ScriptError_Messages(t *testing.T) {
	se := syntaxErr(3, 12, "'then' expected")
	if se.Error() != "syntax error at 3:12: 'then' expected" {
		t.Fatalf("got %q", se.Error())
	}
	re := runtimeErr(1, 5, "division by zero")
	if re.Error() != "runtime error at 1:5: division by zero" {
		t.Fatalf("got %q", re.Error())
	}
	rse := &ScriptError{Kind: ErrResource, Msg: "exceeded maximum iterations (10000)"}
	if re := rse.Error(); re != "exceeded maximum iterations (10000)" {
		t.Fatalf("resource errors must be position-free, got %q", re)
	}
}

func Test_FormatErrorWithSource_Caret(t *testing.T) {
	src := "x = 1\nif score\n y = 2\nend"
	_, errs := ParseProgram(src)
	if len(errs) == 0 {
		t.Fatal("want a parse error")
	}
	out := FormatErrorWithSource(errs[0], src)
	// The error lands on the line after the unfinished condition; the
	// snippet shows one line of context on each side.
	for _, want := range []string{"'then' expected", "2 | if score", "3 |  y = 2", "4 | end", "^"} {
		if !strings.Contains(out, want) {
			t.Fatalf("snippet missing %q:\n%s", want, out)
		}
	}
}

func Test_FormatErrorWithSource_ClampsPositions(t *testing.T) {
	se := runtimeErr(99, 99, "weird")
	out := FormatErrorWithSource(se, "one line")
	if !strings.Contains(out, "^") {
		t.Fatalf("clamped snippet has no caret:\n%s", out)
	}
}

func Test_FormatErrorWithSource_PassesThroughForeignErrors(t *testing.T) {
	err := &ScriptError{Kind: ErrResource, Msg: "exceeded maximum iterations (10000)"}
	if got := FormatErrorWithSource(err, "while true do end"); got != err.Error() {
		t.Fatalf("resource error should not get a snippet: %q", got)
	}
}
