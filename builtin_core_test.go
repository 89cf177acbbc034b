package luaengine

import (
	"strings"
	"testing"
)

func Test_Builtin_Print_TabJoinsArguments(t *testing.T) {
	e := New()
	res := mustExec(t, e, `print("hp", 12, true, nil)`)
	if len(res.Output) != 1 || res.Output[0] != "hp\t12\ttrue\tnil" {
		t.Fatalf("bad print output: %#v", res.Output)
	}
}

func Test_Builtin_Print_OrderedOutput(t *testing.T) {
	e := New()
	res := mustExec(t, e, "for i = 1, 3 do\n print(i)\nend")
	want := []string{"1", "2", "3"}
	if len(res.Output) != 3 {
		t.Fatalf("want 3 lines, got %v", res.Output)
	}
	for i, w := range want {
		if res.Output[i] != w {
			t.Fatalf("line %d: want %q, got %q", i, w, res.Output[i])
		}
	}
}

func Test_Builtin_Print_RendersTables(t *testing.T) {
	e := New()
	res := mustExec(t, e, `print({1, 2, name = "rook"})`)
	out := res.Output[0]
	if !strings.HasPrefix(out, "{") || !strings.Contains(out, `name = "rook"`) {
		t.Fatalf("bad table rendering: %q", out)
	}
}

func Test_Builtin_Print_CyclicTable(t *testing.T) {
	e := New()
	res := mustExec(t, e, "t = {}\nt.self = t\nprint(t)")
	if res.Output[0] != "{self = {...}}" {
		t.Fatalf("bad cyclic rendering: %q", res.Output[0])
	}
}

func Test_Builtin_Type(t *testing.T) {
	e := New()
	mustExec(t, e, `a = type(nil)
b = type(true)
c = type(1)
d = type("s")
f = type({})`)
	for name, want := range map[string]string{
		"a": "nil", "b": "boolean", "c": "number", "d": "string", "f": "table",
	} {
		wantStrVar(t, e, name, want)
	}
}

func Test_Builtin_Tostring_Tonumber(t *testing.T) {
	e := New()
	mustExec(t, e, `a = tostring(12)
b = tostring(nil)
c = tonumber("3.5")
d = tonumber("not a number")`)
	wantStrVar(t, e, "a", "12")
	wantStrVar(t, e, "b", "nil")
	wantNumVar(t, e, "c", 3.5)
	if v, _ := e.GetVariable("d"); v != nil {
		t.Fatalf("tonumber of garbage: want nil, got %#v", v)
	}
}

func Test_Builtin_UnknownNameIsError(t *testing.T) {
	e := New()
	res := failExec(t, e, "x = os.time()")
	if !errorsContain(res, "unknown function: os.time") {
		t.Fatalf("want unknown function error, got %v", res.Errors)
	}
}

func Test_RegisterBuiltin_HostExtension(t *testing.T) {
	e := New()
	e.RegisterBuiltin("story.visit", func(_ *CallContext, args []Value) (Value, error) {
		return Str("node:" + args[0].Data.(string)), nil
	})
	mustExec(t, e, `x = story.visit("intro")`)
	wantStrVar(t, e, "x", "node:intro")
	// Reset restores standard-library bindings only.
	e.Reset()
	res := failExec(t, e, `x = story.visit("intro")`)
	if !errorsContain(res, "unknown function") {
		t.Fatalf("host builtin survived Reset: %v", res.Errors)
	}
}

func Test_Builtin_BadArgumentMessage(t *testing.T) {
	e := New()
	res := failExec(t, e, "x = string.upper(5)")
	if !errorsContain(res, "bad argument #1 to 'string.upper'") {
		t.Fatalf("want bad-argument error, got %v", res.Errors)
	}
}
