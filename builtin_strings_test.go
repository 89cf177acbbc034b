package luaengine

import "testing"

func Test_Builtin_StringCase(t *testing.T) {
	e := New()
	mustExec(t, e, `up = string.upper("whisker")
down = string.lower("LOUD")`)
	wantStrVar(t, e, "up", "WHISKER")
	wantStrVar(t, e, "down", "loud")
}

func Test_Builtin_StringLen(t *testing.T) {
	e := New()
	mustExec(t, e, `n = string.len("four")
z = string.len("")`)
	wantNumVar(t, e, "n", 4)
	wantNumVar(t, e, "z", 0)
}

func Test_Builtin_StringSub(t *testing.T) {
	e := New()
	mustExec(t, e, `a = string.sub("narrative", 1, 5)
b = string.sub("narrative", -4)
c = string.sub("narrative", 7, 3)`)
	wantStrVar(t, e, "a", "narra")
	wantStrVar(t, e, "b", "tive")
	wantStrVar(t, e, "c", "")
}

func Test_Builtin_StringRep(t *testing.T) {
	e := New()
	mustExec(t, e, `a = string.rep("ab", 3)
b = string.rep("x", 0)`)
	wantStrVar(t, e, "a", "ababab")
	wantStrVar(t, e, "b", "")
}
