package luaengine

import "testing"

func Test_Builtin_TableInsert(t *testing.T) {
	e := New()
	mustExec(t, e, `bag = {}
table.insert(bag, "rope")
table.insert(bag, "torch")
first = bag[1]
second = bag[2]`)
	wantStrVar(t, e, "first", "rope")
	wantStrVar(t, e, "second", "torch")
}

func Test_Builtin_TableInsert_AfterLiteral(t *testing.T) {
	e := New()
	mustExec(t, e, "t = {10, 20}\ntable.insert(t, 30)\nx = t[3]")
	wantNumVar(t, e, "x", 30)
}

func Test_Builtin_TableRemove(t *testing.T) {
	e := New()
	mustExec(t, e, `t = {"a", "b"}
last = table.remove(t)
gone = t[2]
n = table.remove({})`)
	wantStrVar(t, e, "last", "b")
	if v, _ := e.GetVariable("gone"); v != nil {
		t.Fatalf("removed entry still present: %#v", v)
	}
	if v, _ := e.GetVariable("n"); v != nil {
		t.Fatalf("remove on empty table: want nil, got %#v", v)
	}
}

func Test_Builtin_TableInsert_RequiresTable(t *testing.T) {
	e := New()
	res := failExec(t, e, "table.insert(5, 1)")
	if !errorsContain(res, "bad argument #1 to 'table.insert'") {
		t.Fatalf("want bad-argument error, got %v", res.Errors)
	}
}
