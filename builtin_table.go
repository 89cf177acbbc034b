// builtin_table.go: the table.* built-ins.
package luaengine

import "strconv"

func registerTableBuiltins(e *Engine) {
	// table.insert(t, value) appends at the next free 1-based integer key.
	e.RegisterBuiltin("table.insert", func(_ *CallContext, args []Value) (Value, error) {
		t, err := argTable("table.insert", args, 0)
		if err != nil {
			return Nil, err
		}
		if len(args) < 2 {
			return Nil, badArg(2, "table.insert", "value expected")
		}
		t.Set(strconv.Itoa(t.arrayLen()+1), args[1])
		return Nil, nil
	})

	// table.remove(t) pops and returns the value at the largest integer
	// key, or nil for an empty array part.
	e.RegisterBuiltin("table.remove", func(_ *CallContext, args []Value) (Value, error) {
		t, err := argTable("table.remove", args, 0)
		if err != nil {
			return Nil, err
		}
		n := t.arrayLen()
		if n == 0 {
			return Nil, nil
		}
		key := strconv.Itoa(n)
		v := t.Get(key)
		t.Set(key, Nil)
		return v, nil
	})
}
