// builtin_strings.go: the string.* built-ins.
package luaengine

import "strings"

func registerStringBuiltins(e *Engine) {
	e.RegisterBuiltin("string.upper", func(_ *CallContext, args []Value) (Value, error) {
		s, err := argString("string.upper", args, 0)
		if err != nil {
			return Nil, err
		}
		return Str(strings.ToUpper(s)), nil
	})

	e.RegisterBuiltin("string.lower", func(_ *CallContext, args []Value) (Value, error) {
		s, err := argString("string.lower", args, 0)
		if err != nil {
			return Nil, err
		}
		return Str(strings.ToLower(s)), nil
	})

	e.RegisterBuiltin("string.len", func(_ *CallContext, args []Value) (Value, error) {
		s, err := argString("string.len", args, 0)
		if err != nil {
			return Nil, err
		}
		return Number(float64(len(s))), nil
	})

	// string.sub(s, i[, j]) with Lua's 1-based, negative-from-end indexing.
	e.RegisterBuiltin("string.sub", func(_ *CallContext, args []Value) (Value, error) {
		s, err := argString("string.sub", args, 0)
		if err != nil {
			return Nil, err
		}
		i, err := argNumber("string.sub", args, 1)
		if err != nil {
			return Nil, err
		}
		j := -1.0
		if len(args) > 2 {
			if j, err = argNumber("string.sub", args, 2); err != nil {
				return Nil, err
			}
		}
		lo, hi := int(i), int(j)
		n := len(s)
		if lo < 0 {
			lo = n + lo + 1
		}
		if hi < 0 {
			hi = n + hi + 1
		}
		if lo < 1 {
			lo = 1
		}
		if hi > n {
			hi = n
		}
		if lo > hi {
			return Str(""), nil
		}
		return Str(s[lo-1 : hi]), nil
	})

	e.RegisterBuiltin("string.rep", func(_ *CallContext, args []Value) (Value, error) {
		s, err := argString("string.rep", args, 0)
		if err != nil {
			return Nil, err
		}
		n, err := argNumber("string.rep", args, 1)
		if err != nil {
			return Nil, err
		}
		if n < 0 {
			n = 0
		}
		return Str(strings.Repeat(s, int(n))), nil
	})
}
