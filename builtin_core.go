// builtin_core.go: core built-ins (print, type, tostring, tonumber) and
// the argument-validation helpers shared by the other builtin files.
//
// Builtins live in a fixed registry keyed by dotted name; Reset reinstalls
// exactly this standard library. Errors raised here carry no position —
// the call evaluator stamps the call site onto them.
package luaengine

import (
	"strconv"
	"strings"
)

func registerCoreBuiltins(e *Engine) {
	// print(...) appends one tab-joined line to the output log.
	e.RegisterBuiltin("print", func(c *CallContext, args []Value) (Value, error) {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = formatValue(a)
		}
		c.Print(strings.Join(parts, "\t"))
		return Nil, nil
	})

	// type(v) -> type name string.
	e.RegisterBuiltin("type", func(_ *CallContext, args []Value) (Value, error) {
		if len(args) < 1 {
			return Nil, badArg(1, "type", "value expected")
		}
		return Str(typeName(args[0])), nil
	})

	// tostring(v) renders v exactly like print does.
	e.RegisterBuiltin("tostring", func(_ *CallContext, args []Value) (Value, error) {
		if len(args) < 1 {
			return Str("nil"), nil
		}
		return Str(formatValue(args[0])), nil
	})

	// tonumber(v) -> number or nil when v does not parse.
	e.RegisterBuiltin("tonumber", func(_ *CallContext, args []Value) (Value, error) {
		if len(args) < 1 {
			return Nil, nil
		}
		switch args[0].Tag {
		case TagNumber:
			return args[0], nil
		case TagString:
			f, err := strconv.ParseFloat(strings.TrimSpace(args[0].Data.(string)), 64)
			if err != nil {
				return Nil, nil
			}
			return Number(f), nil
		}
		return Nil, nil
	})
}

// ---- argument helpers ---------------------------------------------------

func badArg(n int, fname, why string) error {
	return runtimeErr(0, 0, "bad argument #%d to '%s' (%s)", n, fname, why)
}

func argNumber(fname string, args []Value, i int) (float64, error) {
	if i >= len(args) || args[i].Tag != TagNumber {
		return 0, badArg(i+1, fname, "number expected")
	}
	return args[i].Data.(float64), nil
}

func argString(fname string, args []Value, i int) (string, error) {
	if i >= len(args) || args[i].Tag != TagString {
		return "", badArg(i+1, fname, "string expected")
	}
	return args[i].Data.(string), nil
}

func argTable(fname string, args []Value, i int) (*Table, error) {
	if i >= len(args) || args[i].Tag != TagTable {
		return nil, badArg(i+1, fname, "table expected")
	}
	return args[i].Data.(*Table), nil
}
