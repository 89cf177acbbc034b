// context.go: the per-call execution context and shared runtime helpers.
//
// One global context (Engine.vars / Engine.funcs) persists across Execute
// calls; each call runs against a working copy created here. Variables are
// deep-copied so that table mutations made by a failing call can never
// leak into the global context — the merge happens in Execute, and only on
// a clean run.
package luaengine

import (
	"math"
	"math/rand"
	"strconv"
	"strings"
)

// maxLoopIterations is the hard cap every loop enforces independently.
const maxLoopIterations = 10000

// maxCallDepth bounds recursion through the flat namespace.
const maxCallDepth = 64

// execContext is the mutable state bundle for one Execute or Evaluate
// call: working-copy variable and function mappings plus the per-call
// output and error logs.
type execContext struct {
	eng   *Engine
	vars  map[string]Value
	funcs map[string]*FunctionDef
	out   []string
	errs  []*ScriptError
	depth int // current function-call depth
}

// newContext snapshots the global context into a working copy.
func (e *Engine) newContext() *execContext {
	vars := make(map[string]Value, len(e.vars))
	for name, v := range e.vars {
		vars[name] = cloneValue(v)
	}
	funcs := make(map[string]*FunctionDef, len(e.funcs))
	for name, fd := range e.funcs {
		funcs[name] = fd // bodies are immutable once parsed
	}
	return &execContext{eng: e, vars: vars, funcs: funcs}
}

// cloneValue deep-copies tables; all other values are immutable carriers.
// Scripts can build self-referential tables (t.self = t), so the walk
// memoizes clones per source table and reproduces shared and cyclic
// structure instead of recursing forever.
func cloneValue(v Value) Value {
	return cloneValueSeen(v, map[*Table]*Table{})
}

func cloneValueSeen(v Value, seen map[*Table]*Table) Value {
	if v.Tag != TagTable {
		return v
	}
	src := v.Data.(*Table)
	if dst, ok := seen[src]; ok {
		return TableVal(dst)
	}
	dst := NewTable()
	seen[src] = dst
	for _, k := range src.Keys {
		dst.Set(k, cloneValueSeen(src.Entries[k], seen))
	}
	return TableVal(dst)
}

// BuiltinFunc is the implementation signature for standard-library and
// host-registered callables.
type BuiltinFunc func(c *CallContext, args []Value) (Value, error)

// CallContext gives builtins access to the per-call output log and the
// engine RNG without exposing the working copy itself.
type CallContext struct {
	ec *execContext
}

// Print appends one line to the call's output log.
func (c *CallContext) Print(line string) {
	c.ec.out = append(c.ec.out, line)
}

// Rand is the engine's random source (seedable via Engine.Seed).
func (c *CallContext) Rand() *rand.Rand {
	return c.ec.eng.rng
}

func asScriptError(err error) *ScriptError {
	if se, ok := err.(*ScriptError); ok {
		return se
	}
	return &ScriptError{Kind: ErrRuntime, Msg: err.Error()}
}

// ---- value helpers ------------------------------------------------------

// truthy: everything except nil and false.
func truthy(v Value) bool {
	if v.Tag == TagNil {
		return false
	}
	if v.Tag == TagBool {
		return v.Data.(bool)
	}
	return true
}

// formatNumber renders numbers the way the dialect prints them: integral
// values without a decimal point.
func formatNumber(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatFloat(f, 'f', 0, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// formatValue renders a value for print and '..' coercion. Strings appear
// raw at the top level but quoted inside tables.
func formatValue(v Value) string {
	switch v.Tag {
	case TagNil:
		return "nil"
	case TagBool:
		return strconv.FormatBool(v.Data.(bool))
	case TagNumber:
		return formatNumber(v.Data.(float64))
	case TagString:
		return v.Data.(string)
	case TagTable:
		return formatTable(v.Data.(*Table), map[*Table]bool{})
	case TagFunction:
		return "function: " + v.Data.(string)
	}
	return "?"
}

// formatTable renders a table literal-style. seen tracks the tables on the
// current rendering path; a cycle prints as "{...}".
func formatTable(t *Table, seen map[*Table]bool) string {
	if seen[t] {
		return "{...}"
	}
	seen[t] = true
	var b strings.Builder
	b.WriteByte('{')
	for i, k := range t.Keys {
		if i > 0 {
			b.WriteString(", ")
		}
		v := t.Entries[k]
		if _, err := strconv.Atoi(k); err != nil {
			b.WriteString(k)
			b.WriteString(" = ")
		}
		switch v.Tag {
		case TagString:
			b.WriteString(strconv.Quote(v.Data.(string)))
		case TagTable:
			b.WriteString(formatTable(v.Data.(*Table), seen))
		default:
			b.WriteString(formatValue(v))
		}
	}
	b.WriteByte('}')
	delete(seen, t)
	return b.String()
}

// valuesEqual is strict value+type equality; tables compare by deep
// equality (key order does not matter).
func valuesEqual(a, b Value) bool {
	return valuesEqualSeen(a, b, map[[2]*Table]bool{})
}

// valuesEqualSeen carries the set of table pairs already under comparison,
// so cyclic tables compare without infinite descent (a pair re-entered on
// the same path is equal by coinduction, as reflect.DeepEqual does it).
func valuesEqualSeen(a, b Value, seen map[[2]*Table]bool) bool {
	if a.Tag != b.Tag {
		return false
	}
	switch a.Tag {
	case TagNil:
		return true
	case TagBool:
		return a.Data.(bool) == b.Data.(bool)
	case TagNumber:
		return a.Data.(float64) == b.Data.(float64)
	case TagString:
		return a.Data.(string) == b.Data.(string)
	case TagFunction:
		return a.Data.(string) == b.Data.(string)
	case TagTable:
		ta, tb := a.Data.(*Table), b.Data.(*Table)
		if ta == tb {
			return true
		}
		if len(ta.Entries) != len(tb.Entries) {
			return false
		}
		pair := [2]*Table{ta, tb}
		if seen[pair] {
			return true
		}
		seen[pair] = true
		for k, va := range ta.Entries {
			vb, ok := tb.Entries[k]
			if !ok || !valuesEqualSeen(va, vb, seen) {
				return false
			}
		}
		return true
	}
	return false
}

// typeName reports the dialect's name for a value's type.
func typeName(v Value) string {
	switch v.Tag {
	case TagNil:
		return "nil"
	case TagBool:
		return "boolean"
	case TagNumber:
		return "number"
	case TagString:
		return "string"
	case TagTable:
		return "table"
	case TagFunction:
		return "function"
	}
	return "unknown"
}
