// interpreter.go — PUBLIC API SURFACE of the whisker scripting engine.
//
// OVERVIEW
// ========
// This file exposes the entire public surface of the Lua-subset engine the
// whisker editor embeds for authoring-time preview. Authors attach short
// scripts to story nodes and choices; the editor hands those scripts (plus
// its current variable snapshot) to this engine and consumes the printed
// output, error log, and updated variables afterwards. The engine knows
// nothing about nodes, choices, UI, or storage: it is a pure function of
// (script text, persistent variable/function state).
//
// What you get in this file:
//   • The runtime value model (`Value`, `ValueTag`, constructors, `Table`).
//   • Host conversions `ToValue` / `FromValue` (lossless for nil, bool,
//     number, string; recursive for tables).
//   • The `Engine` with the canonical entry points:
//       - Execute(source)  — run a script against the persistent state,
//       - Evaluate(expr)   — evaluate one expression (choice guards),
//       - SetVariable / GetVariable / GetAllVariables,
//       - Reset            — back to standard-library-only state,
//       - RegisterBuiltin  — host extension point,
//       - Seed             — deterministic math.random for preview/tests.
//
// EXECUTION & SCOPING SEMANTICS
// -----------------------------
// One global context (variables + user-defined functions) persists across
// sequential Execute calls on the same Engine. Each Execute runs against a
// working copy of that context; the copy is merged back only when the call
// finishes with an empty error log, so a failed call never half-commits.
// There is a single flat namespace: function parameters bind into the same
// variable table as top-level code (a deliberate simplification of the
// authoring dialect — no lexical scoping, no closures). The parameter
// bindings themselves are restored when a call returns, so recursion works
// and arguments never leak; everything else a body assigns persists.
//
// ERRORS & SAFETY
// ---------------
// Execute never panics and never returns a Go error: the result always
// carries Success plus ordered Output and Errors logs. Syntax and runtime
// errors are isolated to the offending top-level statement; exceeding the
// loop iteration cap (the engine's only resource guard) aborts the whole
// call. Division by zero is a hard runtime error in this engine.
//
// CONCURRENCY
// -----------
// The engine is synchronous and single-threaded with no internal locking.
// Callers needing isolation use separate Engine instances.
package luaengine

import (
	"fmt"
	"math/rand"
	"sort"
	"strconv"
	"time"
)

// Version of the scripting engine.
const Version = "0.4.2"

////////////////////////////////////////////////////////////////////////////////
//                              VALUE MODEL
////////////////////////////////////////////////////////////////////////////////

// ValueTag enumerates the runtime kinds a Value may hold.
type ValueTag int

const (
	TagNil      ValueTag = iota // nil (no payload)
	TagBool                     // bool
	TagNumber                   // float64
	TagString                   // string
	TagTable                    // *Table
	TagFunction                 // string: name in the function registry
)

// Value is the tagged runtime carrier. Exactly one case is active, chosen
// by Tag; Data holds the Go value appropriate for that tag.
type Value struct {
	Tag  ValueTag
	Data any
}

// Nil is the singleton nil Value.
var Nil = Value{Tag: TagNil}

// Primitive constructors.
func Bool(b bool) Value         { return Value{Tag: TagBool, Data: b} }
func Number(f float64) Value    { return Value{Tag: TagNumber, Data: f} }
func Str(s string) Value        { return Value{Tag: TagString, Data: s} }
func TableVal(t *Table) Value   { return Value{Tag: TagTable, Data: t} }
func FuncVal(name string) Value { return Value{Tag: TagFunction, Data: name} }

// String renders a human-friendly debug representation.
func (v Value) String() string {
	switch v.Tag {
	case TagNil:
		return "nil"
	case TagBool:
		return strconv.FormatBool(v.Data.(bool))
	case TagNumber:
		return formatNumber(v.Data.(float64))
	case TagString:
		return strconv.Quote(v.Data.(string))
	case TagTable:
		return fmt.Sprintf("<table len=%d>", len(v.Data.(*Table).Keys))
	case TagFunction:
		return fmt.Sprintf("<function %s>", v.Data.(string))
	default:
		return "<unknown>"
	}
}

// Table is a string-keyed mapping preserving key insertion order. Array
// style constructors ({1,2,3}) store under keys "1","2","3" (1-based,
// matching the dialect's own array convention); this is deliberately not a
// metatable-capable Lua table.
type Table struct {
	Entries map[string]Value
	Keys    []string // insertion order, unique
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{Entries: map[string]Value{}}
}

// Get returns the value under key, or Nil when absent.
func (t *Table) Get(key string) Value {
	if v, ok := t.Entries[key]; ok {
		return v
	}
	return Nil
}

// Set stores v under key, appending the key on first insertion. Setting
// nil removes the key.
func (t *Table) Set(key string, v Value) {
	if v.Tag == TagNil {
		if _, ok := t.Entries[key]; ok {
			delete(t.Entries, key)
			for i, k := range t.Keys {
				if k == key {
					t.Keys = append(t.Keys[:i], t.Keys[i+1:]...)
					break
				}
			}
		}
		return
	}
	if _, ok := t.Entries[key]; !ok {
		t.Keys = append(t.Keys, key)
	}
	t.Entries[key] = v
}

// arrayLen returns n such that keys "1".."n" form the table's array part
// (the largest integer key present, per table.insert semantics).
func (t *Table) arrayLen() int {
	n := 0
	for k := range t.Entries {
		if i, err := strconv.Atoi(k); err == nil && i > n {
			n = i
		}
	}
	return n
}

////////////////////////////////////////////////////////////////////////////////
//                            HOST CONVERSIONS
////////////////////////////////////////////////////////////////////////////////

// ToValue converts a host-native value into a runtime Value. Total and
// lossless for nil, bool, all Go integer/float kinds (normalized to
// float64), and string. map[string]any converts recursively; []any becomes
// a table keyed "1".."n". Anything else is stringified so the conversion
// stays total.
func ToValue(host any) Value {
	switch h := host.(type) {
	case nil:
		return Nil
	case Value:
		return h
	case bool:
		return Bool(h)
	case float64:
		return Number(h)
	case float32:
		return Number(float64(h))
	case int:
		return Number(float64(h))
	case int8:
		return Number(float64(h))
	case int16:
		return Number(float64(h))
	case int32:
		return Number(float64(h))
	case int64:
		return Number(float64(h))
	case uint:
		return Number(float64(h))
	case uint8:
		return Number(float64(h))
	case uint16:
		return Number(float64(h))
	case uint32:
		return Number(float64(h))
	case uint64:
		return Number(float64(h))
	case string:
		return Str(h)
	case map[string]any:
		t := NewTable()
		keys := make([]string, 0, len(h))
		for k := range h {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			t.Set(k, ToValue(h[k]))
		}
		return TableVal(t)
	case []any:
		t := NewTable()
		for i, item := range h {
			t.Set(strconv.Itoa(i+1), ToValue(item))
		}
		return TableVal(t)
	default:
		return Str(fmt.Sprint(h))
	}
}

// FromValue converts a runtime Value back to a host-native value: nil,
// bool, float64, string, or map[string]any for tables (recursively).
// Function values unwrap to their printable form. Shared and cyclic table
// structure maps onto shared Go maps, so self-referential tables built by
// scripts convert without unbounded recursion.
func FromValue(v Value) any {
	return fromValueSeen(v, map[*Table]map[string]any{})
}

func fromValueSeen(v Value, seen map[*Table]map[string]any) any {
	switch v.Tag {
	case TagNil:
		return nil
	case TagBool:
		return v.Data.(bool)
	case TagNumber:
		return v.Data.(float64)
	case TagString:
		return v.Data.(string)
	case TagTable:
		t := v.Data.(*Table)
		if out, ok := seen[t]; ok {
			return out
		}
		out := make(map[string]any, len(t.Keys))
		seen[t] = out
		for _, k := range t.Keys {
			out[k] = fromValueSeen(t.Entries[k], seen)
		}
		return out
	case TagFunction:
		return fmt.Sprintf("function: %s", v.Data.(string))
	default:
		return nil
	}
}

////////////////////////////////////////////////////////////////////////////////
//                                 ENGINE
////////////////////////////////////////////////////////////////////////////////

// FunctionDef is a user-defined function: ordered parameter names plus the
// parsed body. Bodies are parsed once with the enclosing script and stored
// as AST.
type FunctionDef struct {
	Name   string
	Params []string
	Body   []Stmt
}

// ExecResult is the structured outcome of one Execute call. Output and
// Errors are ordered; Success is true iff Errors is empty. Output produced
// before a failing statement is still present.
type ExecResult struct {
	Success bool
	Output  []string
	Errors  []string
}

// Engine is a self-contained scripting engine instance holding the global
// context. Not safe for concurrent use.
type Engine struct {
	vars     map[string]Value
	funcs    map[string]*FunctionDef
	builtins map[string]BuiltinFunc
	rng      *rand.Rand
}

// New creates an engine with an empty global context and the standard
// library installed.
func New() *Engine {
	e := &Engine{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
	e.Reset()
	return e
}

// Seed makes math.random deterministic (preview reproducibility, tests).
func (e *Engine) Seed(seed int64) {
	e.rng = rand.New(rand.NewSource(seed))
}

// Reset clears variables and user functions and reinstalls the standard
// library bindings only (host-registered builtins are dropped).
func (e *Engine) Reset() {
	e.vars = map[string]Value{}
	e.funcs = map[string]*FunctionDef{}
	e.builtins = map[string]BuiltinFunc{}
	registerCoreBuiltins(e)
	registerMathBuiltins(e)
	registerStringBuiltins(e)
	registerTableBuiltins(e)
}

// Execute parses and runs a script against a working copy of the global
// context. The copy's variables and functions are merged back only when
// the error log stays empty; output and errors are always local to the
// call. Execute never returns a Go error — failures are reported through
// the result.
func (e *Engine) Execute(source string) ExecResult {
	stmts, perrs := ParseProgram(source)
	ec := e.newContext()
	for _, pe := range perrs {
		ec.errs = append(ec.errs, pe)
	}

	for _, st := range stmts {
		comp, err := ec.execStmt(st)
		if err != nil {
			se := asScriptError(err)
			ec.errs = append(ec.errs, se)
			if se.Kind == ErrResource {
				// The iteration cap aborts the whole call.
				break
			}
			continue // per-statement isolation
		}
		if comp.kind == compReturn {
			break // top-level return stops the script
		}
	}

	res := ExecResult{Output: ec.out}
	for _, se := range ec.errs {
		res.Errors = append(res.Errors, se.Error())
	}
	res.Success = len(res.Errors) == 0
	if res.Success {
		e.vars = ec.vars
		e.funcs = ec.funcs
	}
	return res
}

// Evaluate parses source as a single expression and evaluates it against
// a working copy of the global context (used by the editor for choice
// guards). A guard that calls user functions therefore never mutates the
// globals; any print output the expression produces is discarded.
func (e *Engine) Evaluate(expression string) (Value, error) {
	expr, err := ParseExpression(expression)
	if err != nil {
		return Nil, err
	}
	return e.newContext().evalExpr(expr)
}

// SetVariable stores a host value into the global context.
func (e *Engine) SetVariable(name string, hostValue any) {
	e.vars[name] = ToValue(hostValue)
}

// GetVariable retrieves a global variable as a host value. The second
// result reports whether the variable is defined.
func (e *Engine) GetVariable(name string) (any, bool) {
	v, ok := e.vars[name]
	if !ok {
		return nil, false
	}
	return FromValue(v), true
}

// GetAllVariables returns a full host-value snapshot of the globals.
func (e *Engine) GetAllVariables() map[string]any {
	out := make(map[string]any, len(e.vars))
	for name, v := range e.vars {
		out[name] = FromValue(v)
	}
	return out
}

// RegisterBuiltin installs a host callable under name (which may be dotted,
// e.g. "story.visit"). Registered builtins are resolved like standard
// library entries and are dropped by Reset.
func (e *Engine) RegisterBuiltin(name string, fn BuiltinFunc) {
	e.builtins[name] = fn
}
