// interpreter_exec.go: tree-walking evaluation of statements and
// expressions.
//
// Every statement execution step returns an explicit completion (normal /
// return / break) that callers thread outward — `return` inside a function
// body unwinds to the call site by completion propagation, never by panic.
// Loops enforce the iteration cap independently; the cap error carries
// ErrResource and aborts the whole Execute call.
package luaengine

import (
	"strconv"
)

type compKind int

const (
	compNormal compKind = iota
	compReturn
	compBreak
)

// completion is the result of executing a statement or block: normal
// continuation, a propagating return value, or a loop break.
type completion struct {
	kind  compKind
	value Value
}

var normal = completion{kind: compNormal}

// ---- statements ---------------------------------------------------------

func (ec *execContext) execBlock(body []Stmt) (completion, error) {
	for _, st := range body {
		comp, err := ec.execStmt(st)
		if err != nil {
			return normal, err
		}
		if comp.kind != compNormal {
			return comp, nil
		}
	}
	return normal, nil
}

func (ec *execContext) execStmt(st Stmt) (completion, error) {
	switch s := st.(type) {
	case *AssignStmt:
		v, err := ec.evalExpr(s.Value)
		if err != nil {
			return normal, err
		}
		return normal, ec.assign(s.Target, v)

	case *CallStmt:
		_, err := ec.evalCall(s.Call)
		return normal, err

	case *IfStmt:
		for _, br := range s.Branches {
			if br.Cond != nil {
				c, err := ec.evalExpr(br.Cond)
				if err != nil {
					return normal, err
				}
				if !truthy(c) {
					continue
				}
			}
			return ec.execBlock(br.Body)
		}
		return normal, nil

	case *WhileStmt:
		iter := 0
		for {
			c, err := ec.evalExpr(s.Cond)
			if err != nil {
				return normal, err
			}
			if !truthy(c) {
				return normal, nil
			}
			iter++
			if iter > maxLoopIterations {
				return normal, &ScriptError{Kind: ErrResource, Line: s.Line, Col: s.Col,
					Msg: "exceeded maximum iterations (" + strconv.Itoa(maxLoopIterations) + ")"}
			}
			comp, err := ec.execBlock(s.Body)
			if err != nil {
				return normal, err
			}
			if comp.kind == compBreak {
				return normal, nil
			}
			if comp.kind == compReturn {
				return comp, nil
			}
		}

	case *ForStmt:
		start, err := ec.evalNumber(s.Start, "'for' initial value")
		if err != nil {
			return normal, err
		}
		stop, err := ec.evalNumber(s.Stop, "'for' limit")
		if err != nil {
			return normal, err
		}
		step := 1.0
		if s.Step != nil {
			if step, err = ec.evalNumber(s.Step, "'for' step"); err != nil {
				return normal, err
			}
		}
		if step == 0 {
			return normal, runtimeErr(s.Line, s.Col, "'for' step is zero")
		}
		iter := 0
		for i := start; (step > 0 && i <= stop) || (step < 0 && i >= stop); i += step {
			iter++
			if iter > maxLoopIterations {
				return normal, &ScriptError{Kind: ErrResource, Line: s.Line, Col: s.Col,
					Msg: "exceeded maximum iterations (" + strconv.Itoa(maxLoopIterations) + ")"}
			}
			ec.vars[s.Var] = Number(i)
			comp, err := ec.execBlock(s.Body)
			if err != nil {
				return normal, err
			}
			if comp.kind == compBreak {
				break
			}
			if comp.kind == compReturn {
				return comp, nil
			}
		}
		return normal, nil

	case *FuncStmt:
		ec.funcs[s.Name] = &FunctionDef{Name: s.Name, Params: s.Params, Body: s.Body}
		return normal, nil

	case *ReturnStmt:
		v := Nil
		if s.Value != nil {
			var err error
			if v, err = ec.evalExpr(s.Value); err != nil {
				return normal, err
			}
		}
		return completion{kind: compReturn, value: v}, nil

	case *BreakStmt:
		return completion{kind: compBreak}, nil
	}
	line, col := st.Pos()
	return normal, runtimeErr(line, col, "unsupported statement")
}

// assign stores v into a name, dotted field, or bracketed index target.
func (ec *execContext) assign(target Expr, v Value) error {
	switch t := target.(type) {
	case *NameExpr:
		ec.vars[t.Name] = v
		return nil
	case *FieldExpr:
		obj, err := ec.evalExpr(t.Obj)
		if err != nil {
			return err
		}
		if obj.Tag != TagTable {
			return runtimeErr(t.Line, t.Col, "attempt to index a %s value", typeName(obj))
		}
		obj.Data.(*Table).Set(t.Name, v)
		return nil
	case *IndexExpr:
		obj, err := ec.evalExpr(t.Obj)
		if err != nil {
			return err
		}
		if obj.Tag != TagTable {
			return runtimeErr(t.Line, t.Col, "attempt to index a %s value", typeName(obj))
		}
		keyVal, err := ec.evalExpr(t.Key)
		if err != nil {
			return err
		}
		key, err := tableKey(keyVal, t.Line, t.Col)
		if err != nil {
			return err
		}
		obj.Data.(*Table).Set(key, v)
		return nil
	}
	line, col := target.Pos()
	return runtimeErr(line, col, "cannot assign to this expression")
}

func (ec *execContext) evalNumber(e Expr, what string) (float64, error) {
	v, err := ec.evalExpr(e)
	if err != nil {
		return 0, err
	}
	if v.Tag != TagNumber {
		line, col := e.Pos()
		return 0, runtimeErr(line, col, "%s must be a number (got %s)", what, typeName(v))
	}
	return v.Data.(float64), nil
}

// tableKey coerces an index value to the table's string-key space.
func tableKey(v Value, line, col int) (string, error) {
	switch v.Tag {
	case TagNumber:
		return formatNumber(v.Data.(float64)), nil
	case TagString:
		return v.Data.(string), nil
	case TagNil:
		return "", runtimeErr(line, col, "table index is nil")
	}
	return "", runtimeErr(line, col, "table index must be a number or string (got %s)", typeName(v))
}

// ---- expressions --------------------------------------------------------

func (ec *execContext) evalExpr(e Expr) (Value, error) {
	switch x := e.(type) {
	case *NilExpr:
		return Nil, nil
	case *BoolExpr:
		return Bool(x.Value), nil
	case *NumberExpr:
		return Number(x.Value), nil
	case *StringExpr:
		return Str(x.Value), nil

	case *NameExpr:
		if v, ok := ec.vars[x.Name]; ok {
			return v, nil
		}
		if _, ok := ec.funcs[x.Name]; ok {
			return FuncVal(x.Name), nil
		}
		return Nil, runtimeErr(x.Line, x.Col, "unknown variable: %s", x.Name)

	case *TableExpr:
		t := NewTable()
		arrayIndex := 0
		for _, item := range x.Items {
			v, err := ec.evalExpr(item.Value)
			if err != nil {
				return Nil, err
			}
			if item.Key == nil {
				arrayIndex++
				t.Set(strconv.Itoa(arrayIndex), v)
				continue
			}
			keyVal, err := ec.evalExpr(item.Key)
			if err != nil {
				return Nil, err
			}
			key, err := tableKey(keyVal, x.Line, x.Col)
			if err != nil {
				return Nil, err
			}
			t.Set(key, v)
		}
		return TableVal(t), nil

	case *FieldExpr:
		obj, err := ec.evalExpr(x.Obj)
		if err != nil {
			return Nil, err
		}
		if obj.Tag != TagTable {
			return Nil, runtimeErr(x.Line, x.Col, "attempt to index a %s value", typeName(obj))
		}
		return obj.Data.(*Table).Get(x.Name), nil

	case *IndexExpr:
		obj, err := ec.evalExpr(x.Obj)
		if err != nil {
			return Nil, err
		}
		if obj.Tag != TagTable {
			return Nil, runtimeErr(x.Line, x.Col, "attempt to index a %s value", typeName(obj))
		}
		keyVal, err := ec.evalExpr(x.Key)
		if err != nil {
			return Nil, err
		}
		key, err := tableKey(keyVal, x.Line, x.Col)
		if err != nil {
			return Nil, err
		}
		return obj.Data.(*Table).Get(key), nil

	case *CallExpr:
		return ec.evalCall(x)

	case *UnaryExpr:
		v, err := ec.evalExpr(x.X)
		if err != nil {
			return Nil, err
		}
		if x.Op == NOT {
			return Bool(!truthy(v)), nil
		}
		if v.Tag != TagNumber {
			return Nil, runtimeErr(x.Line, x.Col, "attempt to perform arithmetic on a %s value", typeName(v))
		}
		return Number(-v.Data.(float64)), nil

	case *BinaryExpr:
		return ec.evalBinary(x)
	}
	line, col := e.Pos()
	return Nil, runtimeErr(line, col, "unsupported expression")
}

func (ec *execContext) evalBinary(x *BinaryExpr) (Value, error) {
	// Short-circuit logic first; operands are returned Lua-style
	// (`x or fallback` keeps the left value when it is truthy).
	if x.Op == AND || x.Op == OR {
		l, err := ec.evalExpr(x.L)
		if err != nil {
			return Nil, err
		}
		if x.Op == AND {
			if !truthy(l) {
				return l, nil
			}
		} else if truthy(l) {
			return l, nil
		}
		return ec.evalExpr(x.R)
	}

	l, err := ec.evalExpr(x.L)
	if err != nil {
		return Nil, err
	}
	r, err := ec.evalExpr(x.R)
	if err != nil {
		return Nil, err
	}

	switch x.Op {
	case EQ:
		return Bool(valuesEqual(l, r)), nil
	case NEQ:
		return Bool(!valuesEqual(l, r)), nil

	case LT, LE, GT, GE:
		return compareValues(x, l, r)

	case CONCAT:
		ls, err := concatPart(l, x)
		if err != nil {
			return Nil, err
		}
		rs, err := concatPart(r, x)
		if err != nil {
			return Nil, err
		}
		return Str(ls + rs), nil

	case PLUS:
		// The dialect's implicit rule: '+' with a string operand
		// concatenates.
		if l.Tag == TagString || r.Tag == TagString {
			ls, err := concatPart(l, x)
			if err != nil {
				return Nil, err
			}
			rs, err := concatPart(r, x)
			if err != nil {
				return Nil, err
			}
			return Str(ls + rs), nil
		}
		return ec.arith(x, l, r)

	case MINUS, STAR, SLASH, PERCENT:
		return ec.arith(x, l, r)
	}
	return Nil, runtimeErr(x.Line, x.Col, "unsupported operator")
}

func (ec *execContext) arith(x *BinaryExpr, l, r Value) (Value, error) {
	if l.Tag != TagNumber {
		return Nil, runtimeErr(x.Line, x.Col, "attempt to perform arithmetic on a %s value", typeName(l))
	}
	if r.Tag != TagNumber {
		return Nil, runtimeErr(x.Line, x.Col, "attempt to perform arithmetic on a %s value", typeName(r))
	}
	a, b := l.Data.(float64), r.Data.(float64)
	switch x.Op {
	case PLUS:
		return Number(a + b), nil
	case MINUS:
		return Number(a - b), nil
	case STAR:
		return Number(a * b), nil
	case SLASH:
		if b == 0 {
			return Nil, runtimeErr(x.Line, x.Col, "division by zero")
		}
		return Number(a / b), nil
	case PERCENT:
		if b == 0 {
			return Nil, runtimeErr(x.Line, x.Col, "modulo by zero")
		}
		m := a - b*float64(int64(a/b))
		// Lua's % follows the sign of the divisor.
		if m != 0 && (m < 0) != (b < 0) {
			m += b
		}
		return Number(m), nil
	}
	return Nil, runtimeErr(x.Line, x.Col, "unsupported arithmetic operator")
}

func compareValues(x *BinaryExpr, l, r Value) (Value, error) {
	var cmp int
	switch {
	case l.Tag == TagNumber && r.Tag == TagNumber:
		a, b := l.Data.(float64), r.Data.(float64)
		switch {
		case a < b:
			cmp = -1
		case a > b:
			cmp = 1
		}
	case l.Tag == TagString && r.Tag == TagString:
		a, b := l.Data.(string), r.Data.(string)
		switch {
		case a < b:
			cmp = -1
		case a > b:
			cmp = 1
		}
	default:
		return Nil, runtimeErr(x.Line, x.Col, "attempt to compare %s with %s", typeName(l), typeName(r))
	}
	switch x.Op {
	case LT:
		return Bool(cmp < 0), nil
	case LE:
		return Bool(cmp <= 0), nil
	case GT:
		return Bool(cmp > 0), nil
	case GE:
		return Bool(cmp >= 0), nil
	}
	return Nil, runtimeErr(x.Line, x.Col, "unsupported comparison operator")
}

// concatPart coerces a value for string concatenation. Tables and
// functions do not coerce implicitly.
func concatPart(v Value, x *BinaryExpr) (string, error) {
	switch v.Tag {
	case TagNil, TagBool, TagNumber, TagString:
		return formatValue(v), nil
	}
	return "", runtimeErr(x.Line, x.Col, "attempt to concatenate a %s value", typeName(v))
}

// ---- calls --------------------------------------------------------------

// evalCall resolves a (possibly dotted) callable name and invokes it.
// Resolution order: user-defined function, standard-library/registered
// builtin, then a function value reachable through variables ("g = f"
// aliases, functions stored in tables).
func (ec *execContext) evalCall(c *CallExpr) (Value, error) {
	args := make([]Value, len(c.Args))
	for i, a := range c.Args {
		v, err := ec.evalExpr(a)
		if err != nil {
			return Nil, err
		}
		args[i] = v
	}

	if fd, ok := ec.funcs[c.Name]; ok {
		return ec.invoke(fd, args, c)
	}
	if fn, ok := ec.eng.builtins[c.Name]; ok {
		v, err := fn(&CallContext{ec: ec}, args)
		if err != nil {
			se := asScriptError(err)
			if se.Line == 0 {
				se.Line, se.Col = c.Line, c.Col
			}
			return Nil, se
		}
		return v, nil
	}
	if fd := ec.resolveFunctionRef(c.Name); fd != nil {
		return ec.invoke(fd, args, c)
	}
	return Nil, runtimeErr(c.Line, c.Col, "unknown function: %s", c.Name)
}

// resolveFunctionRef follows a name or dotted path through variables and
// returns the referenced user function, if any.
func (ec *execContext) resolveFunctionRef(name string) *FunctionDef {
	parts := splitDots(name)
	v, ok := ec.vars[parts[0]]
	if !ok {
		return nil
	}
	for _, p := range parts[1:] {
		if v.Tag != TagTable {
			return nil
		}
		v = v.Data.(*Table).Get(p)
	}
	if v.Tag != TagFunction {
		return nil
	}
	return ec.funcs[v.Data.(string)]
}

func splitDots(name string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(name); i++ {
		if name[i] == '.' {
			parts = append(parts, name[start:i])
			start = i + 1
		}
	}
	return append(parts, name[start:])
}

// invoke binds parameters by position into the shared flat namespace and
// executes the body; a return completion carries the result back here.
// Prior bindings of the parameter names are restored when the call
// finishes, so a recursive call cannot clobber its caller's arguments.
func (ec *execContext) invoke(fd *FunctionDef, args []Value, c *CallExpr) (Value, error) {
	if ec.depth >= maxCallDepth {
		return Nil, runtimeErr(c.Line, c.Col, "exceeded maximum call depth (%d)", maxCallDepth)
	}
	type binding struct {
		name    string
		val     Value
		present bool
	}
	prior := make([]binding, 0, len(fd.Params))
	for i, p := range fd.Params {
		old, ok := ec.vars[p]
		prior = append(prior, binding{name: p, val: old, present: ok})
		if i < len(args) {
			ec.vars[p] = args[i]
		} else {
			ec.vars[p] = Nil
		}
	}
	ec.depth++
	comp, err := ec.execBlock(fd.Body)
	ec.depth--
	for i := len(prior) - 1; i >= 0; i-- {
		b := prior[i]
		if b.present {
			ec.vars[b.name] = b.val
		} else {
			delete(ec.vars, b.name)
		}
	}
	if err != nil {
		return Nil, err
	}
	if comp.kind == compReturn {
		return comp.value, nil
	}
	return Nil, nil
}
