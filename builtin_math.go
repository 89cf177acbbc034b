// builtin_math.go: the math.* built-ins.
package luaengine

import "math"

func registerMathBuiltins(e *Engine) {
	// math.random() -> float in [0,1)
	// math.random(n) -> integer in [1,n]
	// math.random(min, max) -> integer in [min,max] (inclusive)
	e.RegisterBuiltin("math.random", func(c *CallContext, args []Value) (Value, error) {
		switch len(args) {
		case 0:
			return Number(c.Rand().Float64()), nil
		case 1:
			n, err := argNumber("math.random", args, 0)
			if err != nil {
				return Nil, err
			}
			if n < 1 {
				return Nil, badArg(1, "math.random", "interval is empty")
			}
			return Number(float64(1 + c.Rand().Int63n(int64(n)))), nil
		default:
			lo, err := argNumber("math.random", args, 0)
			if err != nil {
				return Nil, err
			}
			hi, err := argNumber("math.random", args, 1)
			if err != nil {
				return Nil, err
			}
			if hi < lo {
				return Nil, badArg(2, "math.random", "interval is empty")
			}
			return Number(float64(int64(lo) + c.Rand().Int63n(int64(hi)-int64(lo)+1))), nil
		}
	})

	unary := func(name string, f func(float64) float64) {
		e.RegisterBuiltin(name, func(_ *CallContext, args []Value) (Value, error) {
			x, err := argNumber(name, args, 0)
			if err != nil {
				return Nil, err
			}
			return Number(f(x)), nil
		})
	}
	unary("math.floor", math.Floor)
	unary("math.ceil", math.Ceil)
	unary("math.abs", math.Abs)
	unary("math.sqrt", math.Sqrt)

	binary := func(name string, f func(a, b float64) float64) {
		e.RegisterBuiltin(name, func(_ *CallContext, args []Value) (Value, error) {
			a, err := argNumber(name, args, 0)
			if err != nil {
				return Nil, err
			}
			b, err := argNumber(name, args, 1)
			if err != nil {
				return Nil, err
			}
			return Number(f(a, b)), nil
		})
	}
	binary("math.min", math.Min)
	binary("math.max", math.Max)
}
