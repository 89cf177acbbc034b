package luaengine

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Property: for-loop summation matches the closed form n(n+1)/2 for any
// bound, in both directions.
func Test_Property_ForLoopSum(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("ascending sum matches closed form", prop.ForAll(
		func(n int) bool {
			e := New()
			res := e.Execute(fmt.Sprintf("total = 0\nfor i = 1, %d do\n total = total + i\nend", n))
			if !res.Success {
				return false
			}
			v, _ := e.GetVariable("total")
			return v.(float64) == float64(n*(n+1)/2)
		},
		gen.IntRange(1, 500),
	))

	properties.Property("descending sum matches ascending sum", prop.ForAll(
		func(n int) bool {
			e := New()
			res := e.Execute(fmt.Sprintf("total = 0\nfor i = %d, 1, -1 do\n total = total + i\nend", n))
			if !res.Success {
				return false
			}
			v, _ := e.GetVariable("total")
			return v.(float64) == float64(n*(n+1)/2)
		},
		gen.IntRange(1, 500),
	))

	properties.TestingRun(t)
}

// Property: host round-trip conversion is the identity for primitives.
func Test_Property_RoundTripConversion(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("float64 round trip", prop.ForAll(
		func(f float64) bool {
			return FromValue(ToValue(f)) == f
		},
		gen.Float64Range(-1e12, 1e12),
	))

	properties.Property("string round trip", prop.ForAll(
		func(s string) bool {
			return FromValue(ToValue(s)) == s
		},
		gen.AnyString(),
	))

	properties.Property("bool round trip", prop.ForAll(
		func(b bool) bool {
			return FromValue(ToValue(b)) == b
		},
		gen.Bool(),
	))

	properties.TestingRun(t)
}

// Property: variable writes committed by one Execute call are visible to
// the next call on the same engine.
func Test_Property_PersistenceAcrossCalls(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("sequential calls observe committed writes", prop.ForAll(
		func(k int) bool {
			e := New()
			if !e.Execute(fmt.Sprintf("x = %d", k)).Success {
				return false
			}
			if !e.Execute("y = x + 1").Success {
				return false
			}
			v, ok := e.GetVariable("y")
			return ok && v.(float64) == float64(k+1)
		},
		gen.IntRange(-10000, 10000),
	))

	properties.TestingRun(t)
}

// Property: every unbounded while loop terminates with the iteration-cap
// error and commits nothing, regardless of the loop body.
func Test_Property_IterationCapAlwaysTerminates(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 30
	properties := gopter.NewProperties(parameters)

	properties.Property("unbounded loops hit the cap", prop.ForAll(
		func(inc int) bool {
			e := New()
			res := e.Execute(fmt.Sprintf("x = 1\nwhile x > 0 do\n x = x + %d\nend", inc))
			if res.Success {
				return false
			}
			if !errorsContain(res, "exceeded maximum iterations") {
				return false
			}
			_, ok := e.GetVariable("x")
			return !ok
		},
		gen.IntRange(1, 100),
	))

	properties.TestingRun(t)
}
