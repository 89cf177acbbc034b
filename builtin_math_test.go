package luaengine

import "testing"

func Test_Builtin_MathUnary(t *testing.T) {
	e := New()
	mustExec(t, e, `a = math.floor(3.7)
b = math.ceil(3.2)
c = math.abs(-5)
d = math.sqrt(16)`)
	wantNumVar(t, e, "a", 3)
	wantNumVar(t, e, "b", 4)
	wantNumVar(t, e, "c", 5)
	wantNumVar(t, e, "d", 4)
}

func Test_Builtin_MathMinMax(t *testing.T) {
	e := New()
	mustExec(t, e, "lo = math.min(3, 7)\nhi = math.max(3, 7)")
	wantNumVar(t, e, "lo", 3)
	wantNumVar(t, e, "hi", 7)
}

func Test_Builtin_MathRandomRange(t *testing.T) {
	e := New()
	e.Seed(1)
	for i := 0; i < 50; i++ {
		mustExec(t, e, "r = math.random(3, 9)")
		v, _ := e.GetVariable("r")
		f := v.(float64)
		if f < 3 || f > 9 || f != float64(int64(f)) {
			t.Fatalf("math.random(3,9) out of range: %g", f)
		}
	}
}

func Test_Builtin_MathRandomArities(t *testing.T) {
	e := New()
	e.Seed(7)
	mustExec(t, e, "a = math.random()\nb = math.random(5)")
	av, _ := e.GetVariable("a")
	if f := av.(float64); f < 0 || f >= 1 {
		t.Fatalf("math.random() out of [0,1): %g", f)
	}
	bv, _ := e.GetVariable("b")
	if f := bv.(float64); f < 1 || f > 5 {
		t.Fatalf("math.random(5) out of [1,5]: %g", f)
	}
}

func Test_Builtin_MathRandomDeterministicWithSeed(t *testing.T) {
	runOnce := func() []float64 {
		e := New()
		e.Seed(99)
		mustExec(t, e, "a = math.random(1, 1000)\nb = math.random(1, 1000)")
		av, _ := e.GetVariable("a")
		bv, _ := e.GetVariable("b")
		return []float64{av.(float64), bv.(float64)}
	}
	x, y := runOnce(), runOnce()
	if x[0] != y[0] || x[1] != y[1] {
		t.Fatalf("seeded runs differ: %v vs %v", x, y)
	}
}

func Test_Builtin_MathRandomEmptyInterval(t *testing.T) {
	e := New()
	res := failExec(t, e, "x = math.random(9, 3)")
	if !errorsContain(res, "interval is empty") {
		t.Fatalf("want empty-interval error, got %v", res.Errors)
	}
}
