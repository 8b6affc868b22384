package runtime

import (
	"fmt"
	"testing"
)

func TestDebug(t *testing.T) {
	gc := NewGc(0, nil)
	x, _ := NewString(gc, "x")
	rec, _ := NewData(gc, 1, Int(5), x)
	nested, _ := NewData(gc, 2, rec)
	empty, _ := NewData(gc, 0)
	native, _ := NewExtern(gc, "print", 2, func(*VMThread) Status { return StatusOk })
	app, _ := NewPartialApplication(gc, native, Int(1))
	fn, _ := NewFunction(gc, BytecodeFunction{Name: "f", Args: 2})
	clos, _ := NewClosure(gc, fn)
	capp, _ := NewPartialApplication(gc, clos, x)

	testCases := []struct {
		name  string
		v     Value
		depth int
		exp   string
	}{
		{"Int", Int(-3), 1, "-3"},
		{"Float", Float(1.5), 1, "1.5f"},
		{"String", x, 1, `"x"`},
		{"Data", rec, 3, `{1: 5, "x"}`},
		{"EmptyData", empty, 3, "{0: }"},
		{"Nested", nested, 3, `{2: {1: 5, "x"}}`},
		{"Truncated", nested, 2, "{2: {1: ...}}"},
		{"Shallow", nested, 1, "{2: ...}"},
		{"Zero", rec, 0, "..."},
		{"Extern", native, 1, "<EXTERN print>"},
		{"ExternApp", app, 3, "<App <EXTERN> 1>"},
		{"ClosureApp", capp, 3, `<App <CLOSURE> "x">`},
		{"Closure", clos, 1, fmt.Sprintf("<f %p>", fn.b)},
		{"Nil", nil, 1, "<nil>"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if res := Debug(tc.v, tc.depth); res != tc.exp {
				t.Errorf("Expected %s, got %s instead", tc.exp, res)
			}
		})
	}
}

func TestStringerTerminatesOnCycles(t *testing.T) {
	gc := NewGc(0, nil)
	d, _ := NewData(gc, 1, Int(0))
	d.asMut().fields.set(0, d)

	exp := "{1: {1: {1: ...}}}"
	if res := d.String(); res != exp {
		t.Errorf("Expected %s, got %s instead", exp, res)
	}
}
