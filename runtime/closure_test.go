package runtime

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func newTestFunction(t *testing.T, gc *Gc, name string, args VMIndex) GcPtr[BytecodeFunction] {
	t.Helper()
	fn, err := NewFunction(gc, BytecodeFunction{Name: name, Args: args})
	if err != nil {
		t.Fatal(err)
	}
	return fn
}

func TestClosureUpvars(t *testing.T) {
	gc := NewGc(0, nil)
	fn := newTestFunction(t, gc, "add", 2)
	s, _ := NewString(gc, "captured")
	c, err := NewClosure(gc, fn, Int(1), s)
	if err != nil {
		t.Fatal(err)
	}

	if c.Name() != "add" || c.Args() != 2 {
		t.Errorf("Expected add/2, got %s/%d instead", c.Name(), c.Args())
	}
	if c.Get().FunctionPtr() != fn {
		t.Errorf("Closure does not share its function")
	}
	if !cmp.Equal(c.Get().Upvars(), []Value{Int(1), s}, sameValue) {
		t.Errorf("Expected %v, got %v instead", []Value{Int(1), s}, c.Get().Upvars())
	}
	if _, err := c.Get().Upvar(2); !errors.Is(err, ErrLayoutMismatch) {
		t.Errorf("Expected ErrLayoutMismatch, got %v instead", err)
	}
}

func TestClosureInitDef(t *testing.T) {
	gc := NewGc(0, nil)
	fn := newTestFunction(t, gc, "f", 0)
	ptr, err := Alloc[ClosureData](gc, ClosureInitDef{fn, 3})
	if err != nil {
		t.Fatal(err)
	}
	exp := []Value{Int(0), Int(0), Int(0)}
	if !cmp.Equal(ptr.Get().Upvars(), exp, sameValue) {
		t.Errorf("Expected %v, got %v instead", exp, ptr.Get().Upvars())
	}
}

func TestRecursiveClosure(t *testing.T) {
	gc := NewGc(0, nil)
	fn := newTestFunction(t, gc, "loop", 1)
	loop, err := NewRecursiveClosure(gc, fn, 2, func(self Closure) []Value {
		return []Value{Int(7), self}
	})
	if err != nil {
		t.Fatal(err)
	}

	self, err := loop.Get().Upvar(1)
	if err != nil {
		t.Fatal(err)
	}
	if self != Value(loop) {
		t.Errorf("Expected the closure to capture itself, got %v instead", self)
	}
	if first, _ := loop.Get().Upvar(0); first != Int(7) {
		t.Errorf("Expected 7, got %v instead", first)
	}
}

func TestMutualClosures(t *testing.T) {
	gc := NewGc(0, nil)
	even := newTestFunction(t, gc, "even", 1)
	odd := newTestFunction(t, gc, "odd", 1)
	closures, err := NewMutualClosures(gc, []GcPtr[BytecodeFunction]{even, odd}, []int{1, 2},
		func(c []Closure) [][]Value { return [][]Value{{c[1]}, {c[0], Int(3)}} })
	if err != nil {
		t.Fatal(err)
	}

	if !cmp.Equal(closures[0].Get().Upvars(), []Value{closures[1]}, sameValue) {
		t.Errorf("even does not capture odd: %v", closures[0].Get().Upvars())
	}
	if !cmp.Equal(closures[1].Get().Upvars(), []Value{closures[0], Int(3)}, sameValue) {
		t.Errorf("odd does not capture even: %v", closures[1].Get().Upvars())
	}
}

func TestMutualClosuresWrongCount(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("Expected a panic")
		}
	}()
	gc := NewGc(0, nil)
	fn := newTestFunction(t, gc, "f", 0)
	NewRecursiveClosure(gc, fn, 2, func(self Closure) []Value { return []Value{self} })
}

func TestPartialApplication(t *testing.T) {
	gc := NewGc(0, nil)
	fn := newTestFunction(t, gc, "add3", 3)
	c, _ := NewClosure(gc, fn)

	testCases := []struct {
		name      string
		args      []Value
		remaining int
		err       error
	}{
		{"None", []Value{}, 3, nil},
		{"One", []Value{Int(1)}, 2, nil},
		{"Two", []Value{Int(1), Int(2)}, 1, nil},
		{"Saturated", []Value{Int(1), Int(2), Int(3)}, 0, ErrUnexpectedShape},
		{"NilArgument", []Value{nil}, 0, ErrUnexpectedShape},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := NewPartialApplication(gc, c, tc.args...)
			if tc.err != nil {
				if !errors.Is(err, tc.err) {
					t.Errorf("Expected %v, got %v instead", tc.err, err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if p.Get().Remaining() != tc.remaining {
				t.Errorf("Expected %d remaining, got %d instead", tc.remaining, p.Get().Remaining())
			}
			if !cmp.Equal(p.Get().Arguments(), tc.args, sameValue) {
				t.Errorf("Expected %v, got %v instead", tc.args, p.Get().Arguments())
			}
			if p.Get().Function() != Callable(c) {
				t.Errorf("Expected the application to keep its callable")
			}
		})
	}
}
