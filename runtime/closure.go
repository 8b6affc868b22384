package runtime

import (
	"fmt"
	"unsafe"
)

// Compiled function metadata. Immutable once allocated and shared by every
// closure instantiated from it.
type BytecodeFunction struct {
	Name           string
	Args           VMIndex
	Instructions   []Instruction
	InnerFunctions []GcPtr[BytecodeFunction]
	Strings        []string
	Globals        []Value
}

func (f *BytecodeFunction) Traverse(t *Tracer) {
	for _, inner := range f.InnerFunctions {
		inner.Traverse(t)
	}
	traverseValues(t, f.Globals)
}

// NewFunction moves compiled function metadata onto the heap. Deep clones keep
// pointing at the function instead of copying it, so it belongs in a heap that
// every heap its closures may be sent to can see, normally the root heap.
func NewFunction(gc *Gc, f BytecodeFunction) (GcPtr[BytecodeFunction], error) {
	return Alloc[BytecodeFunction](gc, Move[BytecodeFunction]{f})
}

type ClosureData struct {
	function GcPtr[BytecodeFunction]
	upvars   Array[Value]
}

func (c *ClosureData) Function() *BytecodeFunction {
	return c.function.Get()
}

func (c *ClosureData) FunctionPtr() GcPtr[BytecodeFunction] {
	return c.function
}

func (c *ClosureData) Len() int {
	return c.upvars.Len()
}

// Upvar returns the nth captured value in capture order.
func (c *ClosureData) Upvar(n int) (Value, error) {
	if n < 0 || n >= c.upvars.Len() {
		return nil, fmt.Errorf("%w: upvalue index %d out of range for %s with %d upvalues",
			ErrLayoutMismatch, n, c.function.Get().Name, c.upvars.Len())
	}
	return c.upvars.At(n), nil
}

func (c *ClosureData) Upvars() []Value {
	return c.upvars.Elements()
}

func (c *ClosureData) Traverse(t *Tracer) {
	c.function.Traverse(t)
	c.upvars.Traverse(t)
}

func closureSize(upvars int) uintptr {
	return unsafe.Sizeof(GcPtr[BytecodeFunction]{}) + ArraySizeOf[Value](upvars)
}

// Definition of a closure capturing a copy of Upvars.
type ClosureDataDef struct {
	Function GcPtr[BytecodeFunction]
	Upvars   []Value
}

func (d ClosureDataDef) Size() uintptr {
	return closureSize(len(d.Upvars))
}

func (d ClosureDataDef) Initialize(result WriteOnly[ClosureData]) *ClosureData {
	c := result.AsMut()
	c.function = d.Function
	c.upvars.Initialize(d.Upvars)
	return c
}

func (d ClosureDataDef) Traverse(t *Tracer) {
	d.Function.Traverse(t)
	traverseValues(t, d.Upvars)
}

// Definition of a closure whose Count upvalues are placeholders set to Int(0).
// Used when the upvalues must refer to the closure being built, so they can
// only be filled in once the closure has a reference.
type ClosureInitDef struct {
	Function GcPtr[BytecodeFunction]
	Count    int
}

func (d ClosureInitDef) Size() uintptr {
	return closureSize(d.Count)
}

func (d ClosureInitDef) Initialize(result WriteOnly[ClosureData]) *ClosureData {
	c := result.AsMut()
	c.function = d.Function
	c.upvars.SetLen(d.Count, Int(0))
	return c
}

func (d ClosureInitDef) Traverse(t *Tracer) {
	d.Function.Traverse(t)
}

// NewClosure instantiates fn capturing upvars.
func NewClosure(gc *Gc, fn GcPtr[BytecodeFunction], upvars ...Value) (Closure, error) {
	ptr, err := Alloc[ClosureData](gc, ClosureDataDef{fn, upvars})
	if err != nil {
		return Closure{}, err
	}
	return Closure{ptr}, nil
}

// NewRecursiveClosure builds a closure with count upvalues which may refer to
// the closure itself. capture receives the new closure before anything else
// can see it and returns the values to capture.
func NewRecursiveClosure(gc *Gc, fn GcPtr[BytecodeFunction], count int, capture func(self Closure) []Value) (Closure, error) {
	closures, err := NewMutualClosures(gc, []GcPtr[BytecodeFunction]{fn}, []int{count},
		func(selves []Closure) [][]Value { return [][]Value{capture(selves[0])} })
	if err != nil {
		return Closure{}, err
	}
	return closures[0], nil
}

// NewMutualClosures builds a group of closures that may all capture each other.
// Every closure is first allocated with placeholder upvalues, then capture is
// given the whole group and its result is patched into the upvalue slots.
func NewMutualClosures(gc *Gc, fns []GcPtr[BytecodeFunction], counts []int, capture func(selves []Closure) [][]Value) ([]Closure, error) {
	if len(fns) != len(counts) {
		panic("NewMutualClosures: every function needs an upvalue count")
	}
	closures := make([]Closure, len(fns))
	for i, fn := range fns {
		ptr, err := Alloc[ClosureData](gc, ClosureInitDef{fn, counts[i]})
		if err != nil {
			return nil, err
		}
		closures[i] = Closure{ptr}
	}

	captured := capture(closures)
	if len(captured) != len(closures) {
		panic("NewMutualClosures: capture must return upvalues for every closure")
	}
	for i, upvars := range captured {
		shell := closures[i].asMut()
		if len(upvars) != shell.upvars.Len() {
			panic(fmt.Sprintf("NewMutualClosures: %s expects %d upvalues, got %d",
				shell.function.Get().Name, shell.upvars.Len(), len(upvars)))
		}
		for j, v := range upvars {
			shell.upvars.set(j, v)
		}
	}
	return closures, nil
}
