package runtime

import (
	"fmt"
	"unsafe"

	"github.com/rjNemo/underscore"
)

// A callable together with some, but not all, of its arguments. The arguments
// are kept in call order so the call can be completed by appending the rest.
type PartialApplicationData struct {
	function  Callable
	arguments Array[Value]
}

func (p *PartialApplicationData) Function() Callable {
	return p.function
}

func (p *PartialApplicationData) Len() int {
	return p.arguments.Len()
}

func (p *PartialApplicationData) Argument(n int) (Value, error) {
	if n < 0 || n >= p.arguments.Len() {
		return nil, fmt.Errorf("%w: argument index %d out of range for application of %s with %d arguments",
			ErrLayoutMismatch, n, p.function.Name(), p.arguments.Len())
	}
	return p.arguments.At(n), nil
}

func (p *PartialApplicationData) Arguments() []Value {
	return p.arguments.Elements()
}

// Remaining returns how many arguments are still missing before the call is
// saturated.
func (p *PartialApplicationData) Remaining() int {
	return int(p.function.Args()) - p.arguments.Len()
}

func (p *PartialApplicationData) Traverse(t *Tracer) {
	p.function.Traverse(t)
	p.arguments.Traverse(t)
}

type PartialApplicationDataDef struct {
	Function Callable
	Args     []Value
}

func (d PartialApplicationDataDef) Size() uintptr {
	var callable Callable
	return unsafe.Sizeof(callable) + ArraySizeOf[Value](len(d.Args))
}

func (d PartialApplicationDataDef) Initialize(result WriteOnly[PartialApplicationData]) *PartialApplicationData {
	p := result.AsMut()
	p.function = d.Function
	p.arguments.Initialize(d.Args)
	return p
}

func (d PartialApplicationDataDef) Traverse(t *Tracer) {
	d.Function.Traverse(t)
	traverseValues(t, d.Args)
}

// NewPartialApplication binds args to fn. Applications that would already be
// saturated are rejected; the interpreter calls those directly.
func NewPartialApplication(gc *Gc, fn Callable, args ...Value) (PartialApplication, error) {
	if len(args) >= int(fn.Args()) {
		return PartialApplication{}, fmt.Errorf("%w: %s takes %d arguments, cannot partially apply %d",
			ErrUnexpectedShape, fn.Name(), fn.Args(), len(args))
	}
	if underscore.Any(args, func(v Value) bool { return v == nil }) {
		return PartialApplication{}, fmt.Errorf("%w: nil argument applied to %s", ErrUnexpectedShape, fn.Name())
	}
	ptr, err := Alloc[PartialApplicationData](gc, PartialApplicationDataDef{fn, args})
	if err != nil {
		return PartialApplication{}, err
	}
	return PartialApplication{ptr}, nil
}
