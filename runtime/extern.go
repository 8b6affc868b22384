package runtime

import "fmt"

type Status int

const (
	StatusOk Status = iota
	StatusYield
	StatusError
)

// A native function. It receives the calling thread, finds its arguments on
// the top of the thread's stack and leaves its result there. Native functions
// may be invoked from several threads at once.
type NativeFn = func(*VMThread) Status

type ExternFunction struct {
	ID       string
	Args     VMIndex
	Function NativeFn
}

// The callback is opaque to the collector, so an extern function reports no
// references. Natives must not hide heap references anywhere else.
func (f *ExternFunction) Traverse(*Tracer) {}

// Call runs the native function on thread, checking that enough arguments are
// on the stack.
func (f *ExternFunction) Call(thread *VMThread) (Status, error) {
	if thread.StackLen() < int(f.Args) {
		return StatusError, fmt.Errorf("%w: %s expects %d arguments, the stack holds %d",
			ErrUnexpectedShape, f.ID, f.Args, thread.StackLen())
	}
	return f.Function(thread), nil
}

func NewExtern(gc *Gc, id string, args VMIndex, fn NativeFn) (Function, error) {
	ptr, err := Alloc[ExternFunction](gc, Move[ExternFunction]{ExternFunction{id, args, fn}})
	if err != nil {
		return Function{}, err
	}
	return Function{ptr}, nil
}
