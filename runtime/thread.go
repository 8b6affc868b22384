package runtime

import "fmt"

// A VM thread: a value stack whose values live in the thread's own heap. A
// thread spawned from another one gets a heap of the next younger generation,
// so anything it hands back to its parent has to be deep cloned first.
type VMThread struct {
	gc     *Gc
	parent *VMThread
	values []Value
}

func newVMThread(gc *Gc, parent *VMThread) VMThread {
	return VMThread{gc: gc, parent: parent, values: make([]Value, 0)}
}

func (t *VMThread) Gc() *Gc {
	return t.gc
}

func (t *VMThread) Parent() *VMThread {
	return t.parent
}

// The stack is the root set of the thread.
func (t *VMThread) Traverse(tr *Tracer) {
	traverseValues(tr, t.values)
}

func (t *VMThread) StackLen() int {
	return len(t.values)
}

func (t *VMThread) PushValue(v Value) {
	t.values = append(t.values, v)
}

func (t *VMThread) PopOneValue() Value {
	stackLen := len(t.values)
	if stackLen <= 0 {
		panic("Stack underflow detected.")
	}

	result := t.values[stackLen-1]
	t.values = t.values[:stackLen-1]
	return result
}

func (t *VMThread) PopTwoValues() (fst Value, snd Value) {
	stackLen := len(t.values)
	if stackLen <= 1 {
		panic("Stack underflow detected.")
	}

	r1 := t.values[stackLen-1]
	r2 := t.values[stackLen-2]
	t.values = t.values[:stackLen-2]
	return r1, r2
}

func (t *VMThread) PeekOneValue() Value {
	stackLen := len(t.values)
	if stackLen <= 0 {
		panic("Stack underflow detected.")
	}
	return t.values[stackLen-1]
}

// Args returns the top n values of the stack, the deepest first, which is the
// order the arguments of a call were pushed in.
func (t *VMThread) Args(n int) []Value {
	if len(t.values) < n {
		panic("Stack underflow detected.")
	}
	args := make([]Value, n)
	copy(args, t.values[len(t.values)-n:])
	return args
}

func (t *VMThread) Drop(n int) {
	if len(t.values) < n {
		panic("Stack underflow detected.")
	}
	t.values = t.values[:len(t.values)-n]
}

func (t *VMThread) Clear() {
	t.values = make([]Value, 0)
}

// Construct pops count values and pushes a tagged aggregate holding them. The
// value pushed first becomes field 0.
func (t *VMThread) Construct(tag VMTag, count int) error {
	fields := t.Args(count)
	data, err := NewData(t.gc, tag, fields...)
	if err != nil {
		return err
	}
	t.Drop(count)
	t.PushValue(data)
	return nil
}

// Destruct pops an aggregate and pushes its fields, field 0 first.
func (t *VMThread) Destruct() error {
	data, err := AsData(t.PeekOneValue())
	if err != nil {
		return err
	}
	t.PopOneValue()
	t.values = append(t.values, data.Get().fields.elements...)
	return nil
}

// Concat pops two strings and pushes their concatenation, the deeper one
// first.
func (t *VMThread) Concat() error {
	r, l := t.PopTwoValues()
	ls, err := AsString(l)
	if err != nil {
		return err
	}
	rs, err := AsString(r)
	if err != nil {
		return err
	}
	joined, err := Concat(t.gc, ls, rs)
	if err != nil {
		return err
	}
	t.PushValue(joined)
	return nil
}

// Apply pops a callable and the argCount arguments beneath it. Extern functions
// with all their arguments run immediately, under-saturated calls push a
// partial application. Applying a partial application prepends its bound
// arguments.
func (t *VMThread) Apply(argCount int) (Status, error) {
	callee := t.PopOneValue()
	args := t.Args(argCount)

	var fn Callable
	switch c := callee.(type) {
	case PartialApplication:
		fn = c.Get().function
		args = append(c.Get().Arguments(), args...)
	case Closure:
		fn = c
	case Function:
		fn = c
	default:
		t.PushValue(callee)
		return StatusError, unexpectedShape(FunctionKind, callee)
	}

	if len(args) < int(fn.Args()) {
		partial, err := NewPartialApplication(t.gc, fn, args...)
		if err != nil {
			return StatusError, err
		}
		t.Drop(argCount)
		t.PushValue(partial)
		return StatusOk, nil
	}

	if len(args) > int(fn.Args()) {
		t.PushValue(callee)
		return StatusError, fmt.Errorf("%w: %s takes %d arguments, applied to %d",
			ErrUnexpectedShape, fn.Name(), fn.Args(), len(args))
	}

	switch fn := fn.(type) {
	case Function:
		t.Drop(argCount)
		t.values = append(t.values, args...)
		return fn.Get().Call(t)
	default:
		t.PushValue(callee)
		return StatusError, fmt.Errorf("%w: %s is a bytecode closure and must be run by the interpreter",
			ErrUnexpectedShape, fn.Name())
	}
}

// NewThread spawns a child thread whose heap is one generation younger. The
// thread object itself lives in this thread's heap.
func (t *VMThread) NewThread() (Thread, error) {
	ptr, err := Alloc[VMThread](t.gc, Move[VMThread]{newVMThread(t.gc.NewChildGc(), t)})
	if err != nil {
		return Thread{}, err
	}
	return Thread{ptr}, nil
}

// Send deep clones v into the heap of to and pushes the clone on its stack.
func (t *VMThread) Send(v Value, to *VMThread) error {
	clone, err := to.gc.Clone(v)
	if err != nil {
		return err
	}
	to.PushValue(clone)
	return nil
}

// Return pops the result of a child thread and pushes it on the parent's
// stack, moving it into the parent's generation on the way.
func (t *VMThread) Return() error {
	if t.parent == nil {
		return fmt.Errorf("%w: the main thread has no parent to return to", ErrUnexpectedShape)
	}
	v := t.PeekOneValue()
	if err := t.Send(v, t.parent); err != nil {
		return err
	}
	t.PopOneValue()
	return nil
}
