package runtime

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/glossopoeia/vmheap/util"
)

type Config struct {
	// Bytes each generation may allocate, 0 for no limit.
	MemoryLimit uintptr
	// Log every allocation at debug level.
	Trace  bool
	Logger *slog.Logger
}

// The host side of a VM: owns the root heap (generation 0), the main thread,
// the registered natives, the globals and the field layouts of records.
type Machine struct {
	gc   *Gc
	main *VMThread

	mu            sync.RWMutex
	nativeFns     map[string]Function
	nativeFnNames []string
	globals       map[string]Value
	layouts       map[VMTag][]string
}

func NewMachine(cfg Config) *Machine {
	m := new(Machine)
	m.gc = NewGc(cfg.MemoryLimit, cfg.Logger)
	m.gc.SetTrace(cfg.Trace)
	main := newVMThread(m.gc, nil)
	m.main = &main

	m.nativeFns = make(map[string]Function)
	m.nativeFnNames = make([]string, 0)
	m.globals = make(map[string]Value)
	m.layouts = make(map[VMTag][]string)
	return m
}

func NewDebugMachine() *Machine {
	return NewMachine(Config{
		Trace:  true,
		Logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})),
	})
}

func NewReleaseMachine() *Machine {
	return NewMachine(Config{})
}

func (m *Machine) Gc() *Gc {
	return m.gc
}

func (m *Machine) MainThread() *VMThread {
	return m.main
}

// Spawn creates a thread running in a heap one generation younger than the
// root heap.
func (m *Machine) Spawn() (Thread, error) {
	return m.main.NewThread()
}

// RegisterNative allocates an extern function in the root heap and makes it
// available as a global under name.
func (m *Machine) RegisterNative(name string, args VMIndex, fn NativeFn) (Function, error) {
	f, err := NewExtern(m.gc, name, args, fn)
	if err != nil {
		return Function{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.nativeFns[name]; !exists {
		m.nativeFnNames = append(m.nativeFnNames, name)
	}
	m.nativeFns[name] = f
	m.globals[name] = f
	return f, nil
}

func (m *Machine) Native(name string) (Function, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.nativeFns[name]
	return f, ok
}

// Names of the natives in registration order.
func (m *Machine) NativeNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.nativeFnNames...)
}

// SetGlobal stores v under name. Globals outlive every thread, so v is deep
// cloned into the root heap first.
func (m *Machine) SetGlobal(name string, v Value) error {
	clone, err := m.gc.Clone(v)
	if err != nil {
		return fmt.Errorf("global %s: %w", name, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.globals[name] = clone
	return nil
}

func (m *Machine) Global(name string) (Value, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.globals[name]
	return v, ok
}

// RegisterLayout records the field names of the record shape selected by tag,
// in declaration order.
func (m *Machine) RegisterLayout(tag VMTag, fields ...string) error {
	if len(util.UniqueBy(fields, func(f string) string { return f })) != len(fields) {
		return fmt.Errorf("layout for tag %d has duplicate field names: %v", tag, fields)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.layouts[tag] = append([]string(nil), fields...)
	return nil
}

func (m *Machine) Layout(tag VMTag) ([]string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	fields, ok := m.layouts[tag]
	return fields, ok
}

// LookupField finds the field called name in the aggregate v using the layout
// registered for its tag. A missing layout or field, or a layout that does not
// fit the aggregate, is a layout mismatch.
func (m *Machine) LookupField(v Value, name string) (Value, error) {
	data, err := AsData(v)
	if err != nil {
		return nil, err
	}
	d := data.Get()
	fields, ok := m.Layout(d.Tag())
	if !ok {
		return nil, fmt.Errorf("%w: no layout registered for tag %d", ErrLayoutMismatch, d.Tag())
	}
	for i, field := range fields {
		if field == name {
			return d.GetVariant(i)
		}
	}
	return nil, fmt.Errorf("%w: cannot find the field '%s' in tag %d", ErrLayoutMismatch, name, d.Tag())
}

// Roots returns the traversal roots of the machine: the main thread's stack
// and the globals.
func (m *Machine) Roots() []Traverseable {
	m.mu.RLock()
	defer m.mu.RUnlock()
	roots := []Traverseable{m.main}
	for _, name := range util.SortedKeys(m.globals) {
		roots = append(roots, m.globals[name])
	}
	return roots
}

// Stats of the root heap and every heap spawned from it.
func (m *Machine) Stats() []GcStats {
	stats := make([]GcStats, 0)
	m.gc.Walk(func(gc *Gc) {
		stats = append(stats, gc.Stats())
	})
	return stats
}
