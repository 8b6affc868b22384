package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"unsafe"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Index of a heap arena. The root heap of a machine is generation 0 and every
// child heap is one greater than its parent, so a younger heap always has a
// larger generation than any heap it was spawned from.
type Generation = uint32

// Every heap object is stored behind this header. The address of the header
// is the identity of the object for as long as its generation lives.
type header struct {
	generation  Generation
	heap        *Gc
	size        uintptr
	kind        string
	initialized bool
}

type box[T any] struct {
	header
	value T
}

// Identity-only key for a heap object. Two identities are equal only when they
// name the same allocation, whatever the contents.
type Identity struct {
	h *header
}

func (id Identity) IsNil() bool {
	return id.h == nil
}

func (id Identity) Generation() Generation {
	return id.h.generation
}

func (id Identity) String() string {
	return fmt.Sprintf("%p", id.h)
}

// A shared reference to an object of type T living in the heap of some
// generation. GcPtr never exposes equality of the pointee; comparing two
// GcPtr values with == compares identity.
type GcPtr[T any] struct {
	b *box[T]
}

func (p GcPtr[T]) IsNil() bool {
	return p.b == nil
}

// Get returns the referent. Heap objects are read-mostly: callers outside
// this package only have access to read accessors of the object kinds.
func (p GcPtr[T]) Get() *T {
	return &p.b.value
}

func (p GcPtr[T]) Generation() Generation {
	return p.b.generation
}

func (p GcPtr[T]) ID() Identity {
	if p.b == nil {
		return Identity{}
	}
	return Identity{&p.b.header}
}

// Size reports the byte count the definition requested when the object was
// allocated.
func (p GcPtr[T]) Size() uintptr {
	return p.b.size
}

func (p GcPtr[T]) Traverse(t *Tracer) {
	if p.b != nil {
		t.visit(p.b)
	}
}

// Mutable access is only handed out while an object is being built and has not
// been published yet: the two-pass closure construction and the deep clone
// shells.
func (p GcPtr[T]) asMut() *T {
	return &p.b.value
}

func (b *box[T]) id() Identity {
	return Identity{&b.header}
}

func (b *box[T]) traverseContents(t *Tracer) {
	if tr, ok := any(&b.value).(Traverseable); ok {
		tr.Traverse(t)
	}
}

// Exclusive write access to freshly reserved storage for a T. A definition
// gets exactly one WriteOnly and must initialize the target through it exactly
// once, either field by field through AsMut or all at once through Write.
type WriteOnly[T any] struct {
	b *box[T]
}

func (w WriteOnly[T]) AsMut() *T {
	if w.b.initialized {
		panic(fmt.Sprintf("Storage for %s was already initialized.", w.b.kind))
	}
	w.b.initialized = true
	return &w.b.value
}

func (w WriteOnly[T]) Write(value T) *T {
	target := w.AsMut()
	*target = value
	return target
}

// A definition of a heap object. The allocator first asks for the exact number
// of bytes one instance needs, including any trailing inline sequence, and then
// lets the definition initialize the reserved storage. This avoids building the
// whole object somewhere else only to copy it onto the heap.
type DataDef[T any] interface {
	Size() uintptr
	Initialize(WriteOnly[T]) *T
}

// Definition for fixed size objects that are simply moved onto the heap.
type Move[T any] struct {
	Value T
}

func (m Move[T]) Size() uintptr {
	var zero T
	return unsafe.Sizeof(zero)
}

func (m Move[T]) Initialize(result WriteOnly[T]) *T {
	return result.Write(m.Value)
}

func (m Move[T]) Traverse(t *Tracer) {
	if tr, ok := any(&m.Value).(Traverseable); ok {
		tr.Traverse(t)
	}
}

// Allocation statistics of one heap.
type GcStats struct {
	Generation  Generation
	Allocations int
	Bytes       uintptr
	ByKind      map[string]int
}

// The heap of one generation. Allocation goes through Alloc; the sweep itself
// is left to the embedding collector, which discovers live objects through the
// Traverseable contract.
type Gc struct {
	generation  Generation
	parent      *Gc
	memoryLimit uintptr
	logger      *slog.Logger

	mu          sync.Mutex
	trace       bool
	children    []*Gc
	allocations int
	allocated   uintptr
	byKind      map[string]int
}

// Create a root heap (generation 0). A memory limit of 0 means unlimited.
func NewGc(memoryLimit uintptr, logger *slog.Logger) *Gc {
	return &Gc{
		generation:  0,
		memoryLimit: memoryLimit,
		logger:      orDiscard(logger),
		byKind:      make(map[string]int),
	}
}

// Create the heap of the next younger generation. The child inherits the
// parent's limit and tracing settings.
func (gc *Gc) NewChildGc() *Gc {
	gc.mu.Lock()
	child := &Gc{
		generation:  gc.generation + 1,
		parent:      gc,
		memoryLimit: gc.memoryLimit,
		trace:       gc.trace,
		logger:      gc.logger,
		byKind:      make(map[string]int),
	}
	gc.children = append(gc.children, child)
	gc.mu.Unlock()
	return child
}

// Walk calls fn on gc and every heap spawned from it, parents before children.
func (gc *Gc) Walk(fn func(*Gc)) {
	fn(gc)
	gc.mu.Lock()
	children := slices.Clone(gc.children)
	gc.mu.Unlock()
	for _, child := range children {
		child.Walk(fn)
	}
}

func (gc *Gc) Generation() Generation {
	return gc.generation
}

func (gc *Gc) Parent() *Gc {
	return gc.parent
}

// Sees reports whether gc may hold a reference to an object owned by other
// without copying it: other is gc itself or one of the heaps gc was spawned
// from. Sibling heaps share a generation number but never see each other.
func (gc *Gc) Sees(other *Gc) bool {
	for g := gc; g != nil; g = g.parent {
		if g == other {
			return true
		}
	}
	return false
}

// SetTrace switches allocation logging on or off. Heaps spawned afterwards
// start with the same setting.
func (gc *Gc) SetTrace(trace bool) {
	gc.mu.Lock()
	gc.trace = trace
	gc.mu.Unlock()
}

func (gc *Gc) Stats() GcStats {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return GcStats{gc.generation, gc.allocations, gc.allocated, maps.Clone(gc.byKind)}
}

// reserve accounts for a new object and reports whether it should be traced.
func (gc *Gc) reserve(kind string, size uintptr) (bool, error) {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	if gc.memoryLimit != 0 && gc.allocated+size > gc.memoryLimit {
		return false, fmt.Errorf("%w: %s of %d bytes exceeds the limit of %d bytes in generation %d",
			ErrOutOfMemory, kind, size, gc.memoryLimit, gc.generation)
	}
	gc.allocations++
	gc.allocated += size
	gc.byKind[kind]++
	return gc.trace, nil
}

// Alloc reserves exactly def.Size() bytes in the heap and lets def initialize
// the new object. The returned reference belongs to gc's generation.
func Alloc[T any](gc *Gc, def DataDef[T]) (GcPtr[T], error) {
	kind := kindName[T]()
	size := def.Size()
	trace, err := gc.reserve(kind, size)
	if err != nil {
		return GcPtr[T]{}, err
	}

	b := &box[T]{header: header{generation: gc.generation, heap: gc, size: size, kind: kind}}
	if result := def.Initialize(WriteOnly[T]{b}); result != &b.value {
		panic(fmt.Sprintf("Definition for %s did not initialize the reserved storage.", kind))
	}
	if !b.initialized {
		panic(fmt.Sprintf("Definition for %s returned without initializing its target.", kind))
	}

	if trace {
		gc.logger.LogAttrs(context.Background(), slog.LevelDebug, "alloc",
			slog.Any("generation", gc.generation),
			slog.String("kind", kind),
			slog.Any("size", size))
	}
	return GcPtr[T]{b}, nil
}

func kindName[T any]() string {
	var zero T
	return fmt.Sprintf("%T", zero)
}

func orDiscard(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.New(discardHandler{})
}

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }
