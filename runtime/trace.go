package runtime

// Every type that can be reached from a Value reports the heap references it
// directly holds. It must not follow them: the Tracer performs the transitive
// walk by calling Traverse again on each referent it has not seen yet.
//
// Leaving a reference out of Traverse is never detected at runtime, the
// collector would simply consider the referent dead.
type Traverseable interface {
	Traverse(t *Tracer)
}

type object interface {
	id() Identity
	traverseContents(t *Tracer)
}

// The collector handle passed to Traverse.
type Tracer struct {
	shallow bool
	seen    map[Identity]struct{}
	pending []object
	found   []Identity
}

func (t *Tracer) visit(o object) {
	id := o.id()
	if t.shallow {
		t.found = append(t.found, id)
		return
	}
	if _, ok := t.seen[id]; ok {
		return
	}
	t.seen[id] = struct{}{}
	t.found = append(t.found, id)
	t.pending = append(t.pending, o)
}

func (t *Tracer) drain() {
	for len(t.pending) > 0 {
		last := len(t.pending) - 1
		o := t.pending[last]
		t.pending = t.pending[:last]
		o.traverseContents(t)
	}
}

// DirectReferences lists, in traversal order and with repetitions, the heap
// references x reports without following any of them.
func DirectReferences(x Traverseable) []Identity {
	t := &Tracer{shallow: true}
	x.Traverse(t)
	return t.found
}

// Reachable returns every heap object transitively reachable from roots, each
// exactly once, in discovery order.
func Reachable(roots ...Traverseable) []Identity {
	t := &Tracer{seen: make(map[Identity]struct{})}
	for _, root := range roots {
		root.Traverse(t)
		t.drain()
	}
	return t.found
}
