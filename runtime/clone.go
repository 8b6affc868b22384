package runtime

import "fmt"

// Clones already produced during one deep clone, keyed by the identity of the
// source object. A Visited must not outlive the top level call it was made
// for.
type Visited map[Identity]Value

// Clone deep clones value into gc using a fresh Visited.
func (gc *Gc) Clone(value Value) (Value, error) {
	return DeepClone(value, make(Visited), gc)
}

// DeepClone rebuilds value, and everything it reaches, inside gc. Values owned
// by gc or by a heap gc was spawned from are already safe for gc to hold and
// are returned as is; everything else, younger generations and sibling heaps,
// is copied. Objects reached more than once, including through cycles, are
// cloned once and shared in the result.
//
// Native functions, userdata and threads cannot be cloned. Reaching one fails
// the whole clone with ErrNotCloneable. Shells allocated before the failure are
// left for the collector since nothing outside the clone can see them.
func DeepClone(value Value, visited Visited, gc *Gc) (Value, error) {
	if value == nil {
		return nil, fmt.Errorf("%w: cannot deep clone a nil value", ErrUnexpectedShape)
	}
	ref, isRef := value.(interface{ ID() Identity })
	if isRef && ref.ID().IsNil() {
		return nil, fmt.Errorf("%w: cannot deep clone an empty %s reference", ErrUnexpectedShape, value.Kind())
	}
	// Only need to clone values which belong to a younger generation than the
	// gc that the new value will live in, or to a heap gc cannot see.
	if !isRef || visibleFrom(ref.ID(), gc) {
		return value, nil
	}
	switch v := value.(type) {
	case Int, Float:
		return v, nil
	case String:
		return deepCloneStr(v, visited, gc)
	case Data:
		return deepCloneData(v, visited, gc)
	case Closure:
		return deepCloneClosure(v, visited, gc)
	case PartialApplication:
		return deepCloneApp(v, visited, gc)
	case Function, Userdata, Thread:
		return nil, fmt.Errorf("%w: %s values cannot be moved from generation %d to generation %d",
			ErrNotCloneable, v.Kind(), v.Generation(), gc.Generation())
	default:
		panic(fmt.Sprintf("DeepClone: unknown value variant %T", value))
	}
}

func visibleFrom(id Identity, gc *Gc) bool {
	return id.h.generation <= gc.generation && gc.Sees(id.h.heap)
}

// Looks up the clone of src, allocating its shell with alloc if this is the
// first time src is reached. The shell is registered before any field is
// cloned so that cycles back to src resolve to the shell. fresh reports
// whether the caller still has to fill in the shell.
func deepClonePtr[T any](src GcPtr[T], visited Visited, alloc func(*T) (Value, error)) (clone Value, fresh bool, err error) {
	key := src.ID()
	if existing, ok := visited[key]; ok {
		return existing, false, nil
	}
	clone, err = alloc(src.Get())
	if err != nil {
		return nil, false, err
	}
	visited[key] = clone
	return clone, true, nil
}

func deepCloneStr(src String, visited Visited, gc *Gc) (Value, error) {
	clone, _, err := deepClonePtr(src.GcPtr, visited, func(s *Str) (Value, error) {
		ptr, err := Alloc[Str](gc, StrDef(s.bytes.elements))
		return String{ptr}, err
	})
	return clone, err
}

// Patches every slot of a freshly allocated shell with the clone of the source
// value in the same position, in order.
func deepCloneSlots(dst *Array[Value], src *Array[Value], visited Visited, gc *Gc) error {
	for i, old := range src.elements {
		v, err := DeepClone(old, visited, gc)
		if err != nil {
			return err
		}
		dst.set(i, v)
	}
	return nil
}

func deepCloneData(src Data, visited Visited, gc *Gc) (Value, error) {
	clone, fresh, err := deepClonePtr(src.GcPtr, visited, func(d *DataStruct) (Value, error) {
		ptr, err := Alloc[DataStruct](gc, Def{d.tag, d.fields.elements})
		return Data{ptr}, err
	})
	if err != nil || !fresh {
		return clone, err
	}
	shell := clone.(Data).asMut()
	if err := deepCloneSlots(&shell.fields, &src.Get().fields, visited, gc); err != nil {
		return nil, err
	}
	return clone, nil
}

// The compiled function is shared with the source closure.
func deepCloneClosure(src Closure, visited Visited, gc *Gc) (Value, error) {
	clone, fresh, err := deepClonePtr(src.GcPtr, visited, func(c *ClosureData) (Value, error) {
		ptr, err := Alloc[ClosureData](gc, ClosureDataDef{c.function, c.upvars.elements})
		return Closure{ptr}, err
	})
	if err != nil || !fresh {
		return clone, err
	}
	shell := clone.(Closure).asMut()
	if err := deepCloneSlots(&shell.upvars, &src.Get().upvars, visited, gc); err != nil {
		return nil, err
	}
	return clone, nil
}

func deepCloneApp(src PartialApplication, visited Visited, gc *Gc) (Value, error) {
	clone, fresh, err := deepClonePtr(src.GcPtr, visited, func(p *PartialApplicationData) (Value, error) {
		ptr, err := Alloc[PartialApplicationData](gc, PartialApplicationDataDef{p.function, p.arguments.elements})
		return PartialApplication{ptr}, err
	})
	if err != nil || !fresh {
		return clone, err
	}
	shell := clone.(PartialApplication).asMut()
	// An extern callable the target can see comes back as is, one in a heap
	// it cannot see fails like any other native.
	fn, err := DeepClone(shell.function, visited, gc)
	if err != nil {
		return nil, err
	}
	shell.function = fn.(Callable)
	if err := deepCloneSlots(&shell.arguments, &src.Get().arguments, visited, gc); err != nil {
		return nil, err
	}
	return clone, nil
}
