package runtime

import "bytes"

// Equal compares two values the way the language does. Numbers compare by
// value, strings by content and data structurally. Functions, closures,
// partial applications, userdata and threads are only equal to themselves.
func Equal(l, r Value) bool {
	return valueEqual(l, r, make(map[[2]Identity]struct{}))
}

func valueEqual(l, r Value, assumed map[[2]Identity]struct{}) bool {
	switch l := l.(type) {
	case Int:
		r, ok := r.(Int)
		return ok && l == r
	case Float:
		r, ok := r.(Float)
		return ok && l == r
	case String:
		r, ok := r.(String)
		return ok && (l == r || bytes.Equal(l.Get().bytes.elements, r.Get().bytes.elements))
	case Data:
		r, ok := r.(Data)
		if !ok {
			return false
		}
		if l == r {
			return true
		}
		// Two cyclic structures are equal if no difference is found while
		// assuming the pair currently being compared is equal.
		pair := [2]Identity{l.ID(), r.ID()}
		if _, ok := assumed[pair]; ok {
			return true
		}
		assumed[pair] = struct{}{}
		ld, rd := l.Get(), r.Get()
		if ld.tag != rd.tag || ld.fields.Len() != rd.fields.Len() {
			return false
		}
		for i := range ld.fields.elements {
			if !valueEqual(ld.fields.elements[i], rd.fields.elements[i], assumed) {
				return false
			}
		}
		return true
	case nil:
		return r == nil
	default:
		return l == r
	}
}
