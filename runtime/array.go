package runtime

import (
	"unsafe"

	"golang.org/x/exp/slices"
)

// An inline, fixed length sequence stored at the end of a heap object. Its
// length is set once while the owning object is initialized.
type Array[T any] struct {
	elements []T
}

// ArraySizeOf returns the number of bytes an Array of n elements occupies in
// its owning object: the length word followed by the elements.
func ArraySizeOf[T any](n int) uintptr {
	var elem T
	return unsafe.Sizeof(n) + uintptr(n)*unsafe.Sizeof(elem)
}

// Initialize copies src into the array, fixing its length to len(src).
func (a *Array[T]) Initialize(src []T) {
	a.elements = slices.Clone(src)
	if a.elements == nil {
		a.elements = []T{}
	}
}

// SetLen fixes the length of the array with every element set to fill.
func (a *Array[T]) SetLen(n int, fill T) {
	a.elements = make([]T, n)
	for i := range a.elements {
		a.elements[i] = fill
	}
}

func (a *Array[T]) Len() int {
	return len(a.elements)
}

func (a *Array[T]) At(i int) T {
	return a.elements[i]
}

// Elements returns a copy of the contents, in order.
func (a *Array[T]) Elements() []T {
	return slices.Clone(a.elements)
}

func (a *Array[T]) set(i int, value T) {
	a.elements[i] = value
}

func (a *Array[T]) Traverse(t *Tracer) {
	for i := range a.elements {
		if tr, ok := any(a.elements[i]).(Traverseable); ok {
			tr.Traverse(t)
		}
	}
}
