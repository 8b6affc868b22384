package runtime

import (
	"fmt"
	"unsafe"
)

// A tagged aggregate: the tag selects which record or enum variant shape the
// fields follow. The number of fields is fixed once the object is built.
type DataStruct struct {
	tag    VMTag
	fields Array[Value]
}

func (d *DataStruct) Tag() VMTag {
	return d.tag
}

func (d *DataStruct) Len() int {
	return d.fields.Len()
}

// GetVariant returns the field at index n, counting from 0 in declaration
// order.
func (d *DataStruct) GetVariant(n int) (Value, error) {
	if n < 0 || n >= d.fields.Len() {
		return nil, fmt.Errorf("%w: field index %d out of range for tag %d with %d fields",
			ErrLayoutMismatch, n, d.tag, d.fields.Len())
	}
	return d.fields.At(n), nil
}

func (d *DataStruct) Fields() []Value {
	return d.fields.Elements()
}

func (d *DataStruct) Traverse(t *Tracer) {
	d.fields.Traverse(t)
}

// Definition for data values in the VM.
type Def struct {
	Tag   VMTag
	Elems []Value
}

func (d Def) Size() uintptr {
	return unsafe.Sizeof(VMTag(0)) + ArraySizeOf[Value](len(d.Elems))
}

func (d Def) Initialize(result WriteOnly[DataStruct]) *DataStruct {
	data := result.AsMut()
	data.tag = d.Tag
	data.fields.Initialize(d.Elems)
	return data
}

func (d Def) Traverse(t *Tracer) {
	traverseValues(t, d.Elems)
}

// NewData allocates a tagged aggregate with fields copied from elems.
func NewData(gc *Gc, tag VMTag, elems ...Value) (Data, error) {
	ptr, err := Alloc[DataStruct](gc, Def{tag, elems})
	if err != nil {
		return Data{}, err
	}
	return Data{ptr}, nil
}

func traverseValues(t *Tracer, values []Value) {
	for _, v := range values {
		if v != nil {
			v.Traverse(t)
		}
	}
}
