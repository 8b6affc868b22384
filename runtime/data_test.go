package runtime

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestArray(t *testing.T) {
	var a Array[int]
	a.Initialize(nil)
	if a.Len() != 0 || a.Elements() == nil {
		t.Errorf("Expected an empty, non-nil array, got %v", a.Elements())
	}

	src := []int{3, 1, 2}
	a.Initialize(src)
	src[0] = 9
	if !cmp.Equal(a.Elements(), []int{3, 1, 2}) {
		t.Errorf("Array shares storage with its source: %v", a.Elements())
	}

	a.SetLen(2, 7)
	if !cmp.Equal(a.Elements(), []int{7, 7}) {
		t.Errorf("Expected %v, got %v instead", []int{7, 7}, a.Elements())
	}
}

func TestDataFieldOrder(t *testing.T) {
	gc := NewGc(0, nil)
	s, _ := NewString(gc, "x")
	d, err := NewData(gc, 4, Int(5), s, Float(1.5))
	if err != nil {
		t.Fatal(err)
	}

	testCases := []struct {
		name  string
		index int
		exp   Value
	}{
		{"First", 0, Int(5)},
		{"Second", 1, s},
		{"Third", 2, Float(1.5)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := d.Get().GetVariant(tc.index)
			if err != nil {
				t.Fatal(err)
			}
			if res != tc.exp {
				t.Errorf("Expected %v, got %v instead", tc.exp, res)
			}
		})
	}

	if d.Get().Tag() != 4 || d.Get().Len() != 3 {
		t.Errorf("Expected tag 4 with 3 fields, got %v", d)
	}
}

func TestDataOutOfRange(t *testing.T) {
	gc := NewGc(0, nil)
	d, _ := NewData(gc, 1, Int(1))
	for _, n := range []int{-1, 1, 100} {
		if _, err := d.Get().GetVariant(n); !errors.Is(err, ErrLayoutMismatch) {
			t.Errorf("Index %d: expected ErrLayoutMismatch, got %v instead", n, err)
		}
	}
}

func TestStringConcat(t *testing.T) {
	gc := NewGc(0, nil)
	l, _ := NewString(gc, "foo")
	r, _ := NewString(gc, "bar")
	empty, _ := NewString(gc, "")

	testCases := []struct {
		name string
		l, r String
		exp  string
	}{
		{"Both", l, r, "foobar"},
		{"EmptyLeft", empty, r, "bar"},
		{"EmptyRight", l, empty, "foo"},
		{"Self", l, l, "foofoo"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := Concat(gc, tc.l, tc.r)
			if err != nil {
				t.Fatal(err)
			}
			if res.Get().String() != tc.exp {
				t.Errorf("Expected %q, got %q instead", tc.exp, res.Get().String())
			}
			if res.Size() != ArraySizeOf[byte](len(tc.exp)) {
				t.Errorf("Expected size %d, got %d instead", ArraySizeOf[byte](len(tc.exp)), res.Size())
			}
		})
	}
}

func TestAsHelpers(t *testing.T) {
	gc := NewGc(0, nil)
	s, _ := NewString(gc, "s")

	if _, err := AsData(s); !errors.Is(err, ErrUnexpectedShape) {
		t.Errorf("Expected ErrUnexpectedShape, got %v instead", err)
	}
	if _, err := AsInt(nil); !errors.Is(err, ErrUnexpectedShape) {
		t.Errorf("Expected ErrUnexpectedShape, got %v instead", err)
	}
	if res, err := AsString(s); err != nil || res != s {
		t.Errorf("Expected %v, got %v (%v) instead", s, res, err)
	}
	if res, err := AsFloat(Float(2.5)); err != nil || res != 2.5 {
		t.Errorf("Expected 2.5, got %v (%v) instead", res, err)
	}
}
