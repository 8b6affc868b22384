package runtime

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRegisterNative(t *testing.T) {
	m := NewReleaseMachine()
	for _, name := range []string{"print", "read", "print"} {
		if _, err := m.RegisterNative(name, 1, func(*VMThread) Status { return StatusOk }); err != nil {
			t.Fatal(err)
		}
	}

	if diff := cmp.Diff([]string{"print", "read"}, m.NativeNames()); diff != "" {
		t.Errorf("Native names mismatch (-want +got):\n%s", diff)
	}
	f, ok := m.Native("read")
	if !ok || f.Generation() != 0 {
		t.Errorf("Expected read in the root generation")
	}
	if g, ok := m.Global("read"); !ok || g != Value(f) {
		t.Errorf("Expected read to be available as a global")
	}
	if _, ok := m.Native("write"); ok {
		t.Errorf("Unexpected native write")
	}
}

func TestSetGlobal(t *testing.T) {
	m := NewReleaseMachine()
	child, err := m.Spawn()
	if err != nil {
		t.Fatal(err)
	}
	gc := child.Get().Gc()
	s, _ := NewString(gc, "config")
	d, _ := NewData(gc, 1, s)

	if err := m.SetGlobal("cfg", d); err != nil {
		t.Fatal(err)
	}
	g, _ := m.Global("cfg")
	if g.Generation() != 0 || !Equal(g, d) {
		t.Errorf("Expected %v in generation 0, got %v in %d", d, g, g.Generation())
	}

	u, _ := NewUserdata(gc, &handle{1})
	err = m.SetGlobal("file", u)
	if !errors.Is(err, ErrNotCloneable) {
		t.Errorf("Expected ErrNotCloneable, got %v instead", err)
	}
	if _, ok := m.Global("file"); ok {
		t.Errorf("Failed global was stored")
	}
}

func TestLookupField(t *testing.T) {
	m := NewReleaseMachine()
	if err := m.RegisterLayout(1, "count", "name"); err != nil {
		t.Fatal(err)
	}
	name, _ := NewString(m.Gc(), "x")
	rec, _ := NewData(m.Gc(), 1, Int(5), name)
	short, _ := NewData(m.Gc(), 1, Int(5))
	other, _ := NewData(m.Gc(), 2)

	testCases := []struct {
		name  string
		v     Value
		field string
		exp   Value
		err   error
	}{
		{"First", rec, "count", Int(5), nil},
		{"Second", rec, "name", name, nil},
		{"MissingField", rec, "size", nil, ErrLayoutMismatch},
		{"ShortRecord", short, "name", nil, ErrLayoutMismatch},
		{"NoLayout", other, "count", nil, ErrLayoutMismatch},
		{"NotData", Int(1), "count", nil, ErrUnexpectedShape},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := m.LookupField(tc.v, tc.field)
			if tc.err != nil {
				if !errors.Is(err, tc.err) {
					t.Errorf("Expected %v, got %v instead", tc.err, err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if res != tc.exp {
				t.Errorf("Expected %v, got %v instead", tc.exp, res)
			}
		})
	}
}

func TestRegisterLayoutDuplicates(t *testing.T) {
	m := NewReleaseMachine()
	if err := m.RegisterLayout(3, "a", "b", "a"); err == nil {
		t.Errorf("Expected duplicate field names to be rejected")
	}
	if _, ok := m.Layout(3); ok {
		t.Errorf("Rejected layout was stored")
	}
}

func TestMachineStats(t *testing.T) {
	m := NewReleaseMachine()
	for i := 0; i < 2; i++ {
		child, err := m.Spawn()
		if err != nil {
			t.Fatal(err)
		}
		th := child.Get()
		s, _ := NewString(th.Gc(), "v")
		th.PushValue(s)
		if err := th.Return(); err != nil {
			t.Fatal(err)
		}
	}

	stats := m.Stats()
	gens := make([]Generation, 0, len(stats))
	for _, s := range stats {
		gens = append(gens, s.Generation)
	}
	if diff := cmp.Diff([]Generation{0, 1, 1}, gens); diff != "" {
		t.Errorf("Generations mismatch (-want +got):\n%s", diff)
	}
	// two thread objects and two returned strings
	if stats[0].Allocations != 4 {
		t.Errorf("Expected 4 allocations in the root, got %d instead", stats[0].Allocations)
	}
	if n := len(Reachable(m.Roots()...)); n != 2 {
		t.Errorf("Expected the two returned strings to be reachable, got %d", n)
	}
}
