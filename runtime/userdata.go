package runtime

// An opaque host resource stored in the heap. Resources report the heap
// references they hold like any other heap object.
type Resource interface {
	Traverseable
}

type UserdataBox struct {
	resource Resource
}

func (u *UserdataBox) Resource() Resource {
	return u.resource
}

func (u *UserdataBox) Traverse(t *Tracer) {
	if u.resource != nil {
		u.resource.Traverse(t)
	}
}

func NewUserdata(gc *Gc, resource Resource) (Userdata, error) {
	ptr, err := Alloc[UserdataBox](gc, Move[UserdataBox]{UserdataBox{resource}})
	if err != nil {
		return Userdata{}, err
	}
	return Userdata{ptr}, nil
}
