package runtime

// A heap allocated byte buffer, normally holding UTF-8 text.
type Str struct {
	bytes Array[byte]
}

func (s *Str) Len() int {
	return s.bytes.Len()
}

func (s *Str) Bytes() []byte {
	return s.bytes.Elements()
}

func (s *Str) String() string {
	return string(s.bytes.elements)
}

// Str holds no references.
func (s *Str) Traverse(*Tracer) {}

// Definition of a string from its bytes.
type StrDef []byte

func (d StrDef) Size() uintptr {
	return ArraySizeOf[byte](len(d))
}

func (d StrDef) Initialize(result WriteOnly[Str]) *Str {
	s := result.AsMut()
	s.bytes.Initialize(d)
	return s
}

func (d StrDef) Traverse(*Tracer) {}

// NewString allocates a copy of text in gc.
func NewString(gc *Gc, text string) (String, error) {
	ptr, err := Alloc[Str](gc, StrDef(text))
	if err != nil {
		return String{}, err
	}
	return String{ptr}, nil
}

// Concat allocates a new string holding the bytes of both operands without
// building the joined buffer anywhere else first.
func Concat(gc *Gc, l, r String) (String, error) {
	ptr, err := Alloc[Str](gc, concatDef{l.Get(), r.Get()})
	if err != nil {
		return String{}, err
	}
	return String{ptr}, nil
}

type concatDef struct {
	l, r *Str
}

func (d concatDef) Size() uintptr {
	return ArraySizeOf[byte](d.l.Len() + d.r.Len())
}

func (d concatDef) Initialize(result WriteOnly[Str]) *Str {
	s := result.AsMut()
	s.bytes.elements = make([]byte, 0, d.l.Len()+d.r.Len())
	s.bytes.elements = append(s.bytes.elements, d.l.bytes.elements...)
	s.bytes.elements = append(s.bytes.elements, d.r.bytes.elements...)
	return s
}
