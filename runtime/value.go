package runtime

type VMInt = int64

type VMIndex = uint32

type VMTag = uint32

type ValueKind int

const (
	IntKind ValueKind = iota
	FloatKind
	StringKind
	DataKind
	FunctionKind
	ClosureKind
	PartialApplicationKind
	UserdataKind
	ThreadKind
)

var valueKindNames = [...]string{
	IntKind:                "Int",
	FloatKind:              "Float",
	StringKind:             "String",
	DataKind:               "Data",
	FunctionKind:           "Function",
	ClosureKind:            "Closure",
	PartialApplicationKind: "PartialApplication",
	UserdataKind:           "Userdata",
	ThreadKind:             "Thread",
}

func (k ValueKind) String() string {
	if k < 0 || int(k) >= len(valueKindNames) {
		return "Unknown"
	}
	return valueKindNames[k]
}

// A runtime value. Primitives are stored inline, every other variant is a
// single GcPtr, so copying a Value never copies the object it refers to.
type Value interface {
	Traverseable
	Kind() ValueKind
	// 0 for primitives, otherwise the generation of the heap that owns the
	// referent.
	Generation() Generation
	String() string

	isValue()
}

type Int VMInt

type Float float64

type String struct{ GcPtr[Str] }

type Data struct{ GcPtr[DataStruct] }

type Function struct{ GcPtr[ExternFunction] }

type Closure struct{ GcPtr[ClosureData] }

type PartialApplication struct{ GcPtr[PartialApplicationData] }

type Userdata struct{ GcPtr[UserdataBox] }

type Thread struct{ GcPtr[VMThread] }

func (Int) Kind() ValueKind                { return IntKind }
func (Float) Kind() ValueKind              { return FloatKind }
func (String) Kind() ValueKind             { return StringKind }
func (Data) Kind() ValueKind               { return DataKind }
func (Function) Kind() ValueKind           { return FunctionKind }
func (Closure) Kind() ValueKind            { return ClosureKind }
func (PartialApplication) Kind() ValueKind { return PartialApplicationKind }
func (Userdata) Kind() ValueKind           { return UserdataKind }
func (Thread) Kind() ValueKind             { return ThreadKind }

func (Int) Generation() Generation   { return 0 }
func (Float) Generation() Generation { return 0 }

func (Int) Traverse(*Tracer)   {}
func (Float) Traverse(*Tracer) {}

func (Int) isValue()                {}
func (Float) isValue()              {}
func (String) isValue()             {}
func (Data) isValue()               {}
func (Function) isValue()           {}
func (Closure) isValue()            {}
func (PartialApplication) isValue() {}
func (Userdata) isValue()           {}
func (Thread) isValue()             {}

// Something that can be the target of a call: a closure or an extern function.
type Callable interface {
	Value
	Name() string
	Args() VMIndex
}

func (c Closure) Name() string {
	return c.Get().Function().Name
}

func (c Closure) Args() VMIndex {
	return c.Get().Function().Args
}

func (f Function) Name() string {
	return f.Get().ID
}

func (f Function) Args() VMIndex {
	return f.Get().Args
}

func AsData(v Value) (Data, error) {
	if d, ok := v.(Data); ok {
		return d, nil
	}
	return Data{}, unexpectedShape(DataKind, v)
}

func AsString(v Value) (String, error) {
	if s, ok := v.(String); ok {
		return s, nil
	}
	return String{}, unexpectedShape(StringKind, v)
}

func AsClosure(v Value) (Closure, error) {
	if c, ok := v.(Closure); ok {
		return c, nil
	}
	return Closure{}, unexpectedShape(ClosureKind, v)
}

func AsPartialApplication(v Value) (PartialApplication, error) {
	if p, ok := v.(PartialApplication); ok {
		return p, nil
	}
	return PartialApplication{}, unexpectedShape(PartialApplicationKind, v)
}

func AsCallable(v Value) (Callable, error) {
	if c, ok := v.(Callable); ok {
		return c, nil
	}
	return nil, unexpectedShape(FunctionKind, v)
}

func AsInt(v Value) (VMInt, error) {
	if i, ok := v.(Int); ok {
		return VMInt(i), nil
	}
	return 0, unexpectedShape(IntKind, v)
}

func AsFloat(v Value) (float64, error) {
	if f, ok := v.(Float); ok {
		return float64(f), nil
	}
	return 0, unexpectedShape(FloatKind, v)
}
