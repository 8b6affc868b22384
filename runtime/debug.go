package runtime

import (
	"fmt"
	"strconv"
	"strings"
)

// How deep String() descends into nested values. Cyclic values are cut off
// here as well.
const DefaultDebugDepth = 3

// Debug renders v for diagnostics, descending at most depth levels into
// aggregates and applications.
func Debug(v Value, depth int) string {
	var b strings.Builder
	writeValue(&b, v, depth)
	return b.String()
}

func writeValues(b *strings.Builder, values []Value, level int) {
	if level <= 0 {
		if len(values) > 0 {
			b.WriteString("...")
		}
		return
	}
	for i, v := range values {
		if i > 0 {
			b.WriteString(", ")
		}
		writeValue(b, v, level)
	}
}

func writeValue(b *strings.Builder, v Value, level int) {
	if level <= 0 {
		b.WriteString("...")
		return
	}
	switch v := v.(type) {
	case nil:
		b.WriteString("<nil>")
	case Int:
		b.WriteString(strconv.FormatInt(int64(v), 10))
	case Float:
		b.WriteString(strconv.FormatFloat(float64(v), 'g', -1, 64))
		b.WriteString("f")
	case String:
		b.WriteString(strconv.Quote(v.Get().String()))
	case Data:
		fmt.Fprintf(b, "{%d: ", v.Get().tag)
		writeValues(b, v.Get().fields.elements, level-1)
		b.WriteString("}")
	case Function:
		fmt.Fprintf(b, "<EXTERN %s>", v.Get().ID)
	case Closure:
		fmt.Fprintf(b, "<%s %p>", v.Get().function.Get().Name, v.Get().function.b)
	case PartialApplication:
		name := "<EXTERN>"
		if _, ok := v.Get().function.(Closure); ok {
			name = "<CLOSURE>"
		}
		fmt.Fprintf(b, "<App %s ", name)
		writeValues(b, v.Get().arguments.elements, level-1)
		b.WriteString(">")
	case Userdata:
		fmt.Fprintf(b, "<Userdata %s>", v.ID())
	case Thread:
		b.WriteString("<thread>")
	}
}

func (v Int) String() string                { return Debug(v, DefaultDebugDepth) }
func (v Float) String() string              { return Debug(v, DefaultDebugDepth) }
func (v String) String() string             { return Debug(v, DefaultDebugDepth) }
func (v Data) String() string               { return Debug(v, DefaultDebugDepth) }
func (v Function) String() string           { return Debug(v, DefaultDebugDepth) }
func (v Closure) String() string            { return Debug(v, DefaultDebugDepth) }
func (v PartialApplication) String() string { return Debug(v, DefaultDebugDepth) }
func (v Userdata) String() string           { return Debug(v, DefaultDebugDepth) }
func (v Thread) String() string             { return Debug(v, DefaultDebugDepth) }
