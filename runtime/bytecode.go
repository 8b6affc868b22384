package runtime

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

type Instruction = byte

// Encoding of the instruction stream held by a BytecodeFunction. Only the
// layout of operands is defined here; what each instruction does is up to the
// interpreter.
const (
	NOP Instruction = iota
	ABORT

	// u16 index into Globals
	CONSTANT
	// u16 index into Strings
	STRING
	I64
	DOUBLE

	// u8 argument count
	CALL
	TAILCALL
	RETURN

	// u16 index into InnerFunctions, u16 upvalue count
	CLOSURE
	// like CLOSURE, the closure is built with ClosureInitDef and captures itself
	RECURSIVE
	// u8 argument count
	PARTIAL

	// i32 tag, u8 field count
	CONSTRUCT
	DESTRUCT
	CONCAT
)

// Accumulates an instruction stream. Multi-byte operands are big endian.
type CodeWriter struct {
	code []Instruction
}

func (w *CodeWriter) Code() []Instruction {
	return w.code
}

func (w *CodeWriter) WriteOp(op Instruction) *CodeWriter {
	return w.WriteU8(op)
}

func (w *CodeWriter) WriteU8(val uint8) *CodeWriter {
	w.code = append(w.code, val)
	return w
}

func (w *CodeWriter) WriteU16(val uint16) *CodeWriter {
	w.code = binary.BigEndian.AppendUint16(w.code, val)
	return w
}

func (w *CodeWriter) WriteI32(val int32) *CodeWriter {
	w.code = binary.BigEndian.AppendUint32(w.code, uint32(val))
	return w
}

func (w *CodeWriter) WriteI64(val int64) *CodeWriter {
	w.code = binary.BigEndian.AppendUint64(w.code, uint64(val))
	return w
}

func (w *CodeWriter) WriteDouble(val float64) *CodeWriter {
	w.code = binary.BigEndian.AppendUint64(w.code, math.Float64bits(val))
	return w
}

func ReadUInt8(code []Instruction, offset int) (uint8, int) {
	return code[offset], offset + 1
}

func ReadUInt16(code []Instruction, offset int) (uint16, int) {
	return binary.BigEndian.Uint16(code[offset:]), offset + 2
}

func ReadInt32(code []Instruction, offset int) (int32, int) {
	return int32(binary.BigEndian.Uint32(code[offset:])), offset + 4
}

func ReadInt64(code []Instruction, offset int) (int64, int) {
	return int64(binary.BigEndian.Uint64(code[offset:])), offset + 8
}

func ReadDouble(code []Instruction, offset int) (float64, int) {
	return math.Float64frombits(binary.BigEndian.Uint64(code[offset:])), offset + 8
}

func (f *BytecodeFunction) Disassemble(w io.Writer) {
	fmt.Fprintf(w, "%s/%d:\n", f.Name, f.Args)
	for i := 0; i < len(f.Instructions); {
		i = f.DisassembleInstruction(w, i)
	}
}

func (f *BytecodeFunction) DisassembleInstruction(w io.Writer, offset int) int {
	fmt.Fprintf(w, "%04d ", offset)

	code := f.Instructions
	switch code[offset] {
	case NOP:
		return simpleInstruction(w, "NOP", offset)
	case ABORT:
		return simpleInstruction(w, "ABORT", offset)
	case CONSTANT:
		idx, next := ReadUInt16(code, offset+1)
		if int(idx) < len(f.Globals) {
			fmt.Fprintf(w, "CONSTANT: %v\n", f.Globals[idx])
		} else {
			fmt.Fprintf(w, "CONSTANT: <bad index %d>\n", idx)
		}
		return next
	case STRING:
		idx, next := ReadUInt16(code, offset+1)
		if int(idx) < len(f.Strings) {
			fmt.Fprintf(w, "STRING: %q\n", f.Strings[idx])
		} else {
			fmt.Fprintf(w, "STRING: <bad index %d>\n", idx)
		}
		return next
	case I64:
		arg, next := ReadInt64(code, offset+1)
		fmt.Fprintf(w, "I64: %d\n", arg)
		return next
	case DOUBLE:
		arg, next := ReadDouble(code, offset+1)
		fmt.Fprintf(w, "DOUBLE: %g\n", arg)
		return next
	case CALL:
		return byteArgInstruction(w, "CALL", code, offset)
	case TAILCALL:
		return byteArgInstruction(w, "TAILCALL", code, offset)
	case RETURN:
		return simpleInstruction(w, "RETURN", offset)
	case CLOSURE:
		return f.closureInstruction(w, "CLOSURE", offset)
	case RECURSIVE:
		return f.closureInstruction(w, "RECURSIVE", offset)
	case PARTIAL:
		return byteArgInstruction(w, "PARTIAL", code, offset)
	case CONSTRUCT:
		tag, aft := ReadInt32(code, offset+1)
		count, next := ReadUInt8(code, aft)
		fmt.Fprintf(w, "CONSTRUCT: %d %d\n", tag, count)
		return next
	case DESTRUCT:
		return simpleInstruction(w, "DESTRUCT", offset)
	case CONCAT:
		return simpleInstruction(w, "CONCAT", offset)
	default:
		fmt.Fprintf(w, "Unknown opcode: %d\n", code[offset])
		return offset + 1
	}
}

func simpleInstruction(w io.Writer, instr string, offset int) int {
	fmt.Fprintln(w, instr)
	return offset + 1
}

func byteArgInstruction(w io.Writer, instr string, code []Instruction, offset int) int {
	val, aft := ReadUInt8(code, offset+1)
	fmt.Fprintf(w, "%s: %d\n", instr, val)
	return aft
}

func (f *BytecodeFunction) closureInstruction(w io.Writer, instr string, offset int) int {
	fnIdx, aft := ReadUInt16(f.Instructions, offset+1)
	count, next := ReadUInt16(f.Instructions, aft)
	if int(fnIdx) < len(f.InnerFunctions) {
		fmt.Fprintf(w, "%s: %s - %d\n", instr, f.InnerFunctions[fnIdx].Get().Name, count)
	} else {
		fmt.Fprintf(w, "%s: %d - %d\n", instr, fnIdx, count)
	}
	return next
}
