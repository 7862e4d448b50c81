// Package chunk defines the bytecode container and instruction set the
// compiler emits into and the VM executes.
//
// A Chunk is a self-contained bytecode unit: an ordered byte sequence (the
// code), a constant pool of Values, and a line table. The line table is a
// run-length encoding — successive instructions on the same source line
// share one (line, count) entry — so appending is O(1) and looking up the
// line for a byte offset is a linear scan over runs rather than over bytes.
//
// All multi-byte immediates the instruction set defines are big-endian;
// only OpConstantLong's 24-bit constant-pool index is little-endian (it is
// built by three single le.WriteByte-equivalent writes, matching the
// reference VM this format is modeled on).
package chunk

import (
	"fmt"

	"github.com/kristofer/clox/pkg/value"
)

// Chunk is value.Chunk under a local name: the compiler and VM both need a
// "bytecode container" type, and value.ObjFunction already had to define
// the struct to avoid an import cycle (a Chunk's constants are Values, and
// a Value can hold an ObjFunction that owns a Chunk). This package is
// where chunk-shaped behavior (Write, AddConstant, disassembly) lives.
type Chunk = value.Chunk

// LineRun is value.LineRun under a local name, for the same reason as Chunk.
type LineRun = value.LineRun

// Opcode is a single-byte bytecode instruction tag.
type Opcode byte

const (
	OpConstant Opcode = iota
	OpConstantLong
	OpNil
	OpTrue
	OpFalse
	OpPop
	OpGetLocal
	OpSetLocal
	OpGetGlobal
	OpSetGlobal
	OpDefineGlobal
	OpGetUpvalue
	OpSetUpvalue
	OpCloseUpvalue
	OpEqual
	OpGreater
	OpLess
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpNot
	OpNegate
	OpPrint
	OpJump
	OpJumpIfFalse
	OpLoop
	OpCall
	OpClosure
	OpCompare
	OpJumpIfNoEqual
	OpJumpIfEqual
	OpReturn
)

var opcodeNames = [...]string{
	OpConstant:      "OP_CONSTANT",
	OpConstantLong:  "OP_CONSTANT_LONG",
	OpNil:           "OP_NIL",
	OpTrue:          "OP_TRUE",
	OpFalse:         "OP_FALSE",
	OpPop:           "OP_POP",
	OpGetLocal:      "OP_GET_LOCAL",
	OpSetLocal:      "OP_SET_LOCAL",
	OpGetGlobal:     "OP_GET_GLOBAL",
	OpSetGlobal:     "OP_SET_GLOBAL",
	OpDefineGlobal:  "OP_DEFINE_GLOBAL",
	OpGetUpvalue:    "OP_GET_UPVALUE",
	OpSetUpvalue:    "OP_SET_UPVALUE",
	OpCloseUpvalue:  "OP_CLOSE_UPVALUE",
	OpEqual:         "OP_EQUAL",
	OpGreater:       "OP_GREATER",
	OpLess:          "OP_LESS",
	OpAdd:           "OP_ADD",
	OpSubtract:      "OP_SUBTRACT",
	OpMultiply:      "OP_MULTIPLY",
	OpDivide:        "OP_DIVIDE",
	OpNot:           "OP_NOT",
	OpNegate:        "OP_NEGATE",
	OpPrint:         "OP_PRINT",
	OpJump:          "OP_JUMP",
	OpJumpIfFalse:   "OP_JUMP_IF_FALSE",
	OpLoop:          "OP_LOOP",
	OpCall:          "OP_CALL",
	OpClosure:       "OP_CLOSURE",
	OpCompare:       "OP_COMPARE",
	OpJumpIfNoEqual: "OP_JUMP_IF_NO_EQUAL",
	OpJumpIfEqual:   "OP_JUMP_IF_EQUAL",
	OpReturn:        "OP_RETURN",
}

func (op Opcode) String() string {
	if int(op) >= 0 && int(op) < len(opcodeNames) && opcodeNames[op] != "" {
		return opcodeNames[op]
	}
	return fmt.Sprintf("OP_UNKNOWN(%d)", byte(op))
}

// maxConstants is the largest constant-pool size the 24-bit OP_CONSTANT_LONG
// index can address. The spec's invariant that a single-byte OP_CONSTANT
// pool tops out at 256 entries is enforced by WriteConstant choosing the
// wide form past that point, not by rejecting the write.
const maxConstants = 1 << 24

// New returns an empty Chunk ready for Write/AddConstant.
func New() *Chunk {
	return &Chunk{}
}

// Write appends a raw byte to the code stream, recording which source line
// produced it. Consecutive writes for the same line extend the chunk's
// current run instead of starting a new one.
func Write(c *Chunk, b byte, line int) {
	c.Code = append(c.Code, b)
	n := len(c.Lines)
	if n > 0 && c.Lines[n-1].Line == line {
		c.Lines[n-1].Count++
		return
	}
	c.Lines = append(c.Lines, LineRun{Line: line, Count: 1})
}

// WriteUint16 appends a big-endian u16, used by jump/loop operands.
func WriteUint16(c *Chunk, v uint16, line int) {
	Write(c, byte(v>>8), line)
	Write(c, byte(v), line)
}

// AddConstant appends v to the constant pool and returns its index.
func AddConstant(c *Chunk, v value.Value) int {
	c.Constants = append(c.Constants, v)
	return len(c.Constants) - 1
}

// WriteConstant emits OP_CONSTANT (8-bit index) if the pool still fits in a
// byte at the point v is added, or OP_CONSTANT_LONG (24-bit little-endian
// index) once it doesn't. It reports an error rather than writing anything
// once the pool would exceed maxConstants, matching §4.2's "aborts if the
// pool exceeds 2^24".
func WriteConstant(c *Chunk, v value.Value, line int) error {
	if len(c.Constants) >= maxConstants {
		return fmt.Errorf("too many constants in one chunk")
	}
	idx := AddConstant(c, v)
	if idx < 256 {
		Write(c, byte(OpConstant), line)
		Write(c, byte(idx), line)
		return nil
	}
	Write(c, byte(OpConstantLong), line)
	Write(c, byte(idx), line)
	Write(c, byte(idx>>8), line)
	Write(c, byte(idx>>16), line)
	return nil
}

// LineOf scans the run-length line table and returns the source line that
// produced the instruction at byte offset.
func LineOf(c *Chunk, offset int) int {
	acc := 0
	for _, run := range c.Lines {
		acc += run.Count
		if offset < acc {
			return run.Line
		}
	}
	if len(c.Lines) > 0 {
		return c.Lines[len(c.Lines)-1].Line
	}
	return 0
}

// SameLine reports whether offsets a and b were emitted from the same
// source line. The disassembler uses this to collapse repeated line
// numbers into "   |" for readability.
func SameLine(c *Chunk, a, b int) bool {
	return LineOf(c, a) == LineOf(c, b)
}
