package chunk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kristofer/clox/pkg/value"
)

func TestDisassembleSimpleInstruction(t *testing.T) {
	c := New()
	idx := AddConstant(c, value.Number(1))
	Write(c, byte(OpConstant), 1)
	Write(c, byte(idx), 1)
	Write(c, byte(OpReturn), 1)

	var buf strings.Builder
	Disassemble(&buf, c, "test")

	out := buf.String()
	assert.Contains(t, out, "== test ==")
	assert.Contains(t, out, "OP_CONSTANT")
	assert.Contains(t, out, "OP_RETURN")
}

func TestDisassembleJumpShowsTarget(t *testing.T) {
	c := New()
	Write(c, byte(OpJump), 1)
	WriteUint16(c, 3, 1)
	Write(c, byte(OpReturn), 1)

	var buf strings.Builder
	next := DisassembleInstruction(&buf, c, 0)
	assert.Equal(t, 3, next)
	assert.Contains(t, buf.String(), "OP_JUMP")
	assert.Contains(t, buf.String(), "-> 6")
}
