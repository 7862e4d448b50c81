package chunk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kristofer/clox/pkg/value"
)

func TestWriteCoalescesRunsOnSameLine(t *testing.T) {
	c := New()
	Write(c, byte(OpNil), 1)
	Write(c, byte(OpTrue), 1)
	Write(c, byte(OpFalse), 2)

	require.Len(t, c.Lines, 2)
	assert.Equal(t, LineRun{Line: 1, Count: 2}, c.Lines[0])
	assert.Equal(t, LineRun{Line: 2, Count: 1}, c.Lines[1])
}

func TestLineOfScansRuns(t *testing.T) {
	c := New()
	Write(c, byte(OpNil), 1)
	Write(c, byte(OpTrue), 1)
	Write(c, byte(OpFalse), 5)

	assert.Equal(t, 1, LineOf(c, 0))
	assert.Equal(t, 1, LineOf(c, 1))
	assert.Equal(t, 5, LineOf(c, 2))
}

func TestWriteConstantUsesShortFormUnderByteLimit(t *testing.T) {
	c := New()
	err := WriteConstant(c, value.Number(1), 1)
	require.NoError(t, err)
	assert.Equal(t, []byte{byte(OpConstant), 0}, c.Code)
}

func TestWriteConstantSwitchesToLongFormPast255(t *testing.T) {
	c := New()
	for i := 0; i < 256; i++ {
		require.NoError(t, WriteConstant(c, value.Number(float64(i)), 1))
	}
	c.Code = nil
	require.NoError(t, WriteConstant(c, value.Number(999), 1))
	require.Len(t, c.Code, 4)
	assert.Equal(t, byte(OpConstantLong), c.Code[0])
	idx := int(c.Code[1]) | int(c.Code[2])<<8 | int(c.Code[3])<<16
	assert.Equal(t, 256, idx)
}

func TestOpcodeStringKnownAndUnknown(t *testing.T) {
	assert.Equal(t, "OP_RETURN", OpReturn.String())
	assert.Contains(t, Opcode(250).String(), "OP_UNKNOWN")
}

func TestWriteUint16IsBigEndian(t *testing.T) {
	c := New()
	WriteUint16(c, 0x0102, 1)
	assert.Equal(t, []byte{0x01, 0x02}, c.Code)
}
