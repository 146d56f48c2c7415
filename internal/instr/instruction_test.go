package instr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstructionByteSize(t *testing.T) {
	enc := MakeNullary(NOP, 0, 0).Encode()
	assert.Len(t, enc, 20)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	in := MakeTernary(FILTER_SVF_LP, 5, 1, 2, 3, 0xDEADBEEF)
	enc := in.Encode()
	out, ok := Decode(enc[:])
	require.True(t, ok)
	assert.Equal(t, in, out)
}

func TestUnusedInputsMarkedCorrectly(t *testing.T) {
	in := MakeUnary(OSC_SAW, 0, 4, 0)
	assert.Equal(t, uint16(4), in.Inputs[0])
	for _, v := range in.Inputs[1:] {
		assert.Equal(t, UnusedBuffer, v)
	}
}

func TestConstPacksFloatIntoState(t *testing.T) {
	in := MakeConst(2, 440.0)
	assert.Equal(t, PUSH_CONST, in.Opcode)
	assert.InDelta(t, float32(440.0), in.ConstValue(), 1e-6)
}

func TestProgramRoundTrip(t *testing.T) {
	prog := []Instruction{
		MakeConst(0, 440.0),
		MakeUnary(OSC_SAW, 1, 0, 0xABCD1234),
		MakeBinary(OUTPUT, UnusedBuffer, 1, 1, 0),
	}
	enc := EncodeProgram(prog)
	assert.Len(t, enc, 3*20)
	out, ok := DecodeProgram(enc)
	require.True(t, ok)
	assert.Equal(t, prog, out)
}

func TestDecodeRejectsShortBuffer(t *testing.T) {
	_, ok := Decode(make([]byte, 10))
	assert.False(t, ok)
}
