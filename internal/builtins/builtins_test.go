package builtins

import (
	"testing"

	"github.com/akkadolang/cedarc/internal/instr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupDirect(t *testing.T) {
	info, ok := Lookup("saw")
	require.True(t, ok)
	assert.Equal(t, instr.OSC_SAW, info.Opcode)
	assert.EqualValues(t, 1, info.InputCount)
	assert.True(t, info.RequiresState)
}

func TestLookupResolvesAlias(t *testing.T) {
	info, ok := Lookup("sine")
	require.True(t, ok)
	assert.Equal(t, instr.OSC_SIN, info.Opcode)
}

func TestLookupUnknownFails(t *testing.T) {
	_, ok := Lookup("nope")
	assert.False(t, ok)
}

func TestCanonicalName(t *testing.T) {
	assert.Equal(t, "lp", CanonicalName("lowpass"))
	assert.Equal(t, "saw", CanonicalName("saw"))
}

func TestArithmeticOpsAreStateless(t *testing.T) {
	for _, name := range []string{"add", "sub", "mul", "div", "pow"} {
		info, ok := Lookup(name)
		require.True(t, ok, name)
		assert.False(t, info.RequiresState, name)
		assert.EqualValues(t, 2, info.InputCount, name)
	}
}
