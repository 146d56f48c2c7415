package fnv1a

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashKnownValue(t *testing.T) {
	// FNV-1a 32-bit of the empty string is the offset basis itself.
	assert.Equal(t, uint32(2166136261), Hash(""))
}

func TestHashIsDeterministic(t *testing.T) {
	assert.Equal(t, Hash("saw"), Hash("saw"))
	assert.NotEqual(t, Hash("saw"), Hash("sin"))
}

func TestIncrementalMatchesDirect(t *testing.T) {
	h := New()
	h = HashString(h, "saw")
	assert.Equal(t, Hash("saw"), h)
}
