package ast

import (
	"testing"

	"github.com/akkadolang/cedarc/internal/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArenaAllocIsMonotonic(t *testing.T) {
	a := NewArena()
	first := a.Alloc(NumberLit, source.Zero)
	second := a.Alloc(NumberLit, source.Zero)
	assert.Equal(t, Index(0), first)
	assert.Equal(t, Index(1), second)
	assert.Equal(t, 2, a.Len())
}

func TestAddChildBuildsSiblingChain(t *testing.T) {
	a := NewArena()
	parent := a.Alloc(Call, source.Zero)
	c1 := a.Alloc(NumberLit, source.Zero)
	c2 := a.Alloc(NumberLit, source.Zero)
	c3 := a.Alloc(NumberLit, source.Zero)

	a.AddChild(parent, c1)
	a.AddChild(parent, c2)
	a.AddChild(parent, c3)

	require.Equal(t, 3, a.ChildCount(parent))
	assert.Equal(t, []Index{c1, c2, c3}, a.Children(parent))
}

func TestValidRejectsNullAndOutOfRange(t *testing.T) {
	a := NewArena()
	idx := a.Alloc(NumberLit, source.Zero)
	assert.True(t, a.Valid(idx))
	assert.False(t, a.Valid(NullNode))
	assert.False(t, a.Valid(Index(99)))
}

func TestNodeDataAccessors(t *testing.T) {
	a := NewArena()
	idx := a.Alloc(NumberLit, source.Zero)
	a.Get(idx).Data = NumberData{Value: 42, IsInteger: true}
	assert.Equal(t, 42.0, a.Get(idx).AsNumber().Value)
}

func TestBinOpFuncName(t *testing.T) {
	assert.Equal(t, "add", OpAdd.FuncName())
	assert.Equal(t, "pow", OpPow.FuncName())
}
