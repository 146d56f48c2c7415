package symtab

import (
	"testing"

	"github.com/akkadolang/cedarc/internal/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPreloadsBuiltins(t *testing.T) {
	tab := New()
	sym, ok := tab.Lookup("saw")
	require.True(t, ok)
	assert.Equal(t, KindBuiltin, sym.Kind)
}

func TestNewPreloadsAliases(t *testing.T) {
	tab := New()
	sym, ok := tab.Lookup("sine")
	require.True(t, ok)
	assert.Equal(t, KindBuiltin, sym.Kind)
	assert.Equal(t, "sine", sym.Name)
}

func TestDefineVariableShadowsInInnerScope(t *testing.T) {
	tab := New()
	tab.DefineVariable("x", 3)
	tab.PushScope()
	tab.DefineVariable("x", 7)

	sym, ok := tab.Lookup("x")
	require.True(t, ok)
	assert.EqualValues(t, 7, sym.BufferIndex)

	tab.PopScope()
	sym, ok = tab.Lookup("x")
	require.True(t, ok)
	assert.EqualValues(t, 3, sym.BufferIndex)
}

func TestPopScopeNeverRemovesGlobal(t *testing.T) {
	tab := New()
	tab.PopScope()
	tab.PopScope()
	assert.Equal(t, 1, tab.ScopeDepth())
}

func TestIsDefinedInCurrentScopeOnlyChecksInnermost(t *testing.T) {
	tab := New()
	tab.DefineVariable("x", 0)
	tab.PushScope()
	assert.False(t, tab.IsDefinedInCurrentScope("x"))
	tab.DefineVariable("y", 1)
	assert.True(t, tab.IsDefinedInCurrentScope("y"))
}

func TestDefineReturnsFalseOnRedefinition(t *testing.T) {
	tab := New()
	assert.True(t, tab.DefineVariable("x", 0))
	assert.False(t, tab.DefineVariable("x", 1))
}

func TestUpdateFunctionNodesRewritesBodyAndDefNodes(t *testing.T) {
	tab := New()
	tab.DefineFunction(UserFunctionInfo{Name: "square", BodyNode: ast.Index(5), DefNode: ast.Index(6)})

	tab.UpdateFunctionNodes(map[ast.Index]ast.Index{5: 50, 6: 60})

	sym, ok := tab.Lookup("square")
	require.True(t, ok)
	assert.EqualValues(t, 50, sym.UserFunction.BodyNode)
	assert.EqualValues(t, 60, sym.UserFunction.DefNode)
}

func TestLookupHashMatchesLookup(t *testing.T) {
	tab := New()
	tab.DefineVariable("freq", 2)
	byName, _ := tab.Lookup("freq")
	byHash, ok := tab.LookupHash(byName.NameHash)
	require.True(t, ok)
	assert.Equal(t, byName, byHash)
}
