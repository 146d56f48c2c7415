// Package symtab implements the compiler's lexically-scoped symbol
// table: variables, closure parameters, user functions, pattern and
// array bindings, and function values, plus the preloaded builtin
// function table.
package symtab

import (
	"github.com/akkadolang/cedarc/internal/ast"
	"github.com/akkadolang/cedarc/internal/builtins"
	"github.com/akkadolang/cedarc/internal/fnv1a"
)

// UnusedBuffer marks a symbol that has no allocated buffer (functions,
// builtins).
const UnusedBuffer uint16 = 0xFFFF

// Kind identifies what a Symbol denotes.
type Kind uint8

const (
	KindVariable Kind = iota
	KindBuiltin
	KindParameter
	KindUserFunction
	KindPattern
	KindArray
	KindFunctionValue
)

// FunctionParamInfo is one user-function or closure parameter.
type FunctionParamInfo struct {
	Name         string
	HasDefault   bool
	DefaultValue float64
}

// UserFunctionInfo describes a top-level `fn` definition.
type UserFunctionInfo struct {
	Name     string
	Params   []FunctionParamInfo
	BodyNode ast.Index
	DefNode  ast.Index // FunctionDef node, kept for inlining
}

// PatternInfo describes a pattern variable bound from pat()/seq()/etc.
type PatternInfo struct {
	PatternNode     ast.Index
	IsSamplePattern bool
}

// ArrayInfo describes an array-valued variable. BufferIndices is
// populated during code generation, not at symbol definition time.
type ArrayInfo struct {
	BufferIndices []uint16
	SourceNode    ast.Index
	ElementCount  int
}

// CaptureInfo is one read-only variable captured by a closure.
type CaptureInfo struct {
	Name        string
	BufferIndex uint16
}

// FunctionRef describes a function value: a closure literal or a
// reference to a named user function.
type FunctionRef struct {
	ClosureNode      ast.Index
	Params           []FunctionParamInfo
	Captures         []CaptureInfo
	IsUserFunction   bool
	UserFunctionName string
}

// Symbol is one entry in the table. Only the field matching Kind is
// populated; the others are zero values.
type Symbol struct {
	Kind        Kind
	NameHash    uint32
	Name        string
	BufferIndex uint16

	Builtin      builtins.Info
	UserFunction UserFunctionInfo
	Pattern      PatternInfo
	Array        ArrayInfo
	FunctionRef  FunctionRef
}

// Table is a scoped symbol table: a stack of hash maps, searched
// innermost-scope-first. Scope 0 is the global scope and is
// pre-populated with every builtin (and its aliases).
type Table struct {
	scopes []map[uint32]Symbol
}

// New creates a symbol table with one global scope preloaded with
// every builtin function.
func New() *Table {
	t := &Table{scopes: []map[uint32]Symbol{make(map[uint32]Symbol)}}
	t.registerBuiltins()
	return t
}

// PushScope enters a new lexical scope (block or closure body).
func (t *Table) PushScope() {
	t.scopes = append(t.scopes, make(map[uint32]Symbol))
}

// PopScope leaves the innermost scope. The global scope can never be popped.
func (t *Table) PopScope() {
	if len(t.scopes) > 1 {
		t.scopes = t.scopes[:len(t.scopes)-1]
	}
}

// ScopeDepth returns the number of active scopes (1 = global only).
func (t *Table) ScopeDepth() int { return len(t.scopes) }

// Define inserts or overwrites a symbol in the current scope. Returns
// true if the name was not already present in this scope.
func (t *Table) Define(sym Symbol) bool {
	cur := t.scopes[len(t.scopes)-1]
	_, existed := cur[sym.NameHash]
	cur[sym.NameHash] = sym
	return !existed
}

func (t *Table) DefineVariable(name string, bufferIndex uint16) bool {
	return t.Define(Symbol{Kind: KindVariable, NameHash: fnv1a.Hash(name), Name: name, BufferIndex: bufferIndex})
}

func (t *Table) DefineParameter(name string, bufferIndex uint16) bool {
	return t.Define(Symbol{Kind: KindParameter, NameHash: fnv1a.Hash(name), Name: name, BufferIndex: bufferIndex})
}

func (t *Table) DefineFunction(info UserFunctionInfo) bool {
	return t.Define(Symbol{
		Kind: KindUserFunction, NameHash: fnv1a.Hash(info.Name), Name: info.Name,
		BufferIndex: UnusedBuffer, UserFunction: info,
	})
}

func (t *Table) DefinePattern(name string, info PatternInfo) bool {
	return t.Define(Symbol{Kind: KindPattern, NameHash: fnv1a.Hash(name), Name: name, Pattern: info})
}

func (t *Table) DefineArray(name string, info ArrayInfo) bool {
	return t.Define(Symbol{Kind: KindArray, NameHash: fnv1a.Hash(name), Name: name, Array: info})
}

func (t *Table) DefineFunctionValue(name string, ref FunctionRef) bool {
	return t.Define(Symbol{Kind: KindFunctionValue, NameHash: fnv1a.Hash(name), Name: name, FunctionRef: ref})
}

// Lookup searches scopes innermost-first for name.
func (t *Table) Lookup(name string) (Symbol, bool) {
	return t.LookupHash(fnv1a.Hash(name))
}

// LookupHash is Lookup given a precomputed name hash, for call sites
// that already hashed the name once.
func (t *Table) LookupHash(hash uint32) (Symbol, bool) {
	for i := len(t.scopes) - 1; i >= 0; i-- {
		if sym, ok := t.scopes[i][hash]; ok {
			return sym, true
		}
	}
	return Symbol{}, false
}

// IsDefinedInCurrentScope reports whether name is bound in the
// innermost scope only (used for duplicate-parameter/redefinition checks).
func (t *Table) IsDefinedInCurrentScope(name string) bool {
	_, ok := t.scopes[len(t.scopes)-1][fnv1a.Hash(name)]
	return ok
}

// UpdateFunctionNodes rewrites every UserFunction symbol's BodyNode/
// DefNode through nodeMap, after an AST transformation (e.g. pipe
// desugaring) that moved those nodes to new indices.
func (t *Table) UpdateFunctionNodes(nodeMap map[ast.Index]ast.Index) {
	for _, scope := range t.scopes {
		for hash, sym := range scope {
			if sym.Kind != KindUserFunction {
				continue
			}
			if mapped, ok := nodeMap[sym.UserFunction.BodyNode]; ok {
				sym.UserFunction.BodyNode = mapped
			}
			if mapped, ok := nodeMap[sym.UserFunction.DefNode]; ok {
				sym.UserFunction.DefNode = mapped
			}
			scope[hash] = sym
		}
	}
}

func (t *Table) registerBuiltins() {
	for name, info := range builtins.Functions {
		t.Define(Symbol{
			Kind: KindBuiltin, NameHash: fnv1a.Hash(name), Name: name,
			BufferIndex: UnusedBuffer, Builtin: info,
		})
	}
	for alias, canonical := range builtins.Aliases {
		sym, ok := t.Lookup(canonical)
		if !ok {
			continue
		}
		sym.NameHash = fnv1a.Hash(alias)
		sym.Name = alias
		t.Define(sym)
	}
}
