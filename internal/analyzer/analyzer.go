// Package analyzer implements the three-pass semantic analyzer: variable
// and function definition collection, pipe-to-call rewriting via hole
// substitution, and call-site resolution with arity and capture
// validation. It consumes the arena the parser produced and emits a
// second, transformed arena plus a populated symbol table.
package analyzer

import (
	"fmt"

	"github.com/akkadolang/cedarc/internal/ast"
	"github.com/akkadolang/cedarc/internal/diag"
	"github.com/akkadolang/cedarc/internal/source"
	"github.com/akkadolang/cedarc/internal/symtab"
)

// Result is the outcome of one Analyze call.
type Result struct {
	Symbols *symtab.Table
	Output  ast.AST
	Success bool
}

// Analyzer runs definition collection, pipe rewriting, and
// resolve-and-validate over an input AST.
type Analyzer struct {
	input   ast.AST
	output  *ast.Arena
	symbols *symtab.Table
	diags   *diag.Store
	nodeMap map[ast.Index]ast.Index
}

// New creates an analyzer that reports into diags.
func New(diags *diag.Store) *Analyzer {
	return &Analyzer{diags: diags}
}

// Analyze runs the three passes over input, returning the pipe-rewritten
// output tree and the symbol table populated along the way.
func (a *Analyzer) Analyze(input ast.AST) Result {
	a.input = input
	a.output = ast.NewArena()
	a.symbols = symtab.New()
	a.nodeMap = make(map[ast.Index]ast.Index)

	if !input.Valid() {
		a.diags.Emit(diag.Error, "E001", "Invalid AST: no root node", source.Zero)
		return Result{Symbols: a.symbols, Success: false}
	}

	errsBefore := len(a.diags.All())

	// Pass 1: collect variable and function definitions.
	a.collectDefinitions(input.Root)

	// Pass 2: rewrite pipes into direct calls, building a new arena.
	newRoot := a.rewritePipes(input.Root)

	// The symbol table's function body/def indices were recorded against
	// the input arena in pass 1; redirect them through the node map that
	// pass 2 just built so later lookups land on output-arena nodes.
	a.symbols.UpdateFunctionNodes(a.nodeMap)

	// Pass 3: resolve identifiers/calls and validate arity and captures.
	a.resolveAndValidate(newRoot, nil)

	success := true
	for _, d := range a.diags.All()[errsBefore:] {
		if d.Severity == diag.Error {
			success = false
			break
		}
	}

	return Result{
		Symbols: a.symbols,
		Output:  ast.AST{Arena: a.output, Root: newRoot},
		Success: success,
	}
}

// --- Pass 1: definition collection ---

func (a *Analyzer) collectDefinitions(node ast.Index) {
	if node == ast.NullNode {
		return
	}
	arena := a.input.Arena
	n := arena.Get(node)

	switch n.Type {
	case ast.Assignment:
		name := n.AsIdentifier().Name
		if a.symbols.IsDefinedInCurrentScope(name) {
			a.diags.Emitf(diag.Warning, "W000", n.Location, "variable '%s' redefined", name)
		}
		a.symbols.DefineVariable(name, symtab.UnusedBuffer)

	case ast.FunctionDef:
		data := n.AsFunctionDef()
		children := arena.Children(node)
		params := make([]symtab.FunctionParamInfo, 0, data.ParamCount)
		for i := 0; i < data.ParamCount && i < len(children); i++ {
			params = append(params, paramInfo(arena.Get(children[i])))
		}
		bodyNode := ast.NullNode
		if len(children) > data.ParamCount {
			bodyNode = children[len(children)-1]
		}
		a.symbols.DefineFunction(symtab.UserFunctionInfo{
			Name:     data.Name,
			Params:   params,
			BodyNode: bodyNode,
			DefNode:  node,
		})
	}

	child := n.FirstChild
	for child != ast.NullNode {
		a.collectDefinitions(child)
		child = arena.Get(child).NextSibling
	}
}

// paramInfo extracts a parameter's name and default from a closure/function
// parameter node, whose Data is IdentifierData (no default) or
// ClosureParamData (with one).
func paramInfo(n *ast.Node) symtab.FunctionParamInfo {
	switch data := n.Data.(type) {
	case ast.ClosureParamData:
		return symtab.FunctionParamInfo{Name: data.Name, HasDefault: data.HasDefault, DefaultValue: data.DefaultValue}
	case ast.IdentifierData:
		return symtab.FunctionParamInfo{Name: data.Name}
	default:
		return symtab.FunctionParamInfo{}
	}
}

// --- Pass 2: pipe rewriting ---

// rewritePipes transforms node, eliminating Pipe nodes by hole
// substitution, and returns its counterpart in the output arena.
func (a *Analyzer) rewritePipes(node ast.Index) ast.Index {
	if node == ast.NullNode {
		return ast.NullNode
	}
	n := a.input.Arena.Get(node)

	if n.Type == ast.Pipe {
		lhsIdx := n.FirstChild
		rhsIdx := ast.NullNode
		if lhsIdx != ast.NullNode {
			rhsIdx = a.input.Arena.Get(lhsIdx).NextSibling
		}
		if lhsIdx == ast.NullNode || rhsIdx == ast.NullNode {
			a.diags.Emit(diag.Error, "E002", "Invalid pipe expression", n.Location)
			return ast.NullNode
		}

		newLHS := a.rewritePipes(lhsIdx)
		return a.substituteHoles(rhsIdx, newLHS)
	}

	return a.cloneSubtree(node)
}

// cloneNode shallow-copies one input node into the output arena, recording
// the old->new mapping.
func (a *Analyzer) cloneNode(srcIdx ast.Index) ast.Index {
	if srcIdx == ast.NullNode {
		return ast.NullNode
	}
	src := a.input.Arena.Get(srcIdx)
	dstIdx := a.output.Alloc(src.Type, src.Location)
	a.output.Get(dstIdx).Data = src.Data
	a.nodeMap[srcIdx] = dstIdx
	return dstIdx
}

// cloneSubtree clones src and its entire child list into the output
// arena, recursing into nested pipes via rewritePipes.
func (a *Analyzer) cloneSubtree(srcIdx ast.Index) ast.Index {
	if srcIdx == ast.NullNode {
		return ast.NullNode
	}
	if dst, ok := a.nodeMap[srcIdx]; ok {
		return dst
	}

	src := a.input.Arena.Get(srcIdx)
	if src.Type == ast.Pipe {
		return a.rewritePipes(srcIdx)
	}

	dstIdx := a.cloneNode(srcIdx)

	srcChild := src.FirstChild
	for srcChild != ast.NullNode {
		dstChild := a.cloneSubtree(srcChild)
		if dstChild != ast.NullNode {
			a.output.AddChild(dstIdx, dstChild)
		}
		srcChild = a.input.Arena.Get(srcChild).NextSibling
	}

	return dstIdx
}

// substituteHoles clones node's subtree, replacing every Hole with
// replacement (an already-output-arena node), and recursively eliminating
// any nested pipes along the way.
func (a *Analyzer) substituteHoles(node, replacement ast.Index) ast.Index {
	if node == ast.NullNode {
		return ast.NullNode
	}
	n := a.input.Arena.Get(node)

	if n.Type == ast.Hole {
		return replacement
	}

	if n.Type == ast.Pipe {
		srcLHS := n.FirstChild
		srcRHS := ast.NullNode
		if srcLHS != ast.NullNode {
			srcRHS = a.input.Arena.Get(srcLHS).NextSibling
		}
		newLHS := a.substituteHoles(srcLHS, replacement)
		return a.substituteHoles(srcRHS, newLHS)
	}

	newNode := a.cloneNode(node)
	srcChild := n.FirstChild
	for srcChild != ast.NullNode {
		dstChild := a.substituteHoles(srcChild, replacement)
		if dstChild != ast.NullNode {
			a.output.AddChild(newNode, dstChild)
		}
		srcChild = a.input.Arena.Get(srcChild).NextSibling
	}

	return newNode
}

// --- Pass 3: resolve and validate ---

// closureScope tracks names bound by enclosing closure/function parameters
// (so references to them don't read as undefined) and whether the
// innermost enclosing binder is a closure (which additionally forbids
// referencing plain variables from an outer scope).
type closureScope struct {
	bound           map[string]bool
	restrictCapture bool
}

func (s *closureScope) has(name string) bool {
	return s != nil && s.bound[name]
}

func (s *closureScope) extend(names []string, restrict bool) *closureScope {
	bound := make(map[string]bool, len(names))
	if s != nil {
		for k := range s.bound {
			bound[k] = true
		}
	}
	for _, name := range names {
		bound[name] = true
	}
	r := restrict
	if s != nil && s.restrictCapture {
		r = true
	}
	return &closureScope{bound: bound, restrictCapture: r}
}

func (a *Analyzer) resolveAndValidate(node ast.Index, scope *closureScope) {
	if node == ast.NullNode {
		return
	}
	n := a.output.Get(node)

	switch n.Type {
	case ast.Hole:
		a.diags.Emit(diag.Error, "E003", "Hole '%' used outside of pipe expression", n.Location)
		return

	case ast.Identifier:
		name := n.AsIdentifier().Name
		if scope.has(name) {
			return
		}
		sym, ok := a.symbols.Lookup(name)
		if !ok {
			a.diags.Emitf(diag.Error, "E005", n.Location, "undefined identifier: '%s'", name)
			return
		}
		if scope != nil && scope.restrictCapture && sym.Kind == symtab.KindVariable {
			a.diags.Emitf(diag.Error, "E008", n.Location,
				"closure captures variable '%s'; closures may only reference parameters, builtins, and pattern/array globals", name)
		}
		return

	case ast.Call:
		funcName := n.AsIdentifier().Name
		sym, ok := a.symbols.Lookup(funcName)
		if !ok {
			a.diags.Emitf(diag.Error, "E004", n.Location, "unknown function: '%s'", funcName)
		} else if sym.Kind == symtab.KindBuiltin {
			a.validateArguments(funcName, sym.Builtin.InputCount, sym.Builtin.OptionalCount, a.output.ChildCount(node), n.Location)
		}
		a.checkArgumentOrder(node)

	case ast.Closure:
		a.resolveBinder(node, scope, true)
		return

	case ast.FunctionDef:
		a.resolveBinder(node, scope, false)
		return
	}

	child := n.FirstChild
	for child != ast.NullNode {
		a.resolveAndValidate(child, scope)
		child = a.output.Get(child).NextSibling
	}
}

// resolveBinder handles Closure and FunctionDef alike: their leading
// children are parameter declarations (not expressions to validate) and
// their last child is the body, validated under a scope extended with
// those parameter names.
func (a *Analyzer) resolveBinder(node ast.Index, scope *closureScope, restrictCapture bool) {
	children := a.output.Children(node)
	if len(children) == 0 {
		return
	}
	body := children[len(children)-1]
	names := make([]string, 0, len(children)-1)
	for _, c := range children[:len(children)-1] {
		names = append(names, paramInfo(a.output.Get(c)).Name)
	}
	a.resolveAndValidate(body, scope.extend(names, restrictCapture))
}

// checkArgumentOrder enforces that positional arguments precede the first
// named argument among a Call's Argument children.
func (a *Analyzer) checkArgumentOrder(callNode ast.Index) {
	seenNamed := false
	a.output.ForEachChild(callNode, func(_ ast.Index, argNode *ast.Node) {
		data := argNode.AsArgument()
		if data.Name != "" {
			seenNamed = true
			return
		}
		if seenNamed {
			a.diags.Emit(diag.Error, "E009", "positional argument follows a named argument", argNode.Location)
		}
	})
}

func (a *Analyzer) validateArguments(funcName string, inputCount, optionalCount uint8, argCount int, loc source.Location) {
	minArgs := int(inputCount)
	maxArgs := int(inputCount) + int(optionalCount)

	if argCount < minArgs {
		a.diags.Emit(diag.Error, "E006", fmt.Sprintf(
			"function '%s' expects at least %d argument(s), got %d", funcName, minArgs, argCount), loc)
	} else if argCount > maxArgs {
		a.diags.Emit(diag.Error, "E007", fmt.Sprintf(
			"function '%s' expects at most %d argument(s), got %d", funcName, maxArgs, argCount), loc)
	}
}
