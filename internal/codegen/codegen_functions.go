package codegen

import (
	"github.com/akkadolang/cedarc/internal/ast"
	"github.com/akkadolang/cedarc/internal/fnv1a"
	"github.com/akkadolang/cedarc/internal/instr"
	"github.com/akkadolang/cedarc/internal/source"
	"github.com/akkadolang/cedarc/internal/symtab"
)

// closureParamsAndBody splits a Closure node's children into its
// parameter nodes and its body. The parser always appends every
// parameter before the body, so the body is simply the last child -
// param nodes and a bare-identifier body are otherwise structurally
// indistinguishable.
func (g *CodeGenerator) closureParamsAndBody(closureNode ast.Index) ([]ast.Index, ast.Index) {
	children := g.arena.Children(closureNode)
	if len(children) == 0 {
		return nil, ast.NullNode
	}
	return children[:len(children)-1], children[len(children)-1]
}

func (g *CodeGenerator) closureParamInfo(paramNode ast.Index) symtab.FunctionParamInfo {
	n := g.arena.Get(paramNode)
	if cp, ok := n.Data.(ast.ClosureParamData); ok {
		return symtab.FunctionParamInfo{Name: cp.Name, HasDefault: cp.HasDefault, DefaultValue: cp.DefaultValue}
	}
	return symtab.FunctionParamInfo{Name: n.AsIdentifier().Name}
}

// handleClosure binds one freshly allocated buffer per parameter into
// the CURRENT scope (no push/pop) and visits the body directly. This
// is the direct-invocation path for a closure used inline, e.g. as a
// pattern literal's trailing signal transform; call-site application
// of a closure as a function VALUE goes through applyFunctionRef
// instead, which binds an already-computed argument buffer.
func (g *CodeGenerator) handleClosure(node ast.Index) uint16 {
	params, body := g.closureParamsAndBody(node)
	if body == ast.NullNode {
		g.error("E112", g.arena.Get(node).Location, "Closure has no body")
		return BufferUnused
	}
	for _, p := range params {
		info := g.closureParamInfo(p)
		buf := g.buffers.Allocate()
		if buf == BufferUnused {
			g.error("E101", g.arena.Get(node).Location, "Buffer pool exhausted")
			return BufferUnused
		}
		g.symbols.DefineVariable(info.Name, buf)
	}
	return g.visit(body)
}

// resolveFunctionArg resolves an argument node to a callable function
// reference: a closure literal, or an Identifier naming a function
// value or a user function.
func (g *CodeGenerator) resolveFunctionArg(node ast.Index) (symtab.FunctionRef, bool) {
	n := g.arena.Get(node)

	if n.Type == ast.Closure {
		params, _ := g.closureParamsAndBody(node)
		paramInfos := make([]symtab.FunctionParamInfo, 0, len(params))
		for _, p := range params {
			paramInfos = append(paramInfos, g.closureParamInfo(p))
		}
		return symtab.FunctionRef{ClosureNode: node, Params: paramInfos, IsUserFunction: false}, true
	}

	if n.Type == ast.Identifier {
		name := n.AsIdentifier().Name
		sym, ok := g.symbols.Lookup(name)
		if !ok {
			return symtab.FunctionRef{}, false
		}
		if sym.Kind == symtab.KindFunctionValue {
			return sym.FunctionRef, true
		}
		if sym.Kind == symtab.KindUserFunction {
			return symtab.FunctionRef{
				ClosureNode:      sym.UserFunction.BodyNode,
				Params:           sym.UserFunction.Params,
				IsUserFunction:   true,
				UserFunctionName: sym.UserFunction.Name,
			}, true
		}
	}

	return symtab.FunctionRef{}, false
}

// applyFunctionRef invokes a resolved single-parameter function
// reference with one already-computed argument buffer, in a pushed
// scope, preserving the shared-body memoization discipline (function
// bodies are the same AST nodes visited repeatedly with different
// bindings, so nodeBuffers is saved and restored around each call).
func (g *CodeGenerator) applyFunctionRef(ref symtab.FunctionRef, argBuf uint16, loc source.Location) uint16 {
	if len(ref.Params) == 0 {
		g.error("E132", loc, "Function reference has no parameters")
		return BufferUnused
	}

	g.symbols.PushScope()
	for _, cap := range ref.Captures {
		g.symbols.DefineVariable(cap.Name, cap.BufferIndex)
	}
	g.symbols.DefineVariable(ref.Params[0].Name, argBuf)

	saved := g.nodeBuffers
	g.nodeBuffers = make(map[ast.Index]uint16)

	var result uint16
	if ref.IsUserFunction {
		result = g.visit(ref.ClosureNode)
	} else {
		_, body := g.closureParamsAndBody(ref.ClosureNode)
		result = g.visit(body)
	}

	g.nodeBuffers = mergeBufferMaps(saved, g.nodeBuffers)

	g.symbols.PopScope()
	return result
}

func mergeBufferMaps(base, overlay map[ast.Index]uint16) map[ast.Index]uint16 {
	for k, v := range overlay {
		if _, exists := base[k]; !exists {
			base[k] = v
		}
	}
	return base
}

// applyBinaryFunctionRef is applyFunctionRef generalized to two
// arguments, used by fold/zipWith.
func (g *CodeGenerator) applyBinaryFunctionRef(ref symtab.FunctionRef, argBuf1, argBuf2 uint16, loc source.Location) uint16 {
	if len(ref.Params) < 2 {
		g.error("E140", loc, "Function reference needs two parameters")
		return BufferUnused
	}

	g.symbols.PushScope()
	for _, cap := range ref.Captures {
		g.symbols.DefineVariable(cap.Name, cap.BufferIndex)
	}
	g.symbols.DefineVariable(ref.Params[0].Name, argBuf1)
	g.symbols.DefineVariable(ref.Params[1].Name, argBuf2)

	saved := g.nodeBuffers
	g.nodeBuffers = make(map[ast.Index]uint16)

	var result uint16
	if ref.IsUserFunction {
		result = g.visit(ref.ClosureNode)
	} else {
		_, body := g.closureParamsAndBody(ref.ClosureNode)
		result = g.visit(body)
	}

	g.nodeBuffers = mergeBufferMaps(saved, g.nodeBuffers)
	g.symbols.PopScope()
	return result
}

// applyNaryFunctionRef generalizes applyFunctionRef/applyBinaryFunctionRef
// to an arbitrary argument count, used by handleFunctionValueCall. Missing
// trailing arguments are filled with a constant of the parameter's stored
// DefaultValue (0 for a parameter without a default); unlike
// handleUserFunctionCall, a missing required argument is not reported.
func (g *CodeGenerator) applyNaryFunctionRef(ref symtab.FunctionRef, argBufs []uint16, loc source.Location) uint16 {
	g.symbols.PushScope()
	for _, cap := range ref.Captures {
		g.symbols.DefineVariable(cap.Name, cap.BufferIndex)
	}
	for i, param := range ref.Params {
		if i < len(argBufs) {
			g.symbols.DefineVariable(param.Name, argBufs[i])
			continue
		}
		buf := g.buffers.Allocate()
		if buf == BufferUnused {
			g.error("E101", loc, "Buffer pool exhausted")
			g.symbols.PopScope()
			return BufferUnused
		}
		g.emit(instr.MakeConst(buf, float32(param.DefaultValue)))
		g.symbols.DefineVariable(param.Name, buf)
	}

	saved := g.nodeBuffers
	g.nodeBuffers = make(map[ast.Index]uint16)

	var result uint16
	if ref.IsUserFunction {
		result = g.visit(ref.ClosureNode)
	} else {
		_, body := g.closureParamsAndBody(ref.ClosureNode)
		result = g.visit(body)
	}

	g.nodeBuffers = mergeBufferMaps(saved, g.nodeBuffers)
	g.symbols.PopScope()
	return result
}

// handleFunctionValueCall invokes a variable holding a function value
// (a stored closure or named-function reference) at a normal call
// site, e.g. `f = (x) -> x * 2; f(10)`.
func (g *CodeGenerator) handleFunctionValueCall(node ast.Index, sym symtab.Symbol) uint16 {
	n := g.arena.Get(node)
	args := g.callArgNodes(node)

	argBufs := make([]uint16, 0, len(args))
	for _, a := range args {
		argBufs = append(argBufs, g.visit(a))
	}

	return g.applyNaryFunctionRef(sym.FunctionRef, argBufs, n.Location)
}

// handleUserFunctionCall inlines a top-level `fn` definition at the
// call site. Arguments are visited in the CALLER's scope before the
// callee's scope is pushed, so nested calls like double(double(x))
// resolve correctly.
func (g *CodeGenerator) handleUserFunctionCall(node ast.Index, sym symtab.Symbol) uint16 {
	n := g.arena.Get(node)
	args := g.callArgNodes(node)

	savedLiterals := g.paramLiterals
	g.paramLiterals = make(map[uint32]ast.Index)

	argBufs := make([]uint16, 0, len(sym.UserFunction.Params))
	for i, a := range args {
		if i >= len(sym.UserFunction.Params) {
			break
		}
		param := sym.UserFunction.Params[i]
		an := g.arena.Get(a)
		if an.Type == ast.StringLit || an.Type == ast.NumberLit || an.Type == ast.BoolLit {
			g.paramLiterals[fnv1a.Hash(param.Name)] = a
		}
		argBufs = append(argBufs, g.visit(a))
	}

	for i := len(argBufs); i < len(sym.UserFunction.Params); i++ {
		param := sym.UserFunction.Params[i]
		if !param.HasDefault {
			g.error("E105", n.Location, "Missing required argument: "+param.Name)
			g.paramLiterals = savedLiterals
			return BufferUnused
		}
		buf := g.buffers.Allocate()
		if buf == BufferUnused {
			g.error("E101", n.Location, "Buffer pool exhausted")
			g.paramLiterals = savedLiterals
			return BufferUnused
		}
		g.emit(instr.MakeConst(buf, float32(param.DefaultValue)))
		argBufs = append(argBufs, buf)
	}

	g.symbols.PushScope()
	for i, param := range sym.UserFunction.Params {
		g.symbols.DefineVariable(param.Name, argBufs[i])
	}

	saved := g.nodeBuffers
	g.nodeBuffers = make(map[ast.Index]uint16)

	result := g.visit(sym.UserFunction.BodyNode)

	g.nodeBuffers = mergeBufferMaps(saved, g.nodeBuffers)
	g.symbols.PopScope()
	g.paramLiterals = savedLiterals
	return result
}

// handleMatchExpr compiles only the first matching arm, treated as a
// compile-time switch over a literal scrutinee. The scrutinee must
// either be a literal itself or an Identifier naming a function
// parameter that was called with a literal argument (paramLiterals).
func (g *CodeGenerator) handleMatchExpr(node ast.Index) uint16 {
	n := g.arena.Get(node)
	meta := n.AsMatchExpr()

	children := g.arena.Children(node)
	if !meta.HasScrutinee || len(children) == 0 {
		g.error("E120", n.Location, "Match expression has no scrutinee")
		return BufferUnused
	}

	scrutineeNode := children[0]
	armNodes := children[1:]

	if sn := g.arena.Get(scrutineeNode); sn.Type == ast.Identifier {
		if lit, ok := g.paramLiterals[fnv1a.Hash(sn.AsIdentifier().Name)]; ok {
			scrutineeNode = lit
		}
	}

	key, ok := literalKey(g.arena.Get(scrutineeNode))
	if !ok {
		g.error("E120", n.Location, "Match scrutinee must be a compile-time literal")
		return BufferUnused
	}

	var defaultBody ast.Index = ast.NullNode
	for _, armIdx := range armNodes {
		arm := g.arena.Get(armIdx)
		if arm.Type != ast.MatchArm {
			continue
		}
		armData := arm.AsMatchArm()
		if armData.IsWildcard {
			armChildren := g.arena.Children(armIdx)
			if len(armChildren) > 0 {
				defaultBody = armChildren[0]
			}
			continue
		}

		armChildren := g.arena.Children(armIdx)
		if len(armChildren) != 2 {
			continue
		}
		pattern, body := armChildren[0], armChildren[1]
		patternKey, ok := literalKey(g.arena.Get(pattern))
		if ok && patternKey == key {
			return g.visit(body)
		}
	}

	if defaultBody != ast.NullNode {
		return g.visit(defaultBody)
	}

	g.error("E121", n.Location, "No matching pattern")
	return BufferUnused
}

func literalKey(n *ast.Node) (string, bool) {
	switch n.Type {
	case ast.StringLit:
		return "s:" + n.AsString().Value, true
	case ast.NumberLit:
		return "n:" + floatKey(n.AsNumber().Value), true
	case ast.BoolLit:
		if n.AsBool().Value {
			return "b:true", true
		}
		return "b:false", true
	default:
		return "", false
	}
}

func floatKey(v float64) string {
	// Exact decimal rendering of the literal as written is not needed;
	// match keys only need to agree when the underlying values do.
	i := int64(v)
	if float64(i) == v {
		return itoa64(i)
	}
	return itoa64(int64(v*1e6)) + "e-6"
}

func itoa64(v int64) string {
	if v == 0 {
		return "0"
	}
	neg := v < 0
	if neg {
		v = -v
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
