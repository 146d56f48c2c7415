package codegen

import (
	"github.com/akkadolang/cedarc/internal/ast"
	"github.com/akkadolang/cedarc/internal/fnv1a"
	"github.com/akkadolang/cedarc/internal/instr"
)

// extractFloatArg reads a literal float from a call argument node,
// falling back to def for anything but a NumberLit - exposed-parameter
// bounds/defaults are MVP, literal-only, matching the rest of the
// generator's compile-time-constant arguments (range(), take(), etc).
func (g *CodeGenerator) extractFloatArg(node ast.Index, def float32) float32 {
	if node == ast.NullNode {
		return def
	}
	n := g.arena.Get(node)
	if n.Type != ast.NumberLit {
		return def
	}
	return float32(n.AsNumber().Value)
}

func (g *CodeGenerator) paramName(args []ast.Index, loc ast.Index) (string, bool) {
	if len(args) == 0 {
		return "", false
	}
	n := g.arena.Get(args[0])
	if n.Type != ast.StringLit {
		return "", false
	}
	return n.AsString().Value, true
}

// emitEnvGet emits the ENV_GET instruction shared by every exposed-
// parameter builtin. Its state id is the name's hash directly, not the
// path-stack hash the rest of the generator uses, because exposed
// parameters must be addressable by a stable, position-independent
// name from host-side control surfaces regardless of where in the
// program they're referenced.
func (g *CodeGenerator) emitEnvGet(loc ast.Index, name string) uint16 {
	n := g.arena.Get(loc)
	out := g.buffers.Allocate()
	if out == BufferUnused {
		g.error("E101", n.Location, "Buffer pool exhausted")
		return BufferUnused
	}
	g.emit(instr.MakeNullary(instr.ENV_GET, out, fnv1a.Hash(name)))
	return out
}

func (g *CodeGenerator) handleParamCall(node ast.Index) uint16 {
	n := g.arena.Get(node)
	args := g.callArgNodes(node)
	if len(args) < 2 {
		g.error("E160", n.Location, "param() expects at least a name and a default value")
		return BufferUnused
	}
	name, ok := g.paramName(args, node)
	if !ok {
		g.error("E164", n.Location, "Exposed parameter name must be a string literal")
		return BufferUnused
	}

	def := g.extractFloatArg(args[1], 0)
	min := float32(0)
	max := float32(1)
	if len(args) > 2 {
		min = g.extractFloatArg(args[2], 0)
	}
	if len(args) > 3 {
		max = g.extractFloatArg(args[3], 1)
	}

	g.paramDecls = append(g.paramDecls, ParamDecl{
		Name: name, Kind: ParamKnob, Default: def, Min: min, Max: max, StateID: fnv1a.Hash(name),
	})
	return g.emitEnvGet(node, name)
}

func (g *CodeGenerator) handleButtonCall(node ast.Index) uint16 {
	n := g.arena.Get(node)
	args := g.callArgNodes(node)
	if len(args) < 1 {
		g.error("E161", n.Location, "button() expects a name")
		return BufferUnused
	}
	name, ok := g.paramName(args, node)
	if !ok {
		g.error("E164", n.Location, "Exposed parameter name must be a string literal")
		return BufferUnused
	}

	g.paramDecls = append(g.paramDecls, ParamDecl{Name: name, Kind: ParamButton, StateID: fnv1a.Hash(name)})
	return g.emitEnvGet(node, name)
}

func (g *CodeGenerator) handleToggleCall(node ast.Index) uint16 {
	n := g.arena.Get(node)
	args := g.callArgNodes(node)
	if len(args) < 1 {
		g.error("E162", n.Location, "toggle() expects a name")
		return BufferUnused
	}
	name, ok := g.paramName(args, node)
	if !ok {
		g.error("E164", n.Location, "Exposed parameter name must be a string literal")
		return BufferUnused
	}

	def := float32(0)
	if len(args) > 1 {
		if bn := g.arena.Get(args[1]); bn.Type == ast.BoolLit && bn.AsBool().Value {
			def = 1
		}
	}

	g.paramDecls = append(g.paramDecls, ParamDecl{Name: name, Kind: ParamToggle, Default: def, StateID: fnv1a.Hash(name)})
	return g.emitEnvGet(node, name)
}

func (g *CodeGenerator) handleSelectCall(node ast.Index) uint16 {
	n := g.arena.Get(node)
	args := g.callArgNodes(node)
	if len(args) < 2 {
		g.error("E163", n.Location, "dropdown() expects a name and at least one option")
		return BufferUnused
	}
	name, ok := g.paramName(args, node)
	if !ok {
		g.error("E164", n.Location, "Exposed parameter name must be a string literal")
		return BufferUnused
	}

	options := make([]string, 0, len(args)-1)
	for _, a := range args[1:] {
		an := g.arena.Get(a)
		if an.Type == ast.StringLit {
			options = append(options, an.AsString().Value)
		}
	}

	g.paramDecls = append(g.paramDecls, ParamDecl{Name: name, Kind: ParamDropdown, Options: options, StateID: fnv1a.Hash(name)})
	return g.emitEnvGet(node, name)
}
