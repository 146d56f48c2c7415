package codegen

import (
	"github.com/akkadolang/cedarc/internal/ast"
	"github.com/akkadolang/cedarc/internal/builtins"
	"github.com/akkadolang/cedarc/internal/instr"
	"github.com/akkadolang/cedarc/internal/symtab"
)

// specialHandlers dispatches by callee name to a handler that manages
// its own argument visiting (arrays, patterns, chords, exposed
// parameters) instead of the generic builtin path below.
var specialHandlers = map[string]func(g *CodeGenerator, node ast.Index) uint16{
	"len":      (*CodeGenerator).handleLenCall,
	"chord":    (*CodeGenerator).handleChordCall,
	"map":      (*CodeGenerator).handleMapCall,
	"sum":      (*CodeGenerator).handleSumCall,
	"fold":     (*CodeGenerator).handleFoldCall,
	"zipWith":  (*CodeGenerator).handleZipWithCall,
	"zip":      (*CodeGenerator).handleZipCall,
	"take":     (*CodeGenerator).handleTakeCall,
	"drop":     (*CodeGenerator).handleDropCall,
	"reverse":  (*CodeGenerator).handleReverseCall,
	"range":    (*CodeGenerator).handleRangeCall,
	"repeat":   (*CodeGenerator).handleRepeatCall,
	"param":    (*CodeGenerator).handleParamCall,
	"button":   (*CodeGenerator).handleButtonCall,
	"toggle":   (*CodeGenerator).handleToggleCall,
	"dropdown": (*CodeGenerator).handleSelectCall,
}

// unwrapArgument returns the value node an Argument node wraps, or node
// itself if it isn't an Argument (defensive; every Call child produced
// by the parser is one).
func (g *CodeGenerator) unwrapArgument(node ast.Index) ast.Index {
	n := g.arena.Get(node)
	if n.Type == ast.Argument {
		return n.FirstChild
	}
	return node
}

// callArgNodes returns the unwrapped value node for each argument of a
// Call node, in order.
func (g *CodeGenerator) callArgNodes(node ast.Index) []ast.Index {
	children := g.arena.Children(node)
	out := make([]ast.Index, len(children))
	for i, c := range children {
		out[i] = g.unwrapArgument(c)
	}
	return out
}

func (g *CodeGenerator) visitCall(node ast.Index) uint16 {
	n := g.arena.Get(node)
	name := n.AsIdentifier().Name

	sym, ok := g.symbols.Lookup(name)
	if ok && sym.Kind == symtab.KindUserFunction {
		return g.handleUserFunctionCall(node, sym)
	}
	if ok && sym.Kind == symtab.KindFunctionValue {
		return g.handleFunctionValueCall(node, sym)
	}

	if handler, isSpecial := specialHandlers[name]; isSpecial {
		return handler(g, node)
	}

	if name == "mtof" {
		if result, handled := g.handleMtofCall(node); handled {
			return result
		}
	}

	return g.handleBuiltinCall(node, name)
}

// handleMtofCall special-cases mtof() on a multi-buffer argument: each
// midi value gets its own MTOF, producing a new multi-buffer of
// frequencies. Returns handled=false for a non-multi-buffer argument,
// letting the caller fall through to the generic builtin path.
func (g *CodeGenerator) handleMtofCall(node ast.Index) (uint16, bool) {
	args := g.callArgNodes(node)
	if len(args) != 1 {
		return 0, false
	}
	n := g.arena.Get(node)
	midiBuf := g.visit(args[0])
	if !g.isMultiBuffer(args[0]) {
		return 0, false
	}
	midiBufs := g.getMultiBuffers(args[0], midiBuf)
	freqBufs := make([]uint16, 0, len(midiBufs))
	for _, mb := range midiBufs {
		out := g.buffers.Allocate()
		if out == BufferUnused {
			g.error("E101", n.Location, "Buffer pool exhausted")
			return BufferUnused, true
		}
		g.emit(instr.MakeUnary(instr.MTOF, out, mb, 0))
		freqBufs = append(freqBufs, out)
	}
	return g.registerMultiBuffer(node, freqBufs), true
}

// handleBuiltinCall is the generic builtin path: visit arguments, fill
// missing optional arguments with 0.0 (the original's per-argument
// default table did not survive into the retrieved sources; a uniform
// zero default is the documented simplification), allocate the output
// buffer, and emit one instruction.
func (g *CodeGenerator) handleBuiltinCall(node ast.Index, name string) uint16 {
	n := g.arena.Get(node)
	info, ok := builtins.Lookup(name)
	if !ok {
		g.error("E107", n.Location, "Unknown function: "+name)
		return BufferUnused
	}

	args := g.callArgNodes(node)

	if info.RequiresState {
		count := g.nextCallCount(name)
		g.pushPath(pathSegment(name, count))
	}

	// out() with a single argument duplicates it to both channels.
	if name == "out" && len(args) == 1 {
		mono := g.visit(args[0])
		return g.emitBuiltin(n, info, []uint16{mono, mono})
	}

	total := int(info.InputCount) + int(info.OptionalCount)
	argBufs := make([]uint16, 0, total)
	for _, a := range args {
		argBufs = append(argBufs, g.visit(a))
	}
	for len(argBufs) < total {
		out := g.buffers.Allocate()
		if out == BufferUnused {
			g.error("E101", n.Location, "Buffer pool exhausted")
			return BufferUnused
		}
		g.emit(instr.MakeConst(out, 0))
		argBufs = append(argBufs, out)
	}

	result := g.emitBuiltin(n, info, argBufs)

	if info.RequiresState {
		g.popPath()
	}
	return result
}

// emitBuiltin allocates the output buffer, applies FM-detection to an
// upgradeable oscillator's frequency input, and emits the instruction.
func (g *CodeGenerator) emitBuiltin(n *ast.Node, info builtins.Info, argBufs []uint16) uint16 {
	out := g.buffers.Allocate()
	if out == BufferUnused {
		g.error("E101", n.Location, "Buffer pool exhausted")
		return BufferUnused
	}

	var stateID uint32
	if info.RequiresState {
		stateID = g.computeStateID()
	}

	inst := instr.Instruction{Opcode: info.Opcode, Out: out, Inputs: [5]uint16{BufferUnused, BufferUnused, BufferUnused, BufferUnused, BufferUnused}, State: stateID}
	for i := 0; i < len(argBufs) && i < 5; i++ {
		inst.Inputs[i] = argBufs[i]
	}

	op := info.Opcode
	if isUpgradeableOscillator(op) && len(argBufs) > 0 && g.isFMModulated(argBufs[0]) {
		inst.Opcode = upgradeForFM(op)
	}

	g.emit(inst)
	return out
}

func pathSegment(name string, count uint32) string {
	if count == 0 {
		return name
	}
	return name + "#" + itoa(count)
}

func itoa(v uint32) string {
	if v == 0 {
		return "0"
	}
	var buf [10]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}
