package codegen

import (
	"github.com/akkadolang/cedarc/internal/ast"
	"github.com/akkadolang/cedarc/internal/diag"
	"github.com/akkadolang/cedarc/internal/fnv1a"
	"github.com/akkadolang/cedarc/internal/instr"
	"github.com/akkadolang/cedarc/internal/source"
	"github.com/akkadolang/cedarc/internal/symtab"
)

// CodeGenerator lowers a pipe-rewritten AST plus its symbol table into
// a flat Cedar instruction stream. One CodeGenerator is reused across
// compiles; Generate resets all per-compile state up front.
type CodeGenerator struct {
	arena          *ast.Arena
	symbols        *symtab.Table
	sampleRegistry SampleRegistry
	filename       string

	buffers      BufferAllocator
	instructions []instr.Instruction
	diags        *diag.Store

	stateInits      []StateInitData
	requiredSamples []string
	seenSamples     map[string]bool
	paramDecls      []ParamDecl

	pathStack     []string
	nodeBuffers   map[ast.Index]uint16
	callCounters  map[string]uint32
	multiBuffers  map[ast.Index][]uint16
	paramLiterals map[uint32]ast.Index
}

// New creates a CodeGenerator that reports into diags.
func New(diags *diag.Store) *CodeGenerator {
	return &CodeGenerator{diags: diags}
}

// Generate compiles tree into a flat instruction stream, resolving
// identifiers and builtins through symbols. registry may be nil, in
// which case sample names resolve to ID 0 (used by `check`/`dump`
// paths that never load an actual sample bank).
func (g *CodeGenerator) Generate(tree ast.AST, symbols *symtab.Table, filename string, registry SampleRegistry) Result {
	g.arena = tree.Arena
	g.symbols = symbols
	g.sampleRegistry = registry
	g.filename = filename

	g.buffers = BufferAllocator{}
	g.instructions = nil
	g.stateInits = nil
	g.requiredSamples = nil
	g.seenSamples = make(map[string]bool)
	g.paramDecls = nil
	g.pathStack = nil
	g.nodeBuffers = make(map[ast.Index]uint16)
	g.callCounters = make(map[string]uint32)
	g.multiBuffers = make(map[ast.Index][]uint16)
	g.paramLiterals = make(map[uint32]ast.Index)

	if !tree.Valid() {
		g.error("E100", source.Zero, "Invalid AST: no root node")
		return g.buildResult()
	}

	errsBefore := len(g.diags.All())

	g.pushPath("main")
	g.visit(tree.Root)
	g.popPath()

	_ = errsBefore
	return g.buildResult()
}

func (g *CodeGenerator) buildResult() Result {
	return Result{
		Instructions:    g.instructions,
		Diagnostics:     g.diags.All(),
		StateInits:      g.stateInits,
		RequiredSamples: g.requiredSamples,
		Params:          g.paramDecls,
		Success:         !g.diags.HasErrors(),
	}
}

// visit lowers one AST node to its result buffer, memoizing in
// nodeBuffers so a node referenced from multiple places (a shared
// function body, a symbol's stored source node) is only emitted once.
func (g *CodeGenerator) visit(node ast.Index) uint16 {
	if node == ast.NullNode {
		return BufferUnused
	}
	if buf, ok := g.nodeBuffers[node]; ok {
		return buf
	}

	n := g.arena.Get(node)
	var result uint16

	switch n.Type {
	case ast.Program:
		result = g.visitProgram(node)
	case ast.StringLit:
		result = BufferUnused
	case ast.NumberLit:
		result = g.visitNumberLit(node)
	case ast.BoolLit:
		result = g.visitBoolLit(node)
	case ast.PitchLit:
		result = g.visitPitchLit(node)
	case ast.ChordLit:
		result = g.visitChordLit(node)
	case ast.ArrayLit:
		result = g.visitArrayLit(node)
	case ast.Index_:
		result = g.visitIndex(node)
	case ast.Identifier:
		result = g.visitIdentifier(node)
	case ast.Assignment:
		result = g.visitAssignment(node)
	case ast.Call:
		result = g.visitCall(node)
	case ast.BinaryOp:
		result = g.visitBinaryOp(node)
	case ast.Hole:
		g.error("E110", n.Location, "Hole expression reached code generation")
		result = BufferUnused
	case ast.Block:
		result = g.visitBlock(node)
	case ast.Pipe:
		g.error("E111", n.Location, "Pipe expression should have been rewritten before code generation")
		result = BufferUnused
	case ast.Closure:
		result = g.handleClosure(node)
	case ast.MethodCall:
		g.error("E113", n.Location, "Method calls are not supported in MVP")
		result = BufferUnused
	case ast.MiniLiteral:
		result = g.handleMiniLiteral(node)
	case ast.PostStmt:
		g.error("E115", n.Location, "post() statements are not supported in MVP")
		result = BufferUnused
	case ast.FunctionDef:
		result = BufferUnused
	case ast.MatchExpr:
		result = g.handleMatchExpr(node)
	case ast.MatchArm:
		g.error("E122", n.Location, "Match arm visited outside its match expression")
		result = BufferUnused
	default:
		g.error("E199", n.Location, "Unsupported node type in code generation: "+n.Type.String())
		result = BufferUnused
	}

	g.nodeBuffers[node] = result
	return result
}

func (g *CodeGenerator) visitProgram(node ast.Index) uint16 {
	var last uint16 = BufferUnused
	g.arena.ForEachChild(node, func(idx ast.Index, _ *ast.Node) {
		last = g.visit(idx)
	})
	return last
}

func (g *CodeGenerator) visitBlock(node ast.Index) uint16 {
	return g.visitProgram(node)
}

func (g *CodeGenerator) visitNumberLit(node ast.Index) uint16 {
	n := g.arena.Get(node)
	out := g.buffers.Allocate()
	if out == BufferUnused {
		g.error("E101", n.Location, "Buffer pool exhausted")
		return BufferUnused
	}
	g.emit(instr.MakeConst(out, float32(n.AsNumber().Value)))
	return out
}

func (g *CodeGenerator) visitBoolLit(node ast.Index) uint16 {
	n := g.arena.Get(node)
	out := g.buffers.Allocate()
	if out == BufferUnused {
		g.error("E101", n.Location, "Buffer pool exhausted")
		return BufferUnused
	}
	val := float32(0)
	if n.AsBool().Value {
		val = 1
	}
	g.emit(instr.MakeConst(out, val))
	return out
}

func (g *CodeGenerator) visitPitchLit(node ast.Index) uint16 {
	n := g.arena.Get(node)
	return g.emitMIDIToFreq(n.Location, float32(n.AsPitch().MIDINote))
}

// emitMIDIToFreq emits a PUSH_CONST of a MIDI note followed by an MTOF,
// the shared shape used by pitch literals, chord roots, and pattern
// pitch events.
func (g *CodeGenerator) emitMIDIToFreq(loc source.Location, midi float32) uint16 {
	constBuf := g.buffers.Allocate()
	freqBuf := g.buffers.Allocate()
	if constBuf == BufferUnused || freqBuf == BufferUnused {
		g.error("E101", loc, "Buffer pool exhausted")
		return BufferUnused
	}
	g.emit(instr.MakeConst(constBuf, midi))
	g.emit(instr.MakeUnary(instr.MTOF, freqBuf, constBuf, 0))
	return freqBuf
}

func (g *CodeGenerator) visitChordLit(node ast.Index) uint16 {
	n := g.arena.Get(node)
	chord := n.AsChord()
	// MVP: only the chord's root note sounds; full chord expansion
	// would need array support at the literal-value level.
	constBuf := g.buffers.Allocate()
	freqBuf := g.buffers.Allocate()
	if constBuf == BufferUnused || freqBuf == BufferUnused {
		g.error("E101", n.Location, "Buffer pool exhausted")
		return BufferUnused
	}
	g.emit(instr.MakeConst(constBuf, float32(chord.RootMIDI)))
	g.emit(instr.MakeUnary(instr.MTOF, freqBuf, constBuf, 0))
	return freqBuf
}

func (g *CodeGenerator) visitArrayLit(node ast.Index) uint16 {
	n := g.arena.Get(node)
	children := g.arena.Children(node)
	if len(children) == 0 {
		return g.emitZero(n.Location)
	}
	bufs := make([]uint16, 0, len(children))
	for _, c := range children {
		bufs = append(bufs, g.visit(c))
	}
	if len(bufs) == 1 {
		return bufs[0]
	}
	return g.registerMultiBuffer(node, bufs)
}

// visitIndex is an MVP placeholder: it visits the array expression and
// returns its first element's buffer. Runtime-indexable arrays are not
// implemented.
func (g *CodeGenerator) visitIndex(node ast.Index) uint16 {
	children := g.arena.Children(node)
	if len(children) == 0 {
		return BufferUnused
	}
	arrayBuf := g.visit(children[0])
	bufs := g.getMultiBuffers(children[0], arrayBuf)
	if len(bufs) == 0 {
		return BufferUnused
	}
	return bufs[0]
}

func (g *CodeGenerator) visitIdentifier(node ast.Index) uint16 {
	n := g.arena.Get(node)
	name := n.AsIdentifier().Name

	sym, ok := g.symbols.Lookup(name)
	if !ok {
		g.error("E102", n.Location, "Undefined identifier: "+name)
		return BufferUnused
	}

	switch sym.Kind {
	case symtab.KindVariable, symtab.KindParameter:
		return sym.BufferIndex
	case symtab.KindPattern:
		return g.handlePatternReference(name, sym.Pattern.PatternNode, n.Location)
	case symtab.KindArray:
		result := g.visit(sym.Array.SourceNode)
		if g.isMultiBuffer(sym.Array.SourceNode) {
			g.registerMultiBuffer(node, g.getMultiBuffers(sym.Array.SourceNode, result))
		}
		return result
	case symtab.KindFunctionValue, symtab.KindUserFunction:
		return BufferUnused
	default:
		g.error("E103", n.Location, "Cannot use builtin as value: "+name)
		return BufferUnused
	}
}

func (g *CodeGenerator) visitAssignment(node ast.Index) uint16 {
	n := g.arena.Get(node)
	name := n.AsIdentifier().Name

	if sym, ok := g.symbols.Lookup(name); ok && sym.Kind == symtab.KindPattern {
		return BufferUnused
	}

	rhs := n.FirstChild
	g.pushPath(name)
	value := g.visit(rhs)
	g.popPath()

	if sym, ok := g.symbols.Lookup(name); ok && (sym.Kind == symtab.KindVariable || sym.Kind == symtab.KindParameter) {
		g.symbols.DefineVariable(name, value)
	}
	return BufferUnused
}

func (g *CodeGenerator) visitBinaryOp(node ast.Index) uint16 {
	n := g.arena.Get(node)
	op := n.AsBinaryOp().Op
	children := g.arena.Children(node)
	if len(children) != 2 {
		g.error("E108", n.Location, "Binary operator expects exactly two operands")
		return BufferUnused
	}
	lhs := g.visit(children[0])
	rhs := g.visit(children[1])
	out := g.buffers.Allocate()
	if out == BufferUnused {
		g.error("E101", n.Location, "Buffer pool exhausted")
		return BufferUnused
	}
	info, ok := g.symbols.Lookup(op.FuncName())
	if !ok {
		g.error("E109", n.Location, "Unknown binary operator function: "+op.FuncName())
		return BufferUnused
	}
	inst := instr.MakeBinary(info.Builtin.Opcode, out, lhs, rhs, 0)
	g.emit(inst)
	return out
}

// emitZero allocates a fresh buffer and fills it with a PUSH_CONST 0,
// the fallback used whenever an array/pattern expression has no
// elements/events to emit.
func (g *CodeGenerator) emitZero(loc source.Location) uint16 {
	out := g.buffers.Allocate()
	if out == BufferUnused {
		return BufferUnused
	}
	g.emit(instr.MakeConst(out, 0))
	return out
}

func (g *CodeGenerator) emit(inst instr.Instruction) {
	g.instructions = append(g.instructions, inst)
}

func (g *CodeGenerator) error(code string, loc source.Location, message string) {
	g.diags.Emit(diag.Error, code, message, loc)
}

func (g *CodeGenerator) warn(code string, loc source.Location, message string) {
	g.diags.Emit(diag.Warning, code, message, loc)
}

func (g *CodeGenerator) pushPath(segment string) {
	g.pathStack = append(g.pathStack, segment)
}

func (g *CodeGenerator) popPath() {
	if len(g.pathStack) > 0 {
		g.pathStack = g.pathStack[:len(g.pathStack)-1]
	}
}

// computeStateID hashes the joined semantic path stack, giving each
// stateful call site a stable identity that survives hot-swaps as long
// as the program's structural path to that call doesn't change.
func (g *CodeGenerator) computeStateID() uint32 {
	path := ""
	for i, seg := range g.pathStack {
		if i > 0 {
			path += "/"
		}
		path += seg
	}
	return fnv1a.Hash(path)
}

// nextCallCount returns the next disambiguating count for name (0 for
// the first occurrence) and advances the counter.
func (g *CodeGenerator) nextCallCount(name string) uint32 {
	n := g.callCounters[name]
	g.callCounters[name]++
	return n
}

func (g *CodeGenerator) addRequiredSample(name string) {
	if name == "" || g.seenSamples[name] {
		return
	}
	g.seenSamples[name] = true
	g.requiredSamples = append(g.requiredSamples, name)
}

func (g *CodeGenerator) sampleID(name string) uint32 {
	if g.sampleRegistry == nil {
		return 0
	}
	return g.sampleRegistry.GetID(name)
}
