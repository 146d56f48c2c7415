package codegen

import (
	"github.com/akkadolang/cedarc/internal/ast"
	"github.com/akkadolang/cedarc/internal/instr"
)

// registerMultiBuffer records node's element buffers for later
// multi-buffer-aware lookups (map/sum/fold/etc. operate over these,
// not over the single nodeBuffers entry). An empty slice collapses to
// a zero constant; a single-element slice needs no bookkeeping at all.
func (g *CodeGenerator) registerMultiBuffer(node ast.Index, bufs []uint16) uint16 {
	if len(bufs) == 0 {
		return g.emitZero(g.arena.Get(node).Location)
	}
	if len(bufs) > 1 {
		g.multiBuffers[node] = bufs
	}
	return bufs[0]
}

// isMultiBuffer reports whether node resolved to more than one buffer.
func (g *CodeGenerator) isMultiBuffer(node ast.Index) bool {
	bufs, ok := g.multiBuffers[node]
	return ok && len(bufs) > 1
}

// getMultiBuffers returns node's full element list, falling back to a
// 1-element slice wrapping single if node was never registered as a
// multi-buffer.
func (g *CodeGenerator) getMultiBuffers(node ast.Index, single uint16) []uint16 {
	if bufs, ok := g.multiBuffers[node]; ok {
		return bufs
	}
	return []uint16{single}
}

// finalizeResult collapses a computed element list back down to a
// single buffer reference, registering a multi-buffer only when there's
// more than one element.
func (g *CodeGenerator) finalizeResult(node ast.Index, bufs []uint16) uint16 {
	return g.registerMultiBuffer(node, bufs)
}

func (g *CodeGenerator) handleLenCall(node ast.Index) uint16 {
	n := g.arena.Get(node)
	args := g.callArgNodes(node)
	if len(args) != 1 {
		g.error("E141", n.Location, "len() expects exactly one argument")
		return BufferUnused
	}
	buf := g.visit(args[0])
	count := len(g.getMultiBuffers(args[0], buf))
	out := g.buffers.Allocate()
	if out == BufferUnused {
		g.error("E101", n.Location, "Buffer pool exhausted")
		return BufferUnused
	}
	g.emit(instr.MakeConst(out, float32(count)))
	return out
}

func (g *CodeGenerator) handleMapCall(node ast.Index) uint16 {
	n := g.arena.Get(node)
	args := g.callArgNodes(node)
	if len(args) != 2 {
		g.error("E133", n.Location, "map() expects exactly two arguments: array, function")
		return BufferUnused
	}
	ref, ok := g.resolveFunctionArg(args[1])
	if !ok {
		g.error("E130", n.Location, "map()'s second argument must be a function")
		return BufferUnused
	}

	arrayBuf := g.visit(args[0])
	count := g.nextCallCount("map")
	g.pushPath(pathSegment("map", count))

	var results []uint16
	if !g.isMultiBuffer(args[0]) {
		g.pushPath("elem0")
		results = []uint16{g.applyFunctionRef(ref, arrayBuf, n.Location)}
		g.popPath()
	} else {
		elems := g.getMultiBuffers(args[0], arrayBuf)
		results = make([]uint16, 0, len(elems))
		for i, e := range elems {
			g.pushPath("elem" + itoa(uint32(i)))
			results = append(results, g.applyFunctionRef(ref, e, n.Location))
			g.popPath()
		}
	}

	g.popPath()
	return g.finalizeResult(node, results)
}

func (g *CodeGenerator) handleSumCall(node ast.Index) uint16 {
	n := g.arena.Get(node)
	args := g.callArgNodes(node)
	if len(args) != 1 {
		g.error("E134", n.Location, "sum() expects exactly one argument")
		return BufferUnused
	}
	buf := g.visit(args[0])
	if !g.isMultiBuffer(args[0]) {
		return buf
	}
	elems := g.getMultiBuffers(args[0], buf)
	acc := elems[0]
	for _, e := range elems[1:] {
		out := g.buffers.Allocate()
		if out == BufferUnused {
			g.error("E101", n.Location, "Buffer pool exhausted")
			return BufferUnused
		}
		g.emit(instr.MakeBinary(instr.ADD, out, acc, e, 0))
		acc = out
	}
	return acc
}

func (g *CodeGenerator) handleFoldCall(node ast.Index) uint16 {
	n := g.arena.Get(node)
	args := g.callArgNodes(node)
	if len(args) != 3 {
		g.error("E142", n.Location, "fold() expects exactly three arguments: array, init, function")
		return BufferUnused
	}
	ref, ok := g.resolveFunctionArg(args[2])
	if !ok || len(ref.Params) < 2 {
		g.error("E143", n.Location, "fold()'s function argument must take two parameters")
		return BufferUnused
	}

	arrayBuf := g.visit(args[0])
	initBuf := g.visit(args[1])
	elems := g.getMultiBuffers(args[0], arrayBuf)

	count := g.nextCallCount("fold")
	g.pushPath(pathSegment("fold", count))

	acc := initBuf
	for i, e := range elems {
		g.pushPath("step" + itoa(uint32(i)))
		acc = g.applyBinaryFunctionRef(ref, acc, e, n.Location)
		g.popPath()
	}

	g.popPath()
	return acc
}

func (g *CodeGenerator) handleZipWithCall(node ast.Index) uint16 {
	n := g.arena.Get(node)
	args := g.callArgNodes(node)
	if len(args) != 3 {
		g.error("E144", n.Location, "zipWith() expects exactly three arguments: a, b, function")
		return BufferUnused
	}
	ref, ok := g.resolveFunctionArg(args[2])
	if !ok || len(ref.Params) < 2 {
		g.error("E145", n.Location, "zipWith()'s function argument must take two parameters")
		return BufferUnused
	}

	aBuf := g.visit(args[0])
	bBuf := g.visit(args[1])
	aElems := g.getMultiBuffers(args[0], aBuf)
	bElems := g.getMultiBuffers(args[1], bBuf)

	length := len(aElems)
	if len(bElems) < length {
		length = len(bElems)
	}

	count := g.nextCallCount("zipWith")
	g.pushPath(pathSegment("zipWith", count))

	results := make([]uint16, 0, length)
	for i := 0; i < length; i++ {
		g.pushPath("elem" + itoa(uint32(i)))
		results = append(results, g.applyBinaryFunctionRef(ref, aElems[i], bElems[i], n.Location))
		g.popPath()
	}

	g.popPath()
	return g.finalizeResult(node, results)
}

func (g *CodeGenerator) handleZipCall(node ast.Index) uint16 {
	n := g.arena.Get(node)
	args := g.callArgNodes(node)
	if len(args) != 2 {
		g.error("E146", n.Location, "zip() expects exactly two arguments")
		return BufferUnused
	}
	aBuf := g.visit(args[0])
	bBuf := g.visit(args[1])
	aElems := g.getMultiBuffers(args[0], aBuf)
	bElems := g.getMultiBuffers(args[1], bBuf)

	length := len(aElems)
	if len(bElems) < length {
		length = len(bElems)
	}

	results := make([]uint16, 0, length*2)
	for i := 0; i < length; i++ {
		results = append(results, aElems[i], bElems[i])
	}
	return g.finalizeResult(node, results)
}

func (g *CodeGenerator) handleTakeCall(node ast.Index) uint16 {
	n := g.arena.Get(node)
	args := g.callArgNodes(node)
	if len(args) != 2 {
		g.error("E147", n.Location, "take() expects exactly two arguments: n, array")
		return BufferUnused
	}
	countNode := g.arena.Get(args[0])
	if countNode.Type != ast.NumberLit {
		g.error("E148", n.Location, "take()'s count argument must be a literal number")
		return BufferUnused
	}
	count := int(countNode.AsNumber().Value)

	arrayBuf := g.visit(args[1])
	elems := g.getMultiBuffers(args[1], arrayBuf)
	if count > len(elems) {
		count = len(elems)
	}
	if count < 0 {
		count = 0
	}
	return g.finalizeResult(node, append([]uint16{}, elems[:count]...))
}

func (g *CodeGenerator) handleDropCall(node ast.Index) uint16 {
	n := g.arena.Get(node)
	args := g.callArgNodes(node)
	if len(args) != 2 {
		g.error("E149", n.Location, "drop() expects exactly two arguments: n, array")
		return BufferUnused
	}
	countNode := g.arena.Get(args[0])
	if countNode.Type != ast.NumberLit {
		g.error("E150", n.Location, "drop()'s count argument must be a literal number")
		return BufferUnused
	}
	count := int(countNode.AsNumber().Value)

	arrayBuf := g.visit(args[1])
	elems := g.getMultiBuffers(args[1], arrayBuf)
	if count > len(elems) {
		count = len(elems)
	}
	if count < 0 {
		count = 0
	}
	return g.finalizeResult(node, append([]uint16{}, elems[count:]...))
}

func (g *CodeGenerator) handleReverseCall(node ast.Index) uint16 {
	n := g.arena.Get(node)
	args := g.callArgNodes(node)
	if len(args) != 1 {
		g.error("E151", n.Location, "reverse() expects exactly one argument")
		return BufferUnused
	}
	buf := g.visit(args[0])
	if !g.isMultiBuffer(args[0]) {
		return buf
	}
	elems := g.getMultiBuffers(args[0], buf)
	reversed := make([]uint16, len(elems))
	for i, e := range elems {
		reversed[len(elems)-1-i] = e
	}
	return g.finalizeResult(node, reversed)
}

func (g *CodeGenerator) handleRangeCall(node ast.Index) uint16 {
	n := g.arena.Get(node)
	args := g.callArgNodes(node)
	if len(args) != 2 {
		g.error("E152", n.Location, "range() expects exactly two arguments: start, end")
		return BufferUnused
	}
	startNode := g.arena.Get(args[0])
	endNode := g.arena.Get(args[1])
	if startNode.Type != ast.NumberLit || endNode.Type != ast.NumberLit {
		g.error("E153", n.Location, "range()'s arguments must be literal numbers")
		return BufferUnused
	}
	start := int(startNode.AsNumber().Value)
	end := int(endNode.AsNumber().Value)

	step := 1
	if end < start {
		step = -1
	}

	var results []uint16
	for v := start; v != end; v += step {
		out := g.buffers.Allocate()
		if out == BufferUnused {
			g.error("E101", n.Location, "Buffer pool exhausted")
			return BufferUnused
		}
		g.emit(instr.MakeConst(out, float32(v)))
		results = append(results, out)
	}
	return g.finalizeResult(node, results)
}

func (g *CodeGenerator) handleRepeatCall(node ast.Index) uint16 {
	n := g.arena.Get(node)
	args := g.callArgNodes(node)
	if len(args) != 2 {
		g.error("E154", n.Location, "repeat() expects exactly two arguments: value, n")
		return BufferUnused
	}
	countNode := g.arena.Get(args[1])
	if countNode.Type != ast.NumberLit {
		g.error("E155", n.Location, "repeat()'s count argument must be a literal number")
		return BufferUnused
	}
	count := int(countNode.AsNumber().Value)

	valueBuf := g.visit(args[0])
	if count <= 0 {
		return g.emitZero(n.Location)
	}
	if count == 1 {
		return valueBuf
	}

	bufs := make([]uint16, count)
	for i := range bufs {
		bufs[i] = valueBuf
	}
	return g.finalizeResult(node, bufs)
}
