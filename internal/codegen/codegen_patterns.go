package codegen

import (
	"math"

	"github.com/akkadolang/cedarc/internal/ast"
	"github.com/akkadolang/cedarc/internal/instr"
	"github.com/akkadolang/cedarc/internal/pattern"
	"github.com/akkadolang/cedarc/internal/source"
)

const patternCycleLength float32 = 4.0

func midiToHz(midi uint8) float32 {
	return 440.0 * float32(math.Pow(2, (float64(midi)-69)/12))
}

// handleMiniLiteral lowers an inline pattern literal: pat("c4 e4 g4")
// or pat("bd sn", (trig, vel, pitch) -> ...). Patterns are evaluated
// once at compile time (cycle 0) and baked into a StateInitData the
// runtime sequencer replays; there is no per-cycle recomputation.
func (g *CodeGenerator) handleMiniLiteral(node ast.Index) uint16 {
	n := g.arena.Get(node)
	children := g.arena.Children(node)
	if len(children) == 0 {
		g.error("E114", n.Location, "Pattern has no parsed content")
		return BufferUnused
	}

	patternRoot := children[0]
	var trailingClosure ast.Index = ast.NullNode
	if len(children) > 1 {
		trailingClosure = children[1]
	}

	count := g.nextCallCount("pat")
	g.pushPath("pat#" + itoa(count))
	stateID := g.computeStateID()

	events := pattern.Evaluate(patternRoot, g.arena, 0)
	if events.Empty() {
		result := g.emitZero(n.Location)
		g.popPath()
		return result
	}

	isSample := false
	for _, e := range events.Events {
		if e.IsSample() {
			isSample = true
			break
		}
	}

	var result uint16
	if isSample {
		result = g.handleSamplePattern(n.Location, events, stateID)
	} else {
		result = g.handlePitchPattern(n.Location, events, stateID, trailingClosure)
	}

	g.popPath()
	return result
}

// handleSamplePattern builds the SEQ_STEP/SAMPLE_PLAY pair for a
// sample-triggering pattern and returns the played-audio buffer (not
// the raw sample-id buffer).
func (g *CodeGenerator) handleSamplePattern(loc source.Location, events pattern.EventStream, stateID uint32) uint16 {
	sampleIDBuf := g.buffers.Allocate()
	velocityBuf := g.buffers.Allocate()
	triggerBuf := g.buffers.Allocate()
	pitchBuf := g.buffers.Allocate()
	outputBuf := g.buffers.Allocate()
	if outputBuf == BufferUnused {
		g.error("E101", loc, "Buffer pool exhausted")
		return BufferUnused
	}

	g.emit(instr.MakeBinary(instr.SEQ_STEP, sampleIDBuf, velocityBuf, triggerBuf, stateID))

	init := StateInitData{StateID: stateID, Type: StateInitSeqStep, CycleLength: patternCycleLength}
	for _, e := range events.Events {
		init.Times = append(init.Times, e.Time*patternCycleLength)
		init.Velocities = append(init.Velocities, e.Velocity)
		if e.IsSample() {
			g.addRequiredSample(e.SampleName)
			init.Values = append(init.Values, float32(g.sampleID(e.SampleName)))
			init.SampleNames = append(init.SampleNames, e.SampleName)
		} else {
			init.Values = append(init.Values, 0)
			init.SampleNames = append(init.SampleNames, "")
		}
	}
	g.stateInits = append(g.stateInits, init)

	g.emit(instr.MakeConst(pitchBuf, 1.0))
	g.emit(instr.MakeQuaternary(instr.SAMPLE_PLAY, outputBuf, triggerBuf, pitchBuf, sampleIDBuf, BufferUnused, stateID+1))

	return outputBuf
}

// handlePitchPattern builds the SEQ_STEP for a pitch-triggering pattern.
// If the pattern carries a trailing closure, its (trigger, velocity,
// pitch) parameters are bound directly into the current scope and its
// body's result replaces the raw pitch buffer as the return value.
func (g *CodeGenerator) handlePitchPattern(loc source.Location, events pattern.EventStream, stateID uint32, trailingClosure ast.Index) uint16 {
	pitchBuf := g.buffers.Allocate()
	velocityBuf := g.buffers.Allocate()
	triggerBuf := g.buffers.Allocate()
	if triggerBuf == BufferUnused {
		g.error("E101", loc, "Buffer pool exhausted")
		return BufferUnused
	}

	g.emit(instr.MakeBinary(instr.SEQ_STEP, pitchBuf, velocityBuf, triggerBuf, stateID))

	init := StateInitData{StateID: stateID, Type: StateInitSeqStep, CycleLength: patternCycleLength}
	for _, e := range events.Events {
		init.Times = append(init.Times, e.Time*patternCycleLength)
		init.Velocities = append(init.Velocities, e.Velocity)
		if e.IsPitch() {
			init.Values = append(init.Values, midiToHz(e.MIDINote))
		} else {
			init.Values = append(init.Values, 0)
		}
		init.SampleNames = append(init.SampleNames, "")
	}
	g.stateInits = append(g.stateInits, init)

	if trailingClosure == ast.NullNode {
		return pitchBuf
	}

	params, body := g.closureParamsAndBody(trailingClosure)
	slots := []uint16{triggerBuf, velocityBuf, pitchBuf}
	for i, p := range params {
		if i >= len(slots) {
			break
		}
		info := g.closureParamInfo(p)
		g.symbols.DefineVariable(info.Name, slots[i])
	}
	if body == ast.NullNode {
		return pitchBuf
	}
	return g.visit(body)
}

// handlePatternReference lowers an Identifier that resolves to a
// pattern VARIABLE (as opposed to an inline MiniLiteral). It duplicates
// handleMiniLiteral's sample/pitch logic rather than delegating to it:
// referencing a pattern variable by name never carries a trailing
// closure, and referencing a sample pattern by name yields the raw
// SEQ_STEP sample-id output, not an auto-played signal. The path is the
// variable's own name (stable across every reference site), not a
// fresh pat#N counter.
func (g *CodeGenerator) handlePatternReference(name string, patternNode ast.Index, loc source.Location) uint16 {
	if patternNode == ast.NullNode {
		g.error("E123", loc, "Pattern variable has no parsed content")
		return BufferUnused
	}
	pn := g.arena.Get(patternNode)
	if pn.Type != ast.MiniLiteral {
		g.error("E124", loc, "Pattern variable does not reference a pattern literal")
		return BufferUnused
	}

	children := g.arena.Children(patternNode)
	if len(children) == 0 {
		g.error("E114", loc, "Pattern has no parsed content")
		return BufferUnused
	}
	patternRoot := children[0]

	g.pushPath(name)
	stateID := g.computeStateID()

	events := pattern.Evaluate(patternRoot, g.arena, 0)
	if events.Empty() {
		result := g.emitZero(loc)
		g.popPath()
		return result
	}

	isSample := false
	for _, e := range events.Events {
		if e.IsSample() {
			isSample = true
			break
		}
	}

	var result uint16
	if isSample {
		sampleIDBuf := g.buffers.Allocate()
		velocityBuf := g.buffers.Allocate()
		triggerBuf := g.buffers.Allocate()
		if triggerBuf == BufferUnused {
			g.error("E101", loc, "Buffer pool exhausted")
			g.popPath()
			return BufferUnused
		}
		g.emit(instr.MakeBinary(instr.SEQ_STEP, sampleIDBuf, velocityBuf, triggerBuf, stateID))

		init := StateInitData{StateID: stateID, Type: StateInitSeqStep, CycleLength: patternCycleLength}
		for _, e := range events.Events {
			init.Times = append(init.Times, e.Time*patternCycleLength)
			init.Velocities = append(init.Velocities, e.Velocity)
			if e.IsSample() {
				g.addRequiredSample(e.SampleName)
				init.Values = append(init.Values, float32(g.sampleID(e.SampleName)))
				init.SampleNames = append(init.SampleNames, e.SampleName)
			} else {
				init.Values = append(init.Values, 0)
				init.SampleNames = append(init.SampleNames, "")
			}
		}
		g.stateInits = append(g.stateInits, init)
		result = sampleIDBuf
	} else {
		pitchBuf := g.buffers.Allocate()
		velocityBuf := g.buffers.Allocate()
		triggerBuf := g.buffers.Allocate()
		if triggerBuf == BufferUnused {
			g.error("E101", loc, "Buffer pool exhausted")
			g.popPath()
			return BufferUnused
		}
		g.emit(instr.MakeBinary(instr.SEQ_STEP, pitchBuf, velocityBuf, triggerBuf, stateID))

		init := StateInitData{StateID: stateID, Type: StateInitSeqStep, CycleLength: patternCycleLength}
		for _, e := range events.Events {
			init.Times = append(init.Times, e.Time*patternCycleLength)
			init.Velocities = append(init.Velocities, e.Velocity)
			if e.IsPitch() {
				init.Values = append(init.Values, midiToHz(e.MIDINote))
			} else {
				init.Values = append(init.Values, 0)
			}
			init.SampleNames = append(init.SampleNames, "")
		}
		g.stateInits = append(g.stateInits, init)
		result = pitchBuf
	}

	g.popPath()
	return result
}

// --- chord() builtin ---

func (g *CodeGenerator) handleChordCall(node ast.Index) uint16 {
	n := g.arena.Get(node)
	args := g.callArgNodes(node)
	if len(args) != 1 {
		g.error("E125", n.Location, "chord() expects exactly one string argument")
		return BufferUnused
	}
	an := g.arena.Get(args[0])
	if an.Type != ast.StringLit {
		g.error("E126", n.Location, "chord()'s argument must be a string literal")
		return BufferUnused
	}

	chordStr := an.AsString().Value
	chords := parseChordPattern(chordStr)
	if len(chords) == 0 {
		g.error("E127", n.Location, "Could not parse chord pattern: "+chordStr)
		return BufferUnused
	}

	if len(chords) == 1 {
		return g.handleSingleChord(node, chords[0])
	}
	return g.handleChordProgression(node, chords)
}

func (g *CodeGenerator) handleSingleChord(node ast.Index, chord chordInfo) uint16 {
	n := g.arena.Get(node)
	notes := expandChord(chord, 4)
	if len(notes) == 0 {
		g.error("E128", n.Location, "Chord expanded to no notes")
		return BufferUnused
	}

	bufs := make([]uint16, 0, len(notes))
	for _, note := range notes {
		out := g.buffers.Allocate()
		if out == BufferUnused {
			g.error("E101", n.Location, "Buffer pool exhausted")
			return BufferUnused
		}
		g.emit(instr.MakeConst(out, float32(note)))
		bufs = append(bufs, out)
	}
	return g.registerMultiBuffer(node, bufs)
}

func (g *CodeGenerator) handleChordProgression(node ast.Index, chords []chordInfo) uint16 {
	n := g.arena.Get(node)

	maxVoices := 0
	expansions := make([][]int, len(chords))
	for i, c := range chords {
		expansions[i] = expandChord(c, 4)
		if len(expansions[i]) > maxVoices {
			maxVoices = len(expansions[i])
		}
	}
	if maxVoices == 0 {
		g.error("E128", n.Location, "Chord progression expanded to no notes")
		return BufferUnused
	}

	count := g.nextCallCount("chord")
	g.pushPath("chord#" + itoa(count))

	step := patternCycleLength / float32(len(chords))
	voiceBufs := make([]uint16, 0, maxVoices)

	for voice := 0; voice < maxVoices; voice++ {
		g.pushPath("voice" + itoa(uint32(voice)))
		stateID := g.computeStateID()

		pitchBuf := g.buffers.Allocate()
		velocityBuf := g.buffers.Allocate()
		triggerBuf := g.buffers.Allocate()
		if triggerBuf == BufferUnused {
			g.error("E101", n.Location, "Buffer pool exhausted")
			g.popPath()
			g.popPath()
			return BufferUnused
		}
		g.emit(instr.MakeBinary(instr.SEQ_STEP, pitchBuf, velocityBuf, triggerBuf, stateID))

		init := StateInitData{StateID: stateID, Type: StateInitSeqStep, CycleLength: patternCycleLength}
		for i, notes := range expansions {
			init.Times = append(init.Times, step*float32(i))
			init.Velocities = append(init.Velocities, 1.0)
			init.SampleNames = append(init.SampleNames, "")
			noteIdx := voice
			if noteIdx >= len(notes) {
				noteIdx = 0
			}
			if len(notes) == 0 {
				init.Values = append(init.Values, 0)
				continue
			}
			init.Values = append(init.Values, midiToHz(uint8(notes[noteIdx])))
		}
		g.stateInits = append(g.stateInits, init)

		voiceBufs = append(voiceBufs, pitchBuf)
		g.popPath()
	}

	g.popPath()
	return g.registerMultiBuffer(node, voiceBufs)
}
