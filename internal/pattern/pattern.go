// Package pattern expands a mini-notation AST subtree into a flat,
// timed event stream for one cycle: groups subdivide their time span,
// sequences rotate one child per cycle, polyrhythms play all children
// at once, choices pick one child at random, euclidean rhythms
// distribute hits via the Bjorklund algorithm, and modifiers adjust
// speed, duration, velocity, repeat count, or trigger chance.
package pattern

import (
	"math/rand"
	"sort"
	"time"

	"github.com/akkadolang/cedarc/internal/ast"
)

// EventType identifies what a pattern event triggers.
type EventType uint8

const (
	EventRest EventType = iota
	EventPitch
	EventSample
	EventChord
)

// Event is a single triggerable point within one cycle (0.0-1.0).
type Event struct {
	Type EventType

	Time     float32
	Duration float32

	Velocity float32
	Chance   float32

	MIDINote uint8 // Pitch

	SampleName    string // Sample
	SampleVariant uint8

	ChordRootMIDI  uint8 // Chord
	ChordIntervals []int8
}

// ShouldTrigger reports whether this event fires, given a uniform
// random draw in [0, 1).
func (e Event) ShouldTrigger(randomValue float32) bool { return randomValue < e.Chance }

func (e Event) IsRest() bool   { return e.Type == EventRest }
func (e Event) IsPitch() bool  { return e.Type == EventPitch }
func (e Event) IsSample() bool { return e.Type == EventSample }
func (e Event) IsChord() bool  { return e.Type == EventChord }

// EventStream is one cycle's worth of expanded pattern events.
type EventStream struct {
	Events []Event
}

func (s *EventStream) Len() int      { return len(s.Events) }
func (s *EventStream) Empty() bool   { return len(s.Events) == 0 }
func (s *EventStream) Add(e Event)   { s.Events = append(s.Events, e) }
func (s *EventStream) Clear()        { s.Events = s.Events[:0] }

// SortByTime orders events for playback.
func (s *EventStream) SortByTime() {
	sort.Slice(s.Events, func(i, j int) bool { return s.Events[i].Time < s.Events[j].Time })
}

// EventsInRange returns events with Time in [start, end).
func (s *EventStream) EventsInRange(start, end float32) []Event {
	var out []Event
	for _, e := range s.Events {
		if e.Time >= start && e.Time < end {
			out = append(out, e)
		}
	}
	return out
}

// Merge appends another stream's events (for polyrhythms).
func (s *EventStream) Merge(other EventStream) {
	s.Events = append(s.Events, other.Events...)
}

// ScaleTime multiplies every event's time and duration by factor.
func (s *EventStream) ScaleTime(factor float32) {
	for i := range s.Events {
		s.Events[i].Time *= factor
		s.Events[i].Duration *= factor
	}
}

// OffsetTime adds offset to every event's time.
func (s *EventStream) OffsetTime(offset float32) {
	for i := range s.Events {
		s.Events[i].Time += offset
	}
}

// EvalContext carries the current time span and accumulated velocity/
// chance modifiers as the evaluator descends the pattern tree.
type EvalContext struct {
	StartTime float32
	Duration  float32
	Velocity  float32
	Chance    float32
}

// Subdivide returns the context for child childIndex of childCount
// siblings evenly splitting the current time span.
func (c EvalContext) Subdivide(childIndex, childCount int) EvalContext {
	childDuration := c.Duration / float32(childCount)
	return EvalContext{
		StartTime: c.StartTime + childDuration*float32(childIndex),
		Duration:  childDuration,
		Velocity:  c.Velocity,
		Chance:    c.Chance,
	}
}

// Inherit returns an identical context, for polyrhythm children that
// all occupy the full parent span simultaneously.
func (c EvalContext) Inherit() EvalContext { return c }

// WithSpeed divides duration by factor (speeding playback up).
func (c EvalContext) WithSpeed(factor float32) EvalContext {
	c.Duration = c.Duration / factor
	return c
}

// WithVelocity multiplies the velocity modifier.
func (c EvalContext) WithVelocity(vel float32) EvalContext {
	c.Velocity = c.Velocity * vel
	return c
}

// WithChance multiplies the chance modifier.
func (c EvalContext) WithChance(ch float32) EvalContext {
	c.Chance = c.Chance * ch
	return c
}

// Evaluator expands a mini-notation AST subtree into an EventStream.
// It holds a PRNG for MiniChoice selection; construct with an explicit
// rand.Source for deterministic output across runs (e.g. in tests), or
// let NewEvaluator seed from the wall clock to match "seeds from random_device"
// for one-off live use.
type Evaluator struct {
	arena        *ast.Arena
	currentCycle uint32
	rng          *rand.Rand
}

// NewEvaluator creates an evaluator over arena. If src is nil, the PRNG
// is seeded from the current time.
func NewEvaluator(arena *ast.Arena, src rand.Source) *Evaluator {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &Evaluator{arena: arena, rng: rand.New(src)}
}

// Evaluate expands patternRoot (a MiniPattern node) into one cycle's
// event stream, sorted by time. cycle selects which MiniSequence
// alternative plays this time around.
func (e *Evaluator) Evaluate(patternRoot ast.Index, cycle uint32) EventStream {
	var stream EventStream
	e.currentCycle = cycle

	if patternRoot == ast.NullNode {
		return stream
	}

	ctx := EvalContext{StartTime: 0, Duration: 1, Velocity: 1, Chance: 1}
	e.evalNode(patternRoot, ctx, &stream)
	stream.SortByTime()
	return stream
}

func (e *Evaluator) evalNode(node ast.Index, ctx EvalContext, stream *EventStream) {
	if node == ast.NullNode {
		return
	}

	switch e.arena.Get(node).Type {
	case ast.MiniPattern:
		e.evalSubdivide(node, ctx, stream)
	case ast.MiniAtom:
		e.evalAtom(node, ctx, stream)
	case ast.MiniGroup:
		e.evalSubdivide(node, ctx, stream)
	case ast.MiniSequence:
		e.evalSequence(node, ctx, stream)
	case ast.MiniPolyrhythm:
		e.evalPolyrhythm(node, ctx, stream)
	case ast.MiniChoice:
		e.evalChoice(node, ctx, stream)
	case ast.MiniEuclidean:
		e.evalEuclidean(node, ctx, stream)
	case ast.MiniModified:
		e.evalModified(node, ctx, stream)
	default:
		// Not a mini-notation node - nothing to expand.
	}
}

// evalSubdivide handles MiniPattern and MiniGroup identically: both
// split their time span evenly among their direct children.
func (e *Evaluator) evalSubdivide(node ast.Index, ctx EvalContext, stream *EventStream) {
	children := e.arena.Children(node)
	if len(children) == 0 {
		return
	}
	for i, child := range children {
		e.evalNode(child, ctx.Subdivide(i, len(children)), stream)
	}
}

func (e *Evaluator) evalAtom(node ast.Index, ctx EvalContext, stream *EventStream) {
	data := e.arena.Get(node).AsMiniAtom()

	event := Event{
		Time:     ctx.StartTime,
		Duration: ctx.Duration,
		Velocity: ctx.Velocity,
		Chance:   ctx.Chance,
	}

	switch data.Kind {
	case ast.MiniAtomPitch:
		event.Type = EventPitch
		event.MIDINote = data.MIDINote
	case ast.MiniAtomSample:
		event.Type = EventSample
		event.SampleName = data.SampleName
		event.SampleVariant = data.SampleVariant
	case ast.MiniAtomChord:
		event.Type = EventChord
		event.ChordRootMIDI = data.ChordRootMIDI
		event.ChordIntervals = data.ChordIntervals
	case ast.MiniAtomRest:
		event.Type = EventRest
	}

	stream.Add(event)
}

// evalSequence plays one child per cycle, rotating through children()
// with the wrapping cycle counter - `<a b c>` plays a, then b, then c,
// then a again.
func (e *Evaluator) evalSequence(node ast.Index, ctx EvalContext, stream *EventStream) {
	children := e.arena.Children(node)
	if len(children) == 0 {
		return
	}
	selected := children[int(e.currentCycle)%len(children)]
	e.evalNode(selected, ctx, stream)
}

// evalPolyrhythm plays every child simultaneously across the full span.
func (e *Evaluator) evalPolyrhythm(node ast.Index, ctx EvalContext, stream *EventStream) {
	e.arena.ForEachChild(node, func(child ast.Index, _ *ast.Node) {
		e.evalNode(child, ctx.Inherit(), stream)
	})
}

// evalChoice picks one child at random each evaluation.
func (e *Evaluator) evalChoice(node ast.Index, ctx EvalContext, stream *EventStream) {
	children := e.arena.Children(node)
	if len(children) == 0 {
		return
	}
	selected := children[e.rng.Intn(len(children))]
	e.evalNode(selected, ctx, stream)
}

func (e *Evaluator) evalEuclidean(node ast.Index, ctx EvalContext, stream *EventStream) {
	n := e.arena.Get(node)
	data := n.AsMiniEuclidean()

	atom := n.FirstChild
	if atom == ast.NullNode {
		return
	}

	hits := GenerateEuclidean(data.Hits, data.Steps, data.Rotation)
	stepDuration := ctx.Duration / float32(data.Steps)

	for i, hit := range hits {
		if !hit {
			continue
		}
		stepCtx := EvalContext{
			StartTime: ctx.StartTime + stepDuration*float32(i),
			Duration:  stepDuration,
			Velocity:  ctx.Velocity,
			Chance:    ctx.Chance,
		}
		e.evalNode(atom, stepCtx, stream)
	}
}

func (e *Evaluator) evalModified(node ast.Index, ctx EvalContext, stream *EventStream) {
	n := e.arena.Get(node)
	data := n.AsMiniModifier()

	child := n.FirstChild
	if child == ast.NullNode {
		return
	}

	switch data.ModifierType {
	case ast.ModSpeed:
		e.evalNode(child, ctx.WithSpeed(data.Value), stream)
	case ast.ModSlow:
		newCtx := ctx
		newCtx.Duration = ctx.Duration * data.Value
		e.evalNode(child, newCtx, stream)
	case ast.ModDuration:
		newCtx := ctx
		newCtx.Duration = ctx.Duration * data.Value
		e.evalNode(child, newCtx, stream)
	case ast.ModWeight:
		e.evalNode(child, ctx.WithVelocity(data.Value), stream)
	case ast.ModRepeat:
		repeats := int(data.Value)
		if repeats <= 0 {
			return
		}
		repeatDuration := ctx.Duration / float32(repeats)
		for i := 0; i < repeats; i++ {
			repeatCtx := EvalContext{
				StartTime: ctx.StartTime + repeatDuration*float32(i),
				Duration:  repeatDuration,
				Velocity:  ctx.Velocity,
				Chance:    ctx.Chance,
			}
			e.evalNode(child, repeatCtx, stream)
		}
	case ast.ModChance:
		e.evalNode(child, ctx.WithChance(data.Value), stream)
	}
}

// GenerateEuclidean distributes hits pulses across steps positions via
// the Bjorklund algorithm, then rotates the result left by rotation
// positions.
func GenerateEuclidean(hits, steps, rotation uint8) []bool {
	if steps == 0 {
		return nil
	}
	if hits >= steps {
		out := make([]bool, steps)
		for i := range out {
			out[i] = true
		}
		return out
	}
	if hits == 0 {
		return make([]bool, steps)
	}

	groups := make([][]bool, steps)
	for i := uint8(0); i < steps; i++ {
		groups[i] = []bool{i < hits}
	}

	group1End := int(hits)
	group2Start := int(hits)

	for group2Start < len(groups) && len(groups)-group2Start > 1 {
		numToDistribute := group1End
		if remaining := len(groups) - group2Start; remaining < numToDistribute {
			numToDistribute = remaining
		}

		for i := 0; i < numToDistribute; i++ {
			groups[i] = append(groups[i], groups[group2Start+i]...)
		}

		groups = append(groups[:group2Start], groups[group2Start+numToDistribute:]...)

		group1End = numToDistribute
		group2Start = numToDistribute
	}

	var out []bool
	for _, g := range groups {
		out = append(out, g...)
	}

	if rotation > 0 && int(rotation) < len(out) {
		r := int(rotation)
		out = append(out[r:], out[:r]...)
	}

	return out
}

// Evaluate is a convenience wrapper equivalent to
// NewEvaluator(arena, nil).Evaluate(patternRoot, cycle).
func Evaluate(patternRoot ast.Index, arena *ast.Arena, cycle uint32) EventStream {
	return NewEvaluator(arena, nil).Evaluate(patternRoot, cycle)
}
