// Package codegen lowers an analyzed, pipe-rewritten AST into a Cedar
// bytecode instruction sequence: buffer allocation, multi-buffer
// (polyphonic/array) bookkeeping, semantic-path state identity, and
// FM-detection oscillator upgrades.
package codegen

import (
	"github.com/akkadolang/cedarc/internal/diag"
	"github.com/akkadolang/cedarc/internal/instr"
)

// StateInitType identifies the shape of a StateInitData record. SeqStep
// is the only sequencer state the generator currently initializes;
// envelope/filter/delay state is zero-initialized by the VM itself and
// needs no compile-time descriptor.
type StateInitType uint8

const (
	StateInitSeqStep StateInitType = iota
)

// StateInitData seeds one piece of sequencer state: a pattern literal,
// a pattern-variable reference, or one voice of a chord progression.
// CycleLength is always 4 beats, matching the sequencer's fixed-length
// cycle convention.
type StateInitData struct {
	StateID     uint32
	Type        StateInitType
	CycleLength float32
	Times       []float32
	Values      []float32
	Velocities  []float32
	SampleNames []string
}

// ParamDecl describes one UI-exposed control declared via param(),
// button(), toggle(), or dropdown(). Host tooling uses this list to
// auto-generate a control surface; the audio thread reads the current
// value through the ENV_GET instruction tied to StateID.
type ParamDecl struct {
	Name     string
	Kind     ParamKind
	Default  float32
	Min      float32
	Max      float32
	Options  []string
	StateID  uint32
}

// ParamKind identifies which exposed-parameter builtin produced a ParamDecl.
type ParamKind uint8

const (
	ParamKnob ParamKind = iota
	ParamButton
	ParamToggle
	ParamDropdown
)

// SampleRegistry resolves a sample name to the integer ID the VM's
// sample-playback opcodes key playback state by. The sample bank itself
// (decoding, pack loading) lives outside this package.
type SampleRegistry interface {
	GetID(name string) uint32
}

// Result is the outcome of one Generate call.
type Result struct {
	Instructions     []instr.Instruction
	Diagnostics      []diag.Diagnostic
	StateInits       []StateInitData
	RequiredSamples  []string
	Params           []ParamDecl
	Success          bool
}
