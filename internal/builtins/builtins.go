// Package builtins maps Akkado builtin function names to Cedar VM
// opcodes, arities, and stateful/not-stateful classification, used by
// the semantic analyzer to resolve calls and by the code generator to
// emit instructions.
package builtins

import "github.com/akkadolang/cedarc/internal/instr"

// Info describes one builtin function's opcode mapping.
type Info struct {
	Opcode         instr.Opcode
	InputCount     uint8 // required inputs
	OptionalCount  uint8 // additional optional inputs (trailing)
	RequiresState  bool  // whether a semantic-path state ID must be computed
}

// Functions is the static name -> opcode table. Base oscillators here
// are the un-oversampled forms; the code generator's FM-detection pass
// upgrades eligible call sites to the 4x variants (instr.OSC_*_4X)
// internally — those are never looked up by name.
var Functions = map[string]Info{
	// Oscillators (1 input: frequency, stateful for phase)
	"sin":    {instr.OSC_SIN, 1, 0, true},
	"tri":    {instr.OSC_TRI, 1, 0, true},
	"saw":    {instr.OSC_SAW, 1, 0, true},
	"sqr":    {instr.OSC_SQR, 1, 0, true},
	"ramp":   {instr.OSC_RAMP, 1, 0, true},
	"phasor": {instr.OSC_PHASOR, 1, 0, true},

	// Filters (3 inputs: signal, cutoff, q; stateful for delay lines)
	"lp":            {instr.FILTER_SVF_LP, 3, 0, true},
	"hp":            {instr.FILTER_SVF_HP, 3, 0, true},
	"bp":            {instr.FILTER_SVF_BP, 3, 0, true},
	"svflp":         {instr.FILTER_SVF_LP, 3, 0, true},
	"svfhp":         {instr.FILTER_SVF_HP, 3, 0, true},
	"svfbp":         {instr.FILTER_SVF_BP, 3, 0, true},
	"moog":          {instr.FILTER_MOOG, 3, 0, true},
	"diode":         {instr.FILTER_DIODE, 3, 0, true},
	"formant":       {instr.FILTER_FORMANT, 3, 0, true},
	"sallenkey":     {instr.FILTER_SALLENKEY, 3, 0, true},

	// Arithmetic (2 inputs, stateless; from binary operator desugaring)
	"add": {instr.ADD, 2, 0, false},
	"sub": {instr.SUB, 2, 0, false},
	"mul": {instr.MUL, 2, 0, false},
	"div": {instr.DIV, 2, 0, false},
	"pow": {instr.POW, 2, 0, false},

	// Math unary
	"neg":   {instr.NEG, 1, 0, false},
	"abs":   {instr.ABS, 1, 0, false},
	"sqrt":  {instr.SQRT, 1, 0, false},
	"log":   {instr.LOG, 1, 0, false},
	"exp":   {instr.EXP, 1, 0, false},
	"floor": {instr.FLOOR, 1, 0, false},
	"ceil":  {instr.CEIL, 1, 0, false},

	// Trigonometric / hyperbolic math (pure functions, not oscillators)
	"msin":  {instr.MATH_SIN, 1, 0, false},
	"mcos":  {instr.MATH_COS, 1, 0, false},
	"mtan":  {instr.MATH_TAN, 1, 0, false},
	"asin":  {instr.MATH_ASIN, 1, 0, false},
	"acos":  {instr.MATH_ACOS, 1, 0, false},
	"atan":  {instr.MATH_ATAN, 1, 0, false},
	"atan2": {instr.MATH_ATAN2, 2, 0, false},
	"sinh":  {instr.MATH_SINH, 1, 0, false},
	"cosh":  {instr.MATH_COSH, 1, 0, false},
	"tanh":  {instr.MATH_TANH, 1, 0, false},

	// Math binary/ternary
	"min":   {instr.MIN, 2, 0, false},
	"max":   {instr.MAX, 2, 0, false},
	"clamp": {instr.CLAMP, 3, 0, false},
	"wrap":  {instr.WRAP, 3, 0, false},

	// Utility
	"noise": {instr.NOISE, 0, 0, true},
	"mtof":  {instr.MTOF, 1, 0, false},
	"dc":    {instr.DC, 1, 0, false},
	"slew":  {instr.SLEW, 2, 0, true},
	"sah":   {instr.SAH, 2, 0, true},

	// Envelopes
	"adsr":     {instr.ENV_ADSR, 4, 0, true}, // attack, decay, sustain, release
	"ar":       {instr.ENV_AR, 2, 0, true},   // attack, release
	"envfollow": {instr.ENV_FOLLOWER, 1, 0, true},

	// Sample playback (external sample registry, internal/samplebank)
	"play":     {instr.SAMPLE_PLAY, 1, 0, true},
	"playloop": {instr.SAMPLE_PLAY_LOOP, 1, 0, true},

	// Delay / reverb
	"delay":    {instr.DELAY, 2, 0, true}, // signal, time
	"reverb":   {instr.REVERB_FREEVERB, 3, 0, true}, // signal, roomsize, damp

	// Dynamics
	"compress": {instr.DYNAMICS_COMP, 3, 0, true}, // signal, threshold, ratio

	// Distortion
	"distort": {instr.DISTORT_TANH, 2, 0, false}, // signal, drive

	// Output (left + optional right; a single input is duplicated to both channels)
	"out": {instr.OUTPUT, 1, 1, false},

	// Timing/sequencing
	"clock":   {instr.CLOCK, 0, 0, false},
	"lfo":     {instr.LFO, 1, 1, true}, // rate (+ optional shape)
	"trigger": {instr.TRIGGER, 1, 0, true}, // division
	"euclid":  {instr.EUCLID, 2, 1, true},  // hits, steps (+ optional rotation)
	"seqstep": {instr.SEQ_STEP, 1, 0, true},
}

// Aliases maps convenience names to canonical builtin names.
var Aliases = map[string]string{
	"sine":     "sin",
	"triangle": "tri",
	"sawtooth": "saw",
	"square":   "sqr",
	"lowpass":  "lp",
	"highpass": "hp",
	"bandpass": "bp",
	"output":   "out",
	"moogladder": "moog",
}

// Lookup resolves a name (following aliases) to its Info. ok is false
// if the name is not a known builtin.
func Lookup(name string) (Info, bool) {
	info, ok := Functions[CanonicalName(name)]
	return info, ok
}

// CanonicalName resolves aliases to their canonical builtin name;
// non-alias names pass through unchanged.
func CanonicalName(name string) string {
	if canon, ok := Aliases[name]; ok {
		return canon
	}
	return name
}
