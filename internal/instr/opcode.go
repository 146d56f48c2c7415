// Package instr defines the Cedar bytecode instruction format: a
// 20-byte fixed-width instruction with a packed opcode, rate/param byte,
// output buffer, up to five input buffers, and a state identity hash.
package instr

// Opcode identifies one VM operation. Values are grouped into bands of
// ten so future additions don't renumber existing opcodes (the wire
// format is a stable on-disk/network contract).
type Opcode uint8

const (
	// Stack/Constants (0-9)
	NOP        Opcode = 0
	PUSH_CONST Opcode = 1 // fill buffer with a constant (packed into state_id as IEEE-754)
	COPY       Opcode = 2

	// Arithmetic (10-19)
	ADD Opcode = 10
	SUB Opcode = 11
	MUL Opcode = 12
	DIV Opcode = 13
	POW Opcode = 14
	NEG Opcode = 15

	// Oscillators (20-29)
	OSC_SIN             Opcode = 20
	OSC_TRI             Opcode = 21
	OSC_SAW             Opcode = 22
	OSC_SQR             Opcode = 23
	OSC_RAMP            Opcode = 24
	OSC_PHASOR          Opcode = 25
	OSC_SQR_MINBLEP     Opcode = 26
	OSC_SQR_PWM         Opcode = 27
	OSC_SAW_PWM         Opcode = 28
	OSC_SQR_PWM_MINBLEP Opcode = 29

	// Filters (30-39)
	FILTER_SVF_LP    Opcode = 33
	FILTER_SVF_HP    Opcode = 34
	FILTER_SVF_BP    Opcode = 35
	FILTER_MOOG      Opcode = 36
	FILTER_DIODE     Opcode = 37
	FILTER_FORMANT   Opcode = 38
	FILTER_SALLENKEY Opcode = 39

	// Math (40-49)
	ABS   Opcode = 40
	SQRT  Opcode = 41
	LOG   Opcode = 42
	EXP   Opcode = 43
	MIN   Opcode = 44
	MAX   Opcode = 45
	CLAMP Opcode = 46
	WRAP  Opcode = 47
	FLOOR Opcode = 48
	CEIL  Opcode = 49

	// Utility (50-59)
	OUTPUT  Opcode = 50
	NOISE   Opcode = 51
	MTOF    Opcode = 52
	DC      Opcode = 53
	SLEW    Opcode = 54
	SAH     Opcode = 55
	ENV_GET Opcode = 56

	// Envelopes (60-69)
	ENV_ADSR     Opcode = 60
	ENV_AR       Opcode = 61
	ENV_FOLLOWER Opcode = 62

	// Samplers (63-69)
	SAMPLE_PLAY      Opcode = 63
	SAMPLE_PLAY_LOOP Opcode = 64

	// Delays & Reverbs (70-79)
	DELAY           Opcode = 70
	REVERB_FREEVERB Opcode = 71
	REVERB_DATTORRO Opcode = 72
	REVERB_FDN      Opcode = 73

	// Effects - Modulation (80-83)
	EFFECT_CHORUS  Opcode = 80
	EFFECT_FLANGER Opcode = 81
	EFFECT_PHASER  Opcode = 82
	EFFECT_COMB    Opcode = 83

	// Effects - Distortion (84-89, 96-99)
	DISTORT_TANH     Opcode = 84
	DISTORT_SOFT     Opcode = 85
	DISTORT_BITCRUSH Opcode = 86
	DISTORT_FOLD     Opcode = 87
	DISTORT_TUBE     Opcode = 88
	DISTORT_SMOOTH   Opcode = 89

	// Sequencers & Timing (90-95)
	CLOCK    Opcode = 90
	LFO      Opcode = 91
	SEQ_STEP Opcode = 92
	EUCLID   Opcode = 93
	TRIGGER  Opcode = 94
	TIMELINE Opcode = 95

	DISTORT_TAPE   Opcode = 96
	DISTORT_XFMR   Opcode = 97
	DISTORT_EXCITE Opcode = 98

	// Dynamics (100-109)
	DYNAMICS_COMP    Opcode = 100
	DYNAMICS_LIMITER Opcode = 101
	DYNAMICS_GATE    Opcode = 102

	// Oversampled oscillators (110-119), FM-detection upgrade targets
	OSC_SIN_2X     Opcode = 110
	OSC_SIN_4X     Opcode = 111
	OSC_SAW_2X     Opcode = 112
	OSC_SAW_4X     Opcode = 113
	OSC_SQR_2X     Opcode = 114
	OSC_SQR_4X     Opcode = 115
	OSC_TRI_2X     Opcode = 116
	OSC_TRI_4X     Opcode = 117
	OSC_SQR_PWM_4X Opcode = 118
	OSC_SAW_PWM_4X Opcode = 119

	// Trigonometric math (120-129)
	MATH_SIN   Opcode = 120
	MATH_COS   Opcode = 121
	MATH_TAN   Opcode = 122
	MATH_ASIN  Opcode = 123
	MATH_ACOS  Opcode = 124
	MATH_ATAN  Opcode = 125
	MATH_ATAN2 Opcode = 126

	// Hyperbolic math (130-139)
	MATH_SINH Opcode = 130
	MATH_COSH Opcode = 131
	MATH_TANH Opcode = 132

	INVALID Opcode = 255
)

// UnusedBuffer marks an input/output buffer slot as absent.
const UnusedBuffer uint16 = 0xFFFF
