package codegen

import "github.com/akkadolang/cedarc/internal/instr"

// isAudioRateProducer reports whether an opcode's output runs at audio
// rate and so could plausibly modulate another oscillator's frequency
// input fast enough to count as FM rather than slow vibrato.
func isAudioRateProducer(op instr.Opcode) bool {
	switch op {
	case instr.OSC_SIN, instr.OSC_TRI, instr.OSC_SAW, instr.OSC_SQR,
		instr.OSC_SQR_PWM, instr.OSC_SAW_PWM,
		instr.OSC_SIN_2X, instr.OSC_TRI_2X, instr.OSC_SAW_2X, instr.OSC_SQR_2X,
		instr.OSC_SIN_4X, instr.OSC_TRI_4X, instr.OSC_SAW_4X, instr.OSC_SQR_4X,
		instr.OSC_SQR_MINBLEP, instr.OSC_SQR_PWM_MINBLEP, instr.OSC_SQR_PWM_4X, instr.OSC_SAW_PWM_4X,
		instr.NOISE:
		return true
	default:
		return false
	}
}

// isUpgradeableOscillator reports whether op has a _4X oversampled
// variant that upgradeForFM can switch it to.
func isUpgradeableOscillator(op instr.Opcode) bool {
	switch op {
	case instr.OSC_SIN, instr.OSC_TRI, instr.OSC_SAW, instr.OSC_SQR,
		instr.OSC_SQR_PWM, instr.OSC_SAW_PWM:
		return true
	default:
		return false
	}
}

// upgradeForFM maps a base oscillator opcode to its oversampled _4X
// variant; opcodes with no such variant are returned unchanged.
func upgradeForFM(op instr.Opcode) instr.Opcode {
	switch op {
	case instr.OSC_SIN:
		return instr.OSC_SIN_4X
	case instr.OSC_TRI:
		return instr.OSC_TRI_4X
	case instr.OSC_SAW:
		return instr.OSC_SAW_4X
	case instr.OSC_SQR:
		return instr.OSC_SQR_4X
	case instr.OSC_SQR_PWM:
		return instr.OSC_SQR_PWM_4X
	case instr.OSC_SAW_PWM:
		return instr.OSC_SAW_PWM_4X
	default:
		return op
	}
}

// isFMModulated traces buffer back through the already-emitted
// instruction stream, walking through arithmetic (+ - * / ^) to see if
// it is ultimately fed by an audio-rate producer. It only looks
// backward through instructions emitted so far, since the generator
// visits arguments before the call that consumes them.
func (g *CodeGenerator) isFMModulated(buffer uint16) bool {
	for i := len(g.instructions) - 1; i >= 0; i-- {
		inst := g.instructions[i]
		if inst.Out != buffer {
			continue
		}
		if isAudioRateProducer(inst.Opcode) {
			return true
		}
		switch inst.Opcode {
		case instr.ADD, instr.SUB, instr.MUL, instr.DIV, instr.POW:
			if g.isFMModulated(inst.Inputs[0]) || g.isFMModulated(inst.Inputs[1]) {
				return true
			}
		}
		return false
	}
	return false
}
