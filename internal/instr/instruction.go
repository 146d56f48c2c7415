package instr

import (
	"encoding/binary"
	"math"
)

// Instruction is the 20-byte fixed-width bytecode word:
// [opcode:8][rate:8][out:16][in0..in4:16][state_id:32]
//
// rate doubles as a packed-parameter byte for opcodes that need one
// extra small value (e.g. LFO shape). state_id is a full 32-bit FNV-1a
// hash of the instruction's semantic path, used both for stable DSP
// state identity across hot-swaps and, for PUSH_CONST/DC, to carry a
// packed IEEE-754 float constant instead of a state hash.
type Instruction struct {
	Opcode Opcode
	Rate   uint8
	Out    uint16
	Inputs [5]uint16
	State  uint32
}

const byteSize = 20

func unusedInputs() [5]uint16 {
	return [5]uint16{UnusedBuffer, UnusedBuffer, UnusedBuffer, UnusedBuffer, UnusedBuffer}
}

func MakeNullary(op Opcode, out uint16, state uint32) Instruction {
	return Instruction{Opcode: op, Out: out, Inputs: unusedInputs(), State: state}
}

func MakeUnary(op Opcode, out, in0 uint16, state uint32) Instruction {
	ins := unusedInputs()
	ins[0] = in0
	return Instruction{Opcode: op, Out: out, Inputs: ins, State: state}
}

func MakeBinary(op Opcode, out, in0, in1 uint16, state uint32) Instruction {
	ins := unusedInputs()
	ins[0], ins[1] = in0, in1
	return Instruction{Opcode: op, Out: out, Inputs: ins, State: state}
}

func MakeTernary(op Opcode, out, in0, in1, in2 uint16, state uint32) Instruction {
	ins := unusedInputs()
	ins[0], ins[1], ins[2] = in0, in1, in2
	return Instruction{Opcode: op, Out: out, Inputs: ins, State: state}
}

func MakeQuaternary(op Opcode, out, in0, in1, in2, in3 uint16, state uint32) Instruction {
	ins := unusedInputs()
	ins[0], ins[1], ins[2], ins[3] = in0, in1, in2, in3
	return Instruction{Opcode: op, Out: out, Inputs: ins, State: state}
}

func MakeQuinary(op Opcode, out, in0, in1, in2, in3, in4 uint16, state uint32) Instruction {
	return Instruction{Opcode: op, Out: out, Inputs: [5]uint16{in0, in1, in2, in3, in4}, State: state}
}

// MakeConst builds a PUSH_CONST instruction whose value is packed into
// the state_id field as raw IEEE-754 bits (PUSH_CONST and DC have no
// DSP state of their own, so the field is repurposed as payload).
func MakeConst(out uint16, value float32) Instruction {
	return MakeNullary(PUSH_CONST, out, math.Float32bits(value))
}

// ConstValue unpacks the float constant carried in a PUSH_CONST or DC
// instruction's State field. Callers must check Opcode first.
func (in Instruction) ConstValue() float32 {
	return math.Float32frombits(in.State)
}

// Encode serializes the instruction to its 20-byte wire form, little-endian.
func (in Instruction) Encode() [byteSize]byte {
	var buf [byteSize]byte
	buf[0] = byte(in.Opcode)
	buf[1] = in.Rate
	binary.LittleEndian.PutUint16(buf[2:4], in.Out)
	for i, v := range in.Inputs {
		binary.LittleEndian.PutUint16(buf[4+i*2:6+i*2], v)
	}
	binary.LittleEndian.PutUint32(buf[14:18], in.State)
	// buf[18:20] reserved for future alignment/extension, always zero.
	return buf
}

// Decode parses a 20-byte wire instruction. Returns false if b is too short.
func Decode(b []byte) (Instruction, bool) {
	if len(b) < byteSize {
		return Instruction{}, false
	}
	var in Instruction
	in.Opcode = Opcode(b[0])
	in.Rate = b[1]
	in.Out = binary.LittleEndian.Uint16(b[2:4])
	for i := range in.Inputs {
		in.Inputs[i] = binary.LittleEndian.Uint16(b[4+i*2 : 6+i*2])
	}
	in.State = binary.LittleEndian.Uint32(b[14:18])
	return in, true
}

// EncodeProgram serializes a full instruction sequence.
func EncodeProgram(program []Instruction) []byte {
	out := make([]byte, 0, len(program)*byteSize)
	for _, in := range program {
		enc := in.Encode()
		out = append(out, enc[:]...)
	}
	return out
}

// DecodeProgram parses a byte slice as a sequence of 20-byte instructions.
func DecodeProgram(b []byte) ([]Instruction, bool) {
	if len(b)%byteSize != 0 {
		return nil, false
	}
	out := make([]Instruction, 0, len(b)/byteSize)
	for i := 0; i < len(b); i += byteSize {
		in, ok := Decode(b[i : i+byteSize])
		if !ok {
			return nil, false
		}
		out = append(out, in)
	}
	return out, true
}
