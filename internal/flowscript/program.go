package flowscript

import "math"

// Instruction is one 32-bit slot of the text section.
type Instruction struct {
	Opcode       Opcode
	OperandShort int16
}

// IntOperand builds the companion slot that carries v for an extended int opcode.
func IntOperand(v int32) Instruction {
	return FromBits(uint32(v))
}

// FloatOperand builds the companion slot that carries f for an extended float opcode.
func FloatOperand(f float32) Instruction {
	return FromBits(math.Float32bits(f))
}

// FromBits splits a raw 32-bit slot into its opcode and short operand halves.
func FromBits(bits uint32) Instruction {
	return Instruction{
		Opcode:       Opcode(bits & 0xFFFF),
		OperandShort: int16(bits >> 16),
	}
}

// Bits returns the raw slot value.
func (in Instruction) Bits() uint32 {
	return uint32(in.Opcode) | uint32(uint16(in.OperandShort))<<16
}

// OperandInt reinterprets the slot as a signed 32-bit integer.
func (in Instruction) OperandInt() int32 {
	return int32(in.Bits())
}

// OperandFloat reinterprets the slot as an IEEE-754 single.
func (in Instruction) OperandFloat() float32 {
	return math.Float32frombits(in.Bits())
}

// Index returns the short operand as an unsigned table index or byte offset.
func (in Instruction) Index() int {
	return int(uint16(in.OperandShort))
}

// Label names an instruction index.
type Label struct {
	Name             string
	InstructionIndex int
}

// Program is a parsed FlowScript binary.
type Program struct {
	Text            []Instruction
	JumpLabels      []Label
	ProcedureLabels []Label
	Strings         []byte
	MessageScript   []byte
}
