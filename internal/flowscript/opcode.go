// Package flowscript defines the in-memory form of a compiled FlowScript
// program: instruction records, label tables, the string table and the
// trailing message script payload.
package flowscript

import "fmt"

// Opcode identifies one instruction kind.
type Opcode uint16

const (
	PUSHI Opcode = iota
	PUSHF
	PUSHIX
	PUSHIF
	PUSHREG
	POPIX
	POPFX
	PROC
	COMM
	END
	JUMP
	CALL
	RUN
	GOTO
	ADD
	SUB
	MUL
	DIV
	MINUS
	NOT
	OR
	AND
	EQ
	NEQ
	S
	L
	SE
	LE
	IF
	PUSHIS
	PUSHLIX
	PUSHLFX
	POPLIX
	POPLFX
	PUSHSTR

	opcodeCount
)

// Shape classifies how an opcode's operand is encoded and rendered.
type Shape int

const (
	ShapeInvalid       Shape = iota
	ShapeNone                // no operand; the short field must be zero
	ShapeShort               // 16-bit immediate
	ShapeExtendedInt         // next slot holds an int32
	ShapeExtendedFloat       // next slot holds a float32
	ShapeStringRef           // short operand is a byte offset into the string table
	ShapeJumpRef             // short operand indexes the jump label table
	ShapeProcedureRef        // short operand indexes the procedure label table
	ShapeCommRef             // short operand selects an external function
)

var shapeNames = [...]string{
	ShapeInvalid:       "invalid",
	ShapeNone:          "none",
	ShapeShort:         "short",
	ShapeExtendedInt:   "extended-int",
	ShapeExtendedFloat: "extended-float",
	ShapeStringRef:     "string-ref",
	ShapeJumpRef:       "jump-ref",
	ShapeProcedureRef:  "procedure-ref",
	ShapeCommRef:       "comm-ref",
}

func (s Shape) String() string {
	if s >= 0 && int(s) < len(shapeNames) {
		return shapeNames[s]
	}
	return fmt.Sprintf("Shape(%d)", int(s))
}

// Extended reports whether the shape consumes the following instruction slot.
func (s Shape) Extended() bool {
	return s == ShapeExtendedInt || s == ShapeExtendedFloat
}

// OpcodeInfo holds metadata about an opcode.
type OpcodeInfo struct {
	Name        string
	Shape       Shape
	Description string
}

// opcodeTable is indexed by opcode; its length pins the table to opcodeCount.
var opcodeTable = [opcodeCount]OpcodeInfo{
	PUSHI:   {"PUSHI", ShapeExtendedInt, "push integer literal"},
	PUSHF:   {"PUSHF", ShapeExtendedFloat, "push float literal"},
	PUSHIX:  {"PUSHIX", ShapeShort, "push global int variable"},
	PUSHIF:  {"PUSHIF", ShapeShort, "push global float variable"},
	PUSHREG: {"PUSHREG", ShapeNone, "push result register"},
	POPIX:   {"POPIX", ShapeShort, "pop into global int variable"},
	POPFX:   {"POPFX", ShapeShort, "pop into global float variable"},
	PROC:    {"PROC", ShapeProcedureRef, "begin procedure"},
	COMM:    {"COMM", ShapeCommRef, "call native function"},
	END:     {"END", ShapeNone, "end procedure"},
	JUMP:    {"JUMP", ShapeJumpRef, "unconditional jump"},
	CALL:    {"CALL", ShapeProcedureRef, "call procedure"},
	RUN:     {"RUN", ShapeShort, "run script"},
	GOTO:    {"GOTO", ShapeJumpRef, "jump to label"},
	ADD:     {"ADD", ShapeNone, "add"},
	SUB:     {"SUB", ShapeNone, "subtract"},
	MUL:     {"MUL", ShapeNone, "multiply"},
	DIV:     {"DIV", ShapeNone, "divide"},
	MINUS:   {"MINUS", ShapeNone, "negate"},
	NOT:     {"NOT", ShapeNone, "logical not"},
	OR:      {"OR", ShapeNone, "logical or"},
	AND:     {"AND", ShapeNone, "logical and"},
	EQ:      {"EQ", ShapeNone, "equal"},
	NEQ:     {"NEQ", ShapeNone, "not equal"},
	S:       {"S", ShapeNone, "less than"},
	L:       {"L", ShapeNone, "greater than"},
	SE:      {"SE", ShapeNone, "less than or equal"},
	LE:      {"LE", ShapeNone, "greater than or equal"},
	IF:      {"IF", ShapeJumpRef, "jump to label if false"},
	PUSHIS:  {"PUSHIS", ShapeShort, "push short literal"},
	PUSHLIX: {"PUSHLIX", ShapeShort, "push local int variable"},
	PUSHLFX: {"PUSHLFX", ShapeShort, "push local float variable"},
	POPLIX:  {"POPLIX", ShapeShort, "pop into local int variable"},
	POPLFX:  {"POPLFX", ShapeShort, "pop into local float variable"},
	PUSHSTR: {"PUSHSTR", ShapeStringRef, "push string literal"},
}

// Opcodes returns every defined opcode in numeric order.
func Opcodes() []Opcode {
	ops := make([]Opcode, 0, opcodeCount)
	for op := Opcode(0); op < opcodeCount; op++ {
		ops = append(ops, op)
	}
	return ops
}

// Info returns the metadata for op. ok is false for values outside the table.
func (op Opcode) Info() (info OpcodeInfo, ok bool) {
	if op >= opcodeCount {
		return OpcodeInfo{}, false
	}
	return opcodeTable[op], true
}

// Valid reports whether op is a known opcode.
func (op Opcode) Valid() bool {
	return op < opcodeCount
}

// Shape returns the operand shape, or ShapeInvalid for unknown opcodes.
func (op Opcode) Shape() Shape {
	info, ok := op.Info()
	if !ok {
		return ShapeInvalid
	}
	return info.Shape
}

// Extended reports whether op consumes the following slot as its operand.
func (op Opcode) Extended() bool {
	return op.Shape().Extended()
}

func (op Opcode) String() string {
	if info, ok := op.Info(); ok {
		return info.Name
	}
	return fmt.Sprintf("Opcode(%d)", uint16(op))
}

// ParseOpcode looks up an opcode by its mnemonic.
func ParseOpcode(name string) (Opcode, bool) {
	for op := Opcode(0); op < opcodeCount; op++ {
		if opcodeTable[op].Name == name {
			return op, true
		}
	}
	return 0, false
}
