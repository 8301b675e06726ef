package disasm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowdis/internal/flowscript"
)

func TestFormatNoOperandAndShortRoundTrip(t *testing.T) {
	for _, op := range flowscript.Opcodes() {
		in := flowscript.Instruction{Opcode: op}
		var line string
		switch op.Shape() {
		case flowscript.ShapeNone:
			line = FormatNoOperand(in)
			assert.Equal(t, []string{op.String()}, strings.Fields(line))
			assert.NoError(t, CheckNoOperand(in))
		case flowscript.ShapeShort:
			line = FormatShortOperand(in)
			assert.Equal(t, []string{op.String(), "0"}, strings.Fields(line))
		default:
			continue
		}
		assert.Equal(t, strings.TrimSpace(line), line, "no surrounding whitespace for %s", op)
	}
}

func TestCheckNoOperand(t *testing.T) {
	err := CheckNoOperand(flowscript.Instruction{Opcode: flowscript.ADD, OperandShort: 3})
	require.ErrorIs(t, err, ErrUnexpectedOperand)
}

func TestFormatShortOperandSigned(t *testing.T) {
	in := flowscript.Instruction{Opcode: flowscript.PUSHIS, OperandShort: -7}
	assert.Equal(t, "PUSHIS -7", FormatShortOperand(in))
}

func TestFormatCommOperand(t *testing.T) {
	in := flowscript.Instruction{Opcode: flowscript.COMM, OperandShort: 102}
	assert.Equal(t, "COMM 102", FormatCommOperand(in))
}

func TestFormatIntOperand(t *testing.T) {
	in := flowscript.Instruction{Opcode: flowscript.PUSHI}
	assert.Equal(t, "PUSHI -12345", FormatIntOperand(in, flowscript.IntOperand(-12345)))
	assert.Equal(t, "PUSHI 2147483647", FormatIntOperand(in, flowscript.IntOperand(2147483647)))
}

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		name string
		in   float32
		want string
	}{
		{"one and a half", 1.5, "1.50"},
		{"whole", 3.0, "3.00"},
		{"zero", 0, "0.00"},
		{"negative", -2.25, "-2.25"},
		{"three digits", 0.125, "0.125"},
		{"tenth", 0.1, "0.10"},
		{"seven digits", 1.0 / 3.0, "0.3333333"},
		{"tiny rounds to zero", 0.00000001, "0.00"},
		{"large", 1048576, "1048576.00"},
		{"not exactly representable", 100.1, "100.10"},
		{"three fractional digits", 12.345, "12.345"},
		{"rounded to seven significant digits", 123.456789, "123.4568"},
		{"negative rounded", -0.1, "-0.10"},
		{"beyond seven significant digits", 123456789, "123456800.00"},
		{"nan", float32(nan()), "NaN"},
		{"positive infinity", float32(inf(1)), "Infinity"},
		{"negative infinity", float32(inf(-1)), "-Infinity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatFloat(tt.in))
		})
	}
}

func TestFormatFloatOperand(t *testing.T) {
	in := flowscript.Instruction{Opcode: flowscript.PUSHF}
	assert.Equal(t, "PUSHF 1.50f", FormatFloatOperand(in, flowscript.FloatOperand(1.5)))
	assert.Equal(t, "PUSHF 3.00f", FormatFloatOperand(in, flowscript.FloatOperand(3.0)))
	assert.Equal(t, "PUSHF 100.10f", FormatFloatOperand(in, flowscript.FloatOperand(100.1)))
}

func TestFormatStringRef(t *testing.T) {
	table := []byte("xx\x00hello\x00world")
	in := flowscript.Instruction{Opcode: flowscript.PUSHSTR, OperandShort: 3}

	line, err := FormatStringRef(in, table)
	require.NoError(t, err)
	assert.Equal(t, `PUSHSTR "hello"`, line)

	in.OperandShort = 9
	line, err = FormatStringRef(in, table)
	require.NoError(t, err)
	assert.Equal(t, `PUSHSTR "world"`, line, "unterminated string runs to the end of the table")

	in.OperandShort = 2
	line, err = FormatStringRef(in, table)
	require.NoError(t, err)
	assert.Equal(t, `PUSHSTR ""`, line)

	in.OperandShort = int16(len(table))
	_, err = FormatStringRef(in, table)
	assert.ErrorIs(t, err, ErrReferenceOutOfRange)
}

func TestReadStringLatin1(t *testing.T) {
	s, err := ReadString([]byte{'c', 0xE9, 0}, 0)
	require.NoError(t, err)
	assert.Equal(t, "cé", s)
}

func TestFormatLabelRef(t *testing.T) {
	labels := []flowscript.Label{{Name: "_0", InstructionIndex: 0}, {Name: "loop", InstructionIndex: 4}}

	line, err := FormatLabelRef(flowscript.Instruction{Opcode: flowscript.GOTO, OperandShort: 1}, labels)
	require.NoError(t, err)
	assert.Equal(t, "GOTO loop", line)

	_, err = FormatLabelRef(flowscript.Instruction{Opcode: flowscript.IF, OperandShort: 2}, labels)
	assert.ErrorIs(t, err, ErrReferenceOutOfRange)

	_, err = FormatLabelRef(flowscript.Instruction{Opcode: flowscript.CALL, OperandShort: -1}, labels)
	assert.ErrorIs(t, err, ErrReferenceOutOfRange, "negative operand reads as index 65535")
}
