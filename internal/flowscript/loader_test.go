package flowscript

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProgram() *Program {
	return &Program{
		Text: []Instruction{
			{Opcode: PROC},
			{Opcode: PUSHI},
			IntOperand(-12345),
			{Opcode: PUSHF},
			FloatOperand(1.5),
			{Opcode: PUSHSTR, OperandShort: 0},
			{Opcode: COMM, OperandShort: 7},
			{Opcode: PUSHIS, OperandShort: -3},
			{Opcode: END},
		},
		JumpLabels:      []Label{{Name: "_1", InstructionIndex: 5}},
		ProcedureLabels: []Label{{Name: "main", InstructionIndex: 0}},
		Strings:         []byte("hello\x00"),
		MessageScript:   []byte{0xDE, 0xAD},
	}
}

func TestEncodeLoadRoundTrip(t *testing.T) {
	for _, order := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
		t.Run(order.String(), func(t *testing.T) {
			data, err := Encode(testProgram(), order)
			require.NoError(t, err)

			got, err := Load(data)
			require.NoError(t, err)
			assert.Equal(t, testProgram(), got)

			forced, err := Load(data, WithByteOrder(order))
			require.NoError(t, err)
			assert.Equal(t, got, forced)
		})
	}
}

func TestDetectByteOrder(t *testing.T) {
	le, err := Encode(&Program{}, binary.LittleEndian)
	require.NoError(t, err)
	be, err := Encode(&Program{}, binary.BigEndian)
	require.NoError(t, err)

	assert.Equal(t, binary.LittleEndian, DetectByteOrder(le, DefaultMaxSections))
	assert.Equal(t, binary.BigEndian, DetectByteOrder(be, DefaultMaxSections))
	assert.Equal(t, binary.LittleEndian, DetectByteOrder([]byte{1, 2}, DefaultMaxSections))
}

func TestLoadCompanionSlotIsOneWord(t *testing.T) {
	// In big endian files the companion word's halves do not line up with
	// the opcode/operand split of ordinary slots.
	p := &Program{Text: []Instruction{{Opcode: PUSHI}, IntOperand(0x00010002)}}
	data, err := Encode(p, binary.BigEndian)
	require.NoError(t, err)

	got, err := Load(data)
	require.NoError(t, err)
	require.Len(t, got.Text, 2)
	assert.Equal(t, int32(0x00010002), got.Text[1].OperandInt())
}

func TestLoadErrors(t *testing.T) {
	valid, err := Encode(testProgram(), binary.LittleEndian)
	require.NoError(t, err)

	corrupt := func(mutate func([]byte) []byte) []byte {
		data := make([]byte, len(valid))
		copy(data, valid)
		return mutate(data)
	}

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"short header", valid[:10], ErrTruncated},
		{"bad magic", corrupt(func(b []byte) []byte { b[8] = 'X'; return b }), ErrBadMagic},
		{"too many sections", corrupt(func(b []byte) []byte {
			binary.LittleEndian.PutUint32(b[sectionCountOff:], 1000)
			return b
		}), ErrBadSection},
		{"truncated section table", valid[:headerSize+sectionHeaderSize], ErrTruncated},
		{"truncated body", valid[:len(valid)-1], ErrTruncated},
		{"unknown section", corrupt(func(b []byte) []byte {
			binary.LittleEndian.PutUint32(b[headerSize:], 9)
			return b
		}), ErrBadSection},
		{"duplicate section", corrupt(func(b []byte) []byte {
			binary.LittleEndian.PutUint32(b[headerSize+sectionHeaderSize:], uint32(SectionProcedureLabels))
			return b
		}), ErrBadSection},
		{"bad instruction size", corrupt(func(b []byte) []byte {
			binary.LittleEndian.PutUint32(b[headerSize+2*sectionHeaderSize+4:], 2)
			return b
		}), ErrBadSection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.data, WithByteOrder(binary.LittleEndian))
			require.ErrorIs(t, err, tt.wantErr)

			var le *LoadError
			assert.True(t, errors.As(err, &le))
		})
	}
}

func TestLoadFile(t *testing.T) {
	data, err := Encode(testProgram(), binary.LittleEndian)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "script.bf")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	got, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, testProgram(), got)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.bf"))
	assert.Error(t, err)
}

func TestEncodeRejectsLongLabel(t *testing.T) {
	p := &Program{ProcedureLabels: []Label{{Name: "a_procedure_name_that_is_too_long"}}}
	_, err := Encode(p, binary.LittleEndian)
	assert.Error(t, err)
}
