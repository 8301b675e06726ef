package flowscript

import (
	"encoding/binary"
	"fmt"
)

// DefaultLabelNameSize is the name field width used by Encode.
const DefaultLabelNameSize = 24

// Encode serializes p into the binary container read by Load. Sections are
// laid out in section type order with no padding between them. Label names
// longer than DefaultLabelNameSize-1 bytes are rejected.
func Encode(p *Program, order binary.ByteOrder) ([]byte, error) {
	type section struct {
		typ   SectionType
		size  int
		count int
		body  []byte
	}

	labelSize := DefaultLabelNameSize + labelTrailerSize
	encodeLabels := func(labels []Label) ([]byte, error) {
		buf := make([]byte, len(labels)*labelSize)
		for i, l := range labels {
			if len(l.Name) >= DefaultLabelNameSize {
				return nil, fmt.Errorf("label %q: name longer than %d bytes", l.Name, DefaultLabelNameSize-1)
			}
			off := i * labelSize
			copy(buf[off:], l.Name)
			order.PutUint32(buf[off+DefaultLabelNameSize:], uint32(l.InstructionIndex))
		}
		return buf, nil
	}

	procs, err := encodeLabels(p.ProcedureLabels)
	if err != nil {
		return nil, err
	}
	jumps, err := encodeLabels(p.JumpLabels)
	if err != nil {
		return nil, err
	}

	text := make([]byte, len(p.Text)*instructionSize)
	operand := false
	for i, in := range p.Text {
		off := i * instructionSize
		if operand {
			order.PutUint32(text[off:], in.Bits())
			operand = false
			continue
		}
		order.PutUint16(text[off:], uint16(in.Opcode))
		order.PutUint16(text[off+2:], uint16(in.OperandShort))
		operand = in.Opcode.Extended()
	}

	sections := []section{
		{SectionProcedureLabels, labelSize, len(p.ProcedureLabels), procs},
		{SectionJumpLabels, labelSize, len(p.JumpLabels), jumps},
		{SectionText, instructionSize, len(p.Text), text},
		{SectionMessageScript, 1, len(p.MessageScript), p.MessageScript},
		{SectionStrings, 1, len(p.Strings), p.Strings},
	}

	size := headerSize + len(sections)*sectionHeaderSize
	for _, s := range sections {
		size += len(s.body)
	}

	out := make([]byte, headerSize+len(sections)*sectionHeaderSize, size)
	order.PutUint32(out[0x04:], uint32(size))
	copy(out[magicOffset:], Magic[:])
	order.PutUint32(out[sectionCountOff:], uint32(len(sections)))

	for i, s := range sections {
		off := headerSize + i*sectionHeaderSize
		order.PutUint32(out[off:], uint32(s.typ))
		order.PutUint32(out[off+4:], uint32(s.size))
		order.PutUint32(out[off+8:], uint32(s.count))
		order.PutUint32(out[off+12:], uint32(len(out)))
		out = append(out, s.body...)
	}

	return out, nil
}
