package flowscript

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
)

var (
	ErrBadMagic   = errors.New("bad magic")
	ErrTruncated  = errors.New("truncated data")
	ErrBadSection = errors.New("bad section")
)

// Magic identifies a FlowScript binary.
var Magic = [4]byte{'F', 'L', 'W', '0'}

const (
	headerSize        = 0x20
	sectionHeaderSize = 0x10
	magicOffset       = 0x08
	sectionCountOff   = 0x10
	instructionSize   = 4
	labelTrailerSize  = 8

	// DefaultMaxSections bounds the section count accepted from a header.
	DefaultMaxSections = 16
)

// SectionType identifies a section in the section table.
type SectionType uint32

const (
	SectionProcedureLabels SectionType = iota
	SectionJumpLabels
	SectionText
	SectionMessageScript
	SectionStrings
)

func (t SectionType) String() string {
	switch t {
	case SectionProcedureLabels:
		return "procedure labels"
	case SectionJumpLabels:
		return "jump labels"
	case SectionText:
		return "text"
	case SectionMessageScript:
		return "message script"
	case SectionStrings:
		return "strings"
	default:
		return fmt.Sprintf("section type %d", uint32(t))
	}
}

// LoadError locates a structural problem in a binary.
type LoadError struct {
	Offset  int
	Section string
	Err     error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("flowscript: %s at offset 0x%X: %v", e.Section, e.Offset, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

type sectionHeader struct {
	Type         SectionType
	ElementSize  uint32
	ElementCount uint32
	Address      uint32
}

type loadOptions struct {
	order       binary.ByteOrder
	maxSections int
}

// LoadOption configures Load.
type LoadOption func(*loadOptions)

// WithByteOrder disables byte order detection.
func WithByteOrder(order binary.ByteOrder) LoadOption {
	return func(o *loadOptions) {
		o.order = order
	}
}

// WithMaxSections overrides DefaultMaxSections.
func WithMaxSections(n int) LoadOption {
	return func(o *loadOptions) {
		if n > 0 {
			o.maxSections = n
		}
	}
}

// LoadFile reads and parses the binary at path.
func LoadFile(path string, opts ...LoadOption) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Load(data, opts...)
}

// Load parses a FlowScript binary. Only the container structure is checked;
// label and string references are resolved later by the disassembler.
func Load(data []byte, opts ...LoadOption) (*Program, error) {
	o := loadOptions{maxSections: DefaultMaxSections}
	for _, opt := range opts {
		opt(&o)
	}

	if len(data) < headerSize {
		return nil, &LoadError{Offset: len(data), Section: "header", Err: ErrTruncated}
	}
	if !bytes.Equal(data[magicOffset:magicOffset+len(Magic)], Magic[:]) {
		return nil, &LoadError{Offset: magicOffset, Section: "header", Err: ErrBadMagic}
	}

	order := o.order
	if order == nil {
		order = DetectByteOrder(data, o.maxSections)
	}

	count := int(order.Uint32(data[sectionCountOff:]))
	if count > o.maxSections {
		return nil, &LoadError{
			Offset:  sectionCountOff,
			Section: "header",
			Err:     fmt.Errorf("%w: %d sections exceeds limit %d", ErrBadSection, count, o.maxSections),
		}
	}
	if len(data) < headerSize+count*sectionHeaderSize {
		return nil, &LoadError{Offset: len(data), Section: "section table", Err: ErrTruncated}
	}

	p := &Program{}
	seen := make(map[SectionType]bool, count)
	for i := 0; i < count; i++ {
		off := headerSize + i*sectionHeaderSize
		h := sectionHeader{
			Type:         SectionType(order.Uint32(data[off:])),
			ElementSize:  order.Uint32(data[off+4:]),
			ElementCount: order.Uint32(data[off+8:]),
			Address:      order.Uint32(data[off+12:]),
		}
		if seen[h.Type] {
			return nil, &LoadError{Offset: off, Section: h.Type.String(), Err: fmt.Errorf("%w: duplicate section", ErrBadSection)}
		}
		seen[h.Type] = true
		if h.ElementCount == 0 {
			continue
		}

		body, err := sectionBody(data, h)
		if err != nil {
			return nil, &LoadError{Offset: int(h.Address), Section: h.Type.String(), Err: err}
		}

		switch h.Type {
		case SectionProcedureLabels:
			p.ProcedureLabels, err = readLabels(body, h, order)
		case SectionJumpLabels:
			p.JumpLabels, err = readLabels(body, h, order)
		case SectionText:
			p.Text, err = readText(body, h, order)
		case SectionMessageScript:
			p.MessageScript, err = readBytes(body, h)
		case SectionStrings:
			p.Strings, err = readBytes(body, h)
		default:
			err = fmt.Errorf("%w: unknown section type %d", ErrBadSection, uint32(h.Type))
		}
		if err != nil {
			return nil, &LoadError{Offset: int(h.Address), Section: h.Type.String(), Err: err}
		}
	}

	return p, nil
}

// DetectByteOrder guesses the byte order from the header's section count.
// Little endian wins when both readings are plausible.
func DetectByteOrder(data []byte, maxSections int) binary.ByteOrder {
	if len(data) < sectionCountOff+4 {
		return binary.LittleEndian
	}
	le := binary.LittleEndian.Uint32(data[sectionCountOff:])
	if le > 0 && le <= uint32(maxSections) {
		return binary.LittleEndian
	}
	be := binary.BigEndian.Uint32(data[sectionCountOff:])
	if be > 0 && be <= uint32(maxSections) {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

func sectionBody(data []byte, h sectionHeader) ([]byte, error) {
	size := uint64(h.ElementSize) * uint64(h.ElementCount)
	end := uint64(h.Address) + size
	if end > uint64(len(data)) {
		return nil, fmt.Errorf("%w: section ends at 0x%X, file is 0x%X bytes", ErrTruncated, end, len(data))
	}
	return data[h.Address:end], nil
}

func readLabels(body []byte, h sectionHeader, order binary.ByteOrder) ([]Label, error) {
	if h.ElementSize <= labelTrailerSize {
		return nil, fmt.Errorf("%w: label size %d", ErrBadSection, h.ElementSize)
	}
	nameLen := int(h.ElementSize) - labelTrailerSize
	labels := make([]Label, 0, h.ElementCount)
	for off := 0; off+int(h.ElementSize) <= len(body); off += int(h.ElementSize) {
		name := body[off : off+nameLen]
		if i := bytes.IndexByte(name, 0); i >= 0 {
			name = name[:i]
		}
		labels = append(labels, Label{
			Name:             string(name),
			InstructionIndex: int(order.Uint32(body[off+nameLen:])),
		})
	}
	return labels, nil
}

func readText(body []byte, h sectionHeader, order binary.ByteOrder) ([]Instruction, error) {
	if h.ElementSize != instructionSize {
		return nil, fmt.Errorf("%w: instruction size %d", ErrBadSection, h.ElementSize)
	}
	text := make([]Instruction, 0, h.ElementCount)
	operand := false
	for off := 0; off+instructionSize <= len(body); off += instructionSize {
		var in Instruction
		if operand {
			// The companion slot is a single 32-bit word in file order.
			in = FromBits(order.Uint32(body[off:]))
			operand = false
		} else {
			in = Instruction{
				Opcode:       Opcode(order.Uint16(body[off:])),
				OperandShort: int16(order.Uint16(body[off+2:])),
			}
			operand = in.Opcode.Extended()
		}
		text = append(text, in)
	}
	return text, nil
}

func readBytes(body []byte, h sectionHeader) ([]byte, error) {
	if h.ElementSize != 1 {
		return nil, fmt.Errorf("%w: element size %d", ErrBadSection, h.ElementSize)
	}
	out := make([]byte, len(body))
	copy(out, body)
	return out, nil
}
