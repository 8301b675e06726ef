// Package disasm renders a FlowScript program as assembly text.
//
// A pass writes a header comment, the .text section with jump labels placed
// before the instruction they name, and a hex dump of the message script
// payload in the .msgdata section.
package disasm

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"flowdis/internal/flowscript"
)

// DefaultHeader is the comment written at the top of every listing.
const DefaultHeader = "This file was generated by flowdis"

const (
	textSection    = ".text"
	messageSection = ".msgdata raw"
)

// Diagnostics receives integrity warnings. A *log.Logger satisfies it.
type Diagnostics interface {
	Warn(msg interface{}, keyvals ...interface{})
}

// Disassembler writes listings to a single Output.
type Disassembler struct {
	out     Output
	header  string
	diag    Diagnostics
	lenient bool
}

// Option configures a Disassembler.
type Option func(*Disassembler)

// WithHeader replaces DefaultHeader.
func WithHeader(header string) Option {
	return func(d *Disassembler) {
		d.header = header
	}
}

// WithDiagnostics routes warnings to diag instead of the default logger.
func WithDiagnostics(diag Diagnostics) Option {
	return func(d *Disassembler) {
		if diag != nil {
			d.diag = diag
		}
	}
}

// WithLenientReferences makes out-of-range label references warnings. The
// instruction is rendered with a placeholder operand. Out-of-range string
// offsets are always warnings and render as an empty string.
func WithLenientReferences() Option {
	return func(d *Disassembler) {
		d.lenient = true
	}
}

// New returns a Disassembler writing to out. The Disassembler owns out from
// here on and releases it in Close.
func New(out Output, opts ...Option) *Disassembler {
	d := &Disassembler{
		out:    out,
		header: DefaultHeader,
		diag:   log.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Close releases the output. It is safe to call more than once.
func (d *Disassembler) Close() error {
	return d.out.Close()
}

// Disassemble writes one complete listing of p. p is not modified.
func (d *Disassembler) Disassemble(p *flowscript.Program) error {
	if p == nil {
		return errors.New("disasm: nil program")
	}
	if err := d.putHeader(); err != nil {
		return err
	}
	if err := d.putText(p); err != nil {
		return err
	}
	return d.putMessageScript(p)
}

func (d *Disassembler) putHeader() error {
	if err := d.out.PutCommentLine(d.header); err != nil {
		return writeErr(err)
	}
	if err := d.out.PutNewline(); err != nil {
		return writeErr(err)
	}
	return nil
}

func (d *Disassembler) putText(p *flowscript.Program) error {
	if err := d.out.PutLine(textSection); err != nil {
		return writeErr(err)
	}

	labels := labelsByIndex(p.JumpLabels)
	placed := make(map[int]bool, len(labels))

	for i := 0; i < len(p.Text); {
		for _, name := range labels[i] {
			if err := d.out.PutLine(name + ":"); err != nil {
				return writeErr(err)
			}
			placed[i] = true
		}

		in := p.Text[i]
		line, err := d.instruction(p, i)
		if err != nil {
			return err
		}
		if err := d.out.PutLine(line); err != nil {
			return writeErr(err)
		}

		if in.Opcode == flowscript.END {
			if next, ok := peek(p.Text, i); ok && next.Opcode != flowscript.END {
				if err := d.out.PutNewline(); err != nil {
					return writeErr(err)
				}
			}
		}

		if in.Opcode.Extended() {
			i += 2
		} else {
			i++
		}
	}

	for _, l := range p.JumpLabels {
		if !placed[l.InstructionIndex] {
			d.diag.Warn("jump label not on an instruction boundary",
				"label", l.Name, "index", l.InstructionIndex, "instructions", len(p.Text))
		}
	}

	if err := d.out.PutNewline(); err != nil {
		return writeErr(err)
	}
	return nil
}

func (d *Disassembler) instruction(p *flowscript.Program, i int) (string, error) {
	in := p.Text[i]
	fail := func(err error) error {
		return &InstructionError{Index: i, Opcode: in.Opcode, Err: err}
	}

	switch in.Opcode.Shape() {
	case flowscript.ShapeNone:
		if err := CheckNoOperand(in); err != nil {
			d.warn(fail(err))
		}
		return FormatNoOperand(in), nil

	case flowscript.ShapeShort:
		return FormatShortOperand(in), nil

	case flowscript.ShapeCommRef:
		return FormatCommOperand(in), nil

	case flowscript.ShapeExtendedInt:
		operand, ok := peek(p.Text, i)
		if !ok {
			return "", fail(ErrTruncatedOperand)
		}
		return FormatIntOperand(in, operand), nil

	case flowscript.ShapeExtendedFloat:
		operand, ok := peek(p.Text, i)
		if !ok {
			return "", fail(ErrTruncatedOperand)
		}
		return FormatFloatOperand(in, operand), nil

	case flowscript.ShapeStringRef:
		line, err := FormatStringRef(in, p.Strings)
		if err != nil {
			d.warn(fail(err))
			return stubStringRef(in), nil
		}
		return line, nil

	case flowscript.ShapeJumpRef:
		line, err := FormatLabelRef(in, p.JumpLabels)
		if err != nil {
			return d.unresolved(fail(err), stubLabelRef(in))
		}
		return line, nil

	case flowscript.ShapeProcedureRef:
		line, err := FormatLabelRef(in, p.ProcedureLabels)
		if err != nil {
			return d.unresolved(fail(err), stubLabelRef(in))
		}
		return line, nil

	default:
		return "", fail(ErrUnknownOpcode)
	}
}

func (d *Disassembler) unresolved(err error, stub string) (string, error) {
	if !d.lenient {
		return "", err
	}
	d.warn(err)
	return stub, nil
}

func (d *Disassembler) warn(err error) {
	var ie *InstructionError
	if errors.As(err, &ie) {
		d.diag.Warn(ie.Err.Error(), "index", ie.Index, "opcode", ie.Opcode.String())
		return
	}
	d.diag.Warn(err.Error())
}

func (d *Disassembler) putMessageScript(p *flowscript.Program) error {
	if err := d.out.PutLine(messageSection); err != nil {
		return writeErr(err)
	}
	if err := d.out.Put(strings.ToUpper(hex.EncodeToString(p.MessageScript))); err != nil {
		return writeErr(err)
	}
	return nil
}

// peek returns the slot after i, if there is one.
func peek(text []flowscript.Instruction, i int) (flowscript.Instruction, bool) {
	if i+1 < len(text) {
		return text[i+1], true
	}
	return flowscript.Instruction{}, false
}

func labelsByIndex(labels []flowscript.Label) map[int][]string {
	m := make(map[int][]string, len(labels))
	for _, l := range labels {
		m[l.InstructionIndex] = append(m[l.InstructionIndex], l.Name)
	}
	return m
}

func writeErr(err error) error {
	return fmt.Errorf("write output: %w", err)
}

// DisassembleToString returns the listing of p.
func DisassembleToString(p *flowscript.Program, opts ...Option) (string, error) {
	var sb strings.Builder
	d := New(NewBuilderOutput(&sb), opts...)
	defer d.Close()

	if err := d.Disassemble(p); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// DisassembleTo writes the listing of p to w. w is flushed, not closed.
func DisassembleTo(w io.Writer, p *flowscript.Program, opts ...Option) (err error) {
	d := New(NewWriterOutput(w), opts...)
	defer func() {
		if cerr := d.Close(); err == nil {
			err = cerr
		}
	}()
	return d.Disassemble(p)
}

// DisassembleToFile writes the listing of p to a new file at path. The file
// is removed again when the pass fails.
func DisassembleToFile(path string, p *flowscript.Program, opts ...Option) (err error) {
	out, err := CreateFileOutput(path)
	if err != nil {
		return err
	}
	d := New(out, opts...)
	defer func() {
		if cerr := d.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(path)
		}
	}()
	return d.Disassemble(p)
}
