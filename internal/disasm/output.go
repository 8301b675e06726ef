package disasm

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

const commentPrefix = "; "

// Output is the text sink a Disassembler writes through.
type Output interface {
	// Put appends text without a line terminator.
	Put(s string) error
	// PutLine appends text followed by a line terminator.
	PutLine(s string) error
	// PutNewline appends an empty line.
	PutNewline() error
	// PutCommentLine appends s as a full-line comment.
	PutCommentLine(s string) error
	// Close releases the sink. Calls after the first are no-ops.
	Close() error
}

type builderOutput struct {
	sb *strings.Builder
}

// NewBuilderOutput returns an Output appending to sb. Close is a no-op.
func NewBuilderOutput(sb *strings.Builder) Output {
	return &builderOutput{sb: sb}
}

func (o *builderOutput) Put(s string) error {
	o.sb.WriteString(s)
	return nil
}

func (o *builderOutput) PutLine(s string) error {
	o.sb.WriteString(s)
	o.sb.WriteByte('\n')
	return nil
}

func (o *builderOutput) PutNewline() error {
	o.sb.WriteByte('\n')
	return nil
}

func (o *builderOutput) PutCommentLine(s string) error {
	return o.PutLine(commentPrefix + s)
}

func (o *builderOutput) Close() error {
	return nil
}

// writerOutput buffers writes to an io.Writer. closer is set only when the
// output owns the underlying writer.
type writerOutput struct {
	w      *bufio.Writer
	closer io.Closer
	closed bool
}

// NewWriterOutput returns an Output writing to w. Close flushes but does not
// close w; the caller keeps ownership.
func NewWriterOutput(w io.Writer) Output {
	return &writerOutput{w: bufio.NewWriter(w)}
}

// CreateFileOutput creates (or truncates) the file at path. The file is
// closed by Close.
func CreateFileOutput(path string) (Output, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output: %w", err)
	}
	return &writerOutput{w: bufio.NewWriter(f), closer: f}, nil
}

func (o *writerOutput) Put(s string) error {
	if o.closed {
		return ErrOutputClosed
	}
	_, err := o.w.WriteString(s)
	return err
}

func (o *writerOutput) PutLine(s string) error {
	if err := o.Put(s); err != nil {
		return err
	}
	return o.PutNewline()
}

func (o *writerOutput) PutNewline() error {
	if o.closed {
		return ErrOutputClosed
	}
	return o.w.WriteByte('\n')
}

func (o *writerOutput) PutCommentLine(s string) error {
	return o.PutLine(commentPrefix + s)
}

func (o *writerOutput) Close() error {
	if o.closed {
		return nil
	}
	o.closed = true

	err := o.w.Flush()
	if o.closer != nil {
		if cerr := o.closer.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	return nil
}
