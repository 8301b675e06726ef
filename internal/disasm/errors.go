package disasm

import (
	"errors"
	"fmt"

	"flowdis/internal/flowscript"
)

var (
	ErrUnknownOpcode       = errors.New("unknown opcode")
	ErrTruncatedOperand    = errors.New("extended operand past end of text")
	ErrReferenceOutOfRange = errors.New("reference out of range")
	ErrOutputClosed        = errors.New("output closed")
)

// InstructionError locates a failure at one instruction of the text section.
type InstructionError struct {
	Index  int
	Opcode flowscript.Opcode
	Err    error
}

func (e *InstructionError) Error() string {
	return fmt.Sprintf("instruction %d (%s): %v", e.Index, e.Opcode, e.Err)
}

func (e *InstructionError) Unwrap() error {
	return e.Err
}
