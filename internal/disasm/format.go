package disasm

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"flowdis/internal/flowscript"
)

// ErrUnexpectedOperand marks a no-operand instruction whose short field is set.
var ErrUnexpectedOperand = errors.New("no-operand instruction has non-zero operand")

const (
	minFloatDigits = 2
	maxFloatDigits = 7

	significantFloatDigits = 7
)

// FormatNoOperand renders the bare mnemonic.
func FormatNoOperand(in flowscript.Instruction) string {
	return in.Opcode.String()
}

// CheckNoOperand reports ErrUnexpectedOperand when in carries a short operand.
func CheckNoOperand(in flowscript.Instruction) error {
	if in.OperandShort != 0 {
		return fmt.Errorf("%w: %d", ErrUnexpectedOperand, in.OperandShort)
	}
	return nil
}

// FormatShortOperand renders the mnemonic and the signed short operand.
func FormatShortOperand(in flowscript.Instruction) string {
	return fmt.Sprintf("%s %d", in.Opcode, in.OperandShort)
}

// FormatCommOperand renders a native call by function index.
func FormatCommOperand(in flowscript.Instruction) string {
	return fmt.Sprintf("%s %d", in.Opcode, in.OperandShort)
}

// FormatIntOperand renders in with the companion slot read as an int32.
func FormatIntOperand(in, operand flowscript.Instruction) string {
	return fmt.Sprintf("%s %d", in.Opcode, operand.OperandInt())
}

// FormatFloatOperand renders in with the companion slot read as a float32.
func FormatFloatOperand(in, operand flowscript.Instruction) string {
	return fmt.Sprintf("%s %sf", in.Opcode, FormatFloat(operand.OperandFloat()))
}

// FormatFloat prints f rounded to seven significant digits, then with between
// two and seven fractional digits, trailing zeros trimmed down to two.
func FormatFloat(f float32) string {
	switch {
	case math.IsNaN(float64(f)):
		return "NaN"
	case math.IsInf(float64(f), 1):
		return "Infinity"
	case math.IsInf(float64(f), -1):
		return "-Infinity"
	}

	rounded, _ := strconv.ParseFloat(strconv.FormatFloat(float64(f), 'g', significantFloatDigits, 32), 64)
	s := strconv.FormatFloat(rounded, 'f', maxFloatDigits, 64)
	dot := strings.IndexByte(s, '.')
	end := len(s)
	for end > dot+1+minFloatDigits && s[end-1] == '0' {
		end--
	}
	return s[:end]
}

// FormatStringRef renders the NUL-terminated string starting at the byte
// offset held in the short operand. Bytes are read as Latin-1.
func FormatStringRef(in flowscript.Instruction, table []byte) (string, error) {
	s, err := ReadString(table, in.Index())
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s \"%s\"", in.Opcode, s), nil
}

// ReadString reads from offset up to the first NUL or the end of table.
func ReadString(table []byte, offset int) (string, error) {
	if offset < 0 || offset >= len(table) {
		return "", fmt.Errorf("%w: string offset %d, table is %d bytes", ErrReferenceOutOfRange, offset, len(table))
	}
	var sb strings.Builder
	for _, b := range table[offset:] {
		if b == 0 {
			break
		}
		sb.WriteRune(rune(b))
	}
	return sb.String(), nil
}

// FormatLabelRef renders the name of the label at table index in.Index().
func FormatLabelRef(in flowscript.Instruction, labels []flowscript.Label) (string, error) {
	idx := in.Index()
	if idx >= len(labels) {
		return "", fmt.Errorf("%w: label %d, table has %d", ErrReferenceOutOfRange, idx, len(labels))
	}
	return fmt.Sprintf("%s %s", in.Opcode, labels[idx].Name), nil
}

// stubLabelRef is the lenient rendering of an unresolved label reference.
func stubLabelRef(in flowscript.Instruction) string {
	return fmt.Sprintf("%s <undefined label %d>", in.Opcode, in.Index())
}

func stubStringRef(in flowscript.Instruction) string {
	return fmt.Sprintf("%s \"\"", in.Opcode)
}
