package disasm

import (
	"fmt"
	"math"
)

func nan() float64 { return math.NaN() }

func inf(sign int) float64 { return math.Inf(sign) }

type warning struct {
	msg     string
	keyvals []interface{}
}

// recorder collects warnings in place of a logger.
type recorder struct {
	warnings []warning
}

func (r *recorder) Warn(msg interface{}, keyvals ...interface{}) {
	r.warnings = append(r.warnings, warning{msg: fmt.Sprint(msg), keyvals: keyvals})
}
