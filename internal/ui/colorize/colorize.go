// Package colorize highlights disassembly listings for terminal display.
package colorize

import (
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/styles"
)

// Enabled reports whether colouring is allowed by the environment.
func Enabled() bool {
	return os.Getenv("FLOWDIS_NO_COLOR") == "" && os.Getenv("NO_COLOR") == ""
}

// getStyle returns the listing style with fallbacks
func getStyle() *chroma.Style {
	candidates := []string{"flowasm-dark", "dracula", "monokai"}
	for _, name := range candidates {
		if style := styles.Get(name); style != nil {
			return style
		}
	}
	return styles.Fallback
}

// getTerminalFormatter returns an appropriate terminal formatter
func getTerminalFormatter() chroma.Formatter {
	candidates := []string{"terminal16m", "terminal256"}
	for _, name := range candidates {
		if formatter := formatters.Get(name); formatter != nil {
			return formatter
		}
	}
	return formatters.Fallback
}

// Colorize highlights a listing. The input is returned unchanged when colours
// are disabled or highlighting fails.
func Colorize(code string) (string, error) {
	if !Enabled() {
		return code, nil
	}

	iterator, err := FlowAsm.Tokenise(nil, code)
	if err != nil {
		return code, err
	}

	var buf strings.Builder
	if err := getTerminalFormatter().Format(&buf, getStyle(), iterator); err != nil {
		return code, err
	}
	return buf.String(), nil
}

// StripANSI removes SGR escape sequences.
func StripANSI(s string) string {
	var result strings.Builder
	inEscape := false

	for _, r := range s {
		if r == '\x1b' {
			inEscape = true
		} else if inEscape {
			if r == 'm' {
				inEscape = false
			}
		} else {
			result.WriteRune(r)
		}
	}

	return result.String()
}
