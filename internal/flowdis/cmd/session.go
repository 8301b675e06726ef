package cmd

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"flowdis/internal/config"
	"flowdis/internal/disasm"
	"flowdis/internal/flowscript"
)

// loadConfig reads --config or the nearest flowdis.toml, then applies flag
// overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cwd, err := ResolveCwd(cmd)
	if err != nil {
		return nil, err
	}

	var cfg *config.Config
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.FindAndLoad(cwd)
	}
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("header") {
		cfg.Header, _ = flags.GetString("header")
	}
	if flags.Changed("endian") {
		cfg.Endian, _ = flags.GetString("endian")
	}
	if flags.Changed("lenient") {
		cfg.LenientReferences, _ = flags.GetBool("lenient")
	}
	if flags.Changed("no-color") {
		cfg.NoColor, _ = flags.GetBool("no-color")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadProgram reads the binary at path using the config's loader settings.
func loadProgram(path string, cfg *config.Config) (*flowscript.Program, error) {
	p, err := flowscript.LoadFile(path, cfg.LoadOptions()...)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return p, nil
}

// renderListing disassembles p into a string.
func renderListing(p *flowscript.Program, cfg *config.Config, diag disasm.Diagnostics) (string, error) {
	opts := append(cfg.DisasmOptions(), disasm.WithDiagnostics(diag))
	return disasm.DisassembleToString(p, opts...)
}

// writeListing disassembles p into a new file at path.
func writeListing(path string, p *flowscript.Program, cfg *config.Config, diag disasm.Diagnostics) error {
	opts := append(cfg.DisasmOptions(), disasm.WithDiagnostics(diag))
	if err := disasm.DisassembleToFile(path, p, opts...); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// fileDigest returns the hex SHA-256 of the file at path.
func fileDigest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// warningLog keeps warnings for display instead of writing them to the
// terminal, which the viewer owns while it runs.
type warningLog struct {
	lines []string
}

func (w *warningLog) Warn(msg interface{}, keyvals ...interface{}) {
	var sb strings.Builder
	fmt.Fprint(&sb, msg)
	for i := 0; i+1 < len(keyvals); i += 2 {
		fmt.Fprintf(&sb, " %v=%v", keyvals[i], keyvals[i+1])
	}
	w.lines = append(w.lines, sb.String())
}
