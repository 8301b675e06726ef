package cmd

import (
	"fmt"
	"log/slog"
	pathpkg "path/filepath"

	"github.com/spf13/cobra"
)

var disasmCmd = &cobra.Command{
	Use:   "disasm [file...]",
	Short: "Disassemble without the viewer",
	Long: `Disassemble one or more FlowScript binaries non-interactively and exit.
With --output-dir each listing is written next to its name with a .flowasm
extension; otherwise listings are printed in argument order.`,
	Example: `
# Print a listing
flowdis disasm field.bf

# Convert a batch
flowdis disasm --output-dir out/ *.bf
  `,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		quiet, _ := cmd.Flags().GetBool("quiet")
		outDir, _ := cmd.Flags().GetString("output-dir")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		lg := newDiagnostics(cmd)
		defer lg.Close()

		for _, path := range args {
			p, err := loadProgram(path, cfg)
			if err != nil {
				return err
			}

			if outDir == "" {
				if err := printListing(cmd.OutOrStdout(), p, cfg, lg.Logger); err != nil {
					return err
				}
				continue
			}

			base := pathpkg.Base(path)
			target := pathpkg.Join(outDir, base[:len(base)-len(pathpkg.Ext(base))]+".flowasm")
			if err := writeListing(target, p, cfg, lg.Logger); err != nil {
				return err
			}
			if !quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", path, target)
			}
			slog.Debug("Wrote listing", "input", path, "output", target)
		}

		return nil
	},
}

func init() {
	disasmCmd.Flags().BoolP("quiet", "q", false, "Do not report written files")
	disasmCmd.Flags().String("output-dir", "", "Write each listing to this directory")
}
