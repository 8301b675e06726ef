package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	pathpkg "path/filepath"
	"runtime/pprof"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"flowdis/internal/config"
	flowlog "flowdis/internal/flowdis/log"
	"flowdis/internal/flowscript"
	"flowdis/internal/logging"
	"flowdis/internal/ui/colorize"
)

// JSONOutput is the --json summary used for regression testing
type JSONOutput struct {
	Digest   string             `json:"digest"`
	Summary  flowscript.Summary `json:"summary"`
	Warnings []string           `json:"warnings"`
	Error    string             `json:"error,omitempty"`
}

func init() {
	rootCmd.PersistentFlags().StringP("cwd", "c", "", "Current working directory")
	rootCmd.PersistentFlags().String("config", "", "Config file (default: nearest "+config.FileName+")")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Debug")
	rootCmd.PersistentFlags().String("log-file", "", "Write debug and error logs to this file instead of stderr")
	rootCmd.PersistentFlags().String("header", "", "Header comment written at the top of the listing")
	rootCmd.PersistentFlags().String("endian", config.EndianAuto, "Input byte order: auto, little or big")
	rootCmd.PersistentFlags().Bool("lenient", false, "Render unresolved label references as placeholders instead of failing")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable syntax highlighting")

	rootCmd.Flags().BoolP("help", "h", false, "Help")
	rootCmd.Flags().BoolP("no-tui", "n", false, "Print the listing without the TUI")
	rootCmd.Flags().BoolP("json", "j", false, "Output a JSON summary for regression testing")
	rootCmd.Flags().StringP("output", "o", "", "Write the listing to a file")
	rootCmd.Flags().String("cpuprofile", "", "Write CPU profile to file")

	rootCmd.AddCommand(disasmCmd)
}

var rootCmd = &cobra.Command{
	Use:   "flowdis [file]",
	Short: "FlowScript bytecode disassembler",
	Long: `Flowdis disassembles compiled FlowScript (.bf) programs into a readable,
diffable assembly listing. It opens an interactive viewer by default.`,
	Example: `
# Browse a script in the viewer
flowdis field.bf

# Print the listing
flowdis -n field.bf

# Write the listing next to the binary
flowdis -o field.flowasm field.bf
  `,
	Args: cobra.ExactArgs(1),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		debug, _ := cmd.Flags().GetBool("debug")
		logFile, _ := cmd.Flags().GetString("log-file")
		return flowlog.Setup(logFile, debug || logging.IsDebug())
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cpuprofile, _ := cmd.Flags().GetString("cpuprofile")
		if cpuprofile != "" {
			f, err := os.Create(cpuprofile)
			if err != nil {
				return fmt.Errorf("could not create CPU profile: %v", err)
			}
			defer f.Close()
			if err := pprof.StartCPUProfile(f); err != nil {
				return fmt.Errorf("could not start CPU profile: %v", err)
			}
			defer pprof.StopCPUProfile()
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		absPath, err := pathpkg.Abs(args[0])
		if err != nil {
			return fmt.Errorf("failed to resolve path: %w", err)
		}
		slog.Debug("Loaded configuration", "path", cfg.Path, "endian", cfg.Endian)

		jsonOutput, _ := cmd.Flags().GetBool("json")
		if jsonOutput {
			return runJSON(cmd.OutOrStdout(), absPath, cfg)
		}

		p, err := loadProgram(absPath, cfg)
		if err != nil {
			return err
		}

		lg := newDiagnostics(cmd)
		defer lg.Close()

		output, _ := cmd.Flags().GetString("output")
		if output != "" {
			if err := writeListing(output, p, cfg, lg.Logger); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Disassembly written to: %s\n", output)
			return nil
		}

		noTUI, _ := cmd.Flags().GetBool("no-tui")
		if noTUI || !isTerminal(cmd.OutOrStdout()) {
			return printListing(cmd.OutOrStdout(), p, cfg, lg.Logger)
		}

		warnings := &warningLog{}
		listing, err := renderListing(p, cfg, warnings)
		if err != nil {
			return err
		}

		program := tea.NewProgram(
			NewModel(absPath, p, listing, warnings.lines, cfg),
			tea.WithAltScreen(),
			tea.WithContext(cmd.Context()),
		)
		if _, err := program.Run(); err != nil {
			slog.Error("TUI run error", "error", err)
			return fmt.Errorf("TUI error: %v", err)
		}
		return nil
	},
}

// newDiagnostics returns the warning logger, at debug level under --debug.
func newDiagnostics(cmd *cobra.Command) *logging.LoggerCloser {
	lg := logging.NewLogger()
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		lg.SetLevel(log.DebugLevel)
	}
	return lg
}

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(f.Fd())
}

// printListing writes the listing to w, highlighted when w is a terminal.
func printListing(w io.Writer, p *flowscript.Program, cfg *config.Config, diag *log.Logger) error {
	listing, err := renderListing(p, cfg, diag)
	if err != nil {
		return err
	}
	if !cfg.NoColor && isTerminal(w) {
		if colored, err := colorize.Colorize(listing); err == nil {
			listing = colored
		}
	}
	_, err = fmt.Fprintln(w, listing)
	return err
}

// runJSON prints a summary of the binary. Disassembly failures are reported in
// the output rather than as an error so regressions stay diffable.
func runJSON(w io.Writer, path string, cfg *config.Config) error {
	digest, err := fileDigest(path)
	if err != nil {
		return fmt.Errorf("failed to calculate digest: %w", err)
	}

	p, err := loadProgram(path, cfg)
	if err != nil {
		return err
	}

	warnings := &warningLog{}
	out := JSONOutput{
		Digest:  digest,
		Summary: flowscript.Summarize(p),
	}
	if _, err := renderListing(p, cfg, warnings); err != nil {
		out.Error = err.Error()
	}
	out.Warnings = warnings.lines
	if out.Warnings == nil {
		out.Warnings = []string{}
	}

	jsonData, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(jsonData))
	return err
}

func Execute() {
	var err error
	// Bypass fang when output is piped so help and errors stay plain text.
	if !term.IsTerminal(os.Stdout.Fd()) {
		err = rootCmd.Execute()
	} else {
		err = fang.Execute(
			context.Background(),
			rootCmd,
			fang.WithNotifySignal(os.Interrupt),
		)
	}

	if cerr := flowlog.Shutdown(); cerr != nil {
		fmt.Fprintf(os.Stderr, "failed to close log file: %v\n", cerr)
	}
	if err != nil {
		os.Exit(1)
	}
}

func ResolveCwd(cmd *cobra.Command) (string, error) {
	cwd, _ := cmd.Flags().GetString("cwd")
	if cwd != "" {
		err := os.Chdir(cwd)
		if err != nil {
			return "", fmt.Errorf("failed to change directory: %v", err)
		}
		return cwd, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current working directory: %v", err)
	}
	return cwd, nil
}
