package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"flowdis/internal/flowdis/styles"
	"flowdis/internal/flowscript"
)

var opcodesCmd = &cobra.Command{
	Use:   "opcodes",
	Short: "List the FlowScript instruction set",
	RunE: func(cmd *cobra.Command, args []string) error {
		md := opcodeMarkdown()
		if !isTerminal(cmd.OutOrStdout()) {
			fmt.Fprint(cmd.OutOrStdout(), md)
			return nil
		}

		rendered, err := styles.RenderMarkdown(md, 100)
		if err != nil {
			return fmt.Errorf("failed to render markdown: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), rendered)
		return nil
	},
}

// opcodeMarkdown renders the opcode table as a markdown table.
func opcodeMarkdown() string {
	var sb strings.Builder
	sb.WriteString("# FlowScript opcodes\n\n")
	sb.WriteString("| Value | Mnemonic | Operand | Description |\n")
	sb.WriteString("|---:|---|---|---|\n")
	for _, op := range flowscript.Opcodes() {
		info, _ := op.Info()
		fmt.Fprintf(&sb, "| %d | `%s` | %s | %s |\n", uint16(op), info.Name, info.Shape, info.Description)
	}
	sb.WriteString("\nPUSHI and PUSHF read their value from the following instruction slot.\n")
	return sb.String()
}

func init() {
	rootCmd.AddCommand(opcodesCmd)
}
