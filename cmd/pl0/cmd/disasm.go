package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var disasmConfigPath string

var disasmCmd = &cobra.Command{
	Use:   "disasm [file.pl0c]",
	Short: "Pretty-print a compiled instruction image",
	Long: `Read an instruction image and print one annotated line per
instruction: its code index, mnemonic, and r/l/m operands.`,
	Args: cobra.ExactArgs(1),
	RunE: disasmScript,
}

func init() {
	rootCmd.AddCommand(disasmCmd)

	disasmCmd.Flags().StringVar(&disasmConfigPath, "config", "", "YAML file overriding MAX_CODE_LENGTH/MAX_STACK_HEIGHT")
}

func disasmScript(cmd *cobra.Command, args []string) error {
	limits, err := loadLimits(disasmConfigPath)
	if err != nil {
		return err
	}

	img, err := loadImageFile(args[0], limits)
	if err != nil {
		return err
	}

	fmt.Print(img.Disassemble())
	return nil
}
