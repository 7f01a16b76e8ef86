package cmd

import (
	"fmt"
	"os"

	"github.com/MatthewMSaucedo/pl0/internal/codegen"
	"github.com/MatthewMSaucedo/pl0/internal/config"
	"github.com/MatthewMSaucedo/pl0/internal/lexer"
	"github.com/MatthewMSaucedo/pl0/internal/vm"
	"github.com/spf13/cobra"
)

var (
	runSourceFlag bool
	runConfigPath string
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Execute a PL/0 instruction image, or compile-then-run a source file",
	Long: `Load a previously compiled instruction image and run it on the
virtual machine, wiring stdin/stdout as its I/O streams.

With --source, the argument is a .pl0 source file instead: it is lexed
and compiled in one step before running, so the pipeline's intermediate
image never touches disk.`,
	Args: cobra.ExactArgs(1),
	RunE: runScript,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVar(&runSourceFlag, "source", false, "treat the argument as PL/0 source, not a compiled image")
	runCmd.Flags().StringVar(&runConfigPath, "config", "", "YAML file overriding MAX_CODE_LENGTH/MAX_STACK_HEIGHT")
}

func runScript(cmd *cobra.Command, args []string) error {
	filename := args[0]

	limits, err := loadLimits(runConfigPath)
	if err != nil {
		return err
	}

	var img *vm.Image
	if runSourceFlag {
		img, err = compileSourceFile(filename, limits)
	} else {
		img, err = loadImageFile(filename, limits)
	}
	if err != nil {
		return err
	}

	machine := vm.New(limits.MaxStackHeight, os.Stdin, os.Stdout)
	if runErr := machine.Run(img); runErr != nil {
		return fmt.Errorf("runtime error: %w", runErr)
	}
	return nil
}

func compileSourceFile(filename string, limits config.Limits) (*vm.Image, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	input := string(content)

	tokens, lexErr := lexer.Lex(input)
	if lexErr != nil {
		return nil, fmt.Errorf("lex error: %s (line %d)", lexErr.Kind, lexErr.Line)
	}

	img, cgErr := codegen.Generate(tokens, limits.MaxCodeLength)
	if cgErr != nil {
		return nil, fmt.Errorf("%s", cgErr.WithSource(input, filename).Format())
	}
	return img, nil
}

func loadImageFile(filename string, limits config.Limits) (*vm.Image, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	defer f.Close()

	img, err := vm.ReadImage(f, limits.MaxCodeLength)
	if err != nil {
		return nil, fmt.Errorf("failed to read image %s: %w", filename, err)
	}
	return img, nil
}
