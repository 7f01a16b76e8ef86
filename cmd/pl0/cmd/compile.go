package cmd

import (
	"fmt"
	"os"

	"github.com/MatthewMSaucedo/pl0/internal/codegen"
	"github.com/MatthewMSaucedo/pl0/internal/config"
	"github.com/MatthewMSaucedo/pl0/internal/lexer"
	"github.com/spf13/cobra"
)

var (
	compileOutput     string
	compileConfigPath string
)

var compileCmd = &cobra.Command{
	Use:   "compile [file]",
	Short: "Compile a PL/0 source file to an instruction image",
	Long: `Compile a PL/0 program to its instruction image and write it in the
text format (one "op r l m" line per instruction) to a file or stdout.

Examples:
  # Compile to stdout
  pl0 compile program.pl0

  # Compile to a named image file
  pl0 compile program.pl0 -o program.pl0c`,
	Args: cobra.ExactArgs(1),
	RunE: compileScript,
}

func init() {
	rootCmd.AddCommand(compileCmd)

	compileCmd.Flags().StringVarP(&compileOutput, "output", "o", "", "output file (default: stdout)")
	compileCmd.Flags().StringVar(&compileConfigPath, "config", "", "YAML file overriding MAX_CODE_LENGTH/MAX_STACK_HEIGHT")
}

func loadLimits(path string) (config.Limits, error) {
	if path == "" {
		return config.DefaultLimits(), nil
	}
	return config.Load(path)
}

func compileScript(cmd *cobra.Command, args []string) error {
	input, filename, err := readSource(args)
	if err != nil {
		return err
	}

	limits, err := loadLimits(compileConfigPath)
	if err != nil {
		return err
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose {
		fmt.Fprintf(os.Stderr, "Compiling %s...\n", filename)
	}

	tokens, lexErr := lexer.Lex(input)
	if lexErr != nil {
		return fmt.Errorf("lex error: %s (line %d)", lexErr.Kind, lexErr.Line)
	}

	img, cgErr := codegen.Generate(tokens, limits.MaxCodeLength)
	if cgErr != nil {
		fmt.Println(cgErr.WithSource(input, filename).Format())
		return fmt.Errorf("compilation failed")
	}

	out := os.Stdout
	if compileOutput != "" {
		f, err := os.Create(compileOutput)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", compileOutput, err)
		}
		defer f.Close()
		out = f
	}

	return img.Write(out)
}
