package cmd

import (
	"fmt"

	"github.com/MatthewMSaucedo/pl0/internal/lexer"
	"github.com/MatthewMSaucedo/pl0/internal/parser"
	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Validate a PL/0 program against the grammar",
	Long: `Run the lexer and parser over a PL/0 program and report "ok" or the
first grammar violation, with its numeric error code.`,
	Args: cobra.MaximumNArgs(1),
	RunE: parseScript,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringVarP(&evalExpr, "eval", "e", "", "parse inline code instead of reading from file")
}

func parseScript(cmd *cobra.Command, args []string) error {
	input, filename, err := readSource(args)
	if err != nil {
		return err
	}

	tokens, lexErr := lexer.Lex(input)
	if lexErr != nil {
		return fmt.Errorf("lex error: %s (line %d)", lexErr.Kind, lexErr.Line)
	}

	if perr := parser.Parse(tokens); perr != nil {
		fmt.Println(perr.WithSource(input, filename).Format())
		return fmt.Errorf("parse failed")
	}

	fmt.Println("ok")
	return nil
}
