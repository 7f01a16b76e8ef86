package cmd

import (
	"fmt"
	"os"

	"github.com/MatthewMSaucedo/pl0/internal/lexer"
	"github.com/MatthewMSaucedo/pl0/internal/token"
	"github.com/spf13/cobra"
)

var (
	evalExpr   string
	showPos    bool
	showType   bool
	onlyErrors bool
)

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenize a PL/0 file or expression",
	Long: `Tokenize a PL/0 program and print the resulting token stream.

Examples:
  # Tokenize a source file
  pl0 lex program.pl0

  # Tokenize an inline fragment
  pl0 lex -e "const max = 10;"

  # Show token kinds and positions
  pl0 lex --show-type --show-pos program.pl0`,
	Args: cobra.MaximumNArgs(1),
	RunE: lexScript,
}

func init() {
	rootCmd.AddCommand(lexCmd)

	lexCmd.Flags().StringVarP(&evalExpr, "eval", "e", "", "tokenize inline code instead of reading from file")
	lexCmd.Flags().BoolVar(&showPos, "show-pos", false, "show token positions (line:column)")
	lexCmd.Flags().BoolVar(&showType, "show-type", false, "show token kind names")
	lexCmd.Flags().BoolVar(&onlyErrors, "only-errors", false, "show only the lex error, if any")
}

func readSource(args []string) (input, filename string, err error) {
	if evalExpr != "" {
		return evalExpr, "<eval>", nil
	}
	if len(args) == 1 {
		filename = args[0]
		content, err := os.ReadFile(filename)
		if err != nil {
			return "", "", fmt.Errorf("failed to read file %s: %w", filename, err)
		}
		return string(content), filename, nil
	}
	return "", "", fmt.Errorf("either provide a file path or use -e flag for inline code")
}

func lexScript(cmd *cobra.Command, args []string) error {
	input, filename, err := readSource(args)
	if err != nil {
		return err
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose {
		fmt.Printf("Tokenizing: %s\n", filename)
		fmt.Printf("Input length: %d bytes\n", len(input))
		fmt.Println("---")
	}

	tokens, lexErr := lexer.Lex(input)
	if lexErr != nil {
		fmt.Fprintf(os.Stderr, "lex error: %s (line %d)\n", lexErr.Kind, lexErr.Line)
		if !onlyErrors {
			for _, tok := range tokens {
				printToken(tok)
			}
		}
		return fmt.Errorf("lexing failed: %s", lexErr.Kind)
	}

	if onlyErrors {
		return nil
	}

	for _, tok := range tokens {
		printToken(tok)
	}

	if verbose {
		fmt.Println("---")
		fmt.Printf("Total tokens: %d\n", len(tokens))
	}
	return nil
}

func printToken(tok token.Token) {
	var output string
	if showType {
		output = fmt.Sprintf("[%-10s]", tok.Kind)
	}
	if tok.Kind == token.Null {
		output += " NULL"
	} else {
		output += fmt.Sprintf(" %q", tok.Lexeme)
	}
	if showPos {
		output += fmt.Sprintf(" @%d:%d", tok.Pos.Line, tok.Pos.Column)
	}
	fmt.Println(output)
}
