package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "pl0",
	Short: "PL/0 compiler and virtual machine",
	Long: `pl0 is a from-scratch toolchain for the PL/0 teaching language:
a lexer, a recursive-descent parser, a code generator targeting a small
register+stack instruction set, and the virtual machine that runs it.

Each stage is exposed as its own subcommand so the pipeline can be
inspected one piece at a time.`,
	Version: Version,
}

// Execute runs the root command. On failure it prints a formatted error and
// exits the process directly, rather than letting cobra dump usage text
// after every subcommand error.
func Execute() error {
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	if err := rootCmd.Execute(); err != nil {
		exitWithError("%v", err)
	}
	return nil
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
}

func exitWithError(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+msg+"\n", args...)
	os.Exit(1)
}
