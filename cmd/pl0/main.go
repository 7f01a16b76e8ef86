// Command pl0 drives the four PL/0 pipeline stages (lex, parse, compile,
// run) and a disassembler, as separate cobra subcommands.
package main

import "github.com/MatthewMSaucedo/pl0/cmd/pl0/cmd"

func main() {
	cmd.Execute()
}
