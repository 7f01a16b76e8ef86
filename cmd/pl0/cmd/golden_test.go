package cmd

import (
	"testing"

	"github.com/MatthewMSaucedo/pl0/internal/codegen"
	"github.com/MatthewMSaucedo/pl0/internal/lexer"
	"github.com/gkampitakis/go-snaps/snaps"
)

// TestDisasmGolden pins the disassembler's rendering of a small but
// representative program (const fold, a loop, a nested procedure) against
// a recorded snapshot, the same way the teacher's fixture_test.go pins
// fixture output with go-snaps.
func TestDisasmGolden(t *testing.T) {
	source := `const bound = 3;
var i, total;
procedure addOne;
begin total := total + 1 end;
begin
  i := 0;
  total := 0;
  while i < bound do begin call addOne; i := i + 1 end;
  write total
end.`

	tokens, lexErr := lexer.Lex(source)
	if lexErr != nil {
		t.Fatalf("unexpected lex error: %v", lexErr)
	}
	img, cgErr := codegen.Generate(tokens, 500)
	if cgErr != nil {
		t.Fatalf("unexpected codegen error: %v", cgErr)
	}

	snaps.MatchSnapshot(t, "addOne_disasm", img.Disassemble())
}

func TestLexShowTypeGolden(t *testing.T) {
	tokens, lexErr := lexer.Lex("const max = 10; var x;")
	if lexErr != nil {
		t.Fatalf("unexpected lex error: %v", lexErr)
	}

	var rendered string
	for _, tok := range tokens {
		rendered += tok.Kind.String() + " "
	}
	snaps.MatchSnapshot(t, "const_max_lex", rendered)
}
