package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/MatthewMSaucedo/pl0/internal/codegen"
	"github.com/MatthewMSaucedo/pl0/internal/lexer"
	"github.com/MatthewMSaucedo/pl0/internal/parser"
	"github.com/MatthewMSaucedo/pl0/internal/perr"
	"github.com/MatthewMSaucedo/pl0/internal/vm"
)

// These tests encode spec.md §8's end-to-end scenarios, driving the four
// pipeline stages in-process the way the pl0 CLI's subcommands do, without
// going through a subprocess.

func compileAndRun(t *testing.T, source, stdin string) string {
	t.Helper()
	tokens, lexErr := lexer.Lex(source)
	if lexErr != nil {
		t.Fatalf("unexpected lex error: %v", lexErr)
	}
	img, cgErr := codegen.Generate(tokens, 500)
	if cgErr != nil {
		t.Fatalf("unexpected codegen error: %v", cgErr)
	}
	var out bytes.Buffer
	m := vm.New(2000, strings.NewReader(stdin), &out)
	if err := m.Run(img); err != nil {
		t.Fatalf("unexpected runtime error: %v", err)
	}
	return out.String()
}

// Scenario 1: the empty program compiles to a single SIO_HALT and runs
// without producing output.
func TestScenarioEmptyProgram(t *testing.T) {
	tokens, lexErr := lexer.Lex(".")
	if lexErr != nil {
		t.Fatalf("unexpected lex error: %v", lexErr)
	}
	img, cgErr := codegen.Generate(tokens, 500)
	if cgErr != nil {
		t.Fatalf("unexpected codegen error: %v", cgErr)
	}
	if img.Len() != 1 {
		t.Fatalf("image length = %d, want 1", img.Len())
	}
	ins := img.Code[0]
	if ins.Op != vm.SIOHalt || ins.M != 3 {
		t.Errorf("instruction = %+v, want SIO_HALT 0 0 3", ins)
	}

	var out bytes.Buffer
	m := vm.New(2000, strings.NewReader(""), &out)
	if err := m.Run(img); err != nil {
		t.Fatalf("unexpected runtime error: %v", err)
	}
	if out.String() != "" {
		t.Errorf("output = %q, want empty", out.String())
	}
}

// Scenario 2: constants fold into LIT and arithmetic runs end to end.
func TestScenarioConstAndArithmetic(t *testing.T) {
	source := `const five = 5;
var x;
begin x := five * 2 + 1; write x end.`
	got := compileAndRun(t, source, "")
	if got != "11" {
		t.Errorf("output = %q, want %q", got, "11")
	}
}

// Scenario 3: a while loop counts up to its bound.
func TestScenarioWhileLoop(t *testing.T) {
	source := `var i;
begin i := 0; while i < 3 do i := i + 1; write i end.`
	got := compileAndRun(t, source, "")
	if got != "3" {
		t.Errorf("output = %q, want %q", got, "3")
	}
}

// Scenario 4: a nested procedure reads/writes a variable one static level
// up via its static link, across repeated calls.
func TestScenarioNestedProcedureStaticLink(t *testing.T) {
	source := `var x;
procedure p;
begin x := x + 1 end;
begin x := 10; call p; call p; write x end.`
	got := compileAndRun(t, source, "")
	if got != "12" {
		t.Errorf("output = %q, want %q", got, "12")
	}
}

// Scenario 5: an over-long identifier (12 alphas) fails lexing with
// NAME_TOO_LONG at line 0, reproduced bit-exactly per spec.md §8.
func TestScenarioLexErrorNameTooLong(t *testing.T) {
	_, lexErr := lexer.Lex("abcdefghijkl")
	if lexErr == nil {
		t.Fatal("expected a NAME_TOO_LONG lex error")
	}
	if lexErr.Kind != perr.LexNameTooLong {
		t.Errorf("Kind = %v, want %v", lexErr.Kind, perr.LexNameTooLong)
	}
	if lexErr.Line != 0 {
		t.Errorf("Line = %d, want 0", lexErr.Line)
	}
}

// Scenario 6: a malformed const-decl list trips error code 4 (semicolon or
// comma missing) in both the parser and the code generator.
func TestScenarioParseErrorMissingSemiOrComma(t *testing.T) {
	source := `const a = 1 b = 2; var x; begin x := a end.`
	tokens, lexErr := lexer.Lex(source)
	if lexErr != nil {
		t.Fatalf("unexpected lex error: %v", lexErr)
	}

	if err := parser.Parse(tokens); err == nil || err.Code != perr.ErrMissingSemiOrComma {
		t.Fatalf("parser: got %v, want error code %d", err, perr.ErrMissingSemiOrComma)
	}
	if _, err := codegen.Generate(tokens, 500); err == nil || err.Code != perr.ErrMissingSemiOrComma {
		t.Fatalf("codegen: got %v, want error code %d", err, perr.ErrMissingSemiOrComma)
	}
}
