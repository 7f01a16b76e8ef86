// Package codegen implements the code generator of spec.md §4.4: the same
// recursive-descent grammar as internal/parser, augmented with symbol
// resolution, a monotone expression-register cursor, and instruction
// emission with forward-jump backpatching.
package codegen

import (
	"github.com/MatthewMSaucedo/pl0/internal/perr"
	"github.com/MatthewMSaucedo/pl0/internal/symtab"
	"github.com/MatthewMSaucedo/pl0/internal/token"
	"github.com/MatthewMSaucedo/pl0/internal/vm"
)

// numRegisters bounds the expression-register cursor; exceeding it is a
// code-generator error per spec.md §4.4 "Register discipline".
const numRegisters = 16

// varRecordBase is the offset at which a procedure's first local variable
// is assigned, per spec.md §4.4: the prologue reserves 4 slots for
// SL/DL/RA and a fourth control word (spec.md §GLOSSARY "Activation
// record").
const varRecordBase = 4

// procPrologueSlots is the INC emitted by a procedure's prologue to reserve
// its SL/DL/RA/control-word header.
const procPrologueSlots = 4

// Generate runs codegen over tokens, returning the completed instruction
// image or the first perr.Error encountered.
func Generate(tokens []token.Token, maxCodeLength int) (*vm.Image, *perr.Error) {
	cg := &Codegen{
		stream: token.NewStream(tokens),
		table:  symtab.New(),
		img:    vm.NewImage(maxCodeLength),
	}
	if err := cg.program(); err != nil {
		return nil, err
	}
	return cg.img, nil
}

// Codegen threads the parse/codegen cursor, current lexical level, next
// local-variable address, symbol table, and register cursor explicitly —
// per spec.md §9, none of these live in package-level globals.
type Codegen struct {
	stream  *token.Stream
	table   *symtab.Table
	img     *vm.Image
	level   int
	varAddr int
	cr      int
}

func (c *Codegen) cur() token.Token {
	return c.stream.Current()
}

func (c *Codegen) advance() {
	c.stream.Advance()
}

func (c *Codegen) fail(code int, message string) *perr.Error {
	return perr.New(perr.Codegen, code, c.cur().Pos, message)
}

func (c *Codegen) expect(kind token.Kind, code int, message string) *perr.Error {
	if c.cur().Kind != kind {
		return c.fail(code, message)
	}
	c.advance()
	return nil
}

func (c *Codegen) emit(op vm.Op, r, l, m int) (int, *perr.Error) {
	idx, err := c.img.Emit(op, r, l, m)
	if err != nil {
		return 0, c.fail(0, err.Error())
	}
	return idx, nil
}

// newRegister returns the next free register for expression evaluation,
// failing if the 16-deep expression-register cap would be exceeded.
func (c *Codegen) newRegister() (int, *perr.Error) {
	if c.cr >= numRegisters {
		return 0, c.fail(0, "expression register stack exceeds 16 registers")
	}
	r := c.cr
	c.cr++
	return r, nil
}

// program = block "." . The top-level program is not wrapped in a
// procedure's JMP/INC/RTN prologue — it runs directly from PC=0 — so its
// only generated epilogue is a single SIO_HALT once the block is done.
func (c *Codegen) program() *perr.Error {
	if err := c.block(); err != nil {
		return err
	}
	if err := c.expect(token.Period, perr.ErrExpectedPeriod, "period expected"); err != nil {
		return err
	}
	_, err := c.emit(vm.SIOHalt, 0, 0, 3)
	return err
}

// block = [const-decl] [var-decl] {proc-decl} statement .
func (c *Codegen) block() *perr.Error {
	if c.cur().Is(token.Const) {
		if err := c.constDecl(); err != nil {
			return err
		}
	}
	if c.cur().Is(token.Var) {
		if err := c.varDecl(); err != nil {
			return err
		}
	}
	for c.cur().Is(token.Procedure) {
		if err := c.procDecl(); err != nil {
			return err
		}
	}
	return c.statement()
}

// const-decl = "const" ident "=" number {"," ident "=" number} ";" .
func (c *Codegen) constDecl() *perr.Error {
	c.advance() // "const"
	for {
		if c.cur().Kind != token.Ident {
			return c.fail(perr.ErrExpectedIdentAfterKeyword, "const must be followed by identifier")
		}
		name := c.cur().Lexeme
		c.advance()
		if err := c.expect(token.Eql, perr.ErrExpectedEqlAfterIdent, "identifier must be followed by '='"); err != nil {
			return err
		}
		if c.cur().Kind != token.Number {
			return c.fail(perr.ErrExpectedNumberAfterEql, "'=' must be followed by a number")
		}
		value := parseNumber(c.cur().Lexeme)
		c.advance()

		c.table.Add(symtab.Symbol{Name: name, Kind: symtab.ConstKind, Level: c.level, Value: value})

		switch c.cur().Kind {
		case token.Comma:
			c.advance()
		case token.Semi:
			c.advance()
			return nil
		default:
			return c.fail(perr.ErrMissingSemiOrComma, "semicolon or comma missing")
		}
	}
}

// var-decl = "var" ident {"," ident} ";" .
func (c *Codegen) varDecl() *perr.Error {
	c.advance() // "var"
	for {
		if c.cur().Kind != token.Ident {
			return c.fail(perr.ErrExpectedIdentAfterKeyword, "var must be followed by identifier")
		}
		name := c.cur().Lexeme
		c.advance()

		addr := c.varAddr
		c.varAddr++
		c.table.Add(symtab.Symbol{Name: name, Kind: symtab.VarKind, Level: c.level, Address: addr})
		if _, err := c.emit(vm.INC, 0, 0, 1); err != nil {
			return err
		}

		switch c.cur().Kind {
		case token.Comma:
			c.advance()
		case token.Semi:
			c.advance()
			return nil
		default:
			return c.fail(perr.ErrMissingSemiOrComma, "semicolon or comma missing")
		}
	}
}

// proc-decl = "procedure" ident ";" block ";" . Implements spec.md §4.4
// "Procedures" steps 1-6.
func (c *Codegen) procDecl() *perr.Error {
	c.advance() // "procedure"
	if c.cur().Kind != token.Ident {
		return c.fail(perr.ErrExpectedIdentAfterKeyword, "procedure must be followed by identifier")
	}
	name := c.cur().Lexeme
	c.advance()
	if err := c.expect(token.Semi, perr.ErrMissingSemi, "semicolon missing"); err != nil {
		return err
	}

	// Step 1: insert the PROC symbol, tagging its entry with the code
	// index of the forthcoming prologue — one past the JMP emitted next.
	entry := c.img.Len() + 1
	c.table.Add(symtab.Symbol{Name: name, Kind: symtab.ProcKind, Level: c.level, Address: entry})

	// Step 2: JMP past the body, backpatched once the body is known.
	jmpIdx, err := c.emit(vm.JMP, 0, 0, 0)
	if err != nil {
		return err
	}

	// Step 3: reserve SL/DL/RA/control-word.
	if _, err := c.emit(vm.INC, 0, 0, procPrologueSlots); err != nil {
		return err
	}

	// Step 4: generate the body one level deeper, in its own scope.
	savedLevel, savedAddr := c.level, c.varAddr
	c.level++
	c.varAddr = varRecordBase
	c.table.EnterScope(&symtab.Symbol{Name: name, Kind: symtab.ProcKind, Level: savedLevel, Address: entry})
	bodyErr := c.block()
	c.table.ExitScope()
	c.level, c.varAddr = savedLevel, savedAddr
	if bodyErr != nil {
		return bodyErr
	}

	// Step 5: return to caller.
	if _, err := c.emit(vm.RTN, 0, 0, 0); err != nil {
		return err
	}

	// Step 6: backpatch the JMP past the body.
	c.img.Backpatch(jmpIdx, c.img.Len())

	return c.expect(token.Semi, perr.ErrMissingSemi, "semicolon missing")
}

func parseNumber(lexeme string) int {
	n := 0
	for i := 0; i < len(lexeme); i++ {
		n = n*10 + int(lexeme[i]-'0')
	}
	return n
}
