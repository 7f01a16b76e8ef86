package codegen

import (
	"github.com/MatthewMSaucedo/pl0/internal/perr"
	"github.com/MatthewMSaucedo/pl0/internal/symtab"
	"github.com/MatthewMSaucedo/pl0/internal/token"
	"github.com/MatthewMSaucedo/pl0/internal/vm"
)

// staticLinkDistance computes L = max(0, Lc-Ld) per spec.md §4.4.
func staticLinkDistance(currentLevel, declLevel int) int {
	d := currentLevel - declLevel
	if d < 0 {
		return 0
	}
	return d
}

// resolve looks up name, failing with a codegen error (code 0 — spec.md's
// numbered table covers wrong-kind-of-symbol errors 16/17, not an outright
// missing declaration, which spec.md's invariants assume never happens on
// accepted input but which a defensive implementation still must reject)
// if the name was never declared in any visible scope.
func (c *Codegen) resolve(name string) (symtab.Symbol, *perr.Error) {
	sym, ok := c.table.Find(name)
	if !ok {
		return symtab.Symbol{}, c.fail(0, "undeclared identifier: "+name)
	}
	return sym, nil
}

// statement = [ ident ":=" expression
//             | "call" ident
//             | "begin" statement {";" statement} "end"
//             | "if" condition "then" statement ["else" statement]
//             | "while" condition "do" statement
//             | "read" ident
//             | "write" ident ] .
func (c *Codegen) statement() *perr.Error {
	switch c.cur().Kind {
	case token.Ident:
		return c.assignment()
	case token.Call:
		return c.callStatement()
	case token.Begin:
		return c.beginStatement()
	case token.If:
		return c.ifStatement()
	case token.While:
		return c.whileStatement()
	case token.Read:
		return c.readStatement()
	case token.Write:
		return c.writeStatement()
	default:
		return nil
	}
}

// assignment resolves the target identifier's symbol before consuming the
// RHS expression (spec.md §9's open question): the STO that follows the
// expression uses the symbol captured here, not a re-lookup of whatever
// token happens to be current once the expression has been parsed.
func (c *Codegen) assignment() *perr.Error {
	name := c.cur().Lexeme
	c.advance()

	sym, err := c.resolve(name)
	if err != nil {
		return err
	}
	if sym.Kind != symtab.VarKind {
		return c.fail(perr.ErrAssignToConstOrProc, "assignment to constant or procedure not allowed")
	}

	if err := c.expect(token.Becomes, perr.ErrExpectedBecomes, "assignment operator expected"); err != nil {
		return err
	}

	reg, err := c.evalExpression()
	if err != nil {
		return err
	}

	l := staticLinkDistance(c.level, sym.Level)
	if _, err := c.emit(vm.STO, reg, l, sym.Address); err != nil {
		return err
	}
	c.cr = 0
	return nil
}

func (c *Codegen) callStatement() *perr.Error {
	c.advance() // "call"
	if c.cur().Kind != token.Ident {
		return c.fail(perr.ErrExpectedIdentAfterCall, "'call' must be followed by identifier")
	}
	name := c.cur().Lexeme
	c.advance()

	sym, err := c.resolve(name)
	if err != nil {
		return err
	}
	if sym.Kind != symtab.ProcKind {
		return c.fail(perr.ErrCallOfConstOrVar, "call of a constant or variable not allowed")
	}

	l := staticLinkDistance(c.level, sym.Level)
	_, emitErr := c.emit(vm.CAL, 0, l, sym.Address)
	return emitErr
}

func (c *Codegen) beginStatement() *perr.Error {
	c.advance() // "begin"
	if err := c.statement(); err != nil {
		return err
	}
	for c.cur().Is(token.Semi) {
		c.advance()
		if err := c.statement(); err != nil {
			return err
		}
	}
	return c.expect(token.End, perr.ErrMissingSemiOrEnd, "semicolon or 'end' expected")
}

// ifStatement implements spec.md §4.4's if/then/else backpatch shape.
func (c *Codegen) ifStatement() *perr.Error {
	c.advance() // "if"
	reg, err := c.evalCondition()
	if err != nil {
		return err
	}
	jpcIdx, err := c.emit(vm.JPC, reg, 0, 0)
	if err != nil {
		return err
	}
	c.cr = 0

	if err := c.expect(token.Then, perr.ErrExpectedThen, "'then' expected"); err != nil {
		return err
	}
	if err := c.statement(); err != nil {
		return err
	}

	if c.cur().Is(token.Else) {
		jmpIdx, err := c.emit(vm.JMP, 0, 0, 0)
		if err != nil {
			return err
		}
		c.img.Backpatch(jpcIdx, c.img.Len())
		c.advance() // "else"
		if err := c.statement(); err != nil {
			return err
		}
		c.img.Backpatch(jmpIdx, c.img.Len())
		return nil
	}

	c.img.Backpatch(jpcIdx, c.img.Len())
	return nil
}

// whileStatement implements spec.md §4.4's while/do backpatch shape.
func (c *Codegen) whileStatement() *perr.Error {
	c.advance() // "while"
	l1 := c.img.Len()

	reg, err := c.evalCondition()
	if err != nil {
		return err
	}
	jpcIdx, err := c.emit(vm.JPC, reg, 0, 0)
	if err != nil {
		return err
	}
	c.cr = 0

	if err := c.expect(token.Do, perr.ErrExpectedDo, "'do' expected"); err != nil {
		return err
	}
	if err := c.statement(); err != nil {
		return err
	}

	if _, err := c.emit(vm.JMP, 0, 0, l1); err != nil {
		return err
	}
	c.img.Backpatch(jpcIdx, c.img.Len())
	return nil
}

// readStatement implements spec.md §4.4: `SIO_READ r, 0, 2` into a
// register, then STO into the target. The target must be a VAR, for the
// same reason an assignment target must be: read fills a storage slot.
func (c *Codegen) readStatement() *perr.Error {
	c.advance() // "read"
	if c.cur().Kind != token.Ident {
		return c.fail(perr.ErrExpectedIdentAfterKeyword, "read must be followed by identifier")
	}
	name := c.cur().Lexeme
	c.advance()

	sym, err := c.resolve(name)
	if err != nil {
		return err
	}
	if sym.Kind != symtab.VarKind {
		return c.fail(perr.ErrAssignToConstOrProc, "assignment to constant or procedure not allowed")
	}

	reg, err := c.newRegister()
	if err != nil {
		return err
	}
	if _, err := c.emit(vm.SIORead, reg, 0, 2); err != nil {
		return err
	}
	l := staticLinkDistance(c.level, sym.Level)
	if _, err := c.emit(vm.STO, reg, l, sym.Address); err != nil {
		return err
	}
	c.cr = 0
	return nil
}

// writeStatement implements spec.md §4.4 and §9's open question: the
// operand is always loaded into a register before SIO_WRITE reads it (LOD
// for a variable, LIT for a constant).
func (c *Codegen) writeStatement() *perr.Error {
	c.advance() // "write"
	if c.cur().Kind != token.Ident {
		return c.fail(perr.ErrExpectedIdentAfterKeyword, "write must be followed by identifier")
	}
	name := c.cur().Lexeme
	c.advance()

	sym, err := c.resolve(name)
	if err != nil {
		return err
	}
	if sym.Kind == symtab.ProcKind {
		return c.fail(0, "write operand must be a constant or variable, not a procedure")
	}

	reg, err := c.newRegister()
	if err != nil {
		return err
	}
	if sym.Kind == symtab.ConstKind {
		if _, err := c.emit(vm.LIT, reg, 0, sym.Value); err != nil {
			return err
		}
	} else {
		l := staticLinkDistance(c.level, sym.Level)
		if _, err := c.emit(vm.LOD, reg, l, sym.Address); err != nil {
			return err
		}
	}
	if _, err := c.emit(vm.SIOWrite, reg, 0, 1); err != nil {
		return err
	}
	c.cr = 0
	return nil
}
