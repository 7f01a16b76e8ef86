package codegen

import (
	"github.com/MatthewMSaucedo/pl0/internal/perr"
	"github.com/MatthewMSaucedo/pl0/internal/symtab"
	"github.com/MatthewMSaucedo/pl0/internal/token"
	"github.com/MatthewMSaucedo/pl0/internal/vm"
)

// evalExpression resets the register cursor and evaluates a single
// top-level expression, returning the register holding its result.
func (c *Codegen) evalExpression() (int, *perr.Error) {
	c.cr = 0
	if err := c.expression(); err != nil {
		return 0, err
	}
	return c.cr - 1, nil
}

// evalCondition resets the register cursor and evaluates a condition.
func (c *Codegen) evalCondition() (int, *perr.Error) {
	c.cr = 0
	if err := c.condition(); err != nil {
		return 0, err
	}
	return c.cr - 1, nil
}

// condition = "odd" expression | expression relop expression .
func (c *Codegen) condition() *perr.Error {
	if c.cur().Is(token.Odd) {
		c.advance()
		if err := c.expression(); err != nil {
			return err
		}
		reg := c.cr - 1
		_, err := c.emit(vm.ODD, reg, 0, 0)
		return err
	}

	if err := c.expression(); err != nil {
		return err
	}
	op, ok := relop(c.cur().Kind)
	if !ok {
		return c.fail(perr.ErrExpectedRelop, "relational operator expected")
	}
	c.advance()
	if err := c.expression(); err != nil {
		return err
	}

	l, m := c.cr-2, c.cr-1
	if _, err := c.emit(op, l, l, m); err != nil {
		return err
	}
	c.cr--
	return nil
}

func relop(k token.Kind) (vm.Op, bool) {
	switch k {
	case token.Eql:
		return vm.EQL, true
	case token.Neq:
		return vm.NEQ, true
	case token.Lss:
		return vm.LSS, true
	case token.Leq:
		return vm.LEQ, true
	case token.Gtr:
		return vm.GTR, true
	case token.Geq:
		return vm.GEQ, true
	default:
		return 0, false
	}
}

// expression = ["+"|"-"] term {("+"|"-") term} .
func (c *Codegen) expression() *perr.Error {
	negate := false
	if c.cur().Kind == token.Plus {
		c.advance()
	} else if c.cur().Kind == token.Minus {
		negate = true
		c.advance()
	}

	if err := c.term(); err != nil {
		return err
	}
	if negate {
		reg := c.cr - 1
		if _, err := c.emit(vm.NEG, reg, reg, 0); err != nil {
			return err
		}
	}

	for c.cur().Kind == token.Plus || c.cur().Kind == token.Minus {
		op := vm.ADD
		if c.cur().Kind == token.Minus {
			op = vm.SUB
		}
		c.advance()
		if err := c.term(); err != nil {
			return err
		}
		l, m := c.cr-2, c.cr-1
		if _, err := c.emit(op, l, l, m); err != nil {
			return err
		}
		c.cr--
	}
	return nil
}

// term = factor {("*"|"/") factor} .
func (c *Codegen) term() *perr.Error {
	if err := c.factor(); err != nil {
		return err
	}
	for c.cur().Kind == token.Times || c.cur().Kind == token.Slash {
		op := vm.MUL
		if c.cur().Kind == token.Slash {
			op = vm.DIV
		}
		c.advance()
		if err := c.factor(); err != nil {
			return err
		}
		l, m := c.cr-2, c.cr-1
		if _, err := c.emit(op, l, l, m); err != nil {
			return err
		}
		c.cr--
	}
	return nil
}

// factor = ident | number | "(" expression ")" .
func (c *Codegen) factor() *perr.Error {
	switch c.cur().Kind {
	case token.Ident:
		name := c.cur().Lexeme
		c.advance()
		sym, err := c.resolve(name)
		if err != nil {
			return err
		}
		reg, err := c.newRegister()
		if err != nil {
			return err
		}
		switch sym.Kind {
		case symtab.ConstKind:
			_, emitErr := c.emit(vm.LIT, reg, 0, sym.Value)
			return emitErr
		case symtab.VarKind:
			l := staticLinkDistance(c.level, sym.Level)
			_, emitErr := c.emit(vm.LOD, reg, l, sym.Address)
			return emitErr
		default:
			return c.fail(0, "procedure name cannot be used as a value")
		}

	case token.Number:
		value := parseNumber(c.cur().Lexeme)
		c.advance()
		reg, err := c.newRegister()
		if err != nil {
			return err
		}
		_, emitErr := c.emit(vm.LIT, reg, 0, value)
		return emitErr

	case token.Lparen:
		c.advance()
		if err := c.expression(); err != nil {
			return err
		}
		return c.expect(token.Rparen, perr.ErrMissingRparen, "right parenthesis missing")

	default:
		return c.fail(perr.ErrIllegalFactorStart, "factor cannot begin with this symbol")
	}
}
