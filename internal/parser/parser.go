// Package parser implements the grammar-validating recursive-descent
// parser of spec.md §4.3. It performs no code emission and carries no
// symbol table: it is the semantic-free skeleton that internal/codegen
// augments with side effects, per spec.md §4.4.
package parser

import (
	"github.com/MatthewMSaucedo/pl0/internal/perr"
	"github.com/MatthewMSaucedo/pl0/internal/token"
)

// Parser validates a token.Stream against the PL/0 grammar. The cursor is
// threaded explicitly through this struct rather than held in package
// globals, per spec.md §9.
type Parser struct {
	stream *token.Stream
}

// New creates a Parser over tokens.
func New(tokens []token.Token) *Parser {
	return &Parser{stream: token.NewStream(tokens)}
}

// Parse validates that tokens matches the program grammar, returning the
// first error encountered, or nil if the stream is well-formed.
func Parse(tokens []token.Token) *perr.Error {
	p := New(tokens)
	return p.program()
}

func (p *Parser) cur() token.Token {
	return p.stream.Current()
}

func (p *Parser) advance() {
	p.stream.Advance()
}

// fail builds a Parse-stage error at the current token's position.
func (p *Parser) fail(code int, message string) *perr.Error {
	return perr.New(perr.Parse, code, p.cur().Pos, message)
}

// expect checks the current token's kind, advances past it on a match, and
// otherwise returns a perr.Error with the given code.
func (p *Parser) expect(kind token.Kind, code int, message string) *perr.Error {
	if p.cur().Kind != kind {
		return p.fail(code, message)
	}
	p.advance()
	return nil
}

// program = block "." .
func (p *Parser) program() *perr.Error {
	if err := p.block(); err != nil {
		return err
	}
	return p.expect(token.Period, perr.ErrExpectedPeriod, "period expected")
}

// block = [const-decl] [var-decl] {proc-decl} statement .
func (p *Parser) block() *perr.Error {
	if p.cur().Is(token.Const) {
		if err := p.constDecl(); err != nil {
			return err
		}
	}
	if p.cur().Is(token.Var) {
		if err := p.varDecl(); err != nil {
			return err
		}
	}
	for p.cur().Is(token.Procedure) {
		if err := p.procDecl(); err != nil {
			return err
		}
	}
	return p.statement()
}

// const-decl = "const" ident "=" number {"," ident "=" number} ";" .
//
// The comma/semicolon decision at each list position is a single error
// point (code 4): either continuation or termination is acceptable, only
// their absence is an error.
func (p *Parser) constDecl() *perr.Error {
	p.advance() // "const"
	for {
		if p.cur().Kind != token.Ident {
			return p.fail(perr.ErrExpectedIdentAfterKeyword, "const must be followed by identifier")
		}
		p.advance()
		if err := p.expect(token.Eql, perr.ErrExpectedEqlAfterIdent, "identifier must be followed by '='"); err != nil {
			return err
		}
		if p.cur().Kind != token.Number {
			return p.fail(perr.ErrExpectedNumberAfterEql, "'=' must be followed by a number")
		}
		p.advance()

		switch p.cur().Kind {
		case token.Comma:
			p.advance()
		case token.Semi:
			p.advance()
			return nil
		default:
			return p.fail(perr.ErrMissingSemiOrComma, "semicolon or comma missing")
		}
	}
}

// var-decl = "var" ident {"," ident} ";" .
func (p *Parser) varDecl() *perr.Error {
	p.advance() // "var"
	for {
		if p.cur().Kind != token.Ident {
			return p.fail(perr.ErrExpectedIdentAfterKeyword, "var must be followed by identifier")
		}
		p.advance()

		switch p.cur().Kind {
		case token.Comma:
			p.advance()
		case token.Semi:
			p.advance()
			return nil
		default:
			return p.fail(perr.ErrMissingSemiOrComma, "semicolon or comma missing")
		}
	}
}

// proc-decl = "procedure" ident ";" block ";" .
func (p *Parser) procDecl() *perr.Error {
	p.advance() // "procedure"
	if p.cur().Kind != token.Ident {
		return p.fail(perr.ErrExpectedIdentAfterKeyword, "procedure must be followed by identifier")
	}
	p.advance()
	if err := p.expect(token.Semi, perr.ErrMissingSemi, "semicolon missing"); err != nil {
		return err
	}
	if err := p.block(); err != nil {
		return err
	}
	return p.expect(token.Semi, perr.ErrMissingSemi, "semicolon missing")
}

// statement = [ ident ":=" expression
//             | "call" ident
//             | "begin" statement {";" statement} "end"
//             | "if" condition "then" statement ["else" statement]
//             | "while" condition "do" statement
//             | "read" ident
//             | "write" ident ] .
func (p *Parser) statement() *perr.Error {
	switch p.cur().Kind {
	case token.Ident:
		p.advance()
		if err := p.expect(token.Becomes, perr.ErrExpectedBecomes, "assignment operator expected"); err != nil {
			return err
		}
		return p.expression()

	case token.Call:
		p.advance()
		return p.expect(token.Ident, perr.ErrExpectedIdentAfterCall, "'call' must be followed by identifier")

	case token.Begin:
		p.advance()
		if err := p.statement(); err != nil {
			return err
		}
		for p.cur().Is(token.Semi) {
			p.advance()
			if err := p.statement(); err != nil {
				return err
			}
		}
		return p.expect(token.End, perr.ErrMissingSemiOrEnd, "semicolon or 'end' expected")

	case token.If:
		p.advance()
		if err := p.condition(); err != nil {
			return err
		}
		if err := p.expect(token.Then, perr.ErrExpectedThen, "'then' expected"); err != nil {
			return err
		}
		if err := p.statement(); err != nil {
			return err
		}
		if p.cur().Is(token.Else) {
			p.advance()
			return p.statement()
		}
		return nil

	case token.While:
		p.advance()
		if err := p.condition(); err != nil {
			return err
		}
		if err := p.expect(token.Do, perr.ErrExpectedDo, "'do' expected"); err != nil {
			return err
		}
		return p.statement()

	case token.Read:
		p.advance()
		return p.expect(token.Ident, perr.ErrExpectedIdentAfterKeyword, "read must be followed by identifier")

	case token.Write:
		p.advance()
		return p.expect(token.Ident, perr.ErrExpectedIdentAfterKeyword, "write must be followed by identifier")

	default:
		// An empty statement is allowed by the grammar's [ ... ].
		return nil
	}
}

// condition = "odd" expression | expression relop expression .
func (p *Parser) condition() *perr.Error {
	if p.cur().Is(token.Odd) {
		p.advance()
		return p.expression()
	}
	if err := p.expression(); err != nil {
		return err
	}
	if !isRelop(p.cur().Kind) {
		return p.fail(perr.ErrExpectedRelop, "relational operator expected")
	}
	p.advance()
	return p.expression()
}

func isRelop(k token.Kind) bool {
	switch k {
	case token.Eql, token.Neq, token.Lss, token.Leq, token.Gtr, token.Geq:
		return true
	default:
		return false
	}
}

// expression = ["+"|"-"] term {("+"|"-") term} .
func (p *Parser) expression() *perr.Error {
	if p.cur().Kind == token.Plus || p.cur().Kind == token.Minus {
		p.advance()
	}
	if err := p.term(); err != nil {
		return err
	}
	for p.cur().Kind == token.Plus || p.cur().Kind == token.Minus {
		p.advance()
		if err := p.term(); err != nil {
			return err
		}
	}
	return nil
}

// term = factor {("*"|"/") factor} .
func (p *Parser) term() *perr.Error {
	if err := p.factor(); err != nil {
		return err
	}
	for p.cur().Kind == token.Times || p.cur().Kind == token.Slash {
		p.advance()
		if err := p.factor(); err != nil {
			return err
		}
	}
	return nil
}

// factor = ident | number | "(" expression ")" .
func (p *Parser) factor() *perr.Error {
	switch p.cur().Kind {
	case token.Ident, token.Number:
		p.advance()
		return nil
	case token.Lparen:
		p.advance()
		if err := p.expression(); err != nil {
			return err
		}
		return p.expect(token.Rparen, perr.ErrMissingRparen, "right parenthesis missing")
	default:
		return p.fail(perr.ErrIllegalFactorStart, "factor cannot begin with this symbol")
	}
}
