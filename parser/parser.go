package parser

import (
	"fmt"

	"dis/lexer"
)

// Parser consumes a flat token stream (already lexed, not yet
// include-expanded) and produces Statements.
type Parser struct {
	tokens []lexer.Token
	pos    int
}

// NewParser wraps a token stream for statement parsing.
func NewParser(tokens []lexer.Token) *Parser {
	return &Parser{tokens: tokens}
}

func (p *Parser) atEnd() bool { return p.pos >= len(p.tokens) }

func (p *Parser) peek() (lexer.Token, bool) {
	if p.atEnd() {
		return lexer.Token{}, false
	}
	return p.tokens[p.pos], true
}

func (p *Parser) next() lexer.Token {
	tok := p.tokens[p.pos]
	p.pos++
	return tok
}

// Parse consumes the entire token stream, returning one Statement per
// label/keyword position. Parsing stops at the first error.
func (p *Parser) Parse() ([]Statement, *Error) {
	var stmts []Statement
	for !p.atEnd() {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

func (p *Parser) parseStatement() (Statement, *Error) {
	var stmt Statement
	tok, _ := p.peek()

	if tok.Kind() == lexer.TokenLabel {
		label := p.next()
		stmt.Label = &label
		stmt.Loc = label.Loc
		if p.atEnd() {
			stmt.Op = OpNOP
			return stmt, nil
		}
		tok, _ = p.peek()
	}

	if tok.Kind() != lexer.TokenKeyword {
		msg := "expected keyword"
		if stmt.Label == nil {
			msg += " or label"
		}
		return Statement{}, newError(tok.Loc, ErrorSyntax, fmt.Sprintf("%s, found `%s`", msg, tok))
	}

	keyword := p.next()
	if stmt.Label == nil {
		stmt.Loc = keyword.Loc
	}
	op, ok := keywordToOpcode[keyword.Word]
	if !ok {
		return Statement{}, newError(keyword.Loc, ErrorSyntax, fmt.Sprintf("unknown keyword `%s`", keyword.Word))
	}
	stmt.Op = op

	arity, operandKinds := operandContract(op)
	body := make([]lexer.Token, 0, arity)
	for i := 0; i < arity; i++ {
		if p.atEnd() {
			return Statement{}, newError(keyword.Loc, ErrorSyntax,
				fmt.Sprintf("expected %d operand(s) for `%s`", arity, keyword.Word))
		}
		operand := p.next()
		if !operandKinds[i](operand) {
			return Statement{}, newError(operand.Loc, ErrorSyntax,
				fmt.Sprintf("%s, found `%s`", operandKindDescription(op, i), operand))
		}
		body = append(body, operand)
	}
	stmt.Body = body
	return stmt, nil
}

type operandPredicate func(lexer.Token) bool

func isValue(t lexer.Token) bool {
	switch t.Kind() {
	case lexer.TokenNumber, lexer.TokenChar, lexer.TokenRegister, lexer.TokenMemory:
		return true
	}
	return false
}

func isPlace(t lexer.Token) bool {
	switch t.Kind() {
	case lexer.TokenRegister, lexer.TokenMemory:
		return true
	}
	return false
}

func isIdentifier(t lexer.Token) bool { return t.Kind() == lexer.TokenIdentifier }

func isMemory(t lexer.Token) bool { return t.Kind() == lexer.TokenMemory }

// operandContract returns the arity and per-position operand
// predicates for an opcode, per the operand-kind table.
func operandContract(op Opcode) (int, []operandPredicate) {
	switch op {
	case OpMOV, OpADD, OpSUB:
		return 2, []operandPredicate{isValue, isPlace}
	case OpCMP:
		return 2, []operandPredicate{isValue, isValue}
	case OpJLT, OpJGT, OpJEQ, OpJNE, OpJMP, OpRUN:
		return 1, []operandPredicate{isIdentifier}
	case OpRET, OpDIE, OpNOP:
		return 0, nil
	case OpOUT, OpPRT, OpDBG:
		return 1, []operandPredicate{isValue}
	case OpRDN, OpRDC:
		return 1, []operandPredicate{isPlace}
	case OpRLN:
		return 2, []operandPredicate{isMemory, isValue}
	case OpINC:
		return 1, []operandPredicate{isIdentifier}
	}
	return 0, nil
}

func operandKindDescription(op Opcode, index int) string {
	switch op {
	case OpMOV, OpADD, OpSUB:
		if index == 0 {
			return "expected number, register, memory or char"
		}
		return "expected register or memory"
	case OpCMP:
		return "expected number, register, memory or char"
	case OpJLT, OpJGT, OpJEQ, OpJNE, OpJMP, OpRUN, OpINC:
		return "expected label identifier"
	case OpOUT, OpPRT, OpDBG:
		return "expected number, register, memory or char"
	case OpRDN, OpRDC:
		return "expected register or memory"
	case OpRLN:
		if index == 0 {
			return "expected memory"
		}
		return "expected number, register, memory or char"
	}
	return "expected operand"
}
