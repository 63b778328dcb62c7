// Package parser turns a lexed DIS token stream into a linear,
// label-resolved program of Statements.
package parser

import (
	"fmt"

	"dis/lexer"
)

// Opcode identifies the operation a Statement performs.
type Opcode int

const (
	OpMOV Opcode = iota
	OpADD
	OpSUB
	OpCMP
	OpJLT
	OpJGT
	OpJEQ
	OpJNE
	OpJMP
	OpRUN
	OpRET
	OpDIE
	OpOUT
	OpPRT
	OpDBG
	OpINC
	OpRDN
	OpRDC
	OpRLN
	OpNOP
)

var opcodeNames = map[Opcode]string{
	OpMOV: "mov", OpADD: "add", OpSUB: "sub", OpCMP: "cmp",
	OpJLT: "jlt", OpJGT: "jgt", OpJEQ: "jeq", OpJNE: "jne", OpJMP: "jmp",
	OpRUN: "run", OpRET: "ret", OpDIE: "die",
	OpOUT: "out", OpPRT: "prt", OpDBG: "dbg",
	OpINC: "@", OpRDN: "rdn", OpRDC: "rdc", OpRLN: "rln",
	OpNOP: "nop",
}

var keywordToOpcode = map[string]Opcode{
	"mov": OpMOV, "add": OpADD, "sub": OpSUB, "cmp": OpCMP,
	"jlt": OpJLT, "jgt": OpJGT, "jeq": OpJEQ, "jne": OpJNE, "jmp": OpJMP,
	"run": OpRUN, "ret": OpRET, "die": OpDIE,
	"out": OpOUT, "prt": OpPRT, "dbg": OpDBG,
	"@": OpINC, "rdn": OpRDN, "rdc": OpRDC, "rln": OpRLN,
	"nop": OpNOP,
}

func (o Opcode) String() string {
	if name, ok := opcodeNames[o]; ok {
		return name
	}
	return fmt.Sprintf("Opcode(%d)", int(o))
}

// Statement is a single linked program entry: an optional label, the
// operation it performs, and its operand tokens in order.
type Statement struct {
	Label *lexer.Token // Kind() == lexer.TokenLabel, or nil
	Op    Opcode
	Body  []lexer.Token
	Loc   lexer.Location // location of the label if there is one, else of the keyword
}

// controlTransferTarget returns the target-label token for opcodes
// that jump or call, or nil for opcodes that don't.
func (s Statement) controlTransferTarget() *lexer.Token {
	switch s.Op {
	case OpJLT, OpJGT, OpJEQ, OpJNE, OpJMP, OpRUN:
		if len(s.Body) > 0 {
			return &s.Body[0]
		}
	}
	return nil
}

// Program is the fully parsed, include-expanded, label-resolved
// result of loading a DIS source file.
type Program struct {
	Statements []Statement
	Labels     map[string]int
}
