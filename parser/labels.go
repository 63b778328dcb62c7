package parser

import (
	"fmt"

	"dis/lexer"
)

// IndexAndVerify runs the two label-table passes over an
// include-expanded statement list: indexing (duplicate detection) and
// verification (undefined-reference detection). It returns the
// completed Program on success.
func IndexAndVerify(stmts []Statement) (*Program, *Error) {
	if err := validateOperands(stmts); err != nil {
		return nil, err
	}
	labels, err := indexLabels(stmts)
	if err != nil {
		return nil, err
	}
	if err := verifyReferences(stmts, labels); err != nil {
		return nil, err
	}
	return &Program{Statements: stmts, Labels: labels}, nil
}

// validateOperands enforces the invariants that every Register token
// names a key in the fixed register set and every direct Memory
// address lies within the memory bound; register-indirect addresses
// can only be checked at execution time.
func validateOperands(stmts []Statement) *Error {
	for _, s := range stmts {
		for _, tok := range s.Body {
			switch tok.Kind() {
			case lexer.TokenRegister:
				if !lexer.IsValidRegisterID(tok.Reg) {
					return newError(tok.Loc, ErrorSyntax, fmt.Sprintf("`#%s` is not a recognised register", tok.Reg))
				}
			case lexer.TokenMemory:
				if !tok.MemValid {
					return newError(tok.Loc, ErrorSyntax, fmt.Sprintf("malformed memory operand `%s`", tok))
				}
				if tok.IsIndirect {
					if !lexer.IsValidRegisterID(tok.IndirectOf) {
						return newError(tok.Loc, ErrorSyntax, fmt.Sprintf("`&#%s` is not a recognised register", tok.IndirectOf))
					}
				} else if int(tok.Addr) >= memSize {
					return newError(tok.Loc, ErrorSyntax, fmt.Sprintf("memory address %d is out of range", tok.Addr))
				}
			}
		}
	}
	return nil
}

// memSize mirrors vm.MemSize; the parser package does not import vm
// (vm depends on parser, not the reverse) so the bound is restated
// here as the language constant it is.
const memSize = 4096

func indexLabels(stmts []Statement) (map[string]int, *Error) {
	labels := make(map[string]int)
	locs := make(map[string]lexer.Location)
	for i, s := range stmts {
		if s.Label == nil {
			continue
		}
		name := s.Label.Name
		if prevLoc, ok := locs[name]; ok {
			other := prevLoc
			return nil, &Error{
				Loc:      s.Label.Loc,
				Kind:     ErrorDuplicateLabel,
				Message:  fmt.Sprintf("label `%s` is already defined", name),
				OtherLoc: &other,
			}
		}
		labels[name] = i
		locs[name] = s.Label.Loc
	}
	return labels, nil
}

func verifyReferences(stmts []Statement, labels map[string]int) *Error {
	for _, s := range stmts {
		target := s.controlTransferTarget()
		if target == nil {
			continue
		}
		if _, ok := labels[target.Name]; !ok {
			return newError(target.Loc, ErrorUndefinedLabel,
				fmt.Sprintf("label `%s` is not defined", target.Name))
		}
	}
	return nil
}
