package tools

import (
	"fmt"
	"sort"
	"strings"

	"dis/lexer"
	"dis/parser"
)

// ReferenceType indicates how a label is used at a reference site.
type ReferenceType int

const (
	RefDefinition ReferenceType = iota // label defined here
	RefJump                            // target of jlt/jgt/jeq/jne/jmp
	RefCall                             // target of run
)

func (r ReferenceType) String() string {
	switch r {
	case RefDefinition:
		return "definition"
	case RefJump:
		return "jump"
	case RefCall:
		return "call"
	default:
		return "unknown"
	}
}

// Reference is a single use of a label at a source location.
type Reference struct {
	Type ReferenceType
	Loc  lexer.Location
}

// Symbol is a label and every reference to it found in a program.
type Symbol struct {
	Name       string
	Definition *Reference
	References []*Reference
	IsCallable bool // true once some run statement targets this label
}

// XRefGenerator builds a cross-reference table over a parsed DIS
// program: where each label is defined, and where each jlt/jgt/jeq/
// jne/jmp/run statement refers to it.
type XRefGenerator struct {
	symbols map[string]*Symbol
}

// NewXRefGenerator creates an empty XRefGenerator.
func NewXRefGenerator() *XRefGenerator {
	return &XRefGenerator{symbols: make(map[string]*Symbol)}
}

// Generate parses src as a single DIS file and builds its
// cross-reference table.
func (x *XRefGenerator) Generate(src, filename string) (map[string]*Symbol, error) {
	lx := lexer.New(src, filename)
	toks := lx.TokenizeAll()
	if errs := lx.Errors(); len(errs) > 0 {
		return nil, errs[0]
	}

	stmts, err := parser.NewParser(toks).Parse()
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	return x.GenerateFromStatements(stmts), nil
}

// GenerateFromStatements builds the cross-reference table from an
// already-parsed statement list (e.g. after include expansion).
func (x *XRefGenerator) GenerateFromStatements(stmts []parser.Statement) map[string]*Symbol {
	x.collectDefinitions(stmts)
	x.collectReferences(stmts)
	return x.symbols
}

func (x *XRefGenerator) symbol(name string) *Symbol {
	if sym, ok := x.symbols[name]; ok {
		return sym
	}
	sym := &Symbol{Name: name}
	x.symbols[name] = sym
	return sym
}

func (x *XRefGenerator) collectDefinitions(stmts []parser.Statement) {
	for _, s := range stmts {
		if s.Label == nil {
			continue
		}
		sym := x.symbol(s.Label.Name)
		sym.Definition = &Reference{Type: RefDefinition, Loc: s.Label.Loc}
	}
}

func (x *XRefGenerator) collectReferences(stmts []parser.Statement) {
	for _, s := range stmts {
		target := controlTransferTargetName(s)
		if target == "" {
			continue
		}
		refType := RefJump
		if s.Op == parser.OpRUN {
			refType = RefCall
		}
		sym := x.symbol(target)
		sym.References = append(sym.References, &Reference{Type: refType, Loc: s.Body[0].Loc})
		if refType == RefCall {
			sym.IsCallable = true
		}
	}
}

// GetSymbols returns every label found, defined or merely referenced.
func (x *XRefGenerator) GetSymbols() map[string]*Symbol {
	return x.symbols
}

// GetSymbol returns a specific label's cross-reference entry.
func (x *XRefGenerator) GetSymbol(name string) (*Symbol, bool) {
	sym, ok := x.symbols[name]
	return sym, ok
}

// GetCallable returns labels that are the target of at least one run
// statement, sorted by name.
func (x *XRefGenerator) GetCallable() []*Symbol {
	var out []*Symbol
	for _, sym := range x.symbols {
		if sym.IsCallable {
			out = append(out, sym)
		}
	}
	sortSymbols(out)
	return out
}

// GetUndefinedSymbols returns labels referenced but never defined.
func (x *XRefGenerator) GetUndefinedSymbols() []*Symbol {
	var out []*Symbol
	for _, sym := range x.symbols {
		if sym.Definition == nil && len(sym.References) > 0 {
			out = append(out, sym)
		}
	}
	sortSymbols(out)
	return out
}

// GetUnusedSymbols returns labels defined but never referenced,
// excluding conventional entry-point names.
func (x *XRefGenerator) GetUnusedSymbols() []*Symbol {
	var out []*Symbol
	for _, sym := range x.symbols {
		if sym.Definition != nil && len(sym.References) == 0 && !isSpecialLabel(sym.Name) {
			out = append(out, sym)
		}
	}
	sortSymbols(out)
	return out
}

func sortSymbols(syms []*Symbol) {
	sort.Slice(syms, func(i, j int) bool { return syms[i].Name < syms[j].Name })
}

// XRefReport renders a symbols table as a human-readable report, the
// output behind the `check -xref` flag.
type XRefReport struct {
	symbols []*Symbol
}

// NewXRefReport sorts symbols by name for stable report output.
func NewXRefReport(symbols map[string]*Symbol) *XRefReport {
	sorted := make([]*Symbol, 0, len(symbols))
	for _, sym := range symbols {
		sorted = append(sorted, sym)
	}
	sortSymbols(sorted)
	return &XRefReport{symbols: sorted}
}

// String renders the report.
func (r *XRefReport) String() string {
	var sb strings.Builder

	sb.WriteString("Label Cross-Reference\n")
	sb.WriteString("======================\n\n")

	for _, sym := range r.symbols {
		sb.WriteString(fmt.Sprintf("%-24s", sym.Name))
		if sym.IsCallable {
			sb.WriteString(" [callable]")
		} else {
			sb.WriteString(" [label]")
		}
		sb.WriteString("\n")

		if sym.Definition != nil {
			sb.WriteString(fmt.Sprintf("  defined:    %s\n", sym.Definition.Loc))
		} else {
			sb.WriteString("  defined:    (undefined)\n")
		}

		if len(sym.References) == 0 {
			sb.WriteString("  referenced: (never)\n")
		} else {
			sb.WriteString(fmt.Sprintf("  referenced: %d time(s)\n", len(sym.References)))
			for _, ref := range sym.References {
				sb.WriteString(fmt.Sprintf("    %-6s %s\n", ref.Type, ref.Loc))
			}
		}
		sb.WriteString("\n")
	}

	defined, undefined, unused, callable := 0, 0, 0, 0
	for _, sym := range r.symbols {
		if sym.Definition != nil {
			defined++
		} else {
			undefined++
		}
		if len(sym.References) == 0 {
			unused++
		}
		if sym.IsCallable {
			callable++
		}
	}

	sb.WriteString("Summary\n")
	sb.WriteString("=======\n")
	sb.WriteString(fmt.Sprintf("Total labels: %d\n", len(r.symbols)))
	sb.WriteString(fmt.Sprintf("Defined:      %d\n", defined))
	sb.WriteString(fmt.Sprintf("Undefined:    %d\n", undefined))
	sb.WriteString(fmt.Sprintf("Unused:       %d\n", unused))
	sb.WriteString(fmt.Sprintf("Callable:     %d\n", callable))

	return sb.String()
}

// GenerateXRef is a convenience wrapper producing a formatted report
// directly from source text.
func GenerateXRef(src, filename string) (string, error) {
	gen := NewXRefGenerator()
	symbols, err := gen.Generate(src, filename)
	if err != nil {
		return "", err
	}
	return NewXRefReport(symbols).String(), nil
}
