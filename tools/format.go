// Package tools provides source-level utilities over a parsed DIS
// program: a canonical pretty-printer, a static linter, and a
// cross-reference builder, all operating on parser.Statement the way
// the core itself does.
package tools

import (
	"strings"

	"dis/lexer"
	"dis/parser"
)

// FormatStyle selects a pretty-printing layout.
type FormatStyle int

const (
	FormatDefault  FormatStyle = iota // aligned columns
	FormatCompact                     // minimal whitespace, one space between fields
	FormatExpanded                    // wider columns for readability
)

// FormatOptions controls formatter layout.
type FormatOptions struct {
	Style             FormatStyle
	InstructionColumn int // column the keyword starts at when no label occupies it
	OperandColumn     int // column operands start at
	AlignOperands     bool
}

// DefaultFormatOptions is the standard aligned layout.
func DefaultFormatOptions() *FormatOptions {
	return &FormatOptions{
		Style:             FormatDefault,
		InstructionColumn: 8,
		OperandColumn:     16,
		AlignOperands:     true,
	}
}

// CompactFormatOptions packs statements as tightly as the language
// allows: still one statement per line, single spaces between fields.
func CompactFormatOptions() *FormatOptions {
	return &FormatOptions{Style: FormatCompact}
}

// ExpandedFormatOptions widens the default columns for dense programs.
func ExpandedFormatOptions() *FormatOptions {
	opts := DefaultFormatOptions()
	opts.Style = FormatExpanded
	opts.InstructionColumn = 12
	opts.OperandColumn = 28
	return opts
}

// Formatter renders a parsed DIS program back to canonical source
// text, the pretty-printer behind the `fmt` subcommand. Formatting a
// statement and lexing the result yields equivalent tokens.
type Formatter struct {
	options *FormatOptions
}

// NewFormatter creates a Formatter; a nil options uses the default
// layout.
func NewFormatter(options *FormatOptions) *Formatter {
	if options == nil {
		options = DefaultFormatOptions()
	}
	return &Formatter{options: options}
}

// FormatString parses src as a single DIS file (without expanding
// @includes, so the formatter reproduces the unexpanded source
// exactly) and renders it with the default options.
func FormatString(src, filename string) (string, error) {
	return NewFormatter(DefaultFormatOptions()).FormatString(src, filename)
}

// FormatString parses src as a single file and renders it with f's
// options.
func (f *Formatter) FormatString(src, filename string) (string, error) {
	lx := lexer.New(src, filename)
	toks := lx.TokenizeAll()
	if errs := lx.Errors(); len(errs) > 0 {
		return "", errs[0]
	}
	stmts, err := parser.NewParser(toks).Parse()
	if err != nil {
		return "", err
	}
	return f.FormatStatements(stmts), nil
}

// FormatStatements renders a sequence of statements, one per line.
func (f *Formatter) FormatStatements(stmts []parser.Statement) string {
	var out strings.Builder
	for _, s := range stmts {
		out.WriteString(f.FormatStatement(s))
		out.WriteString("\n")
	}
	return out.String()
}

// FormatStatement renders a single statement on one line, with no
// trailing newline. A label-only NOP renders as just the label.
func (f *Formatter) FormatStatement(s parser.Statement) string {
	var line strings.Builder

	if s.Label != nil {
		line.WriteString(s.Label.Name)
		line.WriteString(":")
	}

	if s.Label != nil && s.Op == parser.OpNOP && len(s.Body) == 0 {
		return line.String()
	}

	switch f.options.Style {
	case FormatCompact:
		if s.Label != nil {
			line.WriteString(" ")
		}
		line.WriteString(s.Op.String())
	default:
		f.padTo(&line, f.options.InstructionColumn)
		line.WriteString(s.Op.String())
	}

	if len(s.Body) > 0 {
		switch f.options.Style {
		case FormatCompact:
			line.WriteString(" ")
		default:
			f.padTo(&line, f.options.OperandColumn)
		}
		line.WriteString(f.formatOperands(s.Body))
	}

	return line.String()
}

func (f *Formatter) formatOperands(body []lexer.Token) string {
	parts := make([]string, len(body))
	for i, tok := range body {
		parts[i] = tok.String()
	}
	sep := "  "
	if f.options.Style == FormatCompact {
		sep = " "
	}
	return strings.Join(parts, sep)
}

func (f *Formatter) padTo(sb *strings.Builder, column int) {
	if f.options.Style == FormatCompact {
		return
	}
	current := sb.Len()
	if current >= column {
		sb.WriteString(" ")
		return
	}
	sb.WriteString(strings.Repeat(" ", column-current))
}

// FormatStringWithStyle formats src with the options of the requested
// style.
func FormatStringWithStyle(src, filename string, style FormatStyle) (string, error) {
	var opts *FormatOptions
	switch style {
	case FormatCompact:
		opts = CompactFormatOptions()
	case FormatExpanded:
		opts = ExpandedFormatOptions()
	default:
		opts = DefaultFormatOptions()
	}
	return NewFormatter(opts).FormatString(src, filename)
}

// FormatTargetText renders just the label-reference text of a
// control-transfer statement's operand.
func FormatTargetText(s parser.Statement) string {
	if len(s.Body) == 0 {
		return ""
	}
	return s.Body[0].Name
}
