package tools

import (
	"fmt"
	"sort"

	"dis/lexer"
	"dis/parser"
)

// LintLevel represents the severity of a lint issue
type LintLevel int

const (
	LintError   LintLevel = iota // syntax errors, undefined references
	LintWarning                  // suspicious constructs, potential issues
	LintInfo                     // suggestions, style recommendations
)

func (l LintLevel) String() string {
	switch l {
	case LintError:
		return "error"
	case LintWarning:
		return "warning"
	case LintInfo:
		return "info"
	default:
		return "unknown"
	}
}

// LintIssue represents a single lint finding.
type LintIssue struct {
	Level   LintLevel
	Loc     lexer.Location
	Line    int
	Message string
	Code    string // e.g. "UNDEF_LABEL", "UNREACHABLE_CODE"
}

func (i *LintIssue) String() string {
	return fmt.Sprintf("%s: %s: %s [%s]", i.Loc, i.Level, i.Message, i.Code)
}

// LintOptions controls linter behavior.
type LintOptions struct {
	Strict       bool // reserved for CLI front ends that want warnings to fail the build
	CheckUnused  bool // warn about labels defined but never referenced
	CheckReach   bool // warn about statements after DIE/JMP/RET with no label
	CheckRegUse  bool // warn about writes to the reserved "e"/"3" registers
	SuggestFixes bool // suggest a similarly-spelled label for UNDEF_LABEL
}

// DefaultLintOptions enables every check.
func DefaultLintOptions() *LintOptions {
	return &LintOptions{
		CheckUnused:  true,
		CheckReach:   true,
		CheckRegUse:  true,
		SuggestFixes: true,
	}
}

// Linter performs static analysis over a parsed DIS statement stream.
// Duplicate/undefined labels are fatal at Load; the linter surfaces
// the same classes of problem without executing anything, plus
// style-level findings the loader has no reason to reject a program
// for.
type Linter struct {
	options *LintOptions
	issues  []*LintIssue

	stmts []parser.Statement

	definedLabels    map[string]lexer.Location
	referencedLabels map[string][]lexer.Location
}

// NewLinter creates a Linter; a nil options enables every check.
func NewLinter(options *LintOptions) *Linter {
	if options == nil {
		options = DefaultLintOptions()
	}
	return &Linter{
		options:          options,
		definedLabels:    make(map[string]lexer.Location),
		referencedLabels: make(map[string][]lexer.Location),
	}
}

// Lint parses src as a single DIS file, without include expansion,
// and returns every issue found, sorted by location.
func (l *Linter) Lint(src, filename string) []*LintIssue {
	lx := lexer.New(src, filename)
	toks := lx.TokenizeAll()
	for _, lerr := range lx.Errors() {
		l.addIssue(LintError, lerr.Loc, lerr.Message, "LEX_ERROR")
	}

	stmts, perr := parser.NewParser(toks).Parse()
	if perr != nil {
		l.addIssue(LintError, perr.Loc, perr.Message, "PARSE_ERROR")
		return l.sorted()
	}

	return l.LintStatements(stmts)
}

// LintStatements runs every enabled analysis pass over an
// already-parsed statement list (e.g. after include expansion) and
// returns the issues found, sorted by location.
func (l *Linter) LintStatements(stmts []parser.Statement) []*LintIssue {
	l.stmts = stmts

	l.collectLabels()
	l.checkLabelReferences()

	if l.options.CheckUnused {
		l.checkUnusedLabels()
	}
	if l.options.CheckReach {
		l.checkUnreachableCode()
	}
	if l.options.CheckRegUse {
		l.checkRegisterUsage()
	}

	return l.sorted()
}

func (l *Linter) addIssue(level LintLevel, loc lexer.Location, message, code string) {
	l.issues = append(l.issues, &LintIssue{Level: level, Loc: loc, Line: loc.Line, Message: message, Code: code})
}

func (l *Linter) sorted() []*LintIssue {
	sort.SliceStable(l.issues, func(i, j int) bool {
		a, b := l.issues[i].Loc, l.issues[j].Loc
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
	return l.issues
}

func (l *Linter) collectLabels() {
	for _, s := range l.stmts {
		if s.Label == nil {
			continue
		}
		name := s.Label.Name
		if _, exists := l.definedLabels[name]; exists {
			l.addIssue(LintWarning, s.Label.Loc, fmt.Sprintf("duplicate label '%s'", name), "DUPLICATE_LABEL")
			continue
		}
		l.definedLabels[name] = s.Label.Loc
	}
}

func (l *Linter) checkLabelReferences() {
	for _, s := range l.stmts {
		target := controlTransferTargetName(s)
		if target == "" {
			continue
		}
		loc := s.Body[0].Loc
		l.referencedLabels[target] = append(l.referencedLabels[target], loc)

		if _, defined := l.definedLabels[target]; !defined {
			msg := fmt.Sprintf("undefined label '%s'", target)
			if l.options.SuggestFixes {
				if suggestion := l.findSimilarLabel(target); suggestion != "" {
					msg += fmt.Sprintf(" (did you mean '%s'?)", suggestion)
				}
			}
			l.addIssue(LintError, loc, msg, "UNDEF_LABEL")
		}
	}
}

func controlTransferTargetName(s parser.Statement) string {
	switch s.Op {
	case parser.OpJLT, parser.OpJGT, parser.OpJEQ, parser.OpJNE, parser.OpJMP, parser.OpRUN:
		if len(s.Body) > 0 {
			return s.Body[0].Name
		}
	}
	return ""
}

// isSpecialLabel reports whether label is a conventional entry point
// that programs often leave unreferenced because the loader, not a
// jump, is what reaches it.
func isSpecialLabel(label string) bool {
	switch label {
	case "main", "start", "_start":
		return true
	default:
		return false
	}
}

func (l *Linter) checkUnusedLabels() {
	names := make([]string, 0, len(l.definedLabels))
	for name := range l.definedLabels {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if isSpecialLabel(name) {
			continue
		}
		if _, used := l.referencedLabels[name]; !used {
			l.addIssue(LintWarning, l.definedLabels[name], fmt.Sprintf("label '%s' defined but never referenced", name), "UNUSED_LABEL")
		}
	}
}

// checkUnreachableCode warns about a statement immediately following
// an unconditional DIE/JMP/RET that carries no label of its own (so
// it can never be reached by any jump).
func (l *Linter) checkUnreachableCode() {
	for i, s := range l.stmts {
		switch s.Op {
		case parser.OpDIE, parser.OpJMP, parser.OpRET:
		default:
			continue
		}
		if i+1 >= len(l.stmts) {
			continue
		}
		next := l.stmts[i+1]
		if next.Label != nil {
			continue
		}
		l.addIssue(LintWarning, next.Loc, "unreachable code", "UNREACHABLE_CODE")
	}
}

// checkRegisterUsage warns when a statement writes directly to the
// "e" I/O-error register or the "3" length register outside of
// RDN/RDC/RLN, since those writes race with the next I/O
// instruction's own assignment to the same register.
func (l *Linter) checkRegisterUsage() {
	for _, s := range l.stmts {
		if s.Op == parser.OpRDN || s.Op == parser.OpRDC || s.Op == parser.OpRLN {
			continue
		}
		place := writtenPlace(s)
		if place == nil || place.Kind() != lexer.TokenRegister {
			continue
		}
		switch place.Reg {
		case "e":
			l.addIssue(LintWarning, place.Loc, "writing #e directly; this register is also set by rdn/rdc", "RESERVED_REGISTER_WRITE")
		case "3":
			l.addIssue(LintInfo, place.Loc, "writing #3 directly; rln also stores the read length here", "RESERVED_REGISTER_WRITE")
		}
	}
}

func writtenPlace(s parser.Statement) *lexer.Token {
	switch s.Op {
	case parser.OpMOV, parser.OpADD, parser.OpSUB:
		if len(s.Body) > 1 {
			return &s.Body[1]
		}
	}
	return nil
}

// findSimilarLabel finds the defined label with the smallest edit
// distance to target, within a small threshold, for a "did you mean"
// suggestion.
func (l *Linter) findSimilarLabel(target string) string {
	best := ""
	bestDist := 3 // anything further than this isn't a useful suggestion
	names := make([]string, 0, len(l.definedLabels))
	for name := range l.definedLabels {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		d := levenshteinDistance(name, target)
		if d < bestDist {
			best = name
			bestDist = d
		}
	}
	return best
}

func levenshteinDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = minInt(minInt(curr[j-1]+1, prev[j]+1), prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
