package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"dis/parser"
	"dis/tools"
)

type checkCmd struct {
	strict bool
	xref   bool
}

func (*checkCmd) Name() string     { return "check" }
func (*checkCmd) Synopsis() string { return "Check a DIS program for errors without running it." }
func (*checkCmd) Usage() string {
	return `check <program.dis>:
  Load a program (lex, parse, resolve includes and labels) and lint
  it, reporting errors and warnings without executing anything.
`
}

func (c *checkCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.strict, "strict", false, "treat lint warnings as errors")
	f.BoolVar(&c.xref, "xref", false, "print a label cross-reference report")
}

func (c *checkCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: dis check [-strict] [-xref] <program.dis>")
		return subcommands.ExitUsageError
	}

	prog, err := parser.Load(f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return subcommands.ExitFailure
	}

	if c.xref {
		symbols := tools.NewXRefGenerator().GenerateFromStatements(prog.Statements)
		fmt.Println(tools.NewXRefReport(symbols).String())
	}

	options := tools.DefaultLintOptions()
	options.Strict = c.strict
	issues := tools.NewLinter(options).LintStatements(prog.Statements)

	if len(issues) == 0 {
		fmt.Println("no issues found")
		return subcommands.ExitSuccess
	}

	hasError := false
	for _, issue := range issues {
		fmt.Println(issue.String())
		if issue.Level == tools.LintError || (c.strict && issue.Level == tools.LintWarning) {
			hasError = true
		}
	}

	if hasError {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
