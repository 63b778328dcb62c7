package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"dis/tools"
)

type fmtCmd struct {
	write   bool
	compact bool
}

func (*fmtCmd) Name() string     { return "fmt" }
func (*fmtCmd) Synopsis() string { return "Pretty-print a DIS program in canonical form." }
func (*fmtCmd) Usage() string {
	return `fmt <program.dis>:
  Parse a program and print it back in canonical aligned form.
`
}

func (c *fmtCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.write, "w", false, "write result back to the source file instead of stdout")
	f.BoolVar(&c.compact, "compact", false, "use compact spacing instead of aligned columns")
}

func (c *fmtCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: dis fmt [-w] [-compact] <program.dis>")
		return subcommands.ExitUsageError
	}

	path := f.Arg(0)
	src, err := os.ReadFile(path) // #nosec G304 -- user-specified source file
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading %s: %v\n", path, err)
		return subcommands.ExitFailure
	}

	options := tools.DefaultFormatOptions()
	if c.compact {
		options = tools.CompactFormatOptions()
	}
	output, err := tools.NewFormatter(options).FormatString(string(src), path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse error:\n%v\n", err)
		return subcommands.ExitFailure
	}

	if c.write {
		if err := os.WriteFile(path, []byte(output), 0644); err != nil { // #nosec G306 -- user-specified source file
			fmt.Fprintf(os.Stderr, "error writing %s: %v\n", path, err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}

	fmt.Print(output)
	return subcommands.ExitSuccess
}
