package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"dis/debugger"
	"dis/vm"
)

type debugCmd struct {
	tui bool
}

func (*debugCmd) Name() string     { return "debug" }
func (*debugCmd) Synopsis() string { return "Step through a DIS program in the interactive debugger." }
func (*debugCmd) Usage() string {
	return `debug [-tui] <program.dis>:
  Load a program into the step debugger, either as a line-oriented
  CLI (the default) or a full-screen TUI (-tui).
`
}

func (c *debugCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.tui, "tui", false, "use the full-screen text user interface")
}

func (c *debugCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: dis debug [-tui] <program.dis>")
		return subcommands.ExitUsageError
	}

	machine := vm.New()
	if err := machine.Load(f.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "parse error:\n%v\n", err)
		return subcommands.ExitFailure
	}

	dbg := debugger.NewDebugger(machine)

	if c.tui {
		if err := debugger.RunTUI(dbg); err != nil {
			fmt.Fprintf(os.Stderr, "tui error: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}

	fmt.Println("DIS Debugger - type 'help' for commands")
	fmt.Printf("Program loaded: %s\n", f.Arg(0))
	fmt.Println()

	if err := debugger.RunCLI(dbg); err != nil {
		fmt.Fprintf(os.Stderr, "debugger error: %v\n", err)
		return subcommands.ExitFailure
	}

	return subcommands.ExitSuccess
}
