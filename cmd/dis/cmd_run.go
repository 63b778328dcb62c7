package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"dis/config"
	"dis/vm"
)

type runCmd struct {
	maxSteps uint64
	verbose  bool
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "Run a DIS program to completion." }
func (*runCmd) Usage() string {
	return `run <program.dis>:
  Load and execute a DIS program until it halts or faults.
`
}

func (c *runCmd) SetFlags(f *flag.FlagSet) {
	cfg, _ := config.Load()
	f.Uint64Var(&c.maxSteps, "max-steps", cfg.Execution.MaxSteps, "maximum statements to execute (0 = unlimited)")
	f.BoolVar(&c.verbose, "verbose", false, "print a trailing execution summary")
}

func (c *runCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: dis run <program.dis>")
		return subcommands.ExitUsageError
	}

	machine := vm.New()
	if err := machine.Load(f.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "parse error:\n%v\n", err)
		return subcommands.ExitFailure
	}

	steps := uint64(0)
	for !machine.Halted {
		if c.maxSteps > 0 && steps >= c.maxSteps {
			fmt.Fprintf(os.Stderr, "step limit of %d exceeded\n", c.maxSteps)
			return subcommands.ExitFailure
		}
		if err := machine.Step(); err != nil {
			fmt.Fprintf(os.Stderr, "runtime error: %v\n", err)
			return subcommands.ExitFailure
		}
		steps++
	}

	if c.verbose {
		fmt.Fprintf(os.Stderr, "\nhalted after %d statement(s)\n", steps)
	}

	return subcommands.ExitSuccess
}
