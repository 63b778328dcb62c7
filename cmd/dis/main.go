// Command dis is the front end over the DIS virtual machine: run a
// program to completion, pretty-print or lint its source, step it in
// a CLI or TUI debugger, or serve it over HTTP/WebSocket for a remote
// visualiser.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

// Version information; overridden at build time with:
// go build -ldflags "-X main.Version=v1.2.3"
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(&runCmd{}, "")
	subcommands.Register(&fmtCmd{}, "")
	subcommands.Register(&checkCmd{}, "")
	subcommands.Register(&debugCmd{}, "")
	subcommands.Register(&serveCmd{}, "")
	subcommands.Register(&versionCmd{}, "")

	flag.Parse()
	ctx := context.Background()
	os.Exit(int(subcommands.Execute(ctx)))
}

type versionCmd struct{}

func (*versionCmd) Name() string             { return "version" }
func (*versionCmd) Synopsis() string         { return "Print version information." }
func (*versionCmd) Usage() string            { return "version:\n  Print version information.\n" }
func (*versionCmd) SetFlags(_ *flag.FlagSet) {}

func (*versionCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	printVersion()
	return subcommands.ExitSuccess
}

func printVersion() {
	fmt.Printf("dis %s (%s, %s)\n", Version, Commit, Date)
}
