package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/subcommands"

	"dis/api"
	"dis/config"
)

type serveCmd struct {
	port int
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "Serve DIS execution sessions over HTTP and WebSocket." }
func (*serveCmd) Usage() string {
	return `serve [-port N]:
  Start the HTTP+WebSocket event feed a remote visualiser can attach
  to: create sessions, load and step programs, and watch state and
  output events arrive as they happen.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	cfg, _ := config.Load()
	f.IntVar(&c.port, "port", cfg.Serve.Port, "listen port")
}

func (c *serveCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	server := api.NewServer(c.port)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var shutdownOnce sync.Once
	done := make(chan subcommands.ExitStatus, 1)
	shutdown := func() {
		shutdownOnce.Do(func() {
			fmt.Println("\nshutting down dis server...")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "error during shutdown: %v\n", err)
				done <- subcommands.ExitFailure
				return
			}
			fmt.Println("dis server stopped")
			done <- subcommands.ExitSuccess
		})
	}

	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		}
	}()

	<-sigChan
	shutdown()
	return <-done
}
