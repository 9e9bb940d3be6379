// Package main provides the kikitori CLI process entrypoint.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rbright/kikitori/internal/app"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run returns the exit code instead of exiting so signal handling is
// released first. Any of these signals while recording discards the take.
func run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	return app.Execute(ctx, args, os.Stdout, os.Stderr)
}
