// Package main provides the CLI entrypoint for spine-import.
//
// spine-import maps tables from delimited files, workbooks and PostgreSQL
// into a normalized entity dataset:
//   - tables lists what the configured sources hold
//   - check validates the mappings of an import specification
//   - import runs the mappings and writes the dataset and its error log
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}
