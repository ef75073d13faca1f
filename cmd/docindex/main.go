// Command docindex is a command-line client for the document API.
//
//	docindex [-config path] [-log-level level] <command> [flags] [args]
//
// Commands: list, get, delete, create, search, recommend, version.
// Results are printed to stdout as JSON; the exit status is 1 when the
// API reports a failure and 2 on usage errors.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
