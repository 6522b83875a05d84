package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"channelsdb/internal/cli"
)

// Allows `go install channelsdb@latest`; cmd/channelsdb is the same program.
func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cli.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cancel()
		os.Exit(1)
	}
}
