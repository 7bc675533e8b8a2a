package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/RickieES/localizethat-sub000/internal/cli"
)

func main() {
	// Ctrl-C cancels the in-flight unit of work; committed paths stay.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := cli.RootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
