package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"gitpanel.dev/gitpanel/internal/cli"
	gperrors "gitpanel.dev/gitpanel/internal/errors"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := cli.NewRootCmd(version, commit, date)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "❌ "+gperrors.UserMessage(err))
		stop()
		os.Exit(1)
	}
}
