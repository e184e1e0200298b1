package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/kiosk404/swarmscope/internal/swarmctl/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	command := cmd.NewDefaultSwarmCtlCommand()
	if err := command.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
