package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/s4nngr10r/tgexp/internal/app"
	"github.com/s4nngr10r/tgexp/internal/delivery/cli"
	"github.com/s4nngr10r/tgexp/internal/infrastructure/telegram"
)

func main() {
	// Interrupt cancels the running command; fx then stops every component
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCmd(app.Run, telegram.NewConsolePrompter())
	if err := root.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
