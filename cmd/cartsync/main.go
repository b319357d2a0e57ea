package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/nikolayk812/cartsync/internal/cli"
	"github.com/nikolayk812/cartsync/internal/logger"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "cartsync", Format: "console"})

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logg.Warn(context.Background(), "failed to read .env", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCommand(nil).ExecuteContext(ctx); err != nil {
		logg.Error(ctx, "command failed", err)
		stop()
		os.Exit(1)
	}
}
