package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"air_bot/internal/app"
	"air_bot/internal/config"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := app.Main(ctx, config.ProviderAtmoSud, os.Args[1:])
	cancel()
	os.Exit(code)
}
