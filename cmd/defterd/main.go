package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/defterapp/defter-core/internal/facade"
	"github.com/defterapp/defter-core/pkg/config"
	"github.com/defterapp/defter-core/pkg/logger"
)

// defterd opens the ledger store, applies migrations and holds the database
// until interrupted. It exists as a smoke runner for deployments embedding
// the store as a library.
func main() {
	logg := logger.New(logger.Options{ServiceName: "defterd"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "defterd",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx := context.Background()

	store, err := facade.Open(ctx, cfg, logg, prometheus.NewRegistry())
	if err != nil {
		logg.Error(ctx, "failed to open store", err)
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logg.Error(ctx, "error closing store", err)
		}
	}()

	<-store.Ready()
	logg.Info(ctx, "defterd accepting commands")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logg.Info(ctx, "defterd shutting down")
}
