// Command refresh runs a single price refresh pass over every stored
// competitor and exits. It is meant to be run from cron or a job runner.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/user/price-tracker/internal/app"
	"github.com/user/price-tracker/internal/usecase"
	"github.com/user/price-tracker/pkg/config"
	"github.com/user/price-tracker/pkg/logger"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Fprintln(os.Stderr, "could not load config:", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "could not build logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("Startup failed", zap.Error(err))
	}
	defer a.Close()

	_, err = a.Refresher.RefreshAll(ctx)
	if errors.Is(err, usecase.ErrRefreshInProgress) {
		log.Info("Another refresh pass is running, nothing to do")
		return
	}
	if err != nil {
		log.Error("Price refresh failed", zap.Error(err))
		a.Close()
		os.Exit(1)
	}
}
