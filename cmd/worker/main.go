package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cashflow/payment-sync/internal/adapter/secondary/messaging"
	"github.com/cashflow/payment-sync/internal/app"
	"github.com/cashflow/payment-sync/internal/config"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("loading configuration", slog.Any("err", err))
		os.Exit(1)
	}

	a, err := app.New(cfg, logger.With(slog.String("app", "worker")))
	if err != nil {
		logger.Error("starting worker", slog.Any("err", err))
		os.Exit(1)
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// status events from other processes trigger a refresh from the remote service
	if a.Broker != nil {
		err = a.Broker.ConsumeStatusChanges(ctx, func(ctx context.Context, msg messaging.StatusChangedMessage) error {
			logger.Info("status change received",
				slog.String("transaction_id", msg.TransactionID.String()),
				slog.String("status", msg.Status),
			)
			return a.History.Sync(ctx)
		})
		if err != nil {
			logger.Error("starting consumer", slog.Any("err", err))
			os.Exit(1)
		}
	}

	runPass(ctx, a, logger)

	logger.Info("payment worker started", slog.Duration("interval", cfg.SyncInterval))
	ticker := time.NewTicker(cfg.SyncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down worker")
			return
		case <-ticker.C:
			runPass(ctx, a, logger)
		}
	}
}

// runPass resolves interrupted submissions, then refreshes from the remote service
func runPass(ctx context.Context, a *app.App, logger *slog.Logger) {
	n, err := a.Reconciler.Reconcile(ctx)
	if err != nil {
		logger.Error("reconciling pending transactions", slog.Any("err", err))
	} else if n > 0 {
		logger.Info("reconciled pending transactions", slog.Int("failed", n))
	}

	if err := a.History.Sync(ctx); err != nil {
		logger.Warn("sync pass failed", slog.Any("err", err))
	}
}
