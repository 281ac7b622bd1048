package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	handler "github.com/cashflow/payment-sync/internal/adapter/primary/http"
	"github.com/cashflow/payment-sync/internal/app"
	"github.com/cashflow/payment-sync/internal/config"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("loading configuration", slog.Any("err", err))
		os.Exit(1)
	}

	a, err := app.New(cfg, logger.With(slog.String("app", "api")))
	if err != nil {
		logger.Error("starting api", slog.Any("err", err))
		os.Exit(1)
	}
	defer a.Close()

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	handler.RegisterRoutes(e, handler.NewPaymentHandler(a.Payments), handler.NewHistoryHandler(a.History))

	addr := fmt.Sprintf(":%s", cfg.Port)
	go func() {
		logger.Info("starting API server", slog.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", slog.Any("err", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down API server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("shutting down", slog.Any("err", err))
	}
}
