package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/cashflow/payment-sync/internal/adapter/secondary/database"
	"github.com/cashflow/payment-sync/internal/adapter/secondary/messaging"
	"github.com/cashflow/payment-sync/internal/adapter/secondary/remote"
	"github.com/cashflow/payment-sync/internal/config"
	"github.com/cashflow/payment-sync/internal/constant/model/db"
	"github.com/cashflow/payment-sync/internal/core/service"
	"github.com/cashflow/payment-sync/internal/port/input"
	"github.com/cashflow/payment-sync/internal/port/output"
)

// App holds the adapters and services shared by the binaries
type App struct {
	Config     *config.Config
	Logger     *slog.Logger
	Store      output.TransactionStore
	Remote     output.RemotePaymentService
	Events     output.TransactionEvents
	Broker     *messaging.RabbitMQClient // nil when RABBITMQ_URL is empty
	Payments   input.PaymentService
	History    *service.HistoryServiceImpl
	Reconciler *service.PendingReconciler

	closers []io.Closer
}

// New wires the configured store, remote client and broker into the services
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	policy, err := service.ParseSyncErrorPolicy(cfg.SyncErrors)
	if err != nil {
		return nil, err
	}

	a := &App{Config: cfg, Logger: logger}

	switch cfg.StoreBackend {
	case config.BackendPostgres:
		conn, err := db.NewDB(context.Background(), cfg.DatabaseURL, logger, db.DefaultPoolOptions())
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		a.closers = append(a.closers, conn)
		a.Store = database.NewGormTransactionStore(conn.DB, logger)
	case config.BackendMemory:
		logger.Warn("using in-memory transaction store; history is lost on exit")
		a.Store = database.NewMemoryTransactionStore(logger)
	}

	a.Remote = remote.NewHTTPClient(cfg.RemoteURL, cfg.RemoteToken, cfg.RemoteTimeout)

	a.Events = output.NopTransactionEvents{}
	if cfg.RabbitMQURL != "" {
		broker, err := messaging.NewRabbitMQClient(cfg.RabbitMQURL, logger)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, broker)
		a.Broker = broker
		a.Events = broker
	}

	a.Payments = service.NewPaymentService(a.Store, a.Remote, logger, service.WithEvents(a.Events))
	a.History = service.NewHistoryService(a.Store, a.Remote, policy, logger)
	a.Reconciler = service.NewPendingReconciler(a.Store, a.Events, cfg.PendingTimeout, logger)

	return a, nil
}

// Close waits for background syncs, then releases connections in reverse order
func (a *App) Close() error {
	if a.History != nil {
		a.History.Wait()
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
