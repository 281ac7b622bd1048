package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cashflow/payment-sync/internal/core"
	"github.com/cashflow/payment-sync/internal/port/output"
)

// PendingReconciler resolves submissions interrupted between the pending write
// and the outcome write. Rows left PENDING longer than the timeout are marked
// FAILED in place; they are never resubmitted.
type PendingReconciler struct {
	store   output.TransactionStore
	events  output.TransactionEvents
	timeout time.Duration
	logger  *slog.Logger
	now     func() time.Time
}

// NewPendingReconciler creates a new pending reconciler
func NewPendingReconciler(
	store output.TransactionStore,
	events output.TransactionEvents,
	timeout time.Duration,
	logger *slog.Logger,
) *PendingReconciler {
	if events == nil {
		events = output.NopTransactionEvents{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PendingReconciler{
		store:   store,
		events:  events,
		timeout: timeout,
		logger:  logger.With(slog.String("component", "reconciler")),
		now:     time.Now,
	}
}

// Reconcile marks stale PENDING transactions as FAILED and returns how many it changed
func (r *PendingReconciler) Reconcile(ctx context.Context) (int, error) {
	pending, err := r.store.ListByStatus(ctx, core.TransactionStatusPending)
	if err != nil {
		return 0, fmt.Errorf("failed to list pending transactions: %w", err)
	}

	cutoff := r.now().Add(-r.timeout)
	failed := 0
	for _, tx := range pending {
		if tx.CreatedAt.After(cutoff) {
			// may still be in flight
			continue
		}

		final, err := tx.WithStatus(core.TransactionStatusFailed)
		if err != nil {
			return failed, err
		}
		if err := r.store.Update(ctx, final); err != nil {
			// resolved concurrently by the submitting process
			if errors.Is(err, core.ErrInvalidTransition) {
				continue
			}
			return failed, fmt.Errorf("failed to mark transaction %s failed: %w", tx.ID, err)
		}
		failed++

		if err := r.events.PublishStatusChanged(ctx, final); err != nil {
			r.logger.Warn("publishing status event", slog.String("transaction_id", tx.ID.String()), slog.Any("err", err))
		}
		r.logger.Info("marked interrupted submission failed",
			slog.String("transaction_id", tx.ID.String()),
			slog.Time("created_at", tx.CreatedAt),
		)
	}
	return failed, nil
}
