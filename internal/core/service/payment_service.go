package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cashflow/payment-sync/internal/core"
	"github.com/cashflow/payment-sync/internal/port/input"
	"github.com/cashflow/payment-sync/internal/port/output"
	"github.com/google/uuid"
)

// PaymentServiceImpl implements the PaymentService input port
type PaymentServiceImpl struct {
	store  output.TransactionStore
	remote output.RemotePaymentService
	events output.TransactionEvents
	logger *slog.Logger
	now    func() time.Time
	newID  func() uuid.UUID
}

// PaymentOption customizes a PaymentServiceImpl
type PaymentOption func(*PaymentServiceImpl)

// WithEvents publishes a status event after every resolved submission
func WithEvents(events output.TransactionEvents) PaymentOption {
	return func(s *PaymentServiceImpl) { s.events = events }
}

// WithClock overrides the creation timestamp source
func WithClock(now func() time.Time) PaymentOption {
	return func(s *PaymentServiceImpl) { s.now = now }
}

// WithIDGenerator overrides transaction ID generation
func WithIDGenerator(newID func() uuid.UUID) PaymentOption {
	return func(s *PaymentServiceImpl) { s.newID = newID }
}

// NewPaymentService creates a new payment service
func NewPaymentService(
	store output.TransactionStore,
	remote output.RemotePaymentService,
	logger *slog.Logger,
	opts ...PaymentOption,
) input.PaymentService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &PaymentServiceImpl{
		store:  store,
		remote: remote,
		events: output.NopTransactionEvents{},
		logger: logger.With(slog.String("component", "payments")),
		now:    time.Now,
		newID:  uuid.New,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SubmitPayment validates the payment, records it as PENDING, submits it to the
// remote service and records the outcome on the same row.
//
// If the final write fails the row stays PENDING and the storage error is returned.
func (s *PaymentServiceImpl) SubmitPayment(ctx context.Context, req input.SubmitPaymentRequest) (*input.TransactionResponse, error) {
	payment := core.Payment{
		RecipientEmail: req.RecipientEmail,
		Amount:         req.Amount,
		Currency:       req.Currency,
	}
	if err := payment.Validate(); err != nil {
		return nil, err
	}

	pending := core.NewPendingTransaction(payment, s.newID(), s.now())
	if err := s.store.InsertOrReplace(ctx, pending); err != nil {
		return nil, fmt.Errorf("failed to save pending transaction: %w", err)
	}

	logger := s.logger.With(slog.String("transaction_id", pending.ID.String()))

	status, outcome := resolveSubmission(s.remote.Submit(ctx, output.PayloadFromTransaction(pending)))

	final, err := pending.WithStatus(status)
	if err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, final); err != nil {
		if errors.Is(err, core.ErrInvalidTransition) {
			return s.resolvedElsewhere(ctx, logger, final.ID, outcome)
		}
		logger.Error("recording submission outcome", slog.String("status", string(status)), slog.Any("err", err))
		return nil, fmt.Errorf("failed to update transaction %s: %w", final.ID, err)
	}

	if err := s.events.PublishStatusChanged(ctx, final); err != nil {
		logger.Warn("publishing status event", slog.Any("err", err))
	}

	if outcome != nil {
		logger.Info("payment failed", slog.String("reason", outcome.Error()))
		return nil, outcome
	}

	logger.Info("payment completed",
		slog.Int64("amount", final.Amount),
		slog.String("currency", final.Currency.Code()),
	)
	return input.NewTransactionResponse(final), nil
}

// resolvedElsewhere handles a row that a sync pass or the reconciler already moved
// out of PENDING while the remote call was in flight. The stored status stands and
// the caller still gets the remote outcome.
func (s *PaymentServiceImpl) resolvedElsewhere(
	ctx context.Context,
	logger *slog.Logger,
	id uuid.UUID,
	outcome error,
) (*input.TransactionResponse, error) {
	stored, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction %s: %w", id, err)
	}
	logger.Info("transaction resolved before submission returned", slog.String("status", string(stored.Status)))

	if outcome != nil {
		return nil, outcome
	}
	if stored.Status != core.TransactionStatusCompleted {
		return nil, &core.TransportError{Message: fmt.Sprintf("Transaction was already marked %s", stored.Status)}
	}
	return input.NewTransactionResponse(*stored), nil
}

// GetTransaction retrieves a transaction by ID
func (s *PaymentServiceImpl) GetTransaction(ctx context.Context, id uuid.UUID) (*input.TransactionResponse, error) {
	tx, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return input.NewTransactionResponse(*tx), nil
}

// resolveSubmission maps the remote outcome to the final status and the error
// returned to the caller.
func resolveSubmission(err error) (core.TransactionStatus, error) {
	if err == nil {
		return core.TransactionStatusCompleted, nil
	}

	var validation *core.RemoteValidationError
	var transport *core.TransportError
	switch {
	case errors.As(err, &validation):
		return core.TransactionStatusFailed, validation
	case errors.Is(err, core.ErrAuthenticationRequired):
		return core.TransactionStatusFailed, core.ErrAuthenticationRequired
	case errors.As(err, &transport):
		return core.TransactionStatusFailed, transport
	default:
		return core.TransactionStatusFailed, &core.TransportError{Message: err.Error()}
	}
}
