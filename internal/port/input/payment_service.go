package input

import (
	"context"
	"time"

	"github.com/cashflow/payment-sync/internal/core"
	"github.com/google/uuid"
)

// PaymentService is an input port (primary port) for payment operations
// Primary adapters (HTTP handlers, CLI) will use this
type PaymentService interface {
	// SubmitPayment validates, persists and submits a payment
	SubmitPayment(ctx context.Context, req SubmitPaymentRequest) (*TransactionResponse, error)

	// GetTransaction retrieves a transaction by ID
	GetTransaction(ctx context.Context, id uuid.UUID) (*TransactionResponse, error)
}

// SubmitPaymentRequest represents the request to send a payment
type SubmitPaymentRequest struct {
	RecipientEmail string
	Amount         int64
	Currency       core.Currency
}

// TransactionResponse represents the response for a transaction
type TransactionResponse struct {
	ID             uuid.UUID
	RecipientEmail string
	Amount         int64
	Currency       core.Currency
	Status         core.TransactionStatus
	CreatedAt      time.Time
}

// NewTransactionResponse copies a core transaction into a response
func NewTransactionResponse(tx core.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:             tx.ID,
		RecipientEmail: tx.RecipientEmail,
		Amount:         tx.Amount,
		Currency:       tx.Currency,
		Status:         tx.Status,
		CreatedAt:      tx.CreatedAt,
	}
}
