package output

import (
	"context"
	"fmt"
	"time"

	"github.com/cashflow/payment-sync/internal/core"
	"github.com/google/uuid"
)

// RemotePaymentService is an output port (secondary port) for the payment backend
//
// Submit returns nil when the backend accepts the transaction,
// *core.RemoteValidationError for field errors, core.ErrAuthenticationRequired
// when credentials are rejected, and any other error for a transport failure.
type RemotePaymentService interface {
	Submit(ctx context.Context, payload TransactionPayload) error
	ListAll(ctx context.Context) ([]TransactionPayload, error)
}

// TransactionPayload is the transaction as exchanged with the remote service
type TransactionPayload struct {
	ID        string `json:"id"`
	Recipient string `json:"recipient"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Timestamp int64  `json:"timestamp"`
	Status    string `json:"status"`
}

// PayloadFromTransaction converts a transaction to its wire form
func PayloadFromTransaction(tx core.Transaction) TransactionPayload {
	return TransactionPayload{
		ID:        tx.ID.String(),
		Recipient: tx.RecipientEmail,
		Amount:    tx.Amount,
		Currency:  tx.Currency.Code(),
		Timestamp: tx.CreatedAt.UnixMilli(),
		Status:    string(tx.Status),
	}
}

// TransactionFromPayload converts a remote payload to a local transaction.
// Unknown currencies fall back to USD and unknown statuses to PENDING.
func TransactionFromPayload(p TransactionPayload) (core.Transaction, error) {
	id, err := uuid.Parse(p.ID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("invalid transaction id %q: %w", p.ID, err)
	}
	return core.Transaction{
		ID:             id,
		RecipientEmail: p.Recipient,
		Amount:         p.Amount,
		Currency:       core.CurrencyOrDefault(p.Currency),
		Status:         core.ParseTransactionStatus(p.Status),
		CreatedAt:      time.UnixMilli(p.Timestamp).UTC(),
	}, nil
}
