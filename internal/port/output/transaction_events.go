package output

import (
	"context"

	"github.com/cashflow/payment-sync/internal/core"
)

// TransactionEvents is an output port (secondary port) for status change notifications
// Secondary adapters (RabbitMQ implementations) will implement this
type TransactionEvents interface {
	// PublishStatusChanged announces the latest status of a transaction
	PublishStatusChanged(ctx context.Context, tx core.Transaction) error
	// Close closes the messaging connection
	Close() error
}

// NopTransactionEvents discards every event. Used when no broker is configured.
type NopTransactionEvents struct{}

func (NopTransactionEvents) PublishStatusChanged(context.Context, core.Transaction) error {
	return nil
}

func (NopTransactionEvents) Close() error {
	return nil
}
