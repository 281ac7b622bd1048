package output

import (
	"context"

	"github.com/cashflow/payment-sync/internal/core"
	"github.com/google/uuid"
)

// TransactionStore is an output port (secondary port) for the local transaction table
// Secondary adapters (gorm, in-memory) will implement this
type TransactionStore interface {
	// InsertOrReplace upserts a transaction by ID
	InsertOrReplace(ctx context.Context, tx core.Transaction) error

	// InsertOrReplaceAll upserts a batch of transactions by ID
	InsertOrReplaceAll(ctx context.Context, txs []core.Transaction) error

	// MergeAll inserts unseen transactions and replaces existing ones only when the
	// stored status can move to the incoming one. Rows that would move backwards are
	// left untouched; the stored CreatedAt is kept.
	MergeAll(ctx context.Context, txs []core.Transaction) error

	// Update rewrites an existing transaction. It returns core.ErrNotFound when the row
	// is missing and core.ErrInvalidTransition when the status would move backwards.
	Update(ctx context.Context, tx core.Transaction) error

	// GetByID retrieves a transaction by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*core.Transaction, error)

	// ListAll returns every transaction, newest first
	ListAll(ctx context.Context) ([]core.Transaction, error)

	// ListByStatus returns transactions with the given status, newest first
	ListByStatus(ctx context.Context, status core.TransactionStatus) ([]core.Transaction, error)

	// TotalCompleted sums the amounts of completed transactions in a currency
	TotalCompleted(ctx context.Context, currency core.Currency) (int64, error)

	// ObserveAll streams snapshots of ListAll. The first snapshot is taken before
	// ObserveAll returns; another follows every write. The channel closes with ctx.
	ObserveAll(ctx context.Context) (<-chan []core.Transaction, error)
}
