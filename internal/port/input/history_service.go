package input

import (
	"context"

	"github.com/cashflow/payment-sync/internal/core"
)

// HistoryService is an input port (primary port) for the transaction history view
type HistoryService interface {
	// Observe streams history states until ctx ends. The first state is Loading.
	Observe(ctx context.Context) <-chan HistoryState

	// Retry starts another background synchronization pass
	Retry()

	// Sync runs one synchronization pass and waits for it
	Sync(ctx context.Context) error

	// Summary returns the completed total per currency in minor units
	Summary(ctx context.Context) (map[core.Currency]int64, error)
}

// HistoryStateKind tags a HistoryState
type HistoryStateKind string

const (
	HistoryLoading HistoryStateKind = "loading"
	HistorySuccess HistoryStateKind = "success"
	HistoryError   HistoryStateKind = "error"
)

// HistoryState is one emission of the history stream
type HistoryState struct {
	Kind         HistoryStateKind
	Transactions []core.Transaction
	Message      string
}
