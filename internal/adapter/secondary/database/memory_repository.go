package database

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/cashflow/payment-sync/internal/core"
	"github.com/google/uuid"
)

// MemoryTransactionStore keeps transactions in process memory.
// Used by tests and by STORE_BACKEND=memory for local runs.
type MemoryTransactionStore struct {
	mu   sync.RWMutex
	rows map[uuid.UUID]core.Transaction
	feed *changeFeed
}

func NewMemoryTransactionStore(logger *slog.Logger) *MemoryTransactionStore {
	return &MemoryTransactionStore{
		rows: make(map[uuid.UUID]core.Transaction),
		feed: newChangeFeed(logger),
	}
}

func (r *MemoryTransactionStore) InsertOrReplace(ctx context.Context, tx core.Transaction) error {
	return r.InsertOrReplaceAll(ctx, []core.Transaction{tx})
}

func (r *MemoryTransactionStore) InsertOrReplaceAll(ctx context.Context, txs []core.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(txs) == 0 {
		return nil
	}
	r.mu.Lock()
	for _, tx := range txs {
		r.rows[tx.ID] = tx
	}
	r.mu.Unlock()
	r.feed.notify()
	return nil
}

func (r *MemoryTransactionStore) MergeAll(ctx context.Context, txs []core.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(txs) == 0 {
		return nil
	}
	r.mu.Lock()
	for _, tx := range txs {
		if current, ok := r.rows[tx.ID]; ok {
			if !current.Status.CanTransitionTo(tx.Status) {
				continue
			}
			tx.CreatedAt = current.CreatedAt
		}
		r.rows[tx.ID] = tx
	}
	r.mu.Unlock()
	r.feed.notify()
	return nil
}

func (r *MemoryTransactionStore) Update(ctx context.Context, tx core.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	current, ok := r.rows[tx.ID]
	if !ok {
		r.mu.Unlock()
		return core.ErrNotFound
	}
	if !current.Status.CanTransitionTo(tx.Status) {
		r.mu.Unlock()
		return fmt.Errorf("transaction %s is %s: %w", tx.ID, current.Status, core.ErrInvalidTransition)
	}
	tx.CreatedAt = current.CreatedAt
	r.rows[tx.ID] = tx
	r.mu.Unlock()

	r.feed.notify()
	return nil
}

func (r *MemoryTransactionStore) GetByID(ctx context.Context, id uuid.UUID) (*core.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	tx, ok := r.rows[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return &tx, nil
}

func (r *MemoryTransactionStore) ListAll(ctx context.Context) ([]core.Transaction, error) {
	return r.list(ctx, func(core.Transaction) bool { return true })
}

func (r *MemoryTransactionStore) ListByStatus(ctx context.Context, status core.TransactionStatus) ([]core.Transaction, error) {
	return r.list(ctx, func(tx core.Transaction) bool { return tx.Status == status })
}

func (r *MemoryTransactionStore) TotalCompleted(ctx context.Context, currency core.Currency) (int64, error) {
	txs, err := r.list(ctx, func(tx core.Transaction) bool {
		return tx.Status == core.TransactionStatusCompleted && tx.Currency == currency
	})
	if err != nil {
		return 0, err
	}
	var total int64
	for _, tx := range txs {
		total += tx.Amount
	}
	return total, nil
}

func (r *MemoryTransactionStore) ObserveAll(ctx context.Context) (<-chan []core.Transaction, error) {
	return r.feed.observe(ctx, r.ListAll)
}

func (r *MemoryTransactionStore) list(ctx context.Context, keep func(core.Transaction) bool) ([]core.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]core.Transaction, 0, len(r.rows))
	for _, tx := range r.rows {
		if keep(tx) {
			out = append(out, tx)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}
