package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cashflow/payment-sync/internal/constant/model/db"
	"github.com/cashflow/payment-sync/internal/core"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTransactionStore is a secondary adapter that implements the TransactionStore output port
type GormTransactionStore struct {
	gormDB *gorm.DB
	feed   *changeFeed
}

// NewGormTransactionStore creates a new GORM transaction store.
// Change notifications cover writes made through this store only.
func NewGormTransactionStore(gormDB *gorm.DB, logger *slog.Logger) *GormTransactionStore {
	return &GormTransactionStore{
		gormDB: gormDB,
		feed:   newChangeFeed(logger),
	}
}

// toCore converts db.Transaction to core.Transaction
func toCore(t *db.Transaction) core.Transaction {
	return core.Transaction{
		ID:             t.ID,
		RecipientEmail: t.RecipientEmail,
		Amount:         t.Amount,
		Currency:       core.Currency(t.Currency),
		Status:         core.TransactionStatus(t.Status),
		CreatedAt:      t.CreatedAt.UTC(),
	}
}

// fromCore converts core.Transaction to db.Transaction
func fromCore(t core.Transaction) *db.Transaction {
	return &db.Transaction{
		ID:             t.ID,
		RecipientEmail: t.RecipientEmail,
		Amount:         t.Amount,
		Currency:       db.Currency(t.Currency),
		Status:         db.TransactionStatus(t.Status),
		CreatedAt:      t.CreatedAt,
	}
}

func toCoreList(rows []db.Transaction) []core.Transaction {
	out := make([]core.Transaction, 0, len(rows))
	for i := range rows {
		out = append(out, toCore(&rows[i]))
	}
	return out
}

// InsertOrReplace upserts a transaction by ID
func (r *GormTransactionStore) InsertOrReplace(ctx context.Context, tx core.Transaction) error {
	return r.InsertOrReplaceAll(ctx, []core.Transaction{tx})
}

// InsertOrReplaceAll upserts a batch of transactions by ID
func (r *GormTransactionStore) InsertOrReplaceAll(ctx context.Context, txs []core.Transaction) error {
	if len(txs) == 0 {
		return nil
	}
	rows := make([]*db.Transaction, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, fromCore(tx))
	}
	err := r.gormDB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(rows).Error
	if err != nil {
		return fmt.Errorf("failed to upsert transactions: %w", err)
	}
	r.feed.notify()
	return nil
}

// MergeAll upserts a batch, replacing an existing row only while it is PENDING
// or already has the incoming status. The check runs inside the conflict clause,
// so a concurrent Update to a terminal status is never overwritten.
func (r *GormTransactionStore) MergeAll(ctx context.Context, txs []core.Transaction) error {
	if len(txs) == 0 {
		return nil
	}
	rows := make([]*db.Transaction, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, fromCore(tx))
	}
	err := r.gormDB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"recipient_email", "amount", "currency", "status", "updated_at"}),
			Where: clause.Where{Exprs: []clause.Expression{
				clause.Expr{
					SQL:  "transactions.status = ? OR transactions.status = excluded.status",
					Vars: []interface{}{string(db.TransactionStatusPending)},
				},
			}},
		}).
		Create(rows).Error
	if err != nil {
		return fmt.Errorf("failed to merge transactions: %w", err)
	}
	r.feed.notify()
	return nil
}

// Update rewrites an existing transaction under a row lock.
// The status may only move forward; CreatedAt is never changed.
func (r *GormTransactionStore) Update(ctx context.Context, t core.Transaction) error {
	err := r.gormDB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row db.Transaction

		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", t.ID).
			First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return core.ErrNotFound
			}
			return fmt.Errorf("failed to lock transaction: %w", err)
		}

		current := core.TransactionStatus(row.Status)
		if !current.CanTransitionTo(t.Status) {
			return fmt.Errorf("transaction %s is %s: %w", t.ID, current, core.ErrInvalidTransition)
		}

		row.RecipientEmail = t.RecipientEmail
		row.Amount = t.Amount
		row.Currency = db.Currency(t.Currency)
		row.Status = db.TransactionStatus(t.Status)
		row.UpdatedAt = time.Now()

		if err := tx.Save(&row).Error; err != nil {
			return fmt.Errorf("failed to update transaction: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	r.feed.notify()
	return nil
}

// GetByID retrieves a transaction by its ID
func (r *GormTransactionStore) GetByID(ctx context.Context, id uuid.UUID) (*core.Transaction, error) {
	var row db.Transaction
	if err := r.gormDB.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	t := toCore(&row)
	return &t, nil
}

// ListAll returns every transaction, newest first
func (r *GormTransactionStore) ListAll(ctx context.Context) ([]core.Transaction, error) {
	var rows []db.Transaction
	if err := r.gormDB.WithContext(ctx).
		Order("created_at DESC").Order("id").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return toCoreList(rows), nil
}

// ListByStatus returns transactions with the given status, newest first
func (r *GormTransactionStore) ListByStatus(ctx context.Context, status core.TransactionStatus) ([]core.Transaction, error) {
	var rows []db.Transaction
	if err := r.gormDB.WithContext(ctx).
		Where("status = ?", string(status)).
		Order("created_at DESC").Order("id").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list %s transactions: %w", status, err)
	}
	return toCoreList(rows), nil
}

// TotalCompleted sums the amounts of completed transactions in a currency
func (r *GormTransactionStore) TotalCompleted(ctx context.Context, currency core.Currency) (int64, error) {
	var total int64
	if err := r.gormDB.WithContext(ctx).
		Model(&db.Transaction{}).
		Where("status = ? AND currency = ?", string(core.TransactionStatusCompleted), currency.Code()).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to sum completed transactions: %w", err)
	}
	return total, nil
}

// ObserveAll streams ListAll snapshots after every write through this store
func (r *GormTransactionStore) ObserveAll(ctx context.Context) (<-chan []core.Transaction, error) {
	return r.feed.observe(ctx, r.ListAll)
}
