package db

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TransactionStatus represents the status of a transaction
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
)

// Currency represents supported currencies
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
)

// Transaction represents a transaction row in the local database
type Transaction struct {
	ID             uuid.UUID         `gorm:"type:uuid;primary_key" json:"id"`
	RecipientEmail string            `gorm:"type:varchar(320);not null;index" json:"recipient_email"`
	Amount         int64             `gorm:"not null" json:"amount"`
	Currency       Currency          `gorm:"type:varchar(3);not null" json:"currency"`
	Status         TransactionStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	CreatedAt      time.Time         `gorm:"not null;index" json:"created_at"`
	UpdatedAt      time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Transaction) TableName() string {
	return "transactions"
}

// BeforeCreate is a GORM hook that runs before creating a record
func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	now := time.Now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = now
	}
	return nil
}

// BeforeUpdate is a GORM hook that runs before updating a record
func (t *Transaction) BeforeUpdate(tx *gorm.DB) error {
	t.UpdatedAt = time.Now()
	return nil
}
