package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionStatus represents the status of a transaction
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
)

// ParseTransactionStatus maps a stored or remote status string to a status.
// Unknown values are treated as PENDING.
func ParseTransactionStatus(s string) TransactionStatus {
	switch strings.ToUpper(s) {
	case string(TransactionStatusCompleted):
		return TransactionStatusCompleted
	case string(TransactionStatusFailed):
		return TransactionStatusFailed
	default:
		return TransactionStatusPending
	}
}

// IsTerminal checks if the status can no longer change
func (s TransactionStatus) IsTerminal() bool {
	return s == TransactionStatusCompleted || s == TransactionStatusFailed
}

// CanTransitionTo reports whether next is reachable from s.
// PENDING moves to COMPLETED or FAILED; a status may always be rewritten with itself.
func (s TransactionStatus) CanTransitionTo(next TransactionStatus) bool {
	if s == next {
		return true
	}
	return s == TransactionStatusPending && next.IsTerminal()
}

// Currency represents supported currencies
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
)

var currencySymbols = map[Currency]string{
	CurrencyUSD: "$",
	CurrencyEUR: "€",
}

// Currencies lists the supported currencies in display order.
func Currencies() []Currency {
	return []Currency{CurrencyUSD, CurrencyEUR}
}

// ParseCurrency looks up a currency by its ISO code, ignoring case.
func ParseCurrency(code string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(code)))
	if _, ok := currencySymbols[c]; !ok {
		return "", fmt.Errorf("unsupported currency %q", code)
	}
	return c, nil
}

// CurrencyOrDefault is ParseCurrency falling back to USD.
func CurrencyOrDefault(code string) Currency {
	c, err := ParseCurrency(code)
	if err != nil {
		return CurrencyUSD
	}
	return c
}

// Code returns the ISO 4217 code
func (c Currency) Code() string {
	return string(c)
}

// Symbol returns the display symbol
func (c Currency) Symbol() string {
	return currencySymbols[c]
}

// FormatAmount renders minor units for display, e.g. 150 USD is "$1.50".
func FormatAmount(amount int64, currency Currency) string {
	return currency.Symbol() + decimal.New(amount, -2).StringFixed(2)
}

// Transaction is a persisted record of one payment attempt
type Transaction struct {
	ID             uuid.UUID
	RecipientEmail string
	Amount         int64
	Currency       Currency
	Status         TransactionStatus
	CreatedAt      time.Time
}

// NewPendingTransaction builds the PENDING record for a validated payment.
// CreatedAt is kept at millisecond precision, the resolution of the remote wire format.
func NewPendingTransaction(p Payment, id uuid.UUID, now time.Time) Transaction {
	return Transaction{
		ID:             id,
		RecipientEmail: p.RecipientEmail,
		Amount:         p.Amount,
		Currency:       p.Currency,
		Status:         TransactionStatusPending,
		CreatedAt:      now.UTC().Truncate(time.Millisecond),
	}
}

// WithStatus returns a copy of t moved to next.
func (t Transaction) WithStatus(next TransactionStatus) (Transaction, error) {
	if !t.Status.CanTransitionTo(next) {
		return t, fmt.Errorf("%s -> %s: %w", t.Status, next, ErrInvalidTransition)
	}
	t.Status = next
	return t, nil
}

// IsPending checks if transaction is in pending status
func (t *Transaction) IsPending() bool {
	return t.Status == TransactionStatusPending
}

// IsTerminal checks if transaction is in a terminal state
func (t *Transaction) IsTerminal() bool {
	return t.Status.IsTerminal()
}

// DisplayAmount formats the amount with the currency symbol.
func (t *Transaction) DisplayAmount() string {
	return FormatAmount(t.Amount, t.Currency)
}
