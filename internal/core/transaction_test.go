package core

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestPaymentValidate(t *testing.T) {
	tests := []struct {
		name    string
		payment Payment
		want    string
	}{
		{"valid", Payment{"a@b.com", 150, CurrencyUSD}, ""},
		{"plus address", Payment{"first.last+pay@example.co.ke", 1, CurrencyEUR}, ""},
		{"bad email", Payment{"bad-email", 100, CurrencyUSD}, "Invalid email format"},
		{"missing tld", Payment{"a@b", 100, CurrencyUSD}, "Invalid email format"},
		{"zero amount", Payment{"a@b.com", 0, CurrencyUSD}, "Amount must be greater than zero"},
		{"negative amount", Payment{"a@b.com", -5, CurrencyUSD}, "Amount must be greater than zero"},
		{"email checked first", Payment{"nope", 0, CurrencyUSD}, "Invalid email format"},
		{"unknown currency", Payment{"a@b.com", 10, Currency("GBP")}, "Unsupported currency"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.payment.Validate()
			if tt.want == "" {
				require.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			require.Equal(t, tt.want, verr.Error())
		})
	}
}

func TestStatusTransitions(t *testing.T) {
	require.True(t, TransactionStatusPending.CanTransitionTo(TransactionStatusCompleted))
	require.True(t, TransactionStatusPending.CanTransitionTo(TransactionStatusFailed))
	require.True(t, TransactionStatusCompleted.CanTransitionTo(TransactionStatusCompleted))

	require.False(t, TransactionStatusCompleted.CanTransitionTo(TransactionStatusPending))
	require.False(t, TransactionStatusFailed.CanTransitionTo(TransactionStatusCompleted))
	require.False(t, TransactionStatusCompleted.CanTransitionTo(TransactionStatusFailed))

	tx := Transaction{ID: uuid.New(), Status: TransactionStatusFailed}
	_, err := tx.WithStatus(TransactionStatusPending)
	require.True(t, errors.Is(err, ErrInvalidTransition))
}

func TestNewPendingTransaction(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 123456789, time.UTC)
	id := uuid.New()

	tx := NewPendingTransaction(Payment{"a@b.com", 150, CurrencyUSD}, id, now)

	require.Equal(t, id, tx.ID)
	require.Equal(t, TransactionStatusPending, tx.Status)
	require.Equal(t, int64(150), tx.Amount)
	require.Equal(t, CurrencyUSD, tx.Currency)
	require.Equal(t, 123000000, tx.CreatedAt.Nanosecond())
}

func TestParsing(t *testing.T) {
	require.Equal(t, TransactionStatusCompleted, ParseTransactionStatus("completed"))
	require.Equal(t, TransactionStatusPending, ParseTransactionStatus("weird"))

	c, err := ParseCurrency("eur")
	require.NoError(t, err)
	require.Equal(t, CurrencyEUR, c)
	require.Equal(t, "€", c.Symbol())

	_, err = ParseCurrency("XYZ")
	require.Error(t, err)
	require.Equal(t, CurrencyUSD, CurrencyOrDefault("XYZ"))
}

func TestFormatAmount(t *testing.T) {
	require.Equal(t, "$1.50", FormatAmount(150, CurrencyUSD))
	require.Equal(t, "€0.05", FormatAmount(5, CurrencyEUR))
	require.Equal(t, "$1234.00", FormatAmount(123400, CurrencyUSD))
}

func TestRemoteValidationErrorMessage(t *testing.T) {
	err := &RemoteValidationError{Fields: map[string][]string{
		"recipient": {"Recipient email not found in system"},
		"amount":    {"Amount exceeds daily limit", "too precise"},
	}}
	require.Equal(t,
		"Validation failed: amount: Amount exceeds daily limit, too precise, recipient: Recipient email not found in system",
		err.Error())
}
