package output

import (
	"testing"
	"time"

	"github.com/cashflow/payment-sync/internal/core"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestPayloadRoundTrip(t *testing.T) {
	for _, status := range []core.TransactionStatus{
		core.TransactionStatusPending,
		core.TransactionStatusCompleted,
		core.TransactionStatusFailed,
	} {
		tx := core.Transaction{
			ID:             uuid.New(),
			RecipientEmail: "a@b.com",
			Amount:         150,
			Currency:       core.CurrencyEUR,
			Status:         status,
			CreatedAt:      time.Date(2026, 5, 2, 8, 30, 0, 42_000_000, time.UTC),
		}

		got, err := TransactionFromPayload(PayloadFromTransaction(tx))
		require.NoError(t, err)
		require.Equal(t, tx.ID, got.ID)
		require.Equal(t, tx.RecipientEmail, got.RecipientEmail)
		require.Equal(t, tx.Amount, got.Amount)
		require.Equal(t, tx.Currency, got.Currency)
		require.Equal(t, tx.Status, got.Status)
		require.True(t, tx.CreatedAt.Equal(got.CreatedAt))
	}
}

func TestTransactionFromPayloadFallbacks(t *testing.T) {
	got, err := TransactionFromPayload(TransactionPayload{
		ID:       uuid.NewString(),
		Currency: "KES",
		Status:   "processing",
	})
	require.NoError(t, err)
	require.Equal(t, core.CurrencyUSD, got.Currency)
	require.Equal(t, core.TransactionStatusPending, got.Status)

	_, err = TransactionFromPayload(TransactionPayload{ID: "not-a-uuid"})
	require.Error(t, err)
}
