package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/cashflow/payment-sync/internal/core"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMinorUnits(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"12.50", 1250, false},
		{"3", 300, false},
		{"0.01", 1, false},
		{"0", 0, false},
		{"1.005", 0, true},
		{"abc", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseMinorUnits(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrintTransactions(t *testing.T) {
	var buf bytes.Buffer
	printTransactions(&buf, nil)
	assert.Equal(t, "No transactions yet\n", buf.String())

	buf.Reset()
	printTransactions(&buf, []core.Transaction{{
		ID:             uuid.New(),
		RecipientEmail: "a@b.com",
		Amount:         150,
		Currency:       core.CurrencyEUR,
		Status:         core.TransactionStatusCompleted,
		CreatedAt:      time.Now(),
	}})
	assert.Contains(t, buf.String(), "a@b.com")
	assert.Contains(t, buf.String(), "€1.50")
	assert.Contains(t, buf.String(), "COMPLETED")
}

func TestPrintTotals(t *testing.T) {
	var buf bytes.Buffer
	printTotals(&buf, map[core.Currency]int64{core.CurrencyUSD: 400})
	assert.Contains(t, buf.String(), "Total sent USD: $4.00")
	assert.Contains(t, buf.String(), "Total sent EUR: €0.00")
}
