package database

import (
	"context"
	"os"
	"testing"

	"github.com/cashflow/payment-sync/internal/constant/model/db"
	"github.com/stretchr/testify/require"
)

// TestGormTransactionStore runs the store contract against postgres.
// Skips unless DATABASE_URL points at a disposable database.
func TestGormTransactionStore(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set; skipping DB integration test")
	}

	conn, err := db.NewDB(context.Background(), dsn, nil, db.DefaultPoolOptions())
	require.NoError(t, err)

	require.NoError(t, conn.Exec("TRUNCATE TABLE transactions").Error)
	t.Cleanup(func() {
		conn.Exec("TRUNCATE TABLE transactions")
		conn.Close()
	})

	storeContract(t, NewGormTransactionStore(conn.DB, nil))
}
