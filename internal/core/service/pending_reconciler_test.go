package service

import (
	"context"
	"testing"
	"time"

	"github.com/cashflow/payment-sync/internal/core"
	"github.com/stretchr/testify/require"
)

func TestPendingReconciler(t *testing.T) {
	ctx := context.Background()

	stale := seeded(0, core.TransactionStatusPending)
	fresh := seeded(50, core.TransactionStatusPending)
	done := seeded(1, core.TransactionStatusCompleted)
	store := newSeededStore(t, stale, fresh, done)
	events := &recordingEvents{}

	r := NewPendingReconciler(store, events, 10*time.Minute, nil)
	r.now = func() time.Time { return epoch.Add(55 * time.Minute) }

	n, err := r.Reconcile(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	got, err := store.GetByID(ctx, stale.ID)
	require.NoError(t, err)
	require.Equal(t, core.TransactionStatusFailed, got.Status)

	got, err = store.GetByID(ctx, fresh.ID)
	require.NoError(t, err)
	require.Equal(t, core.TransactionStatusPending, got.Status)

	got, err = store.GetByID(ctx, done.ID)
	require.NoError(t, err)
	require.Equal(t, core.TransactionStatusCompleted, got.Status)

	require.Len(t, events.published, 1)
	require.Equal(t, stale.ID, events.published[0].ID)

	// second run finds nothing stale
	n, err = r.Reconcile(ctx)
	require.NoError(t, err)
	require.Zero(t, n)
}
