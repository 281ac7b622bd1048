package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/cashflow/payment-sync/internal/core"
	"github.com/cashflow/payment-sync/internal/port/input"
	"github.com/cashflow/payment-sync/internal/port/output"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// SyncErrorPolicy decides what observers see when a background sync fails
type SyncErrorPolicy int

const (
	// SwallowSyncErrors keeps showing local data and only logs the failure
	SwallowSyncErrors SyncErrorPolicy = iota
	// PropagateSyncErrors emits an Error state until the next snapshot or successful retry
	PropagateSyncErrors
)

// ParseSyncErrorPolicy accepts "swallow" and "propagate"
func ParseSyncErrorPolicy(s string) (SyncErrorPolicy, error) {
	switch s {
	case "", "swallow":
		return SwallowSyncErrors, nil
	case "propagate":
		return PropagateSyncErrors, nil
	default:
		return 0, fmt.Errorf("unknown sync error policy %q", s)
	}
}

// HistoryServiceImpl implements the HistoryService input port.
// The local store is the only source of what observers see; the remote
// service only feeds the store.
type HistoryServiceImpl struct {
	store  output.TransactionStore
	remote output.RemotePaymentService
	policy SyncErrorPolicy
	logger *slog.Logger

	group singleflight.Group
	wg    sync.WaitGroup

	mu        sync.Mutex
	observers map[chan error]struct{}
}

// NewHistoryService creates a new history service
func NewHistoryService(
	store output.TransactionStore,
	remote output.RemotePaymentService,
	policy SyncErrorPolicy,
	logger *slog.Logger,
) *HistoryServiceImpl {
	if logger == nil {
		logger = slog.Default()
	}
	return &HistoryServiceImpl{
		store:     store,
		remote:    remote,
		policy:    policy,
		logger:    logger.With(slog.String("component", "history")),
		observers: make(map[chan error]struct{}),
	}
}

// Observe emits Loading, then a Success for every local snapshot, newest first.
// Each call starts one background sync pass that outlives ctx.
func (s *HistoryServiceImpl) Observe(ctx context.Context) <-chan input.HistoryState {
	out := make(chan input.HistoryState, 1)
	out <- input.HistoryState{Kind: input.HistoryLoading}

	results := s.addObserver()

	go func() {
		defer close(out)
		defer s.removeObserver(results)

		send := func(state input.HistoryState) bool {
			select {
			case out <- state:
				return true
			case <-ctx.Done():
				return false
			}
		}

		snapshots, err := s.store.ObserveAll(ctx)
		if err != nil {
			s.logger.Error("observing local transactions", slog.Any("err", err))
			send(input.HistoryState{Kind: input.HistoryError, Message: "Failed to load transactions"})
			return
		}

		s.startSync(context.WithoutCancel(ctx))

		var last []core.Transaction
		inError := false
		for {
			select {
			case <-ctx.Done():
				return
			case snapshot, ok := <-snapshots:
				if !ok {
					return
				}
				last, inError = snapshot, false
				if !send(input.HistoryState{Kind: input.HistorySuccess, Transactions: snapshot}) {
					return
				}
			case err := <-results:
				switch {
				case err != nil:
					inError = true
					if !send(input.HistoryState{Kind: input.HistoryError, Message: err.Error()}) {
						return
					}
				case inError:
					inError = false
					if !send(input.HistoryState{Kind: input.HistorySuccess, Transactions: last}) {
						return
					}
				}
			}
		}
	}()

	return out
}

// Retry starts another background sync pass
func (s *HistoryServiceImpl) Retry() {
	s.startSync(context.Background())
}

// Sync runs one pass and waits for it. Concurrent callers share a pass in flight.
func (s *HistoryServiceImpl) Sync(ctx context.Context) error {
	_, err, _ := s.group.Do("sync", func() (interface{}, error) {
		return nil, s.syncOnce(ctx)
	})
	return err
}

// Wait blocks until background passes started so far have finished
func (s *HistoryServiceImpl) Wait() {
	s.wg.Wait()
}

// Summary returns the completed total per currency in minor units
func (s *HistoryServiceImpl) Summary(ctx context.Context) (map[core.Currency]int64, error) {
	totals := make(map[core.Currency]int64)
	for _, c := range core.Currencies() {
		total, err := s.store.TotalCompleted(ctx, c)
		if err != nil {
			return nil, err
		}
		totals[c] = total
	}
	return totals, nil
}

func (s *HistoryServiceImpl) startSync(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		err := s.Sync(ctx)
		if err != nil {
			s.logger.Warn("background sync failed", slog.Any("err", err))
		}
		if s.policy == PropagateSyncErrors {
			s.broadcast(err)
		}
	}()
}

func (s *HistoryServiceImpl) syncOnce(ctx context.Context) error {
	payloads, err := s.remote.ListAll(ctx)
	if err != nil {
		return err
	}

	local, err := s.store.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to read local transactions: %w", err)
	}
	known := make(map[uuid.UUID]core.Transaction, len(local))
	for _, tx := range local {
		known[tx.ID] = tx
	}

	merged := make([]core.Transaction, 0, len(payloads))
	for _, p := range payloads {
		tx, err := output.TransactionFromPayload(p)
		if err != nil {
			s.logger.Warn("skipping remote transaction", slog.Any("err", err))
			continue
		}
		if current, ok := known[tx.ID]; ok {
			// the remote copy never moves a local status backwards
			if !current.Status.CanTransitionTo(tx.Status) {
				tx.Status = current.Status
			}
			tx.CreatedAt = current.CreatedAt
			if sameTransaction(current, tx) {
				continue
			}
		}
		merged = append(merged, tx)
	}

	if len(merged) == 0 {
		return nil
	}
	// rows may have been resolved locally since they were read; MergeAll re-checks
	if err := s.store.MergeAll(ctx, merged); err != nil {
		return fmt.Errorf("failed to store remote transactions: %w", err)
	}
	s.logger.Info("synced remote transactions", slog.Int("count", len(merged)))
	return nil
}

func sameTransaction(a, b core.Transaction) bool {
	return a.ID == b.ID &&
		a.RecipientEmail == b.RecipientEmail &&
		a.Amount == b.Amount &&
		a.Currency == b.Currency &&
		a.Status == b.Status &&
		a.CreatedAt.Equal(b.CreatedAt)
}

func (s *HistoryServiceImpl) addObserver() chan error {
	ch := make(chan error, 1)
	s.mu.Lock()
	s.observers[ch] = struct{}{}
	s.mu.Unlock()
	return ch
}

func (s *HistoryServiceImpl) removeObserver(ch chan error) {
	s.mu.Lock()
	delete(s.observers, ch)
	s.mu.Unlock()
}

// broadcast hands the latest sync result to every observer, replacing one
// that has not been read yet.
func (s *HistoryServiceImpl) broadcast(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.observers {
		select {
		case <-ch:
		default:
		}
		ch <- err
	}
}
