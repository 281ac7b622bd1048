package database

import (
	"context"
	"log/slog"
	"sync"

	"github.com/cashflow/payment-sync/internal/core"
)

type listFunc func(ctx context.Context) ([]core.Transaction, error)

// changeFeed fans write notifications out to observers. Each observer re-reads the
// table when notified; notifications that arrive while it is busy are coalesced.
type changeFeed struct {
	mu     sync.Mutex
	subs   map[chan struct{}]struct{}
	logger *slog.Logger
}

func newChangeFeed(logger *slog.Logger) *changeFeed {
	if logger == nil {
		logger = slog.Default()
	}
	return &changeFeed{
		subs:   make(map[chan struct{}]struct{}),
		logger: logger,
	}
}

func (f *changeFeed) notify() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (f *changeFeed) subscribe() chan struct{} {
	ch := make(chan struct{}, 1)
	f.mu.Lock()
	f.subs[ch] = struct{}{}
	f.mu.Unlock()
	return ch
}

func (f *changeFeed) unsubscribe(ch chan struct{}) {
	f.mu.Lock()
	delete(f.subs, ch)
	f.mu.Unlock()
}

func (f *changeFeed) observe(ctx context.Context, list listFunc) (<-chan []core.Transaction, error) {
	// subscribe before the first read so no write slips between the two
	signal := f.subscribe()

	first, err := list(ctx)
	if err != nil {
		f.unsubscribe(signal)
		return nil, err
	}

	out := make(chan []core.Transaction, 1)
	out <- first

	go func() {
		defer close(out)
		defer f.unsubscribe(signal)

		for {
			select {
			case <-ctx.Done():
				return
			case <-signal:
			}

			snapshot, err := list(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				f.logger.Warn("reading transactions snapshot", slog.Any("err", err))
				continue
			}

			select {
			case out <- snapshot:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}
