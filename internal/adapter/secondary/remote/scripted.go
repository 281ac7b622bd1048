package remote

import (
	"context"
	"sync"

	"github.com/cashflow/payment-sync/internal/port/output"
)

// Scripted is a deterministic RemotePaymentService. Submit outcomes are
// consumed in the order they were queued and accepted once the queue is empty.
type Scripted struct {
	mu        sync.Mutex
	outcomes  []error
	submitted []output.TransactionPayload
	onSubmit  func(ctx context.Context, payload output.TransactionPayload)

	listed    []output.TransactionPayload
	listErr   error
	listGate  <-chan struct{}
	listCalls int
}

func NewScripted() *Scripted {
	return &Scripted{}
}

// QueueSubmit appends outcomes for the next Submit calls (nil accepts)
func (s *Scripted) QueueSubmit(outcomes ...error) *Scripted {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outcomes = append(s.outcomes, outcomes...)
	return s
}

// OnSubmit registers a hook that runs inside Submit before the outcome is returned
func (s *Scripted) OnSubmit(fn func(ctx context.Context, payload output.TransactionPayload)) *Scripted {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onSubmit = fn
	return s
}

// SetList sets what ListAll returns
func (s *Scripted) SetList(payloads []output.TransactionPayload, err error) *Scripted {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listed = payloads
	s.listErr = err
	return s
}

func (s *Scripted) Submit(ctx context.Context, payload output.TransactionPayload) error {
	s.mu.Lock()
	s.submitted = append(s.submitted, payload)
	hook := s.onSubmit
	var outcome error
	if len(s.outcomes) > 0 {
		outcome = s.outcomes[0]
		s.outcomes = s.outcomes[1:]
	}
	s.mu.Unlock()

	if hook != nil {
		hook(ctx, payload)
	}
	return outcome
}

func (s *Scripted) ListAll(ctx context.Context) ([]output.TransactionPayload, error) {
	s.mu.Lock()
	gate := s.listGate
	s.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]output.TransactionPayload, len(s.listed))
	copy(out, s.listed)
	return out, nil
}

// GateList makes ListAll wait until gate is closed or its ctx ends
func (s *Scripted) GateList(gate <-chan struct{}) *Scripted {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listGate = gate
	return s
}

// Submitted returns every payload passed to Submit
func (s *Scripted) Submitted() []output.TransactionPayload {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]output.TransactionPayload, len(s.submitted))
	copy(out, s.submitted)
	return out
}

// ListCalls returns how many times ListAll ran
func (s *Scripted) ListCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listCalls
}
