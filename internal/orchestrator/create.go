package orchestrator

import (
	"context"
	"strings"
	"sync"

	"github.com/MrJamesThe3rd/flux/internal/transaction"
)

// Outcome is the propagation result for one adapter.
type Outcome struct {
	Adapter   string
	Attempted bool // false when the adapter was not ready
	Err       error
}

func (o Outcome) OK() bool { return o.Attempted && o.Err == nil }

// CreateReport lists one outcome per registered adapter, in registration
// order.
type CreateReport struct {
	Transaction transaction.Transaction
	Persisted   bool
	Outcomes    []Outcome
}

// Message summarises the report for display.
func (r *CreateReport) Message() string {
	var synced, failed []string

	for _, o := range r.Outcomes {
		switch {
		case o.OK():
			synced = append(synced, o.Adapter)
		case o.Attempted:
			failed = append(failed, o.Adapter)
		}
	}

	switch {
	case len(synced) == 0 && len(failed) == 0:
		return "saved locally"
	case len(failed) == 0:
		return "saved and synced to " + strings.Join(synced, ", ")
	case len(synced) == 0:
		return "saved locally; sync failed for " + strings.Join(failed, ", ")
	}

	return "saved; synced to " + strings.Join(synced, ", ") + ", failed for " + strings.Join(failed, ", ")
}

// Create appends tx to the local store, then pushes it to every ready
// adapter concurrently. The local write happens first and is never undone.
func (s *Service) Create(ctx context.Context, tx transaction.Transaction) *CreateReport {
	report := &CreateReport{
		Transaction: tx,
		Outcomes:    make([]Outcome, len(s.adapters)),
	}

	if err := s.store.Append(tx); err != nil {
		s.logger.WarnContext(ctx, "failed to persist new transaction", "id", tx.ID, "error", err)
	} else {
		report.Persisted = true
	}

	var wg sync.WaitGroup

	for i, adapter := range s.adapters {
		report.Outcomes[i].Adapter = adapter.Name()

		if !adapter.Ready() {
			continue
		}

		report.Outcomes[i].Attempted = true

		wg.Go(func() {
			err := adapter.PushOne(ctx, tx)
			report.Outcomes[i].Err = err

			result := ResultOK
			if err != nil {
				result = ResultError
				s.logger.WarnContext(ctx, "failed to propagate transaction", "adapter", adapter.Name(), "id", tx.ID, "error", err)
			}

			s.recorder.ObservePropagation(adapter.Name(), result)
		})
	}

	wg.Wait()

	return report
}
