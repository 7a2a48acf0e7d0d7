package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrJamesThe3rd/flux/internal/reconcile"
	"github.com/MrJamesThe3rd/flux/internal/remote"
	"github.com/MrJamesThe3rd/flux/internal/transaction"
)

// SyncReport describes one completed cycle.
type SyncReport struct {
	Adapter    string
	Pulled     int
	Local      int
	Merged     int
	PushedBack bool
	Persisted  bool
	// Shared is set when more than one caller received this cycle's result.
	Shared  bool
	Elapsed time.Duration
}

// Sync runs a full cycle against the named adapter: pull, reconcile with the
// local set, push the merged set back, then persist it locally.
//
// Concurrent calls for the same adapter share one cycle; a concurrent
// Refresh waits for it to finish. A failed pull
// leaves the local set untouched; a failed push-back still updates it and
// is reported as ErrPushBack alongside the report.
func (s *Service) Sync(ctx context.Context, name string) (*SyncReport, error) {
	return s.run(ctx, name, true)
}

// Refresh is Sync without the push-back: the remote copy is read and merged
// into the local set but not rewritten.
func (s *Service) Refresh(ctx context.Context, name string) (*SyncReport, error) {
	return s.run(ctx, name, false)
}

func (s *Service) run(ctx context.Context, name string, pushBack bool) (*SyncReport, error) {
	adapter, ok := s.Adapter(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAdapter, name)
	}

	if !adapter.Ready() {
		s.finish(name, ErrNotReady)
		s.recorder.ObserveSync(name, ResultNotReady, 0)

		return nil, fmt.Errorf("syncing %s: %w", name, ErrNotReady)
	}

	// A refresh never joins a full sync: the caller expects no push-back.
	key := name
	if !pushBack {
		key = "refresh:" + name
	}

	type outcome struct {
		report *SyncReport
		err    error
	}

	v, _, shared := s.flights.Do(key, func() (any, error) {
		lock := s.cycles[name]
		lock.Lock()
		defer lock.Unlock()

		report, err := s.cycle(ctx, adapter, pushBack)
		return outcome{report: report, err: err}, nil
	})

	out := v.(outcome)
	if out.report != nil && shared {
		r := *out.report
		r.Shared = true

		return &r, out.err
	}

	return out.report, out.err
}

func (s *Service) cycle(ctx context.Context, adapter remote.Adapter, pushBack bool) (*SyncReport, error) {
	name := adapter.Name()
	start := s.now()
	logger := s.logger.With("adapter", name)

	s.setPhase(name, PhasePulling)
	logger.DebugContext(ctx, "sync phase", "phase", PhasePulling)

	pulled, err := adapter.Pull(ctx)
	if err != nil {
		err = fmt.Errorf("pulling from %s: %w", name, err)
		s.finish(name, err)
		s.recorder.ObserveSync(name, ResultError, s.now().Sub(start))
		logger.WarnContext(ctx, "sync failed", "phase", PhasePulling, "error", err)

		return nil, err
	}

	s.setPhase(name, PhaseReconciling)
	logger.DebugContext(ctx, "sync phase", "phase", PhaseReconciling, "pulled", len(pulled))

	local := s.store.List()
	merged := reconcile.Merge(local, pulled)

	report := &SyncReport{
		Adapter: name,
		Pulled:  len(pulled),
		Local:   len(local),
		Merged:  len(merged),
	}

	var pushErr error

	if pushBack {
		s.setPhase(name, PhasePushingBack)
		logger.DebugContext(ctx, "sync phase", "phase", PhasePushingBack, "merged", len(merged))

		if err := adapter.PushAll(ctx, merged); err != nil {
			pushErr = fmt.Errorf("%w: %s: %w", ErrPushBack, name, err)
			logger.WarnContext(ctx, "push-back failed, updating local set anyway", "error", err)
		} else {
			report.PushedBack = true
		}
	}

	s.setPhase(name, PhasePersisting)
	logger.DebugContext(ctx, "sync phase", "phase", PhasePersisting)

	// Records appended while the cycle ran are not in merged; folding merged
	// over the current set keeps them.
	err = s.store.Update(func(current []transaction.Transaction) []transaction.Transaction {
		return reconcile.Merge(current, merged)
	})
	if err != nil {
		logger.WarnContext(ctx, "failed to persist local set", "error", err)
	} else {
		report.Persisted = true
	}

	report.Elapsed = s.now().Sub(start)
	s.finish(name, pushErr)

	result := ResultOK
	if errors.Is(pushErr, ErrPushBack) {
		result = ResultPushBack
	}

	s.recorder.ObserveSync(name, result, report.Elapsed)
	logger.InfoContext(ctx, "sync finished",
		"pulled", report.Pulled,
		"merged", report.Merged,
		"pushed_back", report.PushedBack,
		"persisted", report.Persisted,
		"elapsed", report.Elapsed,
	)

	return report, pushErr
}
