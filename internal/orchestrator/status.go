package orchestrator

import (
	"time"
)

// Phase is the stage of a sync cycle. A cycle runs Idle, Pulling,
// Reconciling, PushingBack, Persisting and back to Idle; any error moves it
// to Failed, which the next cycle leaves.
type Phase int

const (
	PhaseIdle Phase = iota
	PhasePulling
	PhaseReconciling
	PhasePushingBack
	PhasePersisting
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhasePulling:
		return "pulling"
	case PhaseReconciling:
		return "reconciling"
	case PhasePushingBack:
		return "pushing_back"
	case PhasePersisting:
		return "persisting"
	case PhaseFailed:
		return "failed"
	}

	return "unknown"
}

// Status is the last known state of an adapter's sync cycle.
type Status struct {
	Phase    Phase
	LastErr  error
	LastSync time.Time // end of the last successful cycle
}

func (s *Service) Status(name string) (Status, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.status[name]

	return st, ok
}

func (s *Service) setPhase(name string, phase Phase) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.status[name]
	st.Phase = phase

	if phase == PhasePulling {
		st.LastErr = nil
	}

	s.status[name] = st
}

func (s *Service) finish(name string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.status[name]
	st.LastErr = err

	if err != nil {
		st.Phase = PhaseFailed
	} else {
		st.Phase = PhaseIdle
		st.LastSync = s.now()
	}

	s.status[name] = st
}
