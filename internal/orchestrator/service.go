// Package orchestrator sequences pull, reconcile, push-back and persist
// cycles between the local store and each remote adapter, and propagates
// newly created records.
package orchestrator

import (
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/MrJamesThe3rd/flux/internal/remote"
	"github.com/MrJamesThe3rd/flux/internal/transaction"
)

var (
	// ErrNotReady is returned without touching the network when an adapter
	// is not configured or not authenticated.
	ErrNotReady = errors.New("adapter not ready")
	// ErrPushBack wraps a failed push of the merged set. The local store has
	// still been updated when it is returned.
	ErrPushBack = errors.New("push-back failed")

	ErrUnknownAdapter = errors.New("unknown adapter")
)

// LocalStore is the on-device transaction set.
type LocalStore interface {
	List() []transaction.Transaction
	Append(tx transaction.Transaction) error
	Update(fn func(current []transaction.Transaction) []transaction.Transaction) error
}

// Result labels passed to a Recorder.
const (
	ResultOK       = "ok"
	ResultNotReady = "not_ready"
	ResultPushBack = "push_back_failed"
	ResultError    = "error"
)

// Recorder observes cycle and propagation outcomes.
type Recorder interface {
	ObserveSync(adapter, result string, elapsed time.Duration)
	ObservePropagation(adapter, result string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveSync(string, string, time.Duration) {}
func (nopRecorder) ObservePropagation(string, string)         {}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		s.recorder = r
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

type Service struct {
	store    LocalStore
	adapters []remote.Adapter
	logger   *slog.Logger
	recorder Recorder
	now      func() time.Time

	flights singleflight.Group
	// cycles serializes the cycles of one adapter, so a refresh and a full
	// sync never interleave their phases or writes.
	cycles map[string]*sync.Mutex

	mu     sync.Mutex
	status map[string]Status
}

// NewService registers adapters in the order their outcomes are reported.
// Adapter names must be unique.
func NewService(store LocalStore, adapters []remote.Adapter, opts ...Option) *Service {
	s := &Service{
		store:    store,
		adapters: slices.Clone(adapters),
		logger:   slog.Default(),
		recorder: nopRecorder{},
		now:      time.Now,
		status:   make(map[string]Status, len(adapters)),
		cycles:   make(map[string]*sync.Mutex, len(adapters)),
	}

	for _, opt := range opts {
		opt(s)
	}

	for _, a := range s.adapters {
		s.status[a.Name()] = Status{Phase: PhaseIdle}
		s.cycles[a.Name()] = &sync.Mutex{}
	}

	return s
}

// Adapter looks an adapter up by name.
func (s *Service) Adapter(name string) (remote.Adapter, bool) {
	for _, a := range s.adapters {
		if a.Name() == name {
			return a, true
		}
	}

	return nil, false
}

// Adapters returns the registered adapter names.
func (s *Service) Adapters() []string {
	names := make([]string, len(s.adapters))
	for i, a := range s.adapters {
		names[i] = a.Name()
	}

	return names
}

// Transactions returns the current local set.
func (s *Service) Transactions() []transaction.Transaction {
	return s.store.List()
}
