// Package remote defines the capability every remote backend implements so
// the orchestrator can mirror the local transaction set to it.
package remote

import (
	"context"
	"errors"

	"github.com/MrJamesThe3rd/flux/internal/transaction"
)

// Backend names.
const (
	NameRowStore    = "rowstore"
	NameSpreadsheet = "sheets"
)

//go:generate mockgen -source=remote.go -destination=adapter_mock.go -package=remote
type Adapter interface {
	// Name identifies the backend in logs, metrics and reports.
	Name() string
	// Ready reports whether the adapter is configured and authenticated.
	// It must not touch the network.
	Ready() bool
	// Pull fetches every record visible to the current principal. It never
	// returns a partial result.
	Pull(ctx context.Context) ([]transaction.Transaction, error)
	// PushAll upserts txs keyed by id.
	PushAll(ctx context.Context, txs []transaction.Transaction) error
	// PushOne propagates a single new record.
	PushOne(ctx context.Context, tx transaction.Transaction) error
}

// ErrUnauthenticated is returned by adapters asked to move data without a
// principal to scope it to.
var ErrUnauthenticated = errors.New("remote: not authenticated")
