// Package app holds the application state shared by the HTTP and terminal
// surfaces: the local store, the remote adapters and the orchestrator that
// moves data between them.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/MrJamesThe3rd/flux/internal/export"
	"github.com/MrJamesThe3rd/flux/internal/importer"
	"github.com/MrJamesThe3rd/flux/internal/orchestrator"
	"github.com/MrJamesThe3rd/flux/internal/remote"
	"github.com/MrJamesThe3rd/flux/internal/remote/sheets"
	"github.com/MrJamesThe3rd/flux/internal/transaction"
)

var (
	ErrSheetsDisabled     = errors.New("spreadsheet backend is not configured")
	ErrInvalidSpreadsheet = errors.New("not a spreadsheet link or id")
)

// Store is the local store as the application uses it.
type Store interface {
	orchestrator.LocalStore
	Get(id string) (transaction.Transaction, error)
	SpreadsheetID() string
	SetSpreadsheetID(id string) error
}

// Spreadsheet is the spreadsheet adapter with its connection controls.
type Spreadsheet interface {
	remote.Adapter
	Configured() bool
	Spreadsheet() string
	SetSpreadsheet(id string)
}

type App struct {
	store        Store
	rowStore     remote.Adapter
	sheets       Spreadsheet
	orchestrator *orchestrator.Service
	exporter     *export.Service
	importer     *importer.Service
	logger       *slog.Logger
	now          func() time.Time

	orchestratorOpts []orchestrator.Option
	closers          []func() error
}

type Option func(*App)

func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		a.logger = logger
	}
}

func WithRecorder(r orchestrator.Recorder) Option {
	return func(a *App) {
		a.orchestratorOpts = append(a.orchestratorOpts, orchestrator.WithRecorder(r))
	}
}

func WithClock(now func() time.Time) Option {
	return func(a *App) {
		a.now = now
	}
}

// WithCloser registers a function run by Close, in reverse order.
func WithCloser(fn func() error) Option {
	return func(a *App) {
		a.closers = append(a.closers, fn)
	}
}

// New wires the application around store. Adapters are registered in the
// order row-store, spreadsheet; either may be nil.
func New(store Store, rowStore remote.Adapter, sheet Spreadsheet, opts ...Option) *App {
	a := &App{
		store:    store,
		rowStore: rowStore,
		sheets:   sheet,
		logger:   slog.Default(),
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(a)
	}

	var adapters []remote.Adapter
	if rowStore != nil {
		adapters = append(adapters, rowStore)
	}

	if sheet != nil {
		adapters = append(adapters, sheet)
	}

	orchOpts := append([]orchestrator.Option{
		orchestrator.WithLogger(a.logger),
		orchestrator.WithClock(a.now),
	}, a.orchestratorOpts...)

	a.orchestrator = orchestrator.NewService(store, adapters, orchOpts...)
	a.exporter = export.NewService(store, a.now)
	a.importer = importer.NewService(a.logger)

	return a
}

func (a *App) Orchestrator() *orchestrator.Service {
	return a.orchestrator
}

// Adapters returns the registered adapter names.
func (a *App) Adapters() []string {
	return a.orchestrator.Adapters()
}

// Ready reports whether the named adapter can currently sync.
func (a *App) Ready(adapter string) bool {
	ad, ok := a.orchestrator.Adapter(adapter)
	return ok && ad.Ready()
}

// Status returns the last known sync state of the named adapter.
func (a *App) Status(adapter string) (orchestrator.Status, bool) {
	return a.orchestrator.Status(adapter)
}

// Transactions returns the local set, most recent date first.
func (a *App) Transactions() []transaction.Transaction {
	txs := a.store.List()
	slices.SortStableFunc(txs, func(x, y transaction.Transaction) int {
		return y.Date.Compare(x.Date)
	})

	return txs
}

func (a *App) Transaction(id string) (transaction.Transaction, error) {
	return a.store.Get(id)
}

func (a *App) Summary(year int, month time.Month) transaction.Summary {
	return transaction.Summarize(a.store.List(), year, month)
}

// AddTransaction validates p, stores the new record locally and propagates
// it to every ready adapter.
func (a *App) AddTransaction(ctx context.Context, p transaction.CreateParams) (*orchestrator.CreateReport, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	tx := transaction.New(p, a.now())

	return a.orchestrator.Create(ctx, tx), nil
}

func (a *App) Sync(ctx context.Context, adapter string) (*orchestrator.SyncReport, error) {
	return a.orchestrator.Sync(ctx, adapter)
}

// SyncReady runs a full sync against every ready adapter in turn and
// returns the error of each one that failed.
func (a *App) SyncReady(ctx context.Context) map[string]error {
	failed := make(map[string]error)

	for _, name := range a.orchestrator.Adapters() {
		adapter, _ := a.orchestrator.Adapter(name)
		if !adapter.Ready() {
			continue
		}

		if _, err := a.orchestrator.Sync(ctx, name); err != nil {
			failed[name] = err
		}
	}

	return failed
}

// ConnectSpreadsheet extracts the spreadsheet id from urlOrID, remembers it
// and merges the spreadsheet's rows into the local set. Nothing is written
// to the spreadsheet.
func (a *App) ConnectSpreadsheet(ctx context.Context, urlOrID string) (*orchestrator.SyncReport, error) {
	if a.sheets == nil || !a.sheets.Configured() {
		return nil, ErrSheetsDisabled
	}

	id := sheets.ExtractSpreadsheetID(urlOrID)
	if id == "" {
		return nil, ErrInvalidSpreadsheet
	}

	a.sheets.SetSpreadsheet(id)

	if err := a.store.SetSpreadsheetID(id); err != nil {
		a.logger.WarnContext(ctx, "failed to persist spreadsheet id", "error", err)
	}

	report, err := a.orchestrator.Refresh(ctx, a.sheets.Name())
	if err != nil {
		return nil, fmt.Errorf("reading spreadsheet: %w", err)
	}

	return report, nil
}

func (a *App) DisconnectSpreadsheet(ctx context.Context) {
	if a.sheets == nil {
		return
	}

	a.sheets.SetSpreadsheet("")

	if err := a.store.SetSpreadsheetID(""); err != nil {
		a.logger.WarnContext(ctx, "failed to clear spreadsheet id", "error", err)
	}
}

// SpreadsheetID returns the connected spreadsheet, or "".
func (a *App) SpreadsheetID() string {
	if a.sheets == nil {
		return ""
	}

	return a.sheets.Spreadsheet()
}

// Export writes the local set as CSV.
func (a *App) Export(w io.Writer) error {
	return a.exporter.Export(w)
}

func (a *App) ExportFilename() string {
	return a.exporter.Filename()
}

// Import adds every valid row of r to the local set. Imported records reach
// the remotes on their next sync.
func (a *App) Import(ctx context.Context, r io.Reader) (*importer.Result, error) {
	res, err := a.importer.Import(ctx, r)
	if err != nil {
		return nil, err
	}

	if len(res.Transactions) == 0 {
		return res, nil
	}

	err = a.store.Update(func(current []transaction.Transaction) []transaction.Transaction {
		return append(slices.Clone(res.Transactions), current...)
	})
	if err != nil {
		a.logger.WarnContext(ctx, "failed to persist imported transactions", "error", err)
	}

	return res, nil
}

func (a *App) Close() error {
	var errs []error

	for _, fn := range slices.Backward(a.closers) {
		if err := fn(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
