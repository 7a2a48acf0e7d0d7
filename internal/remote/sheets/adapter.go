// Package sheets mirrors the transaction set to one tab of a Google
// spreadsheet: a fixed header in row 1 and one transaction per row below it.
package sheets

import (
	"context"
	"log/slog"
	"regexp"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/MrJamesThe3rd/flux/internal/remote"
	"github.com/MrJamesThe3rd/flux/internal/transaction"
)

// DefaultTab is the tab title used when none is configured.
const DefaultTab = "Transactions"

var (
	spreadsheetURL = regexp.MustCompile(`/spreadsheets/d/([A-Za-z0-9_-]+)`)
	spreadsheetID  = regexp.MustCompile(`^[A-Za-z0-9_-]{20,}$`)
)

// ExtractSpreadsheetID accepts either a spreadsheet URL or a bare id and
// returns the id, or "" when s is neither.
func ExtractSpreadsheetID(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	if m := spreadsheetURL.FindStringSubmatch(s); m != nil {
		return m[1]
	}

	if spreadsheetID.MatchString(s) {
		return s
	}

	return ""
}

type Option func(*Adapter)

func WithLogger(logger *slog.Logger) Option {
	return func(a *Adapter) {
		a.logger = logger
	}
}

// Adapter implements remote.Adapter over a Client. The target spreadsheet
// can be switched at runtime; an adapter without one is not ready.
type Adapter struct {
	client *Client
	tab    string
	logger *slog.Logger

	mu            sync.RWMutex
	spreadsheetID string
}

func NewAdapter(client *Client, tab, spreadsheetID string, opts ...Option) *Adapter {
	if tab == "" {
		tab = DefaultTab
	}

	a := &Adapter{
		client:        client,
		tab:           tab,
		spreadsheetID: spreadsheetID,
		logger:        slog.Default(),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

func (a *Adapter) Name() string { return remote.NameSpreadsheet }

func (a *Adapter) Ready() bool {
	return a.client.Configured() && a.Spreadsheet() != ""
}

// Configured reports whether credentials are available, whether or not a
// spreadsheet is connected.
func (a *Adapter) Configured() bool {
	return a.client.Configured()
}

func (a *Adapter) Spreadsheet() string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.spreadsheetID
}

// SetSpreadsheet switches the target spreadsheet; "" disconnects.
func (a *Adapter) SetSpreadsheet(id string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.spreadsheetID = id
}

func (a *Adapter) headerRange() string { return a.tab + "!A1:H1" }
func (a *Adapter) dataRange() string   { return a.tab + "!A2:H" }
func (a *Adapter) tableRange() string  { return a.tab + "!A:H" }

// target returns the spreadsheet id after making sure the tab exists and
// carries the expected header.
func (a *Adapter) target(ctx context.Context) (string, error) {
	id := a.Spreadsheet()
	if !a.Ready() {
		return "", remote.ErrUnauthenticated
	}

	titles, err := a.client.SheetTitles(ctx, id)
	if err != nil {
		return "", err
	}

	if !slices.Contains(titles, a.tab) {
		a.logger.InfoContext(ctx, "creating spreadsheet tab", "tab", a.tab)

		if err := a.client.AddSheet(ctx, id, a.tab); err != nil {
			return "", err
		}
	}

	head, err := a.client.GetValues(ctx, id, a.headerRange())
	if err != nil {
		return "", err
	}

	if len(head) > 0 && headerMatches(head[0]) {
		return id, nil
	}

	a.logger.DebugContext(ctx, "writing spreadsheet header", "tab", a.tab)

	header := make([]any, len(transaction.SheetHeader))
	for i, h := range transaction.SheetHeader {
		header[i] = h
	}

	if err := a.client.UpdateValues(ctx, id, a.headerRange(), [][]any{header}); err != nil {
		return "", err
	}

	return id, nil
}

func headerMatches(row []any) bool {
	if len(row) != len(transaction.SheetHeader) {
		return false
	}

	for i, cell := range row {
		s, ok := cell.(string)
		if !ok || s != transaction.SheetHeader[i] {
			return false
		}
	}

	return true
}

// Pull reads every data row; rows that do not parse are skipped.
func (a *Adapter) Pull(ctx context.Context) ([]transaction.Transaction, error) {
	id, err := a.target(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := a.client.GetValues(ctx, id, a.dataRange())
	if err != nil {
		return nil, err
	}

	txs := make([]transaction.Transaction, 0, len(rows))
	for _, row := range rows {
		if tx, ok := transaction.FromSheetRow(row); ok {
			txs = append(txs, tx)
		}
	}

	if dropped := len(rows) - len(txs); dropped > 0 {
		a.logger.DebugContext(ctx, "skipped unreadable spreadsheet rows", "count", dropped)
	}

	return txs, nil
}

// PushAll clears the data range and writes txs back. The two calls are not
// atomic: a failure between them leaves the tab empty until the next sync.
func (a *Adapter) PushAll(ctx context.Context, txs []transaction.Transaction) error {
	id, err := a.target(ctx)
	if err != nil {
		return err
	}

	if err := a.client.ClearValues(ctx, id, a.dataRange()); err != nil {
		return err
	}

	if len(txs) == 0 {
		return nil
	}

	values := make([][]any, 0, len(txs))
	for _, tx := range txs {
		values = append(values, transaction.ToSheetRow(tx))
	}

	return a.client.UpdateValues(ctx, id, a.dataRange(), values)
}

// PushOne appends a single row below the table.
func (a *Adapter) PushOne(ctx context.Context, tx transaction.Transaction) error {
	id, err := a.target(ctx)
	if err != nil {
		return err
	}

	if tx.UpdatedAt.IsZero() {
		tx.UpdatedAt = time.Now()
	}

	return a.client.AppendValues(ctx, id, a.tableRange(), [][]any{transaction.ToSheetRow(tx)})
}
