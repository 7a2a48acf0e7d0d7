package view

import (
	"context"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/MrJamesThe3rd/flux/internal/importer"
	"github.com/MrJamesThe3rd/flux/internal/orchestrator"
	"github.com/MrJamesThe3rd/flux/internal/transaction"
)

// Service is the application surface the screens drive.
type Service interface {
	Transactions() []transaction.Transaction
	Summary(year int, month time.Month) transaction.Summary
	AddTransaction(ctx context.Context, p transaction.CreateParams) (*orchestrator.CreateReport, error)

	Adapters() []string
	Ready(adapter string) bool
	Status(adapter string) (orchestrator.Status, bool)
	Sync(ctx context.Context, adapter string) (*orchestrator.SyncReport, error)
	ConnectSpreadsheet(ctx context.Context, urlOrID string) (*orchestrator.SyncReport, error)
	DisconnectSpreadsheet(ctx context.Context)
	SpreadsheetID() string

	Export(w io.Writer) error
	ExportFilename() string
	Import(ctx context.Context, r io.Reader) (*importer.Result, error)
}

type CommonModel struct {
	Width  int
	Height int
}

type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}
