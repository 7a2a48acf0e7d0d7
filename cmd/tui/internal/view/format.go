package view

import (
	"context"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/flux/internal/transaction"
)

// syncTimeout bounds a single network round from the terminal.
const syncTimeout = time.Minute

// FormatAmount renders an amount with two decimals, negative for expenses.
func FormatAmount(amount decimal.Decimal, kind transaction.Kind) string {
	if kind == transaction.KindExpense {
		return amount.Neg().StringFixed(2)
	}

	return amount.StringFixed(2)
}

// SyncCtx returns a context with the standard timeout for remote operations.
func SyncCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), syncTimeout)
}

var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	faintStyle   = lipgloss.NewStyle().Faint(true)
)

func activeStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render(s)
}
