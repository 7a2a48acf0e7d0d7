package transaction

import (
	"time"

	"github.com/shopspring/decimal"
)

// Row-store column names.
const (
	ColumnID        = "id"
	ColumnOwnerID   = "owner_id"
	ColumnDate      = "date"
	ColumnLabel     = "label"
	ColumnAmount    = "amount"
	ColumnKind      = "kind"
	ColumnCategory  = "category"
	ColumnNote      = "note"
	ColumnUpdatedAt = "updated_at"
)

// RemoteRow is the row-store representation of a transaction, scoped to the
// owner that wrote it.
type RemoteRow struct {
	ID        string
	OwnerID   string
	Date      string
	Label     string
	Amount    decimal.Decimal
	Kind      string
	Category  string
	Note      string
	UpdatedAt string
}

// ToRemoteRow maps a transaction to its row-store shape. A record without an
// UpdatedAt is stamped with the current time.
func ToRemoteRow(tx Transaction, ownerID string) RemoteRow {
	updated := tx.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}

	return RemoteRow{
		ID:        tx.ID,
		OwnerID:   ownerID,
		Date:      FormatDate(tx.Date),
		Label:     tx.Label,
		Amount:    tx.Amount,
		Kind:      string(tx.Kind),
		Category:  tx.Category,
		Note:      tx.Note,
		UpdatedAt: FormatTimestamp(updated),
	}
}

// FromRemoteRow builds a transaction from an untyped row keyed by column
// name. Missing or malformed values fall back to defaults: empty strings, a
// zero amount, zero dates.
func FromRemoteRow(fields map[string]any) Transaction {
	amount, ok := decimalOf(fields[ColumnAmount])
	if !ok {
		amount = decimal.Zero
	}

	updated := fields[ColumnUpdatedAt]
	if updated == nil {
		updated = fields["updatedAt"]
	}

	return Transaction{
		ID:        textOf(fields[ColumnID]),
		Date:      dateOf(fields[ColumnDate]),
		Label:     textOf(fields[ColumnLabel]),
		Amount:    amount,
		Kind:      kindOf(fields[ColumnKind]),
		Category:  textOf(fields[ColumnCategory]),
		Note:      textOf(fields[ColumnNote]),
		UpdatedAt: timestampOf(updated),
	}
}

// kindOf normalizes a stored kind. Unrecognised values are kept verbatim.
func kindOf(v any) Kind {
	raw := textOf(v)
	if kind, ok := ParseKind(raw); ok {
		return kind
	}

	return Kind(raw)
}
