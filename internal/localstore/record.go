package localstore

import (
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/flux/internal/transaction"
)

// record is the on-disk JSON shape of a transaction.
type record struct {
	ID        string          `json:"id"`
	Date      string          `json:"date"`
	Label     string          `json:"label"`
	Amount    decimal.Decimal `json:"amount"`
	Kind      string          `json:"kind"`
	Category  string          `json:"category"`
	Note      string          `json:"note,omitempty"`
	UpdatedAt string          `json:"updatedAt,omitempty"`
}

func toRecord(tx transaction.Transaction) record {
	return record{
		ID:        tx.ID,
		Date:      transaction.FormatDate(tx.Date),
		Label:     tx.Label,
		Amount:    tx.Amount,
		Kind:      string(tx.Kind),
		Category:  tx.Category,
		Note:      tx.Note,
		UpdatedAt: transaction.FormatTimestamp(tx.UpdatedAt),
	}
}

func (r record) transaction() transaction.Transaction {
	date, _ := transaction.ParseDate(r.Date)

	return transaction.Transaction{
		ID:        r.ID,
		Date:      date,
		Label:     r.Label,
		Amount:    r.Amount,
		Kind:      transaction.Kind(r.Kind),
		Category:  r.Category,
		Note:      r.Note,
		UpdatedAt: transaction.ParseTimestamp(r.UpdatedAt),
	}
}
