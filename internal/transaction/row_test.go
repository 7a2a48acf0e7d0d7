package transaction_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/flux/internal/transaction"
)

func TestFromRemoteRow(t *testing.T) {
	type testCase struct {
		name   string
		fields map[string]any
		verify func(t *testing.T, tx transaction.Transaction)
	}

	tests := []testCase{
		{
			name: "Typed driver values",
			fields: map[string]any{
				"id":         "1",
				"date":       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
				"label":      "Rent",
				"amount":     "150.25",
				"kind":       "expense",
				"category":   "Housing",
				"note":       nil,
				"updated_at": time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
			},
			verify: func(t *testing.T, tx transaction.Transaction) {
				assert.Equal(t, "1", tx.ID)
				assert.Equal(t, "2024-01-01", transaction.FormatDate(tx.Date))
				assert.True(t, decimal.RequireFromString("150.25").Equal(tx.Amount))
				assert.Equal(t, transaction.KindExpense, tx.Kind)
				assert.Empty(t, tx.Note)
				assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), tx.UpdatedAt)
			},
		},
		{
			name: "String values and camelCase timestamp",
			fields: map[string]any{
				"id":        []byte("2"),
				"date":      "2024-02-10",
				"amount":    int64(42),
				"updatedAt": "2024-02-10T12:00:00Z",
			},
			verify: func(t *testing.T, tx transaction.Transaction) {
				assert.Equal(t, "2", tx.ID)
				assert.True(t, decimal.NewFromInt(42).Equal(tx.Amount))
				assert.Equal(t, time.Date(2024, 2, 10, 12, 0, 0, 0, time.UTC), tx.UpdatedAt)
			},
		},
		{
			name: "Malformed values degrade to defaults",
			fields: map[string]any{
				"id":         "3",
				"date":       "yesterday",
				"amount":     "lots",
				"updated_at": "not a time",
			},
			verify: func(t *testing.T, tx transaction.Transaction) {
				assert.Equal(t, "3", tx.ID)
				assert.True(t, tx.Date.IsZero())
				assert.True(t, tx.Amount.IsZero())
				assert.True(t, tx.UpdatedAt.IsZero())
				assert.Empty(t, tx.Label)
				assert.Empty(t, tx.Category)
			},
		},
		{
			name: "Kind in mixed case",
			fields: map[string]any{
				"id":     "4",
				"date":   "2024-03-01",
				"amount": "900",
				"kind":   " Income",
			},
			verify: func(t *testing.T, tx transaction.Transaction) {
				assert.Equal(t, transaction.KindIncome, tx.Kind)

				s := transaction.Summarize([]transaction.Transaction{tx}, 2024, time.March)
				assert.Equal(t, "900", s.Income.String())
			},
		},
		{
			name: "Unknown kind kept verbatim",
			fields: map[string]any{
				"id":   "5",
				"kind": "Refund",
			},
			verify: func(t *testing.T, tx transaction.Transaction) {
				assert.Equal(t, transaction.Kind("Refund"), tx.Kind)
			},
		},
		{
			name:   "Empty row",
			fields: map[string]any{},
			verify: func(t *testing.T, tx transaction.Transaction) {
				assert.Empty(t, tx.ID)
				assert.True(t, tx.Amount.IsZero())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.verify(t, transaction.FromRemoteRow(tt.fields))
		})
	}
}

func TestToRemoteRow(t *testing.T) {
	tx := transaction.Transaction{
		ID:        "1",
		Date:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Label:     "Rent",
		Amount:    decimal.NewFromInt(100),
		Kind:      transaction.KindExpense,
		Category:  "Housing",
		UpdatedAt: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
	}

	row := transaction.ToRemoteRow(tx, "owner-1")
	assert.Equal(t, "owner-1", row.OwnerID)
	assert.Equal(t, "2024-01-01", row.Date)
	assert.Equal(t, "expense", row.Kind)
	assert.Equal(t, "2024-01-01T09:00:00.000Z", row.UpdatedAt)

	tx.UpdatedAt = time.Time{}
	row = transaction.ToRemoteRow(tx, "owner-1")
	assert.False(t, transaction.ParseTimestamp(row.UpdatedAt).IsZero())
}
