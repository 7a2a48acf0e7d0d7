package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/flux/internal/transaction"
)

type staticSource []transaction.Transaction

func (s staticSource) List() []transaction.Transaction { return s }

func TestWriteCSV(t *testing.T) {
	txs := []transaction.Transaction{
		{
			ID:       "1",
			Date:     time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC),
			Label:    `Dinner at "Chez Paul"`,
			Amount:   decimal.RequireFromString("45.50"),
			Kind:     transaction.KindExpense,
			Category: "Food",
			Note:     "with Ana, Bo",
		},
		{
			ID:       "2",
			Date:     time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			Label:    "Salary",
			Amount:   decimal.RequireFromString("2500"),
			Kind:     transaction.KindIncome,
			Category: "Salary",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, txs))

	want := "\ufeff" +
		`"Date","Label","Category","Kind","Amount","Note"` + "\n" +
		`"2024-02-03","Dinner at ""Chez Paul""","Food","expense","45.5","with Ana, Bo"` + "\n" +
		`"2024-02-01","Salary","Salary","income","2500",""`

	assert.Equal(t, want, buf.String())
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))

	assert.Equal(t, []byte{0xEF, 0xBB, 0xBF}, buf.Bytes()[:3])
	assert.Equal(t, `"Date","Label","Category","Kind","Amount","Note"`, buf.String()[3:])
}

func TestService_Export(t *testing.T) {
	svc := NewService(
		staticSource{{ID: "1", Label: "Bus", Amount: decimal.NewFromInt(2), Kind: transaction.KindExpense}},
		func() time.Time { return time.Date(2024, 5, 6, 23, 0, 0, 0, time.UTC) },
	)

	var first, second bytes.Buffer
	require.NoError(t, svc.Export(&first))
	require.NoError(t, svc.Export(&second))

	assert.Equal(t, first.String(), second.String(), "export is deterministic")
	assert.Contains(t, first.String(), `"","Bus","","expense","2",""`)
	assert.Equal(t, "flux-export-2024-05-06.csv", svc.Filename())
}
