package transaction_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/flux/internal/transaction"
)

func TestCreateParams_Validate(t *testing.T) {
	valid := transaction.CreateParams{
		Date:     time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Label:    "Bus pass",
		Amount:   decimal.NewFromInt(5000),
		Kind:     transaction.KindExpense,
		Category: "Transport",
	}

	type testCase struct {
		name    string
		mutate  func(p *transaction.CreateParams)
		wantErr bool
	}

	tests := []testCase{
		{name: "Valid", mutate: func(p *transaction.CreateParams) {}},
		{name: "NoDate", mutate: func(p *transaction.CreateParams) { p.Date = time.Time{} }, wantErr: true},
		{name: "BlankLabel", mutate: func(p *transaction.CreateParams) { p.Label = "  " }, wantErr: true},
		{name: "ZeroAmount", mutate: func(p *transaction.CreateParams) { p.Amount = decimal.Zero }, wantErr: true},
		{name: "NegativeAmount", mutate: func(p *transaction.CreateParams) { p.Amount = decimal.NewFromInt(-1) }, wantErr: true},
		{name: "BadKind", mutate: func(p *transaction.CreateParams) { p.Kind = "gift" }, wantErr: true},
		{name: "NoCategory", mutate: func(p *transaction.CreateParams) { p.Category = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)

			err := p.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, transaction.ErrInvalid)
				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestNew(t *testing.T) {
	now := time.Date(2024, 5, 1, 14, 3, 0, 0, time.FixedZone("WAT", 3600))

	tx := transaction.New(transaction.CreateParams{
		Date:     time.Date(2024, 5, 1, 23, 0, 0, 0, time.Local),
		Label:    "  Bus pass ",
		Amount:   decimal.NewFromInt(5000),
		Kind:     "Expense",
		Category: "Transport",
		Note:     " monthly ",
	}, now)

	assert.NotEmpty(t, tx.ID)
	assert.Equal(t, "Bus pass", tx.Label)
	assert.Equal(t, "monthly", tx.Note)
	assert.Equal(t, transaction.KindExpense, tx.Kind)
	assert.Equal(t, "2024-05-01", transaction.FormatDate(tx.Date))
	assert.Equal(t, now.UTC(), tx.UpdatedAt)

	other := transaction.New(transaction.CreateParams{}, now)
	assert.NotEqual(t, tx.ID, other.ID)
}

func TestSummarize(t *testing.T) {
	day := func(m time.Month, d int) time.Time { return time.Date(2024, m, d, 0, 0, 0, 0, time.UTC) }

	txs := []transaction.Transaction{
		{ID: "1", Date: day(3, 1), Kind: transaction.KindIncome, Category: "Salary", Amount: decimal.NewFromInt(300000)},
		{ID: "2", Date: day(3, 3), Kind: transaction.KindExpense, Category: "Housing", Amount: decimal.NewFromInt(90000)},
		{ID: "3", Date: day(3, 5), Kind: transaction.KindExpense, Category: "Food", Amount: decimal.NewFromInt(28000)},
		{ID: "4", Date: day(3, 9), Kind: transaction.KindExpense, Category: "Food", Amount: decimal.NewFromInt(2000)},
		{ID: "5", Date: day(4, 1), Kind: transaction.KindExpense, Category: "Food", Amount: decimal.NewFromInt(999)},
	}

	s := transaction.Summarize(txs, 2024, time.March)
	assert.Equal(t, 4, s.Count)
	assert.True(t, decimal.NewFromInt(300000).Equal(s.Income))
	assert.True(t, decimal.NewFromInt(120000).Equal(s.Expense))
	assert.True(t, decimal.NewFromInt(180000).Equal(s.Balance))
	assert.True(t, decimal.NewFromInt(30000).Equal(s.ExpenseByCategory["Food"]))
	assert.Len(t, s.IncomeByCategory, 1)
}

func TestCategories(t *testing.T) {
	assert.Contains(t, transaction.Categories(transaction.KindExpense), "Housing")
	assert.Contains(t, transaction.Categories(transaction.KindIncome), "Salary")
	assert.Empty(t, transaction.Categories("unknown"))
}
