package transaction

import (
	"time"

	"github.com/shopspring/decimal"
)

// Summary aggregates one calendar month of transactions.
type Summary struct {
	Year    int
	Month   time.Month
	Count   int
	Income  decimal.Decimal
	Expense decimal.Decimal
	// Balance is Income minus Expense.
	Balance           decimal.Decimal
	ExpenseByCategory map[string]decimal.Decimal
	IncomeByCategory  map[string]decimal.Decimal
}

// Summarize totals the transactions dated within the given month. Records of
// an unknown kind are counted but contribute to neither side.
func Summarize(txs []Transaction, year int, month time.Month) Summary {
	s := Summary{
		Year:              year,
		Month:             month,
		Income:            decimal.Zero,
		Expense:           decimal.Zero,
		ExpenseByCategory: make(map[string]decimal.Decimal),
		IncomeByCategory:  make(map[string]decimal.Decimal),
	}

	for _, tx := range txs {
		if tx.Date.Year() != year || tx.Date.Month() != month {
			continue
		}

		s.Count++

		switch tx.Kind {
		case KindIncome:
			s.Income = s.Income.Add(tx.Amount)
			s.IncomeByCategory[tx.Category] = s.IncomeByCategory[tx.Category].Add(tx.Amount)
		case KindExpense:
			s.Expense = s.Expense.Add(tx.Amount)
			s.ExpenseByCategory[tx.Category] = s.ExpenseByCategory[tx.Category].Add(tx.Amount)
		}
	}

	s.Balance = s.Income.Sub(s.Expense)

	return s
}
