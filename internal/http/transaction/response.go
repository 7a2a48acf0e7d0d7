package transaction

import (
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/flux/internal/orchestrator"
	"github.com/MrJamesThe3rd/flux/internal/transaction"
)

type transactionResponse struct {
	ID        string           `json:"id"`
	Date      string           `json:"date"`
	Label     string           `json:"label"`
	Amount    decimal.Decimal  `json:"amount"`
	Kind      transaction.Kind `json:"kind"`
	Category  string           `json:"category"`
	Note      string           `json:"note"`
	UpdatedAt string           `json:"updated_at,omitempty"`
}

type outcomeResponse struct {
	Adapter   string `json:"adapter"`
	Attempted bool   `json:"attempted"`
	OK        bool   `json:"ok"`
	Error     string `json:"error,omitempty"`
}

type createResponse struct {
	Transaction transactionResponse `json:"transaction"`
	Persisted   bool                `json:"persisted"`
	Message     string              `json:"message"`
	Outcomes    []outcomeResponse   `json:"outcomes"`
}

type summaryResponse struct {
	Year              int                        `json:"year"`
	Month             int                        `json:"month"`
	Count             int                        `json:"count"`
	Income            decimal.Decimal            `json:"income"`
	Expense           decimal.Decimal            `json:"expense"`
	Balance           decimal.Decimal            `json:"balance"`
	ExpenseByCategory map[string]decimal.Decimal `json:"expense_by_category"`
	IncomeByCategory  map[string]decimal.Decimal `json:"income_by_category"`
}

func toResponse(tx transaction.Transaction) transactionResponse {
	return transactionResponse{
		ID:        tx.ID,
		Date:      transaction.FormatDate(tx.Date),
		Label:     tx.Label,
		Amount:    tx.Amount,
		Kind:      tx.Kind,
		Category:  tx.Category,
		Note:      tx.Note,
		UpdatedAt: transaction.FormatTimestamp(tx.UpdatedAt),
	}
}

func toResponseList(txs []transaction.Transaction) []transactionResponse {
	resp := make([]transactionResponse, len(txs))
	for i, tx := range txs {
		resp[i] = toResponse(tx)
	}

	return resp
}

func toCreateResponse(report *orchestrator.CreateReport) createResponse {
	resp := createResponse{
		Transaction: toResponse(report.Transaction),
		Persisted:   report.Persisted,
		Message:     report.Message(),
		Outcomes:    make([]outcomeResponse, len(report.Outcomes)),
	}

	for i, o := range report.Outcomes {
		resp.Outcomes[i] = outcomeResponse{
			Adapter:   o.Adapter,
			Attempted: o.Attempted,
			OK:        o.OK(),
		}

		if o.Err != nil {
			resp.Outcomes[i].Error = o.Err.Error()
		}
	}

	return resp
}

func toSummaryResponse(s transaction.Summary) summaryResponse {
	return summaryResponse{
		Year:              s.Year,
		Month:             int(s.Month),
		Count:             s.Count,
		Income:            s.Income,
		Expense:           s.Expense,
		Balance:           s.Balance,
		ExpenseByCategory: s.ExpenseByCategory,
		IncomeByCategory:  s.IncomeByCategory,
	}
}
