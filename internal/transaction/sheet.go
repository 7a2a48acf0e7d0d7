package transaction

import (
	"encoding/json"
	"strings"
)

// SheetHeader is the fixed first row of the spreadsheet tab.
var SheetHeader = []string{"ID", "Date", "Label", "Amount", "Kind", "Category", "Note", "Timestamp"}

// minSheetFields is the number of leading cells a data row needs; Note and
// Timestamp may be absent.
const minSheetFields = 6

// ToSheetRow returns the positional cells of a data row, in SheetHeader order.
// The amount is written as a bare JSON number.
func ToSheetRow(tx Transaction) []any {
	return []any{
		tx.ID,
		FormatDate(tx.Date),
		tx.Label,
		json.Number(tx.Amount.String()),
		string(tx.Kind),
		tx.Category,
		tx.Note,
		FormatTimestamp(tx.UpdatedAt),
	}
}

// FromSheetRow parses a positional data row. It reports false, rather than
// an error, for short rows or rows whose required cells are missing or
// invalid: empty lines and hand edits are common in spreadsheets.
func FromSheetRow(cells []any) (Transaction, bool) {
	if len(cells) < minSheetFields {
		return Transaction{}, false
	}

	cell := func(i int) string {
		if i >= len(cells) {
			return ""
		}

		return strings.TrimSpace(textOf(cells[i]))
	}

	id := cell(0)
	if id == "" {
		return Transaction{}, false
	}

	date, err := ParseDate(cell(1))
	if err != nil {
		return Transaction{}, false
	}

	label := cell(2)
	if label == "" {
		return Transaction{}, false
	}

	amount, ok := decimalOf(cells[3])
	if !ok {
		return Transaction{}, false
	}

	kind, ok := ParseKind(cell(4))
	if !ok {
		return Transaction{}, false
	}

	category := cell(5)
	if category == "" {
		return Transaction{}, false
	}

	return Transaction{
		ID:        id,
		Date:      date,
		Label:     label,
		Amount:    amount,
		Kind:      kind,
		Category:  category,
		Note:      cell(6),
		UpdatedAt: ParseTimestamp(cell(7)),
	}, true
}
