package transaction

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateParams holds the user-entered fields of a new transaction.
type CreateParams struct {
	Date     time.Time
	Label    string
	Amount   decimal.Decimal
	Kind     Kind
	Category string
	Note     string
}

// Validate checks the fields the entry form requires.
func (p CreateParams) Validate() error {
	if p.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalid)
	}

	if strings.TrimSpace(p.Label) == "" {
		return fmt.Errorf("%w: label is required", ErrInvalid)
	}

	if !p.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be greater than zero", ErrInvalid)
	}

	if _, ok := ParseKind(string(p.Kind)); !ok {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalid, p.Kind)
	}

	if strings.TrimSpace(p.Category) == "" {
		return fmt.Errorf("%w: category is required", ErrInvalid)
	}

	return nil
}

// New builds a transaction with a fresh client-side id, stamped with now.
func New(p CreateParams, now time.Time) Transaction {
	kind, _ := ParseKind(string(p.Kind))

	return Transaction{
		ID:        uuid.NewString(),
		Date:      dateOnly(p.Date),
		Label:     strings.TrimSpace(p.Label),
		Amount:    p.Amount,
		Kind:      kind,
		Category:  p.Category,
		Note:      strings.TrimSpace(p.Note),
		UpdatedAt: now.UTC(),
	}
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
