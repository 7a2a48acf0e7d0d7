package transaction

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Kind carries the direction of a transaction. Amounts are always stored as
// non-negative magnitudes.
type Kind string

const (
	KindExpense Kind = "expense"
	KindIncome  Kind = "income"
)

// ParseKind accepts a kind in any letter case.
func ParseKind(s string) (Kind, bool) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindExpense:
		return KindExpense, true
	case KindIncome:
		return KindIncome, true
	}

	return "", false
}

// Transaction is the single record type shared by the local store and every
// remote backend.
type Transaction struct {
	ID       string
	Date     time.Time // calendar date, midnight UTC
	Label    string
	Amount   decimal.Decimal
	Kind     Kind
	Category string
	Note     string
	// UpdatedAt is the only conflict tie-breaker. Zero when absent or unparsable.
	UpdatedAt time.Time
}

// Precedence returns the millisecond timestamp used to order two copies of
// the same record. Records without a usable UpdatedAt rank as epoch zero.
func (t Transaction) Precedence() int64 {
	if t.UpdatedAt.IsZero() {
		return 0
	}

	return t.UpdatedAt.UnixMilli()
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(time.DateOnly, strings.TrimSpace(s))
}

// FormatDate renders a calendar date as YYYY-MM-DD, or "" for the zero date.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	return t.Format(time.DateOnly)
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	time.DateOnly,
}

// ParseTimestamp parses an ISO 8601 timestamp. It never fails: anything it
// cannot read yields the zero time.
func ParseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}

	return time.Time{}
}

// FormatTimestamp renders t as RFC 3339 with millisecond precision, or "" for
// the zero time.
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}
