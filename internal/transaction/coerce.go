package transaction

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// The helpers below turn loosely typed values coming from a remote backend
// into canonical field values. None of them fail.

func textOf(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano)
	case fmt.Stringer:
		return x.String()
	}

	return fmt.Sprint(v)
}

// decimalOf reports ok=false when v cannot be read as a finite number.
func decimalOf(v any) (decimal.Decimal, bool) {
	switch x := v.(type) {
	case nil:
		return decimal.Zero, false
	case decimal.Decimal:
		return x, true
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return decimal.Zero, false
		}

		return decimal.NewFromFloat(x), true
	case float32:
		return decimalOf(float64(x))
	case int:
		return decimal.NewFromInt(int64(x)), true
	case int32:
		return decimal.NewFromInt32(x), true
	case int64:
		return decimal.NewFromInt(x), true
	}

	s := strings.TrimSpace(textOf(v))
	if s == "" {
		return decimal.Zero, false
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}

	return d, true
}

func dateOf(v any) time.Time {
	if t, ok := v.(time.Time); ok {
		return dateOnly(t)
	}

	s := textOf(v)
	if len(s) > len(time.DateOnly) {
		s = s[:len(time.DateOnly)]
	}

	d, err := ParseDate(s)
	if err != nil {
		return time.Time{}
	}

	return d
}

func timestampOf(v any) time.Time {
	if t, ok := v.(time.Time); ok {
		return t.UTC()
	}

	return ParseTimestamp(textOf(v))
}
