// Package money converts between integer cents and decimal strings.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Format renders cents as a fixed two-decimal string, e.g. 1999 -> "19.99".
func Format(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

// ParseCents parses a decimal amount ("19.99") into cents. More than two
// fractional digits and negative amounts are rejected.
func ParseCents(value string) (int64, error) {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return 0, fmt.Errorf("amount is required")
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", value)
	}
	if amount.IsNegative() {
		return 0, fmt.Errorf("amount must not be negative")
	}
	cents := amount.Mul(hundred)
	if !cents.Equal(cents.Truncate(0)) {
		return 0, fmt.Errorf("amount %q has more than two decimal places", value)
	}
	return cents.IntPart(), nil
}
