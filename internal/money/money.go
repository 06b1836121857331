// Package money formats integer cent amounts. Amounts are never stored as floats.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Decimal renders cents as a fixed two-place decimal string, e.g. 123450 -> "1234.50".
func Decimal(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

// Format renders cents with thousands separators and a currency symbol, e.g. "$1,234.50".
func Format(cents int64) string {
	s := Decimal(cents)

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}

	whole, frac, _ := strings.Cut(s, ".")

	var sb strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			sb.WriteByte(',')
		}

		sb.WriteRune(r)
	}

	return fmt.Sprintf("%s$%s.%s", sign, sb.String(), frac)
}

// Parse reads a decimal amount ("1234.5", "12") into cents, rejecting sub-cent precision.
func Parse(s string) (int64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("parsing amount %q: %w", s, err)
	}

	cents := d.Shift(2)
	if !cents.Equal(cents.Truncate(0)) {
		return 0, fmt.Errorf("amount %q has more than two decimal places", s)
	}

	return cents.IntPart(), nil
}
