package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// All monetary values in the system are fixed-point decimals at scale 2 with
// half-up rounding. Nothing in the posting or reporting path touches float64.

// Round2 rounds to two decimal places, half up, and canonicalises signed zero.
func Round2(d decimal.Decimal) decimal.Decimal {
	r := d.Round(2)
	if r.IsZero() {
		return decimal.Zero
	}
	return r
}

// ParseAmount parses a statement amount such as "1,234.56" or "1 234.56".
// Spaces and commas act as thousands separators; the decimal separator is
// always a period.
func ParseAmount(s string) (decimal.Decimal, error) {
	cleaned := strings.NewReplacer(",", "", " ", "", " ", "").Replace(strings.TrimSpace(s))
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, err
	}
	return Round2(d), nil
}

// FormatAmount renders a decimal with exactly two decimal places and a period
// separator, regardless of locale.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// IsPositive reports d > 0 at scale 2.
func IsPositive(d decimal.Decimal) bool {
	return Round2(d).IsPositive()
}
