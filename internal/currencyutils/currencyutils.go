// Package currencyutils provides common currency and decimal operations used throughout the application.
package currencyutils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// NormalizeCode standardizes a currency code: surrounding whitespace is
// removed and the code is uppercased. "chf " becomes "CHF".
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// CleanName standardizes a free-text name such as a country name: surrounding
// whitespace is removed and internal runs of whitespace collapse to one space.
func CleanName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// ApproxEqual reports whether two amounts are equal within a relative
// tolerance: |a-b| <= tol * max(|a|, |b|). Two zero amounts are equal.
func ApproxEqual(a, b decimal.Decimal, relTol float64) bool {
	diff := a.Sub(b).Abs()
	if diff.IsZero() {
		return true
	}
	limit := decimal.Max(a.Abs(), b.Abs()).Mul(decimal.NewFromFloat(relTol))
	return diff.LessThanOrEqual(limit)
}

// Sum adds up a slice of amounts.
func Sum(amounts []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, amount := range amounts {
		total = total.Add(amount)
	}
	return total
}

// FormatAmount formats a decimal amount to a consistent display format with the specified currency.
// The amount is formatted with two decimal places without inserting thousands separators.
// Returns strings like "CHF 1234.56" or "€1234.56"
func FormatAmount(amount decimal.Decimal, currency string) string {
	formattedAmount := amount.StringFixed(2)

	if currency != "" {
		switch NormalizeCode(currency) {
		case "EUR":
			return "€" + formattedAmount
		case "USD":
			return "$" + formattedAmount
		case "GBP":
			return "£" + formattedAmount
		case "JPY":
			return "¥" + formattedAmount
		case "CHF":
			return "CHF " + formattedAmount
		default:
			return currency + " " + formattedAmount
		}
	}

	return formattedAmount
}

// IsNegative checks if an amount is negative
func IsNegative(amount decimal.Decimal) bool {
	return amount.LessThan(decimal.Zero)
}

// IsZero checks if an amount is zero
func IsZero(amount decimal.Decimal) bool {
	return amount.Equal(decimal.Zero)
}
