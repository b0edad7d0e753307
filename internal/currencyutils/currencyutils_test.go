package currencyutils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeCode(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Already normalized", "CHF", "CHF"},
		{"Lowercase", "chf", "CHF"},
		{"Mixed case with spaces", " Eur ", "EUR"},
		{"Empty string", "", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, NormalizeCode(tc.input))
		})
	}
}

func TestCleanName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Plain name", "Svizzera", "Svizzera"},
		{"Surrounding whitespace", "  Stati Uniti  ", "Stati Uniti"},
		{"Internal runs of whitespace", "Regno   Unito", "Regno Unito"},
		{"Empty string", "", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, CleanName(tc.input))
		})
	}
}

func TestApproxEqual(t *testing.T) {
	tests := []struct {
		name     string
		a, b     string
		expected bool
	}{
		{"Exactly equal", "1234.56", "1234.56", true},
		{"Both zero", "0", "0", true},
		{"Within relative tolerance", "1000000000", "1000000000.000000001", true},
		{"Outside relative tolerance", "100", "100.001", false},
		{"Plainly different", "100", "200", false},
		{"Zero against nonzero", "0", "0.5", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := decimal.RequireFromString(tc.a)
			b := decimal.RequireFromString(tc.b)
			assert.Equal(t, tc.expected, ApproxEqual(a, b, 1e-9))
			assert.Equal(t, tc.expected, ApproxEqual(b, a, 1e-9))
		})
	}
}

func TestSum(t *testing.T) {
	amounts := []decimal.Decimal{
		decimal.RequireFromString("1.5"),
		decimal.RequireFromString("2.5"),
		decimal.RequireFromString("-1"),
	}
	assert.True(t, Sum(amounts).Equal(decimal.NewFromInt(3)))
	assert.True(t, Sum(nil).Equal(decimal.Zero))
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		name     string
		amount   decimal.Decimal
		currency string
		expected string
	}{
		{"CHF", decimal.NewFromFloat(1234.56), "CHF", "CHF 1234.56"},
		{"EUR symbol", decimal.NewFromFloat(99.9), "eur", "€99.90"},
		{"USD symbol", decimal.NewFromFloat(42), "USD", "$42.00"},
		{"Unknown code", decimal.NewFromFloat(10), "SEK", "SEK 10.00"},
		{"No currency", decimal.NewFromFloat(10), "", "10.00"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, FormatAmount(tc.amount, tc.currency))
		})
	}
}

func TestSignHelpers(t *testing.T) {
	assert.True(t, IsNegative(decimal.NewFromInt(-5)))
	assert.False(t, IsNegative(decimal.NewFromInt(5)))
	assert.True(t, IsZero(decimal.Zero))
	assert.False(t, IsZero(decimal.NewFromFloat(0.01)))
}
