// Package cellparser converts raw table cell text into typed values.
//
// A Parser is an immutable parsing strategy configured with optional locale
// separators. The closed set of strategies (text, integer, decimal) mirrors
// the closed set of value kinds, so downstream consumers can switch on
// Value.Kind instead of reflecting on dynamic types.
package cellparser

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"fjacquet/funds-xlsx/internal/extracterror"
)

// Kind identifies the type a Value holds.
type Kind int

const (
	KindText Kind = iota
	KindInteger
	KindDecimal
)

// String returns the kind name used in error messages.
func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindDecimal:
		return "decimal"
	default:
		return "text"
	}
}

// Value is a typed cell value produced by a Parser.
type Value struct {
	kind Kind
	text string
	num  int64
	dec  decimal.Decimal
}

// NewText wraps a string in a text Value.
func NewText(text string) Value {
	return Value{kind: KindText, text: text}
}

// NewInt wraps an integer in an integer Value.
func NewInt(n int64) Value {
	return Value{kind: KindInteger, num: n}
}

// NewDecimal wraps a decimal in a decimal Value.
func NewDecimal(d decimal.Decimal) Value {
	return Value{kind: KindDecimal, dec: d}
}

// Kind returns the kind of the value.
func (v Value) Kind() Kind { return v.kind }

// Text returns the text of a text value. Zero for other kinds.
func (v Value) Text() string { return v.text }

// Int returns the number of an integer value. Zero for other kinds.
func (v Value) Int() int64 { return v.num }

// Decimal returns the number of a decimal value. Zero for other kinds.
func (v Value) Decimal() decimal.Decimal { return v.dec }

// Any returns the value as the native type a spreadsheet cell expects:
// string for text, int64 for integers, float64 for decimals.
func (v Value) Any() interface{} {
	switch v.kind {
	case KindInteger:
		return v.num
	case KindDecimal:
		return v.dec.InexactFloat64()
	default:
		return v.text
	}
}

// String renders the value for display and logging.
func (v Value) String() string {
	switch v.kind {
	case KindInteger:
		return strconv.FormatInt(v.num, 10)
	case KindDecimal:
		return v.dec.String()
	default:
		return v.text
	}
}

// Equal compares two values by kind and content. Decimals compare
// numerically, so 21000 and 2.1e4 are equal.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindInteger:
		return v.num == other.num
	case KindDecimal:
		return v.dec.Equal(other.dec)
	default:
		return v.text == other.text
	}
}

// Parser is an immutable strategy for parsing cell text into a Value.
//
// The separator strings are sets of candidate runes: any rune they contain
// counts as that separator. An empty string disables the normalization.
type Parser struct {
	kind        Kind
	thousandSep string
	decimalSep  string
}

// Text returns the identity parser. It never fails.
func Text() Parser {
	return Parser{kind: KindText}
}

// Integer returns a parser for base-10 integers formatted with the given
// thousand separator.
func Integer(thousandSep string) Parser {
	return Parser{kind: KindInteger, thousandSep: thousandSep}
}

// Decimal returns a parser for decimal numbers formatted with the given
// thousand and decimal separators.
func Decimal(thousandSep, decimalSep string) Parser {
	return Parser{kind: KindDecimal, thousandSep: thousandSep, decimalSep: decimalSep}
}

// Kind returns the kind of value the parser produces.
func (p Parser) Kind() Kind { return p.kind }

// Parse converts cell text into a typed Value. Text parsing never fails;
// numeric parsing fails with a ParseError when the text, after separator
// normalization, is not a valid literal.
func (p Parser) Parse(text string) (Value, error) {
	switch p.kind {
	case KindInteger:
		cleaned := strings.TrimSpace(stripThousands(text, p.thousandSep))
		n, err := strconv.ParseInt(cleaned, 10, 64)
		if err != nil {
			return Value{}, &extracterror.ParseError{Text: text, Kind: p.kind.String(), Err: err}
		}
		return NewInt(n), nil
	case KindDecimal:
		cleaned := stripThousands(text, p.thousandSep)
		cleaned = strings.TrimSpace(rewriteDecimalPoint(cleaned, p.decimalSep))
		d, err := decimal.NewFromString(cleaned)
		if err != nil {
			return Value{}, &extracterror.ParseError{Text: text, Kind: p.kind.String(), Err: err}
		}
		return NewDecimal(d), nil
	default:
		return NewText(text), nil
	}
}

// stripThousands removes every separator rune that sits between a digit and
// a group of exactly three digits. A separator followed by fewer or more
// digits is not a grouping mark and stays, so the number fails to parse
// instead of silently losing a character.
func stripThousands(text, seps string) string {
	if seps == "" || !strings.ContainsAny(text, seps) {
		return text
	}
	runes := []rune(text)
	var b strings.Builder
	b.Grow(len(text))
	for i, r := range runes {
		if strings.ContainsRune(seps, r) && i > 0 && isDigit(runes[i-1]) && groupOfThree(runes[i+1:]) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func groupOfThree(rest []rune) bool {
	if len(rest) < 3 {
		return false
	}
	for _, r := range rest[:3] {
		if !isDigit(r) {
			return false
		}
	}
	return len(rest) == 3 || !isDigit(rest[3])
}

// rewriteDecimalPoint canonicalizes the decimal mark: the last separator
// rune is rewritten to "." when only digits follow it. Earlier occurrences
// are left alone; they are grouping marks even when the same rune serves
// both roles.
func rewriteDecimalPoint(text, seps string) string {
	if seps == "" {
		return text
	}
	runes := []rune(text)
	for i := len(runes) - 1; i >= 0; i-- {
		if !strings.ContainsRune(seps, runes[i]) {
			continue
		}
		for j := i + 1; j < len(runes); j++ {
			if !isDigit(runes[j]) {
				return text
			}
		}
		return string(runes[:i]) + "." + string(runes[i+1:])
	}
	return text
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
