// Package funds models financial instrument holdings identified by ISIN and
// the algebra for reconciling them across account statements.
//
// A Fund's identity is its ISIN alone. Two funds with the same ISIN can be
// merged: quantities add up, names accumulate, and the remaining attributes
// must agree wherever both sides carry one.
package funds

import (
	"fmt"
	"iter"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"fjacquet/funds-xlsx/internal/cellparser"
	"fjacquet/funds-xlsx/internal/currencyutils"
	"fjacquet/funds-xlsx/internal/extracterror"
	"fjacquet/funds-xlsx/internal/logging"
	"fjacquet/funds-xlsx/internal/tables"
)

const isinLength = 12

// valueTolerance is the relative tolerance for comparing monetary values
// during a merge. Statements round differently; bit-exact equality is too
// strict across sources.
const valueTolerance = 1e-9

var isinPattern = regexp.MustCompile(`^[A-Z]{2}[A-Z0-9]{10}$`)

var log logging.Logger = logging.GetLogger()

// SetLogger sets a custom logger for this package.
func SetLogger(logger logging.Logger) {
	if logger != nil {
		log = logger
	}
}

// Fund is one holding of a financial instrument. ISIN is the identity; a
// zero ValueNumber and empty strings mean the attribute is absent, and
// Value carries its own presence flag.
type Fund struct {
	ISIN        string
	ValueNumber int64
	Quantity    int64
	Value       decimal.NullDecimal
	Country     string
	Currency    string
	names       []string
}

// Option configures optional Fund attributes at construction.
type Option func(*Fund)

// WithValueNumber sets the Swiss valor number.
func WithValueNumber(vn int64) Option {
	return func(f *Fund) { f.ValueNumber = vn }
}

// WithQuantity sets the held quantity.
func WithQuantity(q int64) Option {
	return func(f *Fund) { f.Quantity = q }
}

// WithName appends a name. Empty names are ignored.
func WithName(name string) Option {
	return func(f *Fund) {
		if name != "" {
			f.names = append(f.names, name)
		}
	}
}

// WithNames appends several names in order.
func WithNames(names ...string) Option {
	return func(f *Fund) {
		for _, name := range names {
			if name != "" {
				f.names = append(f.names, name)
			}
		}
	}
}

// WithValue sets the monetary value.
func WithValue(v decimal.Decimal) Option {
	return func(f *Fund) { f.Value = decimal.NewNullDecimal(v) }
}

// WithCountry sets the country name, cleaned of stray whitespace.
func WithCountry(country string) Option {
	return func(f *Fund) { f.Country = currencyutils.CleanName(country) }
}

// WithCurrency sets the currency code, normalized to upper case.
func WithCurrency(currency string) Option {
	return func(f *Fund) { f.Currency = currencyutils.NormalizeCode(currency) }
}

// ExtractISIN finds the ISIN inside an input string: two letters followed
// by ten letters or digits. The last such substring wins. The extra flag
// reports that the input carried characters around the code.
func ExtractISIN(input string) (isin string, extra bool, err error) {
	for start := len(input) - isinLength; start >= 0; start-- {
		candidate := input[start : start+isinLength]
		if isinPattern.MatchString(candidate) {
			return candidate, len(input) > isinLength, nil
		}
	}
	return "", false, &extracterror.IdentityError{Input: input}
}

// New builds a Fund from a string containing an ISIN. Surrounding
// characters are tolerated with a warning; an input with no ISIN at all
// fails with an IdentityError.
func New(isin string, opts ...Option) (Fund, error) {
	code, extra, err := ExtractISIN(isin)
	if err != nil {
		return Fund{}, err
	}
	if extra {
		log.Warn("ISIN contains extra characters",
			logging.Field{Key: "input", Value: isin},
			logging.Field{Key: logging.FieldISIN, Value: code})
	}
	f := Fund{ISIN: code}
	for _, opt := range opts {
		opt(&f)
	}
	return f, nil
}

// Name joins the fund's accumulated names in insertion order.
func (f Fund) Name() string {
	return strings.Join(f.names, " | ")
}

// Names returns the accumulated names.
func (f Fund) Names() []string {
	return append([]string{}, f.names...)
}

// Equal reports whether two funds are the same instrument. Identity is
// the ISIN alone; attributes do not participate.
func (f Fund) Equal(other Fund) bool {
	return f.ISIN == other.ISIN
}

func (f Fund) String() string {
	if len(f.names) == 0 {
		return f.ISIN
	}
	return fmt.Sprintf("%s (%s)", f.ISIN, f.Name())
}

// Merge reconciles two holdings of the same instrument. Quantities add,
// names concatenate, and every other attribute takes the set side. An
// attribute set on both sides with different values is a conflict.
func (f Fund) Merge(other Fund) (Fund, error) {
	if f.ISIN != other.ISIN {
		return Fund{}, &extracterror.IdentityMismatchError{A: f.ISIN, B: other.ISIN}
	}
	if f.ValueNumber != 0 && other.ValueNumber != 0 && f.ValueNumber != other.ValueNumber {
		return Fund{}, &extracterror.MergeConflictError{
			ISIN:  f.ISIN,
			Field: "value_number",
			A:     strconv.FormatInt(f.ValueNumber, 10),
			B:     strconv.FormatInt(other.ValueNumber, 10),
		}
	}
	if f.Value.Valid && other.Value.Valid &&
		!currencyutils.ApproxEqual(f.Value.Decimal, other.Value.Decimal, valueTolerance) {
		return Fund{}, &extracterror.MergeConflictError{
			ISIN:  f.ISIN,
			Field: "value",
			A:     f.Value.Decimal.String(),
			B:     other.Value.Decimal.String(),
		}
	}
	if f.Country != "" && other.Country != "" && f.Country != other.Country {
		return Fund{}, &extracterror.MergeConflictError{
			ISIN: f.ISIN, Field: "country", A: f.Country, B: other.Country,
		}
	}
	if f.Currency != "" && other.Currency != "" && f.Currency != other.Currency {
		return Fund{}, &extracterror.MergeConflictError{
			ISIN: f.ISIN, Field: "currency", A: f.Currency, B: other.Currency,
		}
	}

	merged := Fund{
		ISIN:        f.ISIN,
		ValueNumber: f.ValueNumber,
		Quantity:    f.Quantity + other.Quantity,
		Value:       f.Value,
		Country:     f.Country,
		Currency:    f.Currency,
		names:       append(append([]string{}, f.names...), other.names...),
	}
	if merged.ValueNumber == 0 {
		merged.ValueNumber = other.ValueNumber
	}
	if !merged.Value.Valid {
		merged.Value = other.Value
	}
	if merged.Country == "" {
		merged.Country = other.Country
	}
	if merged.Currency == "" {
		merged.Currency = other.Currency
	}
	return merged, nil
}

// Merge reconciles two funds. See Fund.Merge.
func Merge(a, b Fund) (Fund, error) {
	return a.Merge(b)
}

// DefaultParsers returns the cell parsers for the canonical fund fields,
// configured with the statement's separators.
func DefaultParsers(thousandSep, decimalSep string) map[string]cellparser.Parser {
	return map[string]cellparser.Parser{
		"isin":         cellparser.Text(),
		"value_number": cellparser.Integer(thousandSep),
		"quantity":     cellparser.Integer(thousandSep),
		"name":         cellparser.Text(),
		"value":        cellparser.Decimal(thousandSep, decimalSep),
		"country":      cellparser.Text(),
		"currency":     cellparser.Text(),
	}
}

// FromRecord builds a Fund from a typed record keyed by the canonical
// fields isin, value_number, quantity, name, value, country and currency.
// A field of the wrong kind fails with a ShapeError; the value field also
// accepts integers. Unknown fields and a missing isin fail the record.
func FromRecord(rec tables.Record) (Fund, error) {
	var opts []Option
	var isin string
	var hasISIN bool
	for field, value := range rec {
		switch field {
		case "isin":
			text, err := textField(field, value)
			if err != nil {
				return Fund{}, err
			}
			isin, hasISIN = text, true
		case "value_number":
			n, err := integerField(field, value)
			if err != nil {
				return Fund{}, err
			}
			opts = append(opts, WithValueNumber(n))
		case "quantity":
			n, err := integerField(field, value)
			if err != nil {
				return Fund{}, err
			}
			opts = append(opts, WithQuantity(n))
		case "name":
			text, err := textField(field, value)
			if err != nil {
				return Fund{}, err
			}
			opts = append(opts, WithName(text))
		case "value":
			d, err := decimalField(field, value)
			if err != nil {
				return Fund{}, err
			}
			opts = append(opts, WithValue(d))
		case "country":
			text, err := textField(field, value)
			if err != nil {
				return Fund{}, err
			}
			opts = append(opts, WithCountry(text))
		case "currency":
			text, err := textField(field, value)
			if err != nil {
				return Fund{}, err
			}
			opts = append(opts, WithCurrency(text))
		default:
			return Fund{}, fmt.Errorf("unknown fund field %q", field)
		}
	}
	if !hasISIN {
		return Fund{}, &extracterror.IdentityError{Input: ""}
	}
	return New(isin, opts...)
}

// FromTable builds one Fund per record of a typed table. Records that do
// not form a valid fund are logged and skipped.
func FromTable(table *tables.Table, logger logging.Logger) []Fund {
	if logger == nil {
		logger = log
	}
	var result []Fund
	for rec := range table.Records() {
		fund, err := FromRecord(rec)
		if err != nil {
			logger.WithError(err).Warn("Skipping invalid fund data",
				logging.Field{Key: "record", Value: rec})
			continue
		}
		result = append(result, fund)
	}
	return result
}

func textField(field string, v cellparser.Value) (string, error) {
	if v.Kind() != cellparser.KindText {
		return "", &extracterror.ShapeError{Field: field, Got: v.Kind().String()}
	}
	return v.Text(), nil
}

func integerField(field string, v cellparser.Value) (int64, error) {
	if v.Kind() != cellparser.KindInteger {
		return 0, &extracterror.ShapeError{Field: field, Got: v.Kind().String()}
	}
	return v.Int(), nil
}

func decimalField(field string, v cellparser.Value) (decimal.Decimal, error) {
	switch v.Kind() {
	case cellparser.KindDecimal:
		return v.Decimal(), nil
	case cellparser.KindInteger:
		return decimal.NewFromInt(v.Int()), nil
	default:
		return decimal.Decimal{}, &extracterror.ShapeError{Field: field, Got: v.Kind().String()}
	}
}

// Header returns the column names of the fund export, aligned with Row.
func Header() []string {
	return []string{"ISIN", "Value Number", "Quantity", "Name", "Value", "Country", "Currency"}
}

// Row returns the fund's attributes aligned with Header. Absent
// attributes become nil so they render as blank cells.
func (f Fund) Row() []interface{} {
	row := []interface{}{f.ISIN, nil, f.Quantity, f.Name(), nil, nil, nil}
	if f.ValueNumber != 0 {
		row[1] = f.ValueNumber
	}
	if f.Value.Valid {
		row[4] = f.Value.Decimal.InexactFloat64()
	}
	if f.Country != "" {
		row[5] = f.Country
	}
	if f.Currency != "" {
		row[6] = f.Currency
	}
	return row
}

// Funds is a list of holdings that exports as one table.
type Funds []Fund

// Header returns the export column names.
func (fs Funds) Header() []string {
	return Header()
}

// Rows yields one export row per fund.
func (fs Funds) Rows() iter.Seq[[]interface{}] {
	return func(yield func([]interface{}) bool) {
		for _, f := range fs {
			if !yield(f.Row()) {
				return
			}
		}
	}
}

// TotalValue sums the monetary values of the funds that carry one.
func (fs Funds) TotalValue() decimal.Decimal {
	var values []decimal.Decimal
	for _, f := range fs {
		if f.Value.Valid {
			values = append(values, f.Value.Decimal)
		}
	}
	return currencyutils.Sum(values)
}
