// Package dateutils provides common date and tax-period operations used throughout the application.
package dateutils

import "time"

// DefaultTaxYear returns the latest completed calendar year. Tax data for
// the running year is not published yet, so lookups default to this.
func DefaultTaxYear() int {
	return time.Now().Year() - 1
}

// TaxYear returns the given year when it is positive, otherwise the
// default tax year.
func TaxYear(year int) int {
	if year > 0 {
		return year
	}
	return DefaultTaxYear()
}
