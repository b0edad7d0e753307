// Package extracterror defines the error types raised by the extraction
// engine and the fund reconciliation algebra. Every failure a caller may want
// to branch on has its own type, checkable with errors.As, or a sentinel,
// checkable with errors.Is.
package extracterror

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for callers that only care about the failure class.
var (
	// ErrLookupNotFound indicates the remote lookup has no data for an
	// identifier. Transport failures, malformed responses, and identifier
	// mismatches in the response all collapse into this.
	ErrLookupNotFound = errors.New("lookup: not found")

	// ErrMergeConflict is the class sentinel matched by every
	// MergeConflictError regardless of the conflicting field.
	ErrMergeConflict = errors.New("merge: conflicting field values")
)

// ParseError represents a cell whose text does not match the expected
// numeric grammar after separator normalization.
type ParseError struct {
	Text string
	Kind string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse %q as %s: %v", e.Text, e.Kind, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// SelectionError represents a table specification whose required column
// names, or drop-set members, are absent from a source table's header.
type SelectionError struct {
	Missing []string
	Header  []string
}

func (e *SelectionError) Error() string {
	return fmt.Sprintf("columns %s not found in header %s",
		strings.Join(e.Missing, ", "), strings.Join(e.Header, ", "))
}

// ParserAssignmentError represents a strict parser assignment that names
// fields not currently selected on the table.
type ParserAssignmentError struct {
	Fields []string
}

func (e *ParserAssignmentError) Error() string {
	return fmt.Sprintf("parsers assigned to unselected fields: %s",
		strings.Join(e.Fields, ", "))
}

// IdentityError represents an input string containing no valid
// identity-code substring.
type IdentityError struct {
	Input string
}

func (e *IdentityError) Error() string {
	return fmt.Sprintf("no valid ISIN in %q", e.Input)
}

// ShapeError represents a record field whose value has the wrong type for
// the entity attribute it maps to.
type ShapeError struct {
	Field string
	Got   string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("field %s: unexpected value of kind %s", e.Field, e.Got)
}

// MergeConflictError represents two records that agree on identity but
// disagree on a reconciled field.
type MergeConflictError struct {
	ISIN  string
	Field string
	A, B  string
}

func (e *MergeConflictError) Error() string {
	return fmt.Sprintf("cannot merge %s: %s differs (%s vs %s)",
		e.ISIN, e.Field, e.A, e.B)
}

// Is reports a match for the class sentinel so callers can test
// errors.Is(err, ErrMergeConflict) without caring which field conflicted.
func (e *MergeConflictError) Is(target error) bool {
	return target == ErrMergeConflict
}

// IdentityMismatchError represents a merge attempted across two different
// identities.
type IdentityMismatchError struct {
	A, B string
}

func (e *IdentityMismatchError) Error() string {
	return fmt.Sprintf("cannot merge funds with different ISINs: %s vs %s", e.A, e.B)
}
