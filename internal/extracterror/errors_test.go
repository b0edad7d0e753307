package extracterror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name: "parse error",
			err: &ParseError{
				Text: "12a45",
				Kind: "integer",
				Err:  errors.New("invalid syntax"),
			},
			expected: `cannot parse "12a45" as integer: invalid syntax`,
		},
		{
			name: "selection error",
			err: &SelectionError{
				Missing: []string{"ISIN", "Valore"},
				Header:  []string{"Titolo", "Quantita"},
			},
			expected: "columns ISIN, Valore not found in header Titolo, Quantita",
		},
		{
			name:     "parser assignment error",
			err:      &ParserAssignmentError{Fields: []string{"value", "bogus"}},
			expected: "parsers assigned to unselected fields: value, bogus",
		},
		{
			name:     "identity error",
			err:      &IdentityError{Input: "short123"},
			expected: `no valid ISIN in "short123"`,
		},
		{
			name:     "shape error",
			err:      &ShapeError{Field: "name", Got: "integer"},
			expected: "field name: unexpected value of kind integer",
		},
		{
			name: "merge conflict error",
			err: &MergeConflictError{
				ISIN:  "CH0012345678",
				Field: "currency",
				A:     "CHF",
				B:     "EUR",
			},
			expected: "cannot merge CH0012345678: currency differs (CHF vs EUR)",
		},
		{
			name:     "identity mismatch error",
			err:      &IdentityMismatchError{A: "CH0012345678", B: "LU0000000019"},
			expected: "cannot merge funds with different ISINs: CH0012345678 vs LU0000000019",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestParseError_Unwrap(t *testing.T) {
	originalErr := errors.New("value out of range")
	parseErr := &ParseError{Text: "99999999999999999999", Kind: "integer", Err: originalErr}

	assert.Equal(t, originalErr, parseErr.Unwrap())
	assert.True(t, errors.Is(parseErr, originalErr))
}

func TestMergeConflictError_IsClassSentinel(t *testing.T) {
	err := &MergeConflictError{ISIN: "CH0012345678", Field: "value_number", A: "1", B: "2"}

	assert.True(t, errors.Is(err, ErrMergeConflict))

	var conflict *MergeConflictError
	assert.True(t, errors.As(err, &conflict))
	assert.Equal(t, "value_number", conflict.Field)
}

func TestErrorsDistinguishable(t *testing.T) {
	mismatch := error(&IdentityMismatchError{A: "CH0012345678", B: "LU0000000019"})
	conflict := error(&MergeConflictError{ISIN: "CH0012345678", Field: "country"})

	var asMismatch *IdentityMismatchError
	var asConflict *MergeConflictError

	assert.True(t, errors.As(mismatch, &asMismatch))
	assert.False(t, errors.As(mismatch, &asConflict))
	assert.True(t, errors.As(conflict, &asConflict))
	assert.False(t, errors.Is(mismatch, ErrMergeConflict))
}

func TestLookupNotFound_SurvivesWrapping(t *testing.T) {
	wrapped := fmt.Errorf("CH0012345678: %w", ErrLookupNotFound)

	assert.True(t, errors.Is(wrapped, ErrLookupNotFound))
}
