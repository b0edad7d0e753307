package factory_test

import (
	"testing"

	"fjacquet/funds-xlsx/internal/factory"
	"fjacquet/funds-xlsx/internal/logging"

	"github.com/stretchr/testify/assert"
)

func TestGetSource(t *testing.T) {
	tests := []struct {
		name        string
		sourceType  factory.SourceType
		expectError bool
	}{
		{
			name:        "CSV Source",
			sourceType:  factory.CSV,
			expectError: false,
		},
		{
			name:        "XLSX Source",
			sourceType:  factory.XLSX,
			expectError: false,
		},
		{
			name:        "XML Source",
			sourceType:  factory.XML,
			expectError: false,
		},
		{
			name:        "HTML Source",
			sourceType:  factory.HTML,
			expectError: false,
		},
		{
			name:        "PDF Source",
			sourceType:  factory.PDF,
			expectError: false,
		},
		{
			name:        "Unknown Source Type",
			sourceType:  "unknown",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := logging.NewLogrusAdapter("info", "text")
			s, err := factory.GetSourceWithLogger(tt.sourceType, logger)

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, s)
				assert.Contains(t, err.Error(), "unknown source type")
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, s)
			}
		})
	}
}

func TestTypeForPath(t *testing.T) {
	tests := []struct {
		path        string
		sourceType  factory.SourceType
		expectError bool
	}{
		{path: "holdings.csv", sourceType: factory.CSV},
		{path: "holdings.XLSX", sourceType: factory.XLSX},
		{path: "report.xml", sourceType: factory.XML},
		{path: "page.html", sourceType: factory.HTML},
		{path: "page.htm", sourceType: factory.HTML},
		{path: "/tmp/statement.pdf", sourceType: factory.PDF},
		{path: "notes.txt", expectError: true},
		{path: "noextension", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			st, err := factory.TypeForPath(tt.path)

			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.sourceType, st)
			}
		})
	}
}
