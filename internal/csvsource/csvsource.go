// Package csvsource decodes CSV statement exports into raw tables. A CSV
// file carries exactly one table: the first record is the header, every
// following record is a row.
package csvsource

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fjacquet/funds-xlsx/internal/logging"
	"fjacquet/funds-xlsx/internal/models"
)

// Source reads CSV files.
type Source struct {
	logger    logging.Logger
	delimiter rune
}

// New creates a CSV source with a comma delimiter.
func New() *Source {
	return &Source{logger: logging.GetLogger(), delimiter: ','}
}

// SetLogger sets a custom logger for this source.
func (s *Source) SetLogger(logger logging.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// SetDelimiter overrides the field delimiter. Zero keeps the current one.
func (s *Source) SetDelimiter(delimiter rune) {
	if delimiter != 0 {
		s.delimiter = delimiter
	}
}

// Tables reads the file as one table. Records longer than the header are
// truncated and shorter ones padded with empty cells, with a warning.
func (s *Source) Tables(path string) ([]models.RawTable, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			s.logger.WithError(err).Warn("Failed to close file",
				logging.Field{Key: logging.FieldFile, Value: path})
		}
	}()

	reader := csv.NewReader(file)
	reader.Comma = s.delimiter
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("CSV file %s has no header", path)
	}

	header := records[0]
	rows := make([][]string, 0, len(records)-1)
	for i, record := range records[1:] {
		if len(record) != len(header) {
			s.logger.Warn("Record length differs from header, adjusting",
				logging.Field{Key: logging.FieldRow, Value: i + 1},
				logging.Field{Key: logging.FieldCount, Value: len(record)},
				logging.Field{Key: "header_count", Value: len(header)})
			record = normalizeRecord(record, len(header))
		}
		rows = append(rows, record)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	s.logger.Debug("Read CSV table",
		logging.Field{Key: logging.FieldFile, Value: path},
		logging.Field{Key: logging.FieldCount, Value: len(rows)})
	return []models.RawTable{{Name: name, Header: header, Rows: rows}}, nil
}

// ValidateFormat reports whether the file parses as CSV with at least a
// header record.
func (s *Source) ValidateFormat(path string) (bool, error) {
	file, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer func() {
		if err := file.Close(); err != nil {
			s.logger.WithError(err).Warn("Failed to close file",
				logging.Field{Key: logging.FieldFile, Value: path})
		}
	}()

	reader := csv.NewReader(file)
	reader.Comma = s.delimiter
	reader.FieldsPerRecord = -1
	record, err := reader.Read()
	if err != nil {
		return false, nil
	}
	return len(record) > 0, nil
}

func normalizeRecord(record []string, want int) []string {
	if len(record) > want {
		return record[:want]
	}
	for len(record) < want {
		record = append(record, "")
	}
	return record
}
