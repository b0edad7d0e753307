// Package xlsxsource decodes XLSX workbooks into raw tables, one table per
// non-empty worksheet.
package xlsxsource

import (
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"

	"fjacquet/funds-xlsx/internal/logging"
	"fjacquet/funds-xlsx/internal/models"
)

// Source reads XLSX workbooks.
type Source struct {
	logger logging.Logger
}

// New creates an XLSX source.
func New() *Source {
	return &Source{logger: logging.GetLogger()}
}

// SetLogger sets a custom logger for this source.
func (s *Source) SetLogger(logger logging.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Tables reads every non-empty worksheet as one table named after the
// sheet. The sheet's first row is the header; shorter data rows are padded
// to the header length, which the XLSX cell model produces routinely for
// trailing blank cells.
func (s *Source) Tables(path string) ([]models.RawTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.WithError(err).Warn("Failed to close workbook",
				logging.Field{Key: logging.FieldFile, Value: path})
		}
	}()

	var tables []models.RawTable
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
		}
		if len(rows) == 0 {
			s.logger.Debug("Skipping empty sheet",
				logging.Field{Key: logging.FieldSheet, Value: sheet})
			continue
		}
		header := rows[0]
		data := make([][]string, 0, len(rows)-1)
		for _, row := range rows[1:] {
			for len(row) < len(header) {
				row = append(row, "")
			}
			data = append(data, row[:len(header)])
		}
		tables = append(tables, models.RawTable{Name: sheet, Header: header, Rows: data})
		s.logger.Debug("Read sheet",
			logging.Field{Key: logging.FieldSheet, Value: sheet},
			logging.Field{Key: logging.FieldCount, Value: len(data)})
	}
	return tables, nil
}

// ValidateFormat reports whether the file opens as a workbook with at
// least one sheet.
func (s *Source) ValidateFormat(path string) (bool, error) {
	if _, err := os.Stat(path); err != nil {
		return false, err
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return false, nil
	}
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.WithError(err).Warn("Failed to close workbook",
				logging.Field{Key: logging.FieldFile, Value: path})
		}
	}()
	return len(f.GetSheetList()) > 0, nil
}
