// Package xlsxutils writes tabular data to XLSX workbooks using excelize.
package xlsxutils

import (
	"fmt"
	"iter"
	"strconv"

	"github.com/xuri/excelize/v2"

	"fjacquet/funds-xlsx/internal/logging"
)

// Tabular is anything that exports as one table: a header plus rows of
// cell values aligned with it. Nil cells render as blank.
type Tabular interface {
	Header() []string
	Rows() iter.Seq[[]interface{}]
}

// WriteTables exports tables into a single worksheet: one shared header
// row, then every table's rows in order. All tables must have the same
// header; this is checked before anything is written. Columns named in
// widths get that fixed width and wrapped text; the others auto-size to
// their longest cell plus two.
func WriteTables(path, sheet string, tabs []Tabular, widths map[string]int, logger logging.Logger) error {
	if logger == nil {
		logger = logging.GetLogger()
	}
	if len(tabs) == 0 {
		return fmt.Errorf("no tables to export")
	}
	header := tabs[0].Header()
	for _, tab := range tabs {
		if !equalHeaders(header, tab.Header()) {
			return fmt.Errorf("tables have different headers: %v vs %v", header, tab.Header())
		}
	}
	logger.Info("Exporting tables to XLSX file",
		logging.Field{Key: logging.FieldCount, Value: len(tabs)},
		logging.Field{Key: logging.FieldOutputFile, Value: path})

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close workbook")
		}
	}()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	headerRow := make([]interface{}, len(header))
	maxLen := make([]int, len(header))
	for i, name := range header {
		headerRow[i] = name
		maxLen[i] = len(name)
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	rowNum := 1
	for num, tab := range tabs {
		written := 0
		for row := range tab.Rows() {
			rowNum++
			cell, err := excelize.CoordinatesToCellName(1, rowNum)
			if err != nil {
				return fmt.Errorf("failed to address row %d: %w", rowNum, err)
			}
			if err := f.SetSheetRow(sheet, cell, &row); err != nil {
				return fmt.Errorf("failed to write row %d: %w", rowNum, err)
			}
			for i, value := range row {
				if i < len(maxLen) && value != nil {
					if l := len(fmt.Sprint(value)); l > maxLen[i] {
						maxLen[i] = l
					}
				}
			}
			written++
		}
		logger.Info("Exported table",
			logging.Field{Key: logging.FieldTable, Value: num + 1},
			logging.Field{Key: logging.FieldCount, Value: written})
	}

	if err := styleHeader(f, sheet, len(header)); err != nil {
		return err
	}
	if err := sizeColumns(f, sheet, header, widths, maxLen, rowNum); err != nil {
		return err
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func styleHeader(f *excelize.File, sheet string, columns int) error {
	style, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to build header style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(columns, 1)
	if err != nil {
		return fmt.Errorf("failed to address header: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}
	return nil
}

func sizeColumns(f *excelize.File, sheet string, header []string, widths map[string]int, maxLen []int, lastRow int) error {
	var wrapStyle int
	for i, name := range header {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("failed to name column %d: %w", i+1, err)
		}
		width, fixed := widths[name]
		if !fixed {
			width = maxLen[i] + 2
		}
		if err := f.SetColWidth(sheet, col, col, float64(width)); err != nil {
			return fmt.Errorf("failed to set width of column %s: %w", col, err)
		}
		if fixed && lastRow > 1 {
			if wrapStyle == 0 {
				wrapStyle, err = f.NewStyle(&excelize.Style{
					Alignment: &excelize.Alignment{WrapText: true},
				})
				if err != nil {
					return fmt.Errorf("failed to build wrap style: %w", err)
				}
			}
			if err := f.SetCellStyle(sheet, col+"2", col+strconv.Itoa(lastRow), wrapStyle); err != nil {
				return fmt.Errorf("failed to style column %s: %w", col, err)
			}
		}
	}
	return nil
}

func equalHeaders(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
