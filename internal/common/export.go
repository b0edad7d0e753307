// Package common provides the shared export paths used by the command
// layer. Funds are written either to CSV or to XLSX, extracted tables to
// XLSX only.
package common

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gocarina/gocsv"

	"fjacquet/funds-xlsx/internal/funds"
	"fjacquet/funds-xlsx/internal/logging"
	"fjacquet/funds-xlsx/internal/tables"
	"fjacquet/funds-xlsx/internal/xlsxutils"
)

var log = logging.GetLogger()

// DefaultTablesSheet is the sheet name used when exporting raw typed
// tables rather than funds.
const DefaultTablesSheet = "Tables"

// Global CSV delimiter - can be configured via centralized config or environment variable
var Delimiter rune = ','

func init() {
	// Fallback to environment variable for backward compatibility
	if val := os.Getenv("CSV_DELIMITER"); val != "" {
		// Use first rune only
		SetDelimiter([]rune(val)[0])
	}
}

// SetDelimiter allows setting the delimiter for CSV output
func SetDelimiter(delim rune) {
	Delimiter = delim
}

// SetLogger allows setting a configured logger
func SetLogger(logger logging.Logger) {
	if logger == nil {
		return // Don't change the logger if nil is passed
	}
	log = logger
}

// FundRecord maps one fund to a CSV row. Absent attributes stay empty so
// the CSV mirrors the blank cells of the XLSX export.
type FundRecord struct {
	ISIN        string `csv:"ISIN"`
	ValueNumber string `csv:"Value Number"`
	Quantity    string `csv:"Quantity"`
	Name        string `csv:"Name"`
	Value       string `csv:"Value"`
	Country     string `csv:"Country"`
	Currency    string `csv:"Currency"`
}

// NewFundRecord converts a fund into its CSV representation.
func NewFundRecord(f funds.Fund) FundRecord {
	record := FundRecord{
		ISIN:     f.ISIN,
		Quantity: strconv.FormatInt(f.Quantity, 10),
		Name:     f.Name(),
		Country:  f.Country,
		Currency: f.Currency,
	}
	if f.ValueNumber != 0 {
		record.ValueNumber = strconv.FormatInt(f.ValueNumber, 10)
	}
	if f.Value.Valid {
		record.Value = f.Value.Decimal.String()
	}
	return record
}

// FundRecords converts funds into CSV records, preserving order.
func FundRecords(fs []funds.Fund) []FundRecord {
	records := make([]FundRecord, 0, len(fs))
	for _, f := range fs {
		records = append(records, NewFundRecord(f))
	}
	return records
}

// WriteFundsToCSV writes funds to a CSV file in a standardized format.
func WriteFundsToCSV(fs []funds.Fund, csvFile string) error {
	if fs == nil {
		return fmt.Errorf("cannot write nil funds to CSV")
	}

	log.Info("Writing funds to CSV file",
		logging.Field{Key: logging.FieldFile, Value: csvFile},
		logging.Field{Key: logging.FieldCount, Value: len(fs)})

	// Create the directory if it doesn't exist
	dir := filepath.Dir(csvFile)
	if err := os.MkdirAll(dir, 0750); err != nil {
		log.WithError(err).Error("Failed to create directory")
		return fmt.Errorf("error creating directory: %w", err)
	}

	file, err := os.Create(csvFile)
	if err != nil {
		log.WithError(err).Error("Failed to create CSV file")
		return fmt.Errorf("error creating CSV file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.WithError(err).Warn("Failed to close file")
		}
	}()

	// Configure CSV writer with custom delimiter
	csvWriter := csv.NewWriter(file)
	csvWriter.Comma = Delimiter

	if err := gocsv.MarshalCSV(FundRecords(fs), gocsv.NewSafeCSVWriter(csvWriter)); err != nil {
		log.WithError(err).Error("Failed to marshal funds to CSV")
		return fmt.Errorf("error writing CSV data: %w", err)
	}

	log.Info("Successfully wrote funds to CSV file",
		logging.Field{Key: logging.FieldFile, Value: csvFile},
		logging.Field{Key: logging.FieldCount, Value: len(fs)})
	return nil
}

// WriteFundsToXLSX writes funds as one sheet of a new workbook. The name
// column gets a fixed width when nameWidth is positive.
func WriteFundsToXLSX(fs []funds.Fund, xlsxFile, sheet string, nameWidth int) error {
	var widths map[string]int
	if nameWidth > 0 {
		widths = map[string]int{"Name": nameWidth}
	}
	return xlsxutils.WriteTables(xlsxFile, sheet, []xlsxutils.Tabular{funds.Funds(fs)}, widths, log)
}

// WriteTablesToXLSX writes typed tables into one sheet of a new workbook.
// All tables must share the same header.
func WriteTablesToXLSX(tbls []*tables.Table, xlsxFile, sheet string) error {
	tabs := make([]xlsxutils.Tabular, 0, len(tbls))
	for _, t := range tbls {
		tabs = append(tabs, t)
	}
	return xlsxutils.WriteTables(xlsxFile, sheet, tabs, nil, log)
}
