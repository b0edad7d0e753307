// Package pdfsource recovers tables from PDF files. Text is pulled out of
// the document with the pdftotext tool in layout mode, then scanned for
// blocks of lines whose columns line up. Detected tables are cached next
// to the PDF so repeated runs skip the extraction step.
package pdfsource

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"fjacquet/funds-xlsx/internal/logging"
	"fjacquet/funds-xlsx/internal/models"
	"fjacquet/funds-xlsx/internal/textutils"
)

// Extractor extracts the text content of a PDF file. The indirection keeps
// the source testable without pdftotext installed.
type Extractor interface {
	Extract(pdfPath string) (string, error)
}

// Define extractTextFromPDF as a variable holding a function
var extractTextFromPDF = func(pdfFile string) (string, error) {
	// pdftotext only writes to a file, so extract into a sibling and
	// read it back.
	tempFile := pdfFile + ".txt"

	cmd := exec.Command("pdftotext", "-layout", pdfFile, tempFile)
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("error running pdftotext: %w", err)
	}

	output, err := os.ReadFile(tempFile)
	if err != nil {
		return "", fmt.Errorf("error reading extracted text: %w", err)
	}

	os.Remove(tempFile)

	return string(output), nil
}

// RealExtractor runs the pdftotext command. It requires pdftotext to be
// installed.
type RealExtractor struct{}

// NewRealExtractor creates a new RealExtractor instance.
func NewRealExtractor() *RealExtractor {
	return &RealExtractor{}
}

// Extract extracts text from a PDF file using the pdftotext command.
func (e *RealExtractor) Extract(pdfPath string) (string, error) {
	return extractTextFromPDF(pdfPath)
}

// MockExtractor returns predefined text instead of reading a PDF.
type MockExtractor struct {
	Text string
	Err  error
}

// NewMockExtractor creates a new MockExtractor with the given mock data.
func NewMockExtractor(text string, err error) *MockExtractor {
	return &MockExtractor{Text: text, Err: err}
}

// Extract returns the predefined mock text or error.
func (e *MockExtractor) Extract(pdfPath string) (string, error) {
	if e.Err != nil {
		return "", e.Err
	}
	return e.Text, nil
}

// Source reads PDF documents.
type Source struct {
	logger    logging.Logger
	extractor Extractor
	force     bool
}

// New creates a PDF source using the real pdftotext extractor.
func New() *Source {
	return &Source{
		logger:    logging.GetLogger(),
		extractor: NewRealExtractor(),
	}
}

// SetLogger sets a custom logger for this source.
func (s *Source) SetLogger(logger logging.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// SetExtractor replaces the text extractor.
func (s *Source) SetExtractor(extractor Extractor) {
	if extractor != nil {
		s.extractor = extractor
	}
}

// SetForce makes Tables ignore any cached result and re-extract.
func (s *Source) SetForce(force bool) {
	s.force = force
}

// Tables returns the tables detected in the PDF text. A successful
// detection is written to a cache file next to the PDF and reused on later
// calls unless force is set.
func (s *Source) Tables(path string) ([]models.RawTable, error) {
	if !s.force {
		if tables, ok := s.cachedTables(path); ok {
			s.logger.Info("Using cached tables",
				logging.Field{Key: logging.FieldFile, Value: path},
				logging.Field{Key: logging.FieldCount, Value: len(tables)})
			return tables, nil
		}
	}

	text, err := s.extractor.Extract(path)
	if err != nil {
		return nil, fmt.Errorf("failed to extract text from %s: %w", path, err)
	}

	tables := s.tablesFromText(text)
	s.logger.Info("Detected tables in PDF text",
		logging.Field{Key: logging.FieldFile, Value: path},
		logging.Field{Key: logging.FieldCount, Value: len(tables)})
	s.writeCache(path, tables)
	return tables, nil
}

// ValidateFormat reports whether text extraction works and yields
// anything. Extraction failures mean the file is not a usable PDF, not
// that something went wrong.
func (s *Source) ValidateFormat(path string) (bool, error) {
	if _, err := os.Stat(path); err != nil {
		return false, err
	}
	text, err := s.extractor.Extract(path)
	if err != nil {
		return false, nil
	}
	return strings.TrimSpace(text) != "", nil
}

// tablesFromText finds tables in layout-preserved text. A table is a run
// of non-blank lines, at least two of them, that all split into the same
// number of columns, two or more. The first line is the header.
func (s *Source) tablesFromText(text string) []models.RawTable {
	var tables []models.RawTable
	for _, block := range textutils.Blocks(text) {
		if len(block) < 2 {
			continue
		}

		rows := make([][]string, 0, len(block))
		for _, line := range block {
			rows = append(rows, textutils.SplitColumns(line))
		}

		width := len(rows[0])
		if width < 2 {
			continue
		}
		aligned := true
		for _, row := range rows[1:] {
			if len(row) != width {
				aligned = false
				break
			}
		}
		if !aligned {
			continue
		}

		tables = append(tables, models.RawTable{
			Name:   fmt.Sprintf("table %d", len(tables)+1),
			Header: rows[0],
			Rows:   rows[1:],
		})
	}
	return tables
}

func cachePath(path string) string {
	return path + ".tables.json"
}

func (s *Source) cachedTables(path string) ([]models.RawTable, bool) {
	data, err := os.ReadFile(cachePath(path))
	if err != nil {
		return nil, false
	}
	var tables []models.RawTable
	if err := json.Unmarshal(data, &tables); err != nil {
		s.logger.WithError(err).Warn("Ignoring unreadable table cache",
			logging.Field{Key: logging.FieldFile, Value: cachePath(path)})
		return nil, false
	}
	return tables, true
}

func (s *Source) writeCache(path string, tables []models.RawTable) {
	data, err := json.MarshalIndent(tables, "", "  ")
	if err == nil {
		err = os.WriteFile(cachePath(path), data, 0o644)
	}
	if err != nil {
		s.logger.WithError(err).Warn("Failed to write table cache",
			logging.Field{Key: logging.FieldFile, Value: cachePath(path)})
	}
}
