// Package xmlsource decodes XML table documents into raw tables. The
// expected shape is any document carrying <table> elements with <row>
// children made of <cell> children; the first row of a table is its
// header.
package xmlsource

import (
	"fmt"
	"os"

	"gopkg.in/xmlpath.v2"

	"fjacquet/funds-xlsx/internal/logging"
	"fjacquet/funds-xlsx/internal/models"
	"fjacquet/funds-xlsx/internal/xmlutils"
)

var (
	tablePath = xmlpath.MustCompile("//table")
	rowPath   = xmlpath.MustCompile("row")
	cellPath  = xmlpath.MustCompile("cell")
	namePath  = xmlpath.MustCompile("@name")
)

// Source reads XML table documents.
type Source struct {
	logger logging.Logger
}

// New creates an XML source.
func New() *Source {
	return &Source{logger: logging.GetLogger()}
}

// SetLogger sets a custom logger for this source.
func (s *Source) SetLogger(logger logging.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Tables returns every table element holding at least a header row. Cell
// text is cleaned of layout whitespace. Tables are named by their name
// attribute, or positionally when it is absent.
func (s *Source) Tables(path string) ([]models.RawTable, error) {
	root, err := xmlutils.LoadXMLFile(path)
	if err != nil {
		return nil, err
	}

	var tables []models.RawTable
	num := 0
	iter := tablePath.Iter(root)
	for iter.Next() {
		num++
		node := iter.Node()
		name := fmt.Sprintf("table %d", num)
		if attr, ok := namePath.String(node); ok && attr != "" {
			name = attr
		}

		var rows [][]string
		rowIter := rowPath.Iter(node)
		for rowIter.Next() {
			var cells []string
			cellIter := cellPath.Iter(rowIter.Node())
			for cellIter.Next() {
				cells = append(cells, xmlutils.CleanText(cellIter.Node().String()))
			}
			rows = append(rows, cells)
		}
		if len(rows) == 0 {
			s.logger.Debug("Skipping table without rows",
				logging.Field{Key: logging.FieldTable, Value: name})
			continue
		}
		tables = append(tables, models.RawTable{Name: name, Header: rows[0], Rows: rows[1:]})
		s.logger.Debug("Read XML table",
			logging.Field{Key: logging.FieldTable, Value: name},
			logging.Field{Key: logging.FieldCount, Value: len(rows) - 1})
	}
	return tables, nil
}

// ValidateFormat reports whether the file parses as XML and holds at
// least one table element.
func (s *Source) ValidateFormat(path string) (bool, error) {
	if _, err := os.Stat(path); err != nil {
		return false, err
	}
	root, err := xmlutils.LoadXMLFile(path)
	if err != nil {
		return false, nil
	}
	return tablePath.Exists(root), nil
}
