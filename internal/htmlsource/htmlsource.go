// Package htmlsource decodes HTML report pages into raw tables, one per
// <table> element. The first <tr> provides the header from its <th> or
// <td> cells.
package htmlsource

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"fjacquet/funds-xlsx/internal/logging"
	"fjacquet/funds-xlsx/internal/models"
	"fjacquet/funds-xlsx/internal/textutils"
)

// Source reads HTML documents.
type Source struct {
	logger logging.Logger
}

// New creates an HTML source.
func New() *Source {
	return &Source{logger: logging.GetLogger()}
}

// SetLogger sets a custom logger for this source.
func (s *Source) SetLogger(logger logging.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Tables returns every table element holding at least one row. Tables are
// named by their id attribute, or positionally when it is absent. A table
// nested inside another is returned on its own and excluded from its
// parent's rows.
func (s *Source) Tables(path string) ([]models.RawTable, error) {
	doc, err := s.parse(path)
	if err != nil {
		return nil, err
	}

	var tables []models.RawTable
	for i, node := range findTables(doc) {
		name := attrValue(node, "id")
		if name == "" {
			name = fmt.Sprintf("table %d", i+1)
		}

		var rows [][]string
		for _, tr := range rowsOf(node) {
			cells := cellsOf(tr)
			if len(cells) == 0 {
				continue
			}
			rows = append(rows, cells)
		}
		if len(rows) == 0 {
			s.logger.Debug("Skipping table without rows",
				logging.Field{Key: logging.FieldTable, Value: name})
			continue
		}
		tables = append(tables, models.RawTable{Name: name, Header: rows[0], Rows: rows[1:]})
		s.logger.Debug("Read HTML table",
			logging.Field{Key: logging.FieldTable, Value: name},
			logging.Field{Key: logging.FieldCount, Value: len(rows) - 1})
	}
	return tables, nil
}

// ValidateFormat reports whether the file parses as HTML holding at least
// one table element. The HTML parser accepts almost anything, so the
// table requirement is what actually discriminates.
func (s *Source) ValidateFormat(path string) (bool, error) {
	if _, err := os.Stat(path); err != nil {
		return false, err
	}
	doc, err := s.parse(path)
	if err != nil {
		return false, nil
	}
	return len(findTables(doc)) > 0, nil
}

func (s *Source) parse(path string) (*html.Node, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open HTML file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			s.logger.WithError(err).Warn("Failed to close file",
				logging.Field{Key: logging.FieldFile, Value: path})
		}
	}()

	doc, err := html.Parse(file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML file: %w", err)
	}
	return doc, nil
}

func findTables(doc *html.Node) []*html.Node {
	var tables []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Table {
			tables = append(tables, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return tables
}

// rowsOf collects the tr elements of a table, not descending into nested
// tables.
func rowsOf(table *html.Node) []*html.Node {
	var rows []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode {
				switch c.DataAtom {
				case atom.Table:
					continue
				case atom.Tr:
					rows = append(rows, c)
					continue
				}
			}
			walk(c)
		}
	}
	walk(table)
	return rows
}

func cellsOf(tr *html.Node) []string {
	var cells []string
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.DataAtom == atom.Td || c.DataAtom == atom.Th) {
			cells = append(cells, textutils.CollapseSpaces(nodeText(c)))
		}
	}
	return cells
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		if n.Type == html.ElementNode && n.DataAtom == atom.Table {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func attrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
