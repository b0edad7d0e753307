package tables

import (
	"fjacquet/funds-xlsx/internal/cellparser"
	"fjacquet/funds-xlsx/internal/logging"
	"fjacquet/funds-xlsx/internal/models"
)

// FindTables filters raw tables down to those matching the specification
// and returns them selected and, when parsers are given, typed. A table
// whose header matches the spec but rejects the parser assignment is
// excluded like a non-match.
func FindTables(raw []models.RawTable, spec Spec, parsers map[string]cellparser.Parser, strict bool, logger logging.Logger) []*Table {
	if logger == nil {
		logger = logging.GetLogger()
	}
	var matched []*Table
	for _, r := range raw {
		table := NewTable(r, logger)
		if !table.Select(spec) {
			continue
		}
		if parsers != nil && !table.AssignParsers(parsers, strict) {
			logger.Warn("Table matches specification but rejected parsers",
				logging.Field{Key: logging.FieldTable, Value: r.Header})
			continue
		}
		logger.Info("Table matches specification",
			logging.Field{Key: logging.FieldTable, Value: r.Header},
			logging.Field{Key: logging.FieldCount, Value: r.RowCount()})
		matched = append(matched, table)
	}
	return matched
}
