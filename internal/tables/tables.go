// Package tables implements the typed, spec-driven table extraction engine.
//
// A Spec declares which source columns a caller wants and what canonical
// names they get. A Table wraps one raw source table, resolves a Spec
// against its header, attaches cell parsers per selected column, and yields
// typed records row by row. Rows that fail to parse are logged and skipped;
// they never abort an extraction.
package tables

import (
	"fmt"
	"iter"
	"sort"

	"fjacquet/funds-xlsx/internal/cellparser"
	"fjacquet/funds-xlsx/internal/extracterror"
	"fjacquet/funds-xlsx/internal/logging"
	"fjacquet/funds-xlsx/internal/models"
)

// Column maps one canonical field name to the source column it comes from.
type Column struct {
	Field  string
	Source string
}

// Spec is a declarative table specification: the columns to extract under
// canonical names, plus source columns that must exist but are dropped.
// A Spec is immutable after construction and safe to share across tables.
type Spec struct {
	columns []Column
	drop    []string
}

// NewSpec builds a specification from ordered column mappings and a drop
// set. Canonical field names must be unique.
func NewSpec(columns []Column, drop []string) (Spec, error) {
	seen := make(map[string]bool, len(columns))
	for _, col := range columns {
		if seen[col.Field] {
			return Spec{}, fmt.Errorf("duplicate canonical field %q in specification", col.Field)
		}
		seen[col.Field] = true
	}
	return Spec{
		columns: append([]Column{}, columns...),
		drop:    append([]string{}, drop...),
	}, nil
}

// Columns returns the ordered canonical-field to source-column mappings.
func (s Spec) Columns() []Column {
	return append([]Column{}, s.columns...)
}

// Drop returns the source columns that must exist but are not extracted.
func (s Spec) Drop() []string {
	return append([]string{}, s.drop...)
}

// Fields returns the canonical field names in specification order.
func (s Spec) Fields() []string {
	fields := make([]string, len(s.columns))
	for i, col := range s.columns {
		fields[i] = col.Field
	}
	return fields
}

// Record is one typed row: canonical field name to parsed value.
type Record map[string]cellparser.Value

// selection binds a canonical field to its source column index.
type selection struct {
	field string
	index int
}

// Table wraps one raw source table and applies a specification to it.
//
// The raw header and rows are fixed at construction; the current selection
// and parsers are operation-scoped and may be re-assigned. Selecting resets
// parsers to the identity; assigning parsers leaves the selection alone.
// A Table is not safe for concurrent use.
type Table struct {
	raw      models.RawTable
	selected []selection
	parsers  []cellparser.Parser
	logger   logging.Logger
}

// NewTable wraps a raw table. Initially every source column is selected
// under its own name with the identity parser.
func NewTable(raw models.RawTable, logger logging.Logger) *Table {
	if logger == nil {
		logger = logging.GetLogger()
	}
	t := &Table{raw: raw, logger: logger}
	t.selected = make([]selection, len(raw.Header))
	t.parsers = make([]cellparser.Parser, len(raw.Header))
	for i, name := range raw.Header {
		t.selected[i] = selection{field: name, index: i}
		t.parsers[i] = cellparser.Text()
	}
	return t
}

// SourceHeader returns the raw table's column names.
func (t *Table) SourceHeader() []string {
	return append([]string{}, t.raw.Header...)
}

// HasColumn reports whether the raw table has a column with the given name.
func (t *Table) HasColumn(name string) bool {
	return indexOf(t.raw.Header, name) >= 0
}

// Select resolves the specification against the table's header. It returns
// true when every mapped source column and every drop column exists; the
// selection then follows the specification's field order and all parsers
// are reset to the identity. On false the table's previous state is kept
// and must not be used for iteration.
func (t *Table) Select(spec Spec) bool {
	sel, err := t.resolve(spec)
	if err != nil {
		t.logger.WithError(err).Debug("Table does not match specification",
			logging.Field{Key: logging.FieldTable, Value: t.raw.Header})
		return false
	}
	t.selected = sel
	t.parsers = make([]cellparser.Parser, len(sel))
	for i := range t.parsers {
		t.parsers[i] = cellparser.Text()
	}
	return true
}

func (t *Table) resolve(spec Spec) ([]selection, error) {
	var missing []string
	sel := make([]selection, 0, len(spec.columns))
	for _, col := range spec.columns {
		idx := indexOf(t.raw.Header, col.Source)
		if idx < 0 {
			missing = append(missing, col.Source)
			continue
		}
		sel = append(sel, selection{field: col.Field, index: idx})
	}
	for _, name := range spec.drop {
		if indexOf(t.raw.Header, name) < 0 {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &extracterror.SelectionError{Missing: missing, Header: t.raw.Header}
	}
	return sel, nil
}

// AssignParsers attaches parsers to already-selected canonical fields.
// In strict mode a single unknown field name fails the whole call and no
// parser is applied. In non-strict mode unknown names are ignored and the
// call always succeeds. Fields without an entry keep their current parser.
func (t *Table) AssignParsers(parsers map[string]cellparser.Parser, strict bool) bool {
	if strict {
		var unknown []string
		for field := range parsers {
			if !t.isSelected(field) {
				unknown = append(unknown, field)
			}
		}
		if len(unknown) > 0 {
			sort.Strings(unknown)
			t.logger.WithError(&extracterror.ParserAssignmentError{Fields: unknown}).
				Warn("Parser assignment rejected")
			return false
		}
	}
	for i, sel := range t.selected {
		if p, ok := parsers[sel.field]; ok {
			t.parsers[i] = p
		}
	}
	return true
}

func (t *Table) isSelected(field string) bool {
	for _, sel := range t.selected {
		if sel.field == field {
			return true
		}
	}
	return false
}

// Header returns the canonical field names of the current selection, in
// specification order.
func (t *Table) Header() []string {
	fields := make([]string, len(t.selected))
	for i, sel := range t.selected {
		fields[i] = sel.field
	}
	return fields
}

// Records returns a lazy sequence of typed rows in source order. Each
// range over it restarts from the first row. A row whose cells fail any
// selected parser is logged and skipped as a whole; parsing never emits a
// partial record.
func (t *Table) Records() iter.Seq[Record] {
	return func(yield func(Record) bool) {
		for i, row := range t.raw.Rows {
			rec, err := t.parseRow(row)
			if err != nil {
				t.logger.WithError(err).Warn("Skipping row",
					logging.Field{Key: logging.FieldRow, Value: i},
					logging.Field{Key: "content", Value: row})
				continue
			}
			if !yield(rec) {
				return
			}
		}
	}
}

// Rows returns the parsed rows as value slices aligned with Header, the
// shape the exporter consumes.
func (t *Table) Rows() iter.Seq[[]interface{}] {
	return func(yield func([]interface{}) bool) {
		for rec := range t.Records() {
			row := make([]interface{}, len(t.selected))
			for i, sel := range t.selected {
				row[i] = rec[sel.field].Any()
			}
			if !yield(row) {
				return
			}
		}
	}
}

func (t *Table) parseRow(row []string) (Record, error) {
	rec := make(Record, len(t.selected))
	for i, sel := range t.selected {
		if sel.index >= len(row) {
			return nil, fmt.Errorf("row has %d cells but column %q is at index %d",
				len(row), sel.field, sel.index)
		}
		value, err := t.parsers[i].Parse(row[sel.index])
		if err != nil {
			return nil, err
		}
		rec[sel.field] = value
	}
	return rec, nil
}

func indexOf(header []string, name string) int {
	for i, h := range header {
		if h == name {
			return i
		}
	}
	return -1
}
