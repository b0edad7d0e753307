// Package models holds the boundary types shared between the table sources
// and the extraction engine.
package models

// RawTable is one table as decoded from a source document: an ordered header
// and ordered rows of cell strings aligned with it. The engine treats it as
// immutable data; decoding concerns stay inside the source packages.
type RawTable struct {
	Name   string     `json:"name"`
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// RowCount returns the number of data rows in the table.
func (t RawTable) RowCount() int {
	return len(t.Rows)
}

// ColCount returns the number of header columns in the table.
func (t RawTable) ColCount() int {
	return len(t.Header)
}

// Empty reports whether the table carries no header and no rows.
func (t RawTable) Empty() bool {
	return len(t.Header) == 0 && len(t.Rows) == 0
}
