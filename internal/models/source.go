package models

import "fjacquet/funds-xlsx/internal/logging"

// TableSource decodes documents of one format into raw tables.
// Implementations live in the per-format source packages and are created
// through the factory; they must be safe to reuse across files.
type TableSource interface {
	// Tables reads the document at path and returns every table found, in
	// document order. Decoding failures are returned, not logged away.
	Tables(path string) ([]RawTable, error)

	// ValidateFormat reports whether the file looks like this source's
	// format without fully decoding it.
	ValidateFormat(path string) (bool, error)

	// SetLogger configures the logger used for decode diagnostics.
	SetLogger(logger logging.Logger)
}
