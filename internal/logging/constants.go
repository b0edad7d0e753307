package logging

// Standardized field names for structured logging.
// These constants ensure consistency across the application's log output,
// making logs easier to parse, filter, and analyze.
const (
	FieldFile       = "file_path"
	FieldSource     = "source"
	FieldSheet      = "sheet"
	FieldSpec       = "spec"
	FieldTable      = "table_header"
	FieldRow        = "row"
	FieldField      = "field"
	FieldISIN       = "isin"
	FieldYear       = "year"
	FieldCount      = "count"
	FieldError      = "error"
	FieldDelimiter  = "delimiter"
	FieldInputFile  = "input_file"
	FieldOutputFile = "output_file"
)
