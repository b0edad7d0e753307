package factory

import (
	"fmt"
	"path/filepath"
	"strings"

	"fjacquet/funds-xlsx/internal/csvsource"
	"fjacquet/funds-xlsx/internal/htmlsource"
	"fjacquet/funds-xlsx/internal/logging"
	"fjacquet/funds-xlsx/internal/models"
	"fjacquet/funds-xlsx/internal/pdfsource"
	"fjacquet/funds-xlsx/internal/xlsxsource"
	"fjacquet/funds-xlsx/internal/xmlsource"
)

// SourceType defines the types of table sources available.
type SourceType string

const (
	CSV  SourceType = "csv"
	XLSX SourceType = "xlsx"
	XML  SourceType = "xml"
	HTML SourceType = "html"
	PDF  SourceType = "pdf"
)

// GetSource returns a new instance of the appropriate source for the given type.
// It acts as a factory for creating TableSource implementations.
func GetSource(sourceType SourceType) (models.TableSource, error) {
	return GetSourceWithLogger(sourceType, logging.GetLogger())
}

// GetSourceWithLogger returns a new instance of the appropriate source for the
// given type with the provided logger for dependency injection.
func GetSourceWithLogger(sourceType SourceType, logger logging.Logger) (models.TableSource, error) {
	var source models.TableSource
	switch sourceType {
	case CSV:
		source = csvsource.New()
	case XLSX:
		source = xlsxsource.New()
	case XML:
		source = xmlsource.New()
	case HTML:
		source = htmlsource.New()
	case PDF:
		source = pdfsource.New()
	default:
		return nil, fmt.Errorf("unknown source type: %s", sourceType)
	}
	source.SetLogger(logger)
	return source, nil
}

// TypeForPath derives the source type from the file extension.
func TypeForPath(path string) (SourceType, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return CSV, nil
	case ".xlsx":
		return XLSX, nil
	case ".xml":
		return XML, nil
	case ".html", ".htm":
		return HTML, nil
	case ".pdf":
		return PDF, nil
	default:
		return "", fmt.Errorf("cannot determine source type for %s", path)
	}
}
