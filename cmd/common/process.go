// Package common contains shared functionality for command handlers
package common

import (
	"fmt"
	"strings"

	"fjacquet/funds-xlsx/internal/cellparser"
	"fjacquet/funds-xlsx/internal/container"
	"fjacquet/funds-xlsx/internal/factory"
	"fjacquet/funds-xlsx/internal/fileutils"
	"fjacquet/funds-xlsx/internal/funds"
	"fjacquet/funds-xlsx/internal/logging"
	"fjacquet/funds-xlsx/internal/models"
	"fjacquet/funds-xlsx/internal/pdfsource"
	"fjacquet/funds-xlsx/internal/tables"
)

// ExtractOptions carries the extraction knobs shared by the extract and
// batch commands.
type ExtractOptions struct {
	SpecRef           string
	SourceOverride    string
	Force             bool
	ThousandSeparator string
	DecimalSeparator  string
}

// ResolveSource picks the table source for a file, honoring an explicit
// type override.
func ResolveSource(c *container.Container, inputFile, override string) (models.TableSource, factory.SourceType, error) {
	var sourceType factory.SourceType
	if override != "" {
		sourceType = factory.SourceType(strings.ToLower(override))
	} else {
		var err error
		sourceType, err = factory.TypeForPath(inputFile)
		if err != nil {
			return nil, "", err
		}
	}

	source, err := c.GetSource(sourceType)
	if err != nil {
		return nil, "", err
	}
	return source, sourceType, nil
}

// LoadTables reads a document and returns its tables matching the
// referenced specification, typed with the given parsers.
func LoadTables(c *container.Container, inputFile string, opts ExtractOptions, parsers map[string]cellparser.Parser) ([]*tables.Table, error) {
	logger := c.GetLogger()

	source, sourceType, err := ResolveSource(c, inputFile, opts.SourceOverride)
	if err != nil {
		return nil, err
	}
	if ps, ok := source.(*pdfsource.Source); ok {
		ps.SetForce(opts.Force)
	}

	valid, err := source.ValidateFormat(inputFile)
	if err != nil {
		return nil, fmt.Errorf("failed to validate %s: %w", inputFile, err)
	}
	if !valid {
		return nil, fmt.Errorf("%s is not a valid %s document", inputFile, sourceType)
	}

	raw, err := source.Tables(inputFile)
	if err != nil {
		return nil, err
	}

	specPath, err := c.GetSpecs().Resolve(opts.SpecRef)
	if err != nil {
		return nil, err
	}
	spec, err := c.GetSpecs().Load(specPath)
	if err != nil {
		return nil, err
	}

	matched := tables.FindTables(raw, spec, parsers, false, logger)
	logger.Info("Found matching tables in the document",
		logging.Field{Key: logging.FieldInputFile, Value: inputFile},
		logging.Field{Key: logging.FieldCount, Value: len(matched)})
	if len(matched) == 0 {
		return nil, fmt.Errorf("no tables in %s match specification %s", inputFile, specPath)
	}
	return matched, nil
}

// ExtractFunds extracts the funds of one document, table by table, in
// document order.
func ExtractFunds(c *container.Container, inputFile string, opts ExtractOptions) ([]funds.Fund, error) {
	parsers := funds.DefaultParsers(opts.ThousandSeparator, opts.DecimalSeparator)

	matched, err := LoadTables(c, inputFile, opts, parsers)
	if err != nil {
		return nil, err
	}

	var result []funds.Fund
	for _, table := range matched {
		result = append(result, funds.FromTable(table, c.GetLogger())...)
	}
	c.GetLogger().Info("Converted table rows into funds",
		logging.Field{Key: logging.FieldInputFile, Value: inputFile},
		logging.Field{Key: logging.FieldCount, Value: len(result)})
	return result, nil
}

// OutputPath returns the explicit output path when given, otherwise the
// input path with its extension swapped.
func OutputPath(inputFile, explicit, ext string) string {
	if explicit != "" {
		return explicit
	}
	return fileutils.ReplaceExtension(inputFile, ext)
}
