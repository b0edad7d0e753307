// Package batch provides functionality for processing whole directories of
// holdings files and consolidating their funds.
package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fjacquet/funds-xlsx/internal/factory"
	"fjacquet/funds-xlsx/internal/funds"
	"fjacquet/funds-xlsx/internal/logging"
)

// Aggregator handles the aggregation of funds extracted from multiple files.
type Aggregator struct {
	logger logging.Logger
}

// NewAggregator creates a new Aggregator instance.
func NewAggregator(logger logging.Logger) *Aggregator {
	return &Aggregator{
		logger: logger,
	}
}

// CollectFiles returns the files of a directory that a table source can
// read, in name order. Unsupported files are skipped, not reported.
func (a *Aggregator) CollectFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		sourceType, err := factory.TypeForPath(path)
		if err != nil {
			a.logger.Debug("Skipping unsupported file",
				logging.Field{Key: logging.FieldFile, Value: entry.Name()})
			continue
		}

		a.logger.Debug("File mapped to source type",
			logging.Field{Key: logging.FieldFile, Value: entry.Name()},
			logging.Field{Key: logging.FieldSource, Value: string(sourceType)})
		files = append(files, path)
	}

	a.logger.Info("Collected input files",
		logging.Field{Key: "total_files", Value: len(files)},
		logging.Field{Key: "directory", Value: dir})
	return files, nil
}

// AggregateFunds extracts funds from every file and concatenates them in
// file order. A file that fails to extract is skipped so one bad input
// does not abort the whole batch.
func (a *Aggregator) AggregateFunds(files []string, extractFunc func(string) ([]funds.Fund, error)) ([]funds.Fund, error) {
	var allFunds []funds.Fund
	var sourceFiles []string

	for _, file := range files {
		a.logger.Debug("Processing file", logging.Field{Key: logging.FieldFile, Value: filepath.Base(file)})

		extracted, err := extractFunc(file)
		if err != nil {
			a.logger.Error("Failed to extract funds from file",
				logging.Field{Key: logging.FieldFile, Value: file},
				logging.Field{Key: logging.FieldError, Value: err})
			continue // Skip this file but continue with others
		}

		a.logger.Debug("Loaded funds from file",
			logging.Field{Key: logging.FieldCount, Value: len(extracted)},
			logging.Field{Key: logging.FieldFile, Value: filepath.Base(file)})

		allFunds = append(allFunds, extracted...)
		sourceFiles = append(sourceFiles, filepath.Base(file))
	}

	a.logger.Info("Aggregated funds from batch",
		logging.Field{Key: "total_funds", Value: len(allFunds)},
		logging.Field{Key: "source_files", Value: strings.Join(sourceFiles, ", ")})

	return allFunds, nil
}

// ReconcileFunds merges funds that share an ISIN, earlier entries first.
// A pair whose attributes contradict each other stays split, so the
// conflict remains visible in the output. Returns the consolidated list
// in order of first appearance and the number of conflicts.
func (a *Aggregator) ReconcileFunds(fs []funds.Fund) ([]funds.Fund, int) {
	var result []funds.Fund
	latest := make(map[string]int)
	conflicts := 0

	for _, f := range fs {
		idx, seen := latest[f.ISIN]
		if !seen {
			latest[f.ISIN] = len(result)
			result = append(result, f)
			continue
		}

		merged, err := result[idx].Merge(f)
		if err != nil {
			conflicts++
			a.logger.Warn("Cannot merge holdings, keeping both",
				logging.Field{Key: logging.FieldISIN, Value: f.ISIN},
				logging.Field{Key: logging.FieldError, Value: err})
			latest[f.ISIN] = len(result)
			result = append(result, f)
			continue
		}
		result[idx] = merged
	}

	a.logger.Info("Reconciled funds",
		logging.Field{Key: "input_funds", Value: len(fs)},
		logging.Field{Key: "output_funds", Value: len(result)},
		logging.Field{Key: "conflicts", Value: conflicts})
	return result, conflicts
}

// OutputName creates the path of the consolidated workbook for a batch
// run covering the given tax year.
func (a *Aggregator) OutputName(dir string, year int) string {
	return filepath.Join(dir, fmt.Sprintf("funds-%d.xlsx", year))
}
