package batch

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/funds-xlsx/internal/funds"
	"fjacquet/funds-xlsx/internal/logging"
)

func mustFund(t *testing.T, isin string, opts ...funds.Option) funds.Fund {
	t.Helper()
	f, err := funds.New(isin, opts...)
	require.NoError(t, err)
	return f
}

func touch(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
}

func TestCollectFiles(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "b.xlsx")
	touch(t, dir, "a.csv")
	touch(t, dir, "notes.txt")
	touch(t, dir, "report.pdf")
	touch(t, dir, "report.pdf.tables.json")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	aggregator := NewAggregator(&logging.MockLogger{})
	files, err := aggregator.CollectFiles(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "a.csv"),
		filepath.Join(dir, "b.xlsx"),
		filepath.Join(dir, "report.pdf"),
	}, files, "unsupported files, caches and directories are skipped")
}

func TestCollectFilesMissingDir(t *testing.T) {
	aggregator := NewAggregator(&logging.MockLogger{})

	_, err := aggregator.CollectFiles(filepath.Join(t.TempDir(), "absent"))
	assert.ErrorContains(t, err, "failed to read input directory")
}

func TestAggregateFunds(t *testing.T) {
	mock := &logging.MockLogger{}
	aggregator := NewAggregator(mock)

	extract := func(file string) ([]funds.Fund, error) {
		switch filepath.Base(file) {
		case "one.csv":
			return []funds.Fund{mustFund(t, "CH0012345678")}, nil
		case "two.csv":
			return []funds.Fund{mustFund(t, "IT1234567890")}, nil
		default:
			return nil, errors.New("unreadable")
		}
	}

	all, err := aggregator.AggregateFunds([]string{"one.csv", "bad.csv", "two.csv"}, extract)
	require.NoError(t, err)

	require.Len(t, all, 2, "a failing file must not abort the batch")
	assert.Equal(t, "CH0012345678", all[0].ISIN)
	assert.Equal(t, "IT1234567890", all[1].ISIN)
	assert.True(t, mock.HasEntry("ERROR", "Failed to extract funds from file"))
}

func TestReconcileFunds(t *testing.T) {
	aggregator := NewAggregator(&logging.MockLogger{})

	input := []funds.Fund{
		mustFund(t, "CH0012345678", funds.WithQuantity(1), funds.WithName("A")),
		mustFund(t, "IT1234567890", funds.WithQuantity(7)),
		mustFund(t, "CH0012345678", funds.WithQuantity(2), funds.WithName("B")),
	}

	result, conflicts := aggregator.ReconcileFunds(input)

	assert.Zero(t, conflicts)
	require.Len(t, result, 2)
	assert.Equal(t, "CH0012345678", result[0].ISIN, "order of first appearance is kept")
	assert.Equal(t, int64(3), result[0].Quantity)
	assert.Equal(t, "A | B", result[0].Name())
	assert.Equal(t, "IT1234567890", result[1].ISIN)
}

func TestReconcileFundsConflict(t *testing.T) {
	mock := &logging.MockLogger{}
	aggregator := NewAggregator(mock)

	input := []funds.Fund{
		mustFund(t, "CH0012345678", funds.WithValueNumber(1), funds.WithQuantity(1)),
		mustFund(t, "CH0012345678", funds.WithValueNumber(2), funds.WithQuantity(2)),
		mustFund(t, "CH0012345678", funds.WithValueNumber(2), funds.WithQuantity(5)),
	}

	result, conflicts := aggregator.ReconcileFunds(input)

	assert.Equal(t, 1, conflicts)
	require.Len(t, result, 2, "conflicting holdings stay split")
	assert.Equal(t, int64(1), result[0].Quantity)
	assert.Equal(t, int64(7), result[1].Quantity, "later funds merge into the newest entry")
	assert.True(t, mock.HasEntry("WARN", "Cannot merge holdings, keeping both"))
}

func TestOutputName(t *testing.T) {
	aggregator := NewAggregator(&logging.MockLogger{})

	name := aggregator.OutputName("out", 2023)
	assert.Equal(t, filepath.Join("out", "funds-2023.xlsx"), name)
}
