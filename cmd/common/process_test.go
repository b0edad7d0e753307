package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/funds-xlsx/internal/config"
	"fjacquet/funds-xlsx/internal/container"
	"fjacquet/funds-xlsx/internal/factory"
)

const testSpec = `holdings:
  isin: ISIN
  name: Name
  quantity: Quantity
  value: Value
`

const testCSV = `ISIN,Name,Quantity,Value
CH0012345678,Global Fund,5,1'000.50
IT0098765432,Euro Fund,3,250.00
`

func testContainer(t *testing.T, specsDir string) *container.Container {
	t.Helper()
	cfg := &config.Config{
		Log:     config.LogConfig{Level: "info", Format: "text"},
		CSV:     config.CSVConfig{Delimiter: ","},
		Specs:   config.SpecsConfig{Directory: specsDir},
		Extract: config.ExtractConfig{ThousandSeparator: "'", DecimalSeparator: "."},
		Lookup:  config.LookupConfig{Enabled: false},
		Export:  config.ExportConfig{Sheet: "Funds", NameWidth: 40},
	}
	c, err := container.NewContainer(cfg)
	require.NoError(t, err)
	return c
}

func writeTestFiles(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	specsDir := filepath.Join(dir, "specs")
	require.NoError(t, os.Mkdir(specsDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(specsDir, "holdings.yaml"), []byte(testSpec), 0o644))
	csvFile := filepath.Join(dir, "holdings.csv")
	require.NoError(t, os.WriteFile(csvFile, []byte(testCSV), 0o644))
	return specsDir, csvFile
}

func TestResolveSource(t *testing.T) {
	specsDir, csvFile := writeTestFiles(t)
	c := testContainer(t, specsDir)
	defer c.Close()

	source, sourceType, err := ResolveSource(c, csvFile, "")
	assert.NoError(t, err)
	assert.NotNil(t, source)
	assert.Equal(t, factory.CSV, sourceType)

	// An explicit override wins over the file extension, case-insensitively.
	_, sourceType, err = ResolveSource(c, csvFile, "PDF")
	assert.NoError(t, err)
	assert.Equal(t, factory.PDF, sourceType)

	_, _, err = ResolveSource(c, "notes.txt", "")
	assert.Error(t, err)

	_, _, err = ResolveSource(c, csvFile, "docx")
	assert.Error(t, err)
}

func TestLoadTables(t *testing.T) {
	specsDir, csvFile := writeTestFiles(t)
	c := testContainer(t, specsDir)
	defer c.Close()

	matched, err := LoadTables(c, csvFile, ExtractOptions{SpecRef: "1"}, nil)
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, []string{"isin", "name", "quantity", "value"}, matched[0].Header())
}

func TestLoadTablesNoMatch(t *testing.T) {
	specsDir, _ := writeTestFiles(t)
	c := testContainer(t, specsDir)
	defer c.Close()

	dir := t.TempDir()
	other := filepath.Join(dir, "other.csv")
	require.NoError(t, os.WriteFile(other, []byte("Date,Amount\n2024-01-01,5\n"), 0o644))

	_, err := LoadTables(c, other, ExtractOptions{SpecRef: "1"}, nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "match specification")
}

func TestLoadTablesBadSpecRef(t *testing.T) {
	specsDir, csvFile := writeTestFiles(t)
	c := testContainer(t, specsDir)
	defer c.Close()

	_, err := LoadTables(c, csvFile, ExtractOptions{SpecRef: "7"}, nil)
	assert.Error(t, err)
}

func TestExtractFunds(t *testing.T) {
	specsDir, csvFile := writeTestFiles(t)
	c := testContainer(t, specsDir)
	defer c.Close()

	opts := ExtractOptions{
		SpecRef:           "1",
		ThousandSeparator: "'",
		DecimalSeparator:  ".",
	}
	result, err := ExtractFunds(c, csvFile, opts)
	require.NoError(t, err)
	require.Len(t, result, 2)

	assert.Equal(t, "CH0012345678", result[0].ISIN)
	assert.Equal(t, "Global Fund", result[0].Name())
	assert.Equal(t, int64(5), result[0].Quantity)
	assert.Equal(t, "1000.5", result[0].Value.Decimal.String())
	assert.Equal(t, "IT0098765432", result[1].ISIN)
}

func TestOutputPath(t *testing.T) {
	assert.Equal(t, "out.xlsx", OutputPath("holdings.csv", "out.xlsx", ".xlsx"))
	assert.Equal(t, "holdings.xlsx", OutputPath("holdings.csv", "", ".xlsx"))
	assert.Equal(t, filepath.Join("dir", "holdings.csv"),
		OutputPath(filepath.Join("dir", "holdings.xlsx"), "", ".csv"))
}
