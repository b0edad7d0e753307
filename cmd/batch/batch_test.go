package batch_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"fjacquet/funds-xlsx/cmd/batch"
	"fjacquet/funds-xlsx/cmd/root"
	"fjacquet/funds-xlsx/internal/config"
	"fjacquet/funds-xlsx/internal/container"
)

const testSpec = `holdings:
  isin: ISIN
  name: Name
  quantity: Quantity
`

func TestBatchCommand_CommandMetadata(t *testing.T) {
	assert.Equal(t, "batch", batch.Cmd.Use)
	assert.Contains(t, batch.Cmd.Short, "Batch process")
	assert.NotNil(t, batch.Cmd.Run)
}

func TestBatchCommand_LongDescription(t *testing.T) {
	assert.Contains(t, batch.Cmd.Long, "Batch process files")
	assert.Contains(t, batch.Cmd.Long, "input directory")
	assert.Contains(t, batch.Cmd.Long, "another directory")
}

func TestBatchCommand_Example(t *testing.T) {
	assert.Contains(t, batch.Cmd.Long, "Example")
	assert.Contains(t, batch.Cmd.Long, "batch")
}

func TestBatchCommand_UsageTemplate(t *testing.T) {
	assert.Contains(t, batch.Cmd.UsageTemplate(), "for batch, -i/-o refer to directories")
}

func TestBatchCommand_Flags(t *testing.T) {
	assert.Equal(t, "1", batch.Cmd.Flags().Lookup("spec").DefValue)
	assert.Equal(t, "'", batch.Cmd.Flags().Lookup("thousand-separator").DefValue)
	assert.Equal(t, ".", batch.Cmd.Flags().Lookup("decimal-separator").DefValue)
	assert.Equal(t, "false", batch.Cmd.Flags().Lookup("no-lookup").DefValue)
	assert.Equal(t, "40", batch.Cmd.Flags().Lookup("name-width").DefValue)
}

func TestBatchCommand_Run(t *testing.T) {
	dir := t.TempDir()
	specsDir := filepath.Join(dir, "specs")
	inputDir := filepath.Join(dir, "in")
	outputDir := filepath.Join(dir, "out")
	require.NoError(t, os.Mkdir(specsDir, 0o755))
	require.NoError(t, os.Mkdir(inputDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(specsDir, "holdings.yaml"), []byte(testSpec), 0o644))

	// The same instrument appears in both statements and must come out as
	// one holding with the quantities added up.
	require.NoError(t, os.WriteFile(filepath.Join(inputDir, "a.csv"),
		[]byte("ISIN,Name,Quantity\nCH0012345678,Global Fund,5\nIT0098765432,Euro Fund,3\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(inputDir, "b.csv"),
		[]byte("ISIN,Name,Quantity\nCH0012345678,Global Fund,2\n"), 0o644))

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

	originalContainer := root.AppContainer
	originalFlags := root.SharedFlags
	t.Cleanup(func() {
		root.AppContainer = originalContainer
		root.SharedFlags = originalFlags
		require.NoError(t, batch.Cmd.Flags().Set("year", "0"))
		c.Close()
	})
	root.AppContainer = c
	root.SharedFlags.Input = inputDir
	root.SharedFlags.Output = outputDir
	require.NoError(t, batch.Cmd.Flags().Set("year", "2024"))

	batch.Cmd.Run(batch.Cmd, []string{})

	outputPath := filepath.Join(outputDir, "funds-2024.xlsx")
	workbook, err := excelize.OpenFile(outputPath)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, workbook.Close())
	}()

	isin, err := workbook.GetCellValue("Funds", "A2")
	require.NoError(t, err)
	assert.Equal(t, "CH0012345678", isin)
	quantity, err := workbook.GetCellValue("Funds", "C2")
	require.NoError(t, err)
	assert.Equal(t, "7", quantity)
	second, err := workbook.GetCellValue("Funds", "A3")
	require.NoError(t, err)
	assert.Equal(t, "IT0098765432", second)

	// The CSV twin is always written next to the workbook.
	assert.FileExists(t, filepath.Join(outputDir, "funds-2024.csv"))
}
