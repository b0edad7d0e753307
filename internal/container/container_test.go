package container

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/funds-xlsx/internal/config"
	"fjacquet/funds-xlsx/internal/factory"
)

func testConfig() *config.Config {
	return &config.Config{
		Log:     config.LogConfig{Level: "info", Format: "text"},
		CSV:     config.CSVConfig{Delimiter: ","},
		Specs:   config.SpecsConfig{Directory: "specs"},
		Extract: config.ExtractConfig{ThousandSeparator: "'", DecimalSeparator: "."},
		Lookup:  config.LookupConfig{TimeoutSeconds: 10, DelaySeconds: 1, Enabled: true},
		Export:  config.ExportConfig{Sheet: "Funds", NameWidth: 40},
	}
}

func TestNewContainerNilConfig(t *testing.T) {
	c, err := NewContainer(nil)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "configuration cannot be nil")
	assert.Nil(t, c)
}

func TestNewContainer(t *testing.T) {
	c, err := NewContainer(testConfig())
	require.NoError(t, err)
	require.NotNil(t, c)

	// Verify all dependencies are created
	assert.NotNil(t, c.GetLogger())
	assert.NotNil(t, c.GetConfig())
	assert.NotNil(t, c.GetSpecs())
	assert.NotNil(t, c.GetLookup())
	assert.NotNil(t, c.GetAggregator())

	for _, st := range []factory.SourceType{factory.CSV, factory.XLSX, factory.XML, factory.HTML, factory.PDF} {
		source, err := c.GetSource(st)
		assert.NoError(t, err)
		assert.NotNil(t, source)
	}

	_, err = c.GetSource("unknown")
	assert.ErrorContains(t, err, "unknown source type")

	assert.NoError(t, c.Close())
}

func TestNewContainerLookupDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Lookup.Enabled = false

	c, err := NewContainer(cfg)
	require.NoError(t, err)

	assert.Nil(t, c.GetLookup())
}

func TestGetSourcesReturnsCopy(t *testing.T) {
	c, err := NewContainer(testConfig())
	require.NoError(t, err)

	sources := c.GetSources()
	require.Len(t, sources, 5)
	delete(sources, factory.CSV)

	fresh, err := c.GetSource(factory.CSV)
	assert.NoError(t, err)
	assert.NotNil(t, fresh, "mutating the copy must not affect the container")
}
