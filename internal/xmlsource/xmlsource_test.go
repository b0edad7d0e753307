package xmlsource

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/funds-xlsx/internal/logging"
)

func writeXML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.xml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func newSource() *Source {
	s := New()
	s.SetLogger(&logging.MockLogger{})
	return s
}

func TestTables(t *testing.T) {
	t.Run("named and unnamed tables", func(t *testing.T) {
		doc := `<?xml version="1.0"?>
<statement>
  <table name="holdings">
    <row><cell>isin</cell><cell>quantity</cell></row>
    <row><cell> CH0012345678 </cell><cell>10</cell></row>
  </table>
  <table>
    <row><cell>total</cell></row>
    <row><cell>100</cell></row>
  </table>
</statement>`
		tables, err := newSource().Tables(writeXML(t, doc))
		require.NoError(t, err)
		require.Len(t, tables, 2)

		assert.Equal(t, "holdings", tables[0].Name)
		assert.Equal(t, []string{"isin", "quantity"}, tables[0].Header)
		assert.Equal(t, [][]string{{"CH0012345678", "10"}}, tables[0].Rows)

		assert.Equal(t, "table 2", tables[1].Name)
		assert.Equal(t, []string{"total"}, tables[1].Header)
	})

	t.Run("cell text is cleaned", func(t *testing.T) {
		doc := `<doc><table><row><cell>
   UBS
   Fund
  </cell></row></table></doc>`
		tables, err := newSource().Tables(writeXML(t, doc))
		require.NoError(t, err)
		require.Len(t, tables, 1)
		assert.Equal(t, []string{"UBS Fund"}, tables[0].Header)
	})

	t.Run("table without rows is skipped", func(t *testing.T) {
		doc := `<doc><table name="empty"/><table><row><cell>h</cell></row></table></doc>`
		tables, err := newSource().Tables(writeXML(t, doc))
		require.NoError(t, err)
		require.Len(t, tables, 1)
		assert.Equal(t, "table 2", tables[0].Name)
	})

	t.Run("no tables", func(t *testing.T) {
		tables, err := newSource().Tables(writeXML(t, `<doc><other/></doc>`))
		require.NoError(t, err)
		assert.Empty(t, tables)
	})

	t.Run("malformed xml", func(t *testing.T) {
		_, err := newSource().Tables(writeXML(t, `<unclosed`))
		assert.Error(t, err)
	})
}

func TestValidateFormat(t *testing.T) {
	source := newSource()

	t.Run("document with tables", func(t *testing.T) {
		ok, err := source.ValidateFormat(writeXML(t, `<doc><table><row><cell>h</cell></row></table></doc>`))
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("document without tables", func(t *testing.T) {
		ok, err := source.ValidateFormat(writeXML(t, `<doc/>`))
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("not xml", func(t *testing.T) {
		ok, err := source.ValidateFormat(writeXML(t, `***`))
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := source.ValidateFormat(filepath.Join(t.TempDir(), "missing.xml"))
		assert.Error(t, err)
	})
}
