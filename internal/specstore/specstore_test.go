package specstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/funds-xlsx/internal/logging"
	"fjacquet/funds-xlsx/internal/tables"
)

func TestParse(t *testing.T) {
	t.Run("groups merge in document order", func(t *testing.T) {
		doc := `
identity:
  isin: ISIN
  name: Security Name
amounts:
  quantity: Qty
  value_number: Market Value
overrides:
  name: Full Security Name
unused:
  - Fees
  - Remarks
`
		spec, err := Parse([]byte(doc))
		require.NoError(t, err)
		assert.Equal(t, []tables.Column{
			{Field: "isin", Source: "ISIN"},
			{Field: "name", Source: "Full Security Name"},
			{Field: "quantity", Source: "Qty"},
			{Field: "value_number", Source: "Market Value"},
		}, spec.Columns())
		assert.Equal(t, []string{"Fees", "Remarks"}, spec.Drop())
	})

	t.Run("null values are skipped", func(t *testing.T) {
		doc := `
identity:
  isin: ISIN
  country: ~
`
		spec, err := Parse([]byte(doc))
		require.NoError(t, err)
		assert.Equal(t, []tables.Column{{Field: "isin", Source: "ISIN"}}, spec.Columns())
	})

	t.Run("null never erases an earlier mapping", func(t *testing.T) {
		doc := `
first:
  isin: ISIN
second:
  isin: ~
`
		spec, err := Parse([]byte(doc))
		require.NoError(t, err)
		assert.Equal(t, []tables.Column{{Field: "isin", Source: "ISIN"}}, spec.Columns())
	})

	t.Run("malformed documents", func(t *testing.T) {
		tests := []struct {
			name string
			doc  string
		}{
			{"empty", ""},
			{"root is a sequence", "- a\n- b\n"},
			{"root is a scalar", "just text\n"},
			{"no groups", "{}\n"},
			{"scalar group", "group: 42\n"},
			{"nested mapping value", "group:\n  field:\n    nested: true\n"},
			{"non-scalar drop entry", "group:\n  - [a, b]\n"},
			{"invalid yaml", "group: [unclosed\n"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := Parse([]byte(tt.doc))
				assert.Error(t, err)
			})
		}
	})
}

func writeSpecFiles(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		err := os.WriteFile(filepath.Join(dir, name), []byte("group:\n  isin: ISIN\n"), 0o600)
		require.NoError(t, err)
	}
	return dir
}

func TestStore_List(t *testing.T) {
	dir := writeSpecFiles(t, "b.yaml", "a.yaml", "c.yml", "notes.txt")
	store := NewStore(dir, &logging.MockLogger{})

	paths, err := store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.yaml"),
		filepath.Join(dir, "b.yaml"),
		filepath.Join(dir, "c.yml"),
	}, paths)
}

func TestStore_List_MissingDir(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "nope"), &logging.MockLogger{})
	_, err := store.List()
	assert.Error(t, err)
}

func TestStore_Resolve(t *testing.T) {
	dir := writeSpecFiles(t, "a.yaml", "b.yaml")
	store := NewStore(dir, &logging.MockLogger{})

	t.Run("index", func(t *testing.T) {
		path, err := store.Resolve("2")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "b.yaml"), path)
	})

	t.Run("index out of range", func(t *testing.T) {
		_, err := store.Resolve("3")
		assert.Error(t, err)
		_, err = store.Resolve("0")
		assert.Error(t, err)
	})

	t.Run("path passes through", func(t *testing.T) {
		path, err := store.Resolve("custom/spec.yaml")
		require.NoError(t, err)
		assert.Equal(t, "custom/spec.yaml", path)
	})
}

func TestStore_Load(t *testing.T) {
	dir := writeSpecFiles(t, "a.yaml")
	store := NewStore(dir, &logging.MockLogger{})

	t.Run("valid file", func(t *testing.T) {
		spec, err := store.Load(filepath.Join(dir, "a.yaml"))
		require.NoError(t, err)
		assert.Equal(t, []string{"isin"}, spec.Fields())
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := store.Load(filepath.Join(dir, "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("malformed file", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(bad, []byte("- not\n- a\n- mapping\n"), 0o600))
		_, err := store.Load(bad)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), bad)
	})
}
