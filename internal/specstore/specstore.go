// Package specstore loads declarative table specifications from YAML files.
//
// A specification document is a mapping of named groups. Mapping-valued
// groups contribute canonical-field to source-column pairs; sequence-valued
// groups contribute source columns to drop. Groups merge in document order,
// later groups overriding earlier values for the same field, while the
// field order of first appearance is kept.
package specstore

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"fjacquet/funds-xlsx/internal/logging"
	"fjacquet/funds-xlsx/internal/tables"
)

// Store lists and loads the specification files of one directory.
type Store struct {
	dir    string
	logger logging.Logger
}

// NewStore creates a store over the given specs directory.
func NewStore(dir string, logger logging.Logger) *Store {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &Store{dir: dir, logger: logger}
}

// Dir returns the directory the store reads from.
func (s *Store) Dir() string {
	return s.dir
}

// List returns the paths of all specification files in the store's
// directory, sorted by name.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read specs directory %s: %w", s.dir, err)
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".yaml", ".yml":
			paths = append(paths, filepath.Join(s.dir, entry.Name()))
		}
	}
	sort.Strings(paths)
	s.logger.Info("Available table specification files",
		logging.Field{Key: logging.FieldCount, Value: len(paths)},
		logging.Field{Key: "dir", Value: s.dir})
	return paths, nil
}

// Resolve turns a specification reference into a file path. A positive
// integer selects from List (1-based); anything else is taken as a path.
func (s *Store) Resolve(ref string) (string, error) {
	n, err := strconv.Atoi(ref)
	if err != nil {
		return ref, nil
	}
	paths, err := s.List()
	if err != nil {
		return "", err
	}
	if n < 1 || n > len(paths) {
		return "", fmt.Errorf("invalid specification number %d: have %d specification files", n, len(paths))
	}
	return paths[n-1], nil
}

// Load reads and parses one specification file.
func (s *Store) Load(path string) (tables.Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return tables.Spec{}, fmt.Errorf("failed to read specification file: %w", err)
	}
	spec, err := Parse(data)
	if err != nil {
		return tables.Spec{}, fmt.Errorf("specification %s: %w", path, err)
	}
	s.logger.Debug("Table specification read",
		logging.Field{Key: logging.FieldFile, Value: path},
		logging.Field{Key: logging.FieldCount, Value: len(spec.Columns())})
	return spec, nil
}

// Parse builds a specification from YAML document bytes. The yaml.Node API
// is used so group and field order follow the document, which a plain map
// unmarshal would lose.
func Parse(data []byte) (tables.Spec, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return tables.Spec{}, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return tables.Spec{}, fmt.Errorf("document is empty")
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return tables.Spec{}, fmt.Errorf("document root must be a mapping of groups, got %s", kindName(root))
	}
	if len(root.Content) == 0 {
		return tables.Spec{}, fmt.Errorf("document has no groups")
	}

	var order []string
	sources := make(map[string]string)
	var drop []string
	for i := 0; i+1 < len(root.Content); i += 2 {
		name := root.Content[i].Value
		group := root.Content[i+1]
		switch group.Kind {
		case yaml.MappingNode:
			for j := 0; j+1 < len(group.Content); j += 2 {
				key, value := group.Content[j], group.Content[j+1]
				if key.Kind != yaml.ScalarNode {
					return tables.Spec{}, fmt.Errorf("group %q: field names must be scalars", name)
				}
				if value.Tag == "!!null" {
					continue
				}
				if value.Kind != yaml.ScalarNode {
					return tables.Spec{}, fmt.Errorf("group %q: field %q must map to a source column name", name, key.Value)
				}
				if _, ok := sources[key.Value]; !ok {
					order = append(order, key.Value)
				}
				sources[key.Value] = value.Value
			}
		case yaml.SequenceNode:
			for _, item := range group.Content {
				if item.Kind != yaml.ScalarNode {
					return tables.Spec{}, fmt.Errorf("group %q: drop entries must be scalars", name)
				}
				drop = append(drop, item.Value)
			}
		default:
			return tables.Spec{}, fmt.Errorf("group %q must be a mapping or a sequence, got %s", name, kindName(group))
		}
	}

	columns := make([]tables.Column, len(order))
	for i, field := range order {
		columns[i] = tables.Column{Field: field, Source: sources[field]}
	}
	return tables.NewSpec(columns, drop)
}

func kindName(n *yaml.Node) string {
	switch n.Kind {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	}
	return "unknown"
}
