package builder

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tobsdb/tdbprop/internal/parser"
	"github.com/tobsdb/tdbprop/internal/property"
	"github.com/tobsdb/tdbprop/internal/record"
	"github.com/tobsdb/tdbprop/pkg"
)

// Schema holds one model per declared table.
type Schema struct {
	Tables pkg.Map[string, *record.Model]
	// table -> names of properties declared unique or indexed; recorded for
	// the storage layer, not enforced
	Indexes pkg.Map[string, []string]
}

func NewSchemaFromString(schema_data string) (*Schema, error) {
	tables, err := parser.ParseSchema(schema_data)
	if err != nil {
		return nil, err
	}
	return buildSchema(tables)
}

func NewSchemaFromYAML(schema_data []byte) (*Schema, error) {
	tables, err := parser.ParseYAMLSchema(schema_data)
	if err != nil {
		return nil, err
	}
	return buildSchema(tables)
}

// LoadSchemaFile picks the format from the file extension: .yaml and .yml
// are YAML, anything else is the $TABLE format.
func LoadSchemaFile(schema_path string) (*Schema, error) {
	if !filepath.IsAbs(schema_path) {
		cwd, _ := os.Getwd()
		schema_path = filepath.Join(cwd, schema_path)
	}

	data, err := os.ReadFile(schema_path)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(schema_path)) {
	case ".yaml", ".yml":
		return NewSchemaFromYAML(data)
	}
	return NewSchemaFromString(string(data))
}

func buildSchema(tables []*parser.Table) (*Schema, error) {
	schema := &Schema{Tables: pkg.Map[string, *record.Model]{}, Indexes: pkg.Map[string, []string]{}}

	for _, table := range tables {
		properties := make([]*property.Property, 0, len(table.Fields))
		indexes := []string{}
		for _, field := range table.Fields {
			p, err := NewProperty(field)
			if err != nil {
				return nil, fmt.Errorf("table %s: %w", table.Name, err)
			}
			properties = append(properties, p)
			if p.Unique() || p.Index() {
				indexes = append(indexes, p.Name())
			}
		}

		model, err := record.NewModel(table.Name, properties...)
		if err != nil {
			return nil, err
		}
		schema.Tables.Set(table.Name, model)
		schema.Indexes.Set(table.Name, indexes)
		pkg.DebugLog("built model", table.Name, "with", len(properties), "properties")
	}

	return schema, nil
}

func (s *Schema) Model(table string) (*record.Model, error) {
	if !s.Tables.Has(table) {
		return nil, fmt.Errorf("Table not found: %s", table)
	}
	return s.Tables.Get(table), nil
}
