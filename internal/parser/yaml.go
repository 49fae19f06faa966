package parser

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/tobsdb/tdbprop/internal/props"
	"github.com/tobsdb/tdbprop/internal/types"
)

type yamlSchema struct {
	Tables []yamlTable `yaml:"tables"`
}

type yamlTable struct {
	Name   string      `yaml:"name"`
	Fields []yamlField `yaml:"fields"`
}

type yamlField struct {
	Name       string     `yaml:"name"`
	Type       string     `yaml:"type"`
	Default    *yaml.Node `yaml:"default"`
	Nullable   *bool      `yaml:"nullable"`
	Unique     *bool      `yaml:"unique"`
	Index      *bool      `yaml:"index"`
	StoredName string     `yaml:"stored_name"`
}

// ParseYAMLSchema reads the YAML schema format:
//
//	tables:
//	  - name: user
//	    fields:
//	      - name: age
//	        type: Integer
//	        default: 0
//	        nullable: false
//
// It yields the same tables ParseSchema would for the equivalent $TABLE text.
func ParseYAMLSchema(data []byte) ([]*Table, error) {
	var raw yamlSchema
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("Invalid yaml schema: %s", err)
	}

	tables := make([]*Table, 0, len(raw.Tables))
	seen := map[string]bool{}
	for _, rt := range raw.Tables {
		if !identifier.MatchString(rt.Name) {
			return nil, fmt.Errorf("Table name contains invalid characters: %q", rt.Name)
		}
		if seen[rt.Name] {
			return nil, fmt.Errorf("Duplicate table %s", rt.Name)
		}
		seen[rt.Name] = true

		table := &Table{Name: rt.Name, Fields: []*Field{}}
		for _, rf := range rt.Fields {
			field, err := rf.toField()
			if err != nil {
				return nil, fmt.Errorf("Table %s: %s", rt.Name, err)
			}
			if _, dup := table.Field(field.Name); dup {
				return nil, fmt.Errorf("Table %s: duplicate field %s", rt.Name, field.Name)
			}
			table.Fields = append(table.Fields, field)
		}
		tables = append(tables, table)
	}
	return tables, nil
}

func (rf yamlField) toField() (*Field, error) {
	if !identifier.MatchString(rf.Name) {
		return nil, fmt.Errorf("Field name contains invalid characters: %q", rf.Name)
	}
	if rf.Type == "" {
		return nil, fmt.Errorf("Field %s does not have a type", rf.Name)
	}
	builtin_type := types.Datatype(rf.Type)
	if err := ValidateFieldType(builtin_type); err != nil {
		return nil, err
	}

	field_props := map[props.FieldProp]string{}
	if rf.Default != nil {
		if rf.Default.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("Field %s: default must be a scalar", rf.Name)
		}
		field_props[props.FieldPropDefault] = rf.Default.Value
	}
	for prop, b := range map[props.FieldProp]*bool{
		props.FieldPropNullable: rf.Nullable,
		props.FieldPropUnique:   rf.Unique,
		props.FieldPropIndex:    rf.Index,
	} {
		if b != nil {
			field_props[prop] = strconv.FormatBool(*b)
		}
	}
	if rf.StoredName != "" {
		if err := props.ParseFieldProp(props.FieldPropName, rf.StoredName); err != nil {
			return nil, err
		}
		field_props[props.FieldPropName] = rf.StoredName
	}

	return &Field{Name: rf.Name, BuiltinType: builtin_type, Properties: field_props}, nil
}
