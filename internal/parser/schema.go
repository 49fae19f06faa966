package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/tobsdb/tdbprop/internal/props"
	"github.com/tobsdb/tdbprop/internal/types"
	"github.com/tobsdb/tdbprop/pkg"
)

type Table struct {
	Name   string
	Fields []*Field
}

type Field struct {
	Name        string
	BuiltinType types.Datatype
	Properties  map[props.FieldProp]string
}

func (t *Table) Field(name string) (*Field, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

type LineParserState int

const (
	ParserStateTableStart LineParserState = iota
	ParserStateTableEnd
	ParserStateNewField
	ParserStateIdle
)

type ParserData struct {
	Name         string
	Builtin_type types.Datatype
	Properties   map[props.FieldProp]string
}

const (
	table_prefix     = "$TABLE "
	table_prefix_len = len(table_prefix)
)

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func LineParser(line string) (LineParserState, *ParserData, error) {
	if strings.HasPrefix(line, table_prefix) {
		line := line[table_prefix_len:]
		name_end := strings.Index(line, " ")

		if name_end > 0 {
			open_bracket := strings.TrimSpace(line[name_end:])
			if open_bracket != "{" {
				return ParserStateIdle, nil, errors.New("Table name cannot include space")
			}
			name := line[:name_end]
			if !identifier.MatchString(name) {
				return ParserStateIdle, nil, errors.New("Table name contains invalid characters")
			}
			return ParserStateTableStart, &ParserData{Name: name}, nil
		}
	} else if line == "}" {
		return ParserStateTableEnd, nil, nil
	} else {
		splits := strings.Split(line, " ")
		splits = pkg.Filter(splits, func(s string) bool { return len(s) > 0 })
		if len(splits) == 0 {
			return ParserStateIdle, nil, errors.New("Invalid line")
		}
		if !identifier.MatchString(splits[0]) {
			return ParserStateIdle, nil, errors.New("Field name contains invalid characters")
		}
		if len(splits) < 2 {
			return ParserStateIdle, nil, fmt.Errorf("Field %s does not have a type", splits[0])
		}
		builtin_type := types.Datatype(splits[1])
		err := ValidateFieldType(builtin_type)
		if err != nil {
			return ParserStateIdle, nil, err
		}

		raw_field_props := strings.Join(splits[2:], " ")
		field_props, err := parseRawFieldProps(raw_field_props)
		if err != nil {
			return ParserStateIdle, nil, err
		}

		return ParserStateNewField, &ParserData{
			Name:         splits[0],
			Builtin_type: builtin_type,
			Properties:   field_props,
		}, nil
	}
	return ParserStateIdle, nil, errors.New("Invalid line")
}

var rawPropPattern = regexp.MustCompile(`(?m)(\w+)\(([^)]*)\)`)

func parseRawFieldProps(raw string) (map[props.FieldProp]string, error) {
	field_props := make(map[props.FieldProp]string)

	for _, m := range rawPropPattern.FindAllStringSubmatch(raw, -1) {
		prop, value := props.FieldProp(m[1]), m[2]
		if err := props.ParseFieldProp(prop, value); err != nil {
			return nil, err
		}
		if _, dup := field_props[prop]; dup {
			return nil, fmt.Errorf("Duplicate field prop: %s", prop)
		}
		field_props[prop] = value
	}

	return field_props, nil
}

func ValidateFieldType(builtin_type types.Datatype) error {
	if !builtin_type.IsValid() {
		return fmt.Errorf("Invalid field type: %s", builtin_type)
	}
	return nil
}
