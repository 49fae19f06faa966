package parser

import (
	"bufio"
	"fmt"
	"strings"
)

// ParseSchema reads the $TABLE schema format. Tables and fields keep their
// declaration order.
func ParseSchema(schema_data string) ([]*Table, error) {
	tables := []*Table{}
	seen := map[string]bool{}

	scanner := bufio.NewScanner(strings.NewReader(schema_data))
	line_idx := 0

	var current_table *Table

	for scanner.Scan() {
		line_idx++
		line := strings.TrimSpace(scanner.Text())

		// Ignore empty lines & comments
		if len(line) == 0 || strings.HasPrefix(line, "//") {
			continue
		}

		state, data, err := LineParser(line)
		if err != nil {
			return nil, fmt.Errorf("Error parsing line %d: %s", line_idx, err)
		}

		switch state {
		case ParserStateTableStart:
			if current_table != nil {
				return nil, fmt.Errorf("Error parsing line %d: table %s is not closed", line_idx, current_table.Name)
			}
			if seen[data.Name] {
				return nil, fmt.Errorf("Error parsing line %d: duplicate table %s", line_idx, data.Name)
			}
			current_table = &Table{Name: data.Name, Fields: []*Field{}}
		case ParserStateTableEnd:
			if current_table == nil {
				return nil, fmt.Errorf("Error parsing line %d: unexpected }", line_idx)
			}
			seen[current_table.Name] = true
			tables = append(tables, current_table)
			current_table = nil
		case ParserStateNewField:
			if current_table == nil {
				return nil, fmt.Errorf("Error parsing line %d: field %s outside of a table", line_idx, data.Name)
			}
			if _, dup := current_table.Field(data.Name); dup {
				return nil, fmt.Errorf("Error parsing line %d: duplicate field %s", line_idx, data.Name)
			}
			current_table.Fields = append(current_table.Fields, &Field{
				Name:        data.Name,
				BuiltinType: data.Builtin_type,
				Properties:  data.Properties,
			})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if current_table != nil {
		return nil, fmt.Errorf("Table %s is not closed", current_table.Name)
	}

	return tables, nil
}
