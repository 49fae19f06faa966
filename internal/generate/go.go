package generate

import (
	"fmt"

	"github.com/tobsdb/tdbprop/internal/types"
)

// SchemaToGo renders one struct per table describing the JSON wire form.
func SchemaToGo(s []ParsedTable) []byte {
	res := "package schema\n"

	for _, t := range s {
		table := fmt.Sprintf("\ntype %s struct {\n%s\n}\n",
			toPascalCase(t.Name), fieldsToGo(t.Properties))
		res += table
	}

	return []byte(res)
}

func fieldsToGo(props []ParsedProperty) string {
	res := ""
	for i, p := range props {
		res += fmt.Sprintf("\t%s %s `json:\"%s\"`", toPascalCase(p.Name),
			datatypeToGo(p.Datatype, p.Nullable), p.Name)
		if i < len(props)-1 {
			res += "\n"
		}
	}
	return res
}

func datatypeToGo(t types.Datatype, nullable bool) string {
	res := ""
	switch t {
	case types.DatatypeText:
		res = "string"
	case types.DatatypeInteger:
		res = "int64"
	case types.DatatypeLargeInteger:
		// decimal string on the wire
		res = "string"
	case types.DatatypeFloat:
		res = "float64"
	// already nilable
	case types.DatatypeNull:
		return "any"
	case types.DatatypeList:
		return "[]any"
	case types.DatatypeDictionary:
		return "map[string]any"
	}

	if nullable {
		res = "*" + res
	}
	return res
}
