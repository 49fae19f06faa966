package generate

import (
	"fmt"

	"github.com/tobsdb/tdbprop/internal/types"
)

func SchemaToTypescript(s []ParsedTable) []byte {
	res := "export type Schema = {\n"
	for _, t := range s {
		table := fmt.Sprintf("\t%s: {\n%s\n\t};\n", t.Name, fieldsToTypescript(t.Properties))
		res += table
	}
	res += "}\n"
	return []byte(res)
}

func fieldsToTypescript(props []ParsedProperty) string {
	res := ""
	for i, p := range props {
		res += fmt.Sprintf("\t\t%s%s: %s;",
			p.Name, typescriptOptional(p),
			datatypeToTypescript(p.Datatype, p.Nullable))
		if i < len(props)-1 {
			res += "\n"
		}
	}
	return res
}

// values with a default may be left out when writing
func typescriptOptional(p ParsedProperty) string {
	if p.Nullable || p.Default != nil {
		return "?"
	}
	return ""
}

func datatypeToTypescript(t types.Datatype, nullable bool) string {
	res := ""
	switch t {
	case types.DatatypeText, types.DatatypeLargeInteger:
		res = "string"
	case types.DatatypeInteger, types.DatatypeFloat:
		res = "number"
	case types.DatatypeNull:
		return "null"
	case types.DatatypeList:
		res = "unknown[]"
	case types.DatatypeDictionary:
		res = "Record<string, unknown>"
	}

	if nullable {
		res += " | null"
	}
	return res
}
