// Package generate renders a schema as a JSON description or as wire types
// for client code.
package generate

import (
	"encoding/json"
	"fmt"

	"github.com/tobsdb/tdbprop/internal/builder"
)

func SchemaToLang(schema *builder.Schema, lang string) ([]byte, error) {
	s, err := schemaDestructure(schema)
	if err != nil {
		return nil, err
	}
	switch lang {
	case "json":
		return SchemaToJson(s)
	case "typescript":
		fallthrough
	case "ts":
		return SchemaToTypescript(s), nil
	case "golang":
		fallthrough
	case "go":
		return SchemaToGo(s), nil
	default:
		return nil, fmt.Errorf("Unsupported Language: %s", lang)
	}
}

func SchemaToJson(s []ParsedTable) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}
