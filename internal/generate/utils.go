package generate

import (
	"fmt"
	"slices"
	"strings"

	"github.com/tobsdb/tdbprop/internal/builder"
	"github.com/tobsdb/tdbprop/internal/types"
	"github.com/tobsdb/tdbprop/internal/typesystem"
)

func toPascalCase(t string) string {
	res := ""
	for _, v := range strings.Split(t, "_") {
		if v == "" {
			continue
		}
		res += strings.Join([]string{strings.ToUpper(v[0:1]), v[1:]}, "")
	}
	return res
}

type (
	ParsedTable struct {
		Name       string           `json:"name"`
		Properties []ParsedProperty `json:"properties"`
	}

	ParsedProperty struct {
		Name     string         `json:"name"`
		Datatype types.Datatype `json:"type"`
		Nullable bool           `json:"nullable"`
		Unique   bool           `json:"unique"`
		Index    bool           `json:"index"`
		// wire form of the default; nil when there is none
		Default any `json:"default,omitempty"`
	}
)

// schemaDestructure flattens the schema with tables sorted by name and
// properties in declaration order.
func schemaDestructure(s *builder.Schema) ([]ParsedTable, error) {
	ts := typesystem.NewJSON()
	names := s.Tables.Keys()
	slices.Sort(names)

	res := []ParsedTable{}
	for _, name := range names {
		m := s.Tables.Get(name)
		parsed := []ParsedProperty{}
		for _, p := range m.Properties() {
			var def any
			if p.Default() != nil {
				wire, err := p.Datatype().ToWire(ts, p.Default())
				if err != nil {
					return nil, fmt.Errorf("%s.%s default: %w", name, p.Name(), err)
				}
				def = wire
			}
			parsed = append(parsed, ParsedProperty{
				Name:     p.Name(),
				Datatype: p.Datatype(),
				Nullable: p.Nullable(),
				Unique:   p.Unique(),
				Index:    p.Index(),
				Default:  def,
			})
		}
		res = append(res, ParsedTable{m.Name, parsed})
	}

	return res, nil
}
