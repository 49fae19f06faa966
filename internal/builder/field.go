package builder

import (
	"fmt"

	"github.com/tobsdb/tdbprop/internal/parser"
	"github.com/tobsdb/tdbprop/internal/property"
	"github.com/tobsdb/tdbprop/internal/props"
	"github.com/tobsdb/tdbprop/internal/types"
)

// field local rules:
// - Null type can't have nullable prop false
// - can't have List/Dictionary type and default prop
// - can't have List/Dictionary type and unique prop true
// - default prop must coerce into the field type
func CheckFieldRules(field *parser.Field) error {
	if field.BuiltinType == types.DatatypeNull {
		if _nullable, ok := field.Properties[props.FieldPropNullable]; ok {
			nullable, _ := props.ParseBoolPropSafe(props.FieldPropNullable, _nullable)
			if !nullable {
				return fmt.Errorf("field(%s %s) cannot have nullable(false)", field.Name, field.BuiltinType)
			}
		}
	}

	if field.BuiltinType == types.DatatypeList || field.BuiltinType == types.DatatypeDictionary {
		if _, ok := field.Properties[props.FieldPropDefault]; ok {
			return fmt.Errorf("field(%s %s) cannot have default prop", field.Name, field.BuiltinType)
		}

		if _unique, ok := field.Properties[props.FieldPropUnique]; ok {
			unique, _ := props.ParseBoolPropSafe(props.FieldPropUnique, _unique)
			if unique {
				return fmt.Errorf("field(%s %s) cannot have unique prop", field.Name, field.BuiltinType)
			}
		}
	}

	if raw, ok := field.Properties[props.FieldPropDefault]; ok {
		if _, err := defaultValue(field, raw); err != nil {
			return fmt.Errorf("field(%s %s) default(%s) is not valid: %s", field.Name, field.BuiltinType, raw, err)
		}
	}

	return nil
}

func defaultValue(field *parser.Field, raw string) (any, error) {
	if field.BuiltinType == types.DatatypeNull {
		return nil, fmt.Errorf("Null type has no default")
	}
	tmp, err := property.New(field.Name, field.BuiltinType)
	if err != nil {
		return nil, err
	}
	return tmp.CoerceValue(field.Name, props.ParseDefaultPropSafe(raw))
}

// NewProperty turns a parsed field into a property. The field name is the
// inferred name; a name prop makes it explicit.
func NewProperty(field *parser.Field, extra ...property.Option) (*property.Property, error) {
	if err := CheckFieldRules(field); err != nil {
		return nil, err
	}

	opts := []property.Option{}
	for prop, raw := range field.Properties {
		switch prop {
		case props.FieldPropDefault:
			def, err := defaultValue(field, raw)
			if err != nil {
				return nil, err
			}
			opts = append(opts, property.WithDefault(def))
		case props.FieldPropNullable:
			b, err := props.ParseBoolPropSafe(prop, raw)
			if err != nil {
				return nil, err
			}
			opts = append(opts, property.Nullable(b))
		case props.FieldPropUnique:
			b, err := props.ParseBoolPropSafe(prop, raw)
			if err != nil {
				return nil, err
			}
			opts = append(opts, property.Unique(b))
		case props.FieldPropIndex:
			b, err := props.ParseBoolPropSafe(prop, raw)
			if err != nil {
				return nil, err
			}
			opts = append(opts, property.Index(b))
		case props.FieldPropName:
			name, err := props.ParseNamePropSafe(raw)
			if err != nil {
				return nil, err
			}
			opts = append(opts, property.WithName(name))
		}
	}

	return property.New(field.Name, field.BuiltinType, append(opts, extra...)...)
}
