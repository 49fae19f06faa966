package props

import "slices"

type FieldProp string

var VALID_BUILTIN_PROPS = []FieldProp{
	FieldPropDefault, FieldPropNullable, FieldPropUnique,
	FieldPropIndex, FieldPropName,
}

const (
	FieldPropDefault  FieldProp = "default"
	FieldPropNullable FieldProp = "nullable" // nullable(true/false)
	FieldPropUnique   FieldProp = "unique"   // unique(true/false)
	FieldPropIndex    FieldProp = "index"    // index(true/false)
	FieldPropName     FieldProp = "name"     // name(stored_name)
)

func (p FieldProp) IsValid() bool {
	return slices.Contains(VALID_BUILTIN_PROPS, p)
}

// IsBool reports whether the prop takes a true/false value.
func (p FieldProp) IsBool() bool {
	return p == FieldPropNullable || p == FieldPropUnique || p == FieldPropIndex
}
