package types

import (
	"math/big"
	"reflect"
	"slices"
)

// Datatype is the closed set of convertible property types. Each case binds
// a native Go type and a pair of conversions through a TypeSystem.
type Datatype string

const (
	DatatypeText         Datatype = "Text"
	DatatypeInteger      Datatype = "Integer"
	DatatypeLargeInteger Datatype = "LargeInteger"
	DatatypeFloat        Datatype = "Float"
	DatatypeNull         Datatype = "Null"
	DatatypeList         Datatype = "List"
	DatatypeDictionary   Datatype = "Dictionary"
)

var VALID_BUILTIN_TYPES = []Datatype{
	DatatypeText, DatatypeInteger, DatatypeLargeInteger,
	DatatypeFloat, DatatypeNull, DatatypeList, DatatypeDictionary,
}

func (d Datatype) IsValid() bool {
	return slices.Contains(VALID_BUILTIN_TYPES, d)
}

var (
	nativeText         = reflect.TypeOf("")
	nativeInteger      = reflect.TypeOf(int64(0))
	nativeLargeInteger = reflect.TypeOf((*big.Int)(nil))
	nativeFloat        = reflect.TypeOf(float64(0))
	nativeList         = reflect.TypeOf([]any(nil))
	nativeDictionary   = reflect.TypeOf((*Dict)(nil))
)

// NativeType returns the Go type values of this datatype take in memory.
// Null has no native type and returns nil.
func (d Datatype) NativeType() reflect.Type {
	switch d {
	case DatatypeText:
		return nativeText
	case DatatypeInteger:
		return nativeInteger
	case DatatypeLargeInteger:
		return nativeLargeInteger
	case DatatypeFloat:
		return nativeFloat
	case DatatypeList:
		return nativeList
	case DatatypeDictionary:
		return nativeDictionary
	}
	return nil
}

// IsNative reports whether v is an instance of the datatype's native type.
// A nil *big.Int or *Dict is not a value of either type.
func (d Datatype) IsNative(v any) bool {
	switch v := v.(type) {
	case nil:
		return d == DatatypeNull
	case string:
		return d == DatatypeText
	case int64:
		return d == DatatypeInteger
	case *big.Int:
		return d == DatatypeLargeInteger && v != nil
	case float64:
		return d == DatatypeFloat
	case []any:
		return d == DatatypeList
	case *Dict:
		return d == DatatypeDictionary && v != nil
	}
	return false
}

// ToWire converts a native value into the wire form defined by ts.
// Errors from the type system are returned unchanged.
func (d Datatype) ToWire(ts TypeSystem, value any) (any, error) {
	fn, err := d.converter(ts.Database())
	if err != nil {
		return nil, err
	}
	return fn(value)
}

// ToNative converts a wire value back into its native form.
// Errors from the type system are returned unchanged.
func (d Datatype) ToNative(ts TypeSystem, value any) (any, error) {
	fn, err := d.converter(ts.Native())
	if err != nil {
		return nil, err
	}
	return fn(value)
}

func (d Datatype) converter(c Converter) (func(any) (any, error), error) {
	switch d {
	case DatatypeText:
		return c.ToText, nil
	case DatatypeInteger:
		return c.ToInteger, nil
	case DatatypeLargeInteger:
		return c.ToLargeInteger, nil
	case DatatypeFloat:
		return c.ToFloat, nil
	case DatatypeNull:
		return c.ToNull, nil
	case DatatypeList:
		return c.ToList, nil
	case DatatypeDictionary:
		return c.ToDictionary, nil
	}
	return nil, unsupportedDatatypeError(d)
}
