package types

import (
	"errors"
	"fmt"
)

// Converter is one direction of a TypeSystem. Every function takes a single
// value and returns its converted form, failing on malformed input.
type Converter interface {
	ToText(value any) (any, error)
	ToInteger(value any) (any, error)
	ToLargeInteger(value any) (any, error)
	ToFloat(value any) (any, error)
	ToNull(value any) (any, error)
	ToList(value any) (any, error)
	ToDictionary(value any) (any, error)
}

// TypeSystem performs the actual wire-level conversions. Database converts
// native values to wire values, Native converts wire values back.
type TypeSystem interface {
	Database() Converter
	Native() Converter
}

var ErrUnsupportedDatatype = errors.New("unsupported datatype")

// if schema validation is working properly this error should never occur
func unsupportedDatatypeError(d Datatype) error {
	return fmt.Errorf("%w: %q", ErrUnsupportedDatatype, string(d))
}
