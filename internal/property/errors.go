package property

import (
	"errors"
	"fmt"

	"github.com/tobsdb/tdbprop/internal/types"
)

var (
	ErrNullConstraint   = errors.New("null constraint violation")
	ErrTypeMismatch     = errors.New("type mismatch")
	ErrConversionFormat = errors.New("invalid value for type")
	ErrTypeIncompatible = errors.New("incompatible value type")
)

// Error reports a rejected property value. Kind is one of the package
// sentinels; Err is the underlying parse error, if any.
type Error struct {
	Kind     error
	Key      string
	Value    any
	Expected types.Datatype
	Err      error
}

func (e *Error) Error() string {
	var msg string
	switch e.Kind {
	case ErrNullConstraint:
		msg = fmt.Sprintf("%s: '%s' cannot be set to '%v'", e.Kind, e.Key, e.Value)
	case ErrTypeIncompatible:
		msg = fmt.Sprintf("%s: can't set '%s' to '%v' with type %T, must be %s",
			e.Kind, e.Key, e.Value, e.Value, e.Expected)
	default:
		msg = fmt.Sprintf("%s: '%v' is not a valid value for %s, must be %s",
			e.Kind, e.Value, e.Key, e.Expected)
	}
	if e.Err != nil {
		msg += "; " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
