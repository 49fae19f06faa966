// Package typesystem provides the JSON type system: the wire values it
// produces marshal directly with encoding/json and the native direction
// accepts whatever encoding/json decodes.
//
// Precision: Integer travels as a JSON number. Decoders that do not use
// json.Number read it as float64, so integers beyond 2^53 lose precision.
// LargeInteger travels as a decimal string and is always exact. Numbers
// nested in a List or Dictionary decode to int64 when integral and in range,
// otherwise to float64, so an integral float element comes back as int64.
package typesystem

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"

	"github.com/tobsdb/tdbprop/internal/types"
)

var ErrMalformed = errors.New("malformed value")

func malformedError(fn string, value any) error {
	return fmt.Errorf("%w: %s cannot convert %v (%T)", ErrMalformed, fn, value, value)
}

// JSON implements types.TypeSystem.
type JSON struct{}

func NewJSON() JSON { return JSON{} }

func (JSON) Database() types.Converter { return jsonDatabase{} }
func (JSON) Native() types.Converter   { return jsonNative{} }

// jsonDatabase converts native values into JSON-ready wire values.
type jsonDatabase struct{}

func (jsonDatabase) ToText(value any) (any, error) {
	s, ok := value.(string)
	if !ok {
		return nil, malformedError("database.ToText", value)
	}
	return s, nil
}

func (jsonDatabase) ToInteger(value any) (any, error) {
	i, ok := value.(int64)
	if !ok {
		return nil, malformedError("database.ToInteger", value)
	}
	return i, nil
}

func (jsonDatabase) ToLargeInteger(value any) (any, error) {
	n, ok := value.(*big.Int)
	if !ok || n == nil {
		return nil, malformedError("database.ToLargeInteger", value)
	}
	return n.String(), nil
}

func (jsonDatabase) ToFloat(value any) (any, error) {
	f, ok := value.(float64)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		// JSON has no representation for NaN or Inf
		return nil, malformedError("database.ToFloat", value)
	}
	return f, nil
}

func (jsonDatabase) ToNull(value any) (any, error) {
	if value != nil {
		return nil, malformedError("database.ToNull", value)
	}
	return nil, nil
}

func (jsonDatabase) ToList(value any) (any, error) {
	l, ok := value.([]any)
	if !ok {
		return nil, malformedError("database.ToList", value)
	}
	out := make([]any, len(l))
	for i, v := range l {
		w, err := wireElement(v)
		if err != nil {
			return nil, err
		}
		out[i] = w
	}
	return out, nil
}

func (jsonDatabase) ToDictionary(value any) (any, error) {
	d, ok := value.(*types.Dict)
	if !ok || d == nil {
		return nil, malformedError("database.ToDictionary", value)
	}
	out := make(map[string]any, d.Len())
	for _, k := range d.Keys() {
		v, _ := d.Get(k)
		w, err := wireElement(v)
		if err != nil {
			return nil, err
		}
		out[k] = w
	}
	return out, nil
}

// wireElement converts nested container values. Scalars pass through and
// are left to encoding/json.
func wireElement(v any) (any, error) {
	db := jsonDatabase{}
	switch v := v.(type) {
	case *big.Int:
		return db.ToLargeInteger(v)
	case []any:
		return db.ToList(v)
	case *types.Dict:
		return db.ToDictionary(v)
	}
	return v, nil
}

// jsonNative converts decoded JSON back into native values.
type jsonNative struct{}

func (jsonNative) ToText(value any) (any, error) {
	s, ok := value.(string)
	if !ok {
		return nil, malformedError("native.ToText", value)
	}
	return s, nil
}

func (jsonNative) ToInteger(value any) (any, error) {
	switch v := value.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case float64:
		if v != math.Trunc(v) || v < math.MinInt64 || v >= math.MaxInt64 {
			return nil, malformedError("native.ToInteger", value)
		}
		return int64(v), nil
	case json.Number:
		i, err := v.Int64()
		if err != nil {
			return nil, fmt.Errorf("%w: native.ToInteger: %s", ErrMalformed, err)
		}
		return i, nil
	}
	return nil, malformedError("native.ToInteger", value)
}

func (jsonNative) ToLargeInteger(value any) (any, error) {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case json.Number:
		s = v.String()
	case *big.Int:
		if v == nil {
			return nil, malformedError("native.ToLargeInteger", value)
		}
		return new(big.Int).Set(v), nil
	default:
		return nil, malformedError("native.ToLargeInteger", value)
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, malformedError("native.ToLargeInteger", value)
	}
	return n, nil
}

func (jsonNative) ToFloat(value any) (any, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case int64:
		return float64(v), nil
	case int:
		return float64(v), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return nil, fmt.Errorf("%w: native.ToFloat: %s", ErrMalformed, err)
		}
		return f, nil
	}
	return nil, malformedError("native.ToFloat", value)
}

func (jsonNative) ToNull(value any) (any, error) {
	if value != nil {
		return nil, malformedError("native.ToNull", value)
	}
	return nil, nil
}

// ToList converts elements with nativeElement; nested objects become *types.Dict.
func (jsonNative) ToList(value any) (any, error) {
	l, ok := value.([]any)
	if !ok {
		return nil, malformedError("native.ToList", value)
	}
	out := make([]any, len(l))
	for i, v := range l {
		out[i] = nativeElement(v)
	}
	return out, nil
}

func (jsonNative) ToDictionary(value any) (any, error) {
	m, ok := value.(map[string]any)
	if !ok {
		return nil, malformedError("native.ToDictionary", value)
	}
	d := types.NewDict()
	for k, v := range m {
		d.Set(k, nativeElement(v))
	}
	return d, nil
}

func nativeElement(v any) any {
	switch v := v.(type) {
	case []any:
		out, _ := jsonNative{}.ToList(v)
		return out
	case map[string]any:
		out, _ := jsonNative{}.ToDictionary(v)
		return out
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		if f, err := v.Float64(); err == nil {
			return f
		}
		return v.String()
	}
	return v
}
