package property

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/tobsdb/tdbprop/internal/types"
	"github.com/tobsdb/tdbprop/pkg"
)

// errNotApplicable marks inputs the target type cannot be built from at all.
var errNotApplicable = errors.New("not applicable")

// CoerceValue converts value into the property's native type the way that
// type's constructor would: strings are parsed, numbers widened or
// truncated, sequences and string-keyed maps copied. A string is not split
// into a List and a sequence or mapping is not rendered as Text; both are
// incompatible.
func (p *Property) CoerceValue(key string, value any) (any, error) {
	out, err := coerce(p.datatype, value)
	if err == nil {
		return out, nil
	}

	if errors.Is(err, errNotApplicable) {
		pkg.ErrorLog("Property Coerce Error: can't set attribute",
			pkg.Fields("key", key, "value", value, "type", fmt.Sprintf("%T", value), "expected", p.datatype))
		return nil, &Error{Kind: ErrTypeIncompatible, Key: key, Value: value, Expected: p.datatype}
	}

	pkg.ErrorLog("Property Coerce Error: not a valid value",
		pkg.Fields("key", key, "value", value, "expected", p.datatype))
	return nil, &Error{Kind: ErrConversionFormat, Key: key, Value: value, Expected: p.datatype, Err: err}
}

func coerce(d types.Datatype, value any) (any, error) {
	switch d {
	case types.DatatypeText:
		return coerceText(value)
	case types.DatatypeInteger:
		return coerceInteger(value)
	case types.DatatypeLargeInteger:
		return coerceLargeInteger(value)
	case types.DatatypeFloat:
		return coerceFloat(value)
	case types.DatatypeNull:
		if value == nil {
			return nil, nil
		}
		return nil, errNotApplicable
	case types.DatatypeList:
		return coerceList(value)
	case types.DatatypeDictionary:
		return coerceDictionary(value)
	}
	return nil, errNotApplicable
}

func coerceText(value any) (any, error) {
	if rv := reflect.ValueOf(value); rv.Kind() == reflect.Ptr && rv.IsNil() {
		return nil, errNotApplicable
	}
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case bool:
		return strconv.FormatBool(v), nil
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32), nil
	case *big.Int:
		if v == nil {
			return nil, errNotApplicable
		}
		return v.String(), nil
	case fmt.Stringer:
		return v.String(), nil
	}

	if i, ok := asInt64(value); ok {
		return strconv.FormatInt(i, 10), nil
	}
	if u, ok := value.(uint64); ok {
		return strconv.FormatUint(u, 10), nil
	}
	if u, ok := value.(uint); ok {
		return strconv.FormatUint(uint64(u), 10), nil
	}
	if rv := reflect.ValueOf(value); rv.Kind() == reflect.String {
		return rv.String(), nil
	}
	return nil, errNotApplicable
}

func coerceInteger(value any) (any, error) {
	if i, ok := asInt64(value); ok {
		return i, nil
	}

	switch v := value.(type) {
	case string:
		return strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	case json.Number:
		return v.Int64()
	case bool:
		if v {
			return int64(1), nil
		}
		return int64(0), nil
	case uint:
		return uintToInt64(uint64(v))
	case uint64:
		return uintToInt64(v)
	case float32:
		return floatToInt64(float64(v))
	case float64:
		return floatToInt64(v)
	case *big.Int:
		if v == nil {
			return nil, errNotApplicable
		}
		if !v.IsInt64() {
			return nil, fmt.Errorf("%s overflows int64", v)
		}
		return v.Int64(), nil
	}
	return nil, errNotApplicable
}

func coerceLargeInteger(value any) (any, error) {
	if i, ok := asInt64(value); ok {
		return big.NewInt(i), nil
	}

	switch v := value.(type) {
	case string:
		n, ok := new(big.Int).SetString(strings.TrimSpace(v), 10)
		if !ok {
			return nil, fmt.Errorf("invalid integer literal %q", v)
		}
		return n, nil
	case json.Number:
		n, ok := new(big.Int).SetString(v.String(), 10)
		if !ok {
			return nil, fmt.Errorf("invalid integer literal %q", v.String())
		}
		return n, nil
	case bool:
		if v {
			return big.NewInt(1), nil
		}
		return big.NewInt(0), nil
	case uint:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	case float32:
		return floatToBigInt(float64(v))
	case float64:
		return floatToBigInt(v)
	case *big.Int:
		if v == nil {
			return nil, errNotApplicable
		}
		return new(big.Int).Set(v), nil
	}
	return nil, errNotApplicable
}

func coerceFloat(value any) (any, error) {
	if i, ok := asInt64(value); ok {
		return float64(i), nil
	}

	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(v), 64)
	case json.Number:
		return v.Float64()
	case bool:
		if v {
			return 1.0, nil
		}
		return 0.0, nil
	case uint:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case *big.Int:
		if v == nil {
			return nil, errNotApplicable
		}
		f, _ := new(big.Float).SetInt(v).Float64()
		if math.IsInf(f, 0) {
			return nil, fmt.Errorf("%s overflows float64", v)
		}
		return f, nil
	}
	return nil, errNotApplicable
}

func coerceList(value any) (any, error) {
	if value == nil {
		return nil, errNotApplicable
	}
	if v, ok := value.([]any); ok {
		out := make([]any, len(v))
		copy(out, v)
		return out, nil
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return []any{}, nil
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out, nil
	}
	return nil, errNotApplicable
}

func coerceDictionary(value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return nil, errNotApplicable
	case *types.Dict:
		if v == nil {
			return nil, errNotApplicable
		}
		return types.DictFromMap(v.Map()), nil
	case map[string]any:
		return types.DictFromMap(v), nil
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, errNotApplicable
	}
	d := types.NewDict()
	iter := rv.MapRange()
	for iter.Next() {
		d.Set(iter.Key().String(), iter.Value().Interface())
	}
	return d, nil
}

func asInt64(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	}
	return 0, false
}

func uintToInt64(u uint64) (int64, error) {
	if u > math.MaxInt64 {
		return 0, fmt.Errorf("%d overflows int64", u)
	}
	return int64(u), nil
}

func floatToInt64(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("cannot convert %v to integer", f)
	}
	t := math.Trunc(f)
	if t < math.MinInt64 || t >= math.MaxInt64 {
		return 0, fmt.Errorf("%v overflows int64", f)
	}
	return int64(t), nil
}

func floatToBigInt(f float64) (*big.Int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("cannot convert %v to integer", f)
	}
	n, _ := big.NewFloat(math.Trunc(f)).Int(nil)
	return n, nil
}
