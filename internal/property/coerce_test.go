package property_test

import (
	"encoding/json"
	"errors"
	"math"
	"math/big"
	"net/url"
	"testing"

	. "github.com/tobsdb/tdbprop/internal/property"
	"github.com/tobsdb/tdbprop/internal/types"
	"gotest.tools/assert"
)

func mustBig(s string) *big.Int {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic(s)
	}
	return n
}

func TestCoerceInteger(t *testing.T) {
	p := MustNew("n", types.DatatypeInteger)

	t.Run("parse string", func(t *testing.T) {
		v, err := p.CoerceValue("n", "42")
		assert.NilError(t, err)
		assert.Equal(t, v, int64(42))
	})

	t.Run("widen and truncate", func(t *testing.T) {
		for _, in := range []any{42, int8(42), uint16(42), uint64(42), 42.9, float32(42.2), json.Number("42"), big.NewInt(42), " 42 "} {
			v, err := p.CoerceValue("n", in)
			assert.NilError(t, err, "%#v", in)
			assert.Equal(t, v, int64(42), "%#v", in)
		}
	})

	t.Run("bool", func(t *testing.T) {
		v, err := p.CoerceValue("n", true)
		assert.NilError(t, err)
		assert.Equal(t, v, int64(1))
	})

	t.Run("format error", func(t *testing.T) {
		captureErrors(t)
		_, err := p.CoerceValue("n", "not-a-number")
		assert.Assert(t, errors.Is(err, ErrConversionFormat))
		assert.ErrorContains(t, err, "'not-a-number' is not a valid value for n, must be Integer")

		var perr *Error
		assert.Assert(t, errors.As(err, &perr))
		assert.Equal(t, perr.Key, "n")
		assert.Equal(t, perr.Value, "not-a-number")
		assert.Equal(t, perr.Expected, types.DatatypeInteger)
		assert.Assert(t, perr.Err != nil)
	})

	t.Run("overflow and non-finite", func(t *testing.T) {
		captureErrors(t)
		for _, in := range []any{uint64(math.MaxUint64), math.NaN(), math.Inf(1), 1e300, mustBig("99999999999999999999")} {
			_, err := p.CoerceValue("n", in)
			assert.Assert(t, errors.Is(err, ErrConversionFormat), "%#v", in)
		}
	})

	t.Run("type incompatibility", func(t *testing.T) {
		buf := captureErrors(t)
		_, err := p.CoerceValue("n", []int{1, 2})
		assert.Assert(t, errors.Is(err, ErrTypeIncompatible))
		assert.Assert(t, !errors.Is(err, ErrConversionFormat))
		assert.ErrorContains(t, err, "can't set 'n' to '[1 2]' with type []int, must be Integer")
		assert.Assert(t, buf.Len() > 0)

		for _, in := range []any{nil, map[string]any{}, struct{}{}} {
			_, err := p.CoerceValue("n", in)
			assert.Assert(t, errors.Is(err, ErrTypeIncompatible), "%#v", in)
		}
	})
}

func TestCoerceText(t *testing.T) {
	p := MustNew("s", types.DatatypeText)

	tests := []struct {
		in   any
		want string
	}{
		{"a", "a"},
		{[]byte("b"), "b"},
		{12, "12"},
		{uint64(12), "12"},
		{1.5, "1.5"},
		{true, "true"},
		{mustBig("123456789012345678901234567890"), "123456789012345678901234567890"},
		{types.DatatypeText, "Text"},
	}
	for _, tt := range tests {
		v, err := p.CoerceValue("s", tt.in)
		assert.NilError(t, err, "%#v", tt.in)
		assert.Equal(t, v, tt.want)
	}

	captureErrors(t)
	_, err := p.CoerceValue("s", []any{"a"})
	assert.Assert(t, errors.Is(err, ErrTypeIncompatible))
	_, err = p.CoerceValue("s", map[string]any{"a": 1})
	assert.Assert(t, errors.Is(err, ErrTypeIncompatible))
	_, err = p.CoerceValue("s", nil)
	assert.Assert(t, errors.Is(err, ErrTypeIncompatible))
}

func TestCoerceTextNilPointer(t *testing.T) {
	p := MustNew("s", types.DatatypeText)
	captureErrors(t)

	for _, in := range []any{(*url.URL)(nil), (*big.Int)(nil), (*string)(nil)} {
		_, err := p.CoerceValue("s", in)
		assert.Assert(t, errors.Is(err, ErrTypeIncompatible), "%T", in)
	}

	v, err := p.CoerceValue("s", &url.URL{Scheme: "https", Host: "example.com"})
	assert.NilError(t, err)
	assert.Equal(t, v, "https://example.com")
}

func TestCoerceLargeInteger(t *testing.T) {
	p := MustNew("big", types.DatatypeLargeInteger)

	v, err := p.CoerceValue("big", "123456789012345678901234567890")
	assert.NilError(t, err)
	assert.Equal(t, v.(*big.Int).Cmp(mustBig("123456789012345678901234567890")), 0)

	v, err = p.CoerceValue("big", uint64(math.MaxUint64))
	assert.NilError(t, err)
	assert.Equal(t, v.(*big.Int).String(), "18446744073709551615")

	v, err = p.CoerceValue("big", -7.9)
	assert.NilError(t, err)
	assert.Equal(t, v.(*big.Int).Int64(), int64(-7))

	src := big.NewInt(5)
	v, err = p.CoerceValue("big", src)
	assert.NilError(t, err)
	assert.Assert(t, v.(*big.Int) != src, "coerced value must be a copy")

	captureErrors(t)
	_, err = p.CoerceValue("big", "12x")
	assert.Assert(t, errors.Is(err, ErrConversionFormat))
	_, err = p.CoerceValue("big", math.Inf(-1))
	assert.Assert(t, errors.Is(err, ErrConversionFormat))
	_, err = p.CoerceValue("big", []any{})
	assert.Assert(t, errors.Is(err, ErrTypeIncompatible))
}

func TestCoerceFloat(t *testing.T) {
	p := MustNew("f", types.DatatypeFloat)

	for _, in := range []any{"2.5", 2.5, float32(2.5), json.Number("2.5")} {
		v, err := p.CoerceValue("f", in)
		assert.NilError(t, err, "%#v", in)
		assert.Equal(t, v, 2.5)
	}

	v, err := p.CoerceValue("f", 3)
	assert.NilError(t, err)
	assert.Equal(t, v, 3.0)

	captureErrors(t)
	_, err = p.CoerceValue("f", "abc")
	assert.Assert(t, errors.Is(err, ErrConversionFormat))
	_, err = p.CoerceValue("f", map[string]int{})
	assert.Assert(t, errors.Is(err, ErrTypeIncompatible))
}

func TestCoerceNull(t *testing.T) {
	p := MustNew("nothing", types.DatatypeNull)

	v, err := p.CoerceValue("nothing", nil)
	assert.NilError(t, err)
	assert.Assert(t, v == nil)

	captureErrors(t)
	_, err = p.CoerceValue("nothing", 0)
	assert.Assert(t, errors.Is(err, ErrTypeIncompatible))
}

func TestCoerceList(t *testing.T) {
	p := MustNew("tags", types.DatatypeList)

	v, err := p.CoerceValue("tags", []string{"a", "b"})
	assert.NilError(t, err)
	assert.DeepEqual(t, v, []any{"a", "b"})

	v, err = p.CoerceValue("tags", [2]int{1, 2})
	assert.NilError(t, err)
	assert.DeepEqual(t, v, []any{1, 2})

	src := []any{1}
	v, err = p.CoerceValue("tags", src)
	assert.NilError(t, err)
	v.([]any)[0] = 2
	assert.Equal(t, src[0], 1)

	captureErrors(t)
	_, err = p.CoerceValue("tags", "ab")
	assert.Assert(t, errors.Is(err, ErrTypeIncompatible))
	_, err = p.CoerceValue("tags", nil)
	assert.Assert(t, errors.Is(err, ErrTypeIncompatible))
}

func TestCoerceDictionary(t *testing.T) {
	p := MustNew("meta", types.DatatypeDictionary)

	v, err := p.CoerceValue("meta", map[string]int{"b": 2, "a": 1})
	assert.NilError(t, err)
	d := v.(*types.Dict)
	assert.DeepEqual(t, d.Keys(), []string{"a", "b"})
	assert.DeepEqual(t, d.Map(), map[string]any{"a": 2 - 1, "b": 2})

	v, err = p.CoerceValue("meta", map[string]any{"x": "y"})
	assert.NilError(t, err)
	assert.DeepEqual(t, v.(*types.Dict).Map(), map[string]any{"x": "y"})

	src := types.DictFromMap(map[string]any{"k": "v"})
	v, err = p.CoerceValue("meta", src)
	assert.NilError(t, err)
	assert.Assert(t, v.(*types.Dict) != src)
	assert.Assert(t, v.(*types.Dict).Equal(src))

	captureErrors(t)
	_, err = p.CoerceValue("meta", map[int]string{1: "a"})
	assert.Assert(t, errors.Is(err, ErrTypeIncompatible))
	_, err = p.CoerceValue("meta", []any{})
	assert.Assert(t, errors.Is(err, ErrTypeIncompatible))
}
