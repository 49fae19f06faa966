package types_test

import (
	"math/big"
	"testing"

	. "github.com/tobsdb/tdbprop/internal/types"
	"gotest.tools/assert"
)

func TestDictOrdering(t *testing.T) {
	d := NewDict()
	d.Set("c", 3)
	d.Set("a", 1)
	d.Set("b", 2)

	assert.DeepEqual(t, d.Keys(), []string{"a", "b", "c"})
	assert.Equal(t, d.Len(), 3)
}

func TestDictReplace(t *testing.T) {
	d := NewDict()
	d.Set("a", 1)
	d.Set("a", 2)

	v, ok := d.Get("a")
	assert.Assert(t, ok)
	assert.Equal(t, v, 2)
	assert.Equal(t, d.Len(), 1)
}

func TestDictEmpty(t *testing.T) {
	d := NewDict()
	assert.Equal(t, d.Len(), 0)
	assert.DeepEqual(t, d.Keys(), []string{})
	assert.DeepEqual(t, d.Map(), map[string]any{})

	_, ok := d.Get("missing")
	assert.Assert(t, !ok)
	assert.Assert(t, !d.Has("missing"))
}

func TestDictFromMap(t *testing.T) {
	d := DictFromMap(map[string]any{"z": "last", "m": []any{1.0}, "a": nil})

	assert.DeepEqual(t, d.Keys(), []string{"a", "m", "z"})
	assert.DeepEqual(t, d.Map(), map[string]any{"z": "last", "m": []any{1.0}, "a": nil})
	assert.Assert(t, d.Has("a"))
}

func TestDictEqual(t *testing.T) {
	a := DictFromMap(map[string]any{"x": 1, "y": []any{"z"}})
	b := DictFromMap(map[string]any{"y": []any{"z"}, "x": 1})
	c := DictFromMap(map[string]any{"x": 2, "y": []any{"z"}})

	assert.Assert(t, a.Equal(b))
	assert.Assert(t, !a.Equal(c))
	assert.Assert(t, !a.Equal(NewDict()))
	assert.Assert(t, !a.Equal(nil))
}

func TestDictEqualNested(t *testing.T) {
	build := func(n int64) *Dict {
		return DictFromMap(map[string]any{
			"inner": DictFromMap(map[string]any{"k": "v"}),
			"list":  []any{DictFromMap(map[string]any{"k": n}), "x"},
			"big":   new(big.Int).Lsh(big.NewInt(1), 80),
		})
	}

	assert.Assert(t, build(1).Equal(build(1)))
	assert.Assert(t, !build(1).Equal(build(2)))
}

func TestValuesEqual(t *testing.T) {
	assert.Assert(t, ValuesEqual(big.NewInt(7), big.NewInt(7)))
	assert.Assert(t, !ValuesEqual(big.NewInt(7), big.NewInt(8)))
	assert.Assert(t, !ValuesEqual(big.NewInt(7), int64(7)))
	assert.Assert(t, ValuesEqual([]any{NewDict()}, []any{NewDict()}))
	assert.Assert(t, !ValuesEqual([]any{"a"}, []any{"a", "b"}))
	assert.Assert(t, ValuesEqual(
		map[string]any{"d": DictFromMap(map[string]any{"a": 1})},
		map[string]any{"d": DictFromMap(map[string]any{"a": 1})},
	))
	assert.Assert(t, !ValuesEqual(nil, NewDict()))
	assert.Assert(t, ValuesEqual(nil, nil))
}
