package record_test

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"testing"

	"github.com/tobsdb/tdbprop/internal/property"
	. "github.com/tobsdb/tdbprop/internal/record"
	"github.com/tobsdb/tdbprop/internal/types"
	"github.com/tobsdb/tdbprop/internal/typesystem"
	"github.com/tobsdb/tdbprop/pkg"
	"gotest.tools/assert"
)

func init() { pkg.SetLogLevel(pkg.LogLevelNone) }

type memStore struct {
	rows   map[string]map[string]any
	nextId int
}

func newMemStore() *memStore { return &memStore{rows: map[string]map[string]any{}} }

func (s *memStore) Save(_ context.Context, table, id string, data map[string]any) (string, error) {
	if id == "" {
		s.nextId++
		id = fmt.Sprint(s.nextId)
	}
	s.rows[table+"/"+id] = data
	return id, nil
}

func (s *memStore) Load(_ context.Context, table, id string) (map[string]any, error) {
	row, ok := s.rows[table+"/"+id]
	if !ok {
		return nil, ErrNotFound
	}
	return row, nil
}

func newUserModel(t *testing.T, opts ...property.Option) *Model {
	t.Helper()
	m, err := NewModel("user",
		property.MustNew("name", types.DatatypeText, property.Nullable(false)),
		property.MustNew("age", types.DatatypeInteger, property.WithDefault(int64(18))),
		property.MustNew("karma", types.DatatypeLargeInteger),
		property.MustNew("score", types.DatatypeFloat),
		property.MustNew("tags", types.DatatypeList),
		property.MustNew("meta", types.DatatypeDictionary, opts...),
	)
	assert.NilError(t, err)
	return m
}

func TestNewModelDuplicate(t *testing.T) {
	_, err := NewModel("a",
		property.MustNew("b", types.DatatypeText),
		property.MustNew("c", types.DatatypeText, property.WithName("b")),
	)
	assert.ErrorContains(t, err, "Duplicate property b on model a")
}

func TestModelProperties(t *testing.T) {
	m := newUserModel(t)
	names := []string{}
	for _, p := range m.Properties() {
		names = append(names, p.Name())
	}
	assert.DeepEqual(t, names, []string{"name", "age", "karma", "score", "tags", "meta"})

	_, ok := m.Property("missing")
	assert.Assert(t, !ok)
}

func TestRecordGetSet(t *testing.T) {
	r := newUserModel(t).New()

	v, err := r.Get("age")
	assert.NilError(t, err)
	assert.Equal(t, v, int64(18))

	assert.NilError(t, r.Set("age", int64(30)))
	v, _ = r.Get("age")
	assert.Equal(t, v, int64(30))

	assert.Assert(t, errors.Is(r.Set("age", "30"), property.ErrTypeMismatch))
	assert.Assert(t, errors.Is(r.Set("name", nil), property.ErrNullConstraint))
	assert.Assert(t, errors.Is(r.Set("nope", 1), ErrPropertyNotFound))

	assert.NilError(t, r.Delete("age"))
	v, _ = r.Get("age")
	assert.Equal(t, v, int64(18))
}

func TestRecordCoerce(t *testing.T) {
	r := newUserModel(t).New()

	assert.NilError(t, r.Coerce("age", "42"))
	v, _ := r.Get("age")
	assert.Equal(t, v, int64(42))

	assert.NilError(t, r.Coerce("meta", map[string]string{"b": "2", "a": "1"}))
	v, _ = r.Get("meta")
	assert.DeepEqual(t, v.(*types.Dict).Keys(), []string{"a", "b"})

	assert.Assert(t, errors.Is(r.Coerce("age", "forty"), property.ErrConversionFormat))
	assert.Assert(t, errors.Is(r.Coerce("age", []int{1, 2}), property.ErrTypeIncompatible))
}

func TestRecordOnUpdate(t *testing.T) {
	calls := []string{}
	hook := func(key string, old, new any) {
		calls = append(calls, fmt.Sprintf("%s:%v->%v", key, old, new))
	}
	m, err := NewModel("counter", property.MustNew("n", types.DatatypeInteger, property.OnUpdate(hook)))
	assert.NilError(t, err)

	r := m.New()
	assert.NilError(t, r.Set("n", int64(1)))
	assert.NilError(t, r.Set("n", int64(1)))
	assert.NilError(t, r.Set("n", int64(2)))

	assert.DeepEqual(t, calls, []string{"n:<nil>->1", "n:1->2"})
}

func TestRecordOnUpdateNestedDict(t *testing.T) {
	calls := 0
	hook := property.OnUpdate(func(string, any, any) { calls++ })
	r := newUserModel(t, hook).New()

	meta := func(role string) *types.Dict {
		return types.DictFromMap(map[string]any{
			"profile": types.DictFromMap(map[string]any{"role": role}),
			"perms":   []any{types.DictFromMap(map[string]any{"read": true})},
		})
	}

	assert.NilError(t, r.Set("meta", meta("admin")))
	assert.NilError(t, r.Set("meta", meta("admin")))
	assert.Equal(t, calls, 1)

	assert.NilError(t, r.Set("meta", meta("guest")))
	assert.Equal(t, calls, 2)
}

func TestRecordCustomAccessors(t *testing.T) {
	upper := property.WithSetter(func(s property.Slots, key string, value any) {
		s.Set(key, strings.ToUpper(value.(string)))
	})
	prefixed := property.WithGetter(func(s property.Slots, key string) any {
		v := s.Get(key)
		if v == nil {
			return nil
		}
		return "code:" + v.(string)
	})
	deleted := []string{}
	keep := property.WithDeleter(func(s property.Slots, key string) {
		deleted = append(deleted, key)
	})

	m, err := NewModel("item", property.MustNew("code", types.DatatypeText, upper, prefixed, keep))
	assert.NilError(t, err)

	r := m.New()
	assert.NilError(t, r.Set("code", "abc"))
	v, _ := r.Get("code")
	assert.Equal(t, v, "code:ABC")

	assert.NilError(t, r.Delete("code"))
	assert.DeepEqual(t, deleted, []string{"code"})
	v, _ = r.Get("code")
	assert.Equal(t, v, "code:ABC")
}

func TestRecordWireRoundTrip(t *testing.T) {
	ts := typesystem.NewJSON()
	m := newUserModel(t)
	r := m.New()

	assert.NilError(t, r.Set("name", "ada"))
	assert.NilError(t, r.Coerce("karma", "123456789012345678901234567890"))
	assert.NilError(t, r.Set("score", 9.5))
	assert.NilError(t, r.Set("tags", []any{"x", "y"}))
	assert.NilError(t, r.Set("meta", types.DictFromMap(map[string]any{"k": "v"})))

	wire, err := r.ToWire(ts)
	assert.NilError(t, err)
	assert.DeepEqual(t, wire, map[string]any{
		"name":  "ada",
		"age":   int64(18),
		"karma": "123456789012345678901234567890",
		"score": 9.5,
		"tags":  []any{"x", "y"},
		"meta":  map[string]any{"k": "v"},
	})

	back, err := m.FromWire(ts, wire)
	assert.NilError(t, err)
	for _, key := range []string{"name", "age", "score", "tags"} {
		want, _ := r.Get(key)
		got, _ := back.Get(key)
		assert.DeepEqual(t, got, want)
	}
	karma, _ := back.Get("karma")
	assert.Equal(t, karma.(*big.Int).String(), "123456789012345678901234567890")
	meta, _ := back.Get("meta")
	assert.DeepEqual(t, meta.(*types.Dict).Map(), map[string]any{"k": "v"})
}

func TestRecordToWireValidates(t *testing.T) {
	r := newUserModel(t).New()
	_, err := r.ToWire(typesystem.NewJSON())
	assert.Assert(t, errors.Is(err, property.ErrNullConstraint))
}

func TestFromWireErrors(t *testing.T) {
	ts := typesystem.NewJSON()
	m := newUserModel(t)

	t.Run("unknown key", func(t *testing.T) {
		_, err := m.FromWire(ts, map[string]any{"name": "a", "nope": 1})
		assert.Assert(t, errors.Is(err, ErrPropertyNotFound))
	})

	t.Run("null wire value", func(t *testing.T) {
		_, err := m.FromWire(ts, map[string]any{"name": nil})
		assert.Assert(t, errors.Is(err, property.ErrNullConstraint))
	})

	t.Run("external conversion error", func(t *testing.T) {
		_, err := m.FromWire(ts, map[string]any{"name": "a", "age": "old"})
		assert.Assert(t, errors.Is(err, typesystem.ErrMalformed))
		assert.ErrorContains(t, err, "user.age")
	})
}

func TestSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	ts := typesystem.NewJSON()
	store := newMemStore()
	m := newUserModel(t)

	r := m.New()
	assert.NilError(t, r.Set("name", "grace"))
	assert.NilError(t, r.Save(ctx, store, ts))
	assert.Equal(t, r.ID, "1")

	loaded, err := m.Load(ctx, store, ts, r.ID)
	assert.NilError(t, err)
	assert.Equal(t, loaded.ID, "1")
	name, _ := loaded.Get("name")
	assert.Equal(t, name, "grace")

	_, err = m.Load(ctx, store, ts, "404")
	assert.Assert(t, errors.Is(err, ErrNotFound))

	invalid := m.New()
	assert.Assert(t, errors.Is(invalid.Save(ctx, store, ts), property.ErrNullConstraint))
	assert.Equal(t, len(store.rows), 1)
}
