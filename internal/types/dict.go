package types

import (
	"math/big"
	"reflect"

	sorted "github.com/tobshub/go-sortedmap"
)

type dictEntry struct {
	Key   string
	Value any
}

func dictEntryComparisonFunc(a, b dictEntry) bool {
	return a.Key < b.Key
}

// Dict is the native value of the Dictionary datatype: a string-keyed
// mapping iterated in ascending key order.
//
// A Dict is not safe for concurrent mutation. Values shared as property
// defaults must be treated as read-only.
type Dict struct {
	m *sorted.SortedMap[string, dictEntry]
}

func NewDict() *Dict {
	return &Dict{m: sorted.New[string, dictEntry](0, dictEntryComparisonFunc)}
}

func DictFromMap(src map[string]any) *Dict {
	d := NewDict()
	for k, v := range src {
		d.Set(k, v)
	}
	return d
}

func (d *Dict) Set(key string, value any) {
	e := dictEntry{Key: key, Value: value}
	if !d.m.Insert(key, e) {
		d.m.Replace(key, e)
	}
}

func (d *Dict) Get(key string) (any, bool) {
	e, ok := d.m.Get(key)
	if !ok {
		return nil, false
	}
	return e.Value, true
}

func (d *Dict) Has(key string) bool {
	_, ok := d.m.Get(key)
	return ok
}

func (d *Dict) entries() []dictEntry {
	entries := []dictEntry{}
	iterCh, err := d.m.IterCh()
	if err != nil {
		// empty map
		return entries
	}
	for rec := range iterCh.Records() {
		entries = append(entries, rec.Val)
	}
	return entries
}

// Keys returns the keys in ascending order.
func (d *Dict) Keys() []string {
	entries := d.entries()
	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = e.Key
	}
	return keys
}

func (d *Dict) Len() int { return len(d.entries()) }

// Map returns a plain map copy of the entries.
func (d *Dict) Map() map[string]any {
	entries := d.entries()
	m := make(map[string]any, len(entries))
	for _, e := range entries {
		m[e.Key] = e.Value
	}
	return m
}

// Equal compares keys and values with ValuesEqual.
func (d *Dict) Equal(other *Dict) bool {
	if d == nil || other == nil {
		return d == other
	}
	a, b := d.entries(), other.entries()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Key != b[i].Key || !ValuesEqual(a[i].Value, b[i].Value) {
			return false
		}
	}
	return true
}

// ValuesEqual compares native values. Dicts compare by entries, lists and
// maps element by element, big integers by value. Anything else falls back
// to reflect.DeepEqual.
func ValuesEqual(a, b any) bool {
	switch a := a.(type) {
	case *Dict:
		b, ok := b.(*Dict)
		return ok && a.Equal(b)
	case []any:
		b, ok := b.([]any)
		if !ok || len(a) != len(b) {
			return false
		}
		for i := range a {
			if !ValuesEqual(a[i], b[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		b, ok := b.(map[string]any)
		if !ok || len(a) != len(b) {
			return false
		}
		for k, av := range a {
			bv, ok := b[k]
			if !ok || !ValuesEqual(av, bv) {
				return false
			}
		}
		return true
	case *big.Int:
		b, ok := b.(*big.Int)
		if !ok {
			return false
		}
		if a == nil || b == nil {
			return a == b
		}
		return a.Cmp(b) == 0
	}
	return reflect.DeepEqual(a, b)
}
