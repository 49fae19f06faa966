// Package record is the owning layer for properties: a Model groups the
// properties of one record type and a Record holds the values.
package record

import (
	"context"
	"errors"
	"fmt"

	"github.com/tobsdb/tdbprop/internal/property"
	"github.com/tobsdb/tdbprop/internal/types"
	"github.com/tobsdb/tdbprop/pkg"
)

var (
	ErrPropertyNotFound = errors.New("property not found")
	ErrNotFound         = errors.New("record not found")
)

// Store persists wire records. Save returns the id used, generating one
// when id is empty.
type Store interface {
	Save(ctx context.Context, table, id string, data map[string]any) (string, error)
	Load(ctx context.Context, table, id string) (map[string]any, error)
}

type Model struct {
	Name       string
	properties []*property.Property
	byName     pkg.Map[string, *property.Property]
}

func NewModel(name string, properties ...*property.Property) (*Model, error) {
	m := &Model{Name: name, byName: pkg.Map[string, *property.Property]{}}
	for _, p := range properties {
		if m.byName.Has(p.Name()) {
			return nil, fmt.Errorf("Duplicate property %s on model %s", p.Name(), name)
		}
		m.byName.Set(p.Name(), p)
		m.properties = append(m.properties, p)
	}
	return m, nil
}

// Properties returns the properties in declaration order.
func (m *Model) Properties() []*property.Property {
	out := make([]*property.Property, len(m.properties))
	copy(out, m.properties)
	return out
}

func (m *Model) Property(name string) (*property.Property, bool) {
	p, ok := m.byName[name]
	return p, ok
}

func (m *Model) New() *Record {
	return &Record{model: m, slots: pkg.Map[string, any]{}}
}

// FromWire builds a record from wire data. Missing keys are treated as
// absent; keys with no matching property are rejected.
func (m *Model) FromWire(ts types.TypeSystem, data map[string]any) (*Record, error) {
	for key := range data {
		if !m.byName.Has(key) {
			return nil, fmt.Errorf("%w: %s.%s", ErrPropertyNotFound, m.Name, key)
		}
	}

	r := m.New()
	for _, p := range m.properties {
		raw, ok := data[p.Name()]
		if !ok {
			continue
		}
		var native any
		if raw != nil {
			var err error
			native, err = p.Datatype().ToNative(ts, raw)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", m.Name, p.Name(), err)
			}
		}
		if err := p.Validate(p.Name(), native); err != nil {
			return nil, err
		}
		r.store(p, native)
	}
	return r, nil
}

// Load fetches and decodes the record stored under id.
func (m *Model) Load(ctx context.Context, store Store, ts types.TypeSystem, id string) (*Record, error) {
	data, err := store.Load(ctx, m.Name, id)
	if err != nil {
		return nil, err
	}
	r, err := m.FromWire(ts, data)
	if err != nil {
		return nil, err
	}
	r.ID = id
	return r, nil
}
