package record

import (
	"context"
	"fmt"

	"github.com/tobsdb/tdbprop/internal/property"
	"github.com/tobsdb/tdbprop/internal/types"
	"github.com/tobsdb/tdbprop/pkg"
)

// Record holds one instance's values. It is not safe for concurrent use.
type Record struct {
	ID    string
	model *Model
	slots pkg.Map[string, any]
}

func (r *Record) Model() *Model { return r.model }

func (r *Record) property(key string) (*property.Property, error) {
	p, ok := r.model.Property(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrPropertyNotFound, r.model.Name, key)
	}
	return p, nil
}

func (r *Record) load(p *property.Property) any {
	if fget := p.Getter(); fget != nil {
		return fget(r.slots, p.Name())
	}
	if r.slots.Has(p.Name()) {
		return r.slots.Get(p.Name())
	}
	return p.Default()
}

func (r *Record) store(p *property.Property, value any) {
	if fset := p.Setter(); fset != nil {
		fset(r.slots, p.Name(), value)
		return
	}
	r.slots.Set(p.Name(), value)
}

// Get returns the stored value, or the property default when unset.
func (r *Record) Get(key string) (any, error) {
	p, err := r.property(key)
	if err != nil {
		return nil, err
	}
	return r.load(p), nil
}

// Set validates value and stores it. The property's update hook runs when
// the stored value changes.
func (r *Record) Set(key string, value any) error {
	p, err := r.property(key)
	if err != nil {
		return err
	}
	if err := p.Validate(key, value); err != nil {
		return err
	}

	old := r.load(p)
	r.store(p, value)

	if hook := p.OnUpdate(); hook != nil && !types.ValuesEqual(old, value) {
		hook(key, old, value)
	}
	return nil
}

// Coerce converts value into the property's native type before Set.
func (r *Record) Coerce(key string, value any) error {
	p, err := r.property(key)
	if err != nil {
		return err
	}
	native, err := p.CoerceValue(key, value)
	if err != nil {
		return err
	}
	return r.Set(key, native)
}

func (r *Record) Delete(key string) error {
	p, err := r.property(key)
	if err != nil {
		return err
	}
	if fdel := p.Deleter(); fdel != nil {
		fdel(r.slots, p.Name())
		return nil
	}
	r.slots.Delete(p.Name())
	return nil
}

// ToWire validates every property, defaults applied, and converts the values
// into wire form. Properties whose value is absent are sent as wire null.
func (r *Record) ToWire(ts types.TypeSystem) (map[string]any, error) {
	out := make(map[string]any, len(r.model.properties))
	for _, p := range r.model.properties {
		value := r.load(p)
		if err := p.Validate(p.Name(), value); err != nil {
			return nil, err
		}
		if value == nil {
			out[p.Name()] = nil
			continue
		}
		wire, err := p.Datatype().ToWire(ts, value)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", r.model.Name, p.Name(), err)
		}
		out[p.Name()] = wire
	}
	return out, nil
}

// Save validates, converts and hands the record to store. The id the store
// used is recorded on r.
func (r *Record) Save(ctx context.Context, store Store, ts types.TypeSystem) error {
	data, err := r.ToWire(ts)
	if err != nil {
		return err
	}
	id, err := store.Save(ctx, r.model.Name, r.ID, data)
	if err != nil {
		pkg.ErrorLog("save failed:", pkg.Fields("table", r.model.Name, "id", r.ID, "err", err.Error()))
		return err
	}
	r.ID = id
	return nil
}
