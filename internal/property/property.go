// Package property binds a datatype to per-attribute configuration and
// gates values with validation and coercion before they reach a store.
package property

import (
	"fmt"

	"github.com/tobsdb/tdbprop/internal/types"
	"github.com/tobsdb/tdbprop/pkg"
)

type NameSource int

const (
	NameInferred NameSource = iota
	NameExplicit
)

func (s NameSource) String() string {
	if s == NameExplicit {
		return "explicit"
	}
	return "inferred"
}

// Slots is the storage a record exposes to custom accessors.
type Slots interface {
	Get(key string) any
	Set(key string, value any)
	Delete(key string)
}

type (
	Getter  func(s Slots, key string) any
	Setter  func(s Slots, key string, value any)
	Deleter func(s Slots, key string)

	// UpdateHook is called by the owning record layer when a value changes.
	UpdateHook func(key string, old, new any)

	// Constraint is recorded for the storage layer; it is never evaluated here.
	Constraint func(value any) bool
)

// Property is immutable once built and safe to share between goroutines.
type Property struct {
	datatype   types.Datatype
	name       string
	nameSource NameSource

	def      any
	nullable bool
	unique   bool
	index    bool
	lenient  bool

	onUpdate   UpdateHook
	constraint Constraint

	fget Getter
	fset Setter
	fdel Deleter
}

type Option func(p *Property)

// WithName overrides the name inferred from the binding site.
func WithName(name string) Option {
	return func(p *Property) {
		p.name = name
		p.nameSource = NameExplicit
	}
}

func WithDefault(value any) Option { return func(p *Property) { p.def = value } }
func Nullable(b bool) Option       { return func(p *Property) { p.nullable = b } }

// Unique and Index record intent for the storage layer. They are not
// enforced by this package.
func Unique(b bool) Option { return func(p *Property) { p.unique = b } }
func Index(b bool) Option  { return func(p *Property) { p.index = b } }

func OnUpdate(hook UpdateHook) Option      { return func(p *Property) { p.onUpdate = hook } }
func WithConstraint(c Constraint) Option   { return func(p *Property) { p.constraint = c } }
func WithGetter(fget Getter) Option        { return func(p *Property) { p.fget = fget } }
func WithSetter(fset Setter) Option        { return func(p *Property) { p.fset = fset } }
func WithDeleter(fdel Deleter) Option      { return func(p *Property) { p.fdel = fdel } }

// LenientTypes makes the datatype check in Validate advisory: mismatches are
// logged as warnings instead of returned.
func LenientTypes() Option { return func(p *Property) { p.lenient = true } }

// New builds a Property bound to datatype. key is the attribute name at the
// binding site and becomes the name unless WithName is given.
func New(key string, datatype types.Datatype, opts ...Option) (*Property, error) {
	if !datatype.IsValid() {
		return nil, fmt.Errorf("Invalid datatype for %s: %s", key, datatype)
	}

	p := &Property{
		datatype:   datatype,
		name:       key,
		nameSource: NameInferred,
		nullable:   true,
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.name == "" {
		return nil, fmt.Errorf("Property of type %s has no name", datatype)
	}
	return p, nil
}

// MustNew is New for package-level declarations; it panics on error.
func MustNew(key string, datatype types.Datatype, opts ...Option) *Property {
	p, err := New(key, datatype, opts...)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *Property) Datatype() types.Datatype { return p.datatype }
func (p *Property) Name() string             { return p.name }
func (p *Property) NameSource() NameSource   { return p.nameSource }
func (p *Property) Default() any             { return p.def }
func (p *Property) Nullable() bool           { return p.nullable }
func (p *Property) Unique() bool             { return p.unique }
func (p *Property) Index() bool              { return p.index }
func (p *Property) OnUpdate() UpdateHook     { return p.onUpdate }
func (p *Property) Constraint() Constraint   { return p.constraint }
func (p *Property) Getter() Getter           { return p.fget }
func (p *Property) Setter() Setter           { return p.fset }
func (p *Property) Deleter() Deleter         { return p.fdel }

func (p *Property) String() string {
	return fmt.Sprintf("%s %s", p.name, p.datatype)
}

// Validate checks value before it is saved: datatype membership first, then
// the null constraint. It stops at the first failure.
func (p *Property) Validate(key string, value any) error {
	if err := p.checkDatatype(key, value); err != nil {
		return err
	}
	return p.checkNull(key, value)
}

func (p *Property) checkDatatype(key string, value any) error {
	// absence is the null check's concern
	if value == nil || p.datatype.IsNative(value) {
		return nil
	}

	if p.lenient {
		pkg.WarnLog("Property Type Warning:", pkg.Fields("key", key, "value", value, "expected", p.datatype))
		return nil
	}

	pkg.ErrorLog("Property Type Error:", pkg.Fields("key", key, "value", value, "expected", p.datatype))
	return &Error{Kind: ErrTypeMismatch, Key: key, Value: value, Expected: p.datatype}
}

func (p *Property) checkNull(key string, value any) error {
	if p.nullable || value != nil {
		return nil
	}
	pkg.ErrorLog("Null Property Error:", pkg.Fields("key", key, "value", value))
	return &Error{Kind: ErrNullConstraint, Key: key, Value: value, Expected: p.datatype}
}
