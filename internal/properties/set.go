// Package properties holds the attribute sets attached to entities.
package properties

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/OCharnyshevich/craft-properties/pkg/gamedata"
)

// ErrDuplicateAttribute is returned when an attribute name is already present
// in the set. The existing entry is left untouched.
var ErrDuplicateAttribute = errors.New("attribute already present")

// Rand draws uniformly distributed integers in [0, n).
type Rand interface {
	Int64N(n int64) int64
}

// Set is an entity's bag of attribute instances keyed by name.
// A Set is not safe for concurrent use.
type Set struct {
	owner   string
	catalog gamedata.AttributeRegistry
	log     *slog.Logger
	rng     Rand

	byName map[string]*Instance
	order  []string
}

// Option configures a Set.
type Option func(*Set)

// WithLogger sets the logger recoverable errors are reported to.
func WithLogger(log *slog.Logger) Option {
	return func(s *Set) { s.log = log }
}

// WithRand sets the random source used for attributes without a default.
func WithRand(r Rand) Option {
	return func(s *Set) { s.rng = r }
}

// New returns an empty set for the entity named owner. Attributes added by
// name are resolved against catalog.
func New(owner string, catalog gamedata.AttributeRegistry, opts ...Option) *Set {
	s := &Set{
		owner:   owner,
		catalog: catalog,
		log:     slog.Default(),
		byName:  make(map[string]*Instance),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return s
}

// Owner returns the name of the entity the set belongs to.
func (s *Set) Owner() string {
	return s.owner
}

// SetOwner renames the entity the set reports errors for.
func (s *Set) SetOwner(owner string) {
	s.owner = owner
}

// Initialize adds every declared name. A name that cannot be added is
// reported and skipped; the remaining names are still processed. The
// returned error joins every failure.
func (s *Set) Initialize(names []string) error {
	var errs []error
	for _, name := range names {
		if _, err := s.Add(name); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Add adds the catalog attribute name with its default value, or a uniformly
// random value in [Min, Max] when the catalog declares no default.
func (s *Set) Add(name string) (*Instance, error) {
	attr, err := s.resolve(name)
	if err != nil {
		return nil, err
	}
	value := attr.Min
	if attr.HasDefault() {
		value = *attr.Default
	} else if span := int64(attr.Max) - int64(attr.Min) + 1; span > 1 {
		value = attr.Min + int(s.rng.Int64N(span))
	}
	return s.add(attr, value), nil
}

// AddValue adds the catalog attribute name with value clamped into its bounds.
func (s *Set) AddValue(name string, value int) (*Instance, error) {
	attr, err := s.resolve(name)
	if err != nil {
		return nil, err
	}
	return s.add(attr, value), nil
}

func (s *Set) resolve(name string) (gamedata.Attribute, error) {
	if s.catalog == nil {
		err := fmt.Errorf("%s: add %q: no catalog: %w", s.owner, name, gamedata.ErrNotFound)
		s.log.Error("could not add property", "owner", s.owner, "property", name, "error", err)
		return gamedata.Attribute{}, err
	}
	attr, ok := s.catalog.ByName(name)
	if !ok {
		err := fmt.Errorf("%s: add %q: %w", s.owner, name, gamedata.ErrNotFound)
		s.log.Error("could not find property in catalog, ignoring it", "owner", s.owner, "property", name)
		return gamedata.Attribute{}, err
	}
	if _, exists := s.byName[name]; exists {
		err := fmt.Errorf("%s: add %q: %w", s.owner, name, ErrDuplicateAttribute)
		s.log.Error("property is already added", "owner", s.owner, "property", name)
		return gamedata.Attribute{}, err
	}
	return attr, nil
}

func (s *Set) add(attr gamedata.Attribute, value int) *Instance {
	inst := &Instance{name: attr.Name, min: attr.Min, max: attr.Max}
	inst.set(value)
	s.put(inst)
	return inst
}

func (s *Set) put(inst *Instance) {
	s.byName[inst.name] = inst
	s.order = append(s.order, inst.name)
}

// Get returns the instance named name.
func (s *Set) Get(name string) (*Instance, error) {
	inst, ok := s.byName[name]
	if !ok {
		s.log.Error("could not get property", "owner", s.owner, "property", name)
		return nil, fmt.Errorf("%s: get %q: %w", s.owner, name, gamedata.ErrNotFound)
	}
	return inst, nil
}

// Has reports whether the set contains name.
func (s *Set) Has(name string) bool {
	_, ok := s.byName[name]
	return ok
}

// Set overwrites the value of name, clamped into that instance's bounds.
func (s *Set) Set(name string, value int) error {
	inst, ok := s.byName[name]
	if !ok {
		s.log.Error("could not set property", "owner", s.owner, "property", name)
		return fmt.Errorf("%s: set %q: %w", s.owner, name, gamedata.ErrNotFound)
	}
	inst.set(value)
	return nil
}

// All returns the instances in insertion order. The slice is a fresh copy,
// but the instances are still owned by the set: the result goes stale after
// the next mutating call.
func (s *Set) All() []*Instance {
	out := make([]*Instance, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.byName[name])
	}
	return out
}

// Len returns the number of instances.
func (s *Set) Len() int {
	return len(s.order)
}

// Insert takes ownership of inst. It carries its own bounds; nothing is
// re-derived from the catalog.
func (s *Set) Insert(inst *Instance) error {
	if inst == nil {
		return fmt.Errorf("%s: insert: nil instance", s.owner)
	}
	if _, exists := s.byName[inst.name]; exists {
		return fmt.Errorf("%s: insert %q: %w", s.owner, inst.name, ErrDuplicateAttribute)
	}
	s.put(inst)
	return nil
}

// Replace removes the instance with inst's name and inserts inst in its
// place, returning the removed instance.
func (s *Set) Replace(inst *Instance) (*Instance, error) {
	if inst == nil {
		return nil, fmt.Errorf("%s: replace: nil instance", s.owner)
	}
	old, ok := s.Remove(inst.name)
	if !ok {
		return nil, fmt.Errorf("%s: replace %q: %w", s.owner, inst.name, gamedata.ErrNotFound)
	}
	s.put(inst)
	return old, nil
}

// Remove detaches and returns the instance named name.
func (s *Set) Remove(name string) (*Instance, bool) {
	inst, ok := s.byName[name]
	if !ok {
		return nil, false
	}
	delete(s.byName, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return inst, true
}

// Clear removes every instance.
func (s *Set) Clear() {
	clear(s.byName)
	s.order = s.order[:0]
}
