// Package entity ties an attribute set, its selection points and its
// combination hooks to one named game object.
package entity

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/OCharnyshevich/craft-properties/internal/combine"
	"github.com/OCharnyshevich/craft-properties/internal/properties"
	"github.com/OCharnyshevich/craft-properties/internal/selection"
	"github.com/OCharnyshevich/craft-properties/pkg/gamedata"
)

// ErrRetired is returned when a combine involves an entity that was already
// combined into another one.
var ErrRetired = errors.New("entity retired")

// Property declares one attribute of an entity. A nil Value draws the
// catalog default or a random value.
type Property struct {
	Name  string
	Value *int
}

// Definition describes an entity before it is built against a catalog.
type Definition struct {
	Name       string
	Properties []Property
	Points     []string
}

// Entity is a game object that can absorb other entities' attributes.
// An Entity is not safe for concurrent use.
type Entity struct {
	id      uuid.UUID
	name    string
	log     *slog.Logger
	engine  *combine.Engine
	props   *properties.Set
	points  *selection.Registry
	hooks   combine.Hooks
	retired bool
}

type options struct {
	log    *slog.Logger
	rng    properties.Rand
	engine *combine.Engine
}

// Option configures an Entity.
type Option func(*options)

// WithLogger sets the logger shared by the entity, its set and its points.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithRand sets the random source for attributes without a default value.
func WithRand(r properties.Rand) Option {
	return func(o *options) { o.rng = r }
}

// WithEngine sets the engine combines run on.
func WithEngine(e *combine.Engine) Option {
	return func(o *options) { o.engine = e }
}

// New builds def against reg. Properties that cannot be added are skipped;
// the entity is still returned together with the joined errors.
func New(def Definition, reg gamedata.AttributeRegistry, opts ...Option) (*Entity, error) {
	o := options{log: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.engine == nil {
		o.engine = combine.NewEngine(o.log)
	}
	if def.Name == "" {
		return nil, errors.New("entity: empty name")
	}

	setOpts := []properties.Option{properties.WithLogger(o.log)}
	if o.rng != nil {
		setOpts = append(setOpts, properties.WithRand(o.rng))
	}

	e := &Entity{
		id:     uuid.New(),
		name:   def.Name,
		log:    o.log,
		engine: o.engine,
		props:  properties.New(def.Name, reg, setOpts...),
		points: selection.NewRegistry(def.Name, def.Points, selection.WithLogger(o.log)),
	}

	var errs []error
	for _, p := range def.Properties {
		var err error
		if p.Value != nil {
			_, err = e.props.AddValue(p.Name, *p.Value)
		} else {
			_, err = e.props.Add(p.Name)
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	return e, errors.Join(errs...)
}

func (e *Entity) ID() uuid.UUID               { return e.id }
func (e *Entity) Name() string                { return e.name }
func (e *Entity) Properties() *properties.Set { return e.props }
func (e *Entity) Points() *selection.Registry { return e.points }
func (e *Entity) Retired() bool               { return e.retired }

// Rename changes the entity's name, including the owner reported by its set
// and its points.
func (e *Entity) Rename(name string) {
	e.log.Info("renaming entity", "entity", e.name, "new_name", name)
	e.name = name
	e.props.SetOwner(name)
	e.points.SetOwner(name)
}

// OnBeforeCombine registers h to run before another entity is combined in.
func (e *Entity) OnBeforeCombine(h combine.Hook) {
	e.hooks.Before = append(e.hooks.Before, h)
}

// OnAfterCombine registers h to run after another entity is combined in.
func (e *Entity) OnAfterCombine(h combine.Hook) {
	e.hooks.After = append(e.hooks.After, h)
}

// CombineIn merges other's attributes into e under policy. When both sides
// have an active selection point the pair is consumed. other is retired:
// its set is emptied and it cannot take part in another combine.
func (e *Entity) CombineIn(other *Entity, policy combine.Policy) (combine.Stats, error) {
	switch {
	case other == nil:
		return combine.Stats{}, fmt.Errorf("%s: combine: nil entity", e.name)
	case other == e:
		return combine.Stats{}, fmt.Errorf("%s: combine with itself", e.name)
	case e.retired:
		return combine.Stats{}, fmt.Errorf("%s: combine: %w", e.name, ErrRetired)
	case other.retired:
		return combine.Stats{}, fmt.Errorf("%s: combine %s: %w", e.name, other.name, ErrRetired)
	}

	stats, err := e.engine.CombineStats(e.props, other.props.All(), policy, e.hooks)
	if err != nil {
		return stats, fmt.Errorf("%s: combine %s: %w", e.name, other.name, err)
	}

	_, ownActive := e.points.Active()
	_, otherActive := other.points.Active()
	if ownActive && otherActive {
		if err := selection.Consume(e.points, other.points); err != nil {
			e.log.Warn("could not consume selection points", "entity", e.name, "other", other.name, "error", err)
		}
	}

	other.props.Clear()
	other.retired = true
	e.log.Info("combined entity", "entity", e.name, "other", other.name, "policy", policy)
	return stats, nil
}

// CombineInAs is CombineIn followed by Rename.
func (e *Entity) CombineInAs(other *Entity, policy combine.Policy, name string) (combine.Stats, error) {
	stats, err := e.CombineIn(other, policy)
	if err != nil {
		return stats, err
	}
	e.Rename(name)
	return stats, nil
}

// String lists the entity's attributes one per line, prefixed by its name.
func (e *Entity) String() string {
	var b strings.Builder
	b.WriteString(e.name)
	if e.retired {
		b.WriteString(" (retired)")
	}
	for _, inst := range e.props.All() {
		fmt.Fprintf(&b, "\n  %s: %d", inst.Name(), inst.Value())
	}
	return b.String()
}
