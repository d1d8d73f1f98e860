// Package selection tracks the anchor points of an entity and which one is
// active for the next combine.
package selection

import (
	"errors"
	"fmt"
	"log/slog"
)

// ErrInvalidSelectionPoint is returned when a point does not belong to the
// registry it is selected on, or has already been used.
var ErrInvalidSelectionPoint = errors.New("invalid selection point")

// Point is a named anchor. Once used it stays used.
type Point struct {
	name  string
	used  bool
	owner *Registry
}

func (p *Point) Name() string { return p.name }
func (p *Point) Used() bool   { return p.used }

func (p *Point) String() string {
	state := "unused"
	if p.used {
		state = "used"
	}
	return p.name + " (" + state + ")"
}

// Registry holds an entity's points in discovery order. At most one unused
// point is active at a time. A Registry is not safe for concurrent use.
type Registry struct {
	owner  string
	log    *slog.Logger
	points []*Point
	active *Point
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger rejected selections are reported to.
func WithLogger(log *slog.Logger) Option {
	return func(r *Registry) { r.log = log }
}

// NewRegistry creates the points named by names for the entity owner. The
// first point becomes active. Repeated names are reported and skipped.
func NewRegistry(owner string, names []string, opts ...Option) *Registry {
	r := &Registry{owner: owner, log: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			r.log.Warn("duplicate selection point, skipping", "owner", owner, "point", name)
			continue
		}
		seen[name] = true
		r.points = append(r.points, &Point{name: name, owner: r})
	}
	if len(r.points) > 0 {
		r.active = r.points[0]
	}
	return r
}

// Owner returns the name of the entity the registry belongs to.
func (r *Registry) Owner() string { return r.owner }

// SetOwner renames the entity the registry reports errors for.
func (r *Registry) SetOwner(owner string) { r.owner = owner }

// Active returns the active point, if any.
func (r *Registry) Active() (*Point, bool) {
	return r.active, r.active != nil
}

// Points returns every point in discovery order.
func (r *Registry) Points() []*Point {
	return append([]*Point(nil), r.points...)
}

// Unused returns the points that can still be selected.
func (r *Registry) Unused() []*Point {
	var out []*Point
	for _, p := range r.points {
		if !p.used {
			out = append(out, p)
		}
	}
	return out
}

// Lookup returns the point named name.
func (r *Registry) Lookup(name string) (*Point, bool) {
	for _, p := range r.points {
		if p.name == name {
			return p, true
		}
	}
	return nil, false
}

// SelectActive makes p the active point. It fails without changing anything
// when p belongs to another registry or is already used.
func (r *Registry) SelectActive(p *Point) error {
	switch {
	case p == nil || p.owner != r:
		name := "<nil>"
		if p != nil {
			name = p.name
		}
		r.log.Error("selection point does not belong to entity", "owner", r.owner, "point", name)
		return fmt.Errorf("%s: select %q: %w", r.owner, name, ErrInvalidSelectionPoint)
	case p.used:
		r.log.Error("selection point already used", "owner", r.owner, "point", p.name)
		return fmt.Errorf("%s: select %q: already used: %w", r.owner, p.name, ErrInvalidSelectionPoint)
	}
	r.active = p
	return nil
}

// SelectActiveByName is SelectActive for the point named name.
func (r *Registry) SelectActiveByName(name string) error {
	p, ok := r.Lookup(name)
	if !ok {
		r.log.Error("unknown selection point", "owner", r.owner, "point", name)
		return fmt.Errorf("%s: select %q: %w", r.owner, name, ErrInvalidSelectionPoint)
	}
	return r.SelectActive(p)
}

func (r *Registry) advance() {
	r.active = nil
	for _, p := range r.points {
		if !p.used {
			r.active = p
			return
		}
	}
}

// Consume marks the active points of a and b as used together and moves each
// registry on to its first remaining unused point. Nothing changes unless
// both registries have an active point and are distinct.
func Consume(a, b *Registry) error {
	if a == nil || b == nil {
		return fmt.Errorf("consume: nil registry: %w", ErrInvalidSelectionPoint)
	}
	if a == b {
		return fmt.Errorf("%s: consume with itself: %w", a.owner, ErrInvalidSelectionPoint)
	}
	pa, okA := a.Active()
	pb, okB := b.Active()
	if !okA || !okB {
		return fmt.Errorf("consume %s/%s: no active point: %w", a.owner, b.owner, ErrInvalidSelectionPoint)
	}
	pa.used = true
	pb.used = true
	a.advance()
	b.advance()
	a.log.Debug("selection points consumed", "owner", a.owner, "point", pa.name, "other", b.owner, "other_point", pb.name)
	return nil
}
