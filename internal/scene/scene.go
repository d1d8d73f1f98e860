package scene

import (
	"errors"
	"fmt"

	"github.com/OCharnyshevich/craft-properties/internal/entity"
	"github.com/OCharnyshevich/craft-properties/pkg/gamedata"
)

// Scene holds the entities built from a manifest, keyed by their declared
// name. Renaming an entity does not change its key.
type Scene struct {
	byName map[string]*entity.Entity
	order  []*entity.Entity
}

// Build creates every entity of m against reg. Attributes that cannot be
// added are skipped: the scene is returned together with the joined errors.
func Build(m *Manifest, reg gamedata.AttributeRegistry, opts ...entity.Option) (*Scene, error) {
	if m == nil {
		return nil, errors.New("build scene: nil manifest")
	}
	s := &Scene{byName: make(map[string]*entity.Entity, len(m.Entities))}
	var errs []error
	for _, d := range m.Entities {
		if _, dup := s.byName[d.Name]; dup {
			return nil, fmt.Errorf("build scene: duplicate entity %q", d.Name)
		}
		e, err := entity.New(d.definition(), reg, opts...)
		if e == nil {
			return nil, fmt.Errorf("build scene: %w", err)
		}
		if err != nil {
			errs = append(errs, err)
		}
		s.byName[d.Name] = e
		s.order = append(s.order, e)
	}
	return s, errors.Join(errs...)
}

// Entity returns the entity declared as name.
func (s *Scene) Entity(name string) (*entity.Entity, bool) {
	e, ok := s.byName[name]
	return e, ok
}

// Entities returns the entities in manifest order.
func (s *Scene) Entities() []*entity.Entity {
	return append([]*entity.Entity(nil), s.order...)
}
