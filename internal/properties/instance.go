package properties

import (
	"fmt"

	"github.com/OCharnyshevich/craft-properties/pkg/gamedata"
)

// Instance is one attribute carried by an entity. Its bounds are copied from
// the catalog when it is created and do not follow later catalog changes.
// The value always lies in [Min, Max]; it changes only through the owning Set.
type Instance struct {
	name  string
	min   int
	max   int
	value int
}

// NewInstance returns a free-standing instance with value clamped into
// [minValue, maxValue]. Inverted bounds are swapped.
func NewInstance(name string, minValue, maxValue, value int) *Instance {
	if minValue > maxValue {
		minValue, maxValue = maxValue, minValue
	}
	return &Instance{
		name:  name,
		min:   minValue,
		max:   maxValue,
		value: gamedata.Clamp(value, minValue, maxValue),
	}
}

func (i *Instance) Name() string { return i.name }
func (i *Instance) Min() int     { return i.min }
func (i *Instance) Max() int     { return i.max }
func (i *Instance) Value() int   { return i.value }

// Clone returns an unowned copy of i.
func (i *Instance) Clone() *Instance {
	c := *i
	return &c
}

func (i *Instance) String() string {
	return fmt.Sprintf("%s=%d [%d,%d]", i.name, i.value, i.min, i.max)
}

func (i *Instance) set(v int) {
	i.value = gamedata.Clamp(v, i.min, i.max)
}
