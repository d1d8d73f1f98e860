package gamedata

import "errors"

// ErrNotFound is returned when an attribute name is absent from a catalog or
// from an attribute set.
var ErrNotFound = errors.New("attribute not found")

// AttributeRegistry is the read-only query surface of an attribute catalog.
type AttributeRegistry interface {
	ByName(name string) (Attribute, bool)
	All() []Attribute
}
