package gamedata

// Attribute is a catalog definition of a named, bounded integer trait.
// Definitions are created when a catalog is loaded and never mutated.
type Attribute struct {
	Name    string
	Min     int
	Max     int
	Default *int
}

// HasDefault reports whether the definition declares a default value.
func (a Attribute) HasDefault() bool {
	return a.Default != nil
}

// Contains reports whether v lies in [Min, Max].
func (a Attribute) Contains(v int) bool {
	return v >= a.Min && v <= a.Max
}

// Clamp constrains v to [Min, Max].
func (a Attribute) Clamp(v int) int {
	return Clamp(v, a.Min, a.Max)
}

// Clamp constrains v to the closed interval [lo, hi].
func Clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
