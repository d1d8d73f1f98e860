// Package scene builds a set of entities from a YAML manifest.
//
// A manifest lists each entity with its attributes and selection points:
//
//	entities:
//	  - name: Stick
//	    properties: [Durability, {name: Length, value: 30}]
//	    points: [Tip, Handle]
//
// A bare attribute name draws the catalog default or a random value; a
// mapping with a value adds the attribute with that value clamped.
package scene

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/OCharnyshevich/craft-properties/internal/entity"
)

// Manifest is the decoded form of a scene document.
type Manifest struct {
	Entities []EntityDef `yaml:"entities"`
}

// EntityDef declares one entity.
type EntityDef struct {
	Name       string        `yaml:"name"`
	Properties []PropertyDef `yaml:"properties,omitempty"`
	Points     []string      `yaml:"points,omitempty"`
}

// PropertyDef is either a bare attribute name or a name with a fixed value.
type PropertyDef struct {
	Name  string `yaml:"name"`
	Value *int   `yaml:"value,omitempty"`
}

// UnmarshalYAML accepts a scalar name or a {name, value} mapping.
func (p *PropertyDef) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		p.Name = node.Value
		p.Value = nil
		return nil
	case yaml.MappingNode:
		for i := 0; i < len(node.Content); i += 2 {
			switch key := node.Content[i].Value; key {
			case "name", "value":
			default:
				return fmt.Errorf("line %d: field %s not found in property", node.Content[i].Line, key)
			}
		}
		type plain PropertyDef
		var v plain
		if err := node.Decode(&v); err != nil {
			return err
		}
		*p = PropertyDef(v)
		return nil
	default:
		return fmt.Errorf("line %d: property must be a name or a mapping", node.Line)
	}
}

// Parse decodes a manifest. Unknown fields and multiple documents are
// rejected, and every entity must have a unique non-empty name.
func Parse(raw []byte) (*Manifest, error) {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)

	var m Manifest
	if err := dec.Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return &m, nil
		}
		return nil, fmt.Errorf("parse scene: %w", err)
	}
	var extra any
	if err := dec.Decode(&extra); err == nil {
		return nil, errors.New("parse scene: multiple YAML documents are not supported")
	} else if !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse scene: after first document: %w", err)
	}

	seen := make(map[string]bool, len(m.Entities))
	for i, e := range m.Entities {
		if e.Name == "" {
			return nil, fmt.Errorf("parse scene: entity %d has no name", i)
		}
		if seen[e.Name] {
			return nil, fmt.Errorf("parse scene: duplicate entity %q", e.Name)
		}
		seen[e.Name] = true
		for j, p := range e.Properties {
			if p.Name == "" {
				return nil, fmt.Errorf("parse scene: entity %q: property %d has no name", e.Name, j)
			}
		}
	}
	return &m, nil
}

func (d EntityDef) definition() entity.Definition {
	def := entity.Definition{Name: d.Name, Points: d.Points}
	for _, p := range d.Properties {
		def.Properties = append(def.Properties, entity.Property{Name: p.Name, Value: p.Value})
	}
	return def
}
