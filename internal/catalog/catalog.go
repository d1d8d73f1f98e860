// Package catalog loads the attribute catalog: the designer-authored table of
// named, bounded integer attributes that entities draw their properties from.
package catalog

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/OCharnyshevich/craft-properties/pkg/gamedata"
)

// SchemaError is returned by Load when a document fails schema validation in
// fatal mode. Issues holds every error-severity issue in document order.
type SchemaError struct {
	Issues []Issue
}

func (e *SchemaError) Error() string {
	if len(e.Issues) == 0 {
		return "schema validation failed"
	}
	msg := "schema validation failed: " + e.Issues[0].String()
	if n := len(e.Issues) - 1; n > 0 {
		msg += fmt.Sprintf(" (and %d more)", n)
	}
	return msg
}

// Catalog maps attribute names to their definitions. It is read-only after
// Load and safe for concurrent reads.
type Catalog struct {
	byName map[string]gamedata.Attribute
	order  []string
}

var _ gamedata.AttributeRegistry = (*Catalog)(nil)

type options struct {
	schema *Schema
	fatal  bool
	log    *slog.Logger
}

// Option configures Load.
type Option func(*options)

// WithSchema validates the document against s before building the catalog.
// Without a schema no validation takes place.
func WithSchema(s *Schema) Option {
	return func(o *options) { o.schema = s }
}

// WithFatalErrors controls whether error-severity schema issues abort the
// load. Fatal mode is the default. Warnings are never fatal.
func WithFatalErrors(fatal bool) Option {
	return func(o *options) { o.fatal = fatal }
}

// WithLogger sets the logger used to report ignored issues and skipped entries.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) { o.log = log }
}

// propertyDoc is a Property element as it appears in the document.
type propertyDoc struct {
	Name         string  `xml:"Name"`
	MinValue     string  `xml:"MinValue"`
	MaxValue     string  `xml:"MaxValue"`
	DefaultValue *string `xml:"DefaultValue"`
}

// Load parses a catalog document. Every Property element in the document
// becomes a definition; entries that would break the catalog invariants
// (missing name, non-integer values, inverted bounds, default out of range,
// duplicate name) are logged and skipped.
func Load(raw []byte, opts ...Option) (*Catalog, error) {
	o := options{fatal: true, log: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	if o.schema != nil {
		issues, err := o.schema.Validate(raw)
		if err != nil {
			return nil, fmt.Errorf("validate catalog: %w", err)
		}
		if err := o.handleIssues(issues); err != nil {
			return nil, err
		}
	}

	c := &Catalog{byName: make(map[string]gamedata.Attribute)}
	dec := xml.NewDecoder(bytes.NewReader(raw))
	index := 0
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse catalog: %w", err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "Property" {
			continue
		}
		line, _ := dec.InputPos()
		var doc propertyDoc
		if err := dec.DecodeElement(&doc, &se); err != nil {
			return nil, fmt.Errorf("parse catalog: property at line %d: %w", line, err)
		}
		index++

		attr, err := doc.attribute()
		if err != nil {
			o.log.Warn("skipping catalog property", "index", index, "line", line, "error", err)
			continue
		}
		if _, dup := c.byName[attr.Name]; dup {
			o.log.Warn("skipping duplicate catalog property", "name", attr.Name, "line", line)
			continue
		}
		c.byName[attr.Name] = attr
		c.order = append(c.order, attr.Name)
	}

	o.log.Debug("catalog loaded", "properties", len(c.order))
	return c, nil
}

func (o *options) handleIssues(issues []Issue) error {
	var fatal []Issue
	for _, issue := range issues {
		if issue.Severity != SeverityError {
			o.log.Debug("ignoring catalog schema warning", "line", issue.Line, "path", issue.Path, "message", issue.Message)
			continue
		}
		if !o.fatal {
			o.log.Warn("ignoring catalog schema error", "line", issue.Line, "path", issue.Path, "message", issue.Message)
			continue
		}
		fatal = append(fatal, issue)
	}
	if len(fatal) > 0 {
		return &SchemaError{Issues: fatal}
	}
	return nil
}

func (d propertyDoc) attribute() (gamedata.Attribute, error) {
	name := d.Name
	if strings.TrimSpace(name) == "" {
		return gamedata.Attribute{}, errors.New("missing Name")
	}
	minValue, err := parseValue(d.MinValue)
	if err != nil {
		return gamedata.Attribute{}, fmt.Errorf("property %s: MinValue: %w", name, err)
	}
	maxValue, err := parseValue(d.MaxValue)
	if err != nil {
		return gamedata.Attribute{}, fmt.Errorf("property %s: MaxValue: %w", name, err)
	}
	if minValue > maxValue {
		return gamedata.Attribute{}, fmt.Errorf("property %s: MinValue %d exceeds MaxValue %d", name, minValue, maxValue)
	}

	attr := gamedata.Attribute{Name: name, Min: minValue, Max: maxValue}
	if d.DefaultValue != nil {
		def, err := parseValue(*d.DefaultValue)
		if err != nil {
			return gamedata.Attribute{}, fmt.Errorf("property %s: DefaultValue: %w", name, err)
		}
		if !attr.Contains(def) {
			return gamedata.Attribute{}, fmt.Errorf("property %s: DefaultValue %d outside [%d, %d]", name, def, minValue, maxValue)
		}
		attr.Default = &def
	}
	return attr, nil
}

func parseValue(s string) (int, error) {
	v, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimSpace(s), "+"), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q", s)
	}
	return int(v), nil
}

// ByName returns the definition for name. Matching is exact and case-sensitive.
func (c *Catalog) ByName(name string) (gamedata.Attribute, bool) {
	attr, ok := c.byName[name]
	if !ok {
		return gamedata.Attribute{}, false
	}
	return cloneAttribute(attr), true
}

// Lookup is ByName with a gamedata.ErrNotFound error for absent names.
func (c *Catalog) Lookup(name string) (gamedata.Attribute, error) {
	attr, ok := c.ByName(name)
	if !ok {
		return gamedata.Attribute{}, fmt.Errorf("catalog: %q: %w", name, gamedata.ErrNotFound)
	}
	return attr, nil
}

// All returns every definition in document order.
func (c *Catalog) All() []gamedata.Attribute {
	out := make([]gamedata.Attribute, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, cloneAttribute(c.byName[name]))
	}
	return out
}

// Names returns the attribute names in document order.
func (c *Catalog) Names() []string {
	return append([]string(nil), c.order...)
}

// Len returns the number of definitions.
func (c *Catalog) Len() int {
	return len(c.order)
}

func cloneAttribute(a gamedata.Attribute) gamedata.Attribute {
	if a.Default != nil {
		def := *a.Default
		a.Default = &def
	}
	return a
}
