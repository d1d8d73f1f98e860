package catalog_test

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/OCharnyshevich/craft-properties/internal/catalog"
	"github.com/OCharnyshevich/craft-properties/internal/catalog/names"
	"github.com/OCharnyshevich/craft-properties/pkg/gamedata"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func readTestdata(t *testing.T, name string) []byte {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("read %s: %v", name, err)
	}
	return raw
}

func defaultSchema(t *testing.T) *catalog.Schema {
	t.Helper()
	s, err := catalog.DefaultSchema()
	if err != nil {
		t.Fatalf("DefaultSchema: %v", err)
	}
	return s
}

func intPtr(v int) *int { return &v }

func TestLoad_LookupMatchesDocument(t *testing.T) {
	c, err := catalog.Load(readTestdata(t, "tools.xml"), catalog.WithSchema(defaultSchema(t)), catalog.WithLogger(discardLogger()))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := []gamedata.Attribute{
		{Name: "Durability", Min: 0, Max: 100},
		{Name: "Length", Min: 1, Max: 50, Default: intPtr(10)},
		{Name: "Edge", Min: -20, Max: -5},
		{Name: "Fixed", Min: 7, Max: 7},
	}
	if diff := cmp.Diff(want, c.All()); diff != "" {
		t.Errorf("All() mismatch (-want +got):\n%s", diff)
	}

	for _, w := range want {
		got, err := c.Lookup(w.Name)
		if err != nil {
			t.Fatalf("Lookup(%q): %v", w.Name, err)
		}
		if diff := cmp.Diff(w, got); diff != "" {
			t.Errorf("Lookup(%q) mismatch (-want +got):\n%s", w.Name, diff)
		}
	}
}

func TestLookup_NotFound(t *testing.T) {
	c, err := catalog.Load(readTestdata(t, "tools.xml"), catalog.WithLogger(discardLogger()))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	for _, name := range []string{"Sharpness", "durability", ""} {
		_, err := c.Lookup(name)
		if !errors.Is(err, gamedata.ErrNotFound) {
			t.Errorf("Lookup(%q): expected ErrNotFound, got %v", name, err)
		}
		if _, ok := c.ByName(name); ok {
			t.Errorf("ByName(%q): expected not found", name)
		}
	}
}

func TestLookup_ReturnsCopies(t *testing.T) {
	c, err := catalog.Load(readTestdata(t, "tools.xml"), catalog.WithLogger(discardLogger()))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	a, _ := c.ByName("Length")
	*a.Default = 49
	b, _ := c.ByName("Length")
	if *b.Default != 10 {
		t.Fatalf("catalog default mutated through lookup result: got %d", *b.Default)
	}
}

func TestLoad_SchemaErrorFatal(t *testing.T) {
	_, err := catalog.Load(readTestdata(t, "broken.xml"), catalog.WithSchema(defaultSchema(t)), catalog.WithLogger(discardLogger()))

	var schemaErr *catalog.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected *SchemaError, got %v", err)
	}
	if len(schemaErr.Issues) < 2 {
		t.Fatalf("expected issues for both broken properties, got %v", schemaErr.Issues)
	}
	var badValue bool
	for _, issue := range schemaErr.Issues {
		if issue.Severity != catalog.SeverityError {
			t.Errorf("non-error issue in SchemaError: %v", issue)
		}
		if issue.Code == "cvc-datatype-valid" && issue.Path == "/Properties/Property/MinValue" {
			badValue = true
		}
	}
	if !badValue {
		t.Errorf("no datatype issue for the non-integer MinValue: %v", schemaErr.Issues)
	}
}

func TestLoad_SchemaErrorIgnored(t *testing.T) {
	c, err := catalog.Load(readTestdata(t, "broken.xml"),
		catalog.WithSchema(defaultSchema(t)),
		catalog.WithFatalErrors(false),
		catalog.WithLogger(discardLogger()),
	)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	// The two malformed entries cannot form valid definitions and are skipped.
	if diff := cmp.Diff([]string{"Weight"}, c.Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_WithoutSchemaSkipsInvalidEntries(t *testing.T) {
	raw := []byte(`<Properties>
  <Property><Name>A</Name><MinValue>5</MinValue><MaxValue>1</MaxValue></Property>
  <Property><Name>B</Name><MinValue>0</MinValue><MaxValue>10</MaxValue><DefaultValue>11</DefaultValue></Property>
  <Property><Name>C</Name><MinValue>0</MinValue><MaxValue>3</MaxValue></Property>
  <Property><Name>C</Name><MinValue>0</MinValue><MaxValue>99</MaxValue></Property>
  <Property><MinValue>0</MinValue><MaxValue>1</MaxValue></Property>
  <Property><Name>D</Name><MinValue>0</MinValue><MaxValue>99999999999</MaxValue></Property>
</Properties>`)

	c, err := catalog.Load(raw, catalog.WithLogger(discardLogger()))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := []gamedata.Attribute{{Name: "C", Min: 0, Max: 3}}
	if diff := cmp.Diff(want, c.All()); diff != "" {
		t.Errorf("All() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_NamesKeptVerbatim(t *testing.T) {
	raw := []byte(`<Properties>
  <Property><Name> Sharp </Name><MinValue>0</MinValue><MaxValue>1</MaxValue></Property>
  <Property><Name>sharp</Name><MinValue>0</MinValue><MaxValue>2</MaxValue></Property>
  <Property><Name>   </Name><MinValue>0</MinValue><MaxValue>3</MaxValue></Property>
</Properties>`)

	c, err := catalog.Load(raw, catalog.WithLogger(discardLogger()))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff([]string{" Sharp ", "sharp"}, c.Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}
	for _, name := range []string{"Sharp", "SHARP"} {
		if _, err := c.Lookup(name); !errors.Is(err, gamedata.ErrNotFound) {
			t.Errorf("Lookup(%q) = %v, want ErrNotFound", name, err)
		}
	}
	if attr, err := c.Lookup(" Sharp "); err != nil || attr.Max != 1 {
		t.Errorf("Lookup(%q) = %+v, %v", " Sharp ", attr, err)
	}
}

func TestLoad_WarningsNeverFatal(t *testing.T) {
	raw := []byte(`<Catalog><Property><Name>A</Name><MinValue>0</MinValue><MaxValue>1</MaxValue></Property></Catalog>`)

	c, err := catalog.Load(raw, catalog.WithSchema(defaultSchema(t)), catalog.WithLogger(discardLogger()))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Len() != 1 {
		t.Fatalf("expected 1 property, got %d", c.Len())
	}
}

func TestLoad_MalformedDocument(t *testing.T) {
	raw := []byte(`<Properties><Property><Name>A</Name>`)

	if _, err := catalog.Load(raw, catalog.WithLogger(discardLogger())); err == nil {
		t.Fatal("expected error for malformed document without schema")
	}
	if _, err := catalog.Load(raw, catalog.WithSchema(defaultSchema(t)), catalog.WithFatalErrors(false), catalog.WithLogger(discardLogger())); err == nil {
		t.Fatal("expected error for malformed document with schema")
	}
}

func TestDefaultCatalogRegistered(t *testing.T) {
	reg, err := gamedata.Load(catalog.DefaultName)
	if err != nil {
		t.Fatalf("gamedata.Load(%q): %v", catalog.DefaultName, err)
	}
	attr, ok := reg.ByName("Sharpness")
	if !ok {
		t.Fatal("expected Sharpness in default catalog")
	}
	if !attr.HasDefault() || *attr.Default != 0 {
		t.Errorf("expected Sharpness default 0, got %+v", attr)
	}
	if len(reg.All()) != 5 {
		t.Errorf("expected 5 default properties, got %d", len(reg.All()))
	}
}

func TestDefaultCatalogMatchesNames(t *testing.T) {
	cat, err := catalog.Load(catalog.DefaultCatalogDocument(), catalog.WithSchema(defaultSchema(t)))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(names.All, cat.Names()); diff != "" {
		t.Errorf("names out of date, run go generate (-want +got):\n%s", diff)
	}
	for _, name := range names.All {
		attr, err := cat.Lookup(name)
		if err != nil {
			t.Errorf("Lookup(%q): %v", name, err)
			continue
		}
		if got := [2]int{attr.Min, attr.Max}; got != names.Bounds[name] {
			t.Errorf("%s bounds = %v, names.Bounds has %v", name, got, names.Bounds[name])
		}
	}
}

func TestSchemaErrorMessage(t *testing.T) {
	err := &catalog.SchemaError{Issues: []catalog.Issue{
		{Severity: catalog.SeverityError, Line: 3, Path: "/Properties/Property", Message: "bad"},
		{Severity: catalog.SeverityError, Line: 4, Path: "/Properties/Property", Message: "worse"},
	}}
	want := "schema validation failed: error: line 3: /Properties/Property: bad (and 1 more)"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
