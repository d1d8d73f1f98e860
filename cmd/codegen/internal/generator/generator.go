package generator

import (
	"bytes"
	"embed"
	"fmt"
	"go/format"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"unicode"

	"github.com/OCharnyshevich/craft-properties/internal/catalog"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

type Config struct {
	CatalogPath string
	SchemaPath  string // empty = bundled schema
	OutDir      string
	Package     string
	Log         *slog.Logger
}

type attributeTmpl struct {
	Ident    string
	Name     string
	Min, Max int
}

type templateData struct {
	Package    string
	Source     string
	Attributes []attributeTmpl
}

// Run validates the catalog and writes OutDir/Package/names_gen.go.
func Run(cfg Config) error {
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}
	raw, err := os.ReadFile(cfg.CatalogPath)
	if err != nil {
		return fmt.Errorf("read catalog: %w", err)
	}
	schema, err := loadSchema(cfg.SchemaPath)
	if err != nil {
		return err
	}
	cat, err := catalog.Load(raw, catalog.WithSchema(schema), catalog.WithLogger(cfg.Log))
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	data := templateData{Package: cfg.Package, Source: filepath.Base(cfg.CatalogPath)}
	seen := make(map[string]string)
	for _, attr := range cat.All() {
		ident := Ident(attr.Name)
		if prev, dup := seen[ident]; dup {
			return fmt.Errorf("attributes %q and %q both map to identifier %s", prev, attr.Name, ident)
		}
		seen[ident] = attr.Name
		data.Attributes = append(data.Attributes, attributeTmpl{Ident: ident, Name: attr.Name, Min: attr.Min, Max: attr.Max})
	}

	tmpl, err := template.ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return fmt.Errorf("parse templates: %w", err)
	}

	outPath := filepath.Join(cfg.OutDir, cfg.Package)
	if err := os.MkdirAll(outPath, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	return renderToFile(tmpl, "names.go.tmpl", filepath.Join(outPath, "names_gen.go"), data)
}

func loadSchema(path string) (*catalog.Schema, error) {
	if path == "" {
		return catalog.DefaultSchema()
	}
	return catalog.LoadSchemaFile(path)
}

func renderToFile(tmpl *template.Template, name, outFile string, data any) error {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("execute template %s: %w", name, err)
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return fmt.Errorf("format %s: %w", outFile, err)
	}
	if err := os.WriteFile(outFile, src, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", outFile, err)
	}
	return nil
}

// Ident turns an attribute name into an exported Go identifier:
// "fire resistance" and "fire-resistance" both become FireResistance.
func Ident(name string) string {
	var b strings.Builder
	upper := true
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upper = true
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		b.WriteRune(r)
	}
	s := fixAbbreviations(b.String())
	if s == "" || !unicode.IsLetter([]rune(s)[0]) {
		s = "Attr" + s
	}
	return s
}

func fixAbbreviations(s string) string {
	// Fix "Id" at word boundaries (end of string or before uppercase letter).
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if i+1 < len(s) && s[i] == 'I' && s[i+1] == 'd' {
			atEnd := i+2 >= len(s)
			beforeUpper := !atEnd && s[i+2] >= 'A' && s[i+2] <= 'Z'
			if atEnd || beforeUpper {
				b.WriteString("ID")
				i++ // skip 'd'
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
