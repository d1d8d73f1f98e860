package catalog

import (
	"bytes"
	"fmt"
	"io/fs"
	"strings"
	"testing/fstest"

	"github.com/jacoelho/xsd"
	xsderrors "github.com/jacoelho/xsd/errors"
)

// schemaFile is the name an in-memory schema document is compiled under.
const schemaFile = "schema.xsd"

// Severity classifies a validation issue. Error-severity issues are fatal when
// the loader runs in fatal mode; warnings are never fatal.
type Severity uint8

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Issue is a single schema violation found in a document.
type Issue struct {
	Severity Severity
	Code     string // XSD constraint code, e.g. cvc-datatype-valid
	Line     int
	Column   int
	Path     string
	Message  string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: line %d: %s: %s", i.Severity, i.Line, i.Path, i.Message)
}

// Schema is a compiled XSD 1.0 schema.
type Schema struct {
	xs *xsd.Schema
}

// CompileSchema compiles an in-memory schema document. The document cannot
// include or import other schema files; use LoadSchemaFile for that.
func CompileSchema(raw []byte) (*Schema, error) {
	return compileSchema(fstest.MapFS{schemaFile: &fstest.MapFile{Data: raw}}, schemaFile)
}

// LoadSchemaFile compiles the schema at path. Includes and imports resolve
// relative to its directory.
func LoadSchemaFile(path string) (*Schema, error) {
	s, err := xsd.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Schema{xs: s}, nil
}

func compileSchema(fsys fs.FS, name string) (*Schema, error) {
	s, err := xsd.LoadWithOptions(fsys, name, xsd.NewLoadOptions())
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Schema{xs: s}, nil
}

// Validate checks raw against the schema. The returned error is non-nil only
// when raw is not well-formed XML; schema violations are reported as issues
// sorted by position.
//
// A root element the schema does not declare is a warning, so documents
// the schema knows nothing about load leniently.
func (s *Schema) Validate(raw []byte) ([]Issue, error) {
	err := s.xs.Validate(bytes.NewReader(raw))
	if err == nil {
		return nil, nil
	}
	violations, ok := xsderrors.AsValidations(err)
	if !ok {
		return nil, fmt.Errorf("validate: %w", err)
	}

	issues := make([]Issue, 0, len(violations))
	for _, v := range violations {
		switch xsderrors.ErrorCode(v.Code) {
		case xsderrors.ErrXMLParse, xsderrors.ErrNoRoot:
			return nil, fmt.Errorf("malformed document: %s", v.Error())
		}
		issues = append(issues, Issue{
			Severity: severity(v.Code),
			Code:     v.Code,
			Line:     v.Line,
			Column:   v.Column,
			Path:     v.Path,
			Message:  message(v),
		})
	}
	return issues, nil
}

func severity(code string) Severity {
	if xsderrors.ErrorCode(code) == xsderrors.ErrValidateRootNotDeclared {
		return SeverityWarning
	}
	return SeverityError
}

func message(v xsderrors.Validation) string {
	var b strings.Builder
	b.WriteString(v.Message)
	if len(v.Expected) > 0 {
		fmt.Fprintf(&b, " (expected: %s)", strings.Join(v.Expected, ", "))
	}
	if v.Actual != "" {
		fmt.Fprintf(&b, " (actual: %s)", v.Actual)
	}
	return b.String()
}
