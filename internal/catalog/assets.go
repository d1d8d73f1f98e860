package catalog

import (
	_ "embed"
	"fmt"

	"github.com/OCharnyshevich/craft-properties/pkg/gamedata"
)

//go:generate go run ../../cmd/codegen -catalog assets/properties.xml -out . -pkg names

// DefaultName is the name the bundled catalog is registered under.
const DefaultName = "default"

//go:embed assets/properties.xsd
var defaultSchema []byte

//go:embed assets/properties.xml
var defaultCatalog []byte

func init() {
	gamedata.Register(DefaultName, func() (gamedata.AttributeRegistry, error) {
		s, err := DefaultSchema()
		if err != nil {
			return nil, err
		}
		return Load(DefaultCatalogDocument(), WithSchema(s))
	})
}

// DefaultSchema compiles the bundled catalog schema.
func DefaultSchema() (*Schema, error) {
	s, err := CompileSchema(defaultSchema)
	if err != nil {
		return nil, fmt.Errorf("bundled schema: %w", err)
	}
	return s, nil
}

// DefaultSchemaDocument returns a copy of the bundled schema document.
func DefaultSchemaDocument() []byte {
	return append([]byte(nil), defaultSchema...)
}

// DefaultCatalogDocument returns a copy of the bundled catalog document.
func DefaultCatalogDocument() []byte {
	return append([]byte(nil), defaultCatalog...)
}
