package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/OCharnyshevich/craft-properties/cmd/codegen/internal/generator"
)

func main() {
	catalogPath := flag.String("catalog", "", "path to the catalog document (e.g. ./internal/catalog/assets/properties.xml)")
	schemaPath := flag.String("schema", "", "schema to validate against (default: bundled schema)")
	outDir := flag.String("out", "./internal/catalog", "output base directory for the generated package")
	pkg := flag.String("pkg", "names", "name of the generated package")

	flag.Parse()

	if *catalogPath == "" {
		fmt.Fprintln(os.Stderr, "error: -catalog flag is required")
		flag.Usage()
		os.Exit(1)
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	log.Info("generating attribute names", "catalog", *catalogPath, "package", *pkg)

	cfg := generator.Config{
		CatalogPath: *catalogPath,
		SchemaPath:  *schemaPath,
		OutDir:      *outDir,
		Package:     *pkg,
		Log:         log,
	}

	if err := generator.Run(cfg); err != nil {
		log.Error("codegen failed", "error", err)
		os.Exit(1)
	}

	log.Info("codegen done", "output", *outDir+"/"+*pkg)
}
