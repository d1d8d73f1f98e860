// Command craftkit checks property catalogs and tries out combines from the
// command line.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/OCharnyshevich/craft-properties/internal/catalog"
	"github.com/OCharnyshevich/craft-properties/internal/config"
	"github.com/OCharnyshevich/craft-properties/pkg/gamedata"
)

type app struct {
	cfg        *config.Config
	configPath string
	log        *slog.Logger
	out        io.Writer
	errOut     io.Writer
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{cfg: config.DefaultConfig(), out: out, errOut: errOut}

	root := &cobra.Command{
		Use:   "craftkit",
		Short: "Validate property catalogs and combine entities",
		Long: `craftkit works with the XML property catalog that bounds every attribute
an entity can carry.

Settings are read from defaults, then CRAFT_* environment variables, then the
--config JSON file; flags given on the command line win over all of them.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	root.SetOut(out)
	root.SetErr(errOut)

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "JSON config file")
	pf.StringVar(&a.cfg.LogLevel, "log-level", a.cfg.LogLevel, "log level (debug, info, warn, error)")
	pf.StringVar(&a.cfg.CatalogPath, "catalog", a.cfg.CatalogPath, "catalog document (default: bundled catalog)")
	pf.StringVar(&a.cfg.SchemaPath, "schema", a.cfg.SchemaPath, "schema document (default: bundled schema)")
	pf.BoolVar(&a.cfg.ValidateSchema, "validate", a.cfg.ValidateSchema, "validate the catalog against the schema before loading")
	pf.BoolVar(&a.cfg.FatalSchemaErrors, "fatal", a.cfg.FatalSchemaErrors, "abort on schema errors instead of ignoring them")

	root.AddCommand(
		a.validateCmd(),
		a.listCmd(),
		a.combineCmd(),
		a.fetchCmd(),
	)
	return root
}

// setup layers defaults, environment, config file and flags, then builds
// the logger.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	layered := config.DefaultConfig()
	if err := config.ParseEnv(layered); err != nil {
		return err
	}
	if a.configPath != "" {
		fromFile, err := config.LoadFile(a.configPath, layered)
		if err != nil {
			return err
		}
		layered = fromFile
	}

	explicit := make(map[string]bool)
	cmd.Flags().Visit(func(f *pflag.Flag) { explicit[f.Name] = true })
	config.Merge(a.cfg, layered, explicit)

	if err := a.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	level, _ := a.cfg.Level()
	a.log = slog.New(slog.NewTextHandler(a.errOut, &slog.HandlerOptions{Level: level}))
	return nil
}

// registry loads the configured catalog. The bundled catalog goes through
// the named registry; a catalog file honours the schema settings.
func (a *app) registry() (gamedata.AttributeRegistry, error) {
	if a.cfg.CatalogPath == "" && a.cfg.SchemaPath == "" {
		return gamedata.Load(catalog.DefaultName)
	}

	raw := catalog.DefaultCatalogDocument()
	if a.cfg.CatalogPath != "" {
		var err error
		raw, err = os.ReadFile(a.cfg.CatalogPath)
		if err != nil {
			return nil, fmt.Errorf("read catalog: %w", err)
		}
	}

	opts := []catalog.Option{
		catalog.WithLogger(a.log),
		catalog.WithFatalErrors(a.cfg.FatalSchemaErrors),
	}
	if a.cfg.ValidateSchema {
		s, err := a.schema()
		if err != nil {
			return nil, err
		}
		opts = append(opts, catalog.WithSchema(s))
	}
	return catalog.Load(raw, opts...)
}

func (a *app) schema() (*catalog.Schema, error) {
	if a.cfg.SchemaPath == "" {
		return catalog.DefaultSchema()
	}
	return catalog.LoadSchemaFile(a.cfg.SchemaPath)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
