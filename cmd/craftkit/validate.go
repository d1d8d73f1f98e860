package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/OCharnyshevich/craft-properties/internal/catalog"
)

const watchDebounce = 200 * time.Millisecond

func (a *app) validateCmd() *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "validate [catalog.xml]",
		Short: "Check a catalog document against the schema",
		Long: `Validates a catalog document against the bundled schema, or the one given
with --schema, and reports every issue. Without an argument the --catalog
document is checked, falling back to the bundled catalog.

With --watch the document is checked again every time it changes, until
interrupted.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.cfg.CatalogPath
			if len(args) == 1 {
				path = args[0]
			}
			if watch {
				if path == "" {
					return errors.New("--watch needs a catalog file")
				}
				return a.watch(cmd.Context(), path)
			}
			return a.validate(path)
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "re-validate whenever the file changes")
	return cmd
}

func (a *app) validate(path string) error {
	raw := catalog.DefaultCatalogDocument()
	name := "bundled catalog"
	if path != "" {
		var err error
		raw, err = os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read catalog: %w", err)
		}
		name = path
	}

	s, err := a.schema()
	if err != nil {
		return err
	}
	issues, err := s.Validate(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	var errs, warnings int
	for _, issue := range issues {
		fmt.Fprintf(a.out, "%s: %s\n", name, issue)
		if issue.Severity == catalog.SeverityError {
			errs++
		} else {
			warnings++
		}
	}

	cat, err := catalog.Load(raw, catalog.WithLogger(a.log))
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	fmt.Fprintf(a.out, "%s: %d properties, %d errors, %d warnings\n", name, cat.Len(), errs, warnings)
	if errs > 0 {
		return fmt.Errorf("%s: %d schema errors", name, errs)
	}
	return nil
}

// watch validates path once and again after every change to it. Editors
// often replace files instead of writing them, so the parent directory is
// watched.
func (a *app) watch(ctx context.Context, path string) error {
	path = filepath.Clean(path)
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()
	if err := w.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}

	a.report(path)

	debounce := time.NewTimer(watchDebounce)
	debounce.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			debounce.Reset(watchDebounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			a.log.Warn("watcher error", "error", err)
		case <-debounce.C:
			a.report(path)
		}
	}
}

func (a *app) report(path string) {
	if err := a.validate(path); err != nil {
		a.log.Error("catalog invalid", "path", path, "error", err)
		return
	}
	a.log.Info("catalog valid", "path", path)
}
