package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	getter "github.com/hashicorp/go-getter"
)

// Fetch downloads a single catalog or schema document from src to the file
// dst. src is any go-getter source: a local path, an http(s) URL, or a forced
// getter such as git::https://host/repo//catalogs/properties.xml.
func Fetch(ctx context.Context, src, dst string) error {
	if src == "" {
		return fmt.Errorf("fetch: source required")
	}
	if dst == "" {
		return fmt.Errorf("fetch: destination required")
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("fetch: create directory: %w", err)
	}
	if err := getter.GetFile(dst, src, getter.WithContext(ctx)); err != nil {
		return fmt.Errorf("fetch %s: %w", src, err)
	}
	return nil
}
