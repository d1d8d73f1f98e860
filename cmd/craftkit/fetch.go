package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OCharnyshevich/craft-properties/internal/catalog"
)

func (a *app) fetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch <source> <destination>",
		Short: "Download a catalog or schema document",
		Long: `Downloads a single document from any go-getter source to a local file:
local paths, http(s):// URLs, git:: repositories with a //subpath, s3:: and
gcs:: buckets.

Example:
  craftkit fetch "git::https://example.com/game-data.git//catalogs/properties.xml" ./properties.xml`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, dst := args[0], args[1]
			a.log.Info("downloading document", "source", src, "destination", dst)
			if err := catalog.Fetch(cmd.Context(), src, dst); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "fetched %s\n", dst)
			return nil
		},
	}
}
