package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/OCharnyshevich/craft-properties/pkg/gamedata"
)

func (a *app) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the attributes of the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := a.registry()
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tMIN\tMAX\tDEFAULT")
			for _, attr := range reg.All() {
				fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", attr.Name, attr.Min, attr.Max, defaultString(attr))
			}
			return tw.Flush()
		},
	}
}

func defaultString(attr gamedata.Attribute) string {
	if !attr.HasDefault() {
		return "random"
	}
	return fmt.Sprint(*attr.Default)
}
