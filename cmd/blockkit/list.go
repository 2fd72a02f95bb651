package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-blockkit/pkg/repository"
)

func newListCmd(a *app) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the modules in the repository",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "include inactive modules")
	cmd.RunE = withRepository(a, func(ctx context.Context, repo repository.Repository) error {
		defs, err := repo.List(ctx)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tLABEL\tCATEGORY\tFIELDS\tSTATUS")
		for _, def := range defs {
			if !all && !def.Active {
				continue
			}
			def = def.WithDefaults()
			status := "active"
			if !def.Active {
				status = "inactive"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", def.ID, def.DisplayLabel(), def.Category, len(def.Fields), status)
		}
		return w.Flush()
	})
	return cmd
}
