package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/YonathanKevin20/barcode-generator-fe/internal/guard"
)

// newGuardsCmd lists the compiled route guards, so a guards file can be
// checked before the server is restarted with it.
func newGuardsCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "guards",
		Short: "Compile and list the route guards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			set, err := guard.Load(file)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tALLOW\tREDIRECT\tMODE")
			for _, g := range set.Guards() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", g.Name, g.Allow, g.Redirect, g.Mode)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML file with extra guards (defaults to built-ins only)")
	return cmd
}
