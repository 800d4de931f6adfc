package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/YonathanKevin20/barcode-generator-fe/internal/platform/version"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "barcode-admin",
		Short:         "Admin front-end of the barcode inventory",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	serve := newServeCmd()
	// Running without a subcommand serves.
	root.RunE = serve.RunE
	root.AddCommand(serve, newGuardsCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Get().String())
		},
	}
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
