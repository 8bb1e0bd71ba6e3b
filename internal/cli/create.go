package cli

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/tablectl/internal/apply"
)

func newCreateCmd() *cobra.Command {
	var dryRun, lint bool
	cmd := &cobra.Command{
		Use:   "create FILE...",
		Short: "Create the tables defined in the given files",
		Long:  "Create one table per definition file. A table that already exists is not an error.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			opts := driverOptions{dryRun: dryRun, lint: lint}
			return withDriver(ctx, nil, opts, func(d *apply.Driver) error {
				return finishReport(cmd.OutOrStdout(), d.CreateFiles(ctx, args...))
			})
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "log requests without calling the table service")
	cmd.Flags().BoolVar(&lint, "lint", false, "reject definitions that fail the naming checks")
	return cmd
}
