package cli

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/tablectl/internal/apply"
	"github.com/mesh-intelligence/tablectl/internal/observability"
)

// metricsJob is the Pushgateway job name for apply runs.
const metricsJob = "tablectl"

func newApplyCmd() *cobra.Command {
	var (
		src    sourceFlags
		dryRun bool
		lint   bool
	)
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply the definitions changed between two revisions",
		Long: "Create a table for every definition added or modified between --before and\n" +
			"--after, and delete the table of every definition removed. An existing table\n" +
			"on create and a missing table on delete are not errors.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			source, before, after, err := src.resolve(current.cfg.DefinitionsDir)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			metrics := observability.NewMetrics()
			opts := driverOptions{dryRun: dryRun, lint: lint, metrics: metrics}
			return withDriver(ctx, source, opts, func(d *apply.Driver) error {
				report, err := d.Run(ctx, before, after)
				if err != nil {
					return sysError("list changes: %w", err)
				}
				pushMetrics(metrics, after)
				return finishReport(cmd.OutOrStdout(), report)
			})
		},
	}
	src.register(cmd)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "log requests without calling the table service")
	cmd.Flags().BoolVar(&lint, "lint", false, "reject definitions that fail the naming checks")
	return cmd
}

// pushMetrics sends run metrics to the configured Pushgateway. Failures are
// logged; they do not fail the run.
func pushMetrics(m *observability.Metrics, revision string) {
	url := current.v.GetString(cfgKeyPushgateway)
	if url == "" {
		return
	}
	if err := m.Push(url, metricsJob, map[string]string{"revision": revision}); err != nil {
		current.log.Warn().Err(err).Msg("push metrics")
		return
	}
	current.log.Debug().Str("url", url).Msg("pushed metrics")
}
