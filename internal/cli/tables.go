package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/tablectl/internal/sqlite"
)

func newTablesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tables",
		Short: "Inspect the local table catalog",
	}
	cmd.AddCommand(newTablesListCmd())
	return cmd
}

func newTablesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the tables in the local catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalog := sqlite.NewCatalog()
			if err := catalog.Attach(current.cfg); err != nil {
				return sysError("attach catalog: %w", err)
			}
			defer catalog.Detach()

			records, err := catalog.ListTables(cmd.Context())
			if err != nil {
				return sysError("list tables: %w", err)
			}

			out := cmd.OutOrStdout()
			if flags.jsonMode {
				return writeJSON(out, records)
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAMESPACE\tNAME\tFORMAT\tFIELDS\tCREATED\tTABLE ID")
			for _, r := range records {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
					r.Namespace, r.Name, r.Format, len(r.Fields), r.CreatedAt.Format("2006-01-02T15:04:05Z07:00"), r.TableID)
			}
			return tw.Flush()
		},
	}
}
