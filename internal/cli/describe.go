package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/tablectl/internal/definition"
)

func newDescribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe FILE",
		Short: "Print the Iceberg schema declared by a definition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := definition.Load(args[0])
			if err != nil {
				return userError("%w", err)
			}
			schema, err := definition.IcebergSchema(def)
			if err != nil {
				return userError("%w", err)
			}

			out := cmd.OutOrStdout()
			if flags.jsonMode {
				return writeJSON(out, schema)
			}
			fmt.Fprintf(out, "%s (%s, %s)\n", def.Identity(), def.Format, def.BucketARN)
			for _, f := range schema.Fields() {
				req := "optional"
				if f.Required {
					req = "required"
				}
				fmt.Fprintf(out, "  %3d  %-24s %-8s %s\n", f.ID, f.Name, req, f.Type)
			}
			return nil
		},
	}
}
