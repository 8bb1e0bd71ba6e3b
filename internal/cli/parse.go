package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/tablectl/internal/definition"
)

func newParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse FILE",
		Short: "Print the identity of a definition as tableBucketARN|namespace|name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			data, err := os.ReadFile(path)
			if err != nil {
				return userError("read %s: %w", path, err)
			}
			id, err := definition.ParseIdentity(path, data)
			if err != nil {
				return userError("%w", err)
			}

			out := cmd.OutOrStdout()
			if flags.jsonMode {
				return writeJSON(out, map[string]string{
					"tableBucketARN": id.BucketARN,
					"namespace":      id.Namespace,
					"name":           id.Name,
				})
			}
			fmt.Fprintf(out, "%s|%s|%s\n", id.BucketARN, id.Namespace, id.Name)
			return nil
		},
	}
}
