package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/tablectl/internal/definition"
	"github.com/mesh-intelligence/tablectl/internal/request"
)

func newRenderCmd() *cobra.Command {
	var asDelete bool
	cmd := &cobra.Command{
		Use:   "render FILE [OUT]",
		Short: "Render the table service request for a definition as JSON",
		Long: "Render the create request for a definition, or the delete request with\n" +
			"--delete, and write it to OUT or standard output.",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			data, err := os.ReadFile(path)
			if err != nil {
				return userError("read %s: %w", path, err)
			}

			var req any
			if asDelete {
				id, err := definition.ParseIdentity(path, data)
				if err != nil {
					return userError("%w", err)
				}
				req = request.NewDelete(id)
			} else {
				def, err := definition.Parse(path, data)
				if err != nil {
					return userError("%w", err)
				}
				req = request.NewCreate(def)
			}

			body, err := request.Body(req)
			if err != nil {
				return sysError("render %s: %w", path, err)
			}
			body = append(body, '\n')

			if len(args) == 1 {
				_, err := cmd.OutOrStdout().Write(body)
				return err
			}
			if err := os.WriteFile(args[1], body, 0o644); err != nil {
				return sysError("write %s: %w", args[1], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rendered %s to %s\n", path, args[1])
			return nil
		},
	}
	cmd.Flags().BoolVar(&asDelete, "delete", false, "render the delete request instead of the create request")
	return cmd
}
