package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDiffCmd() *cobra.Command {
	var src sourceFlags
	cmd := &cobra.Command{
		Use:   "diff",
		Short: "List the definitions changed between two revisions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			source, before, after, err := src.resolve(current.cfg.DefinitionsDir)
			if err != nil {
				return err
			}
			records, err := source.ListChangedFiles(cmd.Context(), before, after)
			if err != nil {
				return sysError("list changes: %w", err)
			}

			out := cmd.OutOrStdout()
			if flags.jsonMode {
				type entry struct {
					Path string `json:"path"`
					Kind string `json:"kind"`
				}
				entries := make([]entry, 0, len(records))
				for _, r := range records {
					entries = append(entries, entry{Path: r.Path, Kind: r.Kind.String()})
				}
				return writeJSON(out, entries)
			}
			for _, r := range records {
				fmt.Fprintf(out, "%-8s %s\n", r.Kind, r.Path)
			}
			return nil
		},
	}
	src.register(cmd)
	return cmd
}
