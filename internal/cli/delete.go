package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/tablectl/internal/apply"
	"github.com/mesh-intelligence/tablectl/internal/change"
	"github.com/mesh-intelligence/tablectl/internal/definition"
	"github.com/mesh-intelligence/tablectl/pkg/types"
)

// stdinPath names the standard input in errors and results.
const stdinPath = "<stdin>"

func newDeleteCmd() *cobra.Command {
	var (
		id     types.Identity
		path   string
		rev    string
		repo   string
		dryRun bool
	)
	cmd := &cobra.Command{
		Use:   "delete [FILE | -]",
		Short: "Delete the table named by a definition",
		Long: "Delete the table identified by a definition file, by the definition on\n" +
			"standard input (-), by a file as of a git revision (--rev), or by explicit\n" +
			"--bucket-arn, --namespace and --name. A missing table is not an error.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if len(args) == 1 {
				path = args[0]
				var (
					data []byte
					err  error
				)
				switch {
				case path == "-":
					path = stdinPath
					data, err = io.ReadAll(cmd.InOrStdin())
				case rev != "":
					data, err = change.GitSource{RepoDir: repo}.ReadFile(ctx, rev, path)
				default:
					data, err = os.ReadFile(path)
				}
				if err != nil {
					return userError("read %s: %w", path, err)
				}
				id, err = definition.ParseIdentity(path, data)
				if err != nil {
					return userError("%w", err)
				}
			} else if err := id.Validate(); err != nil {
				return userError("%w (pass a definition file or --bucket-arn, --namespace and --name)", err)
			}

			opts := driverOptions{dryRun: dryRun}
			return withDriver(ctx, nil, opts, func(d *apply.Driver) error {
				return finishReport(cmd.OutOrStdout(), d.Delete(ctx, apply.Target{Path: path, Identity: id}))
			})
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&id.BucketARN, "bucket-arn", "", "table bucket ARN")
	fs.StringVar(&id.Namespace, "namespace", "", "table namespace")
	fs.StringVar(&id.Name, "name", "", "table name")
	fs.StringVar(&rev, "rev", "", "read FILE as of this git revision")
	fs.StringVar(&repo, "repo", "", "git working tree for --rev (default: current directory)")
	fs.BoolVar(&dryRun, "dry-run", false, "log the request without calling the table service")
	cmd.MarkFlagsMutuallyExclusive("rev", "bucket-arn")
	return cmd
}
