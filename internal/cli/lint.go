package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/tablectl/internal/definition"
	"github.com/mesh-intelligence/tablectl/internal/lint"
	"github.com/mesh-intelligence/tablectl/pkg/types"
)

func newLintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lint FILE|DIR...",
		Short: "Check table, namespace and column names against the naming rules",
		Long: "Check the definitions in each FILE, and every definition below each DIR,\n" +
			"against the naming rules. Documents that do not load count as failures.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defs, loadErrs := loadDefinitions(args)
			for _, err := range loadErrs {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
			}

			out := cmd.OutOrStdout()
			reports := make([]lint.Report, 0, len(defs))
			failed := len(loadErrs)
			for _, def := range defs {
				report := lint.Check(def)
				if !report.OK() {
					failed++
				}
				reports = append(reports, report)
				if !flags.jsonMode {
					report.Write(out)
				}
			}

			if flags.jsonMode {
				if err := writeJSON(out, reports); err != nil {
					return sysError("write report: %w", err)
				}
			}
			if failed > 0 {
				return userError("%d of %d definition(s) failed", failed, len(defs)+len(loadErrs))
			}
			return nil
		},
	}
}

// loadDefinitions loads each argument as a file or, for directories, every
// definition below it.
func loadDefinitions(args []string) ([]types.TableDefinition, []error) {
	var (
		defs []types.TableDefinition
		errs []error
	)
	for _, arg := range args {
		if info, err := os.Stat(arg); err == nil && info.IsDir() {
			d, e := definition.LoadDir(arg)
			defs = append(defs, d...)
			errs = append(errs, e...)
			continue
		}
		def, err := definition.Load(arg)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		defs = append(defs, def)
	}
	return defs, errs
}
