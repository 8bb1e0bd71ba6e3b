package cli

import (
	"context"
	"io"

	"github.com/mesh-intelligence/tablectl/internal/apply"
	"github.com/mesh-intelligence/tablectl/internal/change"
	"github.com/mesh-intelligence/tablectl/internal/observability"
	"github.com/mesh-intelligence/tablectl/pkg/backend"
	"github.com/mesh-intelligence/tablectl/pkg/types"
)

// driverOptions are the per-command switches for a driver.
type driverOptions struct {
	dryRun  bool
	lint    bool
	metrics *observability.Metrics
}

// withDriver validates the configuration, opens the backend unless this is
// a dry run, and calls fn with a ready driver.
func withDriver(ctx context.Context, src change.Source, opts driverOptions, fn func(*apply.Driver) error) error {
	cfg, err := validatedConfig()
	if err != nil {
		return err
	}
	cfg.DryRun = opts.dryRun

	var svc types.TableService
	if !cfg.DryRun {
		s, closeFn, err := backend.Open(ctx, cfg)
		if err != nil {
			return sysError("open %s backend: %w", cfg.Backend, err)
		}
		defer func() {
			if err := closeFn(); err != nil {
				current.log.Warn().Err(err).Msg("close backend")
			}
		}()
		svc = s
	}

	d := apply.NewDriver(cfg, svc, src)
	d.Logger = current.log
	d.Metrics = opts.metrics
	d.Lint = opts.lint
	return fn(d)
}

// finishReport prints a report and turns failures into exit code 1.
func finishReport(out io.Writer, report *apply.Report) error {
	if flags.jsonMode {
		if err := writeJSON(out, report); err != nil {
			return sysError("write report: %w", err)
		}
	} else {
		report.WriteSummary(out)
	}
	if !report.OK() {
		return userError("%d of %d change(s) failed", len(report.Failed()), len(report.Results))
	}
	return nil
}
