// Package apply submits classified definition changes to a table service
// and collects a per-change result.
package apply

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/mesh-intelligence/tablectl/internal/change"
	"github.com/mesh-intelligence/tablectl/internal/definition"
	"github.com/mesh-intelligence/tablectl/internal/lint"
	"github.com/mesh-intelligence/tablectl/internal/observability"
	"github.com/mesh-intelligence/tablectl/internal/request"
	"github.com/mesh-intelligence/tablectl/pkg/types"
)

// Operation labels for logs and metrics.
const (
	opCreate = "create"
	opDelete = "delete"
)

// Driver applies definition changes. Added and modified files become create
// calls, deleted files become delete calls. An existing table on create and
// a missing table on delete count as success.
type Driver struct {
	Service     types.TableService
	Source      change.Source
	Logger      zerolog.Logger
	Metrics     *observability.Metrics
	Retry       RetryPolicy
	Concurrency int
	DryRun      bool
	Lint        bool
}

// NewDriver returns a driver configured from cfg. Logger defaults to a
// no-op logger and Metrics to nil; set them on the returned value.
func NewDriver(cfg types.Config, svc types.TableService, src change.Source) *Driver {
	return &Driver{
		Service:     svc,
		Source:      src,
		Logger:      zerolog.Nop(),
		Retry:       PolicyFrom(cfg.Retry),
		Concurrency: max(cfg.Concurrency, 1),
		DryRun:      cfg.DryRun,
	}
}

// item is one unit of work: the result being built and the request to send.
type item struct {
	result *Result
	create *types.CreateTableRequest
	delete *types.DeleteTableRequest
}

// Run lists the changes between before and after and applies them. The
// error is non-nil only when the changes cannot be listed; per-change
// failures are in the report.
func (d *Driver) Run(ctx context.Context, before, after string) (*Report, error) {
	records, err := d.Source.ListChangedFiles(ctx, before, after)
	if err != nil {
		return nil, err
	}
	d.Logger.Info().Str("before", before).Str("after", after).Int("changes", len(records)).Msg("classified changes")
	return d.ApplyChanges(ctx, before, after, records), nil
}

// ApplyChanges applies records. Added and modified files are read at after,
// deleted files at before.
func (d *Driver) ApplyChanges(ctx context.Context, before, after string, records []types.ChangeRecord) *Report {
	items := make([]*item, len(records))
	for i, rec := range records {
		it := &item{result: &Result{Path: rec.Path, Kind: rec.Kind}}
		items[i] = it

		switch rec.Kind {
		case types.ChangeAdded, types.ChangeModified:
			content, err := d.Source.ReadFile(ctx, after, rec.Path)
			if err != nil {
				d.reject(it, &types.ParseError{Path: rec.Path, Err: err})
				continue
			}
			def, err := definition.Parse(rec.Path, content)
			if err != nil {
				d.reject(it, err)
				continue
			}
			d.prepareCreate(it, def)
		case types.ChangeDeleted:
			content, err := d.Source.ReadFile(ctx, before, rec.Path)
			if err != nil {
				d.reject(it, &types.ParseError{Path: rec.Path, Err: err})
				continue
			}
			id, err := definition.ParseIdentity(rec.Path, content)
			if err != nil {
				d.reject(it, err)
				continue
			}
			d.prepareDelete(it, id)
		default:
			d.reject(it, errors.New("unknown change kind"))
		}
	}
	return d.execute(ctx, items)
}

// CreateFiles loads each path from disk and creates its table.
func (d *Driver) CreateFiles(ctx context.Context, paths ...string) *Report {
	items := make([]*item, len(paths))
	for i, path := range paths {
		it := &item{result: &Result{Path: path, Kind: types.ChangeAdded}}
		items[i] = it
		def, err := definition.Load(path)
		if err != nil {
			d.reject(it, err)
			continue
		}
		d.prepareCreate(it, def)
	}
	return d.execute(ctx, items)
}

// Target names a table to delete and, when known, the file that declared it.
type Target struct {
	Path     string
	Identity types.Identity
}

// Delete deletes the target tables.
func (d *Driver) Delete(ctx context.Context, targets ...Target) *Report {
	items := make([]*item, len(targets))
	for i, t := range targets {
		it := &item{result: &Result{Path: t.Path, Kind: types.ChangeDeleted}}
		items[i] = it
		id := t.Identity
		if err := id.Validate(); err != nil {
			d.reject(it, err)
			continue
		}
		d.prepareDelete(it, id)
	}
	return d.execute(ctx, items)
}

func (d *Driver) prepareCreate(it *item, def types.TableDefinition) {
	it.result.Identity = def.Identity()
	if d.Lint {
		if errs := lint.Check(def).Errors(); len(errs) > 0 {
			d.reject(it, errors.Join(errs...))
			return
		}
	}
	req := request.NewCreate(def)
	it.create = &req
}

func (d *Driver) prepareDelete(it *item, id types.Identity) {
	it.result.Identity = id
	req := request.NewDelete(id)
	it.delete = &req
}

func (d *Driver) reject(it *item, err error) {
	it.result.fail(err)
	d.Logger.Error().Err(err).
		Str("path", it.result.Path).
		Str("change", it.result.Kind.String()).
		Str("kind", types.ErrorKind(err)).
		Msg("change rejected")
	d.Metrics.ObserveOperation(opLabel(it), "rejected", 0)
}

// execute submits every prepared item. Items that address the same table
// run in order on one goroutine; distinct tables may run concurrently up to
// Concurrency.
func (d *Driver) execute(ctx context.Context, items []*item) *Report {
	var (
		order  []string
		groups = map[string][]*item{}
	)
	for _, it := range items {
		if it.result.State != StatePending {
			continue
		}
		key := it.result.Identity.Key()
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], it)
	}

	var g errgroup.Group
	g.SetLimit(max(d.Concurrency, 1))
	for _, key := range order {
		group := d.sequence(groups[key])
		g.Go(func() error {
			for _, it := range group {
				d.submit(ctx, it)
			}
			return nil
		})
	}
	_ = g.Wait()

	report := &Report{Results: make([]Result, len(items))}
	for i, it := range items {
		report.Results[i] = *it.result
	}
	return report
}

// sequence orders the items of one table so that the service ends in the
// state of the after snapshot. A delete of a table that another item still
// declares is settled without a call, and the remaining deletes run before
// the creates.
func (d *Driver) sequence(group []*item) []*item {
	declared := map[types.Identity]bool{}
	for _, it := range group {
		if it.create != nil {
			declared[it.result.Identity] = true
		}
	}

	out := make([]*item, 0, len(group))
	for _, it := range group {
		if it.delete == nil {
			continue
		}
		if declared[it.result.Identity] {
			d.supersede(it)
			continue
		}
		out = append(out, it)
	}
	for _, it := range group {
		if it.create != nil {
			out = append(out, it)
		}
	}
	return out
}

// supersede settles a delete whose table is still declared by another file.
func (d *Driver) supersede(it *item) {
	res := it.result
	res.submit()
	res.succeed(OutcomeSuperseded)
	d.Logger.Info().
		Str("op", opDelete).
		Str("table", res.Identity.String()).
		Str("path", res.Path).
		Msg("table still declared, delete skipped")
	d.Metrics.ObserveOperation(opDelete, string(OutcomeSuperseded), 0)
}

func (d *Driver) submit(ctx context.Context, it *item) {
	res := it.result
	op := opLabel(it)
	log := d.Logger.With().
		Str("op", op).
		Str("table", res.Identity.String()).
		Str("path", res.Path).
		Logger()

	res.submit()
	start := time.Now()

	if d.DryRun {
		var body []byte
		if it.create != nil {
			body, _ = request.Body(it.create)
		} else {
			body, _ = request.Body(it.delete)
		}
		log.Info().RawJSON("request", body).Msg("dry run")
		res.succeed(OutcomeDryRun)
		d.Metrics.ObserveOperation(op, string(OutcomeDryRun), time.Since(start))
		return
	}

	log.Debug().Msg("submitted")
	onRetry := func(attempt int, err error, delay time.Duration) {
		log.Warn().Err(err).Int("attempt", attempt).Dur("backoff", delay).Msg("transient failure, retrying")
		d.Metrics.ObserveRetry(op)
	}
	attempts, err := retry(ctx, d.Retry, onRetry, func() error {
		if it.create != nil {
			return d.Service.CreateTable(ctx, *it.create)
		}
		return d.Service.DeleteTable(ctx, *it.delete)
	})
	res.Attempts = attempts

	switch {
	case err == nil && it.create != nil:
		res.succeed(OutcomeCreated)
	case err == nil:
		res.succeed(OutcomeDeleted)
	case it.create != nil && errors.Is(err, types.ErrAlreadyExists) && res.Kind == types.ChangeModified:
		res.succeed(OutcomeNotReplaced)
		log.Warn().Msg("table exists, modified definition not applied")
	case it.create != nil && errors.Is(err, types.ErrAlreadyExists):
		res.succeed(OutcomeAlreadyExists)
	case it.delete != nil && errors.Is(err, types.ErrNotFound):
		res.succeed(OutcomeAlreadyAbsent)
	default:
		res.fail(err)
	}

	if res.State == StateSucceeded {
		log.Info().Str("outcome", string(res.Outcome)).Int("attempts", attempts).Msg("succeeded")
		d.Metrics.ObserveOperation(op, string(res.Outcome), time.Since(start))
		return
	}
	log.Error().Err(err).Str("kind", res.ErrorKind()).Int("attempts", attempts).Msg("failed")
	d.Metrics.ObserveOperation(op, "failed", time.Since(start))
}

func opLabel(it *item) string {
	if it.result.Kind == types.ChangeDeleted {
		return opDelete
	}
	return opCreate
}
