// Package backend opens the table service selected by a Config. It is the
// public entry point for programs that drive the apply pipeline directly.
//
// Example:
//
//	svc, closeFn, err := backend.Open(ctx, types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".tablectl-db",
//	})
//	defer closeFn()
package backend

import (
	"context"
	"fmt"

	"github.com/mesh-intelligence/tablectl/internal/s3tables"
	"github.com/mesh-intelligence/tablectl/internal/sqlite"
	"github.com/mesh-intelligence/tablectl/pkg/types"
)

// Open connects to the backend named by cfg.Backend. The returned close
// function releases it and must be called when done.
func Open(ctx context.Context, cfg types.Config) (types.TableService, func() error, error) {
	switch cfg.Backend {
	case types.BackendSQLite:
		catalog := sqlite.NewCatalog()
		if err := catalog.Attach(cfg); err != nil {
			return nil, nil, fmt.Errorf("attach catalog: %w", err)
		}
		return catalog, catalog.Detach, nil
	case types.BackendS3Tables:
		svc, err := s3tables.New(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return svc, func() error { return nil }, nil
	case "":
		return nil, nil, types.ErrBackendEmpty
	default:
		return nil, nil, fmt.Errorf("%w: %q", types.ErrBackendUnknown, cfg.Backend)
	}
}
