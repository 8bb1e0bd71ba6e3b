// Package sqlite implements a local table catalog on SQLite. It satisfies
// types.TableService with the same idempotency signals as the managed
// service, so definitions can be applied and inspected without cloud
// credentials.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/tablectl/pkg/types"
)

// DatabaseFile is the catalog file name inside the data directory.
const DatabaseFile = "catalog.db"

// Catalog is a SQLite-backed table catalog.
type Catalog struct {
	mu               sync.RWMutex
	attached         bool
	db               *sql.DB
	createNamespaces bool
}

// TableRecord is one table stored in the catalog.
type TableRecord struct {
	TableID      string              `json:"table_id"`
	BucketARN    string              `json:"table_bucket_arn"`
	Namespace    string              `json:"namespace"`
	Name         string              `json:"name"`
	Format       string              `json:"format"`
	Fields       []types.SchemaField `json:"fields"`
	VersionToken string              `json:"version_token"`
	CreatedAt    time.Time           `json:"created_at"`
}

// NewCatalog creates a catalog. Call Attach before use.
func NewCatalog() *Catalog {
	return &Catalog{}
}

// Attach opens (creating if needed) the catalog in config.DataDir.
// Returns ErrAlreadyAttached if already attached.
func (c *Catalog) Attach(config types.Config) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.attached {
		return types.ErrAlreadyAttached
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}

	db, err := sql.Open("sqlite", filepath.Join(dataDir, DatabaseFile))
	if err != nil {
		return err
	}
	// A single connection serializes writers and keeps PRAGMAs in effect.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		db.Close()
		return err
	}
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return fmt.Errorf("apply schema: %w", err)
		}
	}

	c.db = db
	c.createNamespaces = config.CreateNamespaces
	c.attached = true
	return nil
}

// Detach closes the catalog. Detach is idempotent.
func (c *Catalog) Detach() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.attached {
		return nil
	}
	if err := c.db.Close(); err != nil {
		return err
	}
	c.db = nil
	c.attached = false
	return nil
}

// CreateNamespace adds a namespace. An existing namespace is not an error.
func (c *Catalog) CreateNamespace(ctx context.Context, bucketARN, namespace string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.attached {
		return types.ErrCatalogDetached
	}
	return c.createNamespaceLocked(ctx, c.db, bucketARN, namespace)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (c *Catalog) createNamespaceLocked(ctx context.Context, db execer, bucketARN, namespace string) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO namespaces (bucket_arn, namespace, created_at) VALUES (?, ?, ?)
		 ON CONFLICT (bucket_arn, namespace) DO NOTHING`,
		bucketARN, namespace, time.Now().UTC().Format(time.RFC3339))
	return err
}

// CreateTable stores the table. It returns an error wrapping
// types.ErrAlreadyExists if the table exists and one wrapping
// types.ErrNamespaceNotFound if the namespace is missing and the catalog
// does not create namespaces.
func (c *Catalog) CreateTable(ctx context.Context, req types.CreateTableRequest) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.attached {
		return types.ErrCatalogDetached
	}

	id := req.Identity()
	var fields []types.SchemaField
	if req.Metadata != nil {
		fields = req.Metadata.Iceberg.Schema.Fields
	}
	schemaJSON, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if c.createNamespaces {
		if err := c.createNamespaceLocked(ctx, tx, id.BucketARN, id.Namespace); err != nil {
			return err
		}
	}

	var exists int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM namespaces WHERE bucket_arn = ? AND namespace = ?`,
		id.BucketARN, id.Namespace).Scan(&exists)
	if err != nil {
		return err
	}
	if exists == 0 {
		return &types.APIError{Op: "CreateTable", Table: id, Code: "NotFoundException",
			Err: fmt.Errorf("%w: %s", types.ErrNamespaceNotFound, id.Namespace)}
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO tables (table_id, bucket_arn, namespace, name, format, schema_json, version_token, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (bucket_arn, namespace, name) DO NOTHING`,
		newUUID(), id.BucketARN, id.Namespace, id.Name, req.Format, string(schemaJSON),
		uuid.NewString(), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return &types.APIError{Op: "CreateTable", Table: id, Code: "ConflictException", Err: types.ErrAlreadyExists}
	}
	return tx.Commit()
}

// DeleteTable removes the table. It returns an error wrapping
// types.ErrNotFound if the table does not exist.
func (c *Catalog) DeleteTable(ctx context.Context, req types.DeleteTableRequest) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.attached {
		return types.ErrCatalogDetached
	}

	res, err := c.db.ExecContext(ctx,
		`DELETE FROM tables WHERE bucket_arn = ? AND namespace = ? AND name = ?`,
		req.TableBucketARN, req.Namespace, req.Name)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &types.APIError{Op: "DeleteTable", Table: req.Identity(), Code: "NotFoundException", Err: types.ErrNotFound}
	}
	return nil
}

// GetTable returns the stored table for id, or an error wrapping
// types.ErrNotFound.
func (c *Catalog) GetTable(ctx context.Context, id types.Identity) (TableRecord, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.attached {
		return TableRecord{}, types.ErrCatalogDetached
	}
	row := c.db.QueryRowContext(ctx, selectTables+` WHERE bucket_arn = ? AND namespace = ? AND name = ?`,
		id.BucketARN, id.Namespace, id.Name)
	rec, err := scanTable(row)
	if errors.Is(err, sql.ErrNoRows) {
		return TableRecord{}, fmt.Errorf("%s: %w", id, types.ErrNotFound)
	}
	return rec, err
}

// ListTables returns every table ordered by bucket, namespace, and name.
func (c *Catalog) ListTables(ctx context.Context) ([]TableRecord, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.attached {
		return nil, types.ErrCatalogDetached
	}
	rows, err := c.db.QueryContext(ctx, selectTables+` ORDER BY bucket_arn, namespace, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TableRecord
	for rows.Next() {
		rec, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

const selectTables = `SELECT table_id, bucket_arn, namespace, name, format, schema_json, version_token, created_at FROM tables`

type scanner interface {
	Scan(dest ...any) error
}

func scanTable(s scanner) (TableRecord, error) {
	var (
		rec        TableRecord
		schemaJSON string
		createdAt  string
	)
	if err := s.Scan(&rec.TableID, &rec.BucketARN, &rec.Namespace, &rec.Name, &rec.Format,
		&schemaJSON, &rec.VersionToken, &createdAt); err != nil {
		return TableRecord{}, err
	}
	if err := json.Unmarshal([]byte(schemaJSON), &rec.Fields); err != nil {
		return TableRecord{}, fmt.Errorf("decode schema of %s.%s: %w", rec.Namespace, rec.Name, err)
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return rec, nil
}

// newUUID generates a UUID v7 for table IDs.
func newUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to UUID v4 if v7 generation fails
		return uuid.New().String()
	}
	return id.String()
}
