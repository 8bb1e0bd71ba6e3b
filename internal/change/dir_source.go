package change

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/mesh-intelligence/tablectl/internal/definition"
	"github.com/mesh-intelligence/tablectl/pkg/types"
)

// DirSource treats before and after as two directory trees on disk, for
// example two checkouts of the definitions directory. Paths in records are
// slash-separated and relative to the tree root.
type DirSource struct{}

// ListChangedFiles snapshots both trees and classifies the difference. A
// missing tree is an empty snapshot.
func (DirSource) ListChangedFiles(ctx context.Context, before, after string) ([]types.ChangeRecord, error) {
	b, err := SnapshotDir(before)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a, err := SnapshotDir(after)
	if err != nil {
		return nil, err
	}
	return Classify(b, a), nil
}

// ReadFile reads path below the tree rooted at rev.
func (DirSource) ReadFile(_ context.Context, rev, path string) ([]byte, error) {
	return os.ReadFile(filepath.Join(rev, filepath.FromSlash(path)))
}

// SnapshotDir reads every definition document below root.
func SnapshotDir(root string) (Snapshot, error) {
	snap := Snapshot{}
	if root == "" {
		return snap, nil
	}
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return snap, nil
	}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !definition.IsDocument(path) {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		snap[filepath.ToSlash(rel)] = content
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}
