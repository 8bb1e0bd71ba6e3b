// Package change decides which table definition files were added, modified,
// or deleted between two states of the definitions directory.
package change

import (
	"bytes"
	"context"
	"sort"

	"github.com/mesh-intelligence/tablectl/pkg/types"
)

// Snapshot maps a definition path to its content at one point in history.
type Snapshot map[string][]byte

// Classify compares two snapshots. A path only in after is Added, a path only
// in before is Deleted, and a path in both with different content is
// Modified. Byte-identical files produce no record. A renamed file appears as
// one Deleted and one Added record. Records are sorted by path.
func Classify(before, after Snapshot) []types.ChangeRecord {
	var records []types.ChangeRecord
	for path, content := range after {
		old, ok := before[path]
		switch {
		case !ok:
			records = append(records, types.Added(path))
		case !bytes.Equal(old, content):
			records = append(records, types.Modified(path))
		}
	}
	for path := range before {
		if _, ok := after[path]; !ok {
			records = append(records, types.Deleted(path))
		}
	}
	sortRecords(records)
	return records
}

func sortRecords(records []types.ChangeRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Path < records[j].Path
	})
}

// Source is the version control capability the apply driver depends on.
// before and after name two states of the repository; what they are (commit
// SHAs, directories) depends on the implementation.
type Source interface {
	// ListChangedFiles returns the definition files that differ between
	// before and after.
	ListChangedFiles(ctx context.Context, before, after string) ([]types.ChangeRecord, error)

	// ReadFile returns the content of path as of rev. The driver uses it to
	// read added files at the after state and deleted files at the before
	// state.
	ReadFile(ctx context.Context, rev, path string) ([]byte, error)
}
