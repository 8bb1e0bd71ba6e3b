package change

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/mesh-intelligence/tablectl/internal/definition"
	"github.com/mesh-intelligence/tablectl/pkg/types"
)

// emptyTree is the object name git uses for the empty tree. It stands in
// for a missing before revision, as on the first push of a branch.
const emptyTree = "4b825dc642cb6eb9a060e54bf8d69288fbee4904"

// GitSource reads changes from a git repository using the git CLI.
// Rename detection is disabled: a moved file is one deletion and one
// addition.
type GitSource struct {
	RepoDir string // Working tree to run git in. Empty means the current directory.
	Dir     string // Definitions directory relative to RepoDir. Empty means the whole tree.
	Git     string // git binary. Empty means "git" on PATH.
}

// ListChangedFiles runs git diff between before and after, restricted to
// Dir and to definition documents.
func (g GitSource) ListChangedFiles(ctx context.Context, before, after string) ([]types.ChangeRecord, error) {
	if isNullRev(before) {
		before = emptyTree
	}
	if isNullRev(after) {
		return nil, fmt.Errorf("after revision is required")
	}

	args := []string{"diff", "--name-status", "--no-renames", "-z", before, after}
	if g.Dir != "" {
		args = append(args, "--", g.Dir)
	}
	out, err := g.run(ctx, args...)
	if err != nil {
		return nil, err
	}

	records, err := parseNameStatus(out)
	if err != nil {
		return nil, err
	}
	sortRecords(records)
	return records, nil
}

// ReadFile returns path as of rev via git show.
func (g GitSource) ReadFile(ctx context.Context, rev, path string) ([]byte, error) {
	if isNullRev(rev) {
		return nil, fmt.Errorf("read %s: no revision", path)
	}
	return g.run(ctx, "show", rev+":"+path)
}

func (g GitSource) run(ctx context.Context, args ...string) ([]byte, error) {
	bin := g.Git
	if bin == "" {
		bin = "git"
	}
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = g.RepoDir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git %s: %w: %s", args[0], err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}

// parseNameStatus parses `git diff --name-status -z` output, keeping
// definition documents only.
func parseNameStatus(out []byte) ([]types.ChangeRecord, error) {
	parts := strings.Split(strings.TrimRight(string(out), "\x00"), "\x00")
	if len(parts) == 1 && parts[0] == "" {
		return nil, nil
	}
	if len(parts)%2 != 0 {
		return nil, fmt.Errorf("unexpected git diff output: %q", out)
	}

	var records []types.ChangeRecord
	for i := 0; i < len(parts); i += 2 {
		status, path := parts[i], parts[i+1]
		if !definition.IsDocument(path) || status == "" {
			continue
		}
		switch status[0] {
		case 'A':
			records = append(records, types.Added(path))
		case 'M', 'T':
			records = append(records, types.Modified(path))
		case 'D':
			records = append(records, types.Deleted(path))
		default:
			return nil, fmt.Errorf("unexpected git status %q for %s", status, path)
		}
	}
	return records, nil
}

// isNullRev reports whether rev is empty or the all-zero object name CI
// systems use when there is no previous commit.
func isNullRev(rev string) bool {
	return strings.Trim(rev, "0") == ""
}
