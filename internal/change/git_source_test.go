package change

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/tablectl/pkg/types"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

// gitRepo is a throwaway repository for exercising GitSource.
type gitRepo struct {
	t   *testing.T
	dir string
}

func newGitRepo(t *testing.T) *gitRepo {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not on PATH")
	}
	r := &gitRepo{t: t, dir: t.TempDir()}
	r.git("init", "-q")
	return r
}

func (r *gitRepo) git(args ...string) string {
	r.t.Helper()
	base := []string{"-c", "user.name=tablectl", "-c", "user.email=tablectl@example.com", "-c", "commit.gpgsign=false"}
	cmd := exec.Command("git", append(base, args...)...)
	cmd.Dir = r.dir
	out, err := cmd.CombinedOutput()
	require.NoError(r.t, err, string(out))
	return strings.TrimSpace(string(out))
}

func (r *gitRepo) commit(msg string) string {
	r.t.Helper()
	r.git("add", "-A")
	r.git("commit", "-q", "--allow-empty", "-m", msg)
	return r.git("rev-parse", "HEAD")
}

func TestGitSource(t *testing.T) {
	repo := newGitRepo(t)
	writeTree(t, repo.dir, map[string]string{
		"tables/A.yaml":  "name: a",
		"tables/M.yaml":  "name: m",
		"tables/R.yaml":  "name: r",
		"other/X.yaml":   "name: x",
		"tables/doc.txt": "notes",
	})
	first := repo.commit("first")

	writeTree(t, repo.dir, map[string]string{
		"tables/B.yaml":  "name: b",
		"tables/M.yaml":  "name: m2",
		"other/Y.yaml":   "name: y",
		"tables/doc.txt": "more notes",
	})
	require.NoError(t, os.Remove(filepath.Join(repo.dir, "tables/A.yaml")))
	require.NoError(t, os.Rename(filepath.Join(repo.dir, "tables/R.yaml"), filepath.Join(repo.dir, "tables/R2.yaml")))
	second := repo.commit("second")

	src := GitSource{RepoDir: repo.dir, Dir: "tables"}
	ctx := context.Background()

	records, err := src.ListChangedFiles(ctx, first, second)
	require.NoError(t, err)
	assert.Equal(t, []types.ChangeRecord{
		types.Deleted("tables/A.yaml"),
		types.Added("tables/B.yaml"),
		types.Modified("tables/M.yaml"),
		types.Deleted("tables/R.yaml"),
		types.Added("tables/R2.yaml"),
	}, records)

	content, err := src.ReadFile(ctx, first, "tables/A.yaml")
	require.NoError(t, err)
	assert.Equal(t, "name: a", string(content))

	t.Run("null before revision diffs against the empty tree", func(t *testing.T) {
		records, err := src.ListChangedFiles(ctx, strings.Repeat("0", 40), first)
		require.NoError(t, err)
		assert.Equal(t, []types.ChangeRecord{
			types.Added("tables/A.yaml"),
			types.Added("tables/M.yaml"),
			types.Added("tables/R.yaml"),
		}, records)
	})

	t.Run("identical revisions produce nothing", func(t *testing.T) {
		records, err := src.ListChangedFiles(ctx, second, second)
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("unknown revision is an error", func(t *testing.T) {
		_, err := src.ListChangedFiles(ctx, "not-a-rev", second)
		assert.Error(t, err)
	})
}

func TestParseNameStatus(t *testing.T) {
	out := []byte("A\x00t/a.yaml\x00M\x00t/b.yml\x00D\x00t/c.yaml\x00T\x00t/d.yaml\x00M\x00t/readme.md\x00")
	records, err := parseNameStatus(out)
	require.NoError(t, err)
	assert.Equal(t, []types.ChangeRecord{
		types.Added("t/a.yaml"),
		types.Modified("t/b.yml"),
		types.Deleted("t/c.yaml"),
		types.Modified("t/d.yaml"),
	}, records)

	records, err = parseNameStatus(nil)
	require.NoError(t, err)
	assert.Empty(t, records)

	_, err = parseNameStatus([]byte("A\x00"))
	assert.Error(t, err)

	_, err = parseNameStatus([]byte("X\x00t/a.yaml\x00"))
	assert.Error(t, err)
}
