package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/tablectl/internal/sqlite"
	"github.com/mesh-intelligence/tablectl/pkg/types"
)

const bucketARN = "arn:aws:s3tables:eu-west-1:111122223333:bucket/analytics"

func defYAML(namespace, name string) string {
	return fmt.Sprintf(`tableBucketARN: %s
namespace: %s
name: %s
format: ICEBERG
metadata:
  iceberg:
    schema:
      fields:
        - name: order_id
          type: long
          required: true
        - name: placed_at
          type: timestamptz
`, bucketARN, namespace, name)
}

const testConfig = `backend: sqlite
create_namespaces: true
retry:
  max_attempts: 2
  base_delay: 1ms
  max_delay: 2ms
log:
  level: error
`

// env is an isolated config and data directory pair.
type env struct {
	configDir string
	dataDir   string
}

func newEnv(t *testing.T) env {
	t.Helper()
	t.Setenv("TABLECTL_CONFIG_DIR", "")
	t.Setenv("TABLECTL_DATA_DIR", "")
	t.Setenv("TABLECTL_BACKEND", "")
	e := env{configDir: t.TempDir(), dataDir: t.TempDir()}
	require.NoError(t, os.WriteFile(filepath.Join(e.configDir, configFileExt), []byte(testConfig), 0o644))
	return e
}

// run executes tablectl with args and returns standard output.
func (e env) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append(args, "--config-dir", e.configDir, "--data-dir", e.dataDir))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (e env) tables(t *testing.T) []sqlite.TableRecord {
	t.Helper()
	catalog := sqlite.NewCatalog()
	require.NoError(t, catalog.Attach(types.Config{DataDir: e.dataDir}))
	defer catalog.Detach()
	records, err := catalog.ListTables(context.Background())
	require.NoError(t, err)
	return records
}

func writeDef(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParse(t *testing.T) {
	e := newEnv(t)
	dir := t.TempDir()

	t.Run("prints identity", func(t *testing.T) {
		path := writeDef(t, dir, "orders.yaml", defYAML("sales", "orders"))
		out, err := e.run(t, "", "parse", path)
		require.NoError(t, err)
		assert.Equal(t, bucketARN+"|sales|orders\n", out)
	})

	t.Run("missing name is a user error", func(t *testing.T) {
		path := writeDef(t, dir, "bad.yaml", "tableBucketARN: "+bucketARN+"\nnamespace: sales\n")
		_, err := e.run(t, "", "parse", path)
		require.Error(t, err)
		assert.Equal(t, exitUserError, exitCode(err))
	})

	t.Run("missing file is a user error", func(t *testing.T) {
		_, err := e.run(t, "", "parse", filepath.Join(dir, "nope.yaml"))
		assert.Equal(t, exitUserError, exitCode(err))
	})
}

func TestRender(t *testing.T) {
	e := newEnv(t)
	dir := t.TempDir()
	path := writeDef(t, dir, "orders.yaml", defYAML("sales", "orders"))

	out, err := e.run(t, "", "render", path)
	require.NoError(t, err)

	var req types.CreateTableRequest
	require.NoError(t, json.Unmarshal([]byte(out), &req))
	assert.Equal(t, "orders", req.Name)
	assert.Equal(t, types.FormatIceberg, req.Format)
	require.NotNil(t, req.Metadata)
	assert.Equal(t, []types.SchemaField{
		{Name: "order_id", Type: "long", Required: true},
		{Name: "placed_at", Type: "timestamptz"},
	}, req.Metadata.Iceberg.Schema.Fields)

	outPath := filepath.Join(dir, "orders.json")
	_, err = e.run(t, "", "render", path, outPath)
	require.NoError(t, err)
	written, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, out, string(written))

	out, err = e.run(t, "", "render", "--delete", path)
	require.NoError(t, err)
	assert.NotContains(t, out, "metadata")
	assert.Contains(t, out, `"name": "orders"`)
}

func TestCreateAndDelete(t *testing.T) {
	e := newEnv(t)
	dir := t.TempDir()
	path := writeDef(t, dir, "orders.yaml", defYAML("sales", "orders"))

	out, err := e.run(t, "", "create", path)
	require.NoError(t, err)
	assert.Contains(t, out, "1 change(s): 1 succeeded, 0 failed")
	require.Len(t, e.tables(t), 1)

	out, err = e.run(t, "", "create", path)
	require.NoError(t, err, "create is idempotent")
	assert.Contains(t, out, "already-exists")

	out, err = e.run(t, defYAML("sales", "orders"), "delete", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "deleted")
	assert.Contains(t, out, "sales.orders (<stdin>)")
	assert.Empty(t, e.tables(t))

	out, err = e.run(t, "", "delete", "--bucket-arn", bucketARN, "--namespace", "sales", "--name", "orders")
	require.NoError(t, err, "delete is idempotent")
	assert.Contains(t, out, "already-absent")
}

func TestDeleteNeedsIdentity(t *testing.T) {
	e := newEnv(t)
	_, err := e.run(t, "", "delete", "--namespace", "sales")
	assert.Equal(t, exitUserError, exitCode(err))
}

func TestApplyDirectories(t *testing.T) {
	e := newEnv(t)
	before, after := t.TempDir(), t.TempDir()
	writeDef(t, before, "A.yaml", defYAML("n", "t1"))
	writeDef(t, after, "A.yaml", defYAML("n", "t1"))
	writeDef(t, after, "B.yaml", defYAML("n", "t2"))

	out, err := e.run(t, "", "apply", "--before-dir", before, "--after-dir", after)
	require.NoError(t, err)
	assert.Contains(t, out, "1 change(s): 1 succeeded, 0 failed")

	records := e.tables(t)
	require.Len(t, records, 1)
	assert.Equal(t, "t2", records[0].Name)
}

func TestApplyMovedDefinitionKeepsTable(t *testing.T) {
	e := newEnv(t)
	before, after := t.TempDir(), t.TempDir()
	writeDef(t, before, "sales/orders.yaml", defYAML("sales", "orders"))
	writeDef(t, after, "archive/orders.yaml", defYAML("sales", "orders"))

	_, err := e.run(t, "", "apply", "--before-dir", t.TempDir(), "--after-dir", before)
	require.NoError(t, err)
	require.Len(t, e.tables(t), 1)

	out, err := e.run(t, "", "apply", "--before-dir", before, "--after-dir", after)
	require.NoError(t, err)
	assert.Contains(t, out, "superseded")

	records := e.tables(t)
	require.Len(t, records, 1)
	assert.Equal(t, "orders", records[0].Name)
}

func TestApplyReportsFailures(t *testing.T) {
	e := newEnv(t)
	before, after := t.TempDir(), t.TempDir()
	writeDef(t, after, "bad.yaml", "tableBucketARN: "+bucketARN+"\nnamespace: n\nformat: ICEBERG\n")
	writeDef(t, after, "good.yaml", defYAML("n", "t2"))

	out, err := e.run(t, "", "apply", "--before-dir", before, "--after-dir", after, "--json")
	require.Error(t, err)
	assert.Equal(t, exitUserError, exitCode(err))

	var report struct {
		Results []struct {
			Path      string `json:"path"`
			State     string `json:"state"`
			ErrorKind string `json:"error_kind"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Len(t, report.Results, 2)
	assert.Equal(t, "failed", report.Results[0].State)
	assert.Equal(t, types.KindValidation, report.Results[0].ErrorKind)
	assert.Equal(t, "succeeded", report.Results[1].State)

	require.Len(t, e.tables(t), 1)
}

func TestApplyDryRunLeavesCatalogEmpty(t *testing.T) {
	e := newEnv(t)
	after := t.TempDir()
	writeDef(t, after, "orders.yaml", defYAML("sales", "orders"))

	out, err := e.run(t, "", "apply", "--before-dir", filepath.Join(after, "missing"), "--after-dir", after, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "dry-run")
	assert.Empty(t, e.tables(t))
}

func TestApplyRequiresAfter(t *testing.T) {
	t.Setenv(envAfterSHA, "")
	e := newEnv(t)
	_, err := e.run(t, "", "apply")
	assert.Equal(t, exitUserError, exitCode(err))
}

func TestDiffDirectories(t *testing.T) {
	e := newEnv(t)
	before, after := t.TempDir(), t.TempDir()
	writeDef(t, before, "gone.yaml", defYAML("sales", "gone"))
	writeDef(t, before, "kept.yaml", defYAML("sales", "kept"))
	writeDef(t, after, "kept.yaml", defYAML("sales", "kept"))
	writeDef(t, after, "new.yaml", defYAML("sales", "fresh"))

	out, err := e.run(t, "", "diff", "--before-dir", before, "--after-dir", after)
	require.NoError(t, err)
	assert.Equal(t, "deleted  gone.yaml\nadded    new.yaml\n", out)
}

func TestLint(t *testing.T) {
	e := newEnv(t)
	dir := t.TempDir()
	good := writeDef(t, dir, "orders.yaml", defYAML("sales", "orders"))
	bad := writeDef(t, dir, "select.yaml", defYAML("sales", "select"))

	out, err := e.run(t, "", "lint", good)
	require.NoError(t, err)
	assert.Contains(t, out, "APPROVE")

	out, err = e.run(t, "", "lint", good, bad)
	assert.Equal(t, exitUserError, exitCode(err))
	assert.Contains(t, out, "REQUEST CHANGES")

	out, err = e.run(t, "", "lint", dir)
	assert.Equal(t, exitUserError, exitCode(err))
	assert.Contains(t, out, "orders.yaml")
	assert.Contains(t, out, "select.yaml")
}

func TestDescribe(t *testing.T) {
	e := newEnv(t)
	path := writeDef(t, t.TempDir(), "orders.yaml", defYAML("sales", "orders"))

	out, err := e.run(t, "", "describe", path)
	require.NoError(t, err)
	assert.Contains(t, out, "sales.orders (ICEBERG")
	assert.Contains(t, out, "order_id")
	assert.Contains(t, out, "timestamptz")
}

func TestTablesList(t *testing.T) {
	e := newEnv(t)
	path := writeDef(t, t.TempDir(), "orders.yaml", defYAML("sales", "orders"))
	_, err := e.run(t, "", "create", path)
	require.NoError(t, err)

	out, err := e.run(t, "", "tables", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "NAMESPACE")
	assert.Contains(t, out, "orders")
}

func TestInitWritesDefaultConfig(t *testing.T) {
	e := newEnv(t)
	e.configDir = filepath.Join(t.TempDir(), "fresh")

	out, err := e.run(t, "", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote")

	data, err := os.ReadFile(filepath.Join(e.configDir, configFileExt))
	require.NoError(t, err)
	assert.Equal(t, defaultConfigYAML, string(data))

	out, err = e.run(t, "", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Using existing")
}

func TestInvalidBackendIsUserError(t *testing.T) {
	e := newEnv(t)
	path := writeDef(t, t.TempDir(), "orders.yaml", defYAML("sales", "orders"))

	_, err := e.run(t, "", "create", path, "--backend", "bogus")
	require.Error(t, err)
	assert.Equal(t, exitUserError, exitCode(err))
	assert.ErrorIs(t, err, types.ErrBackendUnknown)
}

func TestConfigEnvOverride(t *testing.T) {
	e := newEnv(t)
	t.Setenv("TABLECTL_CONCURRENCY", "4")
	t.Setenv("TABLECTL_RETRY_MAX_ATTEMPTS", "7")

	_, err := e.run(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, 4, current.cfg.Concurrency)
	assert.Equal(t, 7, current.cfg.Retry.MaxAttempts)
	assert.Equal(t, types.BackendSQLite, current.cfg.Backend)
	assert.Equal(t, e.dataDir, current.cfg.DataDir)
}

func TestVersion(t *testing.T) {
	e := newEnv(t)
	out, err := e.run(t, "", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "tablectl "))
	assert.Contains(t, out, modulePath)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitSuccess, exitCode(nil))
	assert.Equal(t, exitUserError, exitCode(userError("bad input")))
	assert.Equal(t, exitSysError, exitCode(sysError("disk full")))
	assert.Equal(t, exitUserError, exitCode(fmt.Errorf("unknown flag")))
}

func TestApplyGitRevisions(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not on PATH")
	}
	e := newEnv(t)
	repo := t.TempDir()
	git := func(args ...string) string {
		t.Helper()
		base := []string{"-c", "user.name=tablectl", "-c", "user.email=tablectl@example.com", "-c", "commit.gpgsign=false"}
		cmd := exec.Command("git", append(base, args...)...)
		cmd.Dir = repo
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, string(out))
		return strings.TrimSpace(string(out))
	}
	commit := func() string {
		git("add", "-A")
		git("commit", "-q", "--allow-empty", "-m", "change")
		return git("rev-parse", "HEAD")
	}

	git("init", "-q")
	writeDef(t, repo, "tables/A.yaml", defYAML("n", "t1"))
	first := commit()
	writeDef(t, repo, "tables/B.yaml", defYAML("n", "t2"))
	second := commit()
	require.NoError(t, os.Remove(filepath.Join(repo, "tables", "A.yaml")))
	third := commit()

	// The first push of a branch has no before revision.
	_, err := e.run(t, "", "apply", "--repo", repo, "--before", strings.Repeat("0", 40), "--after", first)
	require.NoError(t, err)

	out, err := e.run(t, "", "apply", "--repo", repo, "--before", first, "--after", second)
	require.NoError(t, err)
	assert.Contains(t, out, "1 change(s): 1 succeeded, 0 failed")

	out, err = e.run(t, "", "apply", "--repo", repo, "--before", second, "--after", third)
	require.NoError(t, err)
	assert.Contains(t, out, "deleted")

	records := e.tables(t)
	require.Len(t, records, 1)
	assert.Equal(t, "t2", records[0].Name)

	out, err = e.run(t, "", "delete", "--repo", repo, "--rev", second, "tables/B.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "deleted")
	assert.Contains(t, out, "n.t2 (tables/B.yaml)")
	assert.Empty(t, e.tables(t))
}
