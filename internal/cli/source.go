package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/tablectl/internal/change"
)

// GitLab CI variables used as revision defaults.
const (
	envBeforeSHA = "CI_COMMIT_BEFORE_SHA"
	envAfterSHA  = "CI_COMMIT_SHA"
)

// sourceFlags select where changes come from: two git revisions or two
// directory trees.
type sourceFlags struct {
	before    string
	after     string
	dir       string
	repo      string
	beforeDir string
	afterDir  string
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.before, "before", os.Getenv(envBeforeSHA), "git revision before the change set (default $"+envBeforeSHA+")")
	fs.StringVar(&f.after, "after", os.Getenv(envAfterSHA), "git revision after the change set (default $"+envAfterSHA+")")
	fs.StringVar(&f.dir, "dir", "", "definitions directory in the repository (default: definitions_dir from config)")
	fs.StringVar(&f.repo, "repo", "", "git working tree (default: current directory)")
	fs.StringVar(&f.beforeDir, "before-dir", "", "directory tree holding the definitions before the change set")
	fs.StringVar(&f.afterDir, "after-dir", "", "directory tree holding the definitions after the change set")
	cmd.MarkFlagsMutuallyExclusive("before", "before-dir")
	cmd.MarkFlagsMutuallyExclusive("after", "after-dir")
}

// resolve returns the change source and the two revisions to compare.
func (f *sourceFlags) resolve(defaultDir string) (change.Source, string, string, error) {
	if f.beforeDir != "" || f.afterDir != "" {
		if f.afterDir == "" {
			return nil, "", "", userError("--after-dir is required with --before-dir")
		}
		return change.DirSource{}, f.beforeDir, f.afterDir, nil
	}
	if f.after == "" {
		return nil, "", "", userError("--after (or $%s) is required", envAfterSHA)
	}
	dir := f.dir
	if dir == "" {
		dir = defaultDir
	}
	return change.GitSource{RepoDir: f.repo, Dir: dir}, f.before, f.after, nil
}
