// Package cli implements the tablectl command-line interface.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/tablectl/internal/observability"
	"github.com/mesh-intelligence/tablectl/internal/paths"
	"github.com/mesh-intelligence/tablectl/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	backend   string
	logLevel  string
	jsonMode  bool
}

var flags rootFlags

// session is the state PersistentPreRunE prepares for a subcommand.
type session struct {
	configDir string
	v         *viper.Viper
	cfg       types.Config
	log       zerolog.Logger
}

var current session

// exitCodeError carries the process exit code for a failed command.
type exitCodeError struct {
	code int
	err  error
}

func (e *exitCodeError) Error() string { return e.err.Error() }
func (e *exitCodeError) Unwrap() error { return e.err }

func userError(format string, args ...any) error {
	return &exitCodeError{code: exitUserError, err: fmt.Errorf(format, args...)}
}

func sysError(format string, args ...any) error {
	return &exitCodeError{code: exitSysError, err: fmt.Errorf(format, args...)}
}

// exitCode maps an error returned by a command to a process exit code.
// Errors that carry no code (flag parsing, unknown commands) are user
// errors.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var ec *exitCodeError
	if errors.As(err, &ec) {
		return ec.code
	}
	return exitUserError
}

// NewRootCmd creates the top-level "tablectl" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	flags = rootFlags{}
	current = session{log: zerolog.Nop()}

	root := &cobra.Command{
		Use:   "tablectl",
		Short: "Apply declarative table definitions to a table service",
		Long: "tablectl reads YAML table definitions from a repository, works out which\n" +
			"were added, modified, or deleted between two revisions, and creates or\n" +
			"deletes the matching tables.",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: prepareSession,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configDir, "config-dir", "", "configuration directory (default: ./.tablectl or the user config dir)")
	pf.StringVar(&flags.dataDir, "data-dir", "", "data directory for the local catalog")
	pf.StringVar(&flags.backend, "backend", "", "table service backend: s3tables or sqlite")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.BoolVar(&flags.jsonMode, "json", false, "output in JSON format")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newApplyCmd())
	root.AddCommand(newDiffCmd())
	root.AddCommand(newCreateCmd())
	root.AddCommand(newDeleteCmd())
	root.AddCommand(newParseCmd())
	root.AddCommand(newRenderCmd())
	root.AddCommand(newLintCmd())
	root.AddCommand(newDescribeCmd())
	root.AddCommand(newTablesCmd())

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	root := NewRootCmd()
	err := root.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(exitCode(err))
}

// prepareSession resolves the config directory, loads config.yaml and
// builds the logger.
func prepareSession(cmd *cobra.Command, _ []string) error {
	configDir, err := paths.ResolveConfigDir(flags.configDir)
	if err != nil {
		return sysError("resolve config dir: %w", err)
	}

	v, err := loadConfig(configDir)
	if err != nil {
		return userError("%w", err)
	}
	if flags.backend != "" {
		v.Set(cfgKeyBackend, flags.backend)
	}
	if flags.logLevel != "" {
		v.Set(cfgKeyLogLevel, flags.logLevel)
	}

	dataDir, err := paths.ResolveDataDir(flags.dataDir, v.GetString(cfgKeyDataDir))
	if err != nil {
		return sysError("resolve data dir: %w", err)
	}

	cfg := configFromViper(v)
	cfg.DataDir = dataDir

	current = session{
		configDir: configDir,
		v:         v,
		cfg:       cfg,
		log:       observability.NewLogger(cmd.ErrOrStderr(), v.GetString(cfgKeyLogLevel), v.GetString(cfgKeyLogFormat)),
	}
	return nil
}

// validatedConfig returns the session config after validation, as a user
// error when invalid.
func validatedConfig() (types.Config, error) {
	if err := current.cfg.Validate(); err != nil {
		return types.Config{}, userError("invalid configuration: %w", err)
	}
	return current.cfg, nil
}

// writeJSON prints v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
