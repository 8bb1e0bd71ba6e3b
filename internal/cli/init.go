package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/tablectl/internal/sqlite"
	"github.com/mesh-intelligence/tablectl/pkg/types"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration and prepare the data directory",
		Long: "Create the configuration directory with a default config.yaml if none\n" +
			"exists, and the data directory. With the sqlite backend, also create the\n" +
			"local catalog.",
		Args: cobra.NoArgs,
		RunE: runInit,
	}
}

func runInit(cmd *cobra.Command, _ []string) error {
	configDir := current.configDir
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return sysError("create config directory: %w", err)
	}

	configPath := filepath.Join(configDir, configFileExt)
	created, err := writeConfigIfMissing(configPath)
	if err != nil {
		return sysError("write config: %w", err)
	}

	out := cmd.OutOrStdout()
	if created {
		fmt.Fprintf(out, "Wrote %s\n", configPath)
	} else {
		fmt.Fprintf(out, "Using existing %s\n", configPath)
	}

	if err := os.MkdirAll(current.cfg.DataDir, 0o755); err != nil {
		return sysError("create data directory: %w", err)
	}
	if current.cfg.Backend != types.BackendSQLite {
		return nil
	}
	catalog := sqlite.NewCatalog()
	if err := catalog.Attach(current.cfg); err != nil {
		return sysError("initialize catalog: %w", err)
	}
	if err := catalog.Detach(); err != nil {
		return sysError("finalize catalog: %w", err)
	}
	fmt.Fprintf(out, "Catalog ready in %s\n", current.cfg.DataDir)
	return nil
}

// writeConfigIfMissing writes the default config.yaml when path does not
// exist. It reports whether a file was written.
func writeConfigIfMissing(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return false, nil
	}
	if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat config file: %w", err)
	}
	return true, os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}
