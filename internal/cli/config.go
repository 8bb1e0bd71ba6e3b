package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/mesh-intelligence/tablectl/internal/observability"
	"github.com/mesh-intelligence/tablectl/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	envPrefix = "TABLECTL"
)

// Config keys in config.yaml.
const (
	cfgKeyBackend          = "backend"
	cfgKeyRegion           = "region"
	cfgKeyEndpoint         = "endpoint"
	cfgKeyDataDir          = "data_dir"
	cfgKeyDefinitionsDir   = "definitions_dir"
	cfgKeyConcurrency      = "concurrency"
	cfgKeyCreateNamespaces = "create_namespaces"
	cfgKeyRetryMaxAttempts = "retry.max_attempts"
	cfgKeyRetryBaseDelay   = "retry.base_delay"
	cfgKeyRetryMaxDelay    = "retry.max_delay"
	cfgKeyLogLevel         = "log.level"
	cfgKeyLogFormat        = "log.format"
	cfgKeyPushgateway      = "metrics.pushgateway"
)

// envKeys can be overridden with TABLECTL_<KEY>, dots becoming
// underscores. data_dir is resolved by the paths package instead.
var envKeys = []string{
	cfgKeyBackend,
	cfgKeyRegion,
	cfgKeyEndpoint,
	cfgKeyDefinitionsDir,
	cfgKeyConcurrency,
	cfgKeyCreateNamespaces,
	cfgKeyRetryMaxAttempts,
	cfgKeyRetryBaseDelay,
	cfgKeyRetryMaxDelay,
	cfgKeyLogLevel,
	cfgKeyLogFormat,
	cfgKeyPushgateway,
}

// defaultConfigYAML is written by init.
const defaultConfigYAML = `# tablectl configuration

# Table service: s3tables (AWS S3 Tables) or sqlite (local catalog)
backend: s3tables

# AWS region and endpoint override (optional; the SDK default chain applies)
# region: eu-west-1
# endpoint: http://localhost:4566

# Directory holding table definitions, relative to the repository root
definitions_dir: tables

# Create the namespace before creating a table
create_namespaces: false

# Tables applied in parallel; changes to the same table are always serialized
concurrency: 1

retry:
  max_attempts: 5
  base_delay: 200ms
  max_delay: 5s

log:
  level: info
  format: console

# Prometheus Pushgateway for run metrics (optional)
# metrics:
#   pushgateway: http://pushgateway:9091

# Local catalog directory (optional; overridable by --data-dir)
# data_dir:
`

// newViper returns a viper instance with defaults and environment bindings
// but no config file.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault(cfgKeyBackend, types.BackendS3Tables)
	v.SetDefault(cfgKeyDefinitionsDir, types.DefaultDefinitionsDir)
	v.SetDefault(cfgKeyConcurrency, types.DefaultConcurrency)
	v.SetDefault(cfgKeyRetryMaxAttempts, types.DefaultMaxAttempts)
	v.SetDefault(cfgKeyRetryBaseDelay, types.DefaultBaseDelay)
	v.SetDefault(cfgKeyRetryMaxDelay, types.DefaultMaxDelay)
	v.SetDefault(cfgKeyLogLevel, "info")
	v.SetDefault(cfgKeyLogFormat, observability.FormatConsole)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range envKeys {
		_ = v.BindEnv(key)
	}
	return v
}

// loadConfig reads config.yaml from configDir. A missing file or directory
// is not an error; defaults and environment apply.
func loadConfig(configDir string) (*viper.Viper, error) {
	v := newViper()
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// configFromViper builds the service configuration. DataDir is left to the
// caller.
func configFromViper(v *viper.Viper) types.Config {
	return types.Config{
		Backend:          v.GetString(cfgKeyBackend),
		Region:           v.GetString(cfgKeyRegion),
		Endpoint:         v.GetString(cfgKeyEndpoint),
		DefinitionsDir:   v.GetString(cfgKeyDefinitionsDir),
		Concurrency:      v.GetInt(cfgKeyConcurrency),
		CreateNamespaces: v.GetBool(cfgKeyCreateNamespaces),
		Retry: types.RetryConfig{
			MaxAttempts: v.GetInt(cfgKeyRetryMaxAttempts),
			BaseDelay:   v.GetDuration(cfgKeyRetryBaseDelay),
			MaxDelay:    v.GetDuration(cfgKeyRetryMaxDelay),
		},
	}
}
