package types

import (
	"errors"
	"time"
)

// Supported backend names.
const (
	BackendS3Tables = "s3tables"
	BackendSQLite   = "sqlite"
)

// Config validation errors.
var (
	ErrBackendEmpty       = errors.New("backend must not be empty")
	ErrBackendUnknown     = errors.New("unknown backend")
	ErrConcurrencyInvalid = errors.New("concurrency must be positive")
	ErrRetryInvalid       = errors.New("retry max attempts must be positive")
	ErrRetryDelayInvalid  = errors.New("retry delays must be positive and base <= max")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendS3Tables: true,
	BackendSQLite:   true,
}

// Config is passed explicitly to the apply driver and the backends so that
// nothing reads credentials or pipeline environment ad hoc.
type Config struct {
	Backend          string      `json:"backend" yaml:"backend"`
	Region           string      `json:"region" yaml:"region"`
	Endpoint         string      `json:"endpoint" yaml:"endpoint"`
	DataDir          string      `json:"data_dir" yaml:"data_dir"`
	DefinitionsDir   string      `json:"definitions_dir" yaml:"definitions_dir"`
	Concurrency      int         `json:"concurrency" yaml:"concurrency"`
	CreateNamespaces bool        `json:"create_namespaces" yaml:"create_namespaces"`
	DryRun           bool        `json:"dry_run" yaml:"dry_run"`
	Retry            RetryConfig `json:"retry" yaml:"retry"`
}

// RetryConfig bounds retries of transient table service failures.
type RetryConfig struct {
	MaxAttempts int           `json:"max_attempts" yaml:"max_attempts"`
	BaseDelay   time.Duration `json:"base_delay" yaml:"base_delay"`
	MaxDelay    time.Duration `json:"max_delay" yaml:"max_delay"`
}

// Defaults for optional Config values.
const (
	DefaultDefinitionsDir = "tables"
	DefaultConcurrency    = 1
	DefaultMaxAttempts    = 5
	DefaultBaseDelay      = 200 * time.Millisecond
	DefaultMaxDelay       = 5 * time.Second
)

// DefaultRetryConfig returns the retry bounds used when none are configured.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: DefaultMaxAttempts,
		BaseDelay:   DefaultBaseDelay,
		MaxDelay:    DefaultMaxDelay,
	}
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	if c.Concurrency < 1 {
		return ErrConcurrencyInvalid
	}
	if c.Retry.MaxAttempts < 1 {
		return ErrRetryInvalid
	}
	if c.Retry.BaseDelay <= 0 || c.Retry.MaxDelay <= 0 || c.Retry.BaseDelay > c.Retry.MaxDelay {
		return ErrRetryDelayInvalid
	}
	return nil
}
