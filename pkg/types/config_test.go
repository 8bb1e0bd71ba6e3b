package types

import (
	"errors"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		Backend:     BackendS3Tables,
		Region:      "eu-west-1",
		Concurrency: 1,
		Retry:       DefaultRetryConfig(),
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:    "empty backend returns ErrBackendEmpty",
			mutate:  func(c *Config) { c.Backend = "" },
			wantErr: ErrBackendEmpty,
		},
		{
			name:    "unknown backend returns ErrBackendUnknown",
			mutate:  func(c *Config) { c.Backend = "glue" },
			wantErr: ErrBackendUnknown,
		},
		{
			name:    "zero concurrency rejected",
			mutate:  func(c *Config) { c.Concurrency = 0 },
			wantErr: ErrConcurrencyInvalid,
		},
		{
			name:    "zero attempts rejected",
			mutate:  func(c *Config) { c.Retry.MaxAttempts = 0 },
			wantErr: ErrRetryInvalid,
		},
		{
			name:    "base delay above max delay rejected",
			mutate:  func(c *Config) { c.Retry.BaseDelay = time.Minute },
			wantErr: ErrRetryDelayInvalid,
		},
		{
			name:   "valid s3tables config",
			mutate: func(c *Config) {},
		},
		{
			name:   "valid sqlite config with empty DataDir",
			mutate: func(c *Config) { c.Backend = BackendSQLite },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected nil error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}
