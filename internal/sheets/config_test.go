package sheets

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/payrank/internal/common"
)

func serviceAccountConfig() Config {
	cfg := DefaultConfig()
	cfg.ServiceAccountPath = "/etc/payrank/sheets.json"
	return cfg
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		wantErr error
		mutate  func(*Config)
		name    string
	}{
		{name: "service account defaults", mutate: func(*Config) {}},
		{
			name: "oauth credentials",
			mutate: func(c *Config) {
				c.ServiceAccountPath = ""
				c.ClientID, c.ClientSecret, c.RefreshToken = "id", "secret", "refresh"
			},
		},
		{name: "no retries", mutate: func(c *Config) { c.RetryAttempts, c.RetryDelay = 0, 0 }},
		{
			name:    "missing secret",
			mutate:  func(c *Config) { c.ServiceAccountPath, c.ClientID, c.RefreshToken = "", "id", "refresh" },
			wantErr: common.ErrMissingConfig,
		},
		{
			name:    "both methods",
			mutate:  func(c *Config) { c.ClientID, c.ClientSecret, c.RefreshToken = "id", "secret", "refresh" },
			wantErr: common.ErrInvalidConfig,
		},
		{name: "zero batch", mutate: func(c *Config) { c.BatchSize = 0 }, wantErr: common.ErrInvalidConfig},
		{name: "negative delay", mutate: func(c *Config) { c.RetryDelay = -time.Second }, wantErr: common.ErrInvalidConfig},
		{name: "lowercase currency", mutate: func(c *Config) { c.Currency = "eur" }},
		{name: "unknown currency", mutate: func(c *Config) { c.Currency = "DOUBLOON" }, wantErr: common.ErrInvalidConfig},
		{name: "unknown time zone", mutate: func(c *Config) { c.TimeZone = "Mars/Olympus" }, wantErr: common.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := serviceAccountConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}
