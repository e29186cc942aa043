package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, uint64(100000000000), cfg.Engine.PNRFloor)
	assert.Equal(t, 6, cfg.Engine.MaxGroupSize)
	assert.Equal(t, 0.8, cfg.Engine.ConfirmedRefundRate)
	assert.Equal(t, 1.0, cfg.Engine.WaitlistRefundRate)
	assert.Equal(t, StorageFlatFile, cfg.Storage.Backend)
	assert.Equal(t, "data", cfg.Storage.DataDir)
	assert.Equal(t, 0.8, cfg.Payment.SuccessRate)
	assert.Equal(t, time.Hour, cfg.Identity.TokenExpiry)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/reservations")
	t.Setenv("MAX_GROUP_SIZE", "4")
	t.Setenv("PAYMENT_SUCCESS_RATE", "0.95")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoragePostgres, cfg.Storage.Backend)
	assert.Equal(t, "postgres://localhost/reservations", cfg.Database.URL)
	assert.Equal(t, 4, cfg.Engine.MaxGroupSize)
	assert.Equal(t, 0.95, cfg.Payment.SuccessRate)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_IgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("MAX_GROUP_SIZE", "lots")
	t.Setenv("PAYMENT_SUCCESS_RATE", "most of the time")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Engine.MaxGroupSize)
	assert.Equal(t, 0.8, cfg.Payment.SuccessRate)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"Unknown backend", func(c *Config) { c.Storage.Backend = "s3" }},
		{"Flatfile without data dir", func(c *Config) { c.Storage.DataDir = "" }},
		{"Postgres without URL", func(c *Config) {
			c.Storage.Backend = StoragePostgres
			c.Database.URL = ""
		}},
		{"Zero group size", func(c *Config) { c.Engine.MaxGroupSize = 0 }},
		{"Refund rate above one", func(c *Config) { c.Engine.ConfirmedRefundRate = 1.2 }},
		{"Negative success rate", func(c *Config) { c.Payment.SuccessRate = -0.1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load()
			require.NoError(t, err)
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
