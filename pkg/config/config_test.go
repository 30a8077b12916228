package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, 10, cfg.TitleMinLength)
	assert.Equal(t, 70, cfg.TitleMaxLength)
	assert.Equal(t, 2*time.Second, cfg.SettleDelay())
	assert.Equal(t, 30*time.Second, cfg.ValidatorTimeout())
	assert.Equal(t, 60*time.Second, cfg.DownloadTimeout())
	assert.Equal(t, "validator", cfg.ValidatorDir)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("TITLE_MAX_LENGTH", "60")
	t.Setenv("SETTLE_DELAY_MS", "500")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, 60, cfg.TitleMaxLength)
	assert.Equal(t, 500*time.Millisecond, cfg.SettleDelay())
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
}

func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("SERVER_PORT=9090\nTITLE_MIN_LENGTH=5\n"), 0o644))

	cfg, err := load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, 5, cfg.TitleMinLength)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			ServerPort:              "8080",
			MaxConcurrency:          2,
			PageLoadTimeoutSeconds:  60,
			ValidatorTimeoutSeconds: 30,
			DownloadTimeoutSeconds:  60,
			AuditTimeoutSeconds:     120,
			TitleMinLength:          10,
			TitleMaxLength:          70,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "bad port", mutate: func(c *Config) { c.ServerPort = "http" }, wantErr: errInvalidPort},
		{name: "port out of range", mutate: func(c *Config) { c.ServerPort = "70000" }, wantErr: errInvalidPort},
		{name: "inverted title bounds", mutate: func(c *Config) { c.TitleMinLength = 80 }, wantErr: errInvalidTitleBounds},
		{name: "negative title min", mutate: func(c *Config) { c.TitleMinLength = -1 }, wantErr: errInvalidTitleBounds},
		{name: "zero concurrency", mutate: func(c *Config) { c.MaxConcurrency = 0 }, wantErr: errInvalidConcurrency},
		{name: "zero validator timeout", mutate: func(c *Config) { c.ValidatorTimeoutSeconds = 0 }, wantErr: errInvalidTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
