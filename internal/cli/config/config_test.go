package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	oldWd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(oldWd) })
}

func TestLoad(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "memory://", cfg.Store.URL)
	assert.Equal(t, "pgx", cfg.Store.SQLDriver)
	assert.Equal(t, "odm:", cfg.Store.KeyPrefix)
	assert.Equal(t, 10*time.Second, cfg.Hooks.Timeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Log.Development)
}

func TestLoadWithConfigFile(t *testing.T) {
	chdir(t, t.TempDir())

	configContent := `
store:
  url: redis://localhost:6379/0
  sql_driver: postgres
hooks:
  timeout: 250ms
log:
  level: debug
  development: true
`
	require.NoError(t, os.WriteFile("odm.yaml", []byte(configContent), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "redis://localhost:6379/0", cfg.Store.URL)
	assert.Equal(t, "postgres", cfg.Store.SQLDriver)
	assert.Equal(t, 250*time.Millisecond, cfg.Hooks.Timeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.Development)
}

func TestLoadEnvOverride(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("ODM_STORE_URL", "sqlite:///tmp/odm.db")
	t.Setenv("ODM_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite:///tmp/odm.db", cfg.Store.URL)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store:\n  url: memory://\nhooks:\n  timeout: 2s\n"), 0644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, cfg.Hooks.Timeout)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "valid",
			cfg:  Config{Store: StoreConfig{URL: "memory://", SQLDriver: "pgx"}},
		},
		{
			name:    "empty url",
			cfg:     Config{Store: StoreConfig{SQLDriver: "pgx"}},
			wantErr: true,
		},
		{
			name:    "unknown driver",
			cfg:     Config{Store: StoreConfig{URL: "memory://", SQLDriver: "mysql"}},
			wantErr: true,
		},
		{
			name:    "negative timeout",
			cfg:     Config{Store: StoreConfig{URL: "memory://", SQLDriver: "pgx"}, Hooks: HooksConfig{Timeout: -time.Second}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateConfig(&tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
