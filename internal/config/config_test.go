package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formflow/internal/config"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "http://127.0.0.1:8000", cfg.Backend.URL)
	assert.Equal(t, ":8080", cfg.Web.Addr)
	assert.Equal(t, "formflow-dev.db", cfg.Dev.Database)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestDecodeMergesOverDefaults(t *testing.T) {
	cfg := config.Default()
	err := config.Decode([]byte("backend:\n  url: http://forms.internal:9000\nlog:\n  format: json\n"), &cfg)
	require.NoError(t, err)

	assert.Equal(t, "http://forms.internal:9000", cfg.Backend.URL)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, ":8080", cfg.Web.Addr, "keys absent from the file keep their default")
}

func TestDecodeRejectsMalformedYAML(t *testing.T) {
	cfg := config.Default()
	assert.Error(t, config.Decode([]byte("backend: [unterminated"), &cfg))
	assert.Error(t, config.Decode([]byte("a: 1"), nil))
}

func TestApplyEnvOverrides(t *testing.T) {
	env := map[string]string{
		config.EnvBackendURL: "https://api.example.com",
		config.EnvListenAddr: "127.0.0.1:9999",
		config.EnvLogLevel:   "debug",
		config.EnvDevDB:      "   ",
	}
	cfg := config.Default()
	cfg.ApplyEnv(func(key string) (string, bool) {
		value, ok := env[key]
		return value, ok
	})

	assert.Equal(t, "https://api.example.com", cfg.Backend.URL)
	assert.Equal(t, "127.0.0.1:9999", cfg.Web.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "formflow-dev.db", cfg.Dev.Database, "blank values are ignored")
}

func TestLoadFromFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "formflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte("web:\n  addr: \":7000\"\n  theme: dark\n"), 0o644))
	t.Setenv(config.EnvBackendURL, "http://backend:8000")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Web.Addr)
	assert.Equal(t, "dark", cfg.Web.Theme)
	assert.Equal(t, "http://backend:8000", cfg.Backend.URL)
}

func TestLoadValidation(t *testing.T) {
	t.Setenv(config.EnvBackendURL, "not a url")
	t.Setenv(config.EnvLogFormat, "xml")

	_, err := config.Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend.url")
	assert.Contains(t, err.Error(), "log.format")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
