package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emarzona/shortlinks/internal/config"
)

func env(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestParseArgs_Defaults(t *testing.T) {
	opts, err := config.ParseArgs(nil, env(nil))
	require.NoError(t, err)

	assert.Equal(t, "localhost:8080", opts.ServerAddress)
	assert.Equal(t, "localhost:3200", opts.GRPCAddress)
	assert.Equal(t, "info", opts.LogLevel)
	assert.Equal(t, 4, opts.ClickWorkers)
	assert.Equal(t, 3*time.Second, opts.ClickTimeout)
	assert.Empty(t, opts.DatabaseDSN)
	assert.False(t, opts.EnableHTTPS)
}

func TestParseArgs_Precedence(t *testing.T) {
	cfg := writeConfig(t, `{
		"server_address": "file:1",
		"database_dsn": "postgres://file",
		"trusted_subnet": "10.10.0.0/16",
		"click_timeout": "750ms",
		"tls_hosts": ["go.emarzona.example"],
		"enable_pprof": true
	}`)

	t.Run("file over defaults", func(t *testing.T) {
		opts, err := config.ParseArgs([]string{"-c", cfg}, env(nil))
		require.NoError(t, err)
		assert.Equal(t, "file:1", opts.ServerAddress)
		assert.Equal(t, "postgres://file", opts.DatabaseDSN)
		assert.Equal(t, 750*time.Millisecond, opts.ClickTimeout)
		assert.Equal(t, []string{"go.emarzona.example"}, opts.TLSHosts)
		assert.True(t, opts.EnablePprof)
		assert.Equal(t, "localhost:3200", opts.GRPCAddress)
	})

	t.Run("flags over file", func(t *testing.T) {
		opts, err := config.ParseArgs([]string{"-c", cfg, "-a", "flag:2", "-w", "0"}, env(nil))
		require.NoError(t, err)
		assert.Equal(t, "flag:2", opts.ServerAddress)
		assert.Equal(t, "postgres://file", opts.DatabaseDSN)
		assert.Equal(t, 0, opts.ClickWorkers)
	})

	t.Run("env over flags", func(t *testing.T) {
		opts, err := config.ParseArgs([]string{"-a", "flag:2", "-tls-hosts", "a.example, b.example"}, env(map[string]string{
			"CONFIG":           cfg,
			"SERVER_ADDRESS":   "env:3",
			"ENABLE_HTTPS":     "true",
			"CLICK_QUEUE_SIZE": "64",
			"CLICK_TIMEOUT":    "2s",
			"REDIS_ADDR":       "localhost:6379",
		}))
		require.NoError(t, err)
		assert.Equal(t, "env:3", opts.ServerAddress)
		assert.True(t, opts.EnableHTTPS)
		assert.Equal(t, 64, opts.ClickQueueSize)
		assert.Equal(t, 2*time.Second, opts.ClickTimeout)
		assert.Equal(t, "localhost:6379", opts.RedisAddr)
		assert.Equal(t, []string{"a.example", "b.example"}, opts.TLSHosts)
		assert.Equal(t, cfg, opts.Config)
	})
}

func TestParseArgs_YAML(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(`
server_address: yaml:1
redis_addr: redis://localhost:6379/0
click_workers: 8
click_timeout: 1500ms
tls_hosts:
  - go.emarzona.example
`), 0o600))

	opts, err := config.ParseArgs([]string{"-c", p}, env(nil))
	require.NoError(t, err)
	assert.Equal(t, "yaml:1", opts.ServerAddress)
	assert.Equal(t, "redis://localhost:6379/0", opts.RedisAddr)
	assert.Equal(t, 8, opts.ClickWorkers)
	assert.Equal(t, 1500*time.Millisecond, opts.ClickTimeout)
	assert.Equal(t, []string{"go.emarzona.example"}, opts.TLSHosts)
	assert.Equal(t, "info", opts.LogLevel)
}

func TestParseArgs_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
		env  map[string]string
	}{
		{name: "unknown flag", args: []string{"-z"}},
		{name: "bad subnet", args: []string{"-t", "10.0.0.1"}},
		{name: "negative workers", args: []string{"-w", "-1"}},
		{name: "bad log level", env: map[string]string{"LOG_LEVEL": "chatty"}},
		{name: "bad bool", env: map[string]string{"ENABLE_HTTPS": "maybe"}},
		{name: "bad int", env: map[string]string{"CLICK_WORKERS": "many"}},
		{name: "missing config file", args: []string{"-c", "/does/not/exist.json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.ParseArgs(tt.args, env(tt.env))
			assert.Error(t, err)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(p, []byte("SHORTLINKS_TEST_DOTENV=loaded\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("SHORTLINKS_TEST_DOTENV") })

	require.NoError(t, config.LoadDotEnv(filepath.Join(dir, "missing.env"), p))
	assert.Equal(t, "loaded", os.Getenv("SHORTLINKS_TEST_DOTENV"))
}
