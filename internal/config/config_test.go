package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func Test_LoadConfig_YAML(t *testing.T) {
	path := writeFile(t, "config.yml", `
allowedOrigins:
  - https://booking.example.com
dataSource:
  url: https://dealer.example.com
  requestsPerSecond: 5
  burst: 2
cache:
  ttl: 1m
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ListenAddress)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, []string{"https://booking.example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, "https://dealer.example.com", cfg.DataSource.URL)
	assert.Equal(t, 5.0, cfg.DataSource.RequestsPerSecond)
	assert.Equal(t, 2, cfg.DataSource.Burst)

	timeout, err := cfg.RequestTimeout()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, timeout)

	ttl, err := cfg.CacheTTL()
	require.NoError(t, err)
	assert.Equal(t, time.Minute, ttl)
}

func Test_LoadConfig_JSON(t *testing.T) {
	path := writeFile(t, "config.json", `{"listen": ":9090", "mongoURL": "mongodb://localhost:27017"}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.ListenAddress)
	assert.Equal(t, "cis-slotgrid", cfg.MongoDatabaseName)
}

func Test_LoadConfig_Env(t *testing.T) {
	t.Setenv("DATASOURCE_URL", "https://env.example.com")

	cfg, err := LoadConfig(writeFile(t, "config.json", `{}`))
	require.NoError(t, err)

	assert.Equal(t, "https://env.example.com", cfg.DataSource.URL)
}

func Test_LoadConfig_Errors(t *testing.T) {
	t.Setenv("DATASOURCE_URL", "")

	cases := []struct {
		Name    string
		File    string
		Content string
	}{
		{"unknown field", "config.json", `{"dataSource": {"url": "http://x"}, "interval": 30}`},
		{"no source", "config.json", `{}`},
		{"bad timeout", "config.yaml", "dataSource:\n  url: http://x\n  timeout: soon\n"},
		{"bad ttl", "config.yaml", "dataSource:\n  url: http://x\ncache:\n  ttl: forever\n"},
		{"unsupported format", "config.toml", `listen = ":8080"`},
	}

	for _, c := range cases {
		_, err := LoadConfig(writeFile(t, c.File, c.Content))
		assert.Error(t, err, c.Name)
	}
}
