package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "yahoo", cfg.DataSource.Provider)
	assert.Equal(t, "AAPL, MSFT, GOOG", cfg.Report.Symbols)
	assert.Equal(t, 365, cfg.Report.LookbackDays)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.NoError(t, cfg.Validate())
	assert.False(t, cfg.TelegramEnabled())
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	path := writeConfig(t, `
data_source:
  provider: eodhd
  api_key: from-file
report:
  symbols: "TSLA, NVDA"
  lookback_days: 30
telegram:
  bot_token: tok
  chat_id: "42"
`)
	t.Setenv("MOVERS_DATA_SOURCE_API_KEY", "from-env")
	t.Setenv("MOVERS_SERVER_ADDR", ":9090")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "eodhd", cfg.DataSource.Provider)
	assert.Equal(t, "from-env", cfg.DataSource.APIKey)
	assert.Equal(t, "TSLA, NVDA", cfg.Report.Symbols)
	assert.Equal(t, 30, cfg.Report.LookbackDays)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.True(t, cfg.TelegramEnabled())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("MOVERS_REPORT_SYMBOLS=AMZN\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("MOVERS_REPORT_SYMBOLS") })

	cfg, err := Load(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "AMZN", cfg.Report.Symbols)
}

func TestLoad_ProxyFromUnprefixedEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("MOVERS_HTTPS_PROXY", "")
	t.Setenv("HTTPS_PROXY", "http://proxy.internal:3128")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "http://proxy.internal:3128", cfg.Proxy)
}

func TestLoad_ProxyPrefixedEnvWins(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HTTPS_PROXY", "http://proxy.internal:3128")
	t.Setenv("MOVERS_HTTPS_PROXY", "http://movers-proxy:8080")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "http://movers-proxy:8080", cfg.Proxy)
}

func TestLoad_BadYAML(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := Load(writeConfig(t, "report: [unclosed"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Chdir(t.TempDir())

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"unknown provider", func(c *Config) { c.DataSource.Provider = "bloomberg" }, "Provider"},
		{"eodhd without key", func(c *Config) { c.DataSource.Provider = "eodhd" }, "APIKey"},
		{"token without chat", func(c *Config) { c.Telegram.BotToken = "x" }, "ChatID"},
		{"bad log level", func(c *Config) { c.Log.Level = "trace" }, "Level"},
		{"negative rate", func(c *Config) { c.DataSource.RateLimit = -1 }, "RateLimit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
			require.NoError(t, err)
			tt.mutate(cfg)

			err = cfg.Validate()
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tt.wantErr), err.Error())
		})
	}
}
