package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	require.Equal(t, 5555, cfg.Server.Port)
	require.Equal(t, "localhost:5555", cfg.Server.Address())
	require.Equal(t, "http://localhost:5555/", cfg.Server.URL())
	require.Zero(t, cfg.Server.ServeTimeout)
	require.Equal(t, 360, cfg.Chart.Height)
	require.Empty(t, cfg.Chart.Indicators)
	require.Equal(t, "backtesting", cfg.Report.HistoryDir)
	require.Equal(t, StorageMemory, cfg.History.Storage)
	require.Equal(t, 2*time.Second, cfg.History.BackoffMax)
	require.Equal(t, "zerolog", cfg.Log.Backend)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reportview.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 7000
  serve_timeout: 1d
chart:
  height: 500
  indicators: [ema:21, rsi]
history:
  storage: BuntDB
`), 0o644))

	t.Setenv("REPORTVIEW_SERVER_PORT", "7100")
	t.Setenv("REPORTVIEW_LOG_LEVEL", "debug")

	cfg, err := Load(path, filepath.Join(dir, "missing.env"))
	require.NoError(t, err)

	require.Equal(t, 7100, cfg.Server.Port)
	require.Equal(t, 24*time.Hour, cfg.Server.ServeTimeout)
	require.Equal(t, 500, cfg.Chart.Height)
	require.Equal(t, []string{"ema:21", "rsi"}, cfg.Chart.Indicators)
	require.Equal(t, StorageBuntDB, cfg.History.Storage)
	require.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_DotEnv(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("REPORTVIEW_CHART_INDICATORS=\"macd bb:20,2\"\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("REPORTVIEW_CHART_INDICATORS") })

	cfg, err := Load("", envFile)
	require.NoError(t, err)
	require.Equal(t, []string{"macd", "bb:20,2"}, cfg.Chart.Indicators)
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "missing.env")

	t.Run("duration", func(t *testing.T) {
		t.Setenv("REPORTVIEW_SERVER_SERVE_TIMEOUT", "soon")
		_, err := Load("", missing)
		require.ErrorContains(t, err, "serve_timeout")
	})

	t.Run("storage", func(t *testing.T) {
		t.Setenv("REPORTVIEW_HISTORY_STORAGE", "redis")
		_, err := Load("", missing)
		require.ErrorContains(t, err, "history.storage")
	})

	t.Run("port", func(t *testing.T) {
		t.Setenv("REPORTVIEW_SERVER_PORT", "0")
		_, err := Load("", missing)
		require.ErrorContains(t, err, "server.port")
	})

	t.Run("file", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "absent.yaml"), missing)
		require.Error(t, err)
	})
}
