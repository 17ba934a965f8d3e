package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
listen: ":9090"
database_path: /var/lib/grabarr/grabarr.db
log_level: debug
job:
  interval_seconds: 120
  startup_delay_seconds: 30
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.Listen)
	require.Equal(t, "/var/lib/grabarr/grabarr.db", cfg.DatabasePath)
	require.Equal(t, LogLevelDebug, cfg.LogLevel)
	require.Equal(t, 120, cfg.JobConfig.IntervalSeconds)
	require.Equal(t, 30, cfg.JobConfig.StartupDelaySeconds)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.NoError(t, err)
	require.Equal(t, ":8989", cfg.Listen)
	require.Equal(t, "grabarr.db", cfg.DatabasePath)
	require.Equal(t, LogLevelInfo, cfg.LogLevel)
	require.Equal(t, 60, cfg.JobConfig.IntervalSeconds)
	require.Equal(t, 60, cfg.JobConfig.StartupDelaySeconds)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	path := writeConfig(t, `listen: ":9090"`)

	t.Setenv("GRABARR_LISTEN", ":7070")
	t.Setenv("GRABARR_IMPORT_CHECK_SECONDS", "15")
	t.Setenv("GRABARR_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":7070", cfg.Listen, "environment wins over the file")
	require.Equal(t, 15, cfg.JobConfig.IntervalSeconds)
	require.Equal(t, LogLevelWarn, cfg.LogLevel)
}

func TestLoadInvalidIntervalOverride(t *testing.T) {
	t.Setenv("GRABARR_IMPORT_CHECK_SECONDS", "soon")

	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, err)
}

func TestLoadBadYaml(t *testing.T) {
	path := writeConfig(t, "listen: [unclosed")

	_, err := Load(path)
	require.Error(t, err)
}
