package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/requalify/pkg/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), ".requalify.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadConfig_EmptyFileUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)

	assert.Equal(t, config.DefaultManifest, cfg.Manifest)
	assert.Equal(t, config.DefaultRoot, cfg.Root)
	assert.Equal(t, config.DefaultLogLevel, cfg.Log.Level)
	assert.Equal(t, config.DefaultSkipVendor, cfg.Run.SkipVendor)
	assert.False(t, cfg.Run.SkipGenerated)
	assert.Equal(t, config.DefaultColor, cfg.Output.Color)
	assert.False(t, cfg.Run.DryRun)
	assert.Empty(t, cfg.Output.Report)
}

func TestLoadConfig_FileValues(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `manifest: migrate.yaml
root: ./social-geo-go
log:
  level: debug
  json: true
run:
  dry_run: true
  fail_fast: true
output:
  color: never
  report: out/summary.json
  metrics_file: out/requalify.prom
telemetry:
  otlp_endpoint: collector:4317
  otlp_insecure: true
  otlp_headers: team=qa
`)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "migrate.yaml", cfg.Manifest)
	assert.Equal(t, "./social-geo-go", cfg.Root)
	assert.True(t, cfg.Log.JSON)
	assert.True(t, cfg.Run.DryRun)
	assert.True(t, cfg.Run.FailFast)
	assert.True(t, cfg.Run.SkipVendor)
	assert.Equal(t, "out/summary.json", cfg.Output.Report)
	assert.Equal(t, "out/requalify.prom", cfg.Output.MetricsFile)
	assert.Equal(t, config.TelemetryConfig{OTLPEndpoint: "collector:4317", OTLPInsecure: true, OTLPHeaders: "team=qa"}, cfg.Telemetry)

	level, err := cfg.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
	assert.False(t, cfg.UseColor(true))
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	t.Parallel()

	_, err := config.LoadConfig(writeConfig(t, "log:\n  level: loud\n"))
	require.ErrorIs(t, err, config.ErrInvalidLogLevel)

	_, err = config.LoadConfig(writeConfig(t, "output:\n  color: rainbow\n"))
	require.ErrorIs(t, err, config.ErrInvalidColor)

	_, err = config.LoadConfig(writeConfig(t, "manifest: \"\"\n"))
	require.ErrorIs(t, err, config.ErrEmptyManifest)
}

func TestLoadConfig_MalformedFile(t *testing.T) {
	t.Parallel()

	_, err := config.LoadConfig(writeConfig(t, "log: [unclosed\n"))
	require.Error(t, err)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "run:\n  dry_run: false\n")

	t.Setenv("REQUALIFY_RUN_DRY_RUN", "true")
	t.Setenv("REQUALIFY_OUTPUT_COLOR", "always")

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.True(t, cfg.Run.DryRun)
	assert.True(t, cfg.UseColor(false))
}

func TestConfig_UseColorAuto(t *testing.T) {
	t.Parallel()

	cfg := config.Config{Output: config.OutputConfig{Color: config.ColorAuto}}

	assert.True(t, cfg.UseColor(true))
	assert.False(t, cfg.UseColor(false))
}
