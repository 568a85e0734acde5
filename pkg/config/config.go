// Package config provides YAML-based settings for the requalify commands.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Config holds all requalify settings.
type Config struct {
	Manifest  string          `mapstructure:"manifest"`
	Root      string          `mapstructure:"root"`
	Log       LogConfig       `mapstructure:"log"`
	Run       RunConfig       `mapstructure:"run"`
	Output    OutputConfig    `mapstructure:"output"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// RunConfig holds batch behaviour settings.
type RunConfig struct {
	DryRun     bool `mapstructure:"dry_run"`
	FailFast   bool `mapstructure:"fail_fast"`
	SkipVendor bool `mapstructure:"skip_vendor"`

	// SkipGenerated leaves files with a "Code generated" marker alone.
	SkipGenerated bool `mapstructure:"skip_generated"`
}

// OutputConfig holds output settings.
type OutputConfig struct {
	// Color is one of auto, always, never.
	Color string `mapstructure:"color"`
	// Report is an optional path for the run summary (.json, .yaml or .yml).
	Report string `mapstructure:"report"`
	// MetricsFile is an optional prometheus textfile path.
	MetricsFile string `mapstructure:"metrics_file"`
}

// TelemetryConfig holds span export settings.
type TelemetryConfig struct {
	// OTLPEndpoint is a gRPC collector address; empty disables export.
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	OTLPInsecure bool   `mapstructure:"otlp_insecure"`
	// OTLPHeaders is a "key=value,key=value" list sent with every export.
	OTLPHeaders string `mapstructure:"otlp_headers"`
}

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Sentinel errors for configuration validation.
var (
	// ErrInvalidLogLevel indicates an unknown log.level value.
	ErrInvalidLogLevel = errors.New("log.level must be one of debug, info, warn, error")
	// ErrInvalidColor indicates an unknown output.color value.
	ErrInvalidColor = errors.New("output.color must be one of auto, always, never")
	// ErrEmptyManifest indicates a blank manifest path.
	ErrEmptyManifest = errors.New("manifest must not be empty")
)

// Validate checks Config invariants and returns the first error found.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Manifest) == "" {
		return ErrEmptyManifest
	}

	_, err := c.SlogLevel()
	if err != nil {
		return err
	}

	switch c.Output.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidColor, c.Output.Color)
	}

	return nil
}

// SlogLevel converts log.level into a [slog.Level].
func (c *Config) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Log.Level)
	}
}

// UseColor resolves output.color against whether the output is a terminal.
func (c *Config) UseColor(isTerminal bool) bool {
	switch c.Output.Color {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default:
		return isTerminal
	}
}
