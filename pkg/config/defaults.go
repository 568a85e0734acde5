package config

// Default values.
const (
	DefaultManifest    = "requalify.yaml"
	DefaultRoot        = "."
	DefaultLogLevel    = "info"
	DefaultLogJSON     = false
	DefaultDryRun      = false
	DefaultFailFast    = false
	DefaultSkipVendor  = true
	DefaultSkipGen     = false
	DefaultColor       = ColorAuto
	DefaultReport      = ""
	DefaultMetricsFile = ""
)
