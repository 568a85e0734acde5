// Package observability provides structured logging, tracing and run metrics
// for the requalify commands.
package observability

import (
	"io"
	"log/slog"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// AppMode identifies the command the binary was launched with.
type AppMode string

const (
	// ModeRun is the manifest batch mode.
	ModeRun AppMode = "run"
	// ModeFile is the single-file mode.
	ModeFile AppMode = "file"
	// ModeCheck is the read-only manifest check mode.
	ModeCheck AppMode = "check"
)

const (
	// defaultServiceName is the service attribute attached to logs and spans.
	defaultServiceName = "requalify"

	// defaultShutdownTimeoutSec is the default shutdown timeout in seconds.
	defaultShutdownTimeoutSec = 5
)

// Config holds all observability configuration.
type Config struct {
	// ServiceName is the service attribute on log records and the trace resource.
	ServiceName string

	// ServiceVersion is the semantic version of the running binary.
	ServiceVersion string

	// Mode identifies how the binary was launched.
	Mode AppMode

	// LogLevel controls the minimum slog severity.
	LogLevel slog.Level

	// LogJSON enables JSON-formatted log output.
	LogJSON bool

	// LogWriter receives log output. Nil means stderr.
	LogWriter io.Writer

	// SpanProcessor, when set, receives every span through a dedicated SDK
	// tracer provider. It takes precedence over OTLPEndpoint.
	SpanProcessor sdktrace.SpanProcessor

	// OTLPEndpoint is the gRPC collector address spans are batched to.
	// Empty, with no SpanProcessor, uses the global otel provider.
	OTLPEndpoint string

	// OTLPInsecure disables TLS for the collector connection.
	OTLPInsecure bool

	// OTLPHeaders are sent with every export request.
	OTLPHeaders map[string]string

	// ShutdownTimeoutSec is the maximum seconds to wait for flush on shutdown.
	ShutdownTimeoutSec int
}

// DefaultConfig returns a Config with sensible defaults for zero-config startup.
func DefaultConfig() Config {
	return Config{
		ServiceName:        defaultServiceName,
		Mode:               ModeRun,
		LogLevel:           slog.LevelInfo,
		ShutdownTimeoutSec: defaultShutdownTimeoutSec,
	}
}
