package observability

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	attrTraceID  = "trace_id"
	attrSpanID   = "span_id"
	attrService  = "service"
	attrVersion  = "version"
	attrMode     = "mode"
	attrSeverity = "log.severity"
)

// SpanHandler is an [slog.Handler] bound to the span carried by the record's
// context. Every record gets the span's trace_id and span_id. Records at or
// above the event level are also added to a recording span as events, so a
// file's warnings travel with its trace.
type SpanHandler struct {
	next       slog.Handler
	eventLevel slog.Level
	prefix     string
	attrs      []attribute.KeyValue
}

// NewSpanHandler wraps next. Records at eventLevel or above become span events.
func NewSpanHandler(next slog.Handler, eventLevel slog.Level) *SpanHandler {
	return &SpanHandler{next: next, eventLevel: eventLevel}
}

// Enabled delegates to the wrapped handler.
func (h *SpanHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

// Handle mirrors the record onto the span, then delegates.
func (h *SpanHandler) Handle(ctx context.Context, record slog.Record) error {
	span := trace.SpanFromContext(ctx)

	if record.Level >= h.eventLevel && span.IsRecording() {
		span.AddEvent(record.Message, trace.WithAttributes(h.eventAttrs(record)...))
	}

	if sc := span.SpanContext(); sc.IsValid() {
		record.AddAttrs(
			slog.String(attrTraceID, sc.TraceID().String()),
			slog.String(attrSpanID, sc.SpanID().String()),
		)
	}

	err := h.next.Handle(ctx, record)
	if err != nil {
		return fmt.Errorf("span handler: %w", err)
	}

	return nil
}

// WithAttrs returns a handler whose records and span events carry attrs.
func (h *SpanHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.next = h.next.WithAttrs(attrs)
	clone.attrs = appendAttrs(append([]attribute.KeyValue(nil), h.attrs...), h.prefix, attrs)

	return &clone
}

// WithGroup returns a handler that nests subsequent attributes under name.
func (h *SpanHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	clone := *h
	clone.next = h.next.WithGroup(name)
	clone.prefix = h.prefix + name + "."

	return &clone
}

func (h *SpanHandler) eventAttrs(record slog.Record) []attribute.KeyValue {
	out := make([]attribute.KeyValue, 0, len(h.attrs)+record.NumAttrs()+1)
	out = append(out, attribute.String(attrSeverity, record.Level.String()))
	out = append(out, h.attrs...)

	record.Attrs(func(a slog.Attr) bool {
		out = appendAttrs(out, h.prefix, []slog.Attr{a})

		return true
	})

	return out
}

// appendAttrs flattens slog attributes into dotted OpenTelemetry keys.
func appendAttrs(out []attribute.KeyValue, prefix string, attrs []slog.Attr) []attribute.KeyValue {
	for _, a := range attrs {
		v := a.Value.Resolve()
		key := prefix + a.Key

		switch v.Kind() {
		case slog.KindGroup:
			next := prefix
			if a.Key != "" {
				next = key + "."
			}

			out = appendAttrs(out, next, v.Group())
		case slog.KindString:
			out = append(out, attribute.String(key, v.String()))
		case slog.KindInt64:
			out = append(out, attribute.Int64(key, v.Int64()))
		case slog.KindUint64:
			out = append(out, attribute.String(key, v.String()))
		case slog.KindFloat64:
			out = append(out, attribute.Float64(key, v.Float64()))
		case slog.KindBool:
			out = append(out, attribute.Bool(key, v.Bool()))
		default:
			out = append(out, attribute.String(key, v.String()))
		}
	}

	return out
}

// serviceAttrs identifies the process on every log record.
func serviceAttrs(cfg Config) []slog.Attr {
	attrs := []slog.Attr{
		slog.String(attrService, cfg.ServiceName),
		slog.String(attrMode, string(cfg.Mode)),
	}

	if cfg.ServiceVersion != "" {
		attrs = append(attrs, slog.String(attrVersion, cfg.ServiceVersion))
	}

	return attrs
}
