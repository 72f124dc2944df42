// internal/logging/context.go
package logging

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ContextFields extracts correlation data from context.
func ContextFields(ctx context.Context) []zap.Field {
	fields := make([]zap.Field, 0, 5)

	if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		sc := span.SpanContext()
		fields = append(fields,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
	}

	if id := RunIDFromContext(ctx); id != "" {
		fields = append(fields, zap.String("run.id", id))
	}
	if cmd := CommandFromContext(ctx); cmd != "" {
		fields = append(fields, zap.String("command", cmd))
	}
	if path := ExportFileFromContext(ctx); path != "" {
		fields = append(fields, zap.String("export.file", path))
	}

	return fields
}

type runIDCtxKey struct{}
type commandCtxKey struct{}
type exportFileCtxKey struct{}
type loggerCtxKey struct{}

// WithRunID tags every entry logged with ctx with the invocation's run id.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDCtxKey{}, id)
}

func RunIDFromContext(ctx context.Context) string {
	s, _ := ctx.Value(runIDCtxKey{}).(string)
	return s
}

// WithCommand records the subcommand name (dow, wrapped).
func WithCommand(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, commandCtxKey{}, name)
}

func CommandFromContext(ctx context.Context) string {
	s, _ := ctx.Value(commandCtxKey{}).(string)
	return s
}

// WithExportFile records the export being parsed.
func WithExportFile(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, exportFileCtxKey{}, path)
}

func ExportFileFromContext(ctx context.Context) string {
	s, _ := ctx.Value(exportFileCtxKey{}).(string)
	return s
}

// WithLogger stores logger in context.
func WithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerCtxKey{}, logger)
}

// FromContext retrieves logger from context.
// Returns a nop logger if not found.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(loggerCtxKey{}).(*Logger); ok && l != nil {
		return l
	}
	return Nop()
}
