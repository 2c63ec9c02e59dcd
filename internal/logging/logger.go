// Package logging provides structured logging configuration using log/slog.
//
// Operation IDs stored in the context propagate into structured log
// entries, so every log line produced while one engine operation runs can
// be correlated after the fact.
package logging

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

type contextKey string

const ctxKeyOperationID contextKey = "operation_id"

// Setup configures the global slog logger based on level and format.
//
// Level values: "debug", "info", "warn", "error" (default: "info")
// Format values: "text", "json" (default: "text")
//
// Use "json" format for machine parsing, "text" for human readability.
func Setup(level, format string) {
	opts := &slog.HandlerOptions{
		Level: parseLevel(level),
	}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	slog.SetDefault(slog.New(handler))
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithOperationID stores an operation ID in the context for FromContext
// to pick up.
func WithOperationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyOperationID, id)
}

// OperationID extracts the operation ID from the context, or "".
func OperationID(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyOperationID).(string); ok {
		return v
	}
	return ""
}

// FromContext returns a logger enriched with the context's operation ID.
//
// Usage:
//
//	logger := logging.FromContext(ctx)
//	logger.Info("merging folder", "dir", dir)
func FromContext(ctx context.Context) *slog.Logger {
	logger := slog.Default()

	if opID := OperationID(ctx); opID != "" {
		logger = logger.With("operation_id", opID)
	}

	return logger
}

// WithFields returns a logger with additional structured fields.
//
// This is useful for creating operation-specific loggers that carry
// consistent context through a multi-step process.
//
// Usage:
//
//	opLogger := logging.WithFields(ctx,
//	    "op", "merge",
//	    "dir", dir,
//	)
//	opLogger.Info("merge started")
//	// ... later ...
//	opLogger.Info("merge completed", "rows", total)
func WithFields(ctx context.Context, args ...any) *slog.Logger {
	return FromContext(ctx).With(args...)
}
