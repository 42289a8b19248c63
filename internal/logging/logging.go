// Package logging is the slog setup shared by the fieldchart packages:
// one process-wide logger writing to stderr, plus helpers that give show,
// command, snapshot and catalog events stable message names and keys.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// ContextKey keys values this package reads from a context.
type ContextKey string

const (
	// OperationIDKey is the context key for the ID of one CLI invocation.
	OperationIDKey ContextKey = "operation_id"
)

var (
	defaultLogger *slog.Logger

	// output is where InitLogger sends records.
	output io.Writer = os.Stderr

	currentLevel  = LevelInfo
	currentFormat = FormatText
)

func init() {
	InitLogger(LevelInfo, FormatText)
}

// Level is a minimum record severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// Format selects the record encoding.
type Format int

const (
	FormatJSON Format = iota
	FormatText
)

// ParseLevel maps debug, info, warn or error to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// ParseFormat maps json or text to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "text", "":
		return FormatText, nil
	}
	return FormatText, fmt.Errorf("unknown log format %q", s)
}

var slogLevels = map[Level]slog.Level{
	LevelDebug: slog.LevelDebug,
	LevelInfo:  slog.LevelInfo,
	LevelWarn:  slog.LevelWarn,
	LevelError: slog.LevelError,
}

// InitLogger replaces the package logger. Unknown levels log at info.
func InitLogger(level Level, format Format) {
	currentLevel, currentFormat = level, format

	slogLevel, ok := slogLevels[level]
	if !ok {
		slogLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: slogLevel,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.String(slog.TimeKey, a.Value.Time().Format(time.RFC3339))
			}
			return a
		},
	}

	var handler slog.Handler
	if format == FormatJSON {
		handler = slog.NewJSONHandler(output, opts)
	} else {
		handler = slog.NewTextHandler(output, opts)
	}

	defaultLogger = slog.New(handler)
	slog.SetDefault(defaultLogger)
}

// SetOutput redirects log records to w, keeping the current level and
// format. Stdout stays free for command output.
func SetOutput(w io.Writer) {
	output = w
	InitLogger(currentLevel, currentFormat)
}

// GetLogger returns the package logger.
func GetLogger() *slog.Logger {
	return defaultLogger
}

// WithOperationID tags ctx with the ID of the running operation.
func WithOperationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, OperationIDKey, id)
}

// GetOperationID retrieves the operation ID from the context.
func GetOperationID(ctx context.Context) string {
	if id, ok := ctx.Value(OperationIDKey).(string); ok {
		return id
	}
	return ""
}

// LoggerFromContext returns the package logger, tagged with the operation
// ID when ctx carries one.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	logger := defaultLogger
	if id := GetOperationID(ctx); id != "" {
		logger = logger.With("operation_id", id)
	}
	return logger
}

// Package-level shorthands for the default logger.

func Debug(msg string, args ...any) { defaultLogger.Debug(msg, args...) }
func Info(msg string, args ...any) { defaultLogger.Info(msg, args...) }
func Warn(msg string, args ...any) { defaultLogger.Warn(msg, args...) }
func Error(msg string, args ...any) { defaultLogger.Error(msg, args...) }

// InfoContext logs at info with the operation ID from ctx, if any.
func InfoContext(ctx context.Context, msg string, args ...any) {
	LoggerFromContext(ctx).Info(msg, args...)
}

// ErrorContext logs at error with the operation ID from ctx, if any.
func ErrorContext(ctx context.Context, msg string, args ...any) {
	LoggerFromContext(ctx).Error(msg, args...)
}

// fields prepends the fixed key-value pairs of a domain event to the
// caller's extras.
func fields(extra []any, kv ...any) []any {
	return append(kv, extra...)
}

// ShowLoaded logs a successfully decoded show file.
func ShowLoaded(source, version string, points, sheets int, args ...any) {
	defaultLogger.Info("show_loaded", fields(args, "source", source, "version", version, "points", points, "sheets", sheets)...)
}

// ShowSaved logs a serialized show written to a sink.
func ShowSaved(sink string, bytes int, args ...any) {
	defaultLogger.Info("show_saved", fields(args, "sink", sink, "bytes", bytes)...)
}

// FormatWarning logs input that was accepted but is not quite right, such
// as a file newer than this reader.
func FormatWarning(event string, args ...any) {
	defaultLogger.Warn("format_warning", fields(args, "event", event)...)
}

// ParseFailure logs a rejected input.
func ParseFailure(source string, err error, args ...any) {
	defaultLogger.Error("parse_failure", fields(args, "source", source, "error", err.Error())...)
}

// CommandApplied logs a command pushed or redone on the undo stack.
func CommandApplied(name, scope string, depth int, args ...any) {
	defaultLogger.Debug("command_applied", fields(args, "command", name, "scope", scope, "depth", depth)...)
}

// CommandReverted logs an undone command.
func CommandReverted(name, scope string, depth int, args ...any) {
	defaultLogger.Debug("command_reverted", fields(args, "command", name, "scope", scope, "depth", depth)...)
}

// SnapshotStored logs a show stored in the snapshot store.
func SnapshotStored(sha256, blake3 string, size int64, args ...any) {
	defaultLogger.Info("snapshot_stored", fields(args, "sha256", sha256, "blake3", blake3, "size", size)...)
}

// CatalogOperation logs a change to the show catalog, tagged with the
// operation ID carried by ctx.
func CatalogOperation(ctx context.Context, operation, id string, args ...any) {
	LoggerFromContext(ctx).Info("catalog_operation", fields(args, "operation", operation, "id", id)...)
}
