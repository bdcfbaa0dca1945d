// Package logging provides structured logging infrastructure for the cmdrunner application.
// It wraps Go's standard log/slog package with context-aware logging, run IDs, and
// domain-specific log attributes.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"
)

// contextKey is used for storing logger-related values in context.
type contextKey string

const (
	// RunIDKey is the context key for run IDs.
	RunIDKey contextKey = "run_id"
	// CommandKey is the context key for the requested command name.
	CommandKey contextKey = "command"
	// StepKey is the context key for the step currently executing.
	StepKey contextKey = "step"
	// ManifestKey is the context key for the manifest path in use.
	ManifestKey contextKey = "manifest"
)

// Level represents log levels.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Format represents log output formats.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// Config holds logging configuration.
type Config struct {
	Level      Level
	Format     Format
	Output     io.Writer
	AddSource  bool
	TimeFormat string
}

// DefaultConfig returns sensible default logging configuration.
// Logs go to stderr at warn level so stdout stays reserved for command output.
func DefaultConfig() Config {
	return Config{
		Level:      LevelWarn,
		Format:     FormatText,
		Output:     os.Stderr,
		AddSource:  false,
		TimeFormat: time.RFC3339,
	}
}

// Logger wraps slog.Logger with additional functionality for cmdrunner.
type Logger struct {
	slogger *slog.Logger
	level   slog.Level
	mu      sync.RWMutex
}

// global is the package-level default logger.
var (
	global     *Logger
	globalOnce sync.Once
)

// Init initializes the global logger with the provided configuration.
func Init(cfg Config) *Logger {
	globalOnce.Do(func() {
		global = New(cfg)
	})
	return global
}

// Default returns the global logger, initializing it with defaults if necessary.
func Default() *Logger {
	if global == nil {
		Init(DefaultConfig())
	}
	return global
}

// New creates a new Logger with the provided configuration.
func New(cfg Config) *Logger {
	level := parseLevel(cfg.Level)

	var handler slog.Handler
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.AddSource,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Customize time format
			if a.Key == slog.TimeKey && cfg.TimeFormat != "" {
				if t, ok := a.Value.Any().(time.Time); ok {
					return slog.String(slog.TimeKey, t.Format(cfg.TimeFormat))
				}
			}
			return a
		},
	}

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	switch cfg.Format {
	case FormatJSON:
		handler = slog.NewJSONHandler(output, opts)
	default:
		handler = slog.NewTextHandler(output, opts)
	}

	return &Logger{
		slogger: slog.New(handler),
		level:   level,
	}
}

// parseLevel converts a Level to slog.Level.
func parseLevel(l Level) slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// SetLevel dynamically changes the log level.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = parseLevel(level)
}

// With returns a new Logger with the given attributes.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		slogger: l.slogger.With(args...),
		level:   l.level,
	}
}

// WithGroup returns a new Logger with the given group name.
func (l *Logger) WithGroup(name string) *Logger {
	return &Logger{
		slogger: l.slogger.WithGroup(name),
		level:   l.level,
	}
}

// Debug logs at debug level.
func (l *Logger) Debug(msg string, args ...any) {
	l.slogger.Debug(msg, args...)
}

// Info logs at info level.
func (l *Logger) Info(msg string, args ...any) {
	l.slogger.Info(msg, args...)
}

// Warn logs at warn level.
func (l *Logger) Warn(msg string, args ...any) {
	l.slogger.Warn(msg, args...)
}

// Error logs at error level.
func (l *Logger) Error(msg string, args ...any) {
	l.slogger.Error(msg, args...)
}

// DebugContext logs at debug level with context.
func (l *Logger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.slogger.DebugContext(ctx, msg, l.enrichArgs(ctx, args)...)
}

// InfoContext logs at info level with context.
func (l *Logger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.slogger.InfoContext(ctx, msg, l.enrichArgs(ctx, args)...)
}

// WarnContext logs at warn level with context.
func (l *Logger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.slogger.WarnContext(ctx, msg, l.enrichArgs(ctx, args)...)
}

// ErrorContext logs at error level with context.
func (l *Logger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.slogger.ErrorContext(ctx, msg, l.enrichArgs(ctx, args)...)
}

// enrichArgs extracts context values and adds them as log attributes.
func (l *Logger) enrichArgs(ctx context.Context, args []any) []any {
	enriched := make([]any, 0, len(args)+8)

	// Extract standard context values
	if v := ctx.Value(RunIDKey); v != nil {
		enriched = append(enriched, "run_id", v)
	}
	if v := ctx.Value(CommandKey); v != nil {
		enriched = append(enriched, "command", v)
	}
	if v := ctx.Value(StepKey); v != nil {
		enriched = append(enriched, "step", v)
	}
	if v := ctx.Value(ManifestKey); v != nil {
		enriched = append(enriched, "manifest", v)
	}

	enriched = append(enriched, args...)
	return enriched
}

// Underlying returns the underlying slog.Logger.
func (l *Logger) Underlying() *slog.Logger {
	return l.slogger
}

// --- Context helpers ---

// WithRunID adds a run ID to the context.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RunIDKey, id)
}

// WithCommand adds the requested command name to the context.
func WithCommand(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, CommandKey, name)
}

// WithStep adds the executing step name to the context.
func WithStep(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, StepKey, name)
}

// WithManifest adds the manifest path to the context.
func WithManifest(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, ManifestKey, path)
}

// RunID extracts the run ID from context.
func RunID(ctx context.Context) string {
	if v := ctx.Value(RunIDKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// --- Domain-specific logging helpers ---

// LogRunStart logs the start of a command run.
func LogRunStart(ctx context.Context, logger *Logger, command string, stepCount int) {
	logger.InfoContext(ctx, "command run started",
		"command", command,
		"step_count", stepCount,
	)
}

// LogRunComplete logs the completion of a command run.
func LogRunComplete(ctx context.Context, logger *Logger, command string, duration time.Duration) {
	logger.InfoContext(ctx, "command run completed",
		"command", command,
		"duration_ms", duration.Milliseconds(),
	)
}

// LogRunFailed logs a failed command run.
func LogRunFailed(ctx context.Context, logger *Logger, command string, exitCode int, duration time.Duration) {
	logger.ErrorContext(ctx, "command run failed",
		"command", command,
		"exit_code", exitCode,
		"duration_ms", duration.Milliseconds(),
	)
}

// LogStepStart logs the start of a step execution.
func LogStepStart(ctx context.Context, logger *Logger, step, line string) {
	logger.DebugContext(ctx, "step execution started",
		"step", step,
		"line", line,
	)
}

// LogStepComplete logs the completion of a step execution.
func LogStepComplete(ctx context.Context, logger *Logger, step string, duration time.Duration) {
	logger.DebugContext(ctx, "step execution completed",
		"step", step,
		"duration_ms", duration.Milliseconds(),
	)
}

// LogStepFailed logs a failed step execution.
func LogStepFailed(ctx context.Context, logger *Logger, step string, exitCode int, duration time.Duration) {
	logger.ErrorContext(ctx, "step execution failed",
		"step", step,
		"exit_code", exitCode,
		"duration_ms", duration.Milliseconds(),
	)
}

// LogHistorySaveFailed logs a failed history write. History persistence is
// best-effort and never turns into a run failure.
func LogHistorySaveFailed(ctx context.Context, logger *Logger, err error) {
	logger.WarnContext(ctx, "failed to save run history",
		"error", err.Error(),
	)
}
