// Package logging provides the structured logger shared by every core
// package. It wraps log/slog so callers keep the standard Attr-based API
// while the runtime controls output format and optional file rotation.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Config controls how a Logger is constructed.
type Config struct {
	Environment    string
	Level          slog.Level
	OutputPath     string
	AddSource      bool
	EnableRotation bool
	MaxSizeMB      int
	MaxBackups     int
	MaxAgeDays     int
	Compress       bool
}

// DefaultConfig returns sane development defaults.
func DefaultConfig() *Config {
	return &Config{
		Environment:    "dev",
		Level:          slog.LevelInfo,
		AddSource:      false,
		EnableRotation: false,
		MaxSizeMB:      100,
		MaxBackups:     3,
		MaxAgeDays:     28,
		Compress:       true,
	}
}

// Logger wraps slog.Logger with a few runtime-specific helpers.
type Logger struct {
	*slog.Logger
	config *Config
}

// New builds a Logger from cfg. A nil cfg falls back to DefaultConfig.
func New(cfg *Config) *Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	var writer io.Writer = os.Stdout

	if cfg.OutputPath != "" {
		var fileWriter io.Writer

		if cfg.EnableRotation {
			fileWriter = &lumberjack.Logger{
				Filename:   cfg.OutputPath,
				MaxSize:    cfg.MaxSizeMB,
				MaxBackups: cfg.MaxBackups,
				MaxAge:     cfg.MaxAgeDays,
				Compress:   cfg.Compress,
			}
		} else {
			file, err := os.OpenFile(cfg.OutputPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				fileWriter = os.Stdout
			} else {
				fileWriter = file
			}
		}

		writer = io.MultiWriter(os.Stdout, fileWriter)
	}

	opts := &slog.HandlerOptions{
		Level:     cfg.Level,
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	if cfg.Environment == "prod" || cfg.Environment == "production" {
		handler = slog.NewJSONHandler(writer, opts)
	} else {
		handler = slog.NewTextHandler(writer, opts)
	}

	return &Logger{Logger: slog.New(handler), config: cfg}
}

// With returns a new Logger that always includes attrs.
func (l *Logger) With(attrs ...any) *Logger {
	return &Logger{Logger: l.Logger.With(attrs...), config: l.config}
}

// WithGroup returns a new Logger that nests subsequent attrs under name.
func (l *Logger) WithGroup(name string) *Logger {
	return &Logger{Logger: l.Logger.WithGroup(name), config: l.config}
}

// Request logs one completed HTTP dispatch at a level derived from status.
func (l *Logger) Request(host, method, path string, status int, duration time.Duration, attrs ...any) {
	level := slog.LevelInfo
	switch {
	case status >= 500:
		level = slog.LevelError
	case status >= 400:
		level = slog.LevelWarn
	}

	base := []any{
		slog.String("host", host),
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Duration("duration", duration),
	}

	l.Log(context.Background(), level, "request dispatched", append(base, attrs...)...)
}

// Err wraps err as a slog attribute named "error".
func Err(err error) slog.Attr {
	return slog.Any("error", err)
}

// ParseLevel converts a case-insensitive level name to a slog.Level,
// defaulting to Info for anything unrecognized.
func ParseLevel(level string) slog.Level {
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

type loggerContextKey struct{}

// WithContext returns a context carrying l, retrievable via FromContext.
func WithContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey{}, l)
}

// FromContext returns the Logger stored in ctx, or the package default if
// none was attached.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(loggerContextKey{}).(*Logger); ok {
		return l
	}
	return Default()
}

var defaultLogger = New(DefaultConfig())

// SetDefault replaces the package-level default Logger.
func SetDefault(l *Logger) {
	defaultLogger = l
	slog.SetDefault(l.Logger)
}

// Default returns the package-level default Logger.
func Default() *Logger {
	return defaultLogger
}
