package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Logger defines minimal logging interface used across layers.
type Logger interface {
	Debug(ctx context.Context, msg string, kv ...any)
	Debugf(ctx context.Context, format string, args ...any)
	Info(ctx context.Context, msg string, kv ...any)
	Infof(ctx context.Context, format string, args ...any)
	Warn(ctx context.Context, msg string, kv ...any)
	Warnf(ctx context.Context, format string, args ...any)
	Error(ctx context.Context, msg string, kv ...any)
	Errorf(ctx context.Context, format string, args ...any)
	With(kv ...any) Logger
}

// Format selects the log line encoding.
type Format string

const (
	// FormatHuman is logfmt with a short wall-clock timestamp.
	FormatHuman Format = "human"
	FormatText  Format = "text"
	FormatJSON  Format = "json"
)

// ParseFormat accepts human|text|json. An empty string selects FormatHuman.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatHuman, nil
	case FormatHuman, FormatText, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported log format: %s", s)
	}
}

// ParseLevel converts DEBUG|INFO|WARN|ERROR (case-insensitive) into a slog.Level.
// An empty string selects INFO.
func ParseLevel(s string) (slog.Level, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return slog.LevelInfo, nil
	}
	if strings.EqualFold(s, "warning") {
		return slog.LevelWarn, nil
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil || strings.ContainsAny(s, "+-") {
		return slog.LevelInfo, fmt.Errorf("unsupported log level: %s", s)
	}
	return l, nil
}

type contextKey struct{}

// WithLogger stores a logger in context.
func WithLogger(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// FromContext retrieves the logger stored in ctx, or a human logger on stderr at INFO.
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(contextKey{}).(Logger); ok && l != nil {
		return l
	}
	return fallback()
}

var fallback = sync.OnceValue(func() Logger {
	return &logger{s: slog.New(newHandler(FormatHuman, slog.LevelInfo, os.Stderr))}
})

// New constructs a Logger writing to stderr.
func New(format string, level slog.Leveler) (Logger, error) {
	return NewWithWriter(format, level, os.Stderr)
}

// NewWithWriter constructs a Logger of the given format and level writing to w.
func NewWithWriter(format string, level slog.Leveler, w io.Writer) (Logger, error) {
	f, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}
	return &logger{s: slog.New(newHandler(f, level, w))}, nil
}

func newHandler(f Format, level slog.Leveler, w io.Writer) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	switch f {
	case FormatJSON:
		return slog.NewJSONHandler(w, opts)
	case FormatHuman:
		opts.ReplaceAttr = shortTime
	}
	return slog.NewTextHandler(w, opts)
}

// shortTime trims the top-level timestamp to local wall-clock milliseconds.
func shortTime(groups []string, a slog.Attr) slog.Attr {
	if len(groups) == 0 && a.Key == slog.TimeKey && a.Value.Kind() == slog.KindTime {
		return slog.String(slog.TimeKey, a.Value.Time().Local().Format("15:04:05.000"))
	}
	return a
}

// logger adapts slog.Logger to Logger. Formatted variants skip Sprintf when
// the level is disabled.
type logger struct{ s *slog.Logger }

func (l *logger) log(ctx context.Context, level slog.Level, msg string, kv []any) {
	if l.s.Enabled(ctx, level) {
		l.s.Log(ctx, level, msg, kv...)
	}
}

func (l *logger) logf(ctx context.Context, level slog.Level, format string, args []any) {
	if l.s.Enabled(ctx, level) {
		l.s.Log(ctx, level, fmt.Sprintf(format, args...))
	}
}

func (l *logger) Debug(ctx context.Context, msg string, kv ...any) {
	l.log(ctx, slog.LevelDebug, msg, kv)
}
func (l *logger) Debugf(ctx context.Context, format string, args ...any) {
	l.logf(ctx, slog.LevelDebug, format, args)
}
func (l *logger) Info(ctx context.Context, msg string, kv ...any) {
	l.log(ctx, slog.LevelInfo, msg, kv)
}
func (l *logger) Infof(ctx context.Context, format string, args ...any) {
	l.logf(ctx, slog.LevelInfo, format, args)
}
func (l *logger) Warn(ctx context.Context, msg string, kv ...any) {
	l.log(ctx, slog.LevelWarn, msg, kv)
}
func (l *logger) Warnf(ctx context.Context, format string, args ...any) {
	l.logf(ctx, slog.LevelWarn, format, args)
}
func (l *logger) Error(ctx context.Context, msg string, kv ...any) {
	l.log(ctx, slog.LevelError, msg, kv)
}
func (l *logger) Errorf(ctx context.Context, format string, args ...any) {
	l.logf(ctx, slog.LevelError, format, args)
}

func (l *logger) With(kv ...any) Logger { return &logger{s: l.s.With(kv...)} }
