// Package log builds the application's slog logger. The TUI owns the
// terminal, so records go to a rotating file unless Console is set.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	lj "gopkg.in/natefinch/lumberjack.v2"
)

// Options controls logger construction. Env overrides:
//   - BAYDESK_LOG_LEVEL=debug|info|warn|error
//   - BAYDESK_LOG_FORMAT=json|text
//   - BAYDESK_LOG_FILE=<path>
//   - BAYDESK_LOG_SOURCE=true|false
type Options struct {
	Level     string
	Format    string
	File      string
	AddSource bool
	// Console also writes to stderr. Only the headless commands set it.
	Console bool
}

// FromEnv overlays BAYDESK_LOG_* variables onto base.
func FromEnv(base Options) Options {
	if v := os.Getenv("BAYDESK_LOG_LEVEL"); v != "" {
		base.Level = v
	}
	if v := os.Getenv("BAYDESK_LOG_FORMAT"); v != "" {
		base.Format = v
	}
	if v, ok := os.LookupEnv("BAYDESK_LOG_FILE"); ok {
		base.File = v
	}
	if v := os.Getenv("BAYDESK_LOG_SOURCE"); v != "" {
		base.AddSource = strings.EqualFold(v, "true")
	}
	return base
}

// New builds a logger and installs it as slog.Default. The returned closer
// releases the log file; it is never nil.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	lvl := ParseLevel(opts.Level)
	hopts := &slog.HandlerOptions{Level: lvl, AddSource: opts.AddSource}

	var handlers []slog.Handler
	var closer io.Closer = nopCloser{}
	if path := strings.TrimSpace(opts.File); path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, nil, err
		}
		w := &lj.Logger{Filename: path, MaxSize: 10, MaxBackups: 3, MaxAge: 28, Compress: true}
		handlers = append(handlers, newHandler(w, opts.Format, hopts))
		closer = w
	}
	if opts.Console {
		handlers = append(handlers, newHandler(os.Stderr, opts.Format, hopts))
	}

	var h slog.Handler
	switch len(handlers) {
	case 0:
		h = slog.NewTextHandler(io.Discard, hopts)
	case 1:
		h = handlers[0]
	default:
		h = &fanout{hs: handlers}
	}
	logger := slog.New(h).With(slog.String("app", "baydesk"))
	slog.SetDefault(logger)
	return logger, closer, nil
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel converts a level name to slog.Level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

func newHandler(w io.Writer, format string, opts *slog.HandlerOptions) slog.Handler {
	if strings.EqualFold(strings.TrimSpace(format), "text") {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// fanout sends each record to every handler.
type fanout struct{ hs []slog.Handler }

func (f *fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f.hs {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f *fanout) Handle(ctx context.Context, r slog.Record) error {
	var firstErr error
	for _, h := range f.hs {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (f *fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make([]slog.Handler, len(f.hs))
	for i, h := range f.hs {
		out[i] = h.WithAttrs(attrs)
	}
	return &fanout{hs: out}
}

func (f *fanout) WithGroup(name string) slog.Handler {
	out := make([]slog.Handler, len(f.hs))
	for i, h := range f.hs {
		out[i] = h.WithGroup(name)
	}
	return &fanout{hs: out}
}
