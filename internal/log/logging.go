// Package log builds the CLI logger and routes the stack's component logs
// through it.
//
// When a log file path is not provided, records go to stderr. With a file,
// they go to both.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/ardnew/bitusb/pkg"
)

// SetupLogger builds a slog.Logger at the named level and format with an
// optional file handler, installs it as the slog default and as the stack
// logger, and returns the files to close on exit.
func SetupLogger(logLevel, logFile, logFormat string) (*slog.Logger, []io.Closer, error) {
	level := pkg.ParseLevel(logLevel)
	format := pkg.ParseLogFormat(logFormat)
	opts := &slog.HandlerOptions{Level: level}

	handlers := []slog.Handler{newHandler(os.Stderr, format, opts)}
	var closeFiles []io.Closer
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, err
		}
		closeFiles = append(closeFiles, f)
		handlers = append(handlers, newHandler(f, format, opts))
	}

	logger := slog.New(MultiHandler{hs: handlers})
	slog.SetDefault(logger)
	pkg.SetLogLevel(level)
	pkg.SetLogger(logger)
	return logger, closeFiles, nil
}

func newHandler(w io.Writer, format pkg.LogFormat, opts *slog.HandlerOptions) slog.Handler {
	if format == pkg.LogFormatJSON {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// MultiHandler fans out records to multiple handlers.
type MultiHandler struct{ hs []slog.Handler }

// NewMultiHandler returns a handler writing every record to each of hs.
func NewMultiHandler(hs ...slog.Handler) MultiHandler {
	return MultiHandler{hs: hs}
}

func (m MultiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.hs {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m MultiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range m.hs {
		if h.Enabled(ctx, r.Level) {
			_ = h.Handle(ctx, r.Clone())
		}
	}
	return nil
}

func (m MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make([]slog.Handler, len(m.hs))
	for i, h := range m.hs {
		out[i] = h.WithAttrs(attrs)
	}
	return MultiHandler{hs: out}
}

func (m MultiHandler) WithGroup(name string) slog.Handler {
	out := make([]slog.Handler, len(m.hs))
	for i, h := range m.hs {
		out[i] = h.WithGroup(name)
	}
	return MultiHandler{hs: out}
}
