package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
)

// setupLogger installs the process-wide slog default: text on a terminal,
// JSON otherwise, and optionally a JSON copy of every record to a log file.
// The returned closer owns the log file, if any.
func setupLogger(verbose bool, logFile string) (func() error, error) {
	level := &slog.LevelVar{}
	if verbose {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}

	opts := &slog.HandlerOptions{Level: level}
	var console slog.Handler
	if isTerminal(os.Stderr) {
		console = slog.NewTextHandler(os.Stderr, opts)
	} else {
		console = slog.NewJSONHandler(os.Stderr, opts)
	}

	closer := func() error { return nil }
	handler := console
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		handler = teeHandler{console, slog.NewJSONHandler(f, opts)}
		closer = f.Close
	}

	slog.SetDefault(slog.New(handler))
	return closer, nil
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

// teeHandler duplicates records across two handlers.
type teeHandler [2]slog.Handler

func (t teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return t[0].Enabled(ctx, level) || t[1].Enabled(ctx, level)
}

func (t teeHandler) Handle(ctx context.Context, record slog.Record) error {
	var firstErr error
	for _, h := range t {
		if !h.Enabled(ctx, record.Level) {
			continue
		}
		if err := h.Handle(ctx, record.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (t teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return teeHandler{t[0].WithAttrs(attrs), t[1].WithAttrs(attrs)}
}

func (t teeHandler) WithGroup(name string) slog.Handler {
	return teeHandler{t[0].WithGroup(name), t[1].WithGroup(name)}
}
