// Package logging builds the run logger: text records on the console and,
// when configured, appended to a log file next to the project.
package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Options configures New.
type Options struct {
	Level slog.Level
	// File is appended to when non-empty. Its directory is created if missing.
	File    string
	Console io.Writer
	// RunID is attached to every record when non-empty.
	RunID string
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New returns a logger writing to the console and the optional log file.
// The returned closer releases the log file.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	var writers []io.Writer
	if opts.Console != nil {
		writers = append(writers, opts.Console)
	}

	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file %s: %w", opts.File, err)
		}
		writers = append(writers, f)
		closer = f
	}

	var handler slog.Handler = slog.DiscardHandler
	if len(writers) > 0 {
		handler = slog.NewTextHandler(io.MultiWriter(writers...), &slog.HandlerOptions{Level: opts.Level})
	}
	logger := slog.New(handler)
	if opts.RunID != "" {
		logger = logger.With("run_id", opts.RunID)
	}
	return logger, closer, nil
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// CloseQuietly closes c and joins its error into err.
func CloseQuietly(c io.Closer, err *error) {
	if c == nil {
		return
	}
	if cerr := c.Close(); cerr != nil {
		*err = errors.Join(*err, cerr)
	}
}
