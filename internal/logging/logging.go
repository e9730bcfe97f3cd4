// Package logging sets up the structured logger shared by the CLI and the TUI.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// Options configures the logger.
type Options struct {
	// File receives log lines. Empty falls back to Writer.
	File string
	// Writer is used when File is empty; nil discards output.
	Writer io.Writer
	// Level is one of debug, info, warn, error.
	Level string
}

// Setup builds a logger and returns a closer for the underlying file.
// The TUI owns the terminal, so interactive sessions always log to a file.
func Setup(opts Options) (*log.Logger, io.Closer, error) {
	level, err := log.ParseLevel(strings.TrimSpace(opts.Level))
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
	}

	out := opts.Writer
	if out == nil {
		out = io.Discard
	}
	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o700); err != nil {
			return nil, nil, fmt.Errorf("create log dir: %w", err)
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		out = f
		closer = f
	}

	logger := log.NewWithOptions(out, log.Options{
		ReportTimestamp: true,
		Prefix:          "quicktui",
		Level:           level,
	})
	return logger, closer, nil
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
