// Package logging configures the process-wide zerolog logger used by botctl.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// Log is the package-global logger configured by Init.
var Log zerolog.Logger

// Get returns a pointer to the package-global logger.
func Get() *zerolog.Logger {
	return &Log
}

// Init initializes the global logger. Diagnostics go to stderr so they never
// interleave with the user-facing status lines on stdout; if logFilePath is
// non-empty they are duplicated to the file. level is one of "debug", "info",
// "warn", "error" (default info).
func Init(logFilePath, level string) (func(), error) {
	l := zerolog.InfoLevel
	if level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(level))
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		l = parsed
	}
	zerolog.SetGlobalLevel(l)

	writers := []io.Writer{os.Stderr}
	var f *os.File
	if logFilePath != "" {
		if err := os.MkdirAll(filepath.Dir(logFilePath), 0o700); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		var err error
		f, err = os.OpenFile(logFilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640)
		if err != nil {
			return nil, err
		}
		writers = append(writers, f)
	}
	Log = zerolog.New(io.MultiWriter(writers...)).With().Timestamp().Logger()

	return func() {
		if f != nil {
			_ = f.Close()
		}
	}, nil
}
