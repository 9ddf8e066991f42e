// Package logger builds the structured slog logger used across the bot.
// All logs are written in JSON format, either to stderr or to a size-rotated
// file when a path is configured.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	maxLogSizeMB  = 20
	maxLogBackups = 5
	maxLogAgeDays = 28
)

// New returns a JSON slog.Logger writing to w.
func New(w io.Writer, level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}

// NewSystemLogger returns a JSON logger for the process. With an empty path
// it writes to stderr; otherwise it appends to path and rotates the file once
// it grows past maxLogSizeMB. The returned closer releases the file.
func NewSystemLogger(path string, level slog.Level) (*slog.Logger, io.Closer, error) {
	if path == "" {
		return New(os.Stderr, level), io.NopCloser(nil), nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, nil, fmt.Errorf("creating log directory for %q: %w", path, err)
	}

	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxLogSizeMB,
		MaxBackups: maxLogBackups,
		MaxAge:     maxLogAgeDays,
		Compress:   true,
	}
	return New(rotator, level), rotator, nil
}
