// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package logging provides structured logging for quorumstep components.
//
// Built on the standard library slog package. Default output is stderr in
// text format (Unix CLI convention); JSON and optional file output are
// available for machine consumption:
//
//	logger := logging.Default()
//	logger.Info("run starting", "run_id", runID)
//
//	logger := logging.New(logging.Config{
//	    Level:   logging.LevelDebug,
//	    Service: "solver",
//	    JSON:    true,
//	})
//	defer logger.Close()
//
// Logger is safe for concurrent use.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Level represents log severity, ordered Debug < Info < Warn < Error.
type Level int

const (
	// LevelDebug is for development troubleshooting.
	LevelDebug Level = iota
	// LevelInfo is for normal operational messages.
	LevelInfo
	// LevelWarn is for recoverable, unexpected situations.
	LevelWarn
	// LevelError is for failed operations the system survives.
	LevelError
)

// String returns "DEBUG", "INFO", "WARN", "ERROR", or "UNKNOWN".
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a config string to a Level. Unknown values map to
// LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func (l Level) toSlogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Config configures Logger behavior. The zero value logs Info+ to stderr
// in text format.
type Config struct {
	// Level is the minimum level; messages below it are discarded.
	Level Level

	// Service is attached to every entry as the "service" attribute.
	Service string

	// JSON switches stderr output to JSON objects.
	JSON bool

	// Quiet disables stderr output entirely (file only).
	Quiet bool

	// LogDir enables file logging; the file is named
	// "{Service}_{YYYY-MM-DD}.log" and is always JSON.
	LogDir string
}

// Logger wraps slog with multi-destination output.
type Logger struct {
	*slog.Logger
	file *os.File
}

// New creates a logger from the config.
//
// File-open failures degrade to stderr-only logging rather than failing
// the caller; logging must never take the process down.
func New(cfg Config) *Logger {
	var handlers []slog.Handler
	opts := &slog.HandlerOptions{Level: cfg.Level.toSlogLevel()}

	if !cfg.Quiet {
		if cfg.JSON {
			handlers = append(handlers, slog.NewJSONHandler(os.Stderr, opts))
		} else {
			handlers = append(handlers, slog.NewTextHandler(os.Stderr, opts))
		}
	}

	var file *os.File
	if cfg.LogDir != "" {
		dir := expandHome(cfg.LogDir)
		if err := os.MkdirAll(dir, 0o750); err == nil {
			name := fmt.Sprintf("%s_%s.log", serviceOrDefault(cfg.Service), time.Now().Format("2006-01-02"))
			f, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640)
			if err == nil {
				file = f
				handlers = append(handlers, slog.NewJSONHandler(f, opts))
			}
		}
	}

	var handler slog.Handler
	switch len(handlers) {
	case 0:
		handler = slog.NewTextHandler(io.Discard, opts)
	case 1:
		handler = handlers[0]
	default:
		handler = multiHandler(handlers)
	}

	base := slog.New(handler)
	if cfg.Service != "" {
		base = base.With(slog.String("service", cfg.Service))
	}
	return &Logger{Logger: base, file: file}
}

// Default returns a stderr text logger at Info level.
func Default() *Logger {
	return New(Config{})
}

// Close flushes and closes the log file, if any.
func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

func serviceOrDefault(s string) string {
	if s == "" {
		return "quorumstep"
	}
	return s
}

func expandHome(dir string) string {
	if strings.HasPrefix(dir, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(dir, "~"))
		}
	}
	return dir
}

// multiHandler fans records out to every destination handler.
type multiHandler []slog.Handler

// Enabled implements the slog.Handler interface.
func (m multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle implements the slog.Handler interface.
func (m multiHandler) Handle(ctx context.Context, r slog.Record) error {
	var firstErr error
	for _, h := range m {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// WithAttrs implements the slog.Handler interface.
func (m multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(multiHandler, len(m))
	for i, h := range m {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

// WithGroup implements the slog.Handler interface.
func (m multiHandler) WithGroup(name string) slog.Handler {
	out := make(multiHandler, len(m))
	for i, h := range m {
		out[i] = h.WithGroup(name)
	}
	return out
}
