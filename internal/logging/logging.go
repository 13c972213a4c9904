// Package logging builds the structured logger for one batch run.
//
// Records go to the console and, when a directory is configured, to a
// log_<timestamp>.txt file in that directory. The file belongs to the Sink
// and is closed with it.
package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type Options struct {
	Dir     string
	Level   string
	Console io.Writer
	// Now stamps the log file name. Defaults to time.Now.
	Now func() time.Time
}

type Sink struct {
	Logger *slog.Logger
	// Path is the log file, or empty when only the console is used.
	Path string

	f *os.File
}

// ParseLevel maps debug/info/warn/error to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", s)
	}
	return lvl, nil
}

func New(opts Options) (*Sink, error) {
	level := slog.LevelInfo
	if opts.Level != "" {
		lvl, err := ParseLevel(opts.Level)
		if err != nil {
			return nil, err
		}
		level = lvl
	}
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	hopts := &slog.HandlerOptions{Level: level}
	handlers := []slog.Handler{slog.NewTextHandler(console, hopts)}

	s := &Sink{}
	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
		path := filepath.Join(opts.Dir, "log_"+now().Format("2006-01-02_15_04_05")+".txt")
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		s.f = f
		s.Path = path
		handlers = append(handlers, slog.NewTextHandler(f, hopts))
	}

	if len(handlers) == 1 {
		s.Logger = slog.New(handlers[0])
	} else {
		s.Logger = slog.New(fanout(handlers))
	}
	return s, nil
}

// Close syncs and closes the log file, if any.
func (s *Sink) Close() error {
	if s == nil || s.f == nil {
		return nil
	}
	f := s.f
	s.f = nil
	return errors.Join(f.Sync(), f.Close())
}

type fanout []slog.Handler

func (h fanout) Enabled(ctx context.Context, lvl slog.Level) bool {
	for _, hh := range h {
		if hh.Enabled(ctx, lvl) {
			return true
		}
	}
	return false
}

func (h fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, hh := range h {
		if !hh.Enabled(ctx, r.Level) {
			continue
		}
		if err := hh.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (h fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(h))
	for i, hh := range h {
		out[i] = hh.WithAttrs(attrs)
	}
	return out
}

func (h fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(h))
	for i, hh := range h {
		out[i] = hh.WithGroup(name)
	}
	return out
}
