// Package logging configures walkin's zerolog logger.
//
// The dashboard owns the terminal, so entries always go to a JSON-lines file
// under the log directory. CLI commands run with --verbose additionally get a
// human-readable console writer on stderr.
package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Service is attached to every entry.
const Service = "walkin"

// Options controls where entries are written.
type Options struct {
	// Path is the JSON log file. Empty disables the file sink.
	Path string
	// Console, when non-nil, also receives human-readable output.
	Console io.Writer
	// Debug lowers the level from info to debug.
	Debug bool
}

// Init builds the logger, installs it as the zerolog global and returns it
// together with a closer for the file sink.
func Init(opts Options) (zerolog.Logger, io.Closer, error) {
	zerolog.TimeFieldFormat = time.RFC3339

	var writers []io.Writer
	var closer io.Closer = nopCloser{}

	if opts.Path != "" {
		if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
			return zerolog.Nop(), closer, fmt.Errorf("create log dir: %w", err)
		}
		f, err := os.OpenFile(opts.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), closer, fmt.Errorf("open log file: %w", err)
		}
		writers = append(writers, f)
		closer = f
	}
	if opts.Console != nil {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        opts.Console,
			TimeFormat: time.Kitchen,
		})
	}

	var out io.Writer
	switch len(writers) {
	case 0:
		out = io.Discard
	case 1:
		out = writers[0]
	default:
		out = zerolog.MultiLevelWriter(writers...)
	}

	level := zerolog.InfoLevel
	if opts.Debug {
		level = zerolog.DebugLevel
	}

	logger := zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("service", Service).
		Logger()
	log.Logger = logger
	return logger, closer, nil
}

// WithContext stores logger in ctx.
func WithContext(ctx context.Context, logger zerolog.Logger) context.Context {
	return logger.WithContext(ctx)
}

// FromContext returns the logger stored in ctx, or the global logger.
func FromContext(ctx context.Context) zerolog.Logger {
	if l := zerolog.Ctx(ctx); l != nil && l.GetLevel() != zerolog.Disabled {
		return *l
	}
	return log.Logger
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
