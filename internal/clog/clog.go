// Package clog provides the plain log.Logger-over-context plumbing shared by the cmd entrypoints and the
// collection package's directory walker. The zipcore library itself never logs.
package clog

import (
	"context"
	"log"
	"os"
)

type loggerKey struct{}

// WithLogger attaches a log.Logger, writing to os.Stderr with the given prefix, to ctx.
func WithLogger(ctx context.Context, prefix string) context.Context {
	return context.WithValue(ctx, loggerKey{}, log.New(os.Stderr, prefix, 0))
}

// MustLogger returns the logger previously attached by WithLogger. It panics if ctx has none, matching the
// "only call this where WithLogger is known to have run" contract used throughout the CLI entrypoints.
func MustLogger(ctx context.Context) *log.Logger {
	return ctx.Value(loggerKey{}).(*log.Logger)
}
