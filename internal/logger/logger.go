// Package logger builds the charmbracelet/log loggers shared by the CLI and the client.
package logger

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// Options configures a logger.
type Options struct {
	Verbose bool
	Writer  io.Writer // defaults to stderr
	Prefix  string
}

// New creates a timestamped logger at INFO level, or DEBUG when verbose.
func New(opts Options) *log.Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}

	level := log.InfoLevel
	if opts.Verbose {
		level = log.DebugLevel
	}

	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Level:           level,
		Prefix:          opts.Prefix,
	})
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}
