// Package obslog constructs the zerolog.Logger every component constructor
// in this module accepts, adapted from logger/logger.go's InitWithOptions.
// Unlike the teacher, which reads LOG_LEVEL from the environment and always
// owns process-wide stdout/a log file, this package takes level, format,
// and the destination writer as explicit parameters: env var / config-file
// loading is out of scope for a library, and the embedding application
// decides where logs go.
package obslog

import (
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
)

// Format selects the zerolog writer.
type Format string

const (
	// FormatJSON writes one JSON object per line directly to w.
	FormatJSON Format = "json"
	// FormatConsole wraps w in a zerolog.ConsoleWriter for human-readable
	// output.
	FormatConsole Format = "console"
)

// New builds a zerolog.Logger writing to w at the given level, mirroring
// InitWithOptions's two output shapes (JSON vs. ConsoleWriter) without its
// file-path/env-var concerns.
func New(level, format string, w io.Writer) (zerolog.Logger, error) {
	lvl := ParseLevel(level)

	var output io.Writer
	switch Format(strings.ToLower(strings.TrimSpace(format))) {
	case FormatConsole:
		output = zerolog.ConsoleWriter{Out: w}
	case FormatJSON, "":
		output = w
	default:
		return zerolog.Logger{}, fmt.Errorf("obslog: unknown format %q", format)
	}

	return zerolog.New(output).Level(lvl).With().Timestamp().Logger(), nil
}

// ParseLevel mirrors logger/logger.go's parseLogLevel: case-insensitive,
// defaulting to info for an empty or unrecognized string.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "info", "":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "trace":
		return zerolog.TraceLevel
	default:
		return zerolog.InfoLevel
	}
}

// Component derives a child logger whose events carry a "component" field,
// the teacher's agent.NewRateLimitMiddleware/agent.NewContextManager idiom.
// No constructor in this module calls it; callers apply it to the logger
// they pass in.
func Component(base zerolog.Logger, name string) zerolog.Logger {
	return base.With().Str("component", name).Logger()
}
