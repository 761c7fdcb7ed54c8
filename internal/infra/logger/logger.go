// Package logger builds the CLI's structured logger. Grounded
// on the teacher's infrastructure/logger.Setup, but backed by zerolog
// rather than log/slog since zerolog is the logging library actually
// carried by this module's dependency set.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Setup configures a zerolog.Logger writing to w at the given level
// ("debug", "info", "warn", "error"; unrecognized values fall back to
// "info") and returns it. Callers pass the logger down explicitly
// instead of writing to a process-wide global, per spec.md §9
// ("cross-cutting logger -> injected sink").
func Setup(level string, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}

	parsed, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		parsed = zerolog.InfoLevel
	}

	return zerolog.New(w).Level(parsed).With().Timestamp().Logger()
}
