// Package logger provides leveled logging with support for debug, info, warn,
// and error levels. It wraps zerolog to provide level-based filtering with
// either JSON or human-readable console output.
package logger

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var defaultLogger = zerolog.Nop()

// Init initializes the default logger with the specified level and format.
// Format "console" selects human-readable output; anything else emits JSON.
func Init(level string, format string) {
	l, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		l = zerolog.InfoLevel
	}

	logger := zerolog.New(os.Stderr)
	if strings.ToLower(format) == "console" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	defaultLogger = logger.Level(l).With().Timestamp().Logger()
}

// Debug logs a message at debug level.
func Debug(format string, args ...interface{}) {
	defaultLogger.Debug().Msgf(format, args...)
}

// Info logs a message at info level.
func Info(format string, args ...interface{}) {
	defaultLogger.Info().Msgf(format, args...)
}

// Warn logs a message at warn level.
func Warn(format string, args ...interface{}) {
	defaultLogger.Warn().Msgf(format, args...)
}

// Error logs a message at error level.
func Error(format string, args ...interface{}) {
	defaultLogger.Error().Msgf(format, args...)
}

// Fatal logs a message at fatal level and exits.
func Fatal(format string, args ...interface{}) {
	defaultLogger.Fatal().Msgf(format, args...)
}
