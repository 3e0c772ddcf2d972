package logger

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New builds the root logger. Development gets a human-readable console
// writer; anything else logs JSON lines.
func New(level, environment string) zerolog.Logger {
	parsed, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || parsed == zerolog.NoLevel {
		parsed = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if environment == "development" {
		writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
		logger = zerolog.New(writer)
	} else {
		logger = zerolog.New(os.Stderr)
	}
	return logger.Level(parsed).With().Timestamp().Logger()
}
