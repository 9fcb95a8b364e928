package logger

import (
	"errors"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	globalLogger zerolog.Logger
	once         sync.Once
)

// GetLogger returns the global logger, initialising it with console output
// at info level on first use.
func GetLogger() zerolog.Logger {
	once.Do(func() {
		consoleWriter := zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
		globalLogger = zerolog.New(consoleWriter).With().Timestamp().Logger().Level(zerolog.InfoLevel)
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	})
	return globalLogger
}

// New constructs a zerolog logger from level and format configuration and
// installs it as the global logger.
func New(level, format string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.Logger{}, err
	}

	var base zerolog.Logger
	switch strings.ToLower(format) {
	case "json":
		base = zerolog.New(os.Stdout).With().Timestamp().Logger()
	case "console":
		base = zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Logger()
	default:
		return zerolog.Logger{}, errors.New("unsupported log format")
	}

	zerolog.SetGlobalLevel(lvl)
	globalLogger = base.Level(lvl)

	return globalLogger, nil
}
