package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds the service-wide logger. Console output is intentional: the bot
// is operated from a terminal or a plain systemd unit, not a log pipeline.
func New(serviceName string, debug bool) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}

	return zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Str("service", serviceName).
		Logger()
}
