package infra

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger aliases zerolog.Logger for packages that only pass loggers around.
type Logger = zerolog.Logger

// NewLogger builds the process logger tagged with service. Development uses
// the console writer at debug level; other environments emit JSON at info.
// A non-empty level overrides the environment default.
func NewLogger(appEnv, level, service string) zerolog.Logger {
	return newLogger(os.Stdout, appEnv, level, service)
}

func newLogger(out io.Writer, appEnv, level, service string) zerolog.Logger {
	dev := appEnv == "development"
	if dev {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).
		Level(levelFor(dev, level)).
		With().
		Timestamp().
		Str("service", service).
		Logger()
}

func levelFor(dev bool, level string) zerolog.Level {
	if level != "" {
		if l, err := zerolog.ParseLevel(level); err == nil {
			return l
		}
	}
	if dev {
		return zerolog.DebugLevel
	}
	return zerolog.InfoLevel
}
