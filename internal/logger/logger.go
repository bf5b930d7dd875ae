// Package logger holds the process wide structured logger.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger is usable before Init is called; it writes JSON to stderr at info level.
var Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

// Init configures Logger for the given environment. In dev the output is
// human readable, everywhere else it is one JSON object per line.
func Init(env, level string) {
	var out io.Writer = os.Stdout
	if env == "dev" {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.DateTime}
	}

	Logger = zerolog.New(out).
		Level(ParseLevel(level)).
		With().
		Timestamp().
		Str("env", env).
		Logger()
}

func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
