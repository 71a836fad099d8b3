package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var zlog = zerolog.New(os.Stdout).With().Timestamp().Str("service", "estate-inquiries-api").Logger()

// Init configures the process logger. Development gets a console writer,
// every other environment gets JSON lines.
func Init(env, level string) {
	var w io.Writer = os.Stdout
	if env == "development" {
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	zerolog.TimeFieldFormat = time.RFC3339
	zlog = zerolog.New(w).Level(lvl).With().
		Timestamp().
		Str("service", "estate-inquiries-api").
		Logger()
}

// Get returns the process logger
func Get() *zerolog.Logger {
	return &zlog
}

// SetOutput redirects the process logger, keeping its level (tests)
func SetOutput(w io.Writer) {
	zlog = zlog.Output(w)
}
