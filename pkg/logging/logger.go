package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger sets up the console logger for a binary and installs it as the
// global zerolog logger. An unknown level falls back to info.
func InitLogger(app string, level string) zerolog.Logger {
	return NewLogger(os.Stderr, app, level)
}

// NewLogger is InitLogger with an explicit destination.
func NewLogger(out io.Writer, app string, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	output := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
		NoColor:    out != os.Stderr,
	}
	logger := zerolog.New(output).Level(lvl).With().Timestamp().Str("app", app).Logger()
	log.Logger = logger
	return logger
}
