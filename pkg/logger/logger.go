// Package logger builds the zerolog logger shared by the server and jobs.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config selects the level and output format
type Config struct {
	Level  string // debug, info, warn or error; anything else means info
	Pretty bool   // human-readable console output instead of JSON
}

// New returns a logger writing to stdout and sets the global level from cfg
func New(cfg Config) zerolog.Logger {
	return newWithWriter(cfg, os.Stdout)
}

func newWithWriter(cfg Config, out io.Writer) zerolog.Logger {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))
	zerolog.TimeFieldFormat = time.RFC3339

	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}

	return zerolog.New(out).With().Timestamp().Caller().Logger()
}

func parseLevel(s string) zerolog.Level {
	switch lvl, err := zerolog.ParseLevel(s); {
	case err != nil:
		return zerolog.InfoLevel
	case lvl == zerolog.DebugLevel, lvl == zerolog.WarnLevel, lvl == zerolog.ErrorLevel:
		return lvl
	default:
		return zerolog.InfoLevel
	}
}

// SetGlobalLogger replaces the logger behind github.com/rs/zerolog/log
func SetGlobalLogger(l zerolog.Logger) {
	log.Logger = l
}
