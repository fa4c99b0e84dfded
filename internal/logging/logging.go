// Package logging builds the zerolog logger used across verse. Stdout is
// reserved for the MCP protocol stream, so logs go to stderr or to a
// rotating file.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/tessro/verse/internal/config"
)

// File rotation limits.
const (
	maxSizeMB  = 10
	maxBackups = 3
	maxAgeDays = 28
)

// New builds a logger from the log configuration. With a file configured,
// output is JSON through a rotating writer; otherwise a console writer on
// stderr.
func New(cfg config.LogConfig) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	var out io.Writer
	if cfg.File != "" {
		out = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
			MaxAge:     maxAgeDays,
			Compress:   true,
		}
	} else {
		out = zerolog.ConsoleWriter{Out: os.Stderr}
	}

	return zerolog.New(out).Level(parseLevel(cfg.Level)).With().Timestamp().Logger()
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
