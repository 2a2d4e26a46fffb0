// Package logging implements csapi.Logger on top of zerolog.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/fivetwenty-io/csapi/pkg/csapi"
)

// EnvLogLevel overrides the level chosen by the CLI flags.
const EnvLogLevel = "CSAPI_LOG_LEVEL"

// Logger is a csapi.Logger backed by zerolog.
type Logger struct {
	logger zerolog.Logger
}

var _ csapi.Logger = (*Logger)(nil)

// New returns a JSON logger writing to w at level.
func New(w io.Writer, level zerolog.Level) *Logger {
	return &Logger{logger: zerolog.New(w).Level(level).With().Timestamp().Logger()}
}

// NewConsole returns a human-readable logger writing to w at level.
func NewConsole(w io.Writer, level zerolog.Level, noColor bool) *Logger {
	writer := zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen, NoColor: noColor}

	return &Logger{logger: zerolog.New(writer).Level(level).With().Timestamp().Logger()}
}

// ForCLI returns the logger used by the command line: console output on a
// terminal, JSON otherwise. verbose lowers the level to debug; CSAPI_LOG_LEVEL
// wins over both.
func ForCLI(verbose, noColor bool) *Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	if parsed, ok := ParseLevel(os.Getenv(EnvLogLevel)); ok {
		level = parsed
	}

	if term.IsTerminal(int(os.Stderr.Fd())) {
		return NewConsole(os.Stderr, level, noColor)
	}

	return New(os.Stderr, level)
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{logger: zerolog.Nop()}
}

// ParseLevel parses a level name, case-insensitively.
func ParseLevel(value string) (zerolog.Level, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return zerolog.NoLevel, false
	}

	level, err := zerolog.ParseLevel(strings.ToLower(value))
	if err != nil {
		return zerolog.NoLevel, false
	}

	return level, true
}

func (l *Logger) Debug(msg string, fields map[string]interface{}) {
	l.logger.Debug().Fields(fields).Msg(msg)
}

func (l *Logger) Info(msg string, fields map[string]interface{}) {
	l.logger.Info().Fields(fields).Msg(msg)
}

func (l *Logger) Warn(msg string, fields map[string]interface{}) {
	l.logger.Warn().Fields(fields).Msg(msg)
}

func (l *Logger) Error(msg string, fields map[string]interface{}) {
	l.logger.Error().Fields(fields).Msg(msg)
}
