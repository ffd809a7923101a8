package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type Level int

const (
	Trace Level = iota
	Debug
	Info
	Warn
	Error
)

// LevelIds maps levels to their command line spellings.
var LevelIds = map[Level][]string{
	Trace: {"trace"},
	Debug: {"debug"},
	Info:  {"info"},
	Warn:  {"warn", "warning"},
	Error: {"error"},
}

func (l Level) zerolog() zerolog.Level {
	switch l {
	case Trace:
		return zerolog.TraceLevel
	case Debug:
		return zerolog.DebugLevel
	case Info:
		return zerolog.InfoLevel
	case Warn:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}

func (l Level) String() string {
	if ids, ok := LevelIds[l]; ok {
		return ids[0]
	}
	return "error"
}

type Config struct {
	Level  Level
	Format string // "console" (default) or "json"
	Output io.Writer
}

// Logger is a thin printf-style facade over zerolog. A nil *Logger discards
// everything, so library code can log unconditionally.
type Logger struct {
	zl zerolog.Logger
}

func NewLogger(cfg Config) *Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	if !strings.EqualFold(cfg.Format, "json") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	zl := zerolog.New(out).Level(cfg.Level.zerolog()).With().Timestamp().Logger()
	return &Logger{zl: zl}
}

func NewNop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

// With returns a child logger carrying an additional string field.
func (l *Logger) With(key, value string) *Logger {
	if l == nil {
		return nil
	}
	return &Logger{zl: l.zl.With().Str(key, value).Logger()}
}

// Zerolog exposes the underlying logger for adapters.
func (l *Logger) Zerolog() zerolog.Logger {
	if l == nil {
		return zerolog.Nop()
	}
	return l.zl
}

func (l *Logger) Tracef(format string, args ...any) {
	if l != nil {
		l.zl.Trace().Msgf(format, args...)
	}
}

func (l *Logger) Debugf(format string, args ...any) {
	if l != nil {
		l.zl.Debug().Msgf(format, args...)
	}
}

func (l *Logger) Infof(format string, args ...any) {
	if l != nil {
		l.zl.Info().Msgf(format, args...)
	}
}

func (l *Logger) Warnf(format string, args ...any) {
	if l != nil {
		l.zl.Warn().Msgf(format, args...)
	}
}

func (l *Logger) Errorf(format string, args ...any) {
	if l != nil {
		l.zl.Error().Msgf(format, args...)
	}
}
