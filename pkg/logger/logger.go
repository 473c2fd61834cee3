package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	DEBUG int = iota
	INFO
	WARNING
	ERROR
	SILENCE
)

type Logger interface {
	Debugf(msg string, a ...any)
	Infof(msg string, a ...any)
	Warnf(msg string, a ...any)
	Errorf(msg string, a ...any)
}

type Option func(*defaultLogger)

// WithOutput replaces the default stdout writer.
func WithOutput(w io.Writer) Option {
	return func(l *defaultLogger) {
		l.out = w
	}
}

// WithConsole renders human readable lines instead of JSON.
func WithConsole() Option {
	return func(l *defaultLogger) {
		l.console = true
	}
}

type defaultLogger struct {
	out     io.Writer
	console bool
	inner   zerolog.Logger
}

func NewLogger(level int, opts ...Option) *defaultLogger {
	l := &defaultLogger{out: os.Stdout}
	for _, opt := range opts {
		opt(l)
	}

	out := l.out
	if l.console {
		out = zerolog.ConsoleWriter{Out: l.out, TimeFormat: time.RFC3339}
	}

	l.inner = zerolog.New(out).Level(toZerologLevel(level)).With().Timestamp().Logger()
	return l
}

// ParseLevel converts a config string to one of the level constants. Unknown
// values fall back to INFO.
func ParseLevel(s string) int {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DEBUG
	case "warn", "warning":
		return WARNING
	case "error":
		return ERROR
	case "silence", "off":
		return SILENCE
	default:
		return INFO
	}
}

func toZerologLevel(level int) zerolog.Level {
	switch level {
	case DEBUG:
		return zerolog.DebugLevel
	case INFO:
		return zerolog.InfoLevel
	case WARNING:
		return zerolog.WarnLevel
	case ERROR:
		return zerolog.ErrorLevel
	default:
		return zerolog.Disabled
	}
}

func (l *defaultLogger) Debugf(msg string, a ...any) {
	l.inner.Debug().Msgf(msg, a...)
}

func (l *defaultLogger) Infof(msg string, a ...any) {
	l.inner.Info().Msgf(msg, a...)
}

func (l *defaultLogger) Warnf(msg string, a ...any) {
	l.inner.Warn().Msgf(msg, a...)
}

func (l *defaultLogger) Errorf(msg string, a ...any) {
	l.inner.Error().Msgf(msg, a...)
}
