package log

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// NewConsoleLogger returns a zerolog.Logger that writes timestamped,
// human-readable lines to w (stderr when nil). An empty level means info.
func NewConsoleLogger(w io.Writer, level string) (zerolog.Logger, error) {
	if w == nil {
		w = os.Stderr
	}
	lvl := zerolog.InfoLevel
	if level != "" {
		var err error
		if lvl, err = zerolog.ParseLevel(strings.ToLower(level)); err != nil {
			return zerolog.Nop(), err
		}
	}
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger(), nil
}

// ZerologAdapter satisfies Logger on top of a zerolog.Logger.
type ZerologAdapter struct {
	zl zerolog.Logger
}

func NewZerologAdapterWithLogger(zl zerolog.Logger) *ZerologAdapter {
	return &ZerologAdapter{zl: zl}
}

// Debug logs at debug level.
func (a *ZerologAdapter) Debug(msg string, fields ...Field) {
	a.write(zerolog.DebugLevel, msg, fields)
}

// Info logs at info level.
func (a *ZerologAdapter) Info(msg string, fields ...Field) {
	a.write(zerolog.InfoLevel, msg, fields)
}

// Warn logs at warn level.
func (a *ZerologAdapter) Warn(msg string, fields ...Field) {
	a.write(zerolog.WarnLevel, msg, fields)
}

// Error logs at error level.
func (a *ZerologAdapter) Error(msg string, fields ...Field) {
	a.write(zerolog.ErrorLevel, msg, fields)
}

func (a *ZerologAdapter) write(level zerolog.Level, msg string, fields []Field) {
	e := a.zl.WithLevel(level)
	if e == nil {
		return
	}
	for _, f := range fields {
		switch v := f.Value.(type) {
		case string:
			e.Str(f.Key, v)
		case int:
			e.Int(f.Key, v)
		case uint64:
			e.Uint64(f.Key, v)
		case bool:
			e.Bool(f.Key, v)
		case time.Duration:
			e.Dur(f.Key, v)
		case error:
			e.AnErr(f.Key, v)
		default:
			e.Interface(f.Key, v)
		}
	}
	e.Msg(msg)
}
