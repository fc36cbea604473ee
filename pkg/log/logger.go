package log

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
)

const (
	ErrAttrKey        = "error"
	ErrDetailAttrKey  = "error_detail"
	StacktraceAttrKey = "stacktrace"
)

// zerologLogger implements Logger on top of zerolog.
type zerologLogger struct {
	zl zerolog.Logger
}

// New returns a JSON Logger writing to w at the given minimum level.
func New(w io.Writer, level Level) Logger {
	zl := zerolog.New(w).Level(toZerologLevel(level)).With().Timestamp().Logger()
	return &zerologLogger{zl: zl}
}

// Nop returns a Logger that discards everything.
func Nop() Logger {
	return &zerologLogger{zl: zerolog.Nop()}
}

// ParseLevel converts a configuration string ("debug", "info", "warn", "error")
// to a Level.
func ParseLevel(level string) (Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("invalid log level: %s", level)
	}
}

func toZerologLevel(level Level) zerolog.Level {
	switch {
	case level <= LevelDebug:
		return zerolog.DebugLevel
	case level <= LevelInfo:
		return zerolog.InfoLevel
	case level <= LevelWarn:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}

func (l *zerologLogger) Debug(msg string, fields ...any) {
	l.emit(l.zl.Debug(), msg, fields)
}

func (l *zerologLogger) Info(msg string, fields ...any) {
	l.emit(l.zl.Info(), msg, fields)
}

func (l *zerologLogger) Warn(msg string, fields ...any) {
	l.emit(l.zl.Warn(), msg, fields)
}

func (l *zerologLogger) Error(msg string, fields ...any) {
	l.emit(l.zl.Error(), msg, fields)
}

func (l *zerologLogger) With(fields ...any) Logger {
	ctx := l.zl.With()
	for _, kv := range pairs(fields) {
		if err, ok := kv.value.(error); ok {
			ctx = ctx.AnErr(kv.key, err)
			continue
		}
		ctx = ctx.Interface(kv.key, kv.value)
	}
	return &zerologLogger{zl: ctx.Logger()}
}

func (l *zerologLogger) Enabled(_ context.Context, level Level) bool {
	return toZerologLevel(level) >= l.zl.GetLevel()
}

// emit writes fields to e and sends it. A nil event means the level is disabled.
func (l *zerologLogger) emit(e *zerolog.Event, msg string, fields []any) {
	if e == nil {
		return
	}
	for _, kv := range pairs(fields) {
		if err, ok := kv.value.(error); ok {
			appendError(e, kv.key, err)
			continue
		}
		e.Interface(kv.key, kv.value)
	}
	e.Msg(msg)
}

type keyValue struct {
	key   string
	value any
}

// pairs turns alternating key-value fields into pairs. A leading error without
// a key is filed under ErrAttrKey; a trailing key without a value is dropped.
func pairs(fields []any) []keyValue {
	if len(fields) > 0 {
		if err, ok := fields[0].(error); ok {
			fields = append([]any{ErrAttrKey, err}, fields[1:]...)
		}
	}
	out := make([]keyValue, 0, len(fields)/2)
	for i := 0; i+1 < len(fields); i += 2 {
		out = append(out, keyValue{key: fmt.Sprintf("%v", fields[i]), value: fields[i+1]})
	}
	return out
}
