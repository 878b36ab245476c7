package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/agbru/mpcalc/internal/mp"
)

// Logger is the leveled, structured logging surface used across mpcalc.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, err error, fields ...Field)
}

// Field is a key/value pair attached to a log entry.
type Field struct {
	Key   string
	Value any
}

func String(key, value string) Field          { return Field{Key: key, Value: value} }
func Int(key string, value int) Field         { return Field{Key: key, Value: value} }
func Uint64(key string, value uint64) Field   { return Field{Key: key, Value: value} }
func Float64(key string, value float64) Field { return Field{Key: key, Value: value} }

// Err attaches err under "error".
func Err(err error) Field { return Field{Key: "error", Value: err} }

// ResultCode attaches the description of an engine result code under "code".
func ResultCode(code mp.Code) Field {
	return Field{Key: "code", Value: mp.ErrorToString(code)}
}

// Options configures New.
type Options struct {
	// Component tags every entry.
	Component string
	// Level is a zerolog level name; empty means info.
	Level string
	// Console switches from JSON lines to zerolog's human-readable writer.
	Console bool
	NoColor bool
}

// ZerologAdapter implements Logger with zerolog.
type ZerologAdapter struct {
	logger zerolog.Logger
}

// New builds a logger writing to w.
func New(w io.Writer, opts Options) (*ZerologAdapter, error) {
	lvl, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	if opts.Console {
		w = zerolog.ConsoleWriter{Out: w, NoColor: opts.NoColor, TimeFormat: "15:04:05"}
	}
	ctx := zerolog.New(w).Level(lvl).With().Timestamp()
	if opts.Component != "" {
		ctx = ctx.Str("component", opts.Component)
	}
	return &ZerologAdapter{logger: ctx.Logger()}, nil
}

// Nop discards everything.
func Nop() *ZerologAdapter {
	return &ZerologAdapter{logger: zerolog.Nop()}
}

// ParseLevel maps a level name, in any case, to a zerolog level.
func ParseLevel(level string) (zerolog.Level, error) {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "" {
		return zerolog.InfoLevel, nil
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return lvl, nil
}

func (a *ZerologAdapter) Debug(msg string, fields ...Field) {
	withFields(a.logger.Debug(), fields).Msg(msg)
}

func (a *ZerologAdapter) Info(msg string, fields ...Field) {
	withFields(a.logger.Info(), fields).Msg(msg)
}

func (a *ZerologAdapter) Warn(msg string, fields ...Field) {
	withFields(a.logger.Warn(), fields).Msg(msg)
}

func (a *ZerologAdapter) Error(msg string, err error, fields ...Field) {
	withFields(a.logger.Error().Err(err), fields).Msg(msg)
}

// withFields adds fields to e with the typed zerolog setter for each value.
// e is nil when the level is filtered out, which zerolog tolerates.
func withFields(e *zerolog.Event, fields []Field) *zerolog.Event {
	for _, f := range fields {
		switch v := f.Value.(type) {
		case string:
			e = e.Str(f.Key, v)
		case int:
			e = e.Int(f.Key, v)
		case uint64:
			e = e.Uint64(f.Key, v)
		case float64:
			e = e.Float64(f.Key, v)
		case bool:
			e = e.Bool(f.Key, v)
		case error:
			e = e.AnErr(f.Key, v)
		default:
			e = e.Interface(f.Key, v)
		}
	}
	return e
}
