// Package logger is the zerolog wrapper shared by every bucketfs package.
//
// Components take a *Logger at construction (Nop when none is given) and
// log with the field helpers (DebugWith, InfoWith, WarnWith, ErrorWith).
// Request-scoped loggers travel in the context.
package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// Logger wraps zerolog with the field helpers used across bucketfs.
type Logger struct {
	zlog zerolog.Logger
}

// Fields are attached to a single log line.
type Fields = map[string]interface{}

// Config holds logger configuration
type Config struct {
	Level      string // debug, info, warn, error, fatal
	Format     string // json, console, auto
	TimeFormat string // rfc3339, unix, unixms, unixmicro
	Output     io.Writer
}

// DefaultConfig returns production defaults: info level JSON on stdout.
func DefaultConfig() *Config {
	return &Config{
		Level:      "info",
		Format:     "json",
		TimeFormat: "rfc3339",
		Output:     os.Stdout,
	}
}

// New builds a logger from cfg. A nil cfg uses DefaultConfig.
func New(cfg *Config) *Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	zerolog.TimeFieldFormat = timeFormat(cfg.TimeFormat)

	if useConsole(cfg.Format, out) {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
			NoColor:    !isTerminal(out),
		}
	}
	zlog := zerolog.New(out).Level(ParseLevel(cfg.Level)).With().Timestamp().Logger()
	return &Logger{zlog: zlog}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{zlog: zerolog.Nop()}
}

// WithContext returns a copy of ctx carrying l.
func (l *Logger) WithContext(ctx context.Context) context.Context {
	return l.zlog.WithContext(ctx)
}

// FromContext returns the logger stored in ctx, or the global logger.
func FromContext(ctx context.Context) *Logger {
	zlog := zerolog.Ctx(ctx)
	if zlog.GetLevel() == zerolog.Disabled {
		return global
	}
	return &Logger{zlog: *zlog}
}

// With starts a child logger carrying extra fields on every line.
//
//	reqLog := log.With().Str("request_id", id).Logger()
func (l *Logger) With() *Context {
	return &Context{ctx: l.zlog.With()}
}

// Context wraps zerolog.Context for field chaining
type Context struct {
	ctx zerolog.Context
}

func (c *Context) Str(key, val string) *Context {
	c.ctx = c.ctx.Str(key, val)
	return c
}

func (c *Context) Int(key string, val int) *Context {
	c.ctx = c.ctx.Int(key, val)
	return c
}

func (c *Context) Logger() *Logger {
	return &Logger{zlog: c.ctx.Logger()}
}

func (l *Logger) Info(msg string) {
	l.zlog.Info().Msg(msg)
}

// DebugWith logs at debug level. fields are only walked when debug is on.
func (l *Logger) DebugWith(msg string, fields Fields) {
	event := l.zlog.Debug()
	if !event.Enabled() {
		return
	}
	emit(event, msg, fields)
}

func (l *Logger) InfoWith(msg string, fields Fields) {
	emit(l.zlog.Info(), msg, fields)
}

func (l *Logger) WarnWith(msg string, err error, fields Fields) {
	emit(l.zlog.Warn().Err(err), msg, fields)
}

func (l *Logger) ErrorWith(msg string, err error, fields Fields) {
	emit(l.zlog.Error().Err(err), msg, fields)
}

// HTTPEvent starts an info event for request logging middleware.
func (l *Logger) HTTPEvent() *zerolog.Event {
	return l.zlog.Info()
}

func emit(event *zerolog.Event, msg string, fields Fields) {
	for k, v := range fields {
		event = event.Interface(k, v)
	}
	event.Msg(msg)
}

// ParseLevel maps a level name to zerolog. Unknown names are info.
func ParseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

func timeFormat(format string) string {
	switch format {
	case "unix":
		return zerolog.TimeFormatUnix
	case "unixms":
		return zerolog.TimeFormatUnixMs
	case "unixmicro":
		return zerolog.TimeFormatUnixMicro
	default:
		return time.RFC3339
	}
}

// useConsole decides between console and JSON output. "auto" picks the
// console writer only when out is an interactive terminal.
func useConsole(format string, out io.Writer) bool {
	switch format {
	case "console":
		return true
	case "auto":
		return isTerminal(out)
	default:
		return false
	}
}

func isTerminal(out io.Writer) bool {
	f, ok := out.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// global backs FromContext when the context carries no logger.
var global = New(&Config{Level: "info", Format: "auto", Output: os.Stderr})

// SetGlobal replaces the fallback logger returned by FromContext.
func SetGlobal(l *Logger) {
	if l != nil {
		global = l
	}
}
