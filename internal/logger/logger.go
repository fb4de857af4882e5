// Package logger provides structured logging using zap. Until Init is
// called every call is a no-op, so library packages can log freely.
package logger

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log is the global logger instance.
var Log = zap.NewNop()

// Sugar is the sugared logger for convenient logging.
var Sugar = Log.Sugar()

// Output formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Options configures Init.
type Options struct {
	Level  string // debug, info, warn or error
	Format string // console or json, for both sinks
	// Console writes to stderr, keeping stdout free for command output.
	Console bool
	File    FileOptions
}

// FileOptions configures the rotating log file. An empty Path disables it.
type FileOptions struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// DefaultOptions logs info and above to stderr only.
func DefaultOptions() Options {
	return Options{
		Level:   "info",
		Format:  FormatConsole,
		Console: true,
		File: FileOptions{
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 14,
		},
	}
}

// Init replaces the global logger according to opts.
func Init(opts Options) error {
	lvl, err := zapcore.ParseLevel(opts.Level)
	if err != nil {
		return err
	}
	if opts.Format == "" {
		opts.Format = FormatConsole
	}
	if opts.Format != FormatConsole && opts.Format != FormatJSON {
		return fmt.Errorf("unknown log format %q", opts.Format)
	}

	var cores []zapcore.Core
	if opts.Console {
		cores = append(cores, newCore(os.Stderr, opts.Format, true, lvl))
	}
	if f := opts.File; f.Path != "" {
		w := &lumberjack.Logger{
			Filename:   f.Path,
			MaxSize:    f.MaxSizeMB,
			MaxBackups: f.MaxBackups,
			MaxAge:     f.MaxAgeDays,
			Compress:   f.Compress,
			LocalTime:  true,
		}
		cores = append(cores, newCore(w, opts.Format, false, lvl))
	}

	SetLogger(zap.New(zapcore.NewTee(cores...), zap.AddCaller()))
	return nil
}

// newCore builds a sink. Terminal output gets short times and colored
// levels; files get ISO8601 times.
func newCore(w io.Writer, format string, terminal bool, lvl zapcore.Level) zapcore.Core {
	cfg := zapcore.EncoderConfig{
		TimeKey:          "time",
		LevelKey:         "level",
		NameKey:          "logger",
		MessageKey:       "msg",
		CallerKey:        "caller",
		EncodeTime:       zapcore.ISO8601TimeEncoder,
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		EncodeCaller:     zapcore.ShortCallerEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " ",
	}

	var enc zapcore.Encoder
	if format == FormatJSON {
		cfg.EncodeLevel = zapcore.LowercaseLevelEncoder
		enc = zapcore.NewJSONEncoder(cfg)
	} else {
		if terminal {
			cfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
			cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
		enc = zapcore.NewConsoleEncoder(cfg)
	}
	return zapcore.NewCore(enc, zapcore.AddSync(w), lvl)
}

// SetLogger replaces the global logger, e.g. with an observer in tests.
// A nil logger restores the no-op logger.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	Log = l
	Sugar = l.Sugar()
}

// Sync flushes any buffered log entries.
func Sync() {
	_ = Log.Sync()
}

// Debug logs a debug message.
func Debug(msg string, fields ...zap.Field) {
	Log.Debug(msg, fields...)
}

// Info logs an info message.
func Info(msg string, fields ...zap.Field) {
	Log.Info(msg, fields...)
}

// Warn logs a warning message.
func Warn(msg string, fields ...zap.Field) {
	Log.Warn(msg, fields...)
}

// Error logs an error message.
func Error(msg string, fields ...zap.Field) {
	Log.Error(msg, fields...)
}

// Fatal logs a fatal message and exits.
func Fatal(msg string, fields ...zap.Field) {
	Log.Fatal(msg, fields...)
}
