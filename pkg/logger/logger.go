// Package logger wraps zap with the log levels used across kubeboot,
// including a SUCCESS level for completed pipeline stages. Console output
// goes through a colored prefix encoder; file output is JSON and rotated
// by lumberjack.
package logger

import (
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Level is the kubeboot log level. SuccessLevel sits between Info and Warn
// and maps to zap's InfoLevel with distinct console rendering.
type Level int8

const (
	DebugLevel Level = iota - 1
	InfoLevel
	SuccessLevel
	WarnLevel
	ErrorLevel
	FatalLevel
)

func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "debug"
	case InfoLevel:
		return "info"
	case SuccessLevel:
		return "success"
	case WarnLevel:
		return "warn"
	case ErrorLevel:
		return "error"
	case FatalLevel:
		return "fatal"
	default:
		return fmt.Sprintf("level(%d)", l)
	}
}

// CapitalString returns the bracketed console prefix form, e.g. "SUCCESS".
func (l Level) CapitalString() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case SuccessLevel:
		return "SUCCESS"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	case FatalLevel:
		return "FATAL"
	default:
		return fmt.Sprintf("LEVEL(%d)", l)
	}
}

func (l Level) toZapLevel() zapcore.Level {
	switch l {
	case DebugLevel:
		return zapcore.DebugLevel
	case InfoLevel, SuccessLevel:
		return zapcore.InfoLevel
	case WarnLevel:
		return zapcore.WarnLevel
	case ErrorLevel:
		return zapcore.ErrorLevel
	case FatalLevel:
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

// Options configures console and file sinks.
type Options struct {
	ConsoleLevel    Level
	FileLevel       Level
	LogFilePath     string
	ConsoleOutput   bool
	FileOutput      bool
	ColorConsole    bool
	TimestampFormat string
}

// DefaultOptions logs INFO+ to a colored console and keeps file output off.
func DefaultOptions() Options {
	return Options{
		ConsoleLevel:    InfoLevel,
		FileLevel:       DebugLevel,
		LogFilePath:     "kubeboot.log",
		ConsoleOutput:   true,
		FileOutput:      false,
		ColorConsole:    true,
		TimestampFormat: time.RFC3339,
	}
}

// Logger wraps zap.SugaredLogger with the custom level set.
type Logger struct {
	*zap.SugaredLogger
	opts Options
}

var (
	globalLogger *Logger
	once         sync.Once
)

// Init initializes the global logger. Safe to call once at startup;
// subsequent calls are no-ops.
func Init(opts Options) {
	once.Do(func() {
		l, err := NewLogger(opts)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to initialize logger: %v, falling back to plain console\n", err)
			cfg := zap.NewDevelopmentConfig()
			fallback, _ := cfg.Build(zap.AddCallerSkip(1))
			l = &Logger{SugaredLogger: fallback.Sugar(), opts: DefaultOptions()}
		}
		globalLogger = l
	})
}

// Get returns the global logger, initializing it with defaults if needed.
func Get() *Logger {
	if globalLogger == nil {
		Init(DefaultOptions())
	}
	return globalLogger
}

// NewLogger builds a logger instance from opts.
func NewLogger(opts Options) (*Logger, error) {
	if opts.TimestampFormat == "" {
		opts.TimestampFormat = time.RFC3339
	}

	var cores []zapcore.Core

	if opts.ConsoleOutput {
		encCfg := zap.NewProductionEncoderConfig()
		encCfg.EncodeTime = zapcore.TimeEncoderOfLayout(opts.TimestampFormat)
		encCfg.TimeKey = "time"
		encCfg.LevelKey = "" // level prefix is rendered by the console encoder
		encCfg.MessageKey = "msg"

		enc := NewConsoleEncoder(encCfg, opts.ColorConsole)
		enabler := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
			return lvl >= opts.ConsoleLevel.toZapLevel()
		})
		cores = append(cores, zapcore.NewCore(enc, zapcore.Lock(os.Stdout), enabler))
	}

	if opts.FileOutput {
		if opts.LogFilePath == "" {
			return nil, fmt.Errorf("log file path cannot be empty when file output is enabled")
		}
		encCfg := zap.NewProductionEncoderConfig()
		encCfg.EncodeTime = zapcore.TimeEncoderOfLayout(opts.TimestampFormat)
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

		writer := zapcore.AddSync(&lumberjack.Logger{
			Filename:   opts.LogFilePath,
			MaxSize:    50, // MB
			MaxBackups: 5,
			MaxAge:     30, // days
			Compress:   true,
		})
		enabler := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
			return lvl >= opts.FileLevel.toZapLevel()
		})
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), writer, enabler))
	}

	if len(cores) == 0 {
		return &Logger{SugaredLogger: zap.NewNop().Sugar(), opts: opts}, nil
	}

	zl := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(1))
	return &Logger{SugaredLogger: zl.Sugar(), opts: opts}, nil
}

func (l *Logger) log(level Level, template string, args ...interface{}) {
	if l == nil || l.SugaredLogger == nil {
		fmt.Fprintf(os.Stderr, "[%s] %s\n", level.CapitalString(), fmt.Sprintf(template, args...))
		if level == FatalLevel {
			os.Exit(1)
		}
		return
	}

	msg := fmt.Sprintf(template, args...)
	// The console encoder keys off this field to render SUCCESS distinctly.
	fields := []interface{}{zap.String("customlevel", level.CapitalString())}
	s := l.SugaredLogger.WithOptions(zap.AddCallerSkip(1))

	switch level {
	case DebugLevel:
		s.Debugw(msg, fields...)
	case InfoLevel, SuccessLevel:
		s.Infow(msg, fields...)
	case WarnLevel:
		s.Warnw(msg, fields...)
	case ErrorLevel:
		s.Errorw(msg, fields...)
	case FatalLevel:
		s.Fatalw(msg, fields...)
	default:
		s.Infow(msg, fields...)
	}
}

// Debugf logs at DebugLevel.
func (l *Logger) Debugf(template string, args ...interface{}) {
	l.log(DebugLevel, template, args...)
}

// Infof logs at InfoLevel.
func (l *Logger) Infof(template string, args ...interface{}) {
	l.log(InfoLevel, template, args...)
}

// Successf logs at SuccessLevel, rendered green on the console.
func (l *Logger) Successf(template string, args ...interface{}) {
	l.log(SuccessLevel, template, args...)
}

// Warnf logs at WarnLevel.
func (l *Logger) Warnf(template string, args ...interface{}) {
	l.log(WarnLevel, template, args...)
}

// Errorf logs at ErrorLevel.
func (l *Logger) Errorf(template string, args ...interface{}) {
	l.log(ErrorLevel, template, args...)
}

// Fatalf logs at FatalLevel then exits.
func (l *Logger) Fatalf(template string, args ...interface{}) {
	l.log(FatalLevel, template, args...)
}

// With returns a child logger carrying additional structured fields.
func (l *Logger) With(args ...interface{}) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With(args...), opts: l.opts}
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	if l == nil || l.SugaredLogger == nil {
		return nil
	}
	return l.SugaredLogger.Sync()
}

// SyncGlobal flushes the global logger before exit.
func SyncGlobal() error { return Get().Sync() }
