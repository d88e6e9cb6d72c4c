package logger

import (
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Options struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	// ConsoleLevel is the minimum level echoed to Console. Empty means Level.
	ConsoleLevel string
	Console      io.Writer
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}

// New builds a logger that writes JSON to a rotating file (when File is set)
// and human-readable lines to the console writer.
func New(opts Options) *zap.Logger {
	level := ParseLevel(opts.Level, zapcore.InfoLevel)
	consoleLevel := ParseLevel(opts.ConsoleLevel, level)

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	cores := []zapcore.Core{
		zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderConfig()),
			zapcore.AddSync(console),
			consoleLevel,
		),
	}

	if file := strings.TrimSpace(opts.File); file != "" {
		fileWriter := zapcore.AddSync(&lumberjack.Logger{
			Filename:   file,
			MaxSize:    orDefault(opts.MaxSizeMB, 100),
			MaxBackups: orDefault(opts.MaxBackups, 5),
			MaxAge:     orDefault(opts.MaxAgeDays, 30),
			Compress:   true,
		})
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderConfig()),
			fileWriter,
			level,
		))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel))
}

// ParseLevel falls back to def for empty or unknown names.
func ParseLevel(name string, def zapcore.Level) zapcore.Level {
	name = strings.TrimSpace(name)
	if name == "" {
		return def
	}
	level, err := zapcore.ParseLevel(strings.ToLower(name))
	if err != nil {
		return def
	}
	return level
}

func orDefault(value, def int) int {
	if value <= 0 {
		return def
	}
	return value
}
