package logger

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures the log sinks.
type Options struct {
	Level       string
	File        string
	MaxBytes    int
	BackupCount int
}

type implLogger struct {
	zl *zap.Logger
}

// New creates a Logger writing to stdout and, when opts.File is set, to a
// size-rotated log file. Every record passes through the secret mask.
func New(opts Options) (Logger, error) {
	level := parseLevel(opts.Level)

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(
			zapcore.NewConsoleEncoder(encCfg),
			zapcore.AddSync(os.Stdout),
			level,
		),
	}

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		maxMB := opts.MaxBytes / (1024 * 1024)
		if maxMB < 1 {
			maxMB = 1
		}
		rotator := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    maxMB,
			MaxBackups: opts.BackupCount,
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(encCfg),
			zapcore.AddSync(rotator),
			level,
		))
	}

	zl := zap.New(zapcore.NewTee(cores...))
	return &implLogger{zl: zl}, nil
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func (l *implLogger) log(level zapcore.Level, msg string, args []interface{}) {
	rendered := msg
	if len(args) > 0 {
		rendered = fmt.Sprintf(msg, args...)
	}
	rendered = Mask(rendered)

	switch level {
	case zapcore.DebugLevel:
		l.zl.Debug(rendered)
	case zapcore.WarnLevel:
		l.zl.Warn(rendered)
	case zapcore.ErrorLevel:
		l.zl.Error(rendered)
	default:
		l.zl.Info(rendered)
	}
}

func (l *implLogger) Debug(ctx context.Context, msg string, args ...interface{}) {
	l.log(zapcore.DebugLevel, msg, args)
}

func (l *implLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	l.log(zapcore.InfoLevel, msg, args)
}

func (l *implLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	l.log(zapcore.WarnLevel, msg, args)
}

func (l *implLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	l.log(zapcore.ErrorLevel, msg, args)
}
