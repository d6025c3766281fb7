// Package logging builds the zap loggers used by the commands.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a console logger writing to stderr. Verbose enables debug
// level with caller information; otherwise only info and above are kept.
func New(verbose bool) *zap.Logger {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	return NewWithSink(zapcore.Lock(os.Stderr), level, verbose)
}

// NewWithSink builds a console logger that writes to sink at level.
func NewWithSink(sink zapcore.WriteSyncer, level zapcore.Level, withCaller bool) *zap.Logger {
	enc := zap.NewDevelopmentEncoderConfig()
	enc.EncodeLevel = zapcore.CapitalLevelEncoder
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	if !withCaller {
		enc.CallerKey = zapcore.OmitKey
	}

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), sink, zap.NewAtomicLevelAt(level))
	opts := []zap.Option{zap.ErrorOutput(sink)}
	if withCaller {
		opts = append(opts, zap.AddCaller())
	}
	return zap.New(core, opts...)
}
