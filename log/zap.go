package log

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger adapts a zap logger to HarnessLogger and hands out named child
// loggers for the node adapters.
type ZapLogger struct {
	base  *zap.Logger
	sugar *zap.SugaredLogger
}

// NewZapLogger builds a development style console logger. Debug output is
// only emitted when debug is set.
func NewZapLogger(debug bool) (*ZapLogger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	base, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return WrapZap(base), nil
}

func WrapZap(base *zap.Logger) *ZapLogger {
	return &ZapLogger{base: base, sugar: base.Sugar()}
}

func (z *ZapLogger) Infof(format string, v ...interface{}) {
	z.sugar.Infof(format, v...)
}

func (z *ZapLogger) Debugf(format string, v ...interface{}) {
	z.sugar.Debugf(format, v...)
}

func (z *ZapLogger) Warnf(format string, v ...interface{}) {
	z.sugar.Warnf(format, v...)
}

// Named returns a child logger, e.g. "lnd-1".
func (z *ZapLogger) Named(name string) *zap.Logger {
	return z.base.Named(name)
}

func (z *ZapLogger) Sync() error {
	return z.base.Sync()
}
