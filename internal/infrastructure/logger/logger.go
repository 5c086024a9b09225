package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	usecasecontract "github.com/Deokive/BE-sub001/internal/usecase/contract"
)

// ZapLogger adapts a zap SugaredLogger to the IAppLogger contract.
type ZapLogger struct {
	sugar *zap.SugaredLogger
}

// NewZapLogger builds a production JSON logger at the given level
// ("debug", "info", "warn", "error"; anything else falls back to info).
// The raw *zap.Logger is returned as well for infrastructure components that
// take zap directly.
func NewZapLogger(level string) (usecasecontract.IAppLogger, *zap.Logger, error) {
	zapLevel := zapcore.InfoLevel
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)
	base, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, nil, err
	}
	return &ZapLogger{sugar: base.Sugar()}, base, nil
}

// NewNop returns a logger that discards everything, for tests.
func NewNop() usecasecontract.IAppLogger {
	return &ZapLogger{sugar: zap.NewNop().Sugar()}
}

// Debugf logs a debug message.
func (l *ZapLogger) Debugf(format string, args ...interface{}) {
	l.sugar.Debugf(format, args...)
}

// Infof logs an info message.
func (l *ZapLogger) Infof(format string, args ...interface{}) {
	l.sugar.Infof(format, args...)
}

// Warnf logs a warning message.
func (l *ZapLogger) Warnf(format string, args ...interface{}) {
	l.sugar.Warnf(format, args...)
}

// Errorf logs an error message.
func (l *ZapLogger) Errorf(format string, args ...interface{}) {
	l.sugar.Errorf(format, args...)
}

// Fatalf logs a fatal message and exits.
func (l *ZapLogger) Fatalf(format string, args ...interface{}) {
	l.sugar.Fatalf(format, args...)
}

var _ usecasecontract.IAppLogger = (*ZapLogger)(nil)
