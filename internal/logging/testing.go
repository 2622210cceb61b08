package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

// NewTestLogger returns a Logger that writes through tb.Log at debug level.
func NewTestLogger(tb testing.TB) *ZapLogger {
	tb.Helper()
	return &ZapLogger{z: zaptest.NewLogger(tb, zaptest.Level(zapcore.DebugLevel))}
}

// NewObserved returns a Logger recording every entry at or above level, and the
// recorded entries for assertions.
func NewObserved(level zapcore.Level) (*ZapLogger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return &ZapLogger{z: zap.New(core)}, logs
}
