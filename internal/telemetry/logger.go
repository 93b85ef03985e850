// Package telemetry wraps go.uber.org/zap the way the source's common
// logger wraps it for every massif operation: a small keyed-field logging
// interface, a real implementation for production use, and a no-op
// implementation for tests that don't care about log output.
package telemetry

import "go.uber.org/zap"

// Logger is the keyed-field logging interface every collective operation
// logs through.
type Logger interface {
	Debugw(msg string, kv ...any)
	Infow(msg string, kv ...any)
	Warnw(msg string, kv ...any)
	Errorw(msg string, kv ...any)
}

// zapLogger adapts *zap.SugaredLogger to Logger.
type zapLogger struct {
	s *zap.SugaredLogger
}

// NewLogger returns a production logger named name (typically
// "paratree.rank<N>").
func NewLogger(name string) Logger {
	base, err := zap.NewProduction()
	if err != nil {
		base = zap.NewNop()
	}
	return &zapLogger{s: base.Sugar().Named(name)}
}

func (l *zapLogger) Debugw(msg string, kv ...any) { l.s.Debugw(msg, kv...) }
func (l *zapLogger) Infow(msg string, kv ...any)  { l.s.Infow(msg, kv...) }
func (l *zapLogger) Warnw(msg string, kv ...any)  { l.s.Warnw(msg, kv...) }
func (l *zapLogger) Errorw(msg string, kv ...any) { l.s.Errorw(msg, kv...) }

type noopLogger struct{}

// NewNoop returns a Logger that discards everything, for tests.
func NewNoop() Logger { return noopLogger{} }

func (noopLogger) Debugw(string, ...any) {}
func (noopLogger) Infow(string, ...any)  {}
func (noopLogger) Warnw(string, ...any)  {}
func (noopLogger) Errorw(string, ...any) {}
