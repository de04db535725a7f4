// Package logging is the structured-warning sink consumed by every parser
// and the rewriter. It mirrors the zap + lumberjack wiring used for
// long-running capture processes in ausocean/av/cmd/rv and cmd/looper: a
// package-level *zap.SugaredLogger, optionally backed by a rotating file
// writer, with a safe no-op default so the core library never panics or
// writes to stderr when the caller hasn't configured anything.
package logging

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Sink is the structured warning/error collector described in spec.md §6
// ("a sink accepting structured warnings; if absent, warnings are
// discarded").
type Sink interface {
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

type discard struct{}

func (discard) Warnf(string, ...interface{})  {}
func (discard) Errorf(string, ...interface{}) {}

// Discard is the zero-value Sink: every call is a no-op.
var Discard Sink = discard{}

type zapSink struct {
	l *zap.SugaredLogger
}

func (z zapSink) Warnf(format string, args ...interface{})  { z.l.Warnf(format, args...) }
func (z zapSink) Errorf(format string, args ...interface{}) { z.l.Errorf(format, args...) }

var (
	mu      sync.Mutex
	current Sink = Discard
)

// Default returns the process-wide Sink set by Configure, or Discard if
// Configure was never called. Registration follows the same "set before
// first read" one-shot discipline as the resolver registry (spec.md §5).
func Default() Sink {
	mu.Lock()
	defer mu.Unlock()
	return current
}

// Configure installs a zap-backed Sink. When logPath is non-empty, output
// is routed through a lumberjack.Logger for rotation (100MB/file, 7
// backups, 28 days), matching the rotation policy ausocean/av's capture
// commands use for field deployments.
func Configure(logPath string, debug bool) error {
	var ws zapcore.WriteSyncer
	if logPath != "" {
		ws = zapcore.AddSync(&lumberjack.Logger{
			Filename:   logPath,
			MaxSize:    100,
			MaxBackups: 7,
			MaxAge:     28,
		})
	} else {
		ws = zapcore.AddSync(zapLogWriter{})
	}

	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}

	enc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	core := zapcore.NewCore(enc, ws, level)
	l := zap.New(core).Sugar()

	mu.Lock()
	current = zapSink{l: l}
	mu.Unlock()
	return nil
}

// Set installs an arbitrary Sink (used by callers embedding audiotags in a
// larger application with its own logger).
func Set(s Sink) {
	mu.Lock()
	if s == nil {
		s = Discard
	}
	current = s
	mu.Unlock()
}
