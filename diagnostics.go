package blend

import (
	"context"
	"log/slog"
	"slices"
	"sync"
)

// DiagnosticSink receives diagnostics as a parse produces them.
//
// Report is called from the goroutine running Parse, in block order.
type DiagnosticSink interface {
	Report(Diagnostic)
}

// DiagnosticList collects diagnostics. It is safe for concurrent use and
// can be shared across parses.
type DiagnosticList struct {
	mu    sync.Mutex
	diags []Diagnostic
}

// Report appends d to the list.
func (l *DiagnosticList) Report(d Diagnostic) {
	l.mu.Lock()
	l.diags = append(l.diags, d)
	l.mu.Unlock()
}

// Diagnostics returns a copy of the collected diagnostics.
func (l *DiagnosticList) Diagnostics() []Diagnostic {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.diags)
}

// Len returns the number of collected diagnostics.
func (l *DiagnosticList) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.diags)
}

// LogDiagnostics returns a sink that logs each diagnostic at Warn level.
func LogDiagnostics(logger *slog.Logger) DiagnosticSink {
	return logSink{logger: logger}
}

type logSink struct {
	logger *slog.Logger
}

func (s logSink) Report(d Diagnostic) {
	attrs := []slog.Attr{
		slog.String("kind", d.Kind.String()),
		slog.Int("block", d.BlockIndex),
		slog.String("address", d.AddressHex()),
		slog.String("code", d.Code),
		slog.Int("sdna", int(d.SDNAIndex)),
	}
	if d.Kind == DiagSizeMismatch {
		attrs = append(attrs, slog.Int("expected", d.Expected), slog.Int("actual", d.Actual))
	}
	if d.Err != nil {
		attrs = append(attrs, slog.String("error", d.Err.Error()))
	}
	s.logger.LogAttrs(context.Background(), slog.LevelWarn, "opaque block", attrs...)
}
